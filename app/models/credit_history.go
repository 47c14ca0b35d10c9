package models

import "time"

const (
	CreditTypeAdded    = "added"
	CreditTypeDeducted = "deducted"
)

// CreditHistory is the append-only audit trail of the credit ledger.
// One row per balance mutation; rows are never updated after creation.
type CreditHistory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Amount      int       `gorm:"not null" json:"amount" validate:"gt=0"`
	Type        string    `gorm:"type:varchar(16);not null;index" json:"type" validate:"oneof=added deducted"`
	Description string    `gorm:"type:varchar(255)" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
