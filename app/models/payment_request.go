package models

import "time"

const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// PaymentRequest is a manually submitted UPI proof-of-payment that requires
// human admin review before any credits are granted.
type PaymentRequest struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Plan      string    `gorm:"type:varchar(100)" json:"plan"`
	Credits   int       `gorm:"not null" json:"credits"`
	Amount    float64   `gorm:"not null" json:"amount"`
	UTRCode   string    `gorm:"type:varchar(64);not null" json:"utr_code" validate:"required"`
	Date      string    `gorm:"type:varchar(10)" json:"date"`
	Note      string    `gorm:"type:varchar(500)" json:"note"`
	Status    string    `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
