package models

import "time"

const (
	GatewayUPI   = "UPI"
	GatewayOxPay = "OXPAY"
)

const (
	TxStatusPending   = "pending"
	TxStatusCompleted = "completed"
	TxStatusFailed    = "failed"
	TxStatusCancelled = "cancelled"
)

// Transaction is a gateway-initiated payment attempt. OrderID is the
// externally visible idempotency key; status moves from pending to exactly
// one terminal state, and credits are granted only on the pending->completed
// transition.
type Transaction struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	OrderID     string     `gorm:"type:varchar(191);not null;uniqueIndex" json:"order_id"`
	Amount      float64    `gorm:"not null" json:"amount"`
	Currency    string     `gorm:"type:varchar(8);not null" json:"currency"`
	Credits     int        `gorm:"not null" json:"credits"`
	Gateway     string     `gorm:"type:varchar(16);not null;index:idx_transactions_gateway_status,priority:1" json:"gateway"`
	Status      string     `gorm:"type:varchar(16);not null;default:'pending';index:idx_transactions_gateway_status,priority:2" json:"status"`
	RawPayload  string     `gorm:"type:longtext" json:"-"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	CompletedAt *time.Time `gorm:"type:timestamp;default:null" json:"completed_at,omitempty"`
}

// IsTerminal reports whether the transaction reached a final state.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TxStatusCompleted || t.Status == TxStatusFailed || t.Status == TxStatusCancelled
}
