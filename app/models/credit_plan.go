package models

import "time"

// CreditPlan is an admin-editable catalog entry; INR pricing is used for the
// UPI gateway and USD pricing for crypto.
type CreditPlan struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Credits   int       `gorm:"not null" json:"credits" validate:"gt=0"`
	INRPrice  float64   `gorm:"not null" json:"inr_price" validate:"gte=0"`
	USDPrice  float64   `gorm:"not null" json:"usd_price" validate:"gte=0"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
