package models

import "time"

// UsedDevice records a device fingerprint that has already claimed the free
// signup credits. A second signup from the same device starts at zero.
type UsedDevice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	DeviceID  string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"device_id"`
	UserID    uint      `gorm:"not null" json:"user_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
