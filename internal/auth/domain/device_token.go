package domain

import "time"

// DeviceToken is a Firebase Cloud Messaging registration for one of a
// user's devices. Push alerts multicast to every token of the
// recipient; tokens FCM reports dead are deleted.
type DeviceToken struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	UserID     string    `json:"user_id" gorm:"index;not null"`
	Token      string    `json:"-" gorm:"uniqueIndex;not null"` // never expose the raw token
	DeviceInfo string    `json:"device_info"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
