package domain

import "time"

// Marketplace roles.
const (
	RoleClient = "Client"
	RoleSeller = "Seller"
)

// User is a marketplace account. Contact is a phone number used only as
// a lookup fallback; notification scoping always uses the opaque ID.
type User struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	Email         string    `json:"email" gorm:"uniqueIndex;not null"`
	Password      string    `json:"-"` // bcrypt hash, never returned in JSON
	Name          string    `json:"name"`
	Contact       string    `json:"contact" gorm:"index"`
	Role          string    `json:"role"`
	Category      string    `json:"category,omitempty"` // seller skill category
	AlertsEnabled bool      `json:"alerts_enabled"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RefreshToken is a long-lived credential exchanged for new access
// tokens. One row per device; expired rows are cleaned up lazily.
type RefreshToken struct {
	Token     string    `json:"token" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index"`
	ExpiresAt time.Time `json:"expires_at"`
}
