package model

import "time"

// Role identifies what a user is allowed to do on the real-time hub
// and the HTTP API.
type Role string

const (
	RoleParent Role = "parent"
	RoleDriver Role = "driver"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleParent, RoleDriver, RoleAdmin:
		return true
	}
	return false
}

// User represents an account (parent, driver or administrator).
type User struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	Email     string `gorm:"uniqueIndex;size:256;not null" json:"email"`
	Password  string `gorm:"size:128;not null" json:"-"` // bcrypt hash
	Name      string `gorm:"size:128;not null" json:"name"`
	Phone     string `gorm:"size:32" json:"phone"`
	Role      Role   `gorm:"size:16;not null;default:parent" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
