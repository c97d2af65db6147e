package user

import (
	"time"

	"github.com/google/uuid"
)

// Role represents user role in the system (matches user_role enum)
type Role string

const (
	RoleUser    Role = "user"
	RoleCreator Role = "creator"
)

// User represents a registered account. Every user owns exactly one wallet.
type User struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	Role         Role      `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}

// IsCreator returns true if user can upload content
func (u *User) IsCreator() bool {
	return u.Role == RoleCreator
}

// ValidRoles returns list of valid roles for registration
func ValidRoles() []Role {
	return []Role{RoleUser, RoleCreator}
}

// IsValidRole checks if role is valid for registration
func IsValidRole(role string) bool {
	for _, r := range ValidRoles() {
		if string(r) == role {
			return true
		}
	}
	return false
}
