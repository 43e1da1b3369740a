package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DisplayName is "First Last", trimmed when either half is blank.
func (u *User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

const (
	RoleBuyer     = "buyer"
	RoleSeller    = "seller"
	RoleAgent     = "agent"
	RoleDeveloper = "developer"
	RoleAdmin     = "admin"
)

// IsValidRole reports whether role can be chosen at registration.
func IsValidRole(role string) bool {
	switch role {
	case RoleBuyer, RoleSeller, RoleAgent, RoleDeveloper:
		return true
	}
	return false
}
