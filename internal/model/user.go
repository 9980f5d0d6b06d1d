package model

import "time"

// Role represents the role assigned to a user account.
type Role string

const (
	// RoleEmployee is the role of a regular staff account.
	RoleEmployee Role = "employee"
	// RoleManager is the role of a managing staff account.
	RoleManager Role = "manager"

	// DefaultRole is the role every self-registered user receives.
	DefaultRole = RoleEmployee
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleManager:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// User represents a model for a user.
type User struct {
	ID        int       `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	Role      Role      `json:"role"`
}
