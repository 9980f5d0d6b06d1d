package dto

import "time"

// UserDTO represents a data transfer object (DTO) for a stored user.
// Credential material is never part of it.
type UserDTO struct {
	ID        int       `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Username  string    `json:"user_name"`
	Role      string    `json:"role"`
}

// UserRegisterDTO represents a data transfer object (DTO) for a registration request.
// Role is accepted for compatibility with existing clients but is never honoured.
type UserRegisterDTO struct {
	Username string `json:"user_name"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}
