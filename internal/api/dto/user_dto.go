package dto

import "github.com/spec-kit/ticket-tracker/internal/domain"

// CreateUserRequest payload for new accounts.
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UserResponse never includes the credential.
type UserResponse struct {
	ID       string          `json:"id"`
	Username string          `json:"username"`
	Role     domain.UserRole `json:"role"`
}
