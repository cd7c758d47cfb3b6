package handler

import (
	"time"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// envelope wraps every successful response.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func ok(message string, data any) envelope {
	return envelope{Success: true, Message: message, Data: data}
}

type registerRequest struct {
	Username  string `json:"username"   validate:"required,min=3,max=30,alphanum"`
	Email     string `json:"email"      validate:"required,email"`
	Password  string `json:"password"   validate:"required,min=6,max=128"`
	FirstName string `json:"first_name" validate:"max=50"`
	LastName  string `json:"last_name"  validate:"max=50"`
	Role      string `json:"role"`
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password"   validate:"required"`
	RememberMe bool   `json:"remember_me"`
}

type authData struct {
	User      *domain.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresIn string       `json:"expires_in,omitempty"`
	ExpiresAt time.Time    `json:"expires_at"`
}

type tokenData struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type userData struct {
	User *domain.User `json:"user"`
}

type verifyData struct {
	User        *domain.Session `json:"user"`
	TokenExpiry time.Time       `json:"token_expiry"`
}

type updateProfileRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=50"`
	LastName  *string `json:"last_name"  validate:"omitempty,max=50"`
	Email     *string `json:"email"      validate:"omitempty,email"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=128,nefield=CurrentPassword"`
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required,role"`
}

type updateStatusRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

type usersData struct {
	Users []*domain.User `json:"users"`
	Count int            `json:"count"`
}
