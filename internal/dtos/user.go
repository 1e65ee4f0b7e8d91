// File: internal/dtos/user.go
package dtos

import (
	"time"

	"github.com/iyunix/go-bazaar-chat/internal/domain"
)

// RegisterRequestDTO is the body of POST /register.
type RegisterRequestDTO struct {
	Username    string `json:"username" validate:"required,min=3,max=64,alphanum"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	Email       string `json:"email" validate:"omitempty,email"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,e164"`
	City        string `json:"city" validate:"omitempty,max=100"`
}

// LoginRequestDTO is the body of POST /authenticate.
type LoginRequestDTO struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponseDTO struct {
	Token      string    `json:"token"`
	Expiration time.Time `json:"expiration"`
}

type RegisterResponseDTO struct {
	Username string `json:"username"`
}

// UserResponseDTO defines what fields to expose in user API responses.
// The password hash is never included.
type UserResponseDTO struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	City        string `json:"city,omitempty"`
	Role        string `json:"role"`
	CreatedAt   string `json:"created_at"`
}

// ToDomain maps the registration payload to a user. The password is still plain text here.
func (dto RegisterRequestDTO) ToDomain() domain.User {
	return domain.User{
		Username:    dto.Username,
		Email:       dto.Email,
		PhoneNumber: dto.PhoneNumber,
		City:        dto.City,
		Role:        domain.RoleUser,
	}
}

func FromUser(user domain.User) UserResponseDTO {
	return UserResponseDTO{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		PhoneNumber: maskPhoneNumber(user.PhoneNumber),
		City:        user.City,
		Role:        string(user.Role),
		CreatedAt:   user.CreatedAt.Format(time.RFC3339),
	}
}

func FromUsers(users []domain.User) []UserResponseDTO {
	out := make([]UserResponseDTO, len(users))
	for i, user := range users {
		out[i] = FromUser(user)
	}
	return out
}

// maskPhoneNumber partially masks phone numbers for privacy in public responses.
func maskPhoneNumber(phone string) string {
	if len(phone) < 7 {
		return phone
	}
	if len(phone) >= 10 {
		return phone[:5] + "****" + phone[len(phone)-2:]
	}
	return phone[:3] + "****" + phone[len(phone)-2:]
}
