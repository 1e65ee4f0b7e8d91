// File: internal/services/user_services/auth_service.go
package user_services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iyunix/go-bazaar-chat/internal/auth"
	"github.com/iyunix/go-bazaar-chat/internal/domain"
	"github.com/iyunix/go-bazaar-chat/internal/repository/user"
)

type AuthService struct {
	userRepo     user.UserRepository
	jwtSecretKey []byte
	tokenTTL     time.Duration
	logger       Logger
}

func NewAuthService(userRepo user.UserRepository, jwtSecretKey string, tokenTTL time.Duration, logger Logger) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		jwtSecretKey: []byte(jwtSecretKey),
		tokenTTL:     tokenTTL,
		logger:       logger,
	}
}

// Register hashes the password and stores the account. A taken username yields user.ErrUsernameTaken.
func (s *AuthService) Register(ctx context.Context, candidate domain.User, password string) (*domain.User, error) {
	s.logger.Info("user registration attempt", "username", mask(candidate.Username))

	if err := candidate.HashPassword(password); err != nil {
		s.logger.Warn("registration rejected", "username", mask(candidate.Username), "error", err.Error())
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if candidate.Role == "" {
		candidate.Role = domain.RoleUser
	}

	created, err := s.userRepo.Create(ctx, &candidate)
	if err != nil {
		if errors.Is(err, user.ErrUsernameTaken) {
			s.logger.Warn("registration failed - username already exists", "username", mask(candidate.Username))
			return nil, err
		}
		s.logger.Error("user creation failed", "error", err, "username", mask(candidate.Username))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered successfully", "username", mask(created.Username), "user_id", created.ID)
	return created, nil
}

// Login checks credentials and returns a signed token with its expiry.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	if username == "" || password == "" {
		s.logger.Warn("login attempt with empty credentials",
			"has_username", username != "",
			"has_password", password != "")
		return "", time.Time{}, ErrInvalidCredentials
	}

	found, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			s.logger.Warn("login failed - user not found", "username", mask(username))
			return "", time.Time{}, ErrInvalidCredentials
		}
		s.logger.Error("login lookup failed", "username", mask(username), "error", err)
		return "", time.Time{}, fmt.Errorf("failed to load user: %w", err)
	}

	if err := found.ValidatePassword(password); err != nil {
		s.logger.Warn("login failed - invalid password", "username", mask(username), "user_id", found.ID)
		return "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := auth.GenerateJWT(found.Username, string(found.Role), s.jwtSecretKey, s.tokenTTL)
	if err != nil {
		s.logger.Error("JWT token generation failed", "error", err, "user_id", found.ID)
		return "", time.Time{}, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("login successful", "username", mask(username), "user_id", found.ID, "expires_at", expiresAt.Format(time.RFC3339))
	return token, expiresAt, nil
}

// ValidateJWTToken validates a JWT token and returns the username it was issued to.
func (s *AuthService) ValidateJWTToken(tokenString string) (string, error) {
	claims, err := auth.ValidateToken(tokenString, s.jwtSecretKey)
	if err != nil {
		if !errors.Is(err, auth.ErrEmptyToken) {
			s.logger.Warn("JWT token validation failed", "error", err)
		}
		return "", err
	}
	s.logger.Debug("JWT token validated successfully", "username", mask(claims.Subject))
	return claims.Subject, nil
}
