package user_services

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/iyunix/go-bazaar-chat/internal/domain"
	"github.com/iyunix/go-bazaar-chat/internal/repository/user"
)

// DirectoryService answers who-is-who questions for the chat widget.
type DirectoryService struct {
	userRepo user.UserRepository
	logger   Logger
}

func NewDirectoryService(userRepo user.UserRepository, logger Logger) *DirectoryService {
	return &DirectoryService{userRepo: userRepo, logger: logger}
}

// Me loads the account behind an authenticated username.
func (s *DirectoryService) Me(ctx context.Context, username string) (*domain.User, error) {
	if username == "" {
		return nil, ErrUnauthenticated
	}
	found, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			// Token outlived the account.
			s.logger.Warn("authenticated user no longer exists", "username", mask(username))
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return found, nil
}

// Correspondents lists every account except the caller.
func (s *DirectoryService) Correspondents(ctx context.Context, self string) ([]domain.User, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	out := lo.Filter(users, func(u domain.User, _ int) bool { return u.Username != self })
	s.logger.Debug("correspondents listed", "count", len(out))
	return out, nil
}
