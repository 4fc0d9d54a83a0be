package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"task-tracker.com/task-tracker/internal/auth"
	apperrors "task-tracker.com/task-tracker/internal/errors"
	repository "task-tracker.com/task-tracker/internal/repositories"
	"task-tracker.com/task-tracker/internal/session"
	model "task-tracker.com/task-tracker/pkg/models"
)

type AuthService struct {
	users    *repository.UserRepository
	hasher   *auth.PasswordHasher
	tokens   *auth.TokenService
	denylist session.Denylist
	now      func() time.Time
}

func NewAuthService(
	users *repository.UserRepository,
	hasher *auth.PasswordHasher,
	tokens *auth.TokenService,
	denylist session.Denylist,
) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		denylist: denylist,
		now:      time.Now,
	}
}

// Login never tells the caller whether the username or the password was wrong.
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.LoginResponse, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Check(password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	public := user.Public()
	token, _, err := s.tokens.Issue(public)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &model.LoginResponse{Token: token, User: public}, nil
}

func (s *AuthService) Me(ctx context.Context, identity auth.Identity) (model.PublicUser, error) {
	user, err := s.users.FindByID(ctx, identity.ID)
	if err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, identity auth.Identity) error {
	ttl := identity.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.denylist.Revoke(ctx, identity.TokenID, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
