package services

import (
	"context"
	"fmt"

	"task-tracker.com/task-tracker/internal/auth"
	apperrors "task-tracker.com/task-tracker/internal/errors"
	repository "task-tracker.com/task-tracker/internal/repositories"
	"task-tracker.com/task-tracker/pkg/constants"
	model "task-tracker.com/task-tracker/pkg/models"
)

type UserService struct {
	repo   *repository.UserRepository
	hasher *auth.PasswordHasher
}

func NewUserService(repo *repository.UserRepository, hasher *auth.PasswordHasher) *UserService {
	return &UserService{repo: repo, hasher: hasher}
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.repo.List(ctx)
}

// Create registers a USER account. Managers are only created from the CLI.
func (s *UserService) Create(ctx context.Context, username, password string) (*model.User, error) {
	return s.CreateWithRole(ctx, username, password, constants.RoleUser)
}

func (s *UserService) CreateWithRole(ctx context.Context, username, password string, role constants.Role) (*model.User, error) {
	if !role.Valid() {
		return nil, apperrors.BadRequest("Invalid role")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return s.repo.Create(ctx, username, hash, role)
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// ChangePassword lets a user change their own password, or a manager change
// anyone's. Only non-managers have to prove the old password.
func (s *UserService) ChangePassword(ctx context.Context, actor auth.Identity, targetID, oldPassword, newPassword string) error {
	if actor.ID != targetID && !actor.IsManager() {
		return apperrors.ErrForbidden
	}

	user, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return err
	}

	if !actor.IsManager() && !s.hasher.Check(oldPassword, user.PasswordHash) {
		return apperrors.ErrInvalidOldPassword
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.repo.UpdatePassword(ctx, user.ID, hash)
}
