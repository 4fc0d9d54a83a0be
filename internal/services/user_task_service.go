package services

import (
	"context"
	"time"

	"task-tracker.com/task-tracker/internal/auth"
	apperrors "task-tracker.com/task-tracker/internal/errors"
	repository "task-tracker.com/task-tracker/internal/repositories"
	model "task-tracker.com/task-tracker/pkg/models"
)

type UserTaskService struct {
	repo *repository.UserTaskRepository
	now  func() time.Time
}

func NewUserTaskService(repo *repository.UserTaskRepository) *UserTaskService {
	return &UserTaskService{repo: repo, now: time.Now}
}

// ListForUser lists the assignments of userID, or of the caller when userID
// is empty. Only managers may look at someone else's assignments.
func (s *UserTaskService) ListForUser(ctx context.Context, actor auth.Identity, userID string) ([]model.UserTaskDetails, error) {
	if userID == "" {
		userID = actor.ID
	}
	if userID != actor.ID && !actor.IsManager() {
		return nil, apperrors.ErrForbidden
	}
	return s.repo.ListDetails(ctx, userID)
}

func (s *UserTaskService) ListAll(ctx context.Context) ([]model.UserTaskDetails, error) {
	return s.repo.ListDetails(ctx, "")
}

func (s *UserTaskService) Assign(ctx context.Context, userID, taskID string) (*model.UserTask, error) {
	return s.repo.Create(ctx, userID, taskID)
}

// Update merges patch into the assignment. Fields left nil keep their stored
// value, and a status change fills or clears the dates it implies. Today is
// the UTC calendar date.
func (s *UserTaskService) Update(ctx context.Context, actor auth.Identity, id string, patch model.ProgressUpdate) (*model.UserTask, error) {
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if assignment.UserID != actor.ID && !actor.IsManager() {
		return nil, apperrors.ErrForbidden
	}

	if patch.StartDate != nil {
		assignment.StartDate = patch.StartDate
	}
	if patch.EndDate != nil {
		assignment.EndDate = patch.EndDate
	}
	if patch.Notes != nil {
		assignment.Notes = patch.Notes
	}
	if patch.Status != nil {
		assignment.Status = *patch.Status
		assignment.StartDate, assignment.EndDate = model.ApplyStatusDefaults(
			assignment.Status, assignment.StartDate, assignment.EndDate, model.DateOf(s.now().UTC()),
		)
	}

	if err := s.repo.Update(ctx, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *UserTaskService) Remove(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
