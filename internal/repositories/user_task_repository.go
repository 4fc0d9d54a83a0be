package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "task-tracker.com/task-tracker/internal/errors"
	model "task-tracker.com/task-tracker/pkg/models"
	"task-tracker.com/task-tracker/pkg/constants"
)

const detailsSelect = "ut.id, ut.user_id, ut.task_id, ut.start_date, ut.end_date, ut.status, ut.notes, ut.updated_at, " +
	"t.designation AS task_designation, u.username"

type UserTaskRepository struct {
	db *gorm.DB
}

func NewUserTaskRepository(db *gorm.DB) *UserTaskRepository {
	return &UserTaskRepository{db: db}
}

func (r *UserTaskRepository) Create(ctx context.Context, userID, taskID string) (*model.UserTask, error) {
	assignment := &model.UserTask{
		ID:        uuid.NewString(),
		UserID:    userID,
		TaskID:    taskID,
		Status:    constants.StatusNotStarted,
		UpdatedAt: time.Now().UTC(),
	}

	if err := r.db.WithContext(ctx).Create(assignment).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, apperrors.ErrAlreadyAssigned
		}
		if isForeignKeyViolation(err) {
			return nil, apperrors.ErrAssignmentTargetNotFound
		}
		return nil, err
	}

	return assignment, nil
}

func (r *UserTaskRepository) FindByID(ctx context.Context, id string) (*model.UserTask, error) {
	var assignment model.UserTask
	err := r.db.WithContext(ctx).First(&assignment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrAssignmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// ListDetails joins assignments with their task designation and username,
// most recently updated first. An empty userID lists every assignment.
func (r *UserTaskRepository) ListDetails(ctx context.Context, userID string) ([]model.UserTaskDetails, error) {
	details := make([]model.UserTaskDetails, 0)

	query := r.db.WithContext(ctx).
		Table("user_tasks AS ut").
		Select(detailsSelect).
		Joins("JOIN tasks t ON ut.task_id = t.id").
		Joins("JOIN users u ON ut.user_id = u.id")
	if userID != "" {
		query = query.Where("ut.user_id = ?", userID)
	}

	if err := query.Order("ut.updated_at DESC").Scan(&details).Error; err != nil {
		return nil, err
	}
	return details, nil
}

// Update writes every progress column of the assignment in one statement.
func (r *UserTaskRepository) Update(ctx context.Context, assignment *model.UserTask) error {
	assignment.UpdatedAt = time.Now().UTC()

	res := r.db.WithContext(ctx).Model(&model.UserTask{}).
		Where("id = ?", assignment.ID).
		Updates(map[string]interface{}{
			"status":     assignment.Status,
			"start_date": nullable(assignment.StartDate),
			"end_date":   nullable(assignment.EndDate),
			"notes":      nullable(assignment.Notes),
			"updated_at": assignment.UpdatedAt,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrAssignmentNotFound
	}
	return nil
}

func (r *UserTaskRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&model.UserTask{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrAssignmentNotFound
	}
	return nil
}

// nullable unwraps an optional column so nil is written as NULL.
func nullable[T any](v *T) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
