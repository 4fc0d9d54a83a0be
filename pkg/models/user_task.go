package model

import (
	"time"

	"task-tracker.com/task-tracker/pkg/constants"
)

// UserTask is the assignment of one task to one user. The (user_id, task_id)
// pair is unique and both references cascade on delete.
type UserTask struct {
	ID        string                     `gorm:"primaryKey;size:36" json:"id"`
	UserID    string                     `gorm:"size:36;not null;uniqueIndex:idx_user_tasks_user_task;index:idx_user_tasks_user_id" json:"user_id"`
	TaskID    string                     `gorm:"size:36;not null;uniqueIndex:idx_user_tasks_user_task;index:idx_user_tasks_task_id" json:"task_id"`
	Status    constants.AssignmentStatus `gorm:"type:varchar(50);not null;default:'NOT_STARTED'" json:"status"`
	StartDate *Date                      `gorm:"type:date" json:"start_date"`
	EndDate   *Date                      `gorm:"type:date" json:"end_date"`
	Notes     *string                    `gorm:"type:text" json:"notes"`
	UpdatedAt time.Time                  `json:"updated_at"`

	User *User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Task *Task `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// UserTaskDetails is an assignment joined with its task designation and username.
type UserTaskDetails struct {
	ID              string                     `json:"id"`
	UserID          string                     `json:"user_id"`
	TaskID          string                     `json:"task_id"`
	StartDate       *Date                      `json:"start_date"`
	EndDate         *Date                      `json:"end_date"`
	Status          constants.AssignmentStatus `json:"status"`
	Notes           *string                    `json:"notes"`
	UpdatedAt       time.Time                  `json:"updated_at"`
	TaskDesignation string                     `json:"task_designation"`
	Username        string                     `json:"username"`
}

func (d UserTaskDetails) Assignment() UserTask {
	return UserTask{
		ID:        d.ID,
		UserID:    d.UserID,
		TaskID:    d.TaskID,
		Status:    d.Status,
		StartDate: d.StartDate,
		EndDate:   d.EndDate,
		Notes:     d.Notes,
		UpdatedAt: d.UpdatedAt,
	}
}

// ProgressUpdate is a partial assignment update. Nil fields are left unchanged.
type ProgressUpdate struct {
	Status    *constants.AssignmentStatus `json:"status,omitempty"`
	StartDate *Date                       `json:"startDate,omitempty"`
	EndDate   *Date                       `json:"endDate,omitempty"`
	Notes     *string                     `json:"notes,omitempty"`
}
