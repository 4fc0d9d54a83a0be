package validators

import (
	"net/http"

	"github.com/labstack/echo/v4"

	dto "task-tracker.com/task-tracker/internal/data_models"
	"task-tracker.com/task-tracker/pkg/constants"
	model "task-tracker.com/task-tracker/pkg/models"
)

func ValidateAssignTaskRequest(r *dto.AssignTaskRequest) error {
	if r.UserID == "" || r.TaskID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "userId and taskId required")
	}
	return nil
}

// ParseUpdateUserTaskRequest turns the request into a ProgressUpdate,
// rejecting unknown statuses and malformed dates.
func ParseUpdateUserTaskRequest(r *dto.UpdateUserTaskRequest) (model.ProgressUpdate, error) {
	var patch model.ProgressUpdate

	if r.Status != "" {
		status, err := constants.ParseAssignmentStatus(r.Status)
		if err != nil {
			return model.ProgressUpdate{}, echo.NewHTTPError(http.StatusBadRequest, "Invalid status")
		}
		patch.Status = &status
	}

	if r.StartDate != "" {
		d, err := model.ParseDate(r.StartDate)
		if err != nil {
			return model.ProgressUpdate{}, echo.NewHTTPError(http.StatusBadRequest, "Invalid startDate")
		}
		patch.StartDate = &d
	}

	if r.EndDate != "" {
		d, err := model.ParseDate(r.EndDate)
		if err != nil {
			return model.ProgressUpdate{}, echo.NewHTTPError(http.StatusBadRequest, "Invalid endDate")
		}
		patch.EndDate = &d
	}

	if r.Notes != "" {
		notes := r.Notes
		patch.Notes = &notes
	}

	return patch, nil
}
