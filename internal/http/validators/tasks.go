package validators

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	dto "task-tracker.com/task-tracker/internal/data_models"
)

func ValidateCreateTaskRequest(r *dto.CreateTaskRequest) error {
	r.Designation = strings.TrimSpace(r.Designation)
	if r.Designation == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Designation required")
	}
	return nil
}
