package validators

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	dto "task-tracker.com/task-tracker/internal/data_models"
)

func ValidateLoginRequest(r *dto.LoginRequest) error {
	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" || r.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Username and password required")
	}
	return nil
}
