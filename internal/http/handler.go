package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"task-tracker.com/task-tracker/internal/auth"
	apperrors "task-tracker.com/task-tracker/internal/errors"
	middleware "task-tracker.com/task-tracker/internal/http/middlewares"
	"task-tracker.com/task-tracker/internal/services"
	model "task-tracker.com/task-tracker/pkg/models"
)

const isoMillis = "2006-01-02T15:04:05.000Z07:00"

type Handler struct {
	authService     *services.AuthService
	userService     *services.UserService
	taskService     *services.TaskService
	userTaskService *services.UserTaskService
}

func NewHandler(
	authService *services.AuthService,
	userService *services.UserService,
	taskService *services.TaskService,
	userTaskService *services.UserTaskService,
) *Handler {
	return &Handler{
		authService:     authService,
		userService:     userService,
		taskService:     taskService,
		userTaskService: userTaskService,
	}
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, model.HealthResponse{
		Status:    "OK",
		Timestamp: time.Now().UTC().Format(isoMillis),
	})
}

func identity(c echo.Context) (auth.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return auth.Identity{}, apperrors.ErrMissingToken
	}
	return id, nil
}

func message(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, model.MessageResponse{Message: msg})
}
