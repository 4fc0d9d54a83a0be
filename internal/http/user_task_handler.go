package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	dto "task-tracker.com/task-tracker/internal/data_models"
	apperrors "task-tracker.com/task-tracker/internal/errors"
	"task-tracker.com/task-tracker/internal/http/validators"
)

func (h *Handler) ListMyUserTasks(c echo.Context) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}

	details, err := h.userTaskService.ListForUser(c.Request().Context(), caller, c.QueryParam("userId"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, details)
}

func (h *Handler) ListAllUserTasks(c echo.Context) error {
	details, err := h.userTaskService.ListAll(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, details)
}

func (h *Handler) AssignTask(c echo.Context) error {
	var req dto.AssignTaskRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ErrInvalidJSON
	}
	if err := validators.ValidateAssignTaskRequest(&req); err != nil {
		return err
	}

	assignment, err := h.userTaskService.Assign(c.Request().Context(), req.UserID, req.TaskID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, assignment)
}

func (h *Handler) UpdateUserTask(c echo.Context) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}

	var req dto.UpdateUserTaskRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ErrInvalidJSON
	}
	patch, err := validators.ParseUpdateUserTaskRequest(&req)
	if err != nil {
		return err
	}

	assignment, err := h.userTaskService.Update(c.Request().Context(), caller, c.Param("id"), patch)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, assignment)
}

func (h *Handler) RemoveUserTask(c echo.Context) error {
	if err := h.userTaskService.Remove(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}

	return message(c, "Task removed from user")
}
