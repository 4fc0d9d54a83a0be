package http

import (
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"task-tracker.com/task-tracker/internal/auth"
	middleware "task-tracker.com/task-tracker/internal/http/middlewares"
	"task-tracker.com/task-tracker/internal/session"
)

type RouteConfig struct {
	Tokens             *auth.TokenService
	Denylist           session.Denylist
	Logger             *logrus.Logger
	RateLimitPerMinute int
}

func Register(e *echo.Echo, h *Handler, cfg RouteConfig) {
	e.HTTPErrorHandler = ErrorHandler(cfg.Logger)

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(cfg.Logger))
	e.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, time.Minute))

	authn := middleware.RequireAuth(cfg.Tokens, cfg.Denylist)
	manager := middleware.RequireManager()

	e.GET("/health", h.Health)

	api := e.Group("/api")

	api.POST("/auth/login", h.Login)
	api.GET("/auth/me", h.Me, authn)
	api.POST("/auth/logout", h.Logout, authn)

	api.GET("/tasks", h.ListTasks, authn)
	api.POST("/tasks", h.CreateTask, authn, manager)
	api.DELETE("/tasks/:id", h.DeleteTask, authn, manager)

	api.GET("/users", h.ListUsers, authn, manager)
	api.POST("/users", h.CreateUser, authn, manager)
	api.DELETE("/users/:id", h.DeleteUser, authn, manager)
	api.PUT("/users/:id/password", h.ChangePassword, authn)

	api.GET("/user-tasks", h.ListMyUserTasks, authn)
	api.GET("/user-tasks/admin/all", h.ListAllUserTasks, authn, manager)
	api.POST("/user-tasks", h.AssignTask, authn, manager)
	api.PUT("/user-tasks/:id", h.UpdateUserTask, authn)
	api.DELETE("/user-tasks/:id", h.RemoveUserTask, authn, manager)
}
