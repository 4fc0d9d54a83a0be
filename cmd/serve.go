package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"task-tracker.com/task-tracker/internal/auth"
	config "task-tracker.com/task-tracker/internal/configs"
	httpapi "task-tracker.com/task-tracker/internal/http"
	"task-tracker.com/task-tracker/internal/logging"
	repository "task-tracker.com/task-tracker/internal/repositories"
	"task-tracker.com/task-tracker/internal/services"
	"task-tracker.com/task-tracker/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Migrates the schema and serves the task tracker REST API under /api",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadServerConfig()
		if err != nil {
			return err
		}
		log := logging.Logger

		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		if sqlDB, err := database.DB(); err == nil {
			defer sqlDB.Close()
		}

		denylist, closeDenylist, err := newDenylist(cfg)
		if err != nil {
			return err
		}
		defer closeDenylist()

		hasher := auth.NewPasswordHasher(cfg.BcryptCost)
		tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)

		userRepo := repository.NewUserRepository(database)
		handler := httpapi.NewHandler(
			services.NewAuthService(userRepo, hasher, tokens, denylist),
			services.NewUserService(userRepo, hasher),
			services.NewTaskService(repository.NewTaskRepository(database)),
			services.NewUserTaskService(repository.NewUserTaskRepository(database)),
		)

		e := echo.New()
		e.HideBanner = true
		e.HidePort = true
		httpapi.Register(e, handler, httpapi.RouteConfig{
			Tokens:             tokens,
			Denylist:           denylist,
			Logger:             log,
			RateLimitPerMinute: cfg.RateLimit,
		})

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		go func() {
			log.Infof("HTTP server listening on %s", cfg.AppURL())
			if err := e.Start(cfg.AppURL()); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("server stopped")
				stop()
			}
		}()

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second,
		)
		defer cancel()

		if err := e.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("graceful shutdown failed")
		}

		log.Info("HTTP server shut down gracefully")
		return nil
	},
}

// newDenylist uses redis when a host is configured and process memory otherwise.
func newDenylist(cfg config.Config) (session.Denylist, func(), error) {
	if addr := cfg.RedisAddr(); addr != "" {
		client, err := config.NewRedisClient(addr)
		if err != nil {
			return nil, nil, err
		}
		logging.Logger.Infof("token deny-list backed by redis at %s", addr)
		return session.NewRedisDenylist(client, cfg.RedisDenylistPrefix), client.Close, nil
	}

	logging.Logger.Info("token deny-list kept in memory")
	d := session.NewMemoryDenylist(time.Minute)
	return d, d.Close, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
