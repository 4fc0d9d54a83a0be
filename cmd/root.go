package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	config "task-tracker.com/task-tracker/internal/configs"
	"task-tracker.com/task-tracker/internal/logging"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "task-tracker",
	Short:         "Task assignment tracker",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logging.Logger.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML config file")
}

// loadServerConfig reads .env, the config file and the environment, then
// sets up logging.
func loadServerConfig() (config.Config, error) {
	if err := godotenv.Load(); err != nil {
		logging.Logger.Debug(".env file not found, using environment variables")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}

	if err := logging.Init(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	}); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

func openDatabase(cfg config.Config) (*gorm.DB, error) {
	db, err := config.NewDatabase(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := config.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
