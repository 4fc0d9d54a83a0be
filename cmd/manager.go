package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"task-tracker.com/task-tracker/internal/auth"
	"task-tracker.com/task-tracker/internal/logging"
	repository "task-tracker.com/task-tracker/internal/repositories"
	"task-tracker.com/task-tracker/internal/services"
	"task-tracker.com/task-tracker/pkg/constants"
)

var (
	managerUsername string
	managerPassword string
)

var createManagerCmd = &cobra.Command{
	Use:   "create-manager",
	Short: "Create a MANAGER account",
	Long:  "Creates a MANAGER account directly in the database. The API only lets managers create USER accounts.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if managerUsername == "" || managerPassword == "" {
			return errors.New("--username and --password are required")
		}

		cfg, err := loadServerConfig()
		if err != nil {
			return err
		}

		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		if sqlDB, err := database.DB(); err == nil {
			defer sqlDB.Close()
		}

		users := services.NewUserService(repository.NewUserRepository(database), auth.NewPasswordHasher(cfg.BcryptCost))
		user, err := users.CreateWithRole(cmd.Context(), managerUsername, managerPassword, constants.RoleManager)
		if err != nil {
			return err
		}

		logging.Logger.WithField("user_id", user.ID).Infof("manager %s created", user.Username)
		return nil
	},
}

func init() {
	createManagerCmd.Flags().StringVar(&managerUsername, "username", "", "manager username")
	createManagerCmd.Flags().StringVar(&managerPassword, "password", "", "manager password")
	rootCmd.AddCommand(createManagerCmd)
}
