package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"task-tracker.com/task-tracker/pkg/constants"
	model "task-tracker.com/task-tracker/pkg/models"
	"task-tracker.com/task-tracker/pkg/store"
)

var (
	progressStatus string
	progressStart  string
	progressEnd    string
	progressNotes  string
	oldPassword    string
)

// runMutation opens the saved session and applies one store mutation.
func runMutation(cmd *cobra.Command, done string, mutate func(ctx context.Context, s *store.Store) error) error {
	s, closeStore, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	if s.CurrentUser() == nil {
		return errSessionMissing
	}
	if err := mutate(cmd.Context(), s); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), done)
	return nil
}

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskCreateCmd = &cobra.Command{
	Use:   "create <designation>",
	Short: "Create a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMutation(cmd, "task created", func(ctx context.Context, s *store.Store) error {
			return s.CreateTask(ctx, args[0])
		})
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <task-id>",
	Short: "Delete a task and its assignments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMutation(cmd, "task deleted", func(ctx context.Context, s *store.Store) error {
			return s.DeleteTask(ctx, args[0])
		})
	},
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add <username> <password>",
	Short: "Create a USER account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMutation(cmd, "user created", func(ctx context.Context, s *store.Store) error {
			return s.AddUser(ctx, args[0], args[1])
		})
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <user-id>",
	Short: "Delete a user and their assignments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMutation(cmd, "user deleted", func(ctx context.Context, s *store.Store) error {
			return s.DeleteUser(ctx, args[0])
		})
	},
}

var assignCmd = &cobra.Command{
	Use:   "assign <task-id> <user-id>",
	Short: "Assign a task to a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMutation(cmd, "task assigned", func(ctx context.Context, s *store.Store) error {
			return s.AssignTask(ctx, args[0], args[1])
		})
	},
}

var unassignCmd = &cobra.Command{
	Use:   "unassign <assignment-id>",
	Short: "Remove an assignment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMutation(cmd, "assignment removed", func(ctx context.Context, s *store.Store) error {
			return s.RemoveAssignment(ctx, args[0])
		})
	},
}

var progressCmd = &cobra.Command{
	Use:   "progress <assignment-id>",
	Short: "Update the status, dates or notes of an assignment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		update, err := progressUpdateFromFlags()
		if err != nil {
			return err
		}
		return runMutation(cmd, "progress updated", func(ctx context.Context, s *store.Store) error {
			return s.UpdateProgress(ctx, args[0], update)
		})
	},
}

var passwordCmd = &cobra.Command{
	Use:   "password <user-id> <new-password>",
	Short: "Change a password",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMutation(cmd, "password updated", func(ctx context.Context, s *store.Store) error {
			return s.ChangePassword(ctx, args[0], oldPassword, args[1])
		})
	},
}

func progressUpdateFromFlags() (model.ProgressUpdate, error) {
	var update model.ProgressUpdate

	if progressStatus != "" {
		status, err := constants.ParseAssignmentStatus(progressStatus)
		if err != nil {
			return update, err
		}
		update.Status = &status
	}
	if progressStart != "" {
		d, err := model.ParseDate(progressStart)
		if err != nil {
			return update, err
		}
		update.StartDate = &d
	}
	if progressEnd != "" {
		d, err := model.ParseDate(progressEnd)
		if err != nil {
			return update, err
		}
		update.EndDate = &d
	}
	if progressNotes != "" {
		notes := progressNotes
		update.Notes = &notes
	}

	return update, nil
}

func init() {
	taskCmd.AddCommand(taskCreateCmd, taskDeleteCmd)
	userCmd.AddCommand(userAddCmd, userDeleteCmd)

	progressCmd.Flags().StringVar(&progressStatus, "status", "", "NOT_STARTED, IN_PROGRESS or COMPLETED")
	progressCmd.Flags().StringVar(&progressStart, "start", "", "start date (YYYY-MM-DD)")
	progressCmd.Flags().StringVar(&progressEnd, "end", "", "end date (YYYY-MM-DD)")
	progressCmd.Flags().StringVar(&progressNotes, "notes", "", "free-form notes")

	passwordCmd.Flags().StringVar(&oldPassword, "old", "", "current password, required unless you are a manager")
}
