package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"task-tracker.com/task-tracker/internal/logging"
	"task-tracker.com/task-tracker/pkg/client"
	"task-tracker.com/task-tracker/pkg/store"
)

var (
	apiURL      string
	sessionPath string
)

var errSessionMissing = errors.New("not logged in, run `task-tracker login` first")

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "task-tracker-session.db"
	}
	return filepath.Join(home, ".task-tracker", "session.db")
}

func defaultAPIURL() string {
	if v := os.Getenv("TASK_TRACKER_API_URL"); v != "" {
		return v
	}
	return "http://127.0.0.1:8080/api"
}

// openStore restores the persisted session into a fresh store.
func openStore(cmd *cobra.Command) (*store.Store, func(), error) {
	if err := os.MkdirAll(filepath.Dir(sessionPath), 0o700); err != nil {
		return nil, nil, fmt.Errorf("create session dir: %w", err)
	}

	sessions, err := store.NewGormSessionStore(sessionPath)
	if err != nil {
		return nil, nil, err
	}

	s := store.New(client.New(apiURL), sessions, store.WithLogger(logging.Logger))
	if err := s.Restore(cmd.Context()); err != nil {
		_ = sessions.Close()
		return nil, nil, err
	}

	return s, func() { _ = sessions.Close() }, nil
}

func requireSession(s *store.Store) error {
	if s.CurrentUser() == nil {
		return errSessionMissing
	}
	return s.Err()
}

var loginCmd = &cobra.Command{
	Use:   "login <username> <password>",
	Short: "Sign in and remember the session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, closeStore, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		user, err := s.Login(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s (%s)\n", user.Username, user.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the session and revoke its token",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, closeStore, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		if err := s.Logout(cmd.Context()); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "logged out")
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show completion per task",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, closeStore, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		if err := requireSession(s); err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TASK\tASSIGNED\tCOMPLETED\tPROGRESS")
		for _, st := range s.TaskStats() {
			fmt.Fprintf(w, "%s\t%d\t%d\t%.2f%%\n", st.Designation, st.TotalAssigned, st.CompletedCount, st.ProgressPercentage)
		}
		return w.Flush()
	},
}

var assignmentsCmd = &cobra.Command{
	Use:   "assignments",
	Short: "List assignments, most recently updated first",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, closeStore, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		if err := requireSession(s); err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTASK\tUSER\tSTATUS\tSTART\tEND\tNOTES")
		for _, d := range s.AssignmentsWithDetails() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				d.ID, d.TaskDesignation, d.Username, d.Status,
				orDash(d.StartDate), orDash(d.EndDate), orDash(d.Notes))
		}
		return w.Flush()
	},
}

func orDash[T ~string](v *T) string {
	if v == nil || *v == "" {
		return "-"
	}
	return string(*v)
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, logoutCmd, statsCmd, assignmentsCmd, taskCmd, userCmd, assignCmd, unassignCmd, progressCmd, passwordCmd} {
		c.PersistentFlags().StringVar(&apiURL, "api-url", defaultAPIURL(), "base URL of the API, including /api")
		c.PersistentFlags().StringVar(&sessionPath, "session", defaultSessionPath(), "file holding the saved session")
		rootCmd.AddCommand(c)
	}
}
