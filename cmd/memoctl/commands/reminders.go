package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/memograph/memograph/internal/config"
	"github.com/memograph/memograph/internal/database"
)

// NewRemindersCmd creates the reminders command group
func NewRemindersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Inspect and manage reminders",
	}

	cmd.AddCommand(newRemindersListCmd())
	cmd.AddCommand(newRemindersCancelCmd())
	cmd.AddCommand(newRemindersMissedCmd())

	return cmd
}

func newRemindersListCmd() *cobra.Command {
	var workspaceID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reminders of a workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, cleanup, err := openDatabase()
			if err != nil {
				return err
			}
			defer cleanup()

			reminders, err := database.NewReminderRepository(db).GetByWorkspace(context.Background(), workspaceID)
			if err != nil {
				return fmt.Errorf("failed to list reminders: %w", err)
			}

			if len(reminders) == 0 {
				fmt.Println("No reminders")
				return nil
			}

			for _, rem := range reminders {
				fmt.Printf("  - %s [%s] %s\n", rem.ID, rem.Status, rem.Message)
				fmt.Printf("    Recurrence: %s at %s (%s)\n", rem.Recurrence, rem.TimeOfDay, rem.Timezone)
				fmt.Printf("    Next: %s\n", rem.NextOccurrence.Format("2006-01-02 15:04 MST"))
				if rem.LastTriggered != nil {
					fmt.Printf("    Last triggered: %s\n", rem.LastTriggered.Format("2006-01-02 15:04 MST"))
				}
				fmt.Println()
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&workspaceID, "workspace", "w", "", "Workspace ID (required)")
	if err := cmd.MarkFlagRequired("workspace"); err != nil {
		panic(err)
	}

	return cmd
}

func newRemindersCancelCmd() *cobra.Command {
	var workspaceID string

	cmd := &cobra.Command{
		Use:   "cancel <reminder-id>",
		Short: "Cancel an active reminder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, cleanup, err := openDatabase()
			if err != nil {
				return err
			}
			defer cleanup()

			if err := database.NewReminderRepository(db).Cancel(context.Background(), workspaceID, args[0]); err != nil {
				return fmt.Errorf("failed to cancel reminder: %w", err)
			}

			fmt.Printf("Cancelled %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&workspaceID, "workspace", "w", "", "Workspace ID (required)")
	if err := cmd.MarkFlagRequired("workspace"); err != nil {
		panic(err)
	}

	return cmd
}

func newRemindersMissedCmd() *cobra.Command {
	var workspaceID string
	var agentID string

	cmd := &cobra.Command{
		Use:   "missed",
		Short: "List undelivered announcements for an agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, cleanup, err := openDatabase()
			if err != nil {
				return err
			}
			defer cleanup()

			missed, err := database.NewAnnouncementRepository(db).GetMissed(context.Background(), workspaceID, agentID)
			if err != nil {
				return fmt.Errorf("failed to list missed announcements: %w", err)
			}

			if len(missed) == 0 {
				fmt.Println("No missed announcements")
				return nil
			}

			for _, ann := range missed {
				fmt.Printf("  - %s reminder=%s announce_at=%s\n",
					ann.ID, ann.ReminderID, ann.AnnounceAt.Format("2006-01-02 15:04 MST"))
				if ann.MissedReason != nil {
					fmt.Printf("    Reason: %s\n", *ann.MissedReason)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&workspaceID, "workspace", "w", "", "Workspace ID (required)")
	cmd.Flags().StringVarP(&agentID, "agent", "a", "assistant", "Agent ID")
	if err := cmd.MarkFlagRequired("workspace"); err != nil {
		panic(err)
	}

	return cmd
}

// openDatabase loads config and opens the database connection. The
// returned cleanup closes the connection and reports failures to stderr.
func openDatabase() (*database.DB, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}

	return db, cleanup, nil
}
