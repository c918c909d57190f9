package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewMigrateCmd creates the migrate command
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Long:  "Create or update tables, indexes, and notification triggers",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, cleanup, err := openDatabase()
			if err != nil {
				return err
			}
			defer cleanup()

			if err := db.Migrate(context.Background()); err != nil {
				return fmt.Errorf("failed to apply schema: %w", err)
			}

			fmt.Println("Schema applied")
			return nil
		},
	}
}
