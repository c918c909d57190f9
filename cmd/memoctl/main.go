package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/memograph/memograph/cmd/memoctl/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "memoctl",
		Short: "Admin tool for the memograph store",
		Long:  "CLI tool for inspecting workspaces, reminders, and change streams",
	}

	rootCmd.AddCommand(commands.NewDumpCmd())
	rootCmd.AddCommand(commands.NewRemindersCmd())
	rootCmd.AddCommand(commands.NewWatchCmd())
	rootCmd.AddCommand(commands.NewListenCmd())
	rootCmd.AddCommand(commands.NewMigrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
