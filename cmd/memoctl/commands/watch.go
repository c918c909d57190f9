package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/memograph/memograph/internal/cache"
	"github.com/memograph/memograph/internal/config"
	"github.com/memograph/memograph/internal/database"
	"github.com/memograph/memograph/internal/graph"
	"github.com/memograph/memograph/internal/logger"
	"github.com/memograph/memograph/internal/models"
	"github.com/memograph/memograph/internal/notify"
)

// NewWatchCmd creates the watch command
func NewWatchCmd() *cobra.Command {
	var workspaceID string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream workspace trees as the graph changes",
		Long:  "Subscribe to change notifications and print the reassembled tree after every mutation",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer func() {
				if err := db.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
				}
			}()

			zapLogger, err := logger.NewDevelopmentLogger(false)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			assembler := graph.NewAssembler(
				database.NewListRepository(db),
				database.NewTaskRepository(db),
				database.NewNoteRepository(db),
				database.NewQuestionRepository(db),
				database.NewEdgeRepository(db),
				database.NewReminderRepository(db),
				zapLogger,
			)

			// Snapshot caching is advisory; watch works without Redis
			var snapshots notify.SnapshotStore
			if cfg.RedisURL != "" {
				graphCache, err := cache.New(cfg.RedisURL, time.Duration(cfg.SnapshotTTLSecs)*time.Second)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Warning: snapshot cache unavailable: %v\n", err)
				} else {
					defer func() {
						if err := graphCache.Close(); err != nil {
							fmt.Fprintf(os.Stderr, "Warning: failed to close cache: %v\n", err)
						}
					}()
					snapshots = graphCache
				}
			}

			bus := notify.NewBus(
				notify.NewPQListenerFactory(cfg.DatabaseURL, zapLogger),
				assembler,
				snapshots,
				zapLogger,
			)

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")

			unsubscribe, err := bus.Subscribe(workspaceID, func(tree *models.GraphTree) {
				fmt.Printf("--- %s ---\n", time.Now().Format(time.RFC3339))
				if err := encoder.Encode(tree); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to encode tree: %v\n", err)
				}
			})
			if err != nil {
				return fmt.Errorf("failed to subscribe: %w", err)
			}
			defer unsubscribe()

			fmt.Fprintf(os.Stderr, "Watching workspace %s, Ctrl-C to stop\n", workspaceID)

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			<-sigChan

			return nil
		},
	}

	cmd.Flags().StringVarP(&workspaceID, "workspace", "w", "", "Workspace ID (required)")
	if err := cmd.MarkFlagRequired("workspace"); err != nil {
		panic(err)
	}

	return cmd
}
