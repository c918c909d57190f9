package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/memograph/memograph/internal/cache"
	"github.com/memograph/memograph/internal/config"
	"github.com/memograph/memograph/internal/database"
	"github.com/memograph/memograph/internal/graph"
	"github.com/memograph/memograph/internal/models"
)

// NewDumpCmd creates the dump command
func NewDumpCmd() *cobra.Command {
	var workspaceID string
	var cached bool

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the assembled graph of a workspace",
		Long:  "Assemble and print the full denormalized tree of a workspace as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			ctx := context.Background()

			var tree *models.GraphTree
			if cached && cfg.RedisURL != "" {
				tree, err = cachedTree(ctx, cfg, workspaceID)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Warning: snapshot unavailable, assembling live: %v\n", err)
				}
			}

			if tree == nil {
				db, err := database.New(cfg.DatabaseURL)
				if err != nil {
					return fmt.Errorf("failed to connect to database: %w", err)
				}
				defer func() {
					if err := db.Close(); err != nil {
						fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
					}
				}()

				assembler := graph.NewAssembler(
					database.NewListRepository(db),
					database.NewTaskRepository(db),
					database.NewNoteRepository(db),
					database.NewQuestionRepository(db),
					database.NewEdgeRepository(db),
					database.NewReminderRepository(db),
					zap.NewNop(),
				)

				tree, err = assembler.Dump(ctx, workspaceID)
				if err != nil {
					return fmt.Errorf("failed to assemble graph: %w", err)
				}
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(tree); err != nil {
				return fmt.Errorf("failed to encode tree: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&workspaceID, "workspace", "w", "", "Workspace ID (required)")
	cmd.Flags().BoolVar(&cached, "cached", false, "Prefer the Redis snapshot over a live assembly")
	if err := cmd.MarkFlagRequired("workspace"); err != nil {
		panic(err)
	}

	return cmd
}

// cachedTree reads the last pushed snapshot; a nil tree without error
// means no snapshot exists yet
func cachedTree(ctx context.Context, cfg *config.Config, workspaceID string) (*models.GraphTree, error) {
	graphCache, err := cache.New(cfg.RedisURL, time.Duration(cfg.SnapshotTTLSecs)*time.Second)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := graphCache.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close cache: %v\n", err)
		}
	}()

	return graphCache.Snapshot(ctx, workspaceID)
}
