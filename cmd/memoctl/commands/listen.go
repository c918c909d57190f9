package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/memograph/memograph/internal/config"
	"github.com/memograph/memograph/internal/database"
	"github.com/memograph/memograph/internal/queue"
)

// NewListenCmd creates the listen command
func NewListenCmd() *cobra.Command {
	var agentID string

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Consume announcement jobs and print them",
		Long:  "Reference delivery consumer: prints each announcement addressed to the agent, marks it delivered, and acks the job",
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

			announcementRepo := database.NewAnnouncementRepository(db)

			jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL)
			if err != nil {
				return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
			}
			defer func() {
				if err := jobQueue.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close queue: %v\n", err)
				}
			}()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			msgChan, errChan, err := jobQueue.Consume(ctx, cfg.RabbitMQPrefetch)
			if err != nil {
				return fmt.Errorf("failed to start consuming: %w", err)
			}

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

			fmt.Fprintf(os.Stderr, "Listening as agent %s, Ctrl-C to stop\n", agentID)

			for {
				select {
				case <-sigChan:
					return nil
				case err, ok := <-errChan:
					if !ok {
						return nil
					}
					fmt.Fprintf(os.Stderr, "Warning: queue error: %v\n", err)
				case msg, ok := <-msgChan:
					if !ok {
						return nil
					}
					job := msg.GetJob()

					// Jobs for other agents go back on the queue
					if job.AgentID != agentID {
						if err := msg.Nack(true); err != nil {
							fmt.Fprintf(os.Stderr, "Warning: failed to requeue job: %v\n", err)
						}
						continue
					}

					fmt.Printf("[%s] %s (reminder %s)\n", job.WorkspaceID, job.Message, job.ReminderID)

					if err := announcementRepo.MarkDelivered(ctx, job.WorkspaceID, job.AnnouncementID); err != nil {
						fmt.Fprintf(os.Stderr, "Warning: failed to mark delivered: %v\n", err)
						if err := msg.Nack(job.CanRetry()); err != nil {
							fmt.Fprintf(os.Stderr, "Warning: failed to nack job: %v\n", err)
						}
						continue
					}

					if err := msg.Ack(); err != nil {
						fmt.Fprintf(os.Stderr, "Warning: failed to ack job: %v\n", err)
					}
				}
			}
		},
	}

	cmd.Flags().StringVarP(&agentID, "agent", "a", "assistant", "Agent ID")

	return cmd
}
