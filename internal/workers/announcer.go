package workers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/memograph/memograph/internal/database"
	"github.com/memograph/memograph/internal/models"
	"github.com/memograph/memograph/internal/queue"
)

// JobEnqueuer is the announcer's view of the job queue
type JobEnqueuer interface {
	Enqueue(ctx context.Context, job *queue.Job) error
}

// Announcer polls for due reminders, advances their schedules, and fans
// out one announcement job per configured agent. Claiming uses row locks
// so concurrent announcers partition due reminders instead of double
// triggering them.
type Announcer struct {
	reminders     database.DueReminderClaimer
	announcements database.AnnouncementRecorder
	queue         JobEnqueuer
	agents        []string
	claimLimit    int
	logger        *zap.Logger
	now           func() time.Time
}

// NewAnnouncer creates a new announcer worker
func NewAnnouncer(
	reminders database.DueReminderClaimer,
	announcements database.AnnouncementRecorder,
	jobQueue JobEnqueuer,
	agents []string,
	claimLimit int,
	logger *zap.Logger,
) *Announcer {
	if claimLimit <= 0 {
		claimLimit = 50
	}
	return &Announcer{
		reminders:     reminders,
		announcements: announcements,
		queue:         jobQueue,
		agents:        agents,
		claimLimit:    claimLimit,
		logger:        logger,
		now:           time.Now,
	}
}

// Poll claims a batch of due reminders and announces each one. A failure
// on one reminder is logged and does not block the rest of the batch.
// Returns the number of reminders triggered.
func (a *Announcer) Poll(ctx context.Context) (int, error) {
	now := a.now()

	due, err := a.reminders.GetDue(ctx, now, a.claimLimit)
	if err != nil {
		return 0, fmt.Errorf("failed to claim due reminders: %w", err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	a.logger.Info("claimed due reminders",
		zap.Int("count", len(due)),
		zap.Time("poll_time", now))

	triggered := 0
	for _, rem := range due {
		select {
		case <-ctx.Done():
			return triggered, ctx.Err()
		default:
		}

		if err := a.announce(ctx, rem, now); err != nil {
			a.logger.Error("failed to announce reminder",
				zap.String("reminder_id", rem.ID),
				zap.String("workspace_id", rem.WorkspaceID),
				zap.Error(err))
			continue
		}
		triggered++
	}

	return triggered, nil
}

// announce advances the reminder's schedule and records one announcement
// per agent. Schedule advancement happens first so a crash mid fan-out
// never replays the same occurrence.
func (a *Announcer) announce(ctx context.Context, rem *models.Reminder, now time.Time) error {
	occurrence := rem.NextOccurrence

	updated, err := a.reminders.MarkTriggered(ctx, rem.ID, now)
	if err != nil {
		return fmt.Errorf("failed to mark reminder triggered: %w", err)
	}

	for _, agentID := range a.agents {
		announcementID, err := a.announcements.Create(ctx, rem.WorkspaceID, models.NewAnnouncement{
			ReminderID: rem.ID,
			AgentID:    agentID,
			AnnounceAt: occurrence,
		})
		if err != nil {
			a.logger.Error("failed to record announcement",
				zap.String("reminder_id", rem.ID),
				zap.String("agent_id", agentID),
				zap.Error(err))
			continue
		}

		job := queue.NewAnnounceJob(rem.WorkspaceID, rem.ID, announcementID, agentID, rem.Message)
		if err := a.queue.Enqueue(ctx, job); err != nil {
			// The announcement row survives and stays queryable as
			// missed, so the agent can still catch up later.
			if missErr := a.announcements.MarkMissed(ctx, announcementID, "enqueue failed: "+err.Error()); missErr != nil {
				a.logger.Error("failed to mark announcement missed",
					zap.String("announcement_id", announcementID),
					zap.Error(missErr))
			}
			a.logger.Warn("announcement enqueue failed",
				zap.String("announcement_id", announcementID),
				zap.String("agent_id", agentID),
				zap.Error(err))
			continue
		}

		a.logger.Info("announcement enqueued",
			zap.String("reminder_id", rem.ID),
			zap.String("announcement_id", announcementID),
			zap.String("agent_id", agentID),
			zap.String("job_id", job.ID.String()))
	}

	a.logger.Info("reminder triggered",
		zap.String("reminder_id", rem.ID),
		zap.String("workspace_id", rem.WorkspaceID),
		zap.String("status", string(updated.Status)),
		zap.Time("occurrence", occurrence),
		zap.Time("next_occurrence", updated.NextOccurrence))

	return nil
}
