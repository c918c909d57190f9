package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/memograph/memograph/internal/models"
	"github.com/memograph/memograph/internal/validation"
)

// AnnouncementRepository handles reminder announcement records. Rows are
// append-only delivery attempts: created undelivered and queryable as
// missed per agent until explicitly marked delivered, which makes delivery
// at-least-once even for a consumer that was offline at trigger time.
type AnnouncementRepository struct {
	db *DB
}

// NewAnnouncementRepository creates a new announcement repository
func NewAnnouncementRepository(db *DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// Create records a delivery attempt for a triggered reminder
func (r *AnnouncementRepository) Create(ctx context.Context, workspaceID string, input models.NewAnnouncement) (string, error) {
	if err := requireWorkspace(workspaceID); err != nil {
		return "", err
	}
	if err := validation.Validate.Struct(input); err != nil {
		return "", &models.InvalidParameterError{Param: "announcement", Reason: err.Error()}
	}
	if _, err := models.ParseIDOfKind(input.ReminderID, models.KindReminder); err != nil {
		return "", err
	}

	var id string
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx, `
			SELECT EXISTS (SELECT 1 FROM reminders WHERE id = $1 AND workspace_id = $2)
		`, input.ReminderID, workspaceID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check reminder %s: %w", input.ReminderID, err)
		}
		if !exists {
			return &models.NotFoundError{Kind: models.KindReminder, ID: input.ReminderID}
		}

		allocated, err := allocateIDs(ctx, tx, models.KindAnnouncement, 1)
		if err != nil {
			return err
		}

		var missedReason sql.NullString
		if input.MissedReason != "" {
			missedReason = sql.NullString{String: input.MissedReason, Valid: true}
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO reminder_announcements (id, workspace_id, reminder_id, agent_id, announce_at, missed_reason)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, allocated[0], workspaceID, input.ReminderID, input.AgentID, input.AnnounceAt, missedReason); err != nil {
			return fmt.Errorf("failed to create announcement: %w", err)
		}

		id = allocated[0]
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetMissed retrieves the undelivered announcements for an agent, oldest
// first
func (r *AnnouncementRepository) GetMissed(ctx context.Context, workspaceID, agentID string) ([]*models.Announcement, error) {
	if err := requireWorkspace(workspaceID); err != nil {
		return nil, err
	}
	if agentID == "" {
		return nil, &models.InvalidParameterError{Param: "agent_id", Reason: "required"}
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, workspace_id, reminder_id, agent_id, announce_at, delivered, delivered_at, missed_reason, created_at
		FROM reminder_announcements
		WHERE workspace_id = $1 AND agent_id = $2 AND NOT delivered
		ORDER BY announce_at
	`, workspaceID, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query missed announcements: %w", err)
	}
	defer rows.Close()

	var missed []*models.Announcement
	for rows.Next() {
		ann := &models.Announcement{}
		var deliveredAt sql.NullTime
		var missedReason sql.NullString
		if err := rows.Scan(&ann.ID, &ann.WorkspaceID, &ann.ReminderID, &ann.AgentID,
			&ann.AnnounceAt, &ann.Delivered, &deliveredAt, &missedReason, &ann.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan announcement: %w", err)
		}
		if deliveredAt.Valid {
			ann.DeliveredAt = &deliveredAt.Time
		}
		if missedReason.Valid {
			ann.MissedReason = &missedReason.String
		}
		missed = append(missed, ann)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating announcements: %w", err)
	}

	return missed, nil
}

// MarkDelivered resolves an announcement. Re-marking a delivered
// announcement is a no-op, so at-least-once consumers can ack safely.
func (r *AnnouncementRepository) MarkDelivered(ctx context.Context, workspaceID, id string) error {
	if err := requireWorkspace(workspaceID); err != nil {
		return err
	}
	if _, err := models.ParseIDOfKind(id, models.KindAnnouncement); err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE reminder_announcements
		SET delivered = TRUE, delivered_at = COALESCE(delivered_at, now())
		WHERE id = $1 AND workspace_id = $2
	`, id, workspaceID)
	if err != nil {
		return fmt.Errorf("failed to mark announcement %s delivered: %w", id, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	} else if n == 0 {
		return &models.NotFoundError{Kind: models.KindAnnouncement, ID: id}
	}
	return nil
}

// MarkMissed records why an undelivered announcement could not reach its
// agent; the row stays queryable as missed
func (r *AnnouncementRepository) MarkMissed(ctx context.Context, id, reason string) error {
	if _, err := models.ParseIDOfKind(id, models.KindAnnouncement); err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, `
		UPDATE reminder_announcements SET missed_reason = $1
		WHERE id = $2 AND NOT delivered
	`, reason, id); err != nil {
		return fmt.Errorf("failed to mark announcement %s missed: %w", id, err)
	}
	return nil
}
