package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/memograph/memograph/internal/models"
	"github.com/memograph/memograph/internal/scheduler"
	"github.com/memograph/memograph/internal/validation"
)

const dateLayout = "2006-01-02"

// ReminderRepository handles reminder database operations
type ReminderRepository struct {
	db *DB

	// now is swappable so tests can pin the clock
	now func() time.Time
}

// NewReminderRepository creates a new reminder repository
func NewReminderRepository(db *DB) *ReminderRepository {
	return &ReminderRepository{db: db, now: time.Now}
}

// CreateOneTime creates a reminder that fires exactly once. The combined
// start date and time of day must be in the future.
func (r *ReminderRepository) CreateOneTime(ctx context.Context, workspaceID string, input models.NewOneTimeReminder) (string, error) {
	if err := requireWorkspace(workspaceID); err != nil {
		return "", err
	}
	if err := validation.Validate.Struct(input); err != nil {
		return "", &models.InvalidParameterError{Param: "reminder", Reason: err.Error()}
	}

	loc, err := time.LoadLocation(input.Timezone)
	if err != nil {
		return "", &models.InvalidParameterError{Param: "timezone", Reason: "unknown timezone"}
	}
	day, err := time.ParseInLocation(dateLayout, input.StartDate, loc)
	if err != nil {
		return "", &models.InvalidParameterError{Param: "start_date", Reason: "must be YYYY-MM-DD"}
	}
	hour, minute, err := validation.ParseTimeOfDay(input.TimeOfDay)
	if err != nil {
		return "", err
	}

	at := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc)
	if !at.After(r.now()) {
		return "", &models.InvalidParameterError{Param: "start_date", Reason: "must be in the future"}
	}

	rem := &models.Reminder{
		WorkspaceID:    workspaceID,
		Message:        input.Message,
		TimeOfDay:      input.TimeOfDay,
		Timezone:       input.Timezone,
		StartDate:      day,
		Recurrence:     models.RecurrenceOnce,
		Status:         models.ReminderStatusActive,
		NextOccurrence: at,
		CreatedBy:      input.CreatedBy,
	}
	return r.insert(ctx, rem)
}

// CreateRecurring creates a repeating reminder. The day-set or day-of-month
// must match the recurrence type, and the first occurrence is computed from
// the start date (or now if the start date has passed).
func (r *ReminderRepository) CreateRecurring(ctx context.Context, workspaceID string, input models.NewRecurringReminder) (string, error) {
	if err := requireWorkspace(workspaceID); err != nil {
		return "", err
	}
	if err := validation.Validate.Struct(input); err != nil {
		return "", &models.InvalidParameterError{Param: "reminder", Reason: err.Error()}
	}
	if input.Recurrence == models.RecurrenceOnce {
		return "", &models.InvalidParameterError{Param: "recurrence_type", Reason: "use CreateOneTime for once reminders"}
	}
	if input.Recurrence == models.RecurrenceWeekly && len(input.WeeklyDays) == 0 {
		return "", &models.InvalidParameterError{Param: "weekly_days", Reason: "required for weekly recurrence"}
	}
	if input.Recurrence != models.RecurrenceWeekly && len(input.WeeklyDays) > 0 {
		return "", &models.InvalidParameterError{Param: "weekly_days", Reason: "only valid for weekly recurrence"}
	}
	if input.Recurrence == models.RecurrenceMonthly && input.MonthlyDay == 0 {
		return "", &models.InvalidParameterError{Param: "monthly_day", Reason: "required for monthly recurrence"}
	}
	if input.Recurrence != models.RecurrenceMonthly && input.MonthlyDay != 0 {
		return "", &models.InvalidParameterError{Param: "monthly_day", Reason: "only valid for monthly recurrence"}
	}

	loc, err := time.LoadLocation(input.Timezone)
	if err != nil {
		return "", &models.InvalidParameterError{Param: "timezone", Reason: "unknown timezone"}
	}

	now := r.now().In(loc)
	start := now
	if input.StartDate != "" {
		start, err = time.ParseInLocation(dateLayout, input.StartDate, loc)
		if err != nil {
			return "", &models.InvalidParameterError{Param: "start_date", Reason: "must be YYYY-MM-DD"}
		}
	}

	var endDate *time.Time
	if input.EndDate != "" {
		end, err := time.ParseInLocation(dateLayout, input.EndDate, loc)
		if err != nil {
			return "", &models.InvalidParameterError{Param: "end_date", Reason: "must be YYYY-MM-DD"}
		}
		if end.Before(start) {
			return "", &models.InvalidParameterError{Param: "end_date", Reason: "must not be before start_date"}
		}
		endDate = &end
	}

	sched := scheduler.Schedule{
		TimeOfDay:  input.TimeOfDay,
		Timezone:   input.Timezone,
		Recurrence: input.Recurrence,
		WeeklyDays: input.WeeklyDays,
		MonthlyDay: input.MonthlyDay,
	}

	// Scan from the eve of a future start date so the start date itself is
	// eligible; an elapsed start date scans from now.
	from := now
	if start.After(now) {
		from = start.AddDate(0, 0, -1)
	}
	next, err := scheduler.NextOccurrence(sched, from)
	if err != nil {
		return "", err
	}

	rem := &models.Reminder{
		WorkspaceID:    workspaceID,
		Message:        input.Message,
		TimeOfDay:      input.TimeOfDay,
		Timezone:       input.Timezone,
		StartDate:      start,
		EndDate:        endDate,
		Recurrence:     input.Recurrence,
		WeeklyDays:     input.WeeklyDays,
		MonthlyDay:     input.MonthlyDay,
		Status:         models.ReminderStatusActive,
		NextOccurrence: next,
		CreatedBy:      input.CreatedBy,
	}
	return r.insert(ctx, rem)
}

func (r *ReminderRepository) insert(ctx context.Context, rem *models.Reminder) (string, error) {
	var id string
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		allocated, err := allocateIDs(ctx, tx, models.KindReminder, 1)
		if err != nil {
			return err
		}
		if err := insertNodeRows(ctx, tx, models.KindReminder, rem.WorkspaceID, allocated); err != nil {
			return err
		}

		var endDate sql.NullTime
		if rem.EndDate != nil {
			endDate = sql.NullTime{Time: *rem.EndDate, Valid: true}
		}
		var monthlyDay sql.NullInt64
		if rem.MonthlyDay > 0 {
			monthlyDay = sql.NullInt64{Int64: int64(rem.MonthlyDay), Valid: true}
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO reminders (
				id, workspace_id, message, time_of_day, timezone, start_date, end_date,
				recurrence_type, weekly_days, monthly_day, status, next_occurrence, created_by
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`, allocated[0], rem.WorkspaceID, rem.Message, rem.TimeOfDay, rem.Timezone,
			rem.StartDate, endDate, string(rem.Recurrence), pq.Array(weekdaysToInts(rem.WeeklyDays)),
			monthlyDay, string(rem.Status), rem.NextOccurrence, rem.CreatedBy); err != nil {
			return fmt.Errorf("failed to create reminder: %w", err)
		}

		id = allocated[0]
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetDue claims up to limit active reminders whose next occurrence has
// passed and whose end date has not. The locking read skips rows already
// locked by a concurrent claimant, so parallel pollers partition the due
// set instead of double-claiming; a loser simply receives fewer rows.
func (r *ReminderRepository) GetDue(ctx context.Context, now time.Time, limit int) ([]*models.Reminder, error) {
	if limit < 1 {
		return nil, &models.InvalidParameterError{Param: "limit", Reason: "must be at least 1"}
	}

	ctx, span := otel.Tracer("memograph/database").Start(ctx, "reminders.GetDue")
	span.SetAttributes(attribute.Int("limit", limit))
	defer span.End()

	var due []*models.Reminder
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT `+reminderColumns+`
			FROM reminders
			WHERE status = 'active'
			  AND next_occurrence <= $1
			  AND (end_date IS NULL OR end_date >= ($1 AT TIME ZONE timezone)::date)
			ORDER BY next_occurrence
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		`, now, limit)
		if err != nil {
			return fmt.Errorf("failed to query due reminders: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			rem, err := scanReminder(rows)
			if err != nil {
				return err
			}
			due = append(due, rem)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return due, nil
}

// MarkTriggered records a trigger in one transaction: last_triggered is
// set, a once reminder completes, and a recurring reminder's next
// occurrence advances, so the derived field is never stale.
func (r *ReminderRepository) MarkTriggered(ctx context.Context, id string, now time.Time) (*models.Reminder, error) {
	if _, err := models.ParseIDOfKind(id, models.KindReminder); err != nil {
		return nil, err
	}

	var rem *models.Reminder
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			SELECT `+reminderColumns+`
			FROM reminders
			WHERE id = $1
			FOR UPDATE
		`, id)
		loaded, err := scanReminder(row)
		if err == sql.ErrNoRows {
			return &models.NotFoundError{Kind: models.KindReminder, ID: id}
		}
		if err != nil {
			return err
		}

		loaded.LastTriggered = &now
		if loaded.Recurrence == models.RecurrenceOnce {
			loaded.Status = models.ReminderStatusCompleted
		} else {
			next, err := scheduler.NextOccurrence(scheduler.FromReminder(loaded), now)
			if err != nil {
				return err
			}
			loaded.NextOccurrence = next
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE reminders
			SET last_triggered = $1, status = $2, next_occurrence = $3, updated_at = now()
			WHERE id = $4
		`, now, string(loaded.Status), loaded.NextOccurrence, id); err != nil {
			return fmt.Errorf("failed to mark reminder %s triggered: %w", id, err)
		}

		rem = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rem, nil
}

// Cancel transitions an active reminder to the cancelled terminal state
func (r *ReminderRepository) Cancel(ctx context.Context, workspaceID, id string) error {
	if err := requireWorkspace(workspaceID); err != nil {
		return err
	}
	if _, err := models.ParseIDOfKind(id, models.KindReminder); err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE reminders SET status = 'cancelled', updated_at = now()
		WHERE id = $1 AND workspace_id = $2 AND status = 'active'
	`, id, workspaceID)
	if err != nil {
		return fmt.Errorf("failed to cancel reminder %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	} else if n == 0 {
		return &models.NotFoundError{Kind: models.KindReminder, ID: id}
	}
	return nil
}

// GetByWorkspace retrieves all reminders of a workspace ordered by next
// occurrence
func (r *ReminderRepository) GetByWorkspace(ctx context.Context, workspaceID string) ([]*models.Reminder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+reminderColumns+`
		FROM reminders
		WHERE workspace_id = $1
		ORDER BY next_occurrence, id
	`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	defer rows.Close()

	var reminders []*models.Reminder
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, rem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reminders: %w", err)
	}

	return reminders, nil
}

const reminderColumns = `id, workspace_id, message, time_of_day, timezone, start_date, end_date,
	recurrence_type, weekly_days, monthly_day, status, last_triggered, next_occurrence,
	created_by, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReminder(row rowScanner) (*models.Reminder, error) {
	rem := &models.Reminder{}
	var endDate, lastTriggered sql.NullTime
	var weeklyDays pq.Int64Array
	var monthlyDay sql.NullInt64
	var recurrence, status string

	err := row.Scan(
		&rem.ID,
		&rem.WorkspaceID,
		&rem.Message,
		&rem.TimeOfDay,
		&rem.Timezone,
		&rem.StartDate,
		&endDate,
		&recurrence,
		&weeklyDays,
		&monthlyDay,
		&status,
		&lastTriggered,
		&rem.NextOccurrence,
		&rem.CreatedBy,
		&rem.CreatedAt,
		&rem.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan reminder: %w", err)
	}

	rem.Recurrence = models.RecurrenceType(recurrence)
	rem.Status = models.ReminderStatus(status)
	if endDate.Valid {
		rem.EndDate = &endDate.Time
	}
	if lastTriggered.Valid {
		rem.LastTriggered = &lastTriggered.Time
	}
	if monthlyDay.Valid {
		rem.MonthlyDay = int(monthlyDay.Int64)
	}
	rem.WeeklyDays = intsToWeekdays(weeklyDays)

	return rem, nil
}

func weekdaysToInts(days []time.Weekday) []int64 {
	if len(days) == 0 {
		return nil
	}
	out := make([]int64, len(days))
	for i, d := range days {
		out[i] = int64(d)
	}
	return out
}

func intsToWeekdays(ints []int64) []time.Weekday {
	if len(ints) == 0 {
		return nil
	}
	out := make([]time.Weekday, len(ints))
	for i, n := range ints {
		out[i] = time.Weekday(n)
	}
	return out
}
