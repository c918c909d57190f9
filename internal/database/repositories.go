package database

import (
	"context"
	"time"

	"github.com/memograph/memograph/internal/models"
)

// Reader interfaces for the graph assembler. Narrow interfaces keep the
// assembler testable against fakes without a live database.

type ListReader interface {
	GetByWorkspace(ctx context.Context, workspaceID string) ([]*models.List, error)
}

type TaskReader interface {
	GetByWorkspace(ctx context.Context, workspaceID string) ([]*models.Task, error)
}

type NoteReader interface {
	GetByWorkspace(ctx context.Context, workspaceID string) ([]*models.Note, error)
}

type QuestionReader interface {
	GetByWorkspace(ctx context.Context, workspaceID string) ([]*models.Question, error)
}

type EdgeReader interface {
	GetByWorkspace(ctx context.Context, workspaceID string) ([]*models.Edge, error)
}

type ReminderReader interface {
	GetByWorkspace(ctx context.Context, workspaceID string) ([]*models.Reminder, error)
}

// DueReminderClaimer is the worker's view of the reminder store
type DueReminderClaimer interface {
	GetDue(ctx context.Context, now time.Time, limit int) ([]*models.Reminder, error)
	MarkTriggered(ctx context.Context, id string, now time.Time) (*models.Reminder, error)
}

// AnnouncementRecorder is the worker's view of the announcement store
type AnnouncementRecorder interface {
	Create(ctx context.Context, workspaceID string, input models.NewAnnouncement) (string, error)
	MarkMissed(ctx context.Context, id, reason string) error
}

// Ensure concrete types implement the interfaces
var (
	_ ListReader           = (*ListRepository)(nil)
	_ TaskReader           = (*TaskRepository)(nil)
	_ NoteReader           = (*NoteRepository)(nil)
	_ QuestionReader       = (*QuestionRepository)(nil)
	_ EdgeReader           = (*EdgeRepository)(nil)
	_ ReminderReader       = (*ReminderRepository)(nil)
	_ DueReminderClaimer   = (*ReminderRepository)(nil)
	_ AnnouncementRecorder = (*AnnouncementRepository)(nil)
)
