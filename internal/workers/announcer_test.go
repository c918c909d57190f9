package workers

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/memograph/memograph/internal/models"
	"github.com/memograph/memograph/internal/queue"
)

type fakeClaimer struct {
	due          []*models.Reminder
	getDueErr    error
	triggered    []string
	triggerErr   map[string]error
	triggerCalls int
}

func (f *fakeClaimer) GetDue(ctx context.Context, now time.Time, limit int) ([]*models.Reminder, error) {
	if f.getDueErr != nil {
		return nil, f.getDueErr
	}
	if limit < len(f.due) {
		return f.due[:limit], nil
	}
	return f.due, nil
}

func (f *fakeClaimer) MarkTriggered(ctx context.Context, id string, now time.Time) (*models.Reminder, error) {
	f.triggerCalls++
	if err := f.triggerErr[id]; err != nil {
		return nil, err
	}
	f.triggered = append(f.triggered, id)
	return &models.Reminder{
		ID:             id,
		Status:         models.ReminderStatusActive,
		NextOccurrence: now.Add(24 * time.Hour),
	}, nil
}

type recordedAnnouncement struct {
	workspaceID string
	input       models.NewAnnouncement
}

type fakeRecorder struct {
	created   []recordedAnnouncement
	createErr error
	missed    map[string]string
	nextSeq   int
}

func (f *fakeRecorder) Create(ctx context.Context, workspaceID string, input models.NewAnnouncement) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, recordedAnnouncement{workspaceID, input})
	f.nextSeq++
	return fmt.Sprintf("announcement:%d", f.nextSeq), nil
}

func (f *fakeRecorder) MarkMissed(ctx context.Context, id, reason string) error {
	if f.missed == nil {
		f.missed = make(map[string]string)
	}
	f.missed[id] = reason
	return nil
}

type fakeEnqueuer struct {
	jobs    []*queue.Job
	failFor map[string]error // keyed by agent id
}

func (f *fakeEnqueuer) Enqueue(ctx context.Context, job *queue.Job) error {
	if err := f.failFor[job.AgentID]; err != nil {
		return err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

func reminder(id, ws, message string, next time.Time) *models.Reminder {
	return &models.Reminder{
		ID:             id,
		WorkspaceID:    ws,
		Message:        message,
		Status:         models.ReminderStatusActive,
		Recurrence:     models.RecurrenceDaily,
		NextOccurrence: next,
	}
}

func TestPollNoDueReminders(t *testing.T) {
	t.Parallel()

	announcer := NewAnnouncer(&fakeClaimer{}, &fakeRecorder{}, &fakeEnqueuer{}, []string{"assistant"}, 10, zap.NewNop())

	triggered, err := announcer.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll() error: %v", err)
	}
	if triggered != 0 {
		t.Errorf("triggered = %d, want 0", triggered)
	}
}

func TestPollAnnouncesPerAgent(t *testing.T) {
	t.Parallel()

	occurrence := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	claimer := &fakeClaimer{due: []*models.Reminder{reminder("reminder:1", "ws1", "standup", occurrence)}}
	recorder := &fakeRecorder{}
	enqueuer := &fakeEnqueuer{}
	announcer := NewAnnouncer(claimer, recorder, enqueuer, []string{"assistant", "mobile"}, 10, zap.NewNop())

	triggered, err := announcer.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll() error: %v", err)
	}
	if triggered != 1 {
		t.Errorf("triggered = %d, want 1", triggered)
	}
	if len(claimer.triggered) != 1 || claimer.triggered[0] != "reminder:1" {
		t.Errorf("MarkTriggered calls = %v", claimer.triggered)
	}

	// One announcement and one job per agent
	if len(recorder.created) != 2 {
		t.Fatalf("announcements = %d, want 2", len(recorder.created))
	}
	for _, rec := range recorder.created {
		if rec.workspaceID != "ws1" || rec.input.ReminderID != "reminder:1" {
			t.Errorf("announcement = %+v", rec)
		}
		if !rec.input.AnnounceAt.Equal(occurrence) {
			t.Errorf("AnnounceAt = %v, want claimed occurrence %v", rec.input.AnnounceAt, occurrence)
		}
	}
	if len(enqueuer.jobs) != 2 {
		t.Fatalf("jobs = %d, want 2", len(enqueuer.jobs))
	}
	agents := map[string]bool{}
	for _, job := range enqueuer.jobs {
		agents[job.AgentID] = true
		if job.Message != "standup" || job.ReminderID != "reminder:1" {
			t.Errorf("job payload = %+v", job)
		}
	}
	if !agents["assistant"] || !agents["mobile"] {
		t.Errorf("jobs missing an agent: %v", agents)
	}
}

func TestPollEnqueueFailureMarksMissed(t *testing.T) {
	t.Parallel()

	claimer := &fakeClaimer{due: []*models.Reminder{reminder("reminder:1", "ws1", "standup", time.Now())}}
	recorder := &fakeRecorder{}
	enqueuer := &fakeEnqueuer{failFor: map[string]error{"assistant": errors.New("broker down")}}
	announcer := NewAnnouncer(claimer, recorder, enqueuer, []string{"assistant", "mobile"}, 10, zap.NewNop())

	triggered, err := announcer.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll() error: %v", err)
	}
	if triggered != 1 {
		t.Errorf("triggered = %d, want 1", triggered)
	}

	// Both announcements exist; only the failed agent's is marked missed
	if len(recorder.created) != 2 {
		t.Fatalf("announcements = %d, want 2", len(recorder.created))
	}
	if len(recorder.missed) != 1 {
		t.Fatalf("missed = %v, want exactly one entry", recorder.missed)
	}
	for _, reason := range recorder.missed {
		if reason == "" {
			t.Error("missed reason should carry the enqueue error")
		}
	}
	if len(enqueuer.jobs) != 1 || enqueuer.jobs[0].AgentID != "mobile" {
		t.Errorf("jobs = %+v, want only the mobile job", enqueuer.jobs)
	}
}

func TestPollTriggerFailureSkipsReminder(t *testing.T) {
	t.Parallel()

	claimer := &fakeClaimer{
		due: []*models.Reminder{
			reminder("reminder:1", "ws1", "broken", time.Now()),
			reminder("reminder:2", "ws1", "healthy", time.Now()),
		},
		triggerErr: map[string]error{"reminder:1": errors.New("row vanished")},
	}
	recorder := &fakeRecorder{}
	enqueuer := &fakeEnqueuer{}
	announcer := NewAnnouncer(claimer, recorder, enqueuer, []string{"assistant"}, 10, zap.NewNop())

	triggered, err := announcer.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll() error: %v", err)
	}
	if triggered != 1 {
		t.Errorf("triggered = %d, want 1", triggered)
	}

	// No announcement for the reminder whose trigger failed
	if len(recorder.created) != 1 || recorder.created[0].input.ReminderID != "reminder:2" {
		t.Errorf("announcements = %+v", recorder.created)
	}
}

func TestPollGetDueFailure(t *testing.T) {
	t.Parallel()

	claimer := &fakeClaimer{getDueErr: errors.New("database unavailable")}
	announcer := NewAnnouncer(claimer, &fakeRecorder{}, &fakeEnqueuer{}, []string{"assistant"}, 10, zap.NewNop())

	if _, err := announcer.Poll(context.Background()); err == nil {
		t.Error("Poll() should propagate claim failures")
	}
}

func TestPollHonorsClaimLimit(t *testing.T) {
	t.Parallel()

	claimer := &fakeClaimer{
		due: []*models.Reminder{
			reminder("reminder:1", "ws1", "a", time.Now()),
			reminder("reminder:2", "ws1", "b", time.Now()),
			reminder("reminder:3", "ws1", "c", time.Now()),
		},
	}
	announcer := NewAnnouncer(claimer, &fakeRecorder{}, &fakeEnqueuer{}, []string{"assistant"}, 2, zap.NewNop())

	triggered, err := announcer.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll() error: %v", err)
	}
	if triggered != 2 {
		t.Errorf("triggered = %d, want claim limit 2", triggered)
	}
}
