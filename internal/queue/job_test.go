package queue

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewAnnounceJob(t *testing.T) {
	t.Parallel()

	job := NewAnnounceJob("ws1", "reminder:3", "announcement:7", "assistant", "standup in 5")

	if job.Type != JobTypeAnnounce {
		t.Errorf("Type = %q, want %q", job.Type, JobTypeAnnounce)
	}
	if job.WorkspaceID != "ws1" || job.ReminderID != "reminder:3" || job.AnnouncementID != "announcement:7" {
		t.Errorf("ids not carried: %+v", job)
	}
	if job.AgentID != "assistant" || job.Message != "standup in 5" {
		t.Errorf("payload not carried: %+v", job)
	}
	if job.RetryCount != 0 || job.MaxRetries != 3 {
		t.Errorf("retry defaults = %d/%d, want 0/3", job.RetryCount, job.MaxRetries)
	}
	if !job.ShouldProcess() {
		t.Error("fresh job without windows should be processable")
	}
	if job.IsExpired() {
		t.Error("fresh job without NotAfter should not be expired")
	}
}

func TestJobTimeWindows(t *testing.T) {
	t.Parallel()

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name        string
		notBefore   *time.Time
		notAfter    *time.Time
		wantProcess bool
		wantExpired bool
	}{
		{name: "no windows", wantProcess: true},
		{name: "window open", notBefore: &past, notAfter: &future, wantProcess: true},
		{name: "not yet due", notBefore: &future, wantProcess: false},
		{name: "expired", notAfter: &past, wantProcess: false, wantExpired: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			job := NewAnnounceJob("ws1", "reminder:1", "announcement:1", "assistant", "hi")
			job.NotBefore = tt.notBefore
			job.NotAfter = tt.notAfter

			if got := job.ShouldProcess(); got != tt.wantProcess {
				t.Errorf("ShouldProcess() = %v, want %v", got, tt.wantProcess)
			}
			if got := job.IsExpired(); got != tt.wantExpired {
				t.Errorf("IsExpired() = %v, want %v", got, tt.wantExpired)
			}
		})
	}
}

func TestJobRetryBudget(t *testing.T) {
	t.Parallel()

	job := NewAnnounceJob("ws1", "reminder:1", "announcement:1", "assistant", "hi")
	for i := 0; i < job.MaxRetries; i++ {
		if !job.CanRetry() {
			t.Fatalf("CanRetry() = false after %d retries, budget is %d", i, job.MaxRetries)
		}
		job.IncrementRetry()
	}
	if job.CanRetry() {
		t.Error("CanRetry() should be false once the budget is spent")
	}
}

func TestJobSurvivesWireFormat(t *testing.T) {
	t.Parallel()

	notAfter := time.Now().Add(time.Hour).Truncate(time.Second)
	job := NewAnnounceJob("ws1", "reminder:2", "announcement:4", "assistant", "water the plants")
	job.NotAfter = &notAfter

	data, err := json.Marshal(job)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}

	var decoded Job
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}

	if decoded.ID != job.ID {
		t.Errorf("ID = %v, want %v", decoded.ID, job.ID)
	}
	if decoded.AnnouncementID != job.AnnouncementID || decoded.Message != job.Message {
		t.Errorf("payload lost on the wire: %+v", decoded)
	}
	if decoded.NotAfter == nil || !decoded.NotAfter.Equal(notAfter) {
		t.Errorf("NotAfter = %v, want %v", decoded.NotAfter, notAfter)
	}
}
