package queue

import (
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeAnnounce delivers a triggered reminder to one agent
	JobTypeAnnounce JobType = "reminder_announce"
)

// Job is the queue envelope for a reminder announcement. Delivery
// consumers ack the message and mark the announcement delivered; an
// unacked or expired job leaves the announcement queryable as missed.
type Job struct {
	ID             uuid.UUID      `json:"id"`
	Type           JobType        `json:"type"`
	WorkspaceID    string         `json:"workspace_id"`
	ReminderID     string         `json:"reminder_id"`
	AnnouncementID string         `json:"announcement_id"`
	AgentID        string         `json:"agent_id"`
	Message        string         `json:"message"`
	NotBefore      *time.Time     `json:"not_before,omitempty"` // earliest time to process (nil = immediate)
	NotAfter       *time.Time     `json:"not_after,omitempty"`  // latest time to process (nil = no expiration)
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	RetryCount     int            `json:"retry_count"`
	MaxRetries     int            `json:"max_retries"`
}

// NewAnnounceJob creates an announcement delivery job
func NewAnnounceJob(workspaceID, reminderID, announcementID, agentID, message string) *Job {
	return &Job{
		ID:             uuid.New(),
		Type:           JobTypeAnnounce,
		WorkspaceID:    workspaceID,
		ReminderID:     reminderID,
		AnnouncementID: announcementID,
		AgentID:        agentID,
		Message:        message,
		Metadata:       make(map[string]any),
		CreatedAt:      time.Now(),
		RetryCount:     0,
		MaxRetries:     3,
	}
}

// ShouldProcess checks if the job should be processed now
func (j *Job) ShouldProcess() bool {
	now := time.Now()

	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}
	if j.NotAfter != nil && now.After(*j.NotAfter) {
		return false
	}

	return true
}

// IsExpired checks if the job has expired
func (j *Job) IsExpired() bool {
	if j.NotAfter == nil {
		return false
	}
	return time.Now().After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}
