package models

import "time"

// RecurrenceType governs how a reminder's next occurrence is computed
type RecurrenceType string

const (
	RecurrenceOnce     RecurrenceType = "once"
	RecurrenceDaily    RecurrenceType = "daily"
	RecurrenceWeekdays RecurrenceType = "weekdays"
	RecurrenceWeekends RecurrenceType = "weekends"
	RecurrenceWeekly   RecurrenceType = "weekly"
	RecurrenceMonthly  RecurrenceType = "monthly"
)

// ReminderStatus is the lifecycle state of a reminder. Completed and
// cancelled are terminal.
type ReminderStatus string

const (
	ReminderStatusActive    ReminderStatus = "active"
	ReminderStatusCompleted ReminderStatus = "completed"
	ReminderStatusCancelled ReminderStatus = "cancelled"
)

// Reminder is a one-time or recurring scheduled notification.
// NextOccurrence is derived: it always equals the recurrence function
// applied to the last trigger (or the start date).
type Reminder struct {
	ID             string         `json:"id"`
	WorkspaceID    string         `json:"workspace_id"`
	Message        string         `json:"message"`
	TimeOfDay      string         `json:"time_of_day"` // "HH:MM" in Timezone
	Timezone       string         `json:"timezone"`
	StartDate      time.Time      `json:"start_date"`
	EndDate        *time.Time     `json:"end_date,omitempty"`
	Recurrence     RecurrenceType `json:"recurrence_type"`
	WeeklyDays     []time.Weekday `json:"weekly_days,omitempty"`
	MonthlyDay     int            `json:"monthly_day,omitempty"`
	Status         ReminderStatus `json:"status"`
	LastTriggered  *time.Time     `json:"last_triggered,omitempty"`
	NextOccurrence time.Time      `json:"next_occurrence"`
	CreatedBy      string         `json:"created_by"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Announcement is an append-only delivery record for a triggered reminder.
// It stays queryable as missed for its agent until explicitly marked
// delivered.
type Announcement struct {
	ID           string     `json:"id"`
	WorkspaceID  string     `json:"workspace_id"`
	ReminderID   string     `json:"reminder_id"`
	AgentID      string     `json:"agent_id"`
	AnnounceAt   time.Time  `json:"announce_at"`
	Delivered    bool       `json:"delivered"`
	DeliveredAt  *time.Time `json:"delivered_at,omitempty"`
	MissedReason *string    `json:"missed_reason,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// NewOneTimeReminder creates a reminder that fires once. The combined
// StartDate + TimeOfDay instant must be in the future.
type NewOneTimeReminder struct {
	Message   string `json:"message" validate:"required,min=1,max=500"`
	StartDate string `json:"start_date" validate:"required"` // "YYYY-MM-DD"
	TimeOfDay string `json:"time_of_day" validate:"required,time_of_day"`
	Timezone  string `json:"timezone" validate:"required,iana_timezone"`
	CreatedBy string `json:"created_by" validate:"required"`
}

// NewRecurringReminder creates a repeating reminder. WeeklyDays is required
// for weekly recurrence and MonthlyDay for monthly recurrence; both are
// rejected for other types.
type NewRecurringReminder struct {
	Message    string         `json:"message" validate:"required,min=1,max=500"`
	Recurrence RecurrenceType `json:"recurrence_type" validate:"required,recurrence_type"`
	StartDate  string         `json:"start_date,omitempty"` // "YYYY-MM-DD", defaults to today
	EndDate    string         `json:"end_date,omitempty"`
	TimeOfDay  string         `json:"time_of_day" validate:"required,time_of_day"`
	Timezone   string         `json:"timezone" validate:"required,iana_timezone"`
	WeeklyDays []time.Weekday `json:"weekly_days,omitempty" validate:"omitempty,dive,min=0,max=6"`
	MonthlyDay int            `json:"monthly_day,omitempty" validate:"omitempty,min=1,max=31"`
	CreatedBy  string         `json:"created_by" validate:"required"`
}

// NewAnnouncement records a delivery attempt for a triggered reminder
type NewAnnouncement struct {
	ReminderID   string    `json:"reminder_id" validate:"required"`
	AgentID      string    `json:"agent_id" validate:"required"`
	AnnounceAt   time.Time `json:"announce_at" validate:"required"`
	MissedReason string    `json:"missed_reason,omitempty" validate:"max=500"`
}
