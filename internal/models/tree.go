package models

import "time"

// GraphTree is the denormalized, consumer-facing view of a workspace.
// Edges and questions are embedded on the entities they touch so a
// consumer never needs a second query to resolve relationships; the whole
// view is re-derived on every read (no incremental diffing).
type GraphTree struct {
	WorkspaceID string          `json:"workspace_id"`
	Lists       []*ListView     `json:"lists"`
	Notes       []*NoteView     `json:"notes"`
	Reminders   []*ReminderView `json:"reminders"`
}

// EdgeRef is an embedded edge endpoint resolved to its kind and title.
// When the other endpoint no longer exists, Title carries a synthetic
// "[Deleted <Kind>]" marker.
type EdgeRef struct {
	EdgeID      string `json:"edge_id"`
	NodeID      string `json:"node_id"`
	Kind        Kind   `json:"kind"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// QuestionView is a question embedded on its source entity. A question
// raised on another question appears in that question's Questions, one
// level deep; nesting stops there.
type QuestionView struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Outgoing  []*EdgeRef      `json:"outgoing,omitempty"`
	Incoming  []*EdgeRef      `json:"incoming,omitempty"`
	Questions []*QuestionView `json:"questions,omitempty"`
}

// TaskView is a task embedded in its list
type TaskView struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Position  int             `json:"position"`
	Completed bool            `json:"completed"`
	Outgoing  []*EdgeRef      `json:"outgoing,omitempty"`
	Incoming  []*EdgeRef      `json:"incoming,omitempty"`
	Questions []*QuestionView `json:"questions,omitempty"`
}

// ListView is a list with its tasks attached in position order
type ListView struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Tasks     []*TaskView     `json:"tasks"`
	Outgoing  []*EdgeRef      `json:"outgoing,omitempty"`
	Incoming  []*EdgeRef      `json:"incoming,omitempty"`
	Questions []*QuestionView `json:"questions,omitempty"`
}

// NoteView is a top-level note
type NoteView struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Outgoing  []*EdgeRef      `json:"outgoing,omitempty"`
	Incoming  []*EdgeRef      `json:"incoming,omitempty"`
	Questions []*QuestionView `json:"questions,omitempty"`
}

// ReminderView is an active reminder in the assembled tree
type ReminderView struct {
	ID             string         `json:"id"`
	Message        string         `json:"message"`
	Recurrence     RecurrenceType `json:"recurrence_type"`
	TimeOfDay      string         `json:"time_of_day"`
	Timezone       string         `json:"timezone"`
	NextOccurrence time.Time      `json:"next_occurrence"`
}
