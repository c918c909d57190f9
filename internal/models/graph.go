package models

import "time"

// List is a named container of tasks
type List struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	Title       string    `json:"title"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Task belongs to exactly one list and carries a dense 1..N position
// within it
type Task struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	ListID      string    `json:"list_id"`
	Title       string    `json:"title"`
	Position    int       `json:"position"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Note is a free-standing titled node
type Note struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	Title       string    `json:"title"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Question is owned by a source node of any graph kind
type Question struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	SrcID       string    `json:"src_id"`
	Title       string    `json:"title"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Edge is a directed, described relation between two graph nodes, unique
// per (src, dst, workspace)
type Edge struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	SrcID       string    `json:"src_id"`
	DstID       string    `json:"dst_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewList is the input for creating a list
type NewList struct {
	Title string `json:"title" validate:"required,min=1,max=200"`
}

// NewTask is the input for creating a task. A nil Position appends to the
// end of the list.
type NewTask struct {
	ListID   string `json:"list_id" validate:"required"`
	Title    string `json:"title" validate:"required,min=1,max=200"`
	Position *int   `json:"position,omitempty" validate:"omitempty,min=1"`
}

// NewNote is the input for creating a note
type NewNote struct {
	Title string `json:"title" validate:"required,min=1,max=200"`
}

// NewQuestion is the input for creating a question attached to a source
// node
type NewQuestion struct {
	SrcID string `json:"src_id" validate:"required"`
	Title string `json:"title" validate:"required,min=1,max=200"`
}

// NewEdge is the input for linking two nodes. Linking an existing
// (src, dst) pair updates the description instead of erroring.
type NewEdge struct {
	SrcID       string `json:"src_id" validate:"required"`
	DstID       string `json:"dst_id" validate:"required"`
	Description string `json:"description" validate:"max=2000"`
}

// ListUpdate is a partial update; nil fields are skipped
type ListUpdate struct {
	ID    string  `json:"id" validate:"required"`
	Title *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
}

// TaskUpdate is a partial update; nil fields are skipped
type TaskUpdate struct {
	ID        string  `json:"id" validate:"required"`
	Title     *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Completed *bool   `json:"completed,omitempty"`
}

// NoteUpdate is a partial update; nil fields are skipped
type NoteUpdate struct {
	ID    string  `json:"id" validate:"required"`
	Title *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
}

// QuestionUpdate is a partial update; nil fields are skipped
type QuestionUpdate struct {
	ID    string  `json:"id" validate:"required"`
	Title *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
}

// EdgeUpdate is a partial update; nil fields are skipped
type EdgeUpdate struct {
	ID          string  `json:"id" validate:"required"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

// TaskMove moves a task into a (possibly different) list. A nil Position
// appends to the destination.
type TaskMove struct {
	ID       string `json:"id" validate:"required"`
	ToListID string `json:"to_list_id" validate:"required"`
	Position *int   `json:"position,omitempty" validate:"omitempty,min=1"`
}
