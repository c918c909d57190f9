package models

import (
	"fmt"
	"strings"
)

// InvalidParameterError indicates malformed or out-of-range input, such as
// a title outside 1..200 characters or an empty batch.
type InvalidParameterError struct {
	Param  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %q: %s", e.Param, e.Reason)
}

// InvalidIDError indicates an identifier that fails the "<kind>:<seq>"
// format or carries the wrong kind tag for the operation.
type InvalidIDError struct {
	ID     string
	Reason string
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid id %q: %s", e.ID, e.Reason)
}

// NotFoundError indicates a referenced entity does not exist in the
// workspace.
type NotFoundError struct {
	Kind Kind
	ID   string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Kind)
}

// TitleConflictError indicates a title-uniqueness violation within its
// scope (workspace, list, or question source).
type TitleConflictError struct {
	Title string
	Scope string
}

func (e *TitleConflictError) Error() string {
	return fmt.Sprintf("title %q already exists in %s", e.Title, e.Scope)
}

// ReorderMismatchError indicates that a reorder request's task set does not
// match the list's actual task set.
type ReorderMismatchError struct {
	ListID     string
	Missing    []string
	Unexpected []string
}

func (e *ReorderMismatchError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Unexpected) > 0 {
		parts = append(parts, "unexpected "+strings.Join(e.Unexpected, ", "))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("reorder does not match tasks of list %s", e.ListID)
	}
	return fmt.Sprintf("reorder does not match tasks of list %s: %s", e.ListID, strings.Join(parts, "; "))
}
