package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/memograph/memograph/internal/models"
	"github.com/memograph/memograph/internal/validation"
)

// TaskRepository handles task database operations, including the ordering
// engine: after every mutation the positions of a list's tasks form a
// dense 1..N sequence.
type TaskRepository struct {
	db *DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Add creates tasks in one transaction. Without an explicit position a
// task is appended; with one, the tail of the list is shifted up first.
// Titles are unique among incomplete tasks of the same list.
func (r *TaskRepository) Add(ctx context.Context, workspaceID string, inputs []models.NewTask) ([]string, error) {
	if err := requireWorkspace(workspaceID); err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, &models.InvalidParameterError{Param: "tasks", Reason: "empty batch"}
	}

	titles := make([]string, len(inputs))
	for i, in := range inputs {
		if _, err := models.ParseIDOfKind(in.ListID, models.KindList); err != nil {
			return nil, err
		}
		if in.Position != nil && *in.Position < 1 {
			return nil, &models.InvalidParameterError{Param: "position", Reason: "must be at least 1"}
		}
		t := validation.SanitizeTitle(in.Title)
		if err := validation.TitleLength(t); err != nil {
			return nil, err
		}
		titles[i] = t
	}

	var ids []string
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for i, in := range inputs {
			if err := listExists(ctx, tx, workspaceID, in.ListID); err != nil {
				return err
			}
			if err := checkActiveTaskTitleFree(ctx, tx, in.ListID, titles[i], ""); err != nil {
				return err
			}

			allocated, err := allocateIDs(ctx, tx, models.KindTask, 1)
			if err != nil {
				return err
			}
			if err := insertNodeRows(ctx, tx, models.KindTask, workspaceID, allocated); err != nil {
				return err
			}

			pos, err := openPosition(ctx, tx, in.ListID, in.Position)
			if err != nil {
				return err
			}

			if _, err := tx.ExecContext(ctx, `
				INSERT INTO tasks (id, workspace_id, list_id, title, position)
				VALUES ($1, $2, $3, $4, $5)
			`, allocated[0], workspaceID, in.ListID, titles[i], pos); err != nil {
				return fmt.Errorf("failed to create task: %w", err)
			}

			ids = append(ids, allocated[0])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Update applies partial updates in one transaction; nil fields are
// skipped. A completed task keeps its position but is exempt from the
// active-title rule, so re-activating one re-checks the conflict.
func (r *TaskRepository) Update(ctx context.Context, workspaceID string, updates []models.TaskUpdate) error {
	if err := requireWorkspace(workspaceID); err != nil {
		return err
	}
	if len(updates) == 0 {
		return &models.InvalidParameterError{Param: "tasks", Reason: "empty batch"}
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, u := range updates {
			if _, err := models.ParseIDOfKind(u.ID, models.KindTask); err != nil {
				return err
			}
			if u.Title == nil && u.Completed == nil {
				continue
			}

			var listID, title string
			var completed bool
			err := tx.QueryRowContext(ctx, `
				SELECT list_id, title, completed FROM tasks
				WHERE id = $1 AND workspace_id = $2
				FOR UPDATE
			`, u.ID, workspaceID).Scan(&listID, &title, &completed)
			if err == sql.ErrNoRows {
				return &models.NotFoundError{Kind: models.KindTask, ID: u.ID}
			}
			if err != nil {
				return fmt.Errorf("failed to load task %s: %w", u.ID, err)
			}

			newTitle := title
			if u.Title != nil {
				newTitle = validation.SanitizeTitle(*u.Title)
				if err := validation.TitleLength(newTitle); err != nil {
					return err
				}
			}
			newCompleted := completed
			if u.Completed != nil {
				newCompleted = *u.Completed
			}

			if newTitle == title && newCompleted == completed {
				continue
			}
			if !newCompleted && (newTitle != title || completed) {
				if err := checkActiveTaskTitleFree(ctx, tx, listID, newTitle, u.ID); err != nil {
					return err
				}
			}

			if _, err := tx.ExecContext(ctx, `
				UPDATE tasks SET title = $1, completed = $2, updated_at = now()
				WHERE id = $3 AND workspace_id = $4
			`, newTitle, newCompleted, u.ID, workspaceID); err != nil {
				return fmt.Errorf("failed to update task %s: %w", u.ID, err)
			}
		}
		return nil
	})
}

// Delete removes tasks and closes the position gap in each affected list.
// It returns the subset of ids that were not found.
func (r *TaskRepository) Delete(ctx context.Context, workspaceID string, ids []string) ([]string, error) {
	if err := requireWorkspace(workspaceID); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, &models.InvalidParameterError{Param: "ids", Reason: "empty batch"}
	}
	for _, id := range ids {
		if _, err := models.ParseIDOfKind(id, models.KindTask); err != nil {
			return nil, err
		}
	}

	var failed []string
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, id := range ids {
			var listID string
			var pos int
			err := tx.QueryRowContext(ctx, `
				SELECT list_id, position FROM tasks
				WHERE id = $1 AND workspace_id = $2
				FOR UPDATE
			`, id, workspaceID).Scan(&listID, &pos)
			if err == sql.ErrNoRows {
				failed = append(failed, id)
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to load task %s: %w", id, err)
			}

			if _, err := tx.ExecContext(ctx, `DELETE FROM nodes WHERE id = $1`, id); err != nil {
				return fmt.Errorf("failed to delete task %s: %w", id, err)
			}
			if _, err := tx.ExecContext(ctx, `
				UPDATE tasks SET position = position - 1, updated_at = now()
				WHERE list_id = $1 AND position > $2
			`, listID, pos); err != nil {
				return fmt.Errorf("failed to close position gap in list %s: %w", listID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return failed, nil
}

// Move relocates tasks between (or within) lists: the source gap closes,
// the destination tail shifts, and the active-title rule is re-checked in
// the destination list. All moves run in one transaction.
func (r *TaskRepository) Move(ctx context.Context, workspaceID string, moves []models.TaskMove) error {
	if err := requireWorkspace(workspaceID); err != nil {
		return err
	}
	if len(moves) == 0 {
		return &models.InvalidParameterError{Param: "moves", Reason: "empty batch"}
	}
	for _, m := range moves {
		if _, err := models.ParseIDOfKind(m.ID, models.KindTask); err != nil {
			return err
		}
		if _, err := models.ParseIDOfKind(m.ToListID, models.KindList); err != nil {
			return err
		}
		if m.Position != nil && *m.Position < 1 {
			return &models.InvalidParameterError{Param: "position", Reason: "must be at least 1"}
		}
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, m := range moves {
			var srcListID, title string
			var oldPos int
			var completed bool
			err := tx.QueryRowContext(ctx, `
				SELECT list_id, position, title, completed FROM tasks
				WHERE id = $1 AND workspace_id = $2
				FOR UPDATE
			`, m.ID, workspaceID).Scan(&srcListID, &oldPos, &title, &completed)
			if err == sql.ErrNoRows {
				return &models.NotFoundError{Kind: models.KindTask, ID: m.ID}
			}
			if err != nil {
				return fmt.Errorf("failed to load task %s: %w", m.ID, err)
			}

			if err := listExists(ctx, tx, workspaceID, m.ToListID); err != nil {
				return err
			}
			if m.ToListID != srcListID && !completed {
				if err := checkActiveTaskTitleFree(ctx, tx, m.ToListID, title, m.ID); err != nil {
					return err
				}
			}

			// Close the source gap first; the moved row's position is
			// rewritten below so a transient duplicate does not matter.
			if _, err := tx.ExecContext(ctx, `
				UPDATE tasks SET position = position - 1, updated_at = now()
				WHERE list_id = $1 AND position > $2 AND id <> $3
			`, srcListID, oldPos, m.ID); err != nil {
				return fmt.Errorf("failed to close position gap in list %s: %w", srcListID, err)
			}

			pos, err := openPositionExcluding(ctx, tx, m.ToListID, m.Position, m.ID)
			if err != nil {
				return err
			}

			if _, err := tx.ExecContext(ctx, `
				UPDATE tasks SET list_id = $1, position = $2, updated_at = now()
				WHERE id = $3
			`, m.ToListID, pos, m.ID); err != nil {
				return fmt.Errorf("failed to move task %s: %w", m.ID, err)
			}
		}
		return nil
	})
}

// Reorder assigns positions 1..N to a list's tasks by array order. The
// given ids must be a permutation of the list's current task set.
func (r *TaskRepository) Reorder(ctx context.Context, workspaceID, listID string, ids []string) error {
	if err := requireWorkspace(workspaceID); err != nil {
		return err
	}
	if _, err := models.ParseIDOfKind(listID, models.KindList); err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := models.ParseIDOfKind(id, models.KindTask); err != nil {
			return err
		}
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := listExists(ctx, tx, workspaceID, listID); err != nil {
			return err
		}

		rows, err := tx.QueryContext(ctx, `
			SELECT id FROM tasks
			WHERE list_id = $1 AND workspace_id = $2
			ORDER BY position
			FOR UPDATE
		`, listID, workspaceID)
		if err != nil {
			return fmt.Errorf("failed to query tasks of list %s: %w", listID, err)
		}
		var current []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan task id: %w", err)
			}
			current = append(current, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating tasks: %w", err)
		}

		if err := checkReorderSet(listID, current, ids); err != nil {
			return err
		}

		for i, id := range ids {
			if _, err := tx.ExecContext(ctx, `
				UPDATE tasks SET position = $1, updated_at = now() WHERE id = $2
			`, i+1, id); err != nil {
				return fmt.Errorf("failed to reposition task %s: %w", id, err)
			}
		}
		return nil
	})
}

// GetByWorkspace retrieves all tasks of a workspace grouped by list and
// ordered by position
func (r *TaskRepository) GetByWorkspace(ctx context.Context, workspaceID string) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, workspace_id, list_id, title, position, completed, created_at, updated_at
		FROM tasks
		WHERE workspace_id = $1
		ORDER BY list_id, position
	`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task := &models.Task{}
		if err := rows.Scan(&task.ID, &task.WorkspaceID, &task.ListID, &task.Title,
			&task.Position, &task.Completed, &task.CreatedAt, &task.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

// checkReorderSet verifies that proposed is a permutation of current,
// reporting duplicated, unknown, and omitted ids as a mismatch
func checkReorderSet(listID string, current, proposed []string) error {
	cur := make(map[string]struct{}, len(current))
	for _, id := range current {
		cur[id] = struct{}{}
	}

	var unexpected []string
	seen := make(map[string]struct{}, len(proposed))
	for _, id := range proposed {
		_, known := cur[id]
		_, dup := seen[id]
		if !known || dup {
			unexpected = append(unexpected, id)
			continue
		}
		seen[id] = struct{}{}
	}

	var missing []string
	for _, id := range current {
		if _, ok := seen[id]; !ok {
			missing = append(missing, id)
		}
	}

	if len(unexpected) > 0 || len(missing) > 0 {
		return &models.ReorderMismatchError{ListID: listID, Missing: missing, Unexpected: unexpected}
	}
	return nil
}

// listExists verifies a list id against its workspace
func listExists(ctx context.Context, tx *sql.Tx, workspaceID, listID string) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM lists WHERE id = $1 AND workspace_id = $2)
	`, listID, workspaceID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check list %s: %w", listID, err)
	}
	if !exists {
		return &models.NotFoundError{Kind: models.KindList, ID: listID}
	}
	return nil
}

// checkActiveTaskTitleFree enforces title uniqueness among incomplete
// tasks of a list; completed tasks are exempt
func checkActiveTaskTitleFree(ctx context.Context, tx *sql.Tx, listID, title, excludeID string) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM tasks
			WHERE list_id = $1 AND title = $2 AND NOT completed AND id <> $3
		)
	`, listID, title, excludeID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check task title conflict: %w", err)
	}
	if exists {
		return &models.TitleConflictError{Title: title, Scope: "list " + listID}
	}
	return nil
}

// openPosition makes room for a task in a list and returns the position
// to insert at. A nil request appends; an explicit position shifts the
// tasks at or after it up by one, clamped to the end of the list.
func openPosition(ctx context.Context, tx *sql.Tx, listID string, requested *int) (int, error) {
	return openPositionExcluding(ctx, tx, listID, requested, "")
}

func openPositionExcluding(ctx context.Context, tx *sql.Tx, listID string, requested *int, excludeID string) (int, error) {
	var max int
	if err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(position), 0) FROM tasks WHERE list_id = $1 AND id <> $2
	`, listID, excludeID).Scan(&max); err != nil {
		return 0, fmt.Errorf("failed to read max position of list %s: %w", listID, err)
	}

	if requested == nil || *requested > max+1 {
		return max + 1, nil
	}

	pos := *requested
	if _, err := tx.ExecContext(ctx, `
		UPDATE tasks SET position = position + 1, updated_at = now()
		WHERE list_id = $1 AND position >= $2 AND id <> $3
	`, listID, pos, excludeID); err != nil {
		return 0, fmt.Errorf("failed to shift positions in list %s: %w", listID, err)
	}
	return pos, nil
}
