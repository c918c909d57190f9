package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/memograph/memograph/internal/models"
	"github.com/memograph/memograph/internal/validation"
)

// ListRepository handles list database operations
type ListRepository struct {
	db *DB
}

// NewListRepository creates a new list repository
func NewListRepository(db *DB) *ListRepository {
	return &ListRepository{db: db}
}

// Add creates lists in one transaction. Titles are unique per workspace;
// the whole batch fails on the first invalid item.
func (r *ListRepository) Add(ctx context.Context, workspaceID string, inputs []models.NewList) ([]string, error) {
	if err := requireWorkspace(workspaceID); err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, &models.InvalidParameterError{Param: "lists", Reason: "empty batch"}
	}

	titles := make([]string, len(inputs))
	seen := make(map[string]struct{}, len(inputs))
	for i, in := range inputs {
		t := validation.SanitizeTitle(in.Title)
		if err := validation.TitleLength(t); err != nil {
			return nil, err
		}
		if _, dup := seen[t]; dup {
			return nil, &models.TitleConflictError{Title: t, Scope: "batch"}
		}
		seen[t] = struct{}{}
		titles[i] = t
	}

	var ids []string
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		// Uniqueness is checked before any identifier is allocated so a
		// conflicting batch never moves the counter.
		for _, title := range titles {
			if err := checkTitleFree(ctx, tx, "lists", workspaceID, title, ""); err != nil {
				return err
			}
		}

		allocated, err := allocateIDs(ctx, tx, models.KindList, len(titles))
		if err != nil {
			return err
		}
		if err := insertNodeRows(ctx, tx, models.KindList, workspaceID, allocated); err != nil {
			return err
		}
		for i, title := range titles {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO lists (id, workspace_id, title) VALUES ($1, $2, $3)
			`, allocated[i], workspaceID, title); err != nil {
				return fmt.Errorf("failed to create list: %w", err)
			}
		}

		ids = allocated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Update applies partial updates in one transaction; nil fields are
// skipped
func (r *ListRepository) Update(ctx context.Context, workspaceID string, updates []models.ListUpdate) error {
	if err := requireWorkspace(workspaceID); err != nil {
		return err
	}
	if len(updates) == 0 {
		return &models.InvalidParameterError{Param: "lists", Reason: "empty batch"}
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, u := range updates {
			if _, err := models.ParseIDOfKind(u.ID, models.KindList); err != nil {
				return err
			}
			if u.Title == nil {
				continue
			}

			title := validation.SanitizeTitle(*u.Title)
			if err := validation.TitleLength(title); err != nil {
				return err
			}
			if err := checkTitleFree(ctx, tx, "lists", workspaceID, title, u.ID); err != nil {
				return err
			}

			res, err := tx.ExecContext(ctx, `
				UPDATE lists SET title = $1, updated_at = now()
				WHERE id = $2 AND workspace_id = $3
			`, title, u.ID, workspaceID)
			if err != nil {
				return fmt.Errorf("failed to update list %s: %w", u.ID, err)
			}
			if n, err := res.RowsAffected(); err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			} else if n == 0 {
				return &models.NotFoundError{Kind: models.KindList, ID: u.ID}
			}
		}
		return nil
	})
}

// Both cascade statements bind the workspace, so an id that belongs to
// another workspace matches nothing and lands in the failed subset.
const (
	deleteListTaskNodesQuery = `
		DELETE FROM nodes WHERE id IN (
			SELECT id FROM tasks WHERE list_id = $1 AND workspace_id = $2
		)
	`
	deleteListNodeQuery = `
		DELETE FROM nodes WHERE id = $1 AND workspace_id = $2 AND kind = 'list'
	`
)

// Delete removes lists with their tasks, incident edges, and owned
// questions. It returns the subset of ids that were not found; only a
// structurally malformed id aborts the batch.
func (r *ListRepository) Delete(ctx context.Context, workspaceID string, ids []string) ([]string, error) {
	if err := requireWorkspace(workspaceID); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, &models.InvalidParameterError{Param: "ids", Reason: "empty batch"}
	}
	for _, id := range ids {
		if _, err := models.ParseIDOfKind(id, models.KindList); err != nil {
			return nil, err
		}
	}

	var failed []string
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, id := range ids {
			// Task node index rows do not cascade from the list node, so
			// clear them before the list row takes the tasks down with it.
			if _, err := tx.ExecContext(ctx, deleteListTaskNodesQuery, id, workspaceID); err != nil {
				return fmt.Errorf("failed to delete tasks of list %s: %w", id, err)
			}

			res, err := tx.ExecContext(ctx, deleteListNodeQuery, id, workspaceID)
			if err != nil {
				return fmt.Errorf("failed to delete list %s: %w", id, err)
			}
			if n, err := res.RowsAffected(); err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			} else if n == 0 {
				failed = append(failed, id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return failed, nil
}

// GetByWorkspace retrieves all lists of a workspace in creation order
func (r *ListRepository) GetByWorkspace(ctx context.Context, workspaceID string) ([]*models.List, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, workspace_id, title, created_at, updated_at
		FROM lists
		WHERE workspace_id = $1
		ORDER BY created_at, id
	`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lists: %w", err)
	}
	defer rows.Close()

	var lists []*models.List
	for rows.Next() {
		list := &models.List{}
		if err := rows.Scan(&list.ID, &list.WorkspaceID, &list.Title, &list.CreatedAt, &list.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan list: %w", err)
		}
		lists = append(lists, list)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lists: %w", err)
	}

	return lists, nil
}

// requireWorkspace rejects a missing tenant partition key
func requireWorkspace(workspaceID string) error {
	if workspaceID == "" {
		return &models.InvalidParameterError{Param: "workspace_id", Reason: "required"}
	}
	return nil
}

// checkTitleFree enforces workspace-scoped title uniqueness for lists and
// notes. excludeID carves out the row being updated.
func checkTitleFree(ctx context.Context, tx *sql.Tx, table, workspaceID, title, excludeID string) error {
	var query string
	switch table {
	case "lists":
		query = `SELECT EXISTS (SELECT 1 FROM lists WHERE workspace_id = $1 AND title = $2 AND id <> $3)`
	case "notes":
		query = `SELECT EXISTS (SELECT 1 FROM notes WHERE workspace_id = $1 AND title = $2 AND id <> $3)`
	default:
		return fmt.Errorf("unknown title table %q", table)
	}

	var exists bool
	if err := tx.QueryRowContext(ctx, query, workspaceID, title, excludeID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check title conflict: %w", err)
	}
	if exists {
		return &models.TitleConflictError{Title: title, Scope: "workspace " + workspaceID}
	}
	return nil
}
