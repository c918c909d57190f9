package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/memograph/memograph/internal/models"
	"github.com/memograph/memograph/internal/validation"
)

// NoteRepository handles note database operations
type NoteRepository struct {
	db *DB
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(db *DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// Add creates notes in one transaction; titles are unique per workspace
func (r *NoteRepository) Add(ctx context.Context, workspaceID string, inputs []models.NewNote) ([]string, error) {
	if err := requireWorkspace(workspaceID); err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, &models.InvalidParameterError{Param: "notes", Reason: "empty batch"}
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
		for _, title := range titles {
			if err := checkTitleFree(ctx, tx, "notes", workspaceID, title, ""); err != nil {
				return err
			}
		}

		allocated, err := allocateIDs(ctx, tx, models.KindNote, len(titles))
		if err != nil {
			return err
		}
		if err := insertNodeRows(ctx, tx, models.KindNote, workspaceID, allocated); err != nil {
			return err
		}
		for i, title := range titles {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO notes (id, workspace_id, title) VALUES ($1, $2, $3)
			`, allocated[i], workspaceID, title); err != nil {
				return fmt.Errorf("failed to create note: %w", err)
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
func (r *NoteRepository) Update(ctx context.Context, workspaceID string, updates []models.NoteUpdate) error {
	if err := requireWorkspace(workspaceID); err != nil {
		return err
	}
	if len(updates) == 0 {
		return &models.InvalidParameterError{Param: "notes", Reason: "empty batch"}
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, u := range updates {
			if _, err := models.ParseIDOfKind(u.ID, models.KindNote); err != nil {
				return err
			}
			if u.Title == nil {
				continue
			}

			title := validation.SanitizeTitle(*u.Title)
			if err := validation.TitleLength(title); err != nil {
				return err
			}
			if err := checkTitleFree(ctx, tx, "notes", workspaceID, title, u.ID); err != nil {
				return err
			}

			res, err := tx.ExecContext(ctx, `
				UPDATE notes SET title = $1, updated_at = now()
				WHERE id = $2 AND workspace_id = $3
			`, title, u.ID, workspaceID)
			if err != nil {
				return fmt.Errorf("failed to update note %s: %w", u.ID, err)
			}
			if n, err := res.RowsAffected(); err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			} else if n == 0 {
				return &models.NotFoundError{Kind: models.KindNote, ID: u.ID}
			}
		}
		return nil
	})
}

// Delete removes notes along with their incident edges and owned
// questions, returning the subset of ids that were not found
func (r *NoteRepository) Delete(ctx context.Context, workspaceID string, ids []string) ([]string, error) {
	if err := requireWorkspace(workspaceID); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, &models.InvalidParameterError{Param: "ids", Reason: "empty batch"}
	}
	for _, id := range ids {
		if _, err := models.ParseIDOfKind(id, models.KindNote); err != nil {
			return nil, err
		}
	}

	var failed []string
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, id := range ids {
			res, err := tx.ExecContext(ctx, `
				DELETE FROM nodes WHERE id = $1 AND workspace_id = $2 AND kind = 'note'
			`, id, workspaceID)
			if err != nil {
				return fmt.Errorf("failed to delete note %s: %w", id, err)
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

// GetByWorkspace retrieves all notes of a workspace in creation order
func (r *NoteRepository) GetByWorkspace(ctx context.Context, workspaceID string) ([]*models.Note, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, workspace_id, title, created_at, updated_at
		FROM notes
		WHERE workspace_id = $1
		ORDER BY created_at, id
	`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	var notes []*models.Note
	for rows.Next() {
		note := &models.Note{}
		if err := rows.Scan(&note.ID, &note.WorkspaceID, &note.Title, &note.CreatedAt, &note.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notes: %w", err)
	}

	return notes, nil
}
