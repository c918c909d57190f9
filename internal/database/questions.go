package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/memograph/memograph/internal/models"
	"github.com/memograph/memograph/internal/validation"
)

// QuestionRepository handles question database operations. A question is
// owned by a source node of any graph kind; ownership is validated against
// the polymorphic node index rather than a typed foreign key.
type QuestionRepository struct {
	db *DB
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(db *DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// Add creates questions in one transaction; titles are unique per
// (source, workspace)
func (r *QuestionRepository) Add(ctx context.Context, workspaceID string, inputs []models.NewQuestion) ([]string, error) {
	if err := requireWorkspace(workspaceID); err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, &models.InvalidParameterError{Param: "questions", Reason: "empty batch"}
	}

	titles := make([]string, len(inputs))
	for i, in := range inputs {
		srcID, err := models.ParseID(in.SrcID)
		if err != nil {
			return nil, err
		}
		if !srcID.Kind.IsGraphNode() {
			return nil, &models.InvalidIDError{ID: in.SrcID, Reason: "source must be a graph node"}
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
			if _, ok, err := nodeKind(ctx, tx, workspaceID, in.SrcID); err != nil {
				return err
			} else if !ok {
				srcID, _ := models.ParseID(in.SrcID)
				return &models.NotFoundError{Kind: srcID.Kind, ID: in.SrcID}
			}
			if err := checkQuestionTitleFree(ctx, tx, workspaceID, in.SrcID, titles[i], ""); err != nil {
				return err
			}

			allocated, err := allocateIDs(ctx, tx, models.KindQuestion, 1)
			if err != nil {
				return err
			}
			if err := insertNodeRows(ctx, tx, models.KindQuestion, workspaceID, allocated); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO questions (id, workspace_id, src_id, title) VALUES ($1, $2, $3, $4)
			`, allocated[0], workspaceID, in.SrcID, titles[i]); err != nil {
				return fmt.Errorf("failed to create question: %w", err)
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
// skipped
func (r *QuestionRepository) Update(ctx context.Context, workspaceID string, updates []models.QuestionUpdate) error {
	if err := requireWorkspace(workspaceID); err != nil {
		return err
	}
	if len(updates) == 0 {
		return &models.InvalidParameterError{Param: "questions", Reason: "empty batch"}
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, u := range updates {
			if _, err := models.ParseIDOfKind(u.ID, models.KindQuestion); err != nil {
				return err
			}
			if u.Title == nil {
				continue
			}

			title := validation.SanitizeTitle(*u.Title)
			if err := validation.TitleLength(title); err != nil {
				return err
			}

			var srcID string
			err := tx.QueryRowContext(ctx, `
				SELECT src_id FROM questions WHERE id = $1 AND workspace_id = $2 FOR UPDATE
			`, u.ID, workspaceID).Scan(&srcID)
			if err == sql.ErrNoRows {
				return &models.NotFoundError{Kind: models.KindQuestion, ID: u.ID}
			}
			if err != nil {
				return fmt.Errorf("failed to load question %s: %w", u.ID, err)
			}

			if err := checkQuestionTitleFree(ctx, tx, workspaceID, srcID, title, u.ID); err != nil {
				return err
			}

			if _, err := tx.ExecContext(ctx, `
				UPDATE questions SET title = $1, updated_at = now()
				WHERE id = $2 AND workspace_id = $3
			`, title, u.ID, workspaceID); err != nil {
				return fmt.Errorf("failed to update question %s: %w", u.ID, err)
			}
		}
		return nil
	})
}

// Delete removes questions, returning the subset of ids that were not
// found
func (r *QuestionRepository) Delete(ctx context.Context, workspaceID string, ids []string) ([]string, error) {
	if err := requireWorkspace(workspaceID); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, &models.InvalidParameterError{Param: "ids", Reason: "empty batch"}
	}
	for _, id := range ids {
		if _, err := models.ParseIDOfKind(id, models.KindQuestion); err != nil {
			return nil, err
		}
	}

	var failed []string
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, id := range ids {
			res, err := tx.ExecContext(ctx, `
				DELETE FROM nodes WHERE id = $1 AND workspace_id = $2 AND kind = 'question'
			`, id, workspaceID)
			if err != nil {
				return fmt.Errorf("failed to delete question %s: %w", id, err)
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

// GetByWorkspace retrieves all questions of a workspace in creation order
func (r *QuestionRepository) GetByWorkspace(ctx context.Context, workspaceID string) ([]*models.Question, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, workspace_id, src_id, title, created_at, updated_at
		FROM questions
		WHERE workspace_id = $1
		ORDER BY created_at, id
	`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	var questions []*models.Question
	for rows.Next() {
		q := &models.Question{}
		if err := rows.Scan(&q.ID, &q.WorkspaceID, &q.SrcID, &q.Title, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating questions: %w", err)
	}

	return questions, nil
}

// checkQuestionTitleFree enforces title uniqueness per (source, workspace)
func checkQuestionTitleFree(ctx context.Context, tx *sql.Tx, workspaceID, srcID, title, excludeID string) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM questions
			WHERE workspace_id = $1 AND src_id = $2 AND title = $3 AND id <> $4
		)
	`, workspaceID, srcID, title, excludeID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check question title conflict: %w", err)
	}
	if exists {
		return &models.TitleConflictError{Title: title, Scope: "source " + srcID}
	}
	return nil
}
