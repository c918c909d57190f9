package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/memograph/memograph/internal/models"
)

// EdgeRepository handles edge database operations. An edge is unique per
// (src, dst, workspace); linking an existing pair is idempotent and only
// refreshes the description.
type EdgeRepository struct {
	db *DB
}

// NewEdgeRepository creates a new edge repository
func NewEdgeRepository(db *DB) *EdgeRepository {
	return &EdgeRepository{db: db}
}

// Link creates or refreshes edges in one transaction and returns the edge
// ids in input order. Both endpoints must resolve in the node index of the
// workspace.
func (r *EdgeRepository) Link(ctx context.Context, workspaceID string, inputs []models.NewEdge) ([]string, error) {
	if err := requireWorkspace(workspaceID); err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, &models.InvalidParameterError{Param: "edges", Reason: "empty batch"}
	}

	for _, in := range inputs {
		for _, endpoint := range []string{in.SrcID, in.DstID} {
			id, err := models.ParseID(endpoint)
			if err != nil {
				return nil, err
			}
			if !id.Kind.IsGraphNode() {
				return nil, &models.InvalidIDError{ID: endpoint, Reason: "endpoint must be a graph node"}
			}
		}
		if len(in.Description) > 2000 {
			return nil, &models.InvalidParameterError{Param: "description", Reason: "must be at most 2000 characters"}
		}
	}

	var ids []string
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, in := range inputs {
			for _, endpoint := range []string{in.SrcID, in.DstID} {
				if _, ok, err := nodeKind(ctx, tx, workspaceID, endpoint); err != nil {
					return err
				} else if !ok {
					parsed, _ := models.ParseID(endpoint)
					return &models.NotFoundError{Kind: parsed.Kind, ID: endpoint}
				}
			}

			var existingID, existingDesc string
			err := tx.QueryRowContext(ctx, `
				SELECT id, description FROM edges
				WHERE src_id = $1 AND dst_id = $2 AND workspace_id = $3
				FOR UPDATE
			`, in.SrcID, in.DstID, workspaceID).Scan(&existingID, &existingDesc)
			switch {
			case err == sql.ErrNoRows:
				allocated, err := allocateIDs(ctx, tx, models.KindEdge, 1)
				if err != nil {
					return err
				}
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO edges (id, workspace_id, src_id, dst_id, description)
					VALUES ($1, $2, $3, $4, $5)
				`, allocated[0], workspaceID, in.SrcID, in.DstID, in.Description); err != nil {
					return fmt.Errorf("failed to create edge: %w", err)
				}
				ids = append(ids, allocated[0])
			case err != nil:
				return fmt.Errorf("failed to check edge: %w", err)
			default:
				if existingDesc != in.Description {
					if _, err := tx.ExecContext(ctx, `
						UPDATE edges SET description = $1, updated_at = now() WHERE id = $2
					`, in.Description, existingID); err != nil {
						return fmt.Errorf("failed to refresh edge %s: %w", existingID, err)
					}
				}
				ids = append(ids, existingID)
			}
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
func (r *EdgeRepository) Update(ctx context.Context, workspaceID string, updates []models.EdgeUpdate) error {
	if err := requireWorkspace(workspaceID); err != nil {
		return err
	}
	if len(updates) == 0 {
		return &models.InvalidParameterError{Param: "edges", Reason: "empty batch"}
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, u := range updates {
			if _, err := models.ParseIDOfKind(u.ID, models.KindEdge); err != nil {
				return err
			}
			if u.Description == nil {
				continue
			}
			if len(*u.Description) > 2000 {
				return &models.InvalidParameterError{Param: "description", Reason: "must be at most 2000 characters"}
			}

			res, err := tx.ExecContext(ctx, `
				UPDATE edges SET description = $1, updated_at = now()
				WHERE id = $2 AND workspace_id = $3
			`, *u.Description, u.ID, workspaceID)
			if err != nil {
				return fmt.Errorf("failed to update edge %s: %w", u.ID, err)
			}
			if n, err := res.RowsAffected(); err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			} else if n == 0 {
				return &models.NotFoundError{Kind: models.KindEdge, ID: u.ID}
			}
		}
		return nil
	})
}

// Delete removes edges, returning the subset of ids that were not found
func (r *EdgeRepository) Delete(ctx context.Context, workspaceID string, ids []string) ([]string, error) {
	if err := requireWorkspace(workspaceID); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, &models.InvalidParameterError{Param: "ids", Reason: "empty batch"}
	}
	for _, id := range ids {
		if _, err := models.ParseIDOfKind(id, models.KindEdge); err != nil {
			return nil, err
		}
	}

	var failed []string
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, id := range ids {
			res, err := tx.ExecContext(ctx, `
				DELETE FROM edges WHERE id = $1 AND workspace_id = $2
			`, id, workspaceID)
			if err != nil {
				return fmt.Errorf("failed to delete edge %s: %w", id, err)
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

// GetByWorkspace retrieves all edges of a workspace in creation order
func (r *EdgeRepository) GetByWorkspace(ctx context.Context, workspaceID string) ([]*models.Edge, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, workspace_id, src_id, dst_id, description, created_at, updated_at
		FROM edges
		WHERE workspace_id = $1
		ORDER BY created_at, id
	`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer rows.Close()

	var edges []*models.Edge
	for rows.Next() {
		edge := &models.Edge{}
		if err := rows.Scan(&edge.ID, &edge.WorkspaceID, &edge.SrcID, &edge.DstID,
			&edge.Description, &edge.CreatedAt, &edge.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		edges = append(edges, edge)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating edges: %w", err)
	}

	return edges, nil
}
