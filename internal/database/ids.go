package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/memograph/memograph/internal/models"
)

// allocateIDs reserves n sequence values for kind inside the caller's
// transaction and returns the formatted identifiers. Because the counter
// row moves inside the same transaction as the entity insert, a rolled
// back batch never leaves orphaned counter values.
func allocateIDs(ctx context.Context, tx *sql.Tx, kind models.Kind, n int) ([]string, error) {
	if n < 1 {
		return nil, fmt.Errorf("cannot allocate %d ids", n)
	}

	var last int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO id_counters (kind, seq) VALUES ($1, $2)
		ON CONFLICT (kind) DO UPDATE SET seq = id_counters.seq + EXCLUDED.seq
		RETURNING seq
	`, string(kind), n).Scan(&last)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate %s ids: %w", kind, err)
	}

	return formatIDRange(kind, last, n), nil
}

// formatIDRange renders the n identifiers ending at sequence value last
func formatIDRange(kind models.Kind, last int64, n int) []string {
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		ids[i] = models.ID{Kind: kind, Seq: last - int64(n) + int64(i) + 1}.String()
	}
	return ids
}

// insertNodeRows registers graph node ids in the polymorphic node index
func insertNodeRows(ctx context.Context, tx *sql.Tx, kind models.Kind, workspaceID string, ids []string) error {
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO nodes (id, kind, workspace_id) VALUES ($1, $2, $3)
		`, id, string(kind), workspaceID); err != nil {
			return fmt.Errorf("failed to index node %s: %w", id, err)
		}
	}
	return nil
}

// nodeKind resolves a graph node id against the node index, reporting
// whether it exists in the workspace
func nodeKind(ctx context.Context, tx *sql.Tx, workspaceID, id string) (models.Kind, bool, error) {
	var kind string
	err := tx.QueryRowContext(ctx, `
		SELECT kind FROM nodes WHERE id = $1 AND workspace_id = $2
	`, id, workspaceID).Scan(&kind)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve node %s: %w", id, err)
	}
	return models.Kind(kind), true, nil
}
