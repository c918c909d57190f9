package database

import (
	"regexp"
	"testing"
)

// Full integration testing of Delete requires a database; this test pins
// the tenant predicate on both cascade statements. The task node cleanup
// runs before the workspace-guarded list delete, so without its own
// workspace filter a foreign list id would remove another workspace's
// task rows and still commit.
func TestDeleteListStatementsScopeWorkspace(t *testing.T) {
	t.Parallel()

	scoped := regexp.MustCompile(`workspace_id = \$2`)

	tests := []struct {
		name  string
		query string
	}{
		{
			name:  "task node cleanup binds the workspace",
			query: deleteListTaskNodesQuery,
		},
		{
			name:  "list node delete binds the workspace",
			query: deleteListNodeQuery,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if !scoped.MatchString(tt.query) {
				t.Errorf("statement does not filter by workspace:\n%s", tt.query)
			}
		})
	}
}
