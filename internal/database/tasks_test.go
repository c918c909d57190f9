package database

import (
	"errors"
	"sort"
	"testing"

	"github.com/memograph/memograph/internal/models"
)

func TestCheckReorderSet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		current        []string
		proposed       []string
		wantMissing    []string
		wantUnexpected []string
	}{
		{
			name:     "identity permutation",
			current:  []string{"task:1", "task:2", "task:3"},
			proposed: []string{"task:1", "task:2", "task:3"},
		},
		{
			name:     "reversed permutation",
			current:  []string{"task:1", "task:2", "task:3"},
			proposed: []string{"task:3", "task:2", "task:1"},
		},
		{
			name:     "empty list and empty proposal",
			current:  nil,
			proposed: nil,
		},
		{
			name:        "missing task",
			current:     []string{"task:1", "task:2", "task:3"},
			proposed:    []string{"task:1", "task:3"},
			wantMissing: []string{"task:2"},
		},
		{
			name:           "unexpected task",
			current:        []string{"task:1", "task:2"},
			proposed:       []string{"task:1", "task:2", "task:9"},
			wantUnexpected: []string{"task:9"},
		},
		{
			name:           "duplicate counts as unexpected and leaves one missing",
			current:        []string{"task:1", "task:2"},
			proposed:       []string{"task:1", "task:1"},
			wantMissing:    []string{"task:2"},
			wantUnexpected: []string{"task:1"},
		},
		{
			name:           "disjoint sets",
			current:        []string{"task:1"},
			proposed:       []string{"task:2"},
			wantMissing:    []string{"task:1"},
			wantUnexpected: []string{"task:2"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := checkReorderSet("list:1", tt.current, tt.proposed)

			wantErr := len(tt.wantMissing) > 0 || len(tt.wantUnexpected) > 0
			if !wantErr {
				if err != nil {
					t.Fatalf("checkReorderSet() unexpected error: %v", err)
				}
				return
			}

			var mismatch *models.ReorderMismatchError
			if !errors.As(err, &mismatch) {
				t.Fatalf("checkReorderSet() error type = %T, want *ReorderMismatchError", err)
			}
			if mismatch.ListID != "list:1" {
				t.Errorf("ListID = %q, want %q", mismatch.ListID, "list:1")
			}
			if !equalSets(mismatch.Missing, tt.wantMissing) {
				t.Errorf("Missing = %v, want %v", mismatch.Missing, tt.wantMissing)
			}
			if !equalSets(mismatch.Unexpected, tt.wantUnexpected) {
				t.Errorf("Unexpected = %v, want %v", mismatch.Unexpected, tt.wantUnexpected)
			}
		})
	}
}

func equalSets(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	g := append([]string(nil), got...)
	w := append([]string(nil), want...)
	sort.Strings(g)
	sort.Strings(w)
	for i := range g {
		if g[i] != w[i] {
			return false
		}
	}
	return true
}
