package graph

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/memograph/memograph/internal/models"
)

type fakeStore struct {
	lists     []*models.List
	tasks     []*models.Task
	notes     []*models.Note
	questions []*models.Question
	edges     []*models.Edge
	reminders []*models.Reminder
	err       error
}

type fakeListReader struct{ s *fakeStore }
type fakeTaskReader struct{ s *fakeStore }
type fakeNoteReader struct{ s *fakeStore }
type fakeQuestionReader struct{ s *fakeStore }
type fakeEdgeReader struct{ s *fakeStore }
type fakeReminderReader struct{ s *fakeStore }

func (r fakeListReader) GetByWorkspace(ctx context.Context, ws string) ([]*models.List, error) {
	return r.s.lists, r.s.err
}
func (r fakeTaskReader) GetByWorkspace(ctx context.Context, ws string) ([]*models.Task, error) {
	return r.s.tasks, nil
}
func (r fakeNoteReader) GetByWorkspace(ctx context.Context, ws string) ([]*models.Note, error) {
	return r.s.notes, nil
}
func (r fakeQuestionReader) GetByWorkspace(ctx context.Context, ws string) ([]*models.Question, error) {
	return r.s.questions, nil
}
func (r fakeEdgeReader) GetByWorkspace(ctx context.Context, ws string) ([]*models.Edge, error) {
	return r.s.edges, nil
}
func (r fakeReminderReader) GetByWorkspace(ctx context.Context, ws string) ([]*models.Reminder, error) {
	return r.s.reminders, nil
}

func newTestAssembler(s *fakeStore) *Assembler {
	return NewAssembler(
		fakeListReader{s}, fakeTaskReader{s}, fakeNoteReader{s},
		fakeQuestionReader{s}, fakeEdgeReader{s}, fakeReminderReader{s},
		zap.NewNop(),
	)
}

func TestDumpEmptyWorkspace(t *testing.T) {
	t.Parallel()

	tree, err := newTestAssembler(&fakeStore{}).Dump(context.Background(), "ws1")
	if err != nil {
		t.Fatalf("Dump() error: %v", err)
	}

	// Top-level groups are present and empty, never nil
	if tree.Lists == nil || len(tree.Lists) != 0 {
		t.Errorf("Lists = %v, want empty slice", tree.Lists)
	}
	if tree.Notes == nil || len(tree.Notes) != 0 {
		t.Errorf("Notes = %v, want empty slice", tree.Notes)
	}
	if tree.Reminders == nil || len(tree.Reminders) != 0 {
		t.Errorf("Reminders = %v, want empty slice", tree.Reminders)
	}
	if tree.WorkspaceID != "ws1" {
		t.Errorf("WorkspaceID = %q, want %q", tree.WorkspaceID, "ws1")
	}
}

func TestDumpRequiresWorkspace(t *testing.T) {
	t.Parallel()

	_, err := newTestAssembler(&fakeStore{}).Dump(context.Background(), "")
	if err == nil {
		t.Fatal("Dump() with empty workspace should fail")
	}
	var invalid *models.InvalidParameterError
	if !errors.As(err, &invalid) {
		t.Errorf("error type = %T, want *InvalidParameterError", err)
	}
}

func TestDumpPropagatesReadErrors(t *testing.T) {
	t.Parallel()

	readErr := errors.New("connection reset")
	_, err := newTestAssembler(&fakeStore{err: readErr}).Dump(context.Background(), "ws1")
	if !errors.Is(err, readErr) {
		t.Errorf("Dump() error = %v, want %v", err, readErr)
	}
}

func TestDumpTaskOrdering(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		lists: []*models.List{{ID: "list:1", Title: "Errands"}},
		tasks: []*models.Task{
			{ID: "task:3", ListID: "list:1", Title: "third", Position: 3},
			{ID: "task:1", ListID: "list:1", Title: "first", Position: 1},
			{ID: "task:2", ListID: "list:1", Title: "second", Position: 2, Completed: true},
		},
	}

	tree, err := newTestAssembler(store).Dump(context.Background(), "ws1")
	if err != nil {
		t.Fatalf("Dump() error: %v", err)
	}
	if len(tree.Lists) != 1 {
		t.Fatalf("len(Lists) = %d, want 1", len(tree.Lists))
	}

	got := make([]string, 0, 3)
	for _, task := range tree.Lists[0].Tasks {
		got = append(got, task.Title)
	}
	want := []string{"first", "second", "third"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("task order = %v, want %v", got, want)
	}
	if !tree.Lists[0].Tasks[1].Completed {
		t.Error("completed flag lost in assembly")
	}
}

func TestDumpEdgeEmbedding(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		lists: []*models.List{{ID: "list:1", Title: "Errands"}},
		notes: []*models.Note{{ID: "note:1", Title: "Store hours"}},
		edges: []*models.Edge{
			{ID: "edge:1", SrcID: "note:1", DstID: "list:1", Description: "context for"},
		},
	}

	tree, err := newTestAssembler(store).Dump(context.Background(), "ws1")
	if err != nil {
		t.Fatalf("Dump() error: %v", err)
	}

	note := tree.Notes[0]
	if len(note.Outgoing) != 1 {
		t.Fatalf("note outgoing = %d, want 1", len(note.Outgoing))
	}
	out := note.Outgoing[0]
	if out.NodeID != "list:1" || out.Kind != models.KindList || out.Title != "Errands" {
		t.Errorf("outgoing ref = %+v", out)
	}
	if out.Description != "context for" {
		t.Errorf("Description = %q, want %q", out.Description, "context for")
	}

	list := tree.Lists[0]
	if len(list.Incoming) != 1 {
		t.Fatalf("list incoming = %d, want 1", len(list.Incoming))
	}
	in := list.Incoming[0]
	if in.NodeID != "note:1" || in.Kind != models.KindNote || in.Title != "Store hours" {
		t.Errorf("incoming ref = %+v", in)
	}
}

func TestDumpDeletedEndpointFallback(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		notes: []*models.Note{{ID: "note:1", Title: "Orphaned"}},
		edges: []*models.Edge{
			{ID: "edge:1", SrcID: "note:1", DstID: "task:99"},
		},
	}

	tree, err := newTestAssembler(store).Dump(context.Background(), "ws1")
	if err != nil {
		t.Fatalf("Dump() error: %v", err)
	}

	out := tree.Notes[0].Outgoing[0]
	if out.Title != "[Deleted Task]" {
		t.Errorf("dangling endpoint title = %q, want %q", out.Title, "[Deleted Task]")
	}
	if out.Kind != models.KindTask {
		t.Errorf("dangling endpoint kind = %q, want %q", out.Kind, models.KindTask)
	}
}

func TestDumpQuestionsFlattenOneLevel(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		notes: []*models.Note{{ID: "note:1", Title: "Plan"}},
		questions: []*models.Question{
			{ID: "question:1", SrcID: "note:1", Title: "When?"},
			{ID: "question:2", SrcID: "question:1", Title: "Why when?"},
			{ID: "question:3", SrcID: "question:2", Title: "Why why?"},
		},
		edges: []*models.Edge{
			{ID: "edge:1", SrcID: "question:1", DstID: "note:1"},
			{ID: "edge:2", SrcID: "question:2", DstID: "note:1"},
		},
	}

	tree, err := newTestAssembler(store).Dump(context.Background(), "ws1")
	if err != nil {
		t.Fatalf("Dump() error: %v", err)
	}

	questions := tree.Notes[0].Questions
	if len(questions) != 1 {
		t.Fatalf("len(Questions) = %d, want 1", len(questions))
	}
	q := questions[0]
	if q.Title != "When?" {
		t.Errorf("question title = %q", q.Title)
	}
	if len(q.Outgoing) != 1 {
		t.Errorf("question outgoing = %d, want 1", len(q.Outgoing))
	}

	// A question raised on this question is visible one level down, with
	// its own edges
	if len(q.Questions) != 1 {
		t.Fatalf("len(sub-questions) = %d, want 1", len(q.Questions))
	}
	sub := q.Questions[0]
	if sub.ID != "question:2" || sub.Title != "Why when?" {
		t.Errorf("sub-question = %s %q", sub.ID, sub.Title)
	}
	if len(sub.Outgoing) != 1 {
		t.Errorf("sub-question outgoing = %d, want 1", len(sub.Outgoing))
	}

	// Nesting stops there: a question on the sub-question is not embedded
	if len(sub.Questions) != 0 {
		t.Errorf("sub-question nests further: %d", len(sub.Questions))
	}
}

func TestDumpOnlyActiveReminders(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		reminders: []*models.Reminder{
			{ID: "reminder:1", Message: "standup", Status: models.ReminderStatusActive},
			{ID: "reminder:2", Message: "old", Status: models.ReminderStatusCompleted},
			{ID: "reminder:3", Message: "gone", Status: models.ReminderStatusCancelled},
		},
	}

	tree, err := newTestAssembler(store).Dump(context.Background(), "ws1")
	if err != nil {
		t.Fatalf("Dump() error: %v", err)
	}
	if len(tree.Reminders) != 1 {
		t.Fatalf("len(Reminders) = %d, want 1", len(tree.Reminders))
	}
	if tree.Reminders[0].Message != "standup" {
		t.Errorf("reminder message = %q", tree.Reminders[0].Message)
	}
}

func TestDumpDeterministic(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		lists: []*models.List{
			{ID: "list:1", Title: "A"},
			{ID: "list:2", Title: "B"},
		},
		tasks: []*models.Task{
			{ID: "task:1", ListID: "list:1", Title: "one", Position: 1},
			{ID: "task:2", ListID: "list:2", Title: "two", Position: 1},
		},
		notes: []*models.Note{{ID: "note:1", Title: "N"}},
		edges: []*models.Edge{
			{ID: "edge:1", SrcID: "task:1", DstID: "note:1"},
			{ID: "edge:2", SrcID: "note:1", DstID: "list:2"},
		},
	}

	assembler := newTestAssembler(store)
	first, err := assembler.Dump(context.Background(), "ws1")
	if err != nil {
		t.Fatalf("Dump() error: %v", err)
	}
	second, err := assembler.Dump(context.Background(), "ws1")
	if err != nil {
		t.Fatalf("Dump() error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("two dumps with no intervening writes differ")
	}
}
