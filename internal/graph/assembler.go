// Package graph assembles the denormalized, consumer-facing view of a
// workspace. The whole view is re-derived on every read: simpler and
// strongly consistent compared to incremental diffing, at the cost of
// bandwidth.
package graph

import (
	"context"
	"sort"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/memograph/memograph/internal/database"
	"github.com/memograph/memograph/internal/models"
)

// Assembler reads the current node and edge set and produces a tree
// grouped by top-level kind, with edges and questions embedded on the
// entities they touch
type Assembler struct {
	lists     database.ListReader
	tasks     database.TaskReader
	notes     database.NoteReader
	questions database.QuestionReader
	edges     database.EdgeReader
	reminders database.ReminderReader
	logger    *zap.Logger
}

// NewAssembler creates a new assembler over the given readers
func NewAssembler(
	lists database.ListReader,
	tasks database.TaskReader,
	notes database.NoteReader,
	questions database.QuestionReader,
	edges database.EdgeReader,
	reminders database.ReminderReader,
	logger *zap.Logger,
) *Assembler {
	return &Assembler{
		lists:     lists,
		tasks:     tasks,
		notes:     notes,
		questions: questions,
		edges:     edges,
		reminders: reminders,
		logger:    logger,
	}
}

// snapshot is one consistent-enough read of all workspace tables
type snapshot struct {
	lists     []*models.List
	tasks     []*models.Task
	notes     []*models.Note
	questions []*models.Question
	edges     []*models.Edge
	reminders []*models.Reminder
}

// Dump assembles the full view of a workspace. It is a pure function of
// current store state: two calls with no intervening writes return
// structurally identical trees.
func (a *Assembler) Dump(ctx context.Context, workspaceID string) (*models.GraphTree, error) {
	if workspaceID == "" {
		return nil, &models.InvalidParameterError{Param: "workspace_id", Reason: "required"}
	}

	ctx, span := otel.Tracer("memograph/graph").Start(ctx, "graph.Dump")
	span.SetAttributes(attribute.String("workspace_id", workspaceID))
	defer span.End()

	snap, err := a.fetch(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	return assemble(workspaceID, snap), nil
}

// fetch reads all tables in parallel and returns the first error
func (a *Assembler) fetch(ctx context.Context, workspaceID string) (*snapshot, error) {
	snap := &snapshot{}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	run := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				a.logger.Error("graph_fetch_failed",
					zap.String("table", name),
					zap.String("workspace_id", workspaceID),
					zap.Error(err),
				)
			}
		}()
	}

	run("lists", func() (err error) { snap.lists, err = a.lists.GetByWorkspace(ctx, workspaceID); return })
	run("tasks", func() (err error) { snap.tasks, err = a.tasks.GetByWorkspace(ctx, workspaceID); return })
	run("notes", func() (err error) { snap.notes, err = a.notes.GetByWorkspace(ctx, workspaceID); return })
	run("questions", func() (err error) { snap.questions, err = a.questions.GetByWorkspace(ctx, workspaceID); return })
	run("edges", func() (err error) { snap.edges, err = a.edges.GetByWorkspace(ctx, workspaceID); return })
	run("reminders", func() (err error) { snap.reminders, err = a.reminders.GetByWorkspace(ctx, workspaceID); return })

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return snap, nil
}

// nodeMeta is the id index entry used to resolve edge endpoints
type nodeMeta struct {
	kind  models.Kind
	title string
}

func assemble(workspaceID string, snap *snapshot) *models.GraphTree {
	index := make(map[string]nodeMeta)
	for _, l := range snap.lists {
		index[l.ID] = nodeMeta{kind: models.KindList, title: l.Title}
	}
	for _, t := range snap.tasks {
		index[t.ID] = nodeMeta{kind: models.KindTask, title: t.Title}
	}
	for _, n := range snap.notes {
		index[n.ID] = nodeMeta{kind: models.KindNote, title: n.Title}
	}
	for _, q := range snap.questions {
		index[q.ID] = nodeMeta{kind: models.KindQuestion, title: q.Title}
	}
	for _, r := range snap.reminders {
		index[r.ID] = nodeMeta{kind: models.KindReminder, title: r.Message}
	}

	bySrc := make(map[string][]*models.Edge)
	byDst := make(map[string][]*models.Edge)
	for _, e := range snap.edges {
		bySrc[e.SrcID] = append(bySrc[e.SrcID], e)
		byDst[e.DstID] = append(byDst[e.DstID], e)
	}

	questionsBySrc := make(map[string][]*models.Question)
	for _, q := range snap.questions {
		questionsBySrc[q.SrcID] = append(questionsBySrc[q.SrcID], q)
	}

	resolve := func(id string) (models.Kind, string) {
		if meta, ok := index[id]; ok {
			return meta.kind, meta.title
		}
		// The endpoint may have been deleted between reads
		kind := models.Kind("")
		if parsed, err := models.ParseID(id); err == nil {
			kind = parsed.Kind
		}
		return kind, "[Deleted " + kind.Label() + "]"
	}

	edgeRefs := func(id string) (outgoing, incoming []*models.EdgeRef) {
		for _, e := range bySrc[id] {
			kind, title := resolve(e.DstID)
			outgoing = append(outgoing, &models.EdgeRef{
				EdgeID: e.ID, NodeID: e.DstID, Kind: kind, Title: title, Description: e.Description,
			})
		}
		for _, e := range byDst[id] {
			kind, title := resolve(e.SrcID)
			incoming = append(incoming, &models.EdgeRef{
				EdgeID: e.ID, NodeID: e.SrcID, Kind: kind, Title: title, Description: e.Description,
			})
		}
		return outgoing, incoming
	}

	// Questions flatten one level: an embedded question carries its own
	// edges and its direct questions, and nesting stops there.
	questionView := func(q *models.Question, withChildren bool) *models.QuestionView {
		out, in := edgeRefs(q.ID)
		view := &models.QuestionView{ID: q.ID, Title: q.Title, Outgoing: out, Incoming: in}
		if withChildren {
			for _, sub := range questionsBySrc[q.ID] {
				sOut, sIn := edgeRefs(sub.ID)
				view.Questions = append(view.Questions, &models.QuestionView{
					ID: sub.ID, Title: sub.Title, Outgoing: sOut, Incoming: sIn,
				})
			}
		}
		return view
	}
	questionViews := func(id string) []*models.QuestionView {
		var views []*models.QuestionView
		for _, q := range questionsBySrc[id] {
			views = append(views, questionView(q, true))
		}
		return views
	}

	tasksByList := make(map[string][]*models.Task)
	for _, t := range snap.tasks {
		tasksByList[t.ListID] = append(tasksByList[t.ListID], t)
	}

	tree := &models.GraphTree{
		WorkspaceID: workspaceID,
		Lists:       []*models.ListView{},
		Notes:       []*models.NoteView{},
		Reminders:   []*models.ReminderView{},
	}

	for _, l := range snap.lists {
		out, in := edgeRefs(l.ID)
		view := &models.ListView{
			ID:        l.ID,
			Title:     l.Title,
			Tasks:     []*models.TaskView{},
			Outgoing:  out,
			Incoming:  in,
			Questions: questionViews(l.ID),
		}

		tasks := tasksByList[l.ID]
		sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].Position < tasks[j].Position })
		for _, t := range tasks {
			tOut, tIn := edgeRefs(t.ID)
			view.Tasks = append(view.Tasks, &models.TaskView{
				ID:        t.ID,
				Title:     t.Title,
				Position:  t.Position,
				Completed: t.Completed,
				Outgoing:  tOut,
				Incoming:  tIn,
				Questions: questionViews(t.ID),
			})
		}

		tree.Lists = append(tree.Lists, view)
	}

	for _, n := range snap.notes {
		out, in := edgeRefs(n.ID)
		tree.Notes = append(tree.Notes, &models.NoteView{
			ID:        n.ID,
			Title:     n.Title,
			Outgoing:  out,
			Incoming:  in,
			Questions: questionViews(n.ID),
		})
	}

	for _, r := range snap.reminders {
		if r.Status != models.ReminderStatusActive {
			continue
		}
		tree.Reminders = append(tree.Reminders, &models.ReminderView{
			ID:             r.ID,
			Message:        r.Message,
			Recurrence:     r.Recurrence,
			TimeOfDay:      r.TimeOfDay,
			Timezone:       r.Timezone,
			NextOccurrence: r.NextOccurrence,
		})
	}

	return tree
}
