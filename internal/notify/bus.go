// Package notify multiplexes the store's change stream to per-workspace
// subscribers. One LISTEN subscription is shared by every subscriber and
// torn down when the last one unregisters; every dispatch is a full-state
// push of the assembled tree, trading bandwidth for strong consistency
// over diff reconciliation.
package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/memograph/memograph/internal/database"
	"github.com/memograph/memograph/internal/models"
)

// Callback receives the freshly assembled tree of its workspace
type Callback func(tree *models.GraphTree)

// Listener is the slice of *pq.Listener the bus depends on
type Listener interface {
	NotificationChannel() <-chan *pq.Notification
	Close() error
}

// ListenerFactory opens a listener already subscribed to the graph change
// channel
type ListenerFactory func() (Listener, error)

// Dumper assembles a workspace's tree
type Dumper interface {
	Dump(ctx context.Context, workspaceID string) (*models.GraphTree, error)
}

// SnapshotStore persists the latest pushed tree per workspace so a newly
// attached consumer can render without waiting for the next mutation
type SnapshotStore interface {
	StoreSnapshot(ctx context.Context, workspaceID string, tree *models.GraphTree) error
}

// changeEvent is the trigger payload. The bus only treats it as a signal
// to re-read, never as the diff itself.
type changeEvent struct {
	WorkspaceID string `json:"workspace_id"`
	TableName   string `json:"table_name"`
	Operation   string `json:"operation"`
}

// Bus is a reference-counted multiplexer over one shared listener. It is
// a constructed value, not package state, so tests can run independent
// instances without cross-test leakage.
type Bus struct {
	factory   ListenerFactory
	dumper    Dumper
	snapshots SnapshotStore // optional
	logger    *zap.Logger

	mu        sync.Mutex
	listener  Listener
	refs      int
	nextToken int
	subs      map[string]map[int]Callback
}

// NewBus creates a bus. snapshots may be nil.
func NewBus(factory ListenerFactory, dumper Dumper, snapshots SnapshotStore, logger *zap.Logger) *Bus {
	return &Bus{
		factory:   factory,
		dumper:    dumper,
		snapshots: snapshots,
		logger:    logger,
		subs:      make(map[string]map[int]Callback),
	}
}

// NewPQListenerFactory builds a factory over lib/pq LISTEN/NOTIFY
func NewPQListenerFactory(databaseURL string, logger *zap.Logger) ListenerFactory {
	return func() (Listener, error) {
		l := pq.NewListener(databaseURL, 10*time.Second, time.Minute,
			func(event pq.ListenerEventType, err error) {
				if err != nil {
					logger.Warn("graph_listener_event",
						zap.Int("event", int(event)),
						zap.Error(err),
					)
				}
			})
		if err := l.Listen(database.GraphChannel); err != nil {
			if closeErr := l.Close(); closeErr != nil {
				_ = closeErr
			}
			return nil, err
		}
		return l, nil
	}
}

// Subscribe registers a callback for a workspace and returns its
// unsubscribe function. The shared listener starts on the first
// subscriber and closes when the last one unregisters.
func (b *Bus) Subscribe(workspaceID string, cb Callback) (func(), error) {
	if workspaceID == "" {
		return nil, &models.InvalidParameterError{Param: "workspace_id", Reason: "required"}
	}
	if cb == nil {
		return nil, &models.InvalidParameterError{Param: "callback", Reason: "required"}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.refs == 0 {
		listener, err := b.factory()
		if err != nil {
			return nil, err
		}
		b.listener = listener
		go b.run(listener)
		b.logger.Info("graph_listener_started")
	}

	b.refs++
	token := b.nextToken
	b.nextToken++
	if b.subs[workspaceID] == nil {
		b.subs[workspaceID] = make(map[int]Callback)
	}
	b.subs[workspaceID][token] = cb

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.unsubscribe(workspaceID, token)
		})
	}
	return unsubscribe, nil
}

func (b *Bus) unsubscribe(workspaceID string, token int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if callbacks, ok := b.subs[workspaceID]; ok {
		delete(callbacks, token)
		if len(callbacks) == 0 {
			delete(b.subs, workspaceID)
		}
	}

	b.refs--
	if b.refs == 0 && b.listener != nil {
		if err := b.listener.Close(); err != nil {
			b.logger.Warn("graph_listener_close_failed", zap.Error(err))
		}
		b.listener = nil
		b.logger.Info("graph_listener_stopped")
	}
}

// run drains the listener until its channel closes
func (b *Bus) run(listener Listener) {
	for notification := range listener.NotificationChannel() {
		if notification == nil {
			// Reconnect: events may have been lost, so re-read every
			// subscribed workspace.
			for _, ws := range b.subscribedWorkspaces() {
				b.dispatch(ws)
			}
			continue
		}

		var event changeEvent
		if err := json.Unmarshal([]byte(notification.Extra), &event); err != nil {
			b.logger.Warn("graph_event_malformed",
				zap.String("payload", notification.Extra),
				zap.Error(err),
			)
			continue
		}

		b.dispatch(event.WorkspaceID)
	}
}

// dispatch performs exactly one assembler read for the workspace and fans
// the same tree out to every callback registered for it
func (b *Bus) dispatch(workspaceID string) {
	callbacks := b.workspaceCallbacks(workspaceID)
	if len(callbacks) == 0 {
		return
	}

	ctx := context.Background()
	tree, err := b.dumper.Dump(ctx, workspaceID)
	if err != nil {
		b.logger.Error("graph_dump_failed",
			zap.String("workspace_id", workspaceID),
			zap.Error(err),
		)
		return
	}

	if b.snapshots != nil {
		if err := b.snapshots.StoreSnapshot(ctx, workspaceID, tree); err != nil {
			b.logger.Warn("graph_snapshot_store_failed",
				zap.String("workspace_id", workspaceID),
				zap.Error(err),
			)
		}
	}

	for _, cb := range callbacks {
		b.deliver(workspaceID, cb, tree)
	}
}

// deliver invokes one callback, isolating panics so a misbehaving
// subscriber cannot block delivery to its siblings
func (b *Bus) deliver(workspaceID string, cb Callback, tree *models.GraphTree) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("graph_callback_panicked",
				zap.String("workspace_id", workspaceID),
				zap.Any("panic", r),
			)
		}
	}()
	cb(tree)
}

func (b *Bus) workspaceCallbacks(workspaceID string) []Callback {
	b.mu.Lock()
	defer b.mu.Unlock()

	callbacks := make([]Callback, 0, len(b.subs[workspaceID]))
	for _, cb := range b.subs[workspaceID] {
		callbacks = append(callbacks, cb)
	}
	return callbacks
}

func (b *Bus) subscribedWorkspaces() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	workspaces := make([]string, 0, len(b.subs))
	for ws := range b.subs {
		workspaces = append(workspaces, ws)
	}
	return workspaces
}
