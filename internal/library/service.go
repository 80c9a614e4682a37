// Package library keeps the in-memory mirror of the photo library in step
// with the authoritative source and tracks the user's focus within it.
package library

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/alexwlchan/blink/internal/domain"
	"github.com/alexwlchan/blink/internal/focus"
	"github.com/alexwlchan/blink/internal/reconcile"
	"github.com/alexwlchan/blink/internal/snapshot"
)

// Options configures a Service.
type Options struct {
	// Optimistic applies album and favorite edits locally without waiting
	// for the source's change notification. A refused edit is undone by a
	// full reload.
	Optimistic bool
}

// Event tells the UI that the snapshot or the focus changed. Events are
// coalesced: if the UI falls behind it receives only the latest state, with
// the change flags of everything it missed.
type Event struct {
	Snapshot        *snapshot.Snapshot
	Focus           focus.State
	HasFocus        bool
	SnapshotChanged bool
	FocusChanged    bool
	Removed         []domain.AssetID // photos deleted since the last event, when known
	Err             error
}

// job is one unit of work for the owner goroutine
type job struct {
	notification *domain.ChangeNotification
	reload       bool
	local        func(*snapshot.Snapshot) *snapshot.Snapshot
}

// Service owns the current snapshot. Notifications and local edits are
// applied one at a time, in arrival order, by the goroutine running Run.
// Readers on any goroutine see the latest published snapshot.
type Service struct {
	source     domain.CollectionSource
	reconciler *reconcile.Reconciler
	opts       Options
	logger     *slog.Logger

	snap atomic.Pointer[snapshot.Snapshot]

	focusMu sync.Mutex // Protects focus and orders snapshot swaps against focus moves
	focus   focus.Tracker

	queueMu sync.Mutex
	queue   []job
	wake    chan struct{}

	updatesMu sync.Mutex
	updates   chan Event

	cmdMu sync.Mutex // Serializes mutation commands

	dirty bool // owner only: the next pass must be a full reload
}

// NewService creates a service mirroring source. Call Run to start it.
func NewService(source domain.CollectionSource, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		source:     source,
		reconciler: reconcile.New(source, logger),
		opts:       opts,
		logger:     logger,
		wake:       make(chan struct{}, 1),
		updates:    make(chan Event, 1),
	}
	s.snap.Store(snapshot.Empty())
	return s
}

// Run subscribes to the source, loads the library and applies changes until
// ctx is done.
func (s *Service) Run(ctx context.Context) error {
	// Subscribe before loading so nothing between the read and the
	// subscription is lost. Replayed changes are idempotent.
	cancel := s.source.Subscribe(func(n domain.ChangeNotification) {
		s.enqueue(job{notification: &n})
	})
	defer cancel()

	s.enqueue(job{reload: true})

	for {
		j, ok := s.next(ctx)
		if !ok {
			return ctx.Err()
		}
		s.process(ctx, j)
	}
}

// Reload schedules a full reload.
func (s *Service) Reload() {
	s.enqueue(job{reload: true})
}

// enqueue never blocks; the queue is unbounded
func (s *Service) enqueue(j job) {
	s.queueMu.Lock()
	s.queue = append(s.queue, j)
	s.queueMu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// next waits for the oldest queued job
func (s *Service) next(ctx context.Context) (job, bool) {
	for {
		s.queueMu.Lock()
		if len(s.queue) > 0 {
			j := s.queue[0]
			s.queue[0] = job{}
			s.queue = s.queue[1:]
			s.queueMu.Unlock()
			return j, true
		}
		s.queueMu.Unlock()

		select {
		case <-ctx.Done():
			return job{}, false
		case <-s.wake:
		}
	}
}

func (s *Service) process(ctx context.Context, j job) {
	current := s.snap.Load()

	switch {
	case j.local != nil:
		if !current.Loaded() {
			return
		}
		// Local edits never reorder, so the focus stays put.
		if next := j.local(current); next != current {
			s.install(next, &domain.AssetChanges{Incremental: true})
		}

	case j.reload || s.dirty || !current.Loaded():
		next, err := s.reconciler.FullReload(ctx)
		if err != nil {
			s.fail(ctx, current, err)
			return
		}
		s.dirty = false
		s.install(next, nil)

	default:
		next, err := s.reconciler.ApplyIncremental(ctx, current, *j.notification)
		if err != nil {
			s.fail(ctx, current, err)
			return
		}
		s.install(next, j.notification.Assets)
	}
}

// fail keeps the current snapshot and forces the next pass to reload
func (s *Service) fail(ctx context.Context, current *snapshot.Snapshot, err error) {
	if ctx.Err() != nil {
		return
	}
	if errors.Is(err, domain.ErrUnavailable) {
		s.logger.Warn("photo library unavailable", "error", err, "loaded", current.Loaded())
	} else {
		s.logger.Error("failed to update library", "error", err)
	}
	s.dirty = true
	s.publish(Event{Snapshot: current, Err: err})
}

// install publishes next and relocates the focus
func (s *Service) install(next *snapshot.Snapshot, changes *domain.AssetChanges) {
	s.focusMu.Lock()
	old := s.snap.Swap(next)
	moved := s.focus.Apply(old, next, changes)
	state, ok := s.focus.State()
	s.focusMu.Unlock()

	s.logger.Debug("published snapshot", "assets", next.Len(), "focus", state.Index, "focusMoved", moved)
	ev := Event{
		Snapshot:        next,
		Focus:           state,
		HasFocus:        ok,
		SnapshotChanged: next != old,
		FocusChanged:    moved,
	}
	if changes != nil {
		ev.Removed = changes.RemovedIDs
	}
	s.publish(ev)
}

// Updates returns the event channel. Only the latest event is buffered.
func (s *Service) Updates() <-chan Event {
	return s.updates
}

func (s *Service) publish(ev Event) {
	s.updatesMu.Lock()
	defer s.updatesMu.Unlock()

	select {
	case prev := <-s.updates:
		ev.SnapshotChanged = ev.SnapshotChanged || prev.SnapshotChanged
		ev.FocusChanged = ev.FocusChanged || prev.FocusChanged
		if len(prev.Removed) > 0 {
			ev.Removed = append(append([]domain.AssetID(nil), prev.Removed...), ev.Removed...)
		}
		if ev.Err == nil {
			ev.Err = prev.Err
		}
	default:
	}
	s.updates <- ev
}
