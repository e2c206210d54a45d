package pearl

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/boba-engine/boba/internal/core/resource"
)

const (
	DefaultRoundCap = 8
	DefaultWorkCap  = 65536
)

// Config bounds the work done draining the command queue.
type Config struct {
	// RoundCap is the number of drain rounds run after each listener pass.
	RoundCap int
	// WorkCap is the number of commands one top-level Trigger (or Flush) may
	// apply before the queue is declared saturated and its remainder dropped.
	WorkCap int
}

func DefaultConfig() Config {
	return Config{RoundCap: DefaultRoundCap, WorkCap: DefaultWorkCap}
}

// Diagnostics is a snapshot of the World's queue counters.
type Diagnostics struct {
	Saturations      uint64
	LastQueueLen     int
	Dropped          uint64
	ReentrantDenials uint64
	Rounds           uint64
	Applied          uint64
}

// World owns the pearls, the event registry and the resource bag.
type World struct {
	id        uuid.UUID
	cfg       Config
	log       *zap.Logger
	pearls    *Collection
	events    *Registry
	resources *resource.Bag

	inflight  map[PearlID]int
	depth     int
	draining  bool
	work      int
	saturated bool
	diag      Diagnostics
}

func New(cfg Config, log *zap.Logger) *World {
	if cfg.RoundCap <= 0 {
		cfg.RoundCap = DefaultRoundCap
	}
	if cfg.WorkCap <= 0 {
		cfg.WorkCap = DefaultWorkCap
	}
	if log == nil {
		log = zap.NewNop()
	}
	w := &World{
		id:        uuid.New(),
		cfg:       cfg,
		pearls:    NewCollection(),
		events:    NewRegistry(),
		resources: resource.NewBag(),
		inflight:  make(map[PearlID]int, 8),
	}
	w.log = log.With(zap.Stringer("world", w.id))
	w.pearls.onNewType = func(id PearlID, register func(*Registry)) {
		register(w.events)
		w.log.Debug("pearl type registered",
			zap.Stringer("pearl", id),
			zap.Int("listeners", w.events.ListenerCount(id)),
		)
	}
	return w
}

func (w *World) world() *World { return w }

func (w *World) ID() uuid.UUID            { return w.id }
func (w *World) Config() Config           { return w.cfg }
func (w *World) Resources() *resource.Bag { return w.resources }
func (w *World) Pearls() *Collection      { return w.pearls }
func (w *World) Events() *Registry        { return w.events }
func (w *World) Diagnostics() Diagnostics { return w.diag }
func (w *World) Dispatching() bool        { return w.depth > 0 }

// Flush applies commands queued outside of any dispatch, under the same caps
// as a Trigger. It is a no-op while an event is being dispatched.
func (w *World) Flush() {
	if w.depth > 0 {
		return
	}
	w.settle()
}

// Close drops every queued command without applying it. Reservations held by
// dropped inserts become stale.
func (w *World) Close() {
	if n := w.pearls.queue.Len(); n > 0 {
		w.log.Debug("dropping undrained commands", zap.Int("count", n))
	}
	w.discard()
}

func (w *World) enter(id PearlID) { w.inflight[id]++ }

func (w *World) exit(id PearlID) {
	if w.inflight[id]--; w.inflight[id] <= 0 {
		delete(w.inflight, id)
	}
}

// A hook counts as a dispatch level: Triggers raised from it only queue, and
// the queue is applied after the hook has returned.
func (w *World) enterHook(id PearlID) {
	w.depth++
	w.enter(id)
}

func (w *World) exitHook(id PearlID) {
	w.exit(id)
	w.depth--
}

// denied reports, and counts, an attempt at direct mutable access to a pearl
// type that is currently being dispatched.
func (w *World) denied(id PearlID) bool {
	if w.inflight[id] == 0 {
		return false
	}
	w.diag.ReentrantDenials++
	w.log.Debug("reentrant access denied", zap.Stringer("pearl", id))
	return true
}

// drain runs up to RoundCap rounds. Each round applies the commands queued
// before it started; commands queued while applying form the next round.
// Hooks that trigger or insert while a drain is running only queue.
func (w *World) drain() {
	if w.draining {
		return
	}
	w.draining = true
	defer func() { w.draining = false }()

	q := &w.pearls.queue
	for r := 0; r < w.cfg.RoundCap && q.Len() > 0 && !w.saturated; r++ {
		round := q.takeRound()
		w.diag.Rounds++
		for i, c := range round {
			if w.work >= w.cfg.WorkCap {
				q.requeue(round[i:])
				w.saturated = true
				return
			}
			w.work++
			w.apply(c)
		}
	}
}

// settle finishes a top-level Trigger: drain until the queue is empty or the
// work cap is hit, then reset the per-trigger budget.
func (w *World) settle() {
	if w.draining {
		return
	}
	q := &w.pearls.queue
	for q.Len() > 0 && !w.saturated {
		w.drain()
	}
	if w.saturated {
		n := q.Len()
		w.diag.Saturations++
		w.diag.LastQueueLen = n
		w.diag.Dropped += uint64(n)
		w.log.Warn("command queue saturated",
			zap.Int("remaining", n),
			zap.Int("work_cap", w.cfg.WorkCap),
			zap.Int("round_cap", w.cfg.RoundCap),
		)
		w.discard()
	}
	w.work = 0
	w.saturated = false
}

func (w *World) apply(c Command) {
	s, ok := w.pearls.stores[c.Pearl]
	if !ok {
		return
	}
	var done bool
	switch c.Kind {
	case CommandDestroy:
		done = s.destroy(w, c.Handle)
	case CommandInsert:
		done = s.materialize(w, c.Handle, c.Payload)
	}
	if !done {
		w.log.Debug("command skipped",
			zap.Stringer("kind", c.Kind),
			zap.Stringer("pearl", c.Pearl),
			zap.Stringer("handle", c.Handle),
		)
		return
	}
	w.diag.Applied++
}

func (w *World) discard() {
	w.pearls.queue.drop(func(c Command) {
		if c.Kind != CommandInsert {
			return
		}
		if s, ok := w.pearls.stores[c.Pearl]; ok {
			s.release(c.Handle)
		}
	})
}
