package pearl

import (
	"github.com/boba-engine/boba/internal/core/handle"
	"github.com/boba-engine/boba/internal/core/resource"
)

// Scope is where pearl operations run: a *World outside dispatch or the
// *View handed to a callback. The reentrant-access rule applies to both.
type Scope interface {
	Resources() *resource.Bag
	world() *World
}

// View is the callback side of a World. It identifies the pearl whose
// callback is running and must not be retained after the callback returns.
type View struct {
	w     *World
	pearl PearlID
	self  handle.Raw
}

func (v *View) world() *World            { return v.w }
func (v *View) Resources() *resource.Bag { return v.w.resources }

// World exposes the owning World for read access. Mutations made through it
// are subject to the same rules as those made through the View.
func (v *View) World() *World { return v.w }

// Self returns the handle of the pearl whose callback or hook is running,
// provided it is of type P.
func Self[P any](v *View) (handle.Handle[P], bool) {
	if v.pearl != PearlIDOf[P]() || v.self.IsZero() {
		return handle.Handle[P]{}, false
	}
	return handle.FromRaw[P](v.self), true
}

// Insert stores p immediately and returns its handle. If pearls of type P are
// being dispatched the insert is queued instead and the reservation returned.
func Insert[P Pearl[P]](s Scope, p P) handle.Handle[P] {
	w := s.world()
	st := ensure[P](w.pearls)
	if w.inflight[st.id] > 0 {
		return queueInsert(w, st, p)
	}
	h := st.m.Insert(p)
	if notifySpawn(w, st, h) && w.depth == 0 {
		w.settle()
	}
	return h
}

// Remove deletes the pearl at h and returns it. Stale handles, and pearl
// types being dispatched, yield false.
func Remove[P any](s Scope, h handle.Handle[P]) (P, bool) {
	var zero P
	w := s.world()
	st := lookup[P](w.pearls)
	if st == nil || !st.m.Contains(h) || w.denied(st.id) {
		return zero, false
	}
	hooked := notifyDespawn(w, st, h)
	p, ok := st.m.Remove(h)
	if hooked && w.depth == 0 {
		w.settle()
	}
	return p, ok
}

func Contains[P any](s Scope, h handle.Handle[P]) bool {
	st := lookup[P](s.world().pearls)
	return st != nil && st.m.Contains(h)
}

// Get returns a copy of the pearl at h. It is allowed for every pearl type,
// including the one being dispatched.
func Get[P any](s Scope, h handle.Handle[P]) (P, bool) {
	st := lookup[P](s.world().pearls)
	if st == nil {
		var zero P
		return zero, false
	}
	return st.m.Get(h)
}

// GetMut returns a pointer to the pearl at h. The pointer is invalidated by
// the next insert or remove of type P. It fails for the type being dispatched.
func GetMut[P any](s Scope, h handle.Handle[P]) (*P, bool) {
	w := s.world()
	st := lookup[P](w.pearls)
	if st == nil || w.denied(st.id) {
		return nil, false
	}
	return st.m.GetMut(h)
}

// Slice returns the dense pearls of type P, or nil while P is being dispatched.
func Slice[P any](s Scope) []P {
	w := s.world()
	st := lookup[P](w.pearls)
	if st == nil || w.denied(st.id) {
		return nil
	}
	return st.m.Slice()
}

// Handles returns the handles parallel to Slice. Callers must not modify it.
func Handles[P any](s Scope) []handle.Handle[P] {
	st := lookup[P](s.world().pearls)
	if st == nil {
		return nil
	}
	return st.m.Handles()
}

func Count[P any](s Scope) int {
	st := lookup[P](s.world().pearls)
	if st == nil {
		return 0
	}
	return st.m.Len()
}

// QueueInsert defers the insertion of p. The handle is usable right away, for
// example to link pearls together; it resolves once the queue is drained, or
// goes stale if the insert is dropped.
func QueueInsert[P Pearl[P]](s Scope, p P) handle.Handle[P] {
	w := s.world()
	return queueInsert(w, ensure[P](w.pearls), p)
}

func queueInsert[P any](w *World, st *store[P], p P) handle.Handle[P] {
	h := st.m.Reserve()
	w.pearls.queue.pushInsert(st.id, h.Raw(), p)
	return h
}

// QueueDestroy defers the removal of the pearl at h. Queuing the same handle
// twice has no further effect.
func QueueDestroy[P any](s Scope, h handle.Handle[P]) {
	w := s.world()
	st := lookup[P](w.pearls)
	if st == nil {
		return
	}
	w.pearls.queue.pushDestroy(st.id, h.Raw())
}

// Trigger delivers ev to every pearl type listening for E, in registration
// order. After each listener pass of the outermost Trigger the command queue
// is drained for up to RoundCap rounds; when the outermost Trigger returns the
// remainder is drained up to WorkCap. Nested Triggers only queue.
func Trigger[E any](s Scope, ev E) {
	w := s.world()
	list := w.events.listeners[EventIDOf[E]()]
	w.depth++
	for _, d := range list {
		d.run(w, ev)
		if w.depth == 1 {
			w.drain()
		}
	}
	w.depth--
	if w.depth == 0 {
		w.settle()
	}
}
