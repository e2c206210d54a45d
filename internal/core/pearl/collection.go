package pearl

import "github.com/boba-engine/boba/internal/core/handle"

// storage is the erased view of one pearl type's handle map. The World only
// talks to it while applying or discarding queued commands; typed access goes
// through lookup, which downcasts after matching the PearlID.
type storage interface {
	len() int
	destroy(w *World, h handle.Raw) bool
	materialize(w *World, h handle.Raw, payload any) bool
	release(h handle.Raw) bool
}

type store[P any] struct {
	id PearlID
	m  *handle.Map[P]
}

func (s *store[P]) len() int { return s.m.Len() }

// destroy removes a live pearl, or cancels the reservation if the handle was
// queued for insertion but has not materialized yet.
func (s *store[P]) destroy(w *World, r handle.Raw) bool {
	h := handle.FromRaw[P](r)
	if s.m.Release(h) {
		return true
	}
	if !s.m.Contains(h) {
		return false
	}
	notifyDespawn(w, s, h)
	_, ok := s.m.Remove(h)
	return ok
}

func (s *store[P]) materialize(w *World, r handle.Raw, payload any) bool {
	h := handle.FromRaw[P](r)
	v, ok := payload.(P)
	if !ok || !s.m.Fulfill(h, v) {
		return false
	}
	notifySpawn(w, s, h)
	return true
}

func (s *store[P]) release(r handle.Raw) bool {
	return s.m.Release(handle.FromRaw[P](r))
}

// Collection owns one handle map per pearl type seen so far, plus the queue
// of deferred commands against them.
type Collection struct {
	stores map[PearlID]storage
	order  []PearlID
	queue  CommandQueue

	// onNewType runs once per pearl type, before its first value is stored.
	// register installs the type's listeners into the registry it is given.
	onNewType func(id PearlID, register func(*Registry))
}

func NewCollection() *Collection {
	return &Collection{
		stores: make(map[PearlID]storage, 16),
		order:  make([]PearlID, 0, 16),
		queue:  newCommandQueue(),
	}
}

// Types returns the pearl types in the order they were first seen.
func (c *Collection) Types() []PearlID { return c.order }

// Count returns the number of live pearls of the given type.
func (c *Collection) Count(id PearlID) int {
	if s, ok := c.stores[id]; ok {
		return s.len()
	}
	return 0
}

// Queued returns the number of commands waiting to be applied.
func (c *Collection) Queued() int { return c.queue.Len() }

func lookup[P any](c *Collection) *store[P] {
	s, ok := c.stores[PearlIDOf[P]()]
	if !ok {
		return nil
	}
	return s.(*store[P])
}

func ensure[P Pearl[P]](c *Collection) *store[P] {
	if s := lookup[P](c); s != nil {
		return s
	}
	id := PearlIDOf[P]()
	s := &store[P]{id: id, m: handle.NewMap[P](uint16(len(c.order) + 1))}
	if c.onNewType != nil {
		c.onNewType(id, func(r *Registry) {
			r.addPearl(id)
			var zero P
			zero.Register(&Registrar[P]{registry: r, pearl: id})
		})
	}
	c.stores[id] = s
	c.order = append(c.order, id)
	return s
}
