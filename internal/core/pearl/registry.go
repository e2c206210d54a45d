package pearl

import "github.com/boba-engine/boba/internal/core/handle"

// Pearl is implemented by every type stored in a World. Register is called
// once, on the zero value, the first time the type is inserted.
type Pearl[P any] interface {
	Register(r *Registrar[P])
}

// Listener is the callback a pearl type installs for one event type. p points
// into the pearl's storage and is only valid for the duration of the call.
type Listener[E, P any] func(p *P, ev E, v *View)

// Spawner is implemented by pearls that want to run code right after they
// materialize, whether inserted directly or through the queue.
type Spawner[P any] interface {
	OnSpawn(self handle.Handle[P], v *View)
}

// Despawner is implemented by pearls that want to run code right before they
// are removed.
type Despawner[P any] interface {
	OnDespawn(self handle.Handle[P], v *View)
}

type dispatcher struct {
	pearl PearlID
	run   func(w *World, ev any)
}

type pair struct {
	event EventID
	pearl PearlID
}

// Registry maps each event type to the ordered list of pearl types that listen
// for it. The list order is registration order and fixes the order in which
// pearl types see one event.
type Registry struct {
	listeners map[EventID][]dispatcher
	pairs     map[pair]struct{}
	pearls    map[PearlID]int
}

func NewRegistry() *Registry {
	return &Registry{
		listeners: make(map[EventID][]dispatcher, 16),
		pairs:     make(map[pair]struct{}, 32),
		pearls:    make(map[PearlID]int, 16),
	}
}

// Registered reports whether the pearl type has been through Register.
func (r *Registry) Registered(id PearlID) bool {
	_, ok := r.pearls[id]
	return ok
}

// Listeners returns the pearl types listening for the event, in dispatch order.
func (r *Registry) Listeners(id EventID) []PearlID {
	ds := r.listeners[id]
	out := make([]PearlID, len(ds))
	for i, d := range ds {
		out[i] = d.pearl
	}
	return out
}

// ListenerCount returns the number of event types the pearl type listens for.
func (r *Registry) ListenerCount(id PearlID) int { return r.pearls[id] }

func (r *Registry) addPearl(id PearlID) {
	if _, ok := r.pearls[id]; !ok {
		r.pearls[id] = 0
	}
}

// Registrar is handed to Pearl.Register to install listeners for P.
type Registrar[P any] struct {
	registry *Registry
	pearl    PearlID
}

// Listen installs fn as P's listener for events of type E. A second Listen for
// the same (E, P) pair is ignored and reports false.
func Listen[E, P any](r *Registrar[P], fn Listener[E, P]) bool {
	k := pair{event: EventIDOf[E](), pearl: r.pearl}
	if _, dup := r.registry.pairs[k]; dup {
		return false
	}
	r.registry.pairs[k] = struct{}{}
	r.registry.pearls[r.pearl]++
	id := r.pearl
	r.registry.listeners[k.event] = append(r.registry.listeners[k.event], dispatcher{
		pearl: id,
		run: func(w *World, ev any) {
			dispatch(w, id, fn, ev.(E))
		},
	})
	return true
}

// dispatch delivers ev to every pearl of type P that is live when dispatch
// starts and still live when its turn comes. Iteration runs over a copy of the
// handle array, so pearls materialized meanwhile do not see this event.
// A nested Trigger skips P while P is already in flight.
func dispatch[E, P any](w *World, id PearlID, fn Listener[E, P], ev E) {
	s := lookup[P](w.pearls)
	if s == nil || s.m.IsEmpty() || w.denied(id) {
		return
	}
	snapshot := append([]handle.Handle[P](nil), s.m.Handles()...)

	w.enter(id)
	v := View{w: w, pearl: id}
	for _, h := range snapshot {
		p, ok := s.m.GetMut(h)
		if !ok {
			continue
		}
		v.self = h.Raw()
		fn(p, ev, &v)
	}
	w.exit(id)
}

func notifySpawn[P any](w *World, s *store[P], h handle.Handle[P]) bool {
	p, ok := s.m.GetMut(h)
	if !ok {
		return false
	}
	sp, ok := any(p).(Spawner[P])
	if !ok {
		return false
	}
	w.enterHook(s.id)
	sp.OnSpawn(h, &View{w: w, pearl: s.id, self: h.Raw()})
	w.exitHook(s.id)
	return true
}

func notifyDespawn[P any](w *World, s *store[P], h handle.Handle[P]) bool {
	p, ok := s.m.GetMut(h)
	if !ok {
		return false
	}
	d, ok := any(p).(Despawner[P])
	if !ok {
		return false
	}
	w.enterHook(s.id)
	d.OnDespawn(h, &View{w: w, pearl: s.id, self: h.Raw()})
	w.exitHook(s.id)
	return true
}
