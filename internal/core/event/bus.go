package event

import (
	"reflect"
	"sync"
)

type queued struct {
	t  reflect.Type
	ev any
}

// Bus is a double-buffered input mailbox. Events emitted during frame N, from
// any goroutine, are delivered in frame N+1 after SwapBuffers. Delivery keeps
// emit order across event types.
type Bus struct {
	mu       sync.Mutex // guards back and handlers
	front    []queued
	back     []queued
	handlers map[reflect.Type][]func(any)
}

func NewBus() *Bus {
	return &Bus{
		front:    make([]queued, 0, 32),
		back:     make([]queued, 0, 32),
		handlers: make(map[reflect.Type][]func(any)),
	}
}

// Emit queues an event into the back buffer.
func Emit[T any](b *Bus, ev T) {
	b.mu.Lock()
	b.back = append(b.back, queued{t: reflect.TypeOf((*T)(nil)).Elem(), ev: ev})
	b.mu.Unlock()
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.handlers[t] = append(b.handlers[t], func(ev any) { fn(ev.(T)) })
}

// SwapBuffers rotates back into front and clears the new back buffer.
// Called once at frame start.
func (b *Bus) SwapBuffers() {
	b.mu.Lock()
	b.front, b.back = b.back, b.front
	clear(b.back)
	b.back = b.back[:0]
	b.mu.Unlock()
}

// DispatchAll delivers the front buffer to subscribed handlers and returns
// the number of events delivered. Events without a handler are skipped.
func (b *Bus) DispatchAll() int {
	b.mu.Lock()
	handlers := make(map[reflect.Type][]func(any), len(b.handlers))
	for t, hs := range b.handlers {
		handlers[t] = hs
	}
	b.mu.Unlock()

	n := 0
	for _, q := range b.front {
		hs := handlers[q.t]
		if len(hs) == 0 {
			continue
		}
		for _, h := range hs {
			h(q.ev)
		}
		n++
	}
	return n
}

// Pending returns the number of events waiting in the back buffer.
func (b *Bus) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.back)
}
