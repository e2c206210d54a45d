package handle

type slotState uint8

const (
	slotFree slotState = iota
	slotPending
	slotLive
	slotRetired // generation wrapped; never handed out again
)

type slot struct {
	dataIndex  uint32
	generation uint32
	state      slotState
}

// Map is a dense array of T addressed through generation-checked handles.
//
// data and handles are parallel: handles[i] is the handle of data[i]. The
// slot directory maps a handle index to its current position in data, so
// removal can swap the last element into the hole in O(1).
type Map[T any] struct {
	tag     uint16
	data    []T
	handles []Handle[T]
	slots   []slot
	free    []uint32
}

// NewMap creates a map whose handles carry tag. A tag of 0 is bumped to 1 so
// that the zero Handle stays invalid.
func NewMap[T any](tag uint16) *Map[T] {
	if tag == 0 {
		tag = 1
	}
	return &Map[T]{
		tag:     tag,
		data:    make([]T, 0, 16),
		handles: make([]Handle[T], 0, 16),
		slots:   make([]slot, 0, 16),
	}
}

func (m *Map[T]) Tag() uint16   { return m.tag }
func (m *Map[T]) Len() int      { return len(m.data) }
func (m *Map[T]) IsEmpty() bool { return len(m.data) == 0 }

// Insert stores v and returns its handle.
func (m *Map[T]) Insert(v T) Handle[T] {
	idx := m.acquire()
	h := Handle[T]{index: idx, generation: m.slots[idx].generation, tag: m.tag}
	m.place(h, v)
	return h
}

// Reserve allocates a slot without storing a value. The returned handle is
// not live until Fulfill is called with it; Release gives the slot back.
func (m *Map[T]) Reserve() Handle[T] {
	idx := m.acquire()
	m.slots[idx].state = slotPending
	return Handle[T]{index: idx, generation: m.slots[idx].generation, tag: m.tag}
}

// Fulfill stores v in a slot obtained from Reserve. It reports false, and
// stores nothing, if the reservation was released in the meantime.
func (m *Map[T]) Fulfill(h Handle[T], v T) bool {
	if !m.is(h, slotPending) {
		return false
	}
	m.place(h, v)
	return true
}

// Release cancels a reservation. The handle becomes stale.
func (m *Map[T]) Release(h Handle[T]) bool {
	if !m.is(h, slotPending) {
		return false
	}
	m.recycle(h.index)
	return true
}

// Pending reports whether h is a reservation that has not been fulfilled.
func (m *Map[T]) Pending(h Handle[T]) bool {
	return m.is(h, slotPending)
}

func (m *Map[T]) Contains(h Handle[T]) bool {
	return m.is(h, slotLive)
}

// Get returns a copy of the value at h.
func (m *Map[T]) Get(h Handle[T]) (T, bool) {
	if !m.is(h, slotLive) {
		var zero T
		return zero, false
	}
	return m.data[m.slots[h.index].dataIndex], true
}

// GetMut returns a pointer into the dense array. The pointer is invalidated
// by the next Insert, Fulfill or Remove on this map.
func (m *Map[T]) GetMut(h Handle[T]) (*T, bool) {
	if !m.is(h, slotLive) {
		return nil, false
	}
	return &m.data[m.slots[h.index].dataIndex], true
}

// Remove swap-removes the value at h and returns it. Stale handles are a no-op.
func (m *Map[T]) Remove(h Handle[T]) (T, bool) {
	var zero T
	if !m.is(h, slotLive) {
		return zero, false
	}
	at := m.slots[h.index].dataIndex
	v := m.data[at]
	last := uint32(len(m.data) - 1)
	if at != last {
		m.data[at] = m.data[last]
		m.handles[at] = m.handles[last]
		m.slots[m.handles[at].index].dataIndex = at
	}
	m.data[last] = zero
	m.data = m.data[:last]
	m.handles = m.handles[:last]
	m.recycle(h.index)
	return v, true
}

// Slice returns the dense values. It aliases the map's storage.
func (m *Map[T]) Slice() []T { return m.data }

// Handles returns the handles parallel to Slice. It aliases the map's storage.
func (m *Map[T]) Handles() []Handle[T] { return m.handles }

func (m *Map[T]) is(h Handle[T], st slotState) bool {
	if h.tag != m.tag || int(h.index) >= len(m.slots) {
		return false
	}
	s := m.slots[h.index]
	return s.state == st && s.generation == h.generation
}

func (m *Map[T]) acquire() uint32 {
	if n := len(m.free); n > 0 {
		idx := m.free[n-1]
		m.free = m.free[:n-1]
		return idx
	}
	m.slots = append(m.slots, slot{generation: 1})
	return uint32(len(m.slots) - 1)
}

func (m *Map[T]) place(h Handle[T], v T) {
	s := &m.slots[h.index]
	s.dataIndex = uint32(len(m.data))
	s.state = slotLive
	m.data = append(m.data, v)
	m.handles = append(m.handles, h)
}

// recycle bumps the slot generation and returns it to the free list, unless
// the generation wrapped around, in which case the slot is retired for good.
func (m *Map[T]) recycle(idx uint32) {
	s := &m.slots[idx]
	s.generation++
	if s.generation == 0 {
		s.state = slotRetired
		return
	}
	s.state = slotFree
	m.free = append(m.free, idx)
}
