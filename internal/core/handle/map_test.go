package handle

import (
	"math"
	"testing"
)

type pos struct{ X, Y int }

func checkInvariants[T any](t *testing.T, m *Map[T]) {
	t.Helper()
	if len(m.data) != len(m.handles) {
		t.Fatalf("len(data) = %d, len(handles) = %d", len(m.data), len(m.handles))
	}
	live := 0
	for i, s := range m.slots {
		if s.state != slotLive {
			continue
		}
		live++
		if int(s.dataIndex) >= len(m.data) {
			t.Fatalf("slot %d points past data (%d >= %d)", i, s.dataIndex, len(m.data))
		}
		if h := m.handles[s.dataIndex]; h.index != uint32(i) || h.generation != s.generation {
			t.Fatalf("slot %d back-reference = %v, want index %d gen %d", i, h, i, s.generation)
		}
	}
	if live != len(m.data) {
		t.Fatalf("live slots = %d, data = %d", live, len(m.data))
	}
	for i, h := range m.handles {
		if h.tag != m.tag {
			t.Fatalf("handle %d tag = %d, want %d", i, h.tag, m.tag)
		}
	}
}

func TestMapInsertGet(t *testing.T) {
	m := NewMap[pos](3)
	a := m.Insert(pos{1, 2})
	b := m.Insert(pos{3, 4})
	checkInvariants(t, m)

	if a == b {
		t.Fatal("distinct inserts returned equal handles")
	}
	if a.Tag() != 3 || b.Tag() != 3 {
		t.Errorf("tags = %d,%d, want 3", a.Tag(), b.Tag())
	}
	if v, ok := m.Get(a); !ok || v != (pos{1, 2}) {
		t.Errorf("Get(a) = %v,%v", v, ok)
	}
	p, ok := m.GetMut(b)
	if !ok {
		t.Fatal("GetMut(b) failed")
	}
	p.X = 30
	if v, _ := m.Get(b); v.X != 30 {
		t.Errorf("mutation through GetMut lost: %v", v)
	}
	if m.Len() != 2 || m.IsEmpty() {
		t.Errorf("Len = %d, IsEmpty = %v", m.Len(), m.IsEmpty())
	}
}

func TestMapZeroHandleNeverLive(t *testing.T) {
	m := NewMap[int](0)
	m.Insert(1)
	if m.Contains(Handle[int]{}) {
		t.Error("zero handle reported live")
	}
	if m.Tag() != 1 {
		t.Errorf("Tag = %d, want 1", m.Tag())
	}
}

func TestMapStaleHandle(t *testing.T) {
	m := NewMap[string](1)
	h := m.Insert("x")
	if v, ok := m.Remove(h); !ok || v != "x" {
		t.Fatalf("Remove = %q,%v", v, ok)
	}
	if _, ok := m.Get(h); ok {
		t.Error("Get on removed handle succeeded")
	}
	if _, ok := m.Remove(h); ok {
		t.Error("second Remove succeeded")
	}

	h2 := m.Insert("y")
	if h2.Index() != h.Index() {
		t.Fatalf("slot not reused: %v vs %v", h2, h)
	}
	if h2.Generation() == h.Generation() {
		t.Fatalf("reused slot kept generation %d", h.Generation())
	}
	if _, ok := m.Get(h); ok {
		t.Error("stale handle resolved after slot reuse")
	}
	if v, ok := m.Get(h2); !ok || v != "y" {
		t.Errorf("Get(h2) = %q,%v", v, ok)
	}
	checkInvariants(t, m)
}

func TestMapTagMismatch(t *testing.T) {
	a := NewMap[int](1)
	b := NewMap[int](2)
	h := a.Insert(7)
	b.Insert(9)
	if b.Contains(h) {
		t.Error("handle from another map resolved")
	}
}

func TestMapSwapRemoveKeepsBackReferences(t *testing.T) {
	m := NewMap[int](1)
	var hs []Handle[int]
	for i := 0; i < 10; i++ {
		hs = append(hs, m.Insert(i))
	}
	for _, i := range []int{0, 5, 9, 3} {
		if _, ok := m.Remove(hs[i]); !ok {
			t.Fatalf("Remove(%d) failed", i)
		}
		checkInvariants(t, m)
	}
	for i, h := range hs {
		v, ok := m.Get(h)
		removed := i == 0 || i == 5 || i == 9 || i == 3
		if ok == removed {
			t.Errorf("handle %d live = %v, want %v", i, ok, !removed)
		}
		if ok && v != i {
			t.Errorf("handle %d value = %d", i, v)
		}
	}
	if len(m.Slice()) != 6 || len(m.Handles()) != 6 {
		t.Errorf("dense lengths = %d/%d, want 6", len(m.Slice()), len(m.Handles()))
	}
	for i, h := range m.Handles() {
		if v, _ := m.Get(h); v != m.Slice()[i] {
			t.Errorf("Handles()[%d] does not address Slice()[%d]", i, i)
		}
	}
}

func TestMapHandlesNeverCollide(t *testing.T) {
	m := NewMap[int](1)
	seen := map[Handle[int]]bool{}
	var live []Handle[int]
	for round := 0; round < 50; round++ {
		for i := 0; i < 4; i++ {
			h := m.Insert(round)
			if seen[h] {
				t.Fatalf("handle %v issued twice", h)
			}
			seen[h] = true
			live = append(live, h)
		}
		for len(live) > 2 {
			m.Remove(live[0])
			live = live[1:]
		}
	}
	checkInvariants(t, m)
}

func TestMapGenerationWrapRetiresSlot(t *testing.T) {
	m := NewMap[int](1)
	h := m.Insert(1)
	m.slots[h.index].generation = math.MaxUint32
	m.handles[m.slots[h.index].dataIndex].generation = math.MaxUint32
	h = Handle[int]{index: h.index, generation: math.MaxUint32, tag: h.tag}

	if _, ok := m.Remove(h); !ok {
		t.Fatal("Remove at max generation failed")
	}
	if m.slots[h.index].state != slotRetired {
		t.Fatalf("slot state = %d, want retired", m.slots[h.index].state)
	}
	h2 := m.Insert(2)
	if h2.Index() == h.Index() {
		t.Fatal("retired slot was reused")
	}
	checkInvariants(t, m)
}

func TestMapReservation(t *testing.T) {
	m := NewMap[int](1)
	r := m.Reserve()
	if m.Contains(r) {
		t.Error("reservation reported live")
	}
	if !m.Pending(r) {
		t.Error("reservation not pending")
	}
	if _, ok := m.Get(r); ok {
		t.Error("Get on pending reservation succeeded")
	}
	if _, ok := m.Remove(r); ok {
		t.Error("Remove on pending reservation succeeded")
	}
	if !m.Fulfill(r, 42) {
		t.Fatal("Fulfill failed")
	}
	if v, ok := m.Get(r); !ok || v != 42 {
		t.Errorf("Get after Fulfill = %d,%v", v, ok)
	}
	if m.Fulfill(r, 43) {
		t.Error("second Fulfill succeeded")
	}
	checkInvariants(t, m)
}

func TestMapReleasedReservationDecays(t *testing.T) {
	m := NewMap[int](1)
	r := m.Reserve()
	if !m.Release(r) {
		t.Fatal("Release failed")
	}
	if m.Fulfill(r, 1) {
		t.Error("Fulfill after Release succeeded")
	}
	if m.Pending(r) || m.Contains(r) {
		t.Error("released reservation still resolves")
	}
	h := m.Insert(5)
	if h.Index() != r.Index() || h.Generation() == r.Generation() {
		t.Errorf("reuse after release: %v vs %v", h, r)
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.Len())
	}
}

func TestRawRoundTrip(t *testing.T) {
	m := NewMap[int](4)
	h := m.Insert(1)
	if FromRaw[int](h.Raw()) != h {
		t.Error("FromRaw(Raw()) changed the handle")
	}
	if h.Raw().IsZero() || !(Raw{}).IsZero() {
		t.Error("Raw.IsZero wrong")
	}
}
