package handle

import "fmt"

// Raw is the untyped form of a Handle. Erased storage and the command queue
// carry Raw values; the Tag keeps handles of different maps apart.
type Raw struct {
	Index      uint32
	Generation uint32
	Tag        uint16
}

func (r Raw) IsZero() bool { return r == Raw{} }

func (r Raw) String() string {
	return fmt.Sprintf("%d:%d@%d", r.Index, r.Generation, r.Tag)
}

// Handle addresses one slot of a Map[T]. It is a plain value with no
// ownership; the generation invalidates it once the slot is freed.
// Generations and tags start at 1, so the zero Handle is never live.
type Handle[T any] struct {
	index      uint32
	generation uint32
	tag        uint16
}

// FromRaw retypes a raw handle. No check is made that r came from a Map[T].
func FromRaw[T any](r Raw) Handle[T] {
	return Handle[T]{index: r.Index, generation: r.Generation, tag: r.Tag}
}

func (h Handle[T]) Index() uint32      { return h.index }
func (h Handle[T]) Generation() uint32 { return h.generation }
func (h Handle[T]) Tag() uint16        { return h.tag }
func (h Handle[T]) IsZero() bool       { return h == Handle[T]{} }

func (h Handle[T]) Raw() Raw {
	return Raw{Index: h.index, Generation: h.generation, Tag: h.tag}
}

func (h Handle[T]) String() string { return h.Raw().String() }
