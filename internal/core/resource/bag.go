// Package resource holds type-keyed singletons shared by every pearl.
package resource

import "reflect"

// Bag stores at most one value per type. Values are boxed behind a pointer so
// GetMut can hand out a stable reference.
type Bag struct {
	items map[reflect.Type]any
}

func NewBag() *Bag {
	return &Bag{items: make(map[reflect.Type]any, 8)}
}

// Insert stores v, replacing (and dropping) any previous value of type T.
func Insert[T any](b *Bag, v T) {
	p := new(T)
	*p = v
	b.items[reflect.TypeOf((*T)(nil)).Elem()] = p
}

// Get returns a copy of the T resource.
func Get[T any](b *Bag) (T, bool) {
	if p, ok := GetMut[T](b); ok {
		return *p, true
	}
	var zero T
	return zero, false
}

// GetMut returns a pointer to the T resource. It stays valid until the
// resource is replaced or removed.
func GetMut[T any](b *Bag) (*T, bool) {
	v, ok := b.items[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		return nil, false
	}
	return v.(*T), true
}

func Has[T any](b *Bag) bool {
	_, ok := b.items[reflect.TypeOf((*T)(nil)).Elem()]
	return ok
}

func Remove[T any](b *Bag) (T, bool) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	v, ok := b.items[t]
	if !ok {
		var zero T
		return zero, false
	}
	delete(b.items, t)
	return *v.(*T), true
}

func (b *Bag) Len() int { return len(b.items) }
