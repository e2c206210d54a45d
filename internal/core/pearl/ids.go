package pearl

import "reflect"

// PearlID identifies a pearl type at runtime.
type PearlID struct{ t reflect.Type }

func PearlIDOf[P any]() PearlID { return PearlID{t: reflect.TypeOf((*P)(nil)).Elem()} }

func (id PearlID) String() string {
	if id.t == nil {
		return "<none>"
	}
	return id.t.String()
}

// EventID identifies an event type at runtime.
type EventID struct{ t reflect.Type }

func EventIDOf[E any]() EventID { return EventID{t: reflect.TypeOf((*E)(nil)).Elem()} }

func (id EventID) String() string {
	if id.t == nil {
		return "<none>"
	}
	return id.t.String()
}
