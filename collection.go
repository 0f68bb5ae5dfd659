package pulse

import (
	"iter"
	"maps"
	"reflect"
)

// sameValue reports whether two stored values are identical, treating
// values of non-comparable types as always changed.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	if !reflect.TypeOf(a).Comparable() || !reflect.TypeOf(b).Comparable() {
		return false
	}
	return a == b
}

// Map is an observed associative collection. Every accessor reports its
// reads and writes to the runtime, so effects depend on exactly the keys
// and iteration forms they use.
type Map struct {
	rt      *Runtime
	entries map[any]any
}

// NewMap creates an observed map on the current goroutine's runtime.
func NewMap() *Map {
	return NewMapIn(GetRuntime())
}

// NewMapIn creates an observed map on an explicit runtime.
func NewMapIn(rt *Runtime) *Map {
	return &Map{rt: rt, entries: make(map[any]any)}
}

func (m *Map) TargetKind() TargetKind { return KindAssociative }

// Get returns the value for key, subscribing the running effect to it.
func (m *Map) Get(key any) (any, bool) {
	m.rt.Track(m, TrackGet, key)
	v, ok := m.entries[key]
	return v, ok
}

// Has reports whether key is present, subscribing the running effect.
func (m *Map) Has(key any) bool {
	m.rt.Track(m, TrackHas, key)
	_, ok := m.entries[key]
	return ok
}

// Set stores value under key. Adding a new key notifies iteration
// subscribers as well; replacing with an identical value notifies no one.
func (m *Map) Set(key, value any) {
	old, had := m.entries[key]
	m.entries[key] = value

	if !had {
		m.rt.Trigger(m, TriggerAdd, key, value, nil)
	} else if !sameValue(old, value) {
		m.rt.Trigger(m, TriggerSet, key, value, old)
	}
}

// Delete removes key, reporting whether it was present.
func (m *Map) Delete(key any) bool {
	old, had := m.entries[key]
	if !had {
		return false
	}
	delete(m.entries, key)
	m.rt.Trigger(m, TriggerDelete, key, nil, old)
	return true
}

// Clear removes every entry, notifying the subscribers of every key.
func (m *Map) Clear() {
	if len(m.entries) == 0 {
		return
	}
	old := maps.Clone(m.entries)
	m.entries = make(map[any]any)
	m.rt.Trigger(m, TriggerClear, nil, nil, old)
}

// Len returns the entry count as an iteration-shaped dependency.
func (m *Map) Len() int {
	m.rt.Track(m, TrackIterate, IterateKey)
	return len(m.entries)
}

// Keys iterates the keys. Key-only iteration subscribes to additions and
// deletions but not to value replacements.
func (m *Map) Keys() iter.Seq[any] {
	return func(yield func(any) bool) {
		m.rt.Track(m, TrackIterate, MapKeyIterateKey)
		for k := range m.entries {
			if !yield(k) {
				return
			}
		}
	}
}

// Entries iterates key/value pairs, subscribing to every shape change
// including value replacement.
func (m *Map) Entries() iter.Seq2[any, any] {
	return func(yield func(any, any) bool) {
		m.rt.Track(m, TrackIterate, IterateKey)
		for k, v := range m.entries {
			if !yield(k, v) {
				return
			}
		}
	}
}

// Values iterates the values with the same dependency shape as Entries.
func (m *Map) Values() iter.Seq[any] {
	return func(yield func(any) bool) {
		m.rt.Track(m, TrackIterate, IterateKey)
		for _, v := range m.entries {
			if !yield(v) {
				return
			}
		}
	}
}

// List is an observed sequence. Index reads subscribe per element, length
// reads subscribe to the length slot, and truncation notifies the
// subscribers of the elements cut off.
type List struct {
	rt    *Runtime
	items []any
}

// NewList creates an observed list on the current goroutine's runtime.
func NewList(items ...any) *List {
	return NewListIn(GetRuntime(), items...)
}

// NewListIn creates an observed list on an explicit runtime.
func NewListIn(rt *Runtime, items ...any) *List {
	return &List{rt: rt, items: items}
}

func (l *List) TargetKind() TargetKind { return KindSequence }

// Get returns the element at index i, subscribing the running effect to
// that index.
func (l *List) Get(i int) any {
	l.rt.Track(l, TrackGet, i)
	return l.items[i]
}

// Set replaces the element at index i. Setting one past the end appends.
func (l *List) Set(i int, v any) {
	if i == len(l.items) {
		l.Append(v)
		return
	}
	old := l.items[i]
	l.items[i] = v
	if !sameValue(old, v) {
		l.rt.Trigger(l, TriggerSet, i, v, old)
	}
}

// Append adds values at the end. The internal length read is part of the
// write, not a dependency of the caller, so tracking is suppressed
// around it.
func (l *List) Append(values ...any) {
	l.rt.PauseTracking()
	start := l.Len()
	l.rt.ResetTracking()

	for off, v := range values {
		l.items = append(l.items, v)
		l.rt.Trigger(l, TriggerAdd, start+off, v, nil)
	}
}

// Len returns the length, subscribing the running effect to it.
func (l *List) Len() int {
	l.rt.Track(l, TrackGet, LenKey)
	return len(l.items)
}

// SetLen resizes the list. Shrinking notifies the length subscribers and
// the subscribers of every truncated index; growing pads with nils.
func (l *List) SetLen(n int) {
	old := len(l.items)
	if n == old {
		return
	}
	if n < old {
		l.items = l.items[:n]
	} else {
		l.items = append(l.items, make([]any, n-old)...)
	}
	l.rt.Trigger(l, TriggerSet, LenKey, n, old)
}

// All iterates index/value pairs, subscribing to the length and every
// visited index.
func (l *List) All() iter.Seq2[int, any] {
	return func(yield func(int, any) bool) {
		l.rt.Track(l, TrackGet, LenKey)
		for i, v := range l.items {
			l.rt.Track(l, TrackGet, i)
			if !yield(i, v) {
				return
			}
		}
	}
}
