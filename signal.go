package pulse

// valueKey is the slot under which single-value observables subscribe
// their readers.
const valueKey = "value"

// Signal is a single observed value built on Track/Trigger. Reads inside
// an effect subscribe it; writes of a different value notify subscribers.
type Signal[T comparable] struct {
	rt    *Runtime
	value T
}

// NewSignal creates a signal on the current goroutine's runtime.
func NewSignal[T comparable](initial T) *Signal[T] {
	return NewSignalIn(GetRuntime(), initial)
}

// NewSignalIn creates a signal on an explicit runtime.
func NewSignalIn[T comparable](rt *Runtime, initial T) *Signal[T] {
	return &Signal[T]{rt: rt, value: initial}
}

// Read returns the value, subscribing the running effect.
func (s *Signal[T]) Read() T {
	s.rt.Track(s, TrackGet, valueKey)
	return s.value
}

// Write replaces the value and notifies subscribers. Writing an equal
// value is a no-op.
func (s *Signal[T]) Write(v T) {
	if v == s.value {
		return
	}
	old := s.value
	s.value = v
	s.rt.Trigger(s, TriggerSet, valueKey, v, old)
}

// Peek returns the value without subscribing.
func (s *Signal[T]) Peek() T {
	return s.value
}
