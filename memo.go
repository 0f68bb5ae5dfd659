package pulse

// Memo is a lazily cached derived value. The computation runs only when
// the cached value is read while stale; a dependency change marks it dirty
// and notifies the memo's own readers instead of recomputing eagerly.
type Memo[T comparable] struct {
	rt     *Runtime
	runner *ReactiveEffect
	value  T
	dirty  bool
}

// NewMemo creates a memo on the current goroutine's runtime.
func NewMemo[T comparable](compute func() T) *Memo[T] {
	return NewMemoIn(GetRuntime(), compute)
}

// NewMemoIn creates a memo on an explicit runtime.
func NewMemoIn[T comparable](rt *Runtime, compute func() T) *Memo[T] {
	m := &Memo[T]{rt: rt, dirty: true}
	m.runner = rt.Effect(
		func() { m.value = compute() },
		Lazy(),
		WithScheduler(func(*ReactiveEffect) {
			if !m.dirty {
				m.dirty = true
				rt.Trigger(m, TriggerSet, valueKey, nil, nil)
			}
		}),
	)
	return m
}

// Read returns the cached value, recomputing it first when stale, and
// subscribes the running effect to the memo.
func (m *Memo[T]) Read() T {
	if m.dirty {
		m.runner.Run()
		m.dirty = false
	}
	m.rt.Track(m, TrackGet, valueKey)
	return m.value
}

// Stop detaches the memo from its dependencies. A stopped memo keeps
// serving its last cached value.
func (m *Memo[T]) Stop() {
	m.runner.Stop()
	m.rt.ReleaseTarget(m)
}
