package pulse

// Package-level functions mirror the Runtime API on the current
// goroutine's default runtime.

// Effect creates a reactive computation on the default runtime.
func Effect(fn func(), opts ...EffectOption) *ReactiveEffect {
	return GetRuntime().Effect(fn, opts...)
}

// Stop disposes an effect. Equivalent to e.Stop.
func Stop(e *ReactiveEffect) {
	e.Stop()
}

// Track reports a read of (target, key) to the default runtime.
func Track(target any, op TrackOp, key any) {
	GetRuntime().Track(target, op, key)
}

// Trigger reports a mutation of target to the default runtime.
func Trigger(target any, op TriggerOp, key, newValue, oldValue any) {
	GetRuntime().Trigger(target, op, key, newValue, oldValue)
}

// ReleaseTarget drops target's subscription records from the default
// runtime.
func ReleaseTarget(target any) {
	GetRuntime().ReleaseTarget(target)
}

// PauseTracking suspends dependency collection on the default runtime.
func PauseTracking() {
	GetRuntime().PauseTracking()
}

// EnableTracking resumes dependency collection on the default runtime.
func EnableTracking() {
	GetRuntime().EnableTracking()
}

// ResetTracking restores the previous tracking state on the default
// runtime.
func ResetTracking() {
	GetRuntime().ResetTracking()
}

// Untrack runs fn with tracking paused and returns its result.
func Untrack[T any](fn func() T) T {
	rt := GetRuntime()
	rt.PauseTracking()
	defer rt.ResetTracking()
	return fn()
}

// Batch groups writes into a single flush cycle on the default runtime.
func Batch(fn func()) {
	GetRuntime().Batch(fn)
}

// QueueJob enqueues a job on the default runtime.
func QueueJob(job *Job) {
	GetRuntime().QueueJob(job)
}

// InvalidateJob cancels a pending job on the default runtime.
func InvalidateJob(job *Job) {
	GetRuntime().InvalidateJob(job)
}

// QueuePreFlushCb enqueues pre-flush callbacks on the default runtime.
func QueuePreFlushCb(cbs ...*Job) {
	GetRuntime().QueuePreFlushCb(cbs...)
}

// QueuePostFlushCb enqueues post-flush callbacks on the default runtime.
func QueuePostFlushCb(cbs ...*Job) {
	GetRuntime().QueuePostFlushCb(cbs...)
}

// NextTick resolves after the default runtime's pending flush completes.
func NextTick(fn func()) <-chan struct{} {
	return GetRuntime().NextTick(fn)
}
