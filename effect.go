package pulse

import "slices"

// Effect is a reactive computation. It subscribes to every piece of
// observed state its function reads and re-runs when any of it changes.
// Dependencies are re-collected from scratch on each run, so conditional
// branches subscribe exactly to what the latest run read.
type ReactiveEffect struct {
	rt     *Runtime
	id     uint64
	fn     func()
	deps   []*subscriberSet
	active bool
	opts   effectOptions
	job    *Job
}

// effectOptions is the effect's capability record, resolved once at
// construction.
type effectOptions struct {
	lazy         bool
	deferred     bool
	allowRecurse bool
	scheduler    func(*ReactiveEffect)
	onTrack      func(TrackEvent)
	onTrigger    func(TriggerEvent)
	onStop       func()
}

// EffectOption configures an Effect at creation.
type EffectOption func(*effectOptions)

// Lazy prevents the initial run; the caller invokes Run when it wants the
// first evaluation.
func Lazy() EffectOption {
	return func(o *effectOptions) { o.lazy = true }
}

// AllowRecurse lets the effect be notified by mutations made during its
// own run. The default excludes a running effect from its own
// notification set.
func AllowRecurse() EffectOption {
	return func(o *effectOptions) { o.allowRecurse = true }
}

// WithScheduler routes the effect's re-runs through fn instead of running
// them inline on trigger.
func WithScheduler(fn func(*ReactiveEffect)) EffectOption {
	return func(o *effectOptions) { o.scheduler = fn }
}

// Deferred routes re-runs through the runtime's job queue, batching them
// into the next flush cycle.
func Deferred() EffectOption {
	return func(o *effectOptions) { o.deferred = true }
}

// OnTrack installs a debug hook fired when the effect subscribes to a new
// dependency.
func OnTrack(fn func(TrackEvent)) EffectOption {
	return func(o *effectOptions) { o.onTrack = fn }
}

// OnTrigger installs a debug hook fired when a mutation is about to
// notify the effect.
func OnTrigger(fn func(TriggerEvent)) EffectOption {
	return func(o *effectOptions) { o.onTrigger = fn }
}

// OnStop installs a disposal hook fired once when the effect is stopped.
func OnStop(fn func()) EffectOption {
	return func(o *effectOptions) { o.onStop = fn }
}

// TrackEvent describes a read observed by an effect.
type TrackEvent struct {
	Effect *ReactiveEffect
	Target any
	Op     TrackOp
	Key    any
}

// TriggerEvent describes a mutation about to notify an effect.
type TriggerEvent struct {
	Effect   *ReactiveEffect
	Target   any
	Op       TriggerOp
	Key      any
	NewValue any
	OldValue any
}

// Effect creates a reactive computation and, unless lazy, runs it once
// immediately. The returned effect can be re-run manually or stopped.
func (rt *Runtime) Effect(fn func(), opts ...EffectOption) *ReactiveEffect {
	var o effectOptions
	for _, opt := range opts {
		opt(&o)
	}

	rt.uid++
	e := &ReactiveEffect{rt: rt, id: rt.uid, fn: fn, active: true, opts: o}

	if e.opts.deferred && e.opts.scheduler == nil {
		e.opts.scheduler = func(e *ReactiveEffect) { rt.QueueJob(e.Job()) }
	}

	if !e.opts.lazy {
		e.Run()
	}
	return e
}

// ID returns the effect's creation-ordered id.
func (e *ReactiveEffect) ID() uint64 { return e.id }

// Active reports whether the effect has not been stopped.
func (e *ReactiveEffect) Active() bool { return e.active }

// Job returns the scheduler job that re-runs this effect, creating it on
// first use. The job carries the effect's id so flush ordering follows
// creation order.
func (e *ReactiveEffect) Job() *Job {
	if e.job == nil {
		e.job = &Job{
			ID:           e.id,
			AllowRecurse: e.opts.allowRecurse,
			Fn:           e.Run,
		}
	}
	return e.job
}

// Run executes the effect, re-collecting its dependencies. A stopped
// effect runs its raw function without tracking, unless it is
// schedule-driven, in which case the call is a no-op. An effect already
// on the run stack is not re-entered.
func (e *ReactiveEffect) Run() {
	if !e.active {
		if e.opts.scheduler != nil {
			return
		}
		e.fn()
		return
	}

	rt := e.rt
	if slices.Contains(rt.effectStack, e) {
		return
	}

	e.cleanup()

	rt.EnableTracking()
	rt.effectStack = append(rt.effectStack, e)
	rt.activeEffect = e

	defer func() {
		rt.effectStack = rt.effectStack[:len(rt.effectStack)-1]
		rt.ResetTracking()
		if n := len(rt.effectStack); n > 0 {
			rt.activeEffect = rt.effectStack[n-1]
		} else {
			rt.activeEffect = nil
		}
		rt.maybeScheduleFlush()
	}()

	e.fn()
}

// Stop removes the effect from every subscriber set and marks it
// inactive. Idempotent; the disposal hook fires once.
func (e *ReactiveEffect) Stop() {
	if !e.active {
		return
	}
	e.cleanup()
	if e.opts.onStop != nil {
		e.opts.onStop()
	}
	e.active = false
}

// cleanup unsubscribes the effect from everything it read on its previous
// run.
func (e *ReactiveEffect) cleanup() {
	for _, dep := range e.deps {
		dep.remove(e)
	}
	e.deps = e.deps[:0]
}
