// Package pulse implements fine-grained reactive dependency tracking with
// deferred, ordered, deduplicated execution scheduling.
//
// Reads of observed state are reported with Track and writes with Trigger.
// Effects re-collect their dependencies on every run, so only the state a
// computation actually read last time can re-trigger it. Notified effects
// either run inline or are handed to the job scheduler, which drains its
// queues in one ordered pass per logical tick.
//
// A Runtime is confined to a single logical thread of execution: its graph,
// stacks and queues are mutated synchronously and are not safe for
// concurrent use. Package-level functions operate on a per-goroutine
// default runtime, so separate goroutines get separate, non-interfering
// runtimes.
package pulse

// Runtime owns one reactivity instance: the dependency graph, the tracking
// state and the job scheduler queues.
type Runtime struct {
	// dependency graph: target -> key -> subscribers
	targetMap map[any]keyToDeps

	// tracking state
	activeEffect *ReactiveEffect
	effectStack  []*ReactiveEffect
	shouldTrack  bool
	trackStack   []bool
	uid          uint64

	// main queue, nil marks an invalidated slot
	queue      []*Job
	flushIndex int

	isFlushing     bool
	isFlushPending bool

	pendingPreFlushCbs []*Job
	activePreFlushCbs  []*Job
	preFlushIndex      int
	preFlushParentJob  *Job

	pendingPostFlushCbs []*Job
	activePostFlushCbs  []*Job
	postFlushIndex      int

	afterFlushCbs []func()

	batchDepth int

	deferrer Deferrer
	onError  ErrorHandler
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithDeferrer replaces the runtime's deferred-execution primitive.
// Hosts that drive their own event loop can redirect flush scheduling
// onto it.
func WithDeferrer(d Deferrer) Option {
	return func(rt *Runtime) { rt.deferrer = d }
}

// WithErrorHandler installs the reporter invoked when a queued job panics.
// The flush continues regardless of what the handler does.
func WithErrorHandler(h ErrorHandler) Option {
	return func(rt *Runtime) { rt.onError = h }
}

// NewRuntime creates an independent reactivity runtime.
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{
		targetMap:   make(map[any]keyToDeps),
		shouldTrack: true,
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.deferrer == nil {
		rt.deferrer = &taskLoop{}
	}
	return rt
}
