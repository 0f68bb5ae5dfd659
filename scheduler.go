package pulse

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

// recursionLimit bounds how many times one job identity may run within a
// single flush cycle before the cycle is failed as a runaway update.
const recursionLimit = 100

// Job is a schedulable unit of deferred work. Identity is the pointer:
// queue dedup and the recursion guard both key on it. ID orders execution
// within a flush; 0 means no id, which sorts last.
type Job struct {
	ID           uint64
	AllowRecurse bool
	Fn           func()
}

func jobID(j *Job) uint64 {
	if j == nil || j.ID == 0 {
		return math.MaxUint64
	}
	return j.ID
}

func compareJobs(a, b *Job) int {
	return cmp.Compare(jobID(a), jobID(b))
}

// jobPending reports whether job occupies the queue at or past start.
func jobPending(q []*Job, start int, job *Job) bool {
	if start < 0 {
		start = 0
	}
	if start >= len(q) {
		return false
	}
	return slices.Contains(q[start:], job)
}

func dedupJobs(cbs []*Job) []*Job {
	seen := make(map[*Job]struct{}, len(cbs))
	out := make([]*Job, 0, len(cbs))
	for _, cb := range cbs {
		if _, ok := seen[cb]; !ok {
			seen[cb] = struct{}{}
			out = append(out, cb)
		}
	}
	return out
}

// QueueJob enqueues job for the next flush cycle unless it is already
// pending in the unexecuted remainder of the main queue. During a flush, a
// job that allows recursion may re-enqueue itself behind the in-flight
// cursor. The job driving the current pre-flush phase may not re-enqueue
// itself at all.
func (rt *Runtime) QueueJob(job *Job) {
	start := rt.flushIndex
	if rt.isFlushing && job.AllowRecurse {
		start++
	}
	if job != rt.preFlushParentJob && !jobPending(rt.queue, start, job) {
		rt.queue = append(rt.queue, job)
	}
	rt.queueFlush()
}

// InvalidateJob cancels a still-pending job by blanking its slot, keeping
// the queue index-stable for any in-flight cursor. A job already executed
// this cycle, or currently executing, is left alone.
func (rt *Runtime) InvalidateJob(job *Job) {
	i := slices.Index(rt.queue, job)
	if i == -1 {
		return
	}
	if !rt.isFlushing || i > rt.flushIndex {
		rt.queue[i] = nil
	}
}

// QueuePreFlushCb enqueues callbacks to run before the next main-queue
// drain. A single callback is dedup-checked against the in-flight
// snapshot; a pre-grouped batch is appended as-is, the caller guarantees
// uniqueness.
func (rt *Runtime) QueuePreFlushCb(cbs ...*Job) {
	rt.queueCb(cbs, &rt.pendingPreFlushCbs, rt.activePreFlushCbs, rt.preFlushIndex)
}

// QueuePostFlushCb enqueues callbacks to run after the main queue drains,
// with the same dedup rule as QueuePreFlushCb.
func (rt *Runtime) QueuePostFlushCb(cbs ...*Job) {
	rt.queueCb(cbs, &rt.pendingPostFlushCbs, rt.activePostFlushCbs, rt.postFlushIndex)
}

func (rt *Runtime) queueCb(cbs []*Job, pending *[]*Job, active []*Job, index int) {
	if len(cbs) == 0 {
		return
	}
	if len(cbs) == 1 {
		cb := cbs[0]
		start := index
		if cb.AllowRecurse {
			start++
		}
		if !jobPending(active, start, cb) {
			*pending = append(*pending, cb)
		}
	} else {
		*pending = append(*pending, cbs...)
	}
	rt.queueFlush()
}

// queueFlush schedules one flush for everything queued so far. Requests
// made while a flush is pending or running coalesce into that cycle.
func (rt *Runtime) queueFlush() {
	if rt.isFlushing || rt.isFlushPending {
		return
	}
	rt.isFlushPending = true
	rt.maybeScheduleFlush()
}

// maybeScheduleFlush hands the pending flush to the deferral primitive.
// An open batch or a still-running effect holds the hand-off until its
// outermost scope completes, so the flush never re-enters the execution
// that scheduled it.
func (rt *Runtime) maybeScheduleFlush() {
	if rt.isFlushPending && !rt.isFlushing && rt.batchDepth == 0 && len(rt.effectStack) == 0 {
		rt.deferrer.Defer(rt.flushJobs)
	}
}

// FlushPreFlushCbs drains the pre-flush queue outside a regular cycle.
// Host integrations drive it with the job whose execution the callbacks
// precede; that job is barred from re-enqueueing itself while it owns the
// drain.
func (rt *Runtime) FlushPreFlushCbs(parentJob *Job) {
	rt.flushPreFlushCbs(make(map[*Job]int), parentJob)
}

func (rt *Runtime) flushPreFlushCbs(seen map[*Job]int, parentJob *Job) {
	// callbacks may queue more pre-flush work; drain until empty
	for len(rt.pendingPreFlushCbs) > 0 {
		rt.preFlushParentJob = parentJob
		rt.activePreFlushCbs = dedupJobs(rt.pendingPreFlushCbs)
		rt.pendingPreFlushCbs = nil

		for rt.preFlushIndex = 0; rt.preFlushIndex < len(rt.activePreFlushCbs); rt.preFlushIndex++ {
			cb := rt.activePreFlushCbs[rt.preFlushIndex]
			rt.checkRecursiveUpdates(seen, cb)
			cb.Fn()
		}

		rt.activePreFlushCbs = nil
		rt.preFlushIndex = 0
		rt.preFlushParentJob = nil
	}
}

// FlushPostFlushCbs drains the post-flush queue outside a regular cycle.
// Called from within an active drain it appends to it instead of nesting.
func (rt *Runtime) FlushPostFlushCbs() {
	rt.flushPostFlushCbs(make(map[*Job]int))
}

func (rt *Runtime) flushPostFlushCbs(seen map[*Job]int) {
	if len(rt.pendingPostFlushCbs) == 0 {
		return
	}
	deduped := dedupJobs(rt.pendingPostFlushCbs)
	rt.pendingPostFlushCbs = nil

	// a drain is already running: hand it the new entries instead of
	// nesting
	if rt.activePostFlushCbs != nil {
		rt.activePostFlushCbs = append(rt.activePostFlushCbs, deduped...)
		return
	}

	rt.activePostFlushCbs = deduped
	slices.SortStableFunc(rt.activePostFlushCbs, compareJobs)

	for rt.postFlushIndex = 0; rt.postFlushIndex < len(rt.activePostFlushCbs); rt.postFlushIndex++ {
		cb := rt.activePostFlushCbs[rt.postFlushIndex]
		rt.checkRecursiveUpdates(seen, cb)
		cb.Fn()
	}

	rt.activePostFlushCbs = nil
	rt.postFlushIndex = 0
}

// flushJobs runs one flush cycle: pre-flush callbacks, the main queue in
// id order, post-flush callbacks, repeating synchronously until quiescent.
// The recursion counter spans the whole cycle including its synchronous
// repeats.
func (rt *Runtime) flushJobs() {
	rt.runCycle()

	// next-tick callbacks run with the cycle fully unwound, so work they
	// queue schedules a fresh flush. A fatally failed cycle leaves them
	// queued for the next one.
	rt.runAfterFlush()
}

func (rt *Runtime) runCycle() {
	rt.isFlushPending = false
	rt.isFlushing = true
	seen := make(map[*Job]int)

	// reset cycle state even when the recursion guard panics out, so
	// later cycles start clean
	defer func() {
		rt.flushIndex = 0
		rt.queue = rt.queue[:0]
		rt.activePreFlushCbs = nil
		rt.preFlushIndex = 0
		rt.preFlushParentJob = nil
		rt.activePostFlushCbs = nil
		rt.postFlushIndex = 0
		rt.isFlushing = false
	}()

	for {
		rt.flushPreFlushCbs(seen, nil)

		// non-decreasing id order: parents (created first) run before
		// children, and a parent's run may invalidate a child's job
		slices.SortStableFunc(rt.queue, compareJobs)

		for rt.flushIndex = 0; rt.flushIndex < len(rt.queue); rt.flushIndex++ {
			job := rt.queue[rt.flushIndex]
			if job == nil {
				continue
			}
			rt.checkRecursiveUpdates(seen, job)
			rt.callWithErrorHandling(job.Fn, job, SiteSchedulerFlush)
		}
		rt.flushIndex = 0
		rt.queue = rt.queue[:0]

		rt.flushPostFlushCbs(seen)

		if len(rt.queue) == 0 && len(rt.pendingPostFlushCbs) == 0 {
			break
		}
	}
}

// NextTick returns a channel that closes once the flush cycle pending or
// active right now has completed, or on the next turn of the deferral
// primitive if none is pending. fn, when non-nil, runs at that point and
// observes fully drained queues.
func (rt *Runtime) NextTick(fn func()) <-chan struct{} {
	done := make(chan struct{})
	run := func() {
		if fn != nil {
			rt.callWithErrorHandling(fn, nil, SiteNextTick)
		}
		close(done)
	}

	if rt.isFlushing || rt.isFlushPending {
		rt.afterFlushCbs = append(rt.afterFlushCbs, run)
	} else {
		rt.deferrer.Defer(run)
	}
	return done
}

func (rt *Runtime) runAfterFlush() {
	cbs := rt.afterFlushCbs
	rt.afterFlushCbs = nil
	for _, cb := range cbs {
		cb()
	}
}

func (rt *Runtime) checkRecursiveUpdates(seen map[*Job]int, job *Job) {
	count := seen[job]
	if count > recursionLimit {
		panic(fmt.Sprintf(
			"pulse: maximum recursive updates exceeded (%d in one flush cycle); a reactive update is re-triggering itself without settling",
			recursionLimit,
		))
	}
	seen[job] = count + 1
}
