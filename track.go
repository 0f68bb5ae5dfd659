package pulse

import "slices"

// TrackOp describes the kind of read being tracked.
type TrackOp uint8

const (
	TrackGet TrackOp = iota
	TrackHas
	TrackIterate
)

func (op TrackOp) String() string {
	switch op {
	case TrackGet:
		return "get"
	case TrackHas:
		return "has"
	case TrackIterate:
		return "iterate"
	}
	return "unknown"
}

// Reserved keys for collection-shape-sensitive dependencies. IterateKey
// stands for whole-target iteration, MapKeyIterateKey for key-only
// iteration of associative targets, and LenKey is the length slot of
// sequences.
type pseudoKey string

const (
	IterateKey       pseudoKey = "iterate"
	MapKeyIterateKey pseudoKey = "map key iterate"
	LenKey           pseudoKey = "len"
)

// TargetKind classifies an observed target's enumeration shape.
type TargetKind uint8

const (
	KindPlain TargetKind = iota
	KindSequence
	KindAssociative
)

// Shaped is implemented by observed collections whose shape matters for
// dependency resolution. Targets without it are treated as plain.
type Shaped interface {
	TargetKind() TargetKind
}

func kindOf(target any) TargetKind {
	if s, ok := target.(Shaped); ok {
		return s.TargetKind()
	}
	return KindPlain
}

// subscriberSet holds the effects subscribed to one (target, key) pair.
// Membership is unique; a slice keeps notification order stable.
type subscriberSet struct {
	effects []*ReactiveEffect
}

func (s *subscriberSet) add(e *ReactiveEffect) bool {
	if slices.Contains(s.effects, e) {
		return false
	}
	s.effects = append(s.effects, e)
	return true
}

func (s *subscriberSet) remove(e *ReactiveEffect) {
	if i := slices.Index(s.effects, e); i != -1 {
		s.effects = slices.Delete(s.effects, i, i+1)
	}
}

type keyToDeps map[any]*subscriberSet

// Track subscribes the currently running effect to (target, key). It is a
// no-op when tracking is disabled or no effect is running, so stray reads
// outside reactive scopes are harmless.
func (rt *Runtime) Track(target any, op TrackOp, key any) {
	if !rt.shouldTrack || rt.activeEffect == nil {
		return
	}

	depsMap := rt.targetMap[target]
	if depsMap == nil {
		depsMap = make(keyToDeps)
		rt.targetMap[target] = depsMap
	}
	dep := depsMap[key]
	if dep == nil {
		dep = &subscriberSet{}
		depsMap[key] = dep
	}

	e := rt.activeEffect
	if dep.add(e) {
		e.deps = append(e.deps, dep)
		if e.opts.onTrack != nil {
			e.opts.onTrack(TrackEvent{Effect: e, Target: target, Op: op, Key: key})
		}
	}
}

// ReleaseTarget drops every subscription record for target. Observed
// values are held by ordinary map references, so a target that is done
// being observed must be released explicitly for the graph to let go
// of it.
func (rt *Runtime) ReleaseTarget(target any) {
	delete(rt.targetMap, target)
}

// PauseTracking disables dependency collection until the matching
// ResetTracking. Composite read-modify operations use it so their internal
// reads don't register spurious self-dependencies.
func (rt *Runtime) PauseTracking() {
	rt.trackStack = append(rt.trackStack, rt.shouldTrack)
	rt.shouldTrack = false
}

// EnableTracking enables dependency collection until the matching
// ResetTracking.
func (rt *Runtime) EnableTracking() {
	rt.trackStack = append(rt.trackStack, rt.shouldTrack)
	rt.shouldTrack = true
}

// ResetTracking restores the tracking state saved by the last
// PauseTracking or EnableTracking.
func (rt *Runtime) ResetTracking() {
	if n := len(rt.trackStack); n > 0 {
		rt.shouldTrack = rt.trackStack[n-1]
		rt.trackStack = rt.trackStack[:n-1]
	} else {
		rt.shouldTrack = true
	}
}

// Untracked runs fn with tracking paused.
func (rt *Runtime) Untracked(fn func()) {
	rt.PauseTracking()
	defer rt.ResetTracking()
	fn()
}
