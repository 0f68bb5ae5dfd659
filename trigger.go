package pulse

import (
	"cmp"
	"slices"
)

// TriggerOp describes the kind of mutation being reported.
type TriggerOp uint8

const (
	TriggerSet TriggerOp = iota
	TriggerAdd
	TriggerDelete
	TriggerClear
)

func (op TriggerOp) String() string {
	switch op {
	case TriggerSet:
		return "set"
	case TriggerAdd:
		return "add"
	case TriggerDelete:
		return "delete"
	case TriggerClear:
		return "clear"
	}
	return "unknown"
}

// Trigger notifies the effects subscribed to a mutation of target. The
// notification set is computed in full before anything runs, so effects
// subscribed under several matched keys run once and subscriber sets can
// change freely underneath. The currently running effect is excluded
// unless it allows recursion.
//
// newValue carries the new length for a sequence length change. oldValue
// only feeds the on-trigger debug hook; a collection clear passes the
// pre-clear snapshot there.
func (rt *Runtime) Trigger(target any, op TriggerOp, key, newValue, oldValue any) {
	depsMap := rt.targetMap[target]
	if depsMap == nil {
		// never been tracked
		return
	}

	var run []*ReactiveEffect
	add := func(dep *subscriberSet) {
		if dep == nil {
			return
		}
		for _, e := range dep.effects {
			if e == rt.activeEffect && !e.opts.allowRecurse {
				continue
			}
			if !slices.Contains(run, e) {
				run = append(run, e)
			}
		}
	}

	kind := kindOf(target)

	switch {
	case op == TriggerClear:
		// every key's subscribers are affected
		for _, dep := range depsMap {
			add(dep)
		}

	case op == TriggerSet && key == LenKey && kind == KindSequence:
		newLen, _ := newValue.(int)
		for k, dep := range depsMap {
			if k == LenKey {
				add(dep)
				continue
			}
			if idx, ok := k.(int); ok && idx >= newLen {
				// element truncated away
				add(dep)
			}
		}

	default:
		if key != nil {
			add(depsMap[key])
		}

		switch op {
		case TriggerAdd:
			if kind != KindSequence {
				add(depsMap[IterateKey])
				if kind == KindAssociative {
					add(depsMap[MapKeyIterateKey])
				}
			} else if _, ok := key.(int); ok {
				// new index changes the sequence length
				add(depsMap[LenKey])
			}
		case TriggerDelete:
			if kind != KindSequence {
				add(depsMap[IterateKey])
				if kind == KindAssociative {
					add(depsMap[MapKeyIterateKey])
				}
			}
		case TriggerSet:
			if kind == KindAssociative {
				// value-exposing iteration forms observe replacements
				add(depsMap[IterateKey])
			}
		}
	}

	slices.SortFunc(run, func(a, b *ReactiveEffect) int {
		return cmp.Compare(a.id, b.id)
	})

	for _, e := range run {
		if e.opts.onTrigger != nil {
			e.opts.onTrigger(TriggerEvent{
				Effect:   e,
				Target:   target,
				Op:       op,
				Key:      key,
				NewValue: newValue,
				OldValue: oldValue,
			})
		}
		if e.opts.scheduler != nil {
			e.opts.scheduler(e)
		} else {
			e.Run()
		}
	}
}
