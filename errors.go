package pulse

import (
	"fmt"
	"os"
)

// ErrorSite tags where a recovered panic came from.
type ErrorSite uint8

const (
	SiteSchedulerFlush ErrorSite = iota + 1
	SiteNextTick
)

func (s ErrorSite) String() string {
	switch s {
	case SiteSchedulerFlush:
		return "scheduler flush"
	case SiteNextTick:
		return "next tick callback"
	}
	return "unknown"
}

// ErrorHandler receives panics recovered from queued work. job is nil for
// next-tick callbacks.
type ErrorHandler func(err any, job *Job, site ErrorSite)

// callWithErrorHandling isolates one unit of queued work: a panic is
// recovered and reported, and sibling work in the same cycle still runs.
func (rt *Runtime) callWithErrorHandling(fn func(), job *Job, site ErrorSite) {
	defer func() {
		if r := recover(); r != nil {
			rt.handleError(r, job, site)
		}
	}()
	fn()
}

func (rt *Runtime) handleError(err any, job *Job, site ErrorSite) {
	if rt.onError != nil {
		rt.onError(err, job, site)
		return
	}
	fmt.Fprintf(os.Stderr, "pulse: recovered panic during %s: %v\n", site, err)
}
