//go:build !wasm

package pulse

import (
	"sync"

	"github.com/petermattis/goid"
)

var runtimes sync.Map

// GetRuntime returns the default runtime of the current goroutine,
// creating it on first use.
func GetRuntime() *Runtime {
	gid := goid.Get()

	if rt, ok := runtimes.Load(gid); ok {
		return rt.(*Runtime)
	}

	rt := NewRuntime()
	runtimes.Store(gid, rt)
	return rt
}
