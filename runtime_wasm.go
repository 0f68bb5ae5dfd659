//go:build wasm

package pulse

import "sync"

var once sync.Once
var globalRuntime *Runtime

// GetRuntime returns the single global runtime. Wasm builds run on one
// thread, so one runtime serves the whole program.
func GetRuntime() *Runtime {
	once.Do(func() {
		globalRuntime = NewRuntime()
	})

	return globalRuntime
}
