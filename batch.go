package pulse

// Batch groups the writes made inside fn into a single flush cycle: flush
// scheduling is held until the outermost batch completes. Batches nest;
// each nested call increases the depth by 1.
func (rt *Runtime) Batch(fn func()) {
	rt.batchDepth++
	defer func() {
		rt.batchDepth--
		rt.maybeScheduleFlush()
	}()

	fn()
}
