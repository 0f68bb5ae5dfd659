package pulse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuntime(t *testing.T) {
	t.Run("runtimes are independent", func(t *testing.T) {
		rt1 := NewRuntime()
		rt2 := NewRuntime()

		s := NewSignalIn(rt1, 0)

		runs := 0
		rt2.Effect(func() {
			runs++
			s.Read()
		})

		// the read tracked against rt1, which had no active effect
		assert.Empty(t, rt1.targetMap)

		s.Write(1)
		assert.Equal(t, 1, runs)
	})

	t.Run("release target drops its subscriptions", func(t *testing.T) {
		rt := NewRuntime()
		s := NewSignalIn(rt, 0)

		runs := 0
		rt.Effect(func() {
			runs++
			s.Read()
		})

		rt.ReleaseTarget(s)
		s.Write(1)

		assert.Equal(t, 1, runs)
		assert.Empty(t, rt.targetMap)
	})

	t.Run("track outside an effect is a no-op", func(t *testing.T) {
		rt := NewRuntime()
		s := NewSignalIn(rt, 0)

		s.Read()
		assert.Empty(t, rt.targetMap)
	})

	t.Run("trigger on an untracked target is a no-op", func(t *testing.T) {
		rt := NewRuntime()
		assert.NotPanics(t, func() {
			rt.Trigger(&struct{}{}, TriggerSet, valueKey, 1, 0)
		})
	})
}
