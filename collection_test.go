package pulse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap(t *testing.T) {
	t.Run("per-key dependencies", func(t *testing.T) {
		rt := NewRuntime()
		m := NewMapIn(rt)
		m.Set("a", 1)

		runs := 0
		var got any
		rt.Effect(func() {
			runs++
			got, _ = m.Get("a")
		})

		m.Set("a", 2)
		assert.Equal(t, 2, runs)
		assert.Equal(t, 2, got)

		// replacing with the same value changes nothing
		m.Set("a", 2)
		assert.Equal(t, 2, runs)

		// an unrelated key changes nothing
		m.Set("b", 1)
		assert.Equal(t, 2, runs)
	})

	t.Run("has tracks presence", func(t *testing.T) {
		rt := NewRuntime()
		m := NewMapIn(rt)

		runs := 0
		present := false
		rt.Effect(func() {
			runs++
			present = m.Has("x")
		})
		assert.False(t, present)

		m.Set("x", 1)
		assert.Equal(t, 2, runs)
		assert.True(t, present)

		m.Delete("x")
		assert.Equal(t, 3, runs)
		assert.False(t, present)
	})

	t.Run("len sees additions, deletions and replacements", func(t *testing.T) {
		rt := NewRuntime()
		m := NewMapIn(rt)

		runs := 0
		rt.Effect(func() {
			runs++
			m.Len()
		})

		m.Set("x", 1)
		assert.Equal(t, 2, runs)

		m.Set("x", 2)
		assert.Equal(t, 3, runs)

		m.Delete("x")
		assert.Equal(t, 4, runs)
	})

	t.Run("key iteration ignores value replacement", func(t *testing.T) {
		rt := NewRuntime()
		m := NewMapIn(rt)

		runs := 0
		keys := 0
		rt.Effect(func() {
			runs++
			keys = 0
			for range m.Keys() {
				keys++
			}
		})

		m.Set("x", 1)
		assert.Equal(t, 2, runs)
		assert.Equal(t, 1, keys)

		m.Set("x", 2)
		assert.Equal(t, 2, runs)

		m.Delete("x")
		assert.Equal(t, 3, runs)
		assert.Equal(t, 0, keys)
	})

	t.Run("entries see value replacement", func(t *testing.T) {
		rt := NewRuntime()
		m := NewMapIn(rt)
		m.Set("x", 1)

		var snapshot map[any]any
		rt.Effect(func() {
			snapshot = make(map[any]any)
			for k, v := range m.Entries() {
				snapshot[k] = v
			}
		})
		assert.Equal(t, map[any]any{"x": 1}, snapshot)

		m.Set("x", 2)
		assert.Equal(t, map[any]any{"x": 2}, snapshot)
	})

	t.Run("clear notifies every subscriber", func(t *testing.T) {
		rt := NewRuntime()
		m := NewMapIn(rt)
		m.Set("a", 1)

		keyRuns := 0
		lenRuns := 0
		rt.Effect(func() {
			keyRuns++
			m.Get("a")
		})
		rt.Effect(func() {
			lenRuns++
			m.Len()
		})

		m.Clear()
		assert.Equal(t, 2, keyRuns)
		assert.Equal(t, 2, lenRuns)

		// clearing an empty map is a no-op
		m.Clear()
		assert.Equal(t, 2, keyRuns)
	})
}

func TestList(t *testing.T) {
	t.Run("index and length are independent dependencies", func(t *testing.T) {
		rt := NewRuntime()
		l := NewListIn(rt, "a", "b")

		idxRuns := 0
		lenRuns := 0
		rt.Effect(func() {
			idxRuns++
			l.Get(0)
		})
		rt.Effect(func() {
			lenRuns++
			l.Len()
		})

		l.Set(0, "z")
		assert.Equal(t, 2, idxRuns)
		assert.Equal(t, 1, lenRuns)

		l.Append("c")
		assert.Equal(t, 2, idxRuns)
		assert.Equal(t, 2, lenRuns)
	})

	t.Run("truncation notifies the cut-off indexes", func(t *testing.T) {
		rt := NewRuntime()
		l := NewListIn(rt, "a", "b", "c", "d", "e")

		runs0 := 0
		rt.Effect(func() {
			runs0++
			l.Get(0)
		})

		runs3 := 0
		first3 := true
		rt.Effect(func() {
			runs3++
			if first3 {
				first3 = false
				l.Get(3)
			}
		})

		runs4 := 0
		first4 := true
		rt.Effect(func() {
			runs4++
			if first4 {
				first4 = false
				l.Get(4)
			}
		})

		lenRuns := 0
		rt.Effect(func() {
			lenRuns++
			l.Len()
		})

		l.SetLen(2)
		assert.Equal(t, 1, runs0)
		assert.Equal(t, 2, runs3)
		assert.Equal(t, 2, runs4)
		assert.Equal(t, 2, lenRuns)

		// growing touches only the length
		l.SetLen(8)
		assert.Equal(t, 1, runs0)
		assert.Equal(t, 2, runs3)
		assert.Equal(t, 3, lenRuns)
	})

	t.Run("set one past the end appends", func(t *testing.T) {
		rt := NewRuntime()
		l := NewListIn(rt, "a")

		lenRuns := 0
		rt.Effect(func() {
			lenRuns++
			l.Len()
		})

		l.Set(1, "b")
		assert.Equal(t, 2, lenRuns)
		assert.Len(t, l.items, 2)
	})

	t.Run("append inside an effect does not self-subscribe", func(t *testing.T) {
		rt := NewRuntime()
		l := NewListIn(rt)

		runs := 0
		rt.Effect(func() {
			runs++
			l.Append("from effect")
		})
		assert.Equal(t, 1, runs)

		l.Append("external")
		assert.Equal(t, 1, runs)
		assert.Len(t, l.items, 2)
	})

	t.Run("full iteration follows elements and length", func(t *testing.T) {
		rt := NewRuntime()
		l := NewListIn(rt, "a", "b")

		var collected []any
		rt.Effect(func() {
			collected = nil
			for _, v := range l.All() {
				collected = append(collected, v)
			}
		})
		assert.Equal(t, []any{"a", "b"}, collected)

		l.Set(1, "B")
		assert.Equal(t, []any{"a", "B"}, collected)

		l.Append("c")
		assert.Equal(t, []any{"a", "B", "c"}, collected)
	})
}
