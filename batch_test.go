package pulse

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBatch(t *testing.T) {
	t.Run("batches multiple writes", func(t *testing.T) {
		log := []string{}

		count := NewSignal(0)

		Effect(func() {
			log = append(log, fmt.Sprintf("changed %d", count.Read()))
		}, Deferred())

		Batch(func() {
			count.Write(10)
			count.Write(20)
			log = append(log, "updated")
		})

		assert.Equal(t, []string{
			"changed 0",
			"updated",
			"changed 20",
		}, log)
	})

	t.Run("batches writes to multiple signals", func(t *testing.T) {
		log := []string{}

		count := NewSignal(0)
		double := NewSignal(0)

		Effect(func() {
			log = append(log, fmt.Sprintf("count %d", count.Read()))
		}, Deferred())

		Effect(func() {
			log = append(log, fmt.Sprintf("double %d", double.Read()))
		}, Deferred())

		Batch(func() {
			count.Write(10)
			double.Write(20)
			log = append(log, "updated")
		})

		assert.Equal(t, []string{
			"count 0",
			"double 0",
			"updated",
			"count 10",
			"double 20",
		}, log)
	})

	t.Run("nested batches flush once at the outermost", func(t *testing.T) {
		log := []string{}

		count := NewSignal(0)
		double := NewSignal(0)

		Effect(func() {
			log = append(log, fmt.Sprintf("changed %d %d", count.Read(), double.Read()))
		}, Deferred())

		Batch(func() {
			count.Write(1)
			Batch(func() {
				double.Write(2)
			})
			log = append(log, "inner done")
			count.Write(3)
		})

		assert.Equal(t, []string{
			"changed 0 0",
			"inner done",
			"changed 3 2",
		}, log)
	})
}
