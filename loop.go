package pulse

// Deferrer schedules work onto the runtime's logical thread. The scheduler
// hands it exactly one flush per pending batch.
type Deferrer interface {
	Defer(fn func())
}

// taskLoop is the default deferral primitive: a trampolined single-threaded
// task queue. Deferring from idle code drains the queue to quiescence
// before returning; deferring from inside a running task appends, so the
// new task runs after the current one completes.
type taskLoop struct {
	tasks   []func()
	running bool
}

func (l *taskLoop) Defer(fn func()) {
	l.tasks = append(l.tasks, fn)

	if l.running {
		return
	}
	l.running = true
	defer func() { l.running = false }()

	for len(l.tasks) > 0 {
		next := l.tasks[0]
		l.tasks = l.tasks[1:]
		next()
	}
}
