package runtime

import "sync"

// CancelFunc revokes a deferred task. It is safe to call after the task ran.
type CancelFunc func()

// Scheduler decides when deferred work (the first post-start emission) runs.
type Scheduler interface {
	Defer(task func()) CancelFunc
}

// Immediate runs deferred tasks inline.
type Immediate struct{}

// Defer runs task before returning.
func (Immediate) Defer(task func()) CancelFunc {
	task()
	return func() {}
}

// TurnQueue defers tasks to the next turn of the host's loop.
// The host calls Drain once observers are registered (emit-after-subscribe).
type TurnQueue struct {
	mu    sync.Mutex
	tasks []*queuedTask
}

type queuedTask struct {
	run      func()
	canceled bool
}

// NewTurnQueue creates an empty queue.
func NewTurnQueue() *TurnQueue {
	return &TurnQueue{}
}

// Defer enqueues task for the next Drain.
func (q *TurnQueue) Defer(task func()) CancelFunc {
	qt := &queuedTask{run: task}

	q.mu.Lock()
	q.tasks = append(q.tasks, qt)
	q.mu.Unlock()

	return func() {
		q.mu.Lock()
		qt.canceled = true
		q.mu.Unlock()
	}
}

// Pending returns the number of tasks waiting for the next turn, canceled ones included.
func (q *TurnQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Drain runs every task queued before the call. Tasks deferred while draining wait
// for the following turn. It returns the number of tasks executed.
func (q *TurnQueue) Drain() int {
	q.mu.Lock()
	batch := q.tasks
	q.tasks = nil
	q.mu.Unlock()

	ran := 0
	for _, t := range batch {
		q.mu.Lock()
		canceled := t.canceled
		q.mu.Unlock()
		if canceled {
			continue
		}
		t.run()
		ran++
	}
	return ran
}
