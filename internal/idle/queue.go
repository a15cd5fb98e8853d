// Package idle provides the idle-callback abstraction used for deferred
// cache work: adjacent-scale pre-generation and eviction sweeps.
//
// Tasks run only when the frame loop has spare time, never on the
// frame-critical path. A task's validity is checked when it executes, not
// when it is scheduled, so a task made stale by a later scale change is
// discarded for free.
package idle

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Task is a unit of deferred work.
type Task struct {
	// Name labels the task in debug logs.
	Name string

	// Valid reports whether the task is still worth running. It is
	// consulted at execution time; a nil Valid means always valid.
	Valid func() bool

	// Run performs the work.
	Run func()
}

// Queue is a FIFO of idle tasks drained by the frame loop during spare
// time. Queue is safe for concurrent use.
type Queue struct {
	mu    sync.Mutex
	tasks []Task
}

// NewQueue creates an empty idle queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push schedules a task. Scheduling is cheap; stale tasks cost one
// Valid check when the queue is drained.
func (q *Queue) Push(t Task) {
	if t.Run == nil {
		return
	}
	q.mu.Lock()
	q.tasks = append(q.tasks, t)
	q.mu.Unlock()
}

// Len returns the number of pending tasks, including ones that may prove
// stale when drained.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Drain runs pending tasks until the queue is empty or the time budget is
// spent, and returns the number of tasks executed. Tasks whose Valid
// check fails are dropped without running and do not count.
//
// The budget is checked between tasks; an individual task is never
// interrupted. A budget of 0 drains the whole queue.
func (q *Queue) Drain(clock clockwork.Clock, budget time.Duration) int {
	deadline := time.Time{}
	if budget > 0 {
		deadline = clock.Now().Add(budget)
	}

	ran := 0
	for {
		if !deadline.IsZero() && !clock.Now().Before(deadline) {
			return ran
		}

		task, ok := q.pop()
		if !ok {
			return ran
		}
		if task.Valid != nil && !task.Valid() {
			continue
		}
		task.Run()
		ran++
	}
}

// Clear discards all pending tasks.
func (q *Queue) Clear() {
	q.mu.Lock()
	q.tasks = nil
	q.mu.Unlock()
}

func (q *Queue) pop() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tasks) == 0 {
		return Task{}, false
	}
	t := q.tasks[0]
	q.tasks = q.tasks[1:]
	return t, true
}
