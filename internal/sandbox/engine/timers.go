package engine

import (
	"time"

	"github.com/dop251/goja"
)

// minInterval keeps a zero-delay setInterval from turning the drain loop
// into a hot spin.
const minInterval = 4 * time.Millisecond

// clampDelay converts a requested delay in milliseconds to a duration,
// clamping negatives to zero and anything above max down to max.
func clampDelay(ms int64, max time.Duration) time.Duration {
	if ms < 0 {
		ms = 0
	}
	d := time.Duration(ms) * time.Millisecond
	if d > max {
		return max
	}
	return d
}

type timerTask struct {
	id       int64
	due      time.Time
	interval time.Duration // 0 means one-shot
	fn       goja.Callable
	args     []goja.Value
}

// timerQueue is the cooperative scheduler behind setTimeout/setInterval.
// It is only ever touched from the run's own goroutine: scheduling happens
// while the VM executes, draining happens after the main body returns, so
// no locking is needed.
type timerQueue struct {
	clampTo time.Duration
	nextID  int64
	tasks   []*timerTask
}

func newTimerQueue(clampTo time.Duration) *timerQueue {
	return &timerQueue{clampTo: clampTo}
}

// schedule enqueues a callback and returns its timer ID.
// interval == 0 schedules a one-shot; otherwise the task reschedules
// itself each time it runs.
func (q *timerQueue) schedule(fn goja.Callable, delay, interval time.Duration, args []goja.Value) int64 {
	q.nextID++
	q.tasks = append(q.tasks, &timerTask{
		id:       q.nextID,
		due:      time.Now().Add(delay),
		interval: interval,
		fn:       fn,
		args:     args,
	})
	return q.nextID
}

// cancel removes a pending task by ID. Unknown IDs are ignored, matching
// clearTimeout semantics.
func (q *timerQueue) cancel(id int64) {
	for i, task := range q.tasks {
		if task.id == id {
			q.tasks = append(q.tasks[:i], q.tasks[i+1:]...)
			return
		}
	}
}

// push re-enqueues a repeating task after it has run.
func (q *timerQueue) push(task *timerTask) {
	q.tasks = append(q.tasks, task)
}

// pop removes and returns the task with the earliest due time.
func (q *timerQueue) pop() (*timerTask, bool) {
	if len(q.tasks) == 0 {
		return nil, false
	}
	earliest := 0
	for i, task := range q.tasks {
		if task.due.Before(q.tasks[earliest].due) {
			earliest = i
		}
	}
	task := q.tasks[earliest]
	q.tasks = append(q.tasks[:earliest], q.tasks[earliest+1:]...)
	return task, true
}
