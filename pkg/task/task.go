// Package task implements the two task-runner variants (§4.10): a
// single-threaded runner that executes synchronously in the caller, and a
// multithreaded runner with its own worker goroutine, mutex and condition
// variable.
package task

import "sync"

// Task is a single deferred callback. It keeps no separate argument list:
// any arguments are captured by the closure passed to New.
type Task struct {
	fn func()
}

// New wraps fn as a Task. Callers that need arguments should close over them
// when building fn, e.g. task.New(func() { tab.Click(x, y) }).
func New(fn func()) *Task {
	return &Task{fn: fn}
}

func (t *Task) run() { t.fn() }

// Runner is satisfied by both task-runner variants.
type Runner interface {
	ScheduleTask(t *Task)
	ClearPendingTasks()
	Start()
	SetNeedsQuit()
}

// SingleThreadedRunner runs every scheduled task synchronously, in the
// caller of ScheduleTask — used when the embedding program has no dedicated
// UI/browser thread to keep free.
type SingleThreadedRunner struct{}

// NewSingleThreaded returns a Runner that executes tasks inline.
func NewSingleThreaded() *SingleThreadedRunner { return &SingleThreadedRunner{} }

func (r *SingleThreadedRunner) Start()                 {}
func (r *SingleThreadedRunner) ScheduleTask(t *Task)    { t.run() }
func (r *SingleThreadedRunner) ClearPendingTasks()      {}
func (r *SingleThreadedRunner) SetNeedsQuit()           {}

// ThreadedRunner owns a worker goroutine that drains a FIFO queue of tasks,
// sleeping on a condition variable between batches (§4.10 "Multithreaded").
type ThreadedRunner struct {
	mu        sync.Mutex
	cond      *sync.Cond
	queue     []*Task
	needsQuit bool
	started   bool
}

// NewThreaded returns a Runner backed by its own worker goroutine. Start
// must be called once before any task runs.
func NewThreaded() *ThreadedRunner {
	r := &ThreadedRunner{}
	r.cond = sync.NewCond(&r.mu)
	return r
}

// Start launches the worker goroutine. Safe to call at most once.
func (r *ThreadedRunner) Start() {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	r.mu.Unlock()
	go r.loop()
}

// ScheduleTask appends t to the queue and wakes the worker.
func (r *ThreadedRunner) ScheduleTask(t *Task) {
	r.mu.Lock()
	r.queue = append(r.queue, t)
	r.cond.Signal()
	r.mu.Unlock()
}

// ClearPendingTasks drops every queued-but-not-yet-run task, used on
// navigation to cancel stale scripts and animations.
func (r *ThreadedRunner) ClearPendingTasks() {
	r.mu.Lock()
	r.queue = nil
	r.mu.Unlock()
}

// SetNeedsQuit asks the worker loop to exit after its current task, and
// wakes it if it's waiting on an empty queue.
func (r *ThreadedRunner) SetNeedsQuit() {
	r.mu.Lock()
	r.needsQuit = true
	r.cond.Signal()
	r.mu.Unlock()
}

func (r *ThreadedRunner) loop() {
	for {
		r.mu.Lock()
		for len(r.queue) == 0 && !r.needsQuit {
			r.cond.Wait()
		}
		if r.needsQuit {
			r.mu.Unlock()
			return
		}
		next := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()

		next.run()
	}
}
