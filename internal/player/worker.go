package player

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/sourcegraph/conc"
)

// defaultQueueCapacity bounds the worker's task channel; producers block
// once it is full rather than growing unboundedly under a slow session.
const defaultQueueCapacity = 4096

// Worker is the single-consumer FIFO loop that drains a session's task
// queue, the only goroutine allowed to touch the Pipeline, PlayerContext and
// DecryptionService for that session (spec.md §4.D).
type Worker struct {
	queue chan Task

	// closeMu serialises Enqueue's send against Shutdown's close, so a send
	// can never race a close of the same channel: Enqueue holds a read lock
	// for the duration of its send, Shutdown takes the write lock before
	// closing.
	closeMu  sync.RWMutex
	shutdown atomic.Bool
	wg       conc.WaitGroup
	started  sync.Once
	logger   *slog.Logger
}

// NewWorker returns a Worker with the default queue capacity.
func NewWorker(logger *slog.Logger) *Worker {
	return NewWorkerWithCapacity(logger, defaultQueueCapacity)
}

// NewWorkerWithCapacity returns a Worker whose queue holds at most capacity
// pending tasks.
func NewWorkerWithCapacity(logger *slog.Logger, capacity int) *Worker {
	return &Worker{
		queue:  make(chan Task, capacity),
		logger: logger.With("component", "player.worker"),
	}
}

// Start launches the drain loop in a panic-supervised goroutine. Safe to
// call once; subsequent calls are no-ops.
func (w *Worker) Start() {
	w.started.Do(func() {
		w.wg.Go(w.run)
	})
}

func (w *Worker) run() {
	for task := range w.queue {
		w.execute(task)
	}
}

func (w *Worker) execute(task Task) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("task panicked", "task", task.Name(), "panic", r)
		}
	}()
	w.logger.Debug("executing task", "task", task.Name())
	task.Execute()
}

// Enqueue appends task to the FIFO queue. Returns ErrWorkerShutDown if
// Shutdown has already closed the queue (spec.md §5 "Cancellation: tasks
// queued after Shutdown are discarded").
func (w *Worker) Enqueue(task Task) error {
	w.closeMu.RLock()
	defer w.closeMu.RUnlock()
	if w.shutdown.Load() {
		return ErrWorkerShutDown
	}
	w.queue <- task
	return nil
}

// Shutdown closes the queue to new tasks and waits for the run loop to
// drain the tasks already queued and exit. Safe to call multiple times.
func (w *Worker) Shutdown() {
	if w.shutdown.CompareAndSwap(false, true) {
		w.closeMu.Lock()
		close(w.queue)
		w.closeMu.Unlock()
	}
	w.wg.Wait()
}
