package player

// Task is one unit of work against a PlayerContext, run exclusively on the
// session's Worker goroutine (spec.md §4.B). Name exists purely for
// logging/tracing, paralleling the original's per-task debug traces.
type Task interface {
	Name() string
	Execute()
}

// TaskFunc adapts a plain function into a Task, for small tasks (HandleBus
// messages, Ping, Shutdown) that don't warrant their own named struct beyond
// a constructor.
type TaskFunc struct {
	name string
	fn   func()
}

// NewTaskFunc returns a Task named name that runs fn on Execute.
func NewTaskFunc(name string, fn func()) Task {
	return &TaskFunc{name: name, fn: fn}
}

func (t *TaskFunc) Name() string { return t.name }
func (t *TaskFunc) Execute()     { t.fn() }
