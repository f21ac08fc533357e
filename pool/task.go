package pool

// Task is a type-erased, move-only unit of work: a zero-argument callable
// bound at construction. A Task does not capture producer context beyond
// what its callable closes over, and it carries no result of its own —
// SubmitForReturn wraps a caller's callable in one that writes into a
// Future before handing it to NewTask.
//
// The zero value is not invocable (IsSet reports false). Copying a Task by
// value is possible in Go, but callers must treat it as move-only: once a
// Task has been handed to a queue, the caller must not invoke it again.
// Invoke clears the callable before running it, so invoking the same Task
// value a second time is a no-op. The clearing applies only to the Task
// Invoke is called on: a copy made before the call still holds the
// callable and would run it again.
type Task struct {
	fn  func()
	set bool
}

// NewTask wraps fn as a Task. A nil fn produces an unset Task.
func NewTask(fn func()) Task {
	return Task{fn: fn, set: fn != nil}
}

// IsSet reports whether the Task holds a callable.
func (t *Task) IsSet() bool {
	return t.set
}

// Reset rebinds the Task to fn, discarding any previously bound callable
// without invoking it.
func (t *Task) Reset(fn func()) {
	t.fn = fn
	t.set = fn != nil
}

// Invoke runs the bound callable exactly once. The callable is cleared
// first so that a second call to Invoke on the same Task is a no-op rather
// than a double execution; a copy taken before the first call is not
// affected. Invoking an unset Task is a no-op.
//
// A panic escaping the callable is not recovered here: per the library's
// contract a task is expected not to escape, and an escape is fatal to the
// worker goroutine that called Invoke (see the package doc's Error
// Handling section).
func (t *Task) Invoke() {
	if !t.set {
		return
	}
	fn := t.fn
	t.fn = nil
	t.set = false
	fn()
}
