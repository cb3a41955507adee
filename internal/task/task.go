// Package task runs one operation in the background and delivers its single result.
package task

// Task - Handle to a background operation. The result is delivered exactly once; Done is closed when
// it is available, so callers can select on it instead of polling.
type Task[T any] struct {
	done chan struct{}
	res  T
	err  error
}

// Run - Starts fn in a new goroutine and returns its handle
func Run[T any](fn func() (T, error)) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		t.res, t.err = fn()
	}()
	return t
}

// Done - Returns a channel that is closed when the result is available
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Wait - Blocks until the operation has finished and returns its result
func (t *Task[T]) Wait() (T, error) {
	<-t.done
	return t.res, t.err
}
