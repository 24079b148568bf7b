package syndication

import (
	"context"
)

// Result carries the outcome of an asynchronous document load.
type Result[T any] struct {
	Value T
	Err   error
}

// Async runs load on a new goroutine and delivers exactly one Result on the
// returned channel, which is then closed. A load that has already started runs
// to completion; ctx is only checked before it begins.
func Async[T any](ctx context.Context, load func() (T, error)) <-chan Result[T] {
	ch := make(chan Result[T], 1)
	go func() {
		defer close(ch)
		if err := ctx.Err(); err != nil {
			ch <- Result[T]{Err: err}
			return
		}
		v, err := load()
		ch <- Result[T]{Value: v, Err: err}
	}()
	return ch
}
