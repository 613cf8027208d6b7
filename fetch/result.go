// Package fetch is the read side the pages render from: a JSON client for the
// /api surface and the Result type each page region renders.
package fetch

import "context"

// State is the lifecycle of one read: Idle -> Loading -> {Success, Error}.
type State int

const (
	Idle State = iota
	Loading
	Success
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Result holds the outcome of a read. Value is only meaningful in Success,
// Err only in Error.
type Result[T any] struct {
	State State
	Value T
	Err   error
}

func Pending[T any]() Result[T] {
	return Result[T]{State: Loading}
}

func Ok[T any](value T) Result[T] {
	return Result[T]{State: Success, Value: value}
}

func Failed[T any](err error) Result[T] {
	return Result[T]{State: Error, Err: err}
}

func (r Result[T]) Settled() bool {
	return r.State == Success || r.State == Error
}

// Load runs one read and settles it. A cancelled or expired ctx aborts the
// read; a value that arrives after the abort is discarded.
func Load[T any](ctx context.Context, read func(context.Context) (T, error)) Result[T] {
	if err := ctx.Err(); err != nil {
		return Failed[T](err)
	}

	value, err := read(ctx)
	if err != nil {
		return Failed[T](err)
	}
	if err := ctx.Err(); err != nil {
		return Failed[T](err)
	}

	return Ok(value)
}
