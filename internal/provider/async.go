package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultPollInterval is the backoff between status checks of an AsyncOp.
const DefaultPollInterval = 20 * time.Millisecond

var (
	// ErrOpCanceled is returned when the source cancels an operation.
	ErrOpCanceled = errors.New("async operation canceled")
	// ErrOpFailed wraps an operation that finished with an error status.
	ErrOpFailed = errors.New("async operation failed")
)

// Status is the completion state of an AsyncOp.
type Status int

const (
	StatusStarted Status = iota
	StatusCompleted
	StatusCanceled
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusStarted:
		return "started"
	case StatusCompleted:
		return "completed"
	case StatusCanceled:
		return "canceled"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// AsyncOp is a source-driven operation. Completion is only observable by
// polling Status; Results is valid once Status leaves StatusStarted.
type AsyncOp[T any] interface {
	Status() Status
	Results() (T, error)
}

// Future is the result of polling an AsyncOp to completion.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Await polls op every interval on a new goroutine until it completes or ctx
// is done. Callers block on the returned Future instead of polling.
func Await[T any](ctx context.Context, op AsyncOp[T], interval time.Duration) *Future[T] {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.val, f.err = poll(ctx, op, interval)
	}()
	return f
}

// Get polls op to completion on the calling goroutine.
func Get[T any](ctx context.Context, op AsyncOp[T], interval time.Duration) (T, error) {
	return Await(ctx, op, interval).Wait()
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the result is available.
func (f *Future[T]) Wait() (T, error) {
	<-f.done
	return f.val, f.err
}

func poll[T any](ctx context.Context, op AsyncOp[T], interval time.Duration) (T, error) {
	var zero T
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		switch st := op.Status(); st {
		case StatusCompleted:
			v, err := op.Results()
			if err != nil {
				return zero, fmt.Errorf("%w: %w", ErrOpFailed, err)
			}
			return v, nil
		case StatusCanceled:
			return zero, ErrOpCanceled
		case StatusError:
			_, err := op.Results()
			if err == nil {
				err = errors.New("no error detail")
			}
			return zero, fmt.Errorf("%w: %w", ErrOpFailed, err)
		case StatusStarted:
		default:
			return zero, fmt.Errorf("%w: unexpected %s", ErrOpFailed, st)
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Go runs fn on a new goroutine and exposes it as an AsyncOp. Providers use it
// to present blocking I/O through the poll-only operation contract.
func Go[T any](fn func() (T, error)) AsyncOp[T] {
	op := &goOp[T]{}
	go func() {
		v, err := fn()
		op.mu.Lock()
		op.val, op.err = v, err
		op.mu.Unlock()
		if err != nil {
			op.status.Store(int32(StatusError))
			return
		}
		op.status.Store(int32(StatusCompleted))
	}()
	return op
}

type goOp[T any] struct {
	status atomic.Int32
	mu     sync.Mutex
	val    T
	err    error
}

func (o *goOp[T]) Status() Status {
	return Status(o.status.Load())
}

func (o *goOp[T]) Results() (T, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.val, o.err
}

// Completed returns an operation that is already finished with v.
func Completed[T any](v T) AsyncOp[T] {
	return doneOp[T]{status: StatusCompleted, val: v}
}

// Failed returns an operation that already finished with err.
func Failed[T any](err error) AsyncOp[T] {
	return doneOp[T]{status: StatusError, err: err}
}

type doneOp[T any] struct {
	status Status
	val    T
	err    error
}

func (o doneOp[T]) Status() Status      { return o.status }
func (o doneOp[T]) Results() (T, error) { return o.val, o.err }
