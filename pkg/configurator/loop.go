package configurator

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrLoopClosed = errors.New("primary loop closed")
	ErrLoopPanic  = errors.New("panic on primary loop")
)

// Loop is the primary coordinating execution context: a single goroutine
// running queued funcs one at a time, in the order they were queued.
type Loop struct {
	tasks   chan func()
	stop    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

type loopKey struct{}

// NewLoop starts a [Loop]. Call [Loop.Close] to stop it.
func NewLoop() *Loop {
	l := &Loop{
		tasks:   make(chan func()),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}

	go l.run()

	return l
}

func (l *Loop) run() {
	defer close(l.stopped)

	for {
		select {
		case task := <-l.tasks:
			task()
		case <-l.stop:
			return
		}
	}
}

// Do runs fn on the loop and waits for it to return. The context passed to fn
// is marked so that [OnLoop] reports true. Calling Do from a func already
// running on l runs fn inline.
//
// Do returns [ErrLoopClosed] if the loop is closed, or ctx.Err() if ctx is
// done before fn was started. A panic in fn is recovered and returned as
// [ErrLoopPanic].
func (l *Loop) Do(ctx context.Context, fn func(ctx context.Context)) error {
	if loopOf(ctx) == l {
		return call(ctx, fn)
	}

	done := make(chan error, 1)
	task := func() {
		done <- call(context.WithValue(ctx, loopKey{}, l), fn)
	}

	select {
	case <-l.stop:
		return ErrLoopClosed
	default:
	}

	select {
	case l.tasks <- task:
	case <-l.stop:
		return ErrLoopClosed
	case <-ctx.Done():
		return ctx.Err() //nolint:wrapcheck // Return the context error as is.
	}

	return <-done
}

func call(ctx context.Context, fn func(ctx context.Context)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrLoopPanic, r)
		}
	}()

	fn(ctx)

	return nil
}

// Closed reports whether [Loop.Close] was called.
func (l *Loop) Closed() bool {
	select {
	case <-l.stop:
		return true
	default:
		return false
	}
}

// Close stops the loop after the running func, if any, returns.
// Funcs queued afterwards fail with [ErrLoopClosed]. Close must not be called
// from a func running on the loop.
func (l *Loop) Close() {
	l.once.Do(func() { close(l.stop) })
	<-l.stopped
}

// OnLoop reports whether ctx belongs to a func running on a [Loop].
func OnLoop(ctx context.Context) bool {
	return loopOf(ctx) != nil
}

func loopOf(ctx context.Context) *Loop {
	l, _ := ctx.Value(loopKey{}).(*Loop)

	return l
}
