// Package safego launches goroutines that recover from panics instead of
// crashing the process, the same safety net the event dispatcher, the
// recursive solver, and the event emitter all run their background work
// through.
package safego

import (
	"fmt"
	"sync/atomic"

	"github.com/svetzal/mojentic-go/pkg/mjerrors"
	"go.uber.org/zap"
)

// panicCount tracks goroutines recovered from a panic across the whole
// process, giving an operator a single counter to alert on instead of
// grepping logs for "Goroutine panicked".
var panicCount int64

// PanicCount returns the number of panics safego has recovered from since
// process start (or the last ResetPanicCount), across every goroutine
// launched through Go.
func PanicCount() int64 {
	return atomic.LoadInt64(&panicCount)
}

// ResetPanicCount zeroes the process-wide panic counter. Tests use this to
// assert on the delta a specific scenario produces rather than the
// cumulative total.
func ResetPanicCount() {
	atomic.StoreInt64(&panicCount, 0)
}

// Go launches fn in a new goroutine with panic recovery. A recovered panic
// is wrapped as a mjerrors.Error (KindDispatcher, since every current
// caller is part of the event/solver concurrency substrate), logged with
// the goroutine's name and a stack trace, and counted in PanicCount. The
// goroutine exits cleanly afterward instead of crashing the process.
//
// Usage:
//
//	safego.Go(logger, "cleanup-loop", func() {
//	    // work that might panic
//	})
func Go(logger *zap.Logger, name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				atomic.AddInt64(&panicCount, 1)
				err := mjerrors.NewDispatcherError(fmt.Sprintf("goroutine %q panicked: %v", name, r))
				logger.Error("Goroutine panicked",
					zap.String("goroutine", name),
					zap.Error(err),
					zap.Stack("stack"),
				)
			}
		}()
		fn()
	}()
}
