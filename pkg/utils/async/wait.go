package async

import (
	"context"
	"runtime/debug"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"
)

// Task is a unit of work run by Wait
type Task func(ctx context.Context) error

// Wait runs all tasks concurrently and waits for them
//
// Behavior:
//   - No bound on fan-out: every task gets its own goroutine
//   - Returns the first error; ctx passed to the other tasks is cancelled then
//   - Recovers from panics, logs them and turns them into errors
func Wait(ctx context.Context, tasks ...Task) error {
	eg, egCtx := errgroup.WithContext(ctx)

	for _, task := range tasks {
		eg.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					stack := debug.Stack()
					ctxlog.From(egCtx).Error("panic in async task",
						"recover", r,
						"stack", string(stack))
					err = goerr.New("panic in async task", goerr.V("recover", r))
				}
			}()

			return task(egCtx)
		})
	}

	return eg.Wait()
}
