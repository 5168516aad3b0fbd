package safego

import (
	"context"
	"fmt"
	"runtime/debug"

	"gitlab.com/realty/api/realty-listing-service/internal/domain"
)

// Execute runs the given function in a new goroutine.
// It recovers from any panics within the goroutine, logs them with the provided logger and a descriptive name,
// and includes a stack trace.
func Execute(ctx context.Context, logger domain.Logger, goroutineName string, fn func()) {
	go func() {
		defer Recover(ctx, logger, goroutineName)
		fn()
	}()
}

// Recover is meant to be deferred. It swallows a panic and logs it under goroutineName.
func Recover(ctx context.Context, logger domain.Logger, goroutineName string) {
	r := recover()
	if r == nil {
		return
	}
	logCtx := ctx
	if ctx.Err() != nil {
		logCtx = context.Background()
	}
	logger.Error(logCtx, fmt.Sprintf("Panic recovered in goroutine: %s", goroutineName),
		"panic_info", fmt.Sprintf("%v", r),
		"stacktrace", string(debug.Stack()),
	)
}
