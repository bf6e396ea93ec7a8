package action

import (
	"context"

	"github.com/nexusagency/nexus-scheduler/pkg/logger"
)

// Watch runs fn and cancels the whole process context if it panics. An
// optional paniced hook lets the caller release resources before cancel.
func Watch(ctx context.Context, cancel context.CancelFunc, fn func(ctx context.Context), paniced ...func(ctx context.Context)) {
	defer func() {
		if err := recover(); err != nil {
			logger.Sugar().Errorw(
				"Watch",
				"State", "Panic",
				"Error", err,
			)
			for _, f := range paniced {
				f(ctx)
			}
			cancel()
		}
	}()
	fn(ctx)
}
