package retry

import (
	"context"
	"time"

	"github.com/nexusagency/nexus-scheduler/pkg/base/cancelablefeed"
)

const retryDelay = time.Minute

// Retry feeds ent back into ch after a delay, giving transient failures a
// chance to clear before the next attempt.
func Retry(ctx context.Context, ent interface{}, ch chan interface{}) {
	go func() {
		select {
		case <-ctx.Done():
		case <-time.After(retryDelay):
			cancelablefeed.CancelableFeed(ctx, ent, ch)
		}
	}()
}
