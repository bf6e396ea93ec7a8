package executor

import (
	"context"
	"fmt"

	"github.com/nexusagency/nexus-scheduler/pkg/base/asyncfeed"
	baseexecutor "github.com/nexusagency/nexus-scheduler/pkg/base/executor"
	types "github.com/nexusagency/nexus-scheduler/pkg/order/fulfillment/types"
)

type handler struct{}

func NewExecutor() baseexecutor.Exec {
	return &handler{}
}

func (e *handler) Exec(ctx context.Context, order interface{}, persistent, notif, done chan interface{}) error {
	_order, ok := order.(*types.PersistentOrder)
	if !ok {
		return fmt.Errorf("invalid order")
	}

	if !_order.Completion.Success {
		// Failed work stays in progress; the production side resubmits.
		_order.Error = fmt.Errorf("work failed for %v", _order.ID)
		asyncfeed.AsyncFeed(ctx, _order, notif)
		asyncfeed.AsyncFeed(ctx, _order, done)
		return nil
	}
	if _order.Completion.ArtifactRef == "" {
		_order.Error = fmt.Errorf("empty artifact for %v", _order.ID)
		asyncfeed.AsyncFeed(ctx, _order, notif)
		asyncfeed.AsyncFeed(ctx, _order, done)
		return nil
	}

	asyncfeed.AsyncFeed(ctx, _order, persistent)
	return nil
}
