package executor

import (
	"context"
	"fmt"

	"github.com/nexusagency/nexus-scheduler/pkg/base/asyncfeed"
	baseexecutor "github.com/nexusagency/nexus-scheduler/pkg/base/executor"
	types "github.com/nexusagency/nexus-scheduler/pkg/order/finish/types"
	ordertypes "github.com/nexusagency/nexus-scheduler/pkg/order/types"
)

type handler struct{}

func NewExecutor() baseexecutor.Exec {
	return &handler{}
}

func (e *handler) Exec(ctx context.Context, order interface{}, persistent, notif, done chan interface{}) error {
	_order, ok := order.(*ordertypes.Order)
	if !ok {
		return fmt.Errorf("invalid order")
	}

	asyncfeed.AsyncFeed(ctx, &types.PersistentOrder{
		Order: _order,
	}, persistent)
	return nil
}
