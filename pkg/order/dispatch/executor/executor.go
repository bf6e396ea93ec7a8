package executor

import (
	"context"
	"fmt"

	"github.com/nexusagency/nexus-scheduler/pkg/base/asyncfeed"
	baseexecutor "github.com/nexusagency/nexus-scheduler/pkg/base/executor"
	types "github.com/nexusagency/nexus-scheduler/pkg/order/dispatch/types"
	ordertypes "github.com/nexusagency/nexus-scheduler/pkg/order/types"
	"github.com/nexusagency/nexus-scheduler/pkg/producer"
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

	persistentOrder := &types.PersistentOrder{
		Order: _order,
		Brief: &producer.Brief{
			OrderID:     _order.ID,
			Title:       _order.Title,
			Description: _order.Description,
		},
	}
	asyncfeed.AsyncFeed(ctx, persistentOrder, persistent)
	return nil
}
