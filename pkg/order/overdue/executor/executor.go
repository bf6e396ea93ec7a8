package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/nexusagency/nexus-scheduler/pkg/base/asyncfeed"
	baseexecutor "github.com/nexusagency/nexus-scheduler/pkg/base/executor"
	"github.com/nexusagency/nexus-scheduler/pkg/order/common"
	types "github.com/nexusagency/nexus-scheduler/pkg/order/overdue/types"
	ordertypes "github.com/nexusagency/nexus-scheduler/pkg/order/types"
)

type handler struct {
	deps *common.Deps
}

func NewExecutor(deps *common.Deps) baseexecutor.Exec {
	return &handler{
		deps: deps,
	}
}

func (e *handler) Exec(ctx context.Context, order interface{}, persistent, notif, done chan interface{}) error {
	_order, ok := order.(*ordertypes.Order)
	if !ok {
		return fmt.Errorf("invalid order")
	}

	persistentOrder := &types.PersistentOrder{
		Order: _order,
	}
	if time.Since(_order.InvoicedAt) < e.deps.OverdueDeadline {
		asyncfeed.AsyncFeed(ctx, persistentOrder, done)
		return nil
	}
	asyncfeed.AsyncFeed(ctx, persistentOrder, persistent)
	return nil
}
