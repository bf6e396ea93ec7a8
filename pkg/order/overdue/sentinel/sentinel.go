package sentinel

import (
	"context"

	"github.com/nexusagency/nexus-scheduler/pkg/base/cancelablefeed"
	basesentinel "github.com/nexusagency/nexus-scheduler/pkg/base/sentinel"
	"github.com/nexusagency/nexus-scheduler/pkg/order/common"
	types "github.com/nexusagency/nexus-scheduler/pkg/order/overdue/types"
	ordertypes "github.com/nexusagency/nexus-scheduler/pkg/order/types"
)

type handler struct {
	deps *common.Deps
}

func NewSentinel(deps *common.Deps) basesentinel.Scanner {
	return &handler{
		deps: deps,
	}
}

func (h *handler) scanOrders(ctx context.Context, exec chan interface{}) error {
	orders, err := h.deps.Store.ListOrders(ctx, ordertypes.StateInvoiced)
	if err != nil {
		return err
	}
	for _, order := range orders {
		cancelablefeed.CancelableFeed(ctx, order, exec)
	}
	return nil
}

func (h *handler) Scan(ctx context.Context, exec chan interface{}) error {
	return h.scanOrders(ctx, exec)
}

func (h *handler) InitScan(ctx context.Context, exec chan interface{}) error {
	return h.scanOrders(ctx, exec)
}

func (h *handler) TriggerScan(ctx context.Context, cond interface{}, exec chan interface{}) error {
	return nil
}

func (h *handler) ObjectID(ent interface{}) string {
	if order, ok := ent.(*types.PersistentOrder); ok {
		return order.ID
	}
	return ent.(*ordertypes.Order).ID
}
