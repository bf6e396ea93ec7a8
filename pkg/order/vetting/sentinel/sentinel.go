package sentinel

import (
	"context"

	"github.com/nexusagency/nexus-scheduler/pkg/base/cancelablefeed"
	basesentinel "github.com/nexusagency/nexus-scheduler/pkg/base/sentinel"
	"github.com/nexusagency/nexus-scheduler/pkg/ledger"
	"github.com/nexusagency/nexus-scheduler/pkg/order/common"
	ordertypes "github.com/nexusagency/nexus-scheduler/pkg/order/types"
	types "github.com/nexusagency/nexus-scheduler/pkg/order/vetting/types"
)

type handler struct {
	deps *common.Deps
}

func NewSentinel(deps *common.Deps) basesentinel.Scanner {
	return &handler{
		deps: deps,
	}
}

func (h *handler) scanOrders(ctx context.Context, state ordertypes.OrderState, exec chan interface{}) error {
	orders, err := h.deps.Store.ListOrders(ctx, state)
	if err != nil {
		return err
	}
	for _, order := range orders {
		cancelablefeed.CancelableFeed(ctx, order, exec)
	}
	return nil
}

func (h *handler) Scan(ctx context.Context, exec chan interface{}) error {
	return h.scanOrders(ctx, ordertypes.StateVetting, exec)
}

func (h *handler) InitScan(ctx context.Context, exec chan interface{}) error {
	return h.scanOrders(ctx, ordertypes.StateVetting, exec)
}

func (h *handler) TriggerScan(ctx context.Context, cond interface{}, exec chan interface{}) error {
	id, ok := cond.(string)
	if !ok {
		return nil
	}
	order, err := h.deps.Store.GetOrder(ctx, id)
	if err == ledger.ErrNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	if order.State != ordertypes.StateVetting {
		return nil
	}
	cancelablefeed.CancelableFeed(ctx, order, exec)
	return nil
}

func (h *handler) ObjectID(ent interface{}) string {
	if order, ok := ent.(*types.PersistentOrder); ok {
		return order.ID
	}
	return ent.(*ordertypes.Order).ID
}
