package sentinel

import (
	"context"
	"fmt"

	"github.com/nexusagency/nexus-scheduler/pkg/base/cancelablefeed"
	basesentinel "github.com/nexusagency/nexus-scheduler/pkg/base/sentinel"
	"github.com/nexusagency/nexus-scheduler/pkg/order/common"
	types "github.com/nexusagency/nexus-scheduler/pkg/order/fulfillment/types"
	ordertypes "github.com/nexusagency/nexus-scheduler/pkg/order/types"
	"github.com/nexusagency/nexus-scheduler/pkg/producer"
)

// Fulfillment is purely event-driven; completions arrive through Trigger and
// there is nothing to find on a periodic scan.
type handler struct {
	deps *common.Deps
}

func NewSentinel(deps *common.Deps) basesentinel.Scanner {
	return &handler{
		deps: deps,
	}
}

func (h *handler) Scan(ctx context.Context, exec chan interface{}) error {
	return nil
}

func (h *handler) InitScan(ctx context.Context, exec chan interface{}) error {
	return nil
}

func (h *handler) TriggerScan(ctx context.Context, cond interface{}, exec chan interface{}) error {
	completion, ok := cond.(producer.Completion)
	if !ok {
		return fmt.Errorf("invalid completion")
	}
	order, err := h.deps.Store.GetOrder(ctx, completion.OrderID)
	if err != nil {
		return err
	}
	if order.State != ordertypes.StateInProgress {
		return fmt.Errorf("completion for %v in %v", order.ID, order.State)
	}
	cancelablefeed.CancelableFeed(ctx, &types.PersistentOrder{
		Order:      order,
		Completion: &completion,
	}, exec)
	return nil
}

func (h *handler) ObjectID(ent interface{}) string {
	return ent.(*types.PersistentOrder).ID
}
