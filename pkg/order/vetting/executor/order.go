package executor

import (
	"context"

	"github.com/nexusagency/nexus-scheduler/pkg/base/asyncfeed"
	"github.com/nexusagency/nexus-scheduler/pkg/gatekeeper"
	"github.com/nexusagency/nexus-scheduler/pkg/order/common"
	ordertypes "github.com/nexusagency/nexus-scheduler/pkg/order/types"
	types "github.com/nexusagency/nexus-scheduler/pkg/order/vetting/types"
)

type orderHandler struct {
	*ordertypes.Order
	deps       *common.Deps
	persistent chan interface{}
	notif      chan interface{}
	done       chan interface{}
	verdict    *gatekeeper.Verdict
}

func (h *orderHandler) final(ctx context.Context, err *error) {
	persistentOrder := &types.PersistentOrder{
		Order:   h.Order,
		Verdict: h.verdict,
		Error:   *err,
	}
	if *err != nil {
		asyncfeed.AsyncFeed(ctx, persistentOrder, h.notif)
		asyncfeed.AsyncFeed(ctx, persistentOrder, h.done)
		return
	}
	asyncfeed.AsyncFeed(ctx, persistentOrder, h.persistent)
}

func (h *orderHandler) exec(ctx context.Context) error {
	var err error

	defer h.final(ctx, &err)

	h.verdict, err = gatekeeper.Evaluate(h.BudgetAmount, h.EstimatedCost, h.deps.Policy)
	return err
}
