package persistent

import (
	"context"
	"fmt"

	"github.com/nexusagency/nexus-scheduler/pkg/base/asyncfeed"
	basepersistent "github.com/nexusagency/nexus-scheduler/pkg/base/persistent"
	"github.com/nexusagency/nexus-scheduler/pkg/order/common"
	types "github.com/nexusagency/nexus-scheduler/pkg/order/vetting/types"
)

type handler struct {
	deps *common.Deps
}

func NewPersistent(deps *common.Deps) basepersistent.Persistenter {
	return &handler{
		deps: deps,
	}
}

func (p *handler) Update(ctx context.Context, order interface{}, notif, done chan interface{}) error {
	_order, ok := order.(*types.PersistentOrder)
	if !ok {
		return fmt.Errorf("invalid order")
	}

	defer asyncfeed.AsyncFeed(ctx, _order, done)

	if _order.Verdict.Approved {
		if err := p.deps.Pipeline.Approve(ctx, _order.ID, _order.Verdict); err != nil {
			return err
		}
	} else {
		if err := p.deps.Pipeline.Reject(ctx, _order.ID, _order.Verdict.Reason); err != nil {
			return err
		}
	}

	asyncfeed.AsyncFeed(ctx, _order, notif)
	return nil
}
