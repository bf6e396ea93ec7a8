package notif

import (
	"context"
	"fmt"

	basenotif "github.com/nexusagency/nexus-scheduler/pkg/base/notif"
	"github.com/nexusagency/nexus-scheduler/pkg/notify"
	"github.com/nexusagency/nexus-scheduler/pkg/order/common"
	types "github.com/nexusagency/nexus-scheduler/pkg/order/fulfillment/types"
)

type handler struct {
	deps *common.Deps
}

func NewNotif(deps *common.Deps) basenotif.Notify {
	return &handler{
		deps: deps,
	}
}

func (p *handler) Notify(ctx context.Context, order interface{}) error {
	_order, ok := order.(*types.PersistentOrder)
	if !ok {
		return fmt.Errorf("invalid order")
	}

	if _order.Error != nil {
		return p.deps.Notifier.Notify(ctx, &notify.Event{
			Kind:    notify.EventPipelineError,
			OrderID: _order.ID,
			Message: fmt.Sprintf("fulfillment failed: %v", _order.Error),
		})
	}
	return p.deps.Notifier.Notify(ctx, &notify.Event{
		Kind:    notify.EventWorkDelivered,
		OrderID: _order.ID,
		Message: fmt.Sprintf("order %v delivered: %v", _order.Title, _order.Completion.ArtifactRef),
	})
}
