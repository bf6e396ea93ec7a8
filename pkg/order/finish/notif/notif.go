package notif

import (
	"context"
	"fmt"

	basenotif "github.com/nexusagency/nexus-scheduler/pkg/base/notif"
	"github.com/nexusagency/nexus-scheduler/pkg/notify"
	"github.com/nexusagency/nexus-scheduler/pkg/order/common"
	types "github.com/nexusagency/nexus-scheduler/pkg/order/finish/types"
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
	return p.deps.Notifier.Notify(ctx, &notify.Event{
		Kind:    notify.EventOrderClosed,
		OrderID: _order.ID,
		Message: fmt.Sprintf("order %v closed, %v received", _order.Title, _order.ReceivedAmount),
	})
}
