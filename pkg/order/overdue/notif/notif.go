package notif

import (
	"context"
	"fmt"

	basenotif "github.com/nexusagency/nexus-scheduler/pkg/base/notif"
	"github.com/nexusagency/nexus-scheduler/pkg/notify"
	"github.com/nexusagency/nexus-scheduler/pkg/order/common"
	types "github.com/nexusagency/nexus-scheduler/pkg/order/overdue/types"
)

type handler struct {
	deps *common.Deps
}

func NewNotif(deps *common.Deps) basenotif.Notify {
	return &handler{
		deps: deps,
	}
}

// Notify sends one reminder per overdue entry; the state transition already
// happened so the scanner will not pick the order up again.
func (p *handler) Notify(ctx context.Context, order interface{}) error {
	_order, ok := order.(*types.PersistentOrder)
	if !ok {
		return fmt.Errorf("invalid order")
	}
	return p.deps.Notifier.Notify(ctx, &notify.Event{
		Kind:    notify.EventPaymentReminder,
		OrderID: _order.ID,
		Message: fmt.Sprintf("invoice %v is overdue, %v of %v received", _order.InvoiceRef, _order.ReceivedAmount, _order.ExpectedPaymentAmount),
	})
}
