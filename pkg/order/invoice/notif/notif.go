package notif

import (
	"context"
	"fmt"

	basenotif "github.com/nexusagency/nexus-scheduler/pkg/base/notif"
	"github.com/nexusagency/nexus-scheduler/pkg/notify"
	"github.com/nexusagency/nexus-scheduler/pkg/order/common"
	types "github.com/nexusagency/nexus-scheduler/pkg/order/invoice/types"
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
			Message: fmt.Sprintf("invoice generation failed: %v", _order.Error),
		})
	}
	return p.deps.Notifier.Notify(ctx, &notify.Event{
		Kind:    notify.EventInvoiceIssued,
		OrderID: _order.ID,
		Message: fmt.Sprintf("invoice %v issued for %v", _order.InvoiceRef, _order.ExpectedPaymentAmount),
		Detail: map[string]interface{}{
			"invoice_ref": _order.InvoiceRef,
			"amount":      _order.ExpectedPaymentAmount,
		},
	})
}
