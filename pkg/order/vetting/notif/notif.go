package notif

import (
	"context"
	"fmt"

	basenotif "github.com/nexusagency/nexus-scheduler/pkg/base/notif"
	"github.com/nexusagency/nexus-scheduler/pkg/notify"
	"github.com/nexusagency/nexus-scheduler/pkg/order/common"
	types "github.com/nexusagency/nexus-scheduler/pkg/order/vetting/types"
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
			Message: fmt.Sprintf("vetting failed: %v", _order.Error),
		})
	}

	if _order.Verdict.Approved {
		return p.deps.Notifier.Notify(ctx, &notify.Event{
			Kind:    notify.EventOrderApproved,
			OrderID: _order.ID,
			Message: fmt.Sprintf("order %v approved at %v%% margin", _order.Title, _order.Verdict.MarginPercent.Round(2)),
			Detail: map[string]interface{}{
				"margin_percent":   _order.Verdict.MarginPercent,
				"estimated_profit": _order.Verdict.EstimatedProfit,
			},
		})
	}

	event := &notify.Event{
		Kind:    notify.EventOrderRejected,
		OrderID: _order.ID,
		Message: fmt.Sprintf("order %v rejected: %v", _order.Title, _order.Verdict.Reason),
	}
	if !_order.Verdict.SuggestedPrice.IsZero() {
		event.Detail = map[string]interface{}{
			"suggested_price": _order.Verdict.SuggestedPrice,
		}
	}
	return p.deps.Notifier.Notify(ctx, event)
}
