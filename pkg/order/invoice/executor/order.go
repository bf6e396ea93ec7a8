package executor

import (
	"context"

	"github.com/nexusagency/nexus-scheduler/pkg/base/asyncfeed"
	"github.com/nexusagency/nexus-scheduler/pkg/order/common"
	types "github.com/nexusagency/nexus-scheduler/pkg/order/invoice/types"
	ordertypes "github.com/nexusagency/nexus-scheduler/pkg/order/types"
)

type orderHandler struct {
	*ordertypes.Order
	deps       *common.Deps
	persistent chan interface{}
	notif      chan interface{}
	done       chan interface{}
	invoiceRef string
}

// final routes the order. A generation failure leaves the order delivered so
// the next scan retries it.
func (h *orderHandler) final(ctx context.Context, err *error) {
	persistentOrder := &types.PersistentOrder{
		Order:      h.Order,
		InvoiceRef: h.invoiceRef,
		Error:      *err,
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

	h.invoiceRef, err = h.deps.Invoicer.Generate(ctx, h.Order)
	return err
}
