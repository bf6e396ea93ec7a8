package watch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nexusagency/nexus-scheduler/pkg/explorer"
	"github.com/nexusagency/nexus-scheduler/pkg/ledger"
	"github.com/nexusagency/nexus-scheduler/pkg/logger"
	"github.com/nexusagency/nexus-scheduler/pkg/notify"
	ordertypes "github.com/nexusagency/nexus-scheduler/pkg/order/types"
	"github.com/nexusagency/nexus-scheduler/pkg/pipeline"
)

var hundred = decimal.NewFromInt(100)

type Config struct {
	Store            ledger.Store
	Pipeline         *pipeline.Pipeline
	Client           explorer.Client
	Notifier         notify.Notifier
	ReceivingAddress string
	TolerancePercent decimal.Decimal
	PollInterval     time.Duration
	PollTimeout      time.Duration
}

// Watcher polls the external ledger for inbound transfers and credits them
// against open invoices. The block cursor only advances after a whole batch
// has been durably applied, so a crash mid-batch replays the window; the
// tx_id seen set makes the replay a no-op.
type Watcher struct {
	Config
}

func NewWatcher(cfg Config) *Watcher {
	return &Watcher{
		Config: cfg,
	}
}

// match picks the open order whose expected amount is closest to the
// transfer amount within the tolerance band. Partially paid orders match on
// their remaining balance.
func (w *Watcher) match(amount decimal.Decimal, orders []*ordertypes.Order) *ordertypes.Order {
	var best *ordertypes.Order
	var bestDiff decimal.Decimal

	for _, order := range orders {
		remaining := order.ExpectedPaymentAmount.Sub(order.ReceivedAmount)
		if remaining.Sign() <= 0 {
			continue
		}
		band := remaining.Mul(w.TolerancePercent).Div(hundred)
		diff := amount.Sub(remaining).Abs()
		if diff.GreaterThan(band) {
			continue
		}
		if best == nil || diff.LessThan(bestDiff) {
			best = order
			bestDiff = diff
		}
	}
	return best
}

func (w *Watcher) applyOne(ctx context.Context, transfer *explorer.Transfer, orders []*ordertypes.Order) error {
	seen, err := w.Store.TxSeen(ctx, transfer.TxID)
	if err != nil {
		return err
	}
	if seen {
		return nil
	}

	order := w.match(transfer.Amount, orders)
	if order == nil {
		logger.Sugar().Warnw(
			"applyOne",
			"TxID", transfer.TxID,
			"Amount", transfer.Amount,
			"State", "Unmatched",
		)
		return nil
	}

	if err := w.Pipeline.ApplyPayment(ctx, order.ID, &ordertypes.PaymentObservation{
		TxID:             transfer.TxID,
		Amount:           transfer.Amount,
		RecipientAddress: transfer.To,
		ObservedAt:       time.Now(),
	}); err != nil {
		// The order can flip to paid earlier in the same batch; the
		// transfer is then unmatched, not a scan failure.
		if errors.Is(err, pipeline.ErrInvalidTransition) {
			logger.Sugar().Warnw(
				"applyOne",
				"TxID", transfer.TxID,
				"OrderID", order.ID,
				"State", "Unmatched",
				"Error", err,
			)
			return nil
		}
		return err
	}
	order.ReceivedAmount = order.ReceivedAmount.Add(transfer.Amount)

	if w.Notifier != nil {
		if err := w.Notifier.Notify(ctx, &notify.Event{
			Kind:    notify.EventPaymentConfirmed,
			OrderID: order.ID,
			Message: fmt.Sprintf("payment %v received for invoice %v", transfer.Amount, order.InvoiceRef),
			Detail: map[string]interface{}{
				"tx_id":  transfer.TxID,
				"amount": transfer.Amount,
			},
		}); err != nil {
			logger.Sugar().Infow(
				"applyOne",
				"TxID", transfer.TxID,
				"State", "Notify",
				"Error", err,
			)
		}
	}
	return nil
}

func (w *Watcher) scanOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, w.PollTimeout)
	defer cancel()

	cursor, err := w.Store.Cursor(ctx)
	if err != nil {
		return err
	}
	transfers, err := w.Client.ListTransfers(ctx, w.ReceivingAddress, cursor)
	if err != nil {
		return err
	}
	if len(transfers) == 0 {
		return nil
	}

	orders, err := w.Store.ListOrders(ctx, ordertypes.StateInvoiced, ordertypes.StateOverdue)
	if err != nil {
		return err
	}

	maxHeight := cursor
	for _, transfer := range transfers {
		if err := w.applyOne(ctx, transfer, orders); err != nil {
			// Stop before the cursor moves past an unapplied transfer.
			return err
		}
		if transfer.BlockHeight > maxHeight {
			maxHeight = transfer.BlockHeight
		}
	}
	return w.Store.SetCursor(ctx, maxHeight+1)
}

func (w *Watcher) Watch(ctx context.Context) {
	ticker := time.NewTicker(w.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.scanOnce(ctx); err != nil {
				logger.Sugar().Errorw(
					"Watch",
					"State", "Scan",
					"Error", err,
				)
			}
		case <-ctx.Done():
			return
		}
	}
}
