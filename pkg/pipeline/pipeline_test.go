package pipeline

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusagency/nexus-scheduler/pkg/gatekeeper"
	"github.com/nexusagency/nexus-scheduler/pkg/ledger/memstore"
	ordertypes "github.com/nexusagency/nexus-scheduler/pkg/order/types"
)

func newTestPipeline() (*Pipeline, *memstore.Store) {
	store := memstore.NewStore()
	return NewPipeline(store, decimal.NewFromInt(2)), store
}

func intakeOrder(t *testing.T, p *Pipeline, budget, cost int64) *ordertypes.Order {
	t.Helper()
	order, err := p.Intake(context.Background(), &IntakeRequest{
		Title:         "landing page",
		Description:   "five sections, responsive",
		ClientName:    "acme",
		BudgetAmount:  decimal.NewFromInt(budget),
		EstimatedCost: decimal.NewFromInt(cost),
	})
	require.NoError(t, err)
	return order
}

func approvedVerdict() *gatekeeper.Verdict {
	return &gatekeeper.Verdict{
		Approved:      true,
		MarginPercent: decimal.NewFromInt(50),
	}
}

// driveToInvoiced walks an order to the invoiced state.
func driveToInvoiced(t *testing.T, p *Pipeline, id string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, p.Approve(ctx, id, approvedVerdict()))
	require.NoError(t, p.Dispatch(ctx, id))
	require.NoError(t, p.Deliver(ctx, id, "https://artifacts/acme"))
	require.NoError(t, p.AttachInvoice(ctx, id, "INV-TEST0001", ordertypes.MethodCrypto))
}

func TestIntakeMovesToVetting(t *testing.T) {
	p, store := newTestPipeline()
	order := intakeOrder(t, p, 300, 100)

	// The returned order reflects the vet transition, not the intake draft.
	assert.Equal(t, ordertypes.StateVetting, order.State)

	stored, err := store.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, ordertypes.StateVetting, stored.State)
}

func TestIntakeValidation(t *testing.T) {
	p, _ := newTestPipeline()
	_, err := p.Intake(context.Background(), &IntakeRequest{
		Title:        "",
		BudgetAmount: decimal.NewFromInt(100),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = p.Intake(context.Background(), &IntakeRequest{
		Title:        "free work",
		BudgetAmount: decimal.Zero,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFullLifecycle(t *testing.T) {
	p, store := newTestPipeline()
	ctx := context.Background()
	order := intakeOrder(t, p, 300, 100)

	driveToInvoiced(t, p, order.ID)

	require.NoError(t, p.ApplyPayment(ctx, order.ID, &ordertypes.PaymentObservation{
		TxID:       "0xabc",
		Amount:     decimal.NewFromInt(300),
		ObservedAt: time.Now(),
	}))

	stored, err := store.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, ordertypes.StatePaid, stored.State)
	assert.False(t, stored.PaidAt.IsZero())

	require.NoError(t, p.Close(ctx, order.ID))
	stored, err = store.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, ordertypes.StateClosed, stored.State)
	assert.True(t, stored.State.Terminal())
}

func TestInvalidTransitions(t *testing.T) {
	p, _ := newTestPipeline()
	ctx := context.Background()
	order := intakeOrder(t, p, 300, 100)

	// Vetting orders cannot be dispatched, delivered or closed.
	assert.ErrorIs(t, p.Dispatch(ctx, order.ID), ErrInvalidTransition)
	assert.ErrorIs(t, p.Deliver(ctx, order.ID, "x"), ErrInvalidTransition)
	assert.ErrorIs(t, p.Close(ctx, order.ID), ErrInvalidTransition)

	require.NoError(t, p.Reject(ctx, order.ID, "too cheap"))
	// Terminal; nothing else applies.
	assert.ErrorIs(t, p.Approve(ctx, order.ID, approvedVerdict()), ErrInvalidTransition)
	assert.ErrorIs(t, p.Dispatch(ctx, order.ID), ErrInvalidTransition)
}

func TestAttachInvoiceOnlyOnce(t *testing.T) {
	p, _ := newTestPipeline()
	ctx := context.Background()
	order := intakeOrder(t, p, 300, 100)
	driveToInvoiced(t, p, order.ID)

	err := p.AttachInvoice(ctx, order.ID, "INV-TEST0002", ordertypes.MethodCrypto)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestPaymentWithinTolerance(t *testing.T) {
	p, store := newTestPipeline()
	ctx := context.Background()
	order := intakeOrder(t, p, 300, 100)
	driveToInvoiced(t, p, order.ID)

	// 295 of 300 clears the 2% tolerance floor (294).
	require.NoError(t, p.ApplyPayment(ctx, order.ID, &ordertypes.PaymentObservation{
		TxID:   "0xnear",
		Amount: decimal.NewFromInt(295),
	}))

	stored, err := store.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, ordertypes.StatePaid, stored.State)
}

func TestPartialPaymentAccumulates(t *testing.T) {
	p, store := newTestPipeline()
	ctx := context.Background()
	order := intakeOrder(t, p, 300, 100)
	driveToInvoiced(t, p, order.ID)

	require.NoError(t, p.ApplyPayment(ctx, order.ID, &ordertypes.PaymentObservation{
		TxID:   "0xpart1",
		Amount: decimal.NewFromInt(100),
	}))
	stored, err := store.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, ordertypes.StateInvoiced, stored.State)
	assert.True(t, stored.ReceivedAmount.Equal(decimal.NewFromInt(100)))

	require.NoError(t, p.ApplyPayment(ctx, order.ID, &ordertypes.PaymentObservation{
		TxID:   "0xpart2",
		Amount: decimal.NewFromInt(200),
	}))
	stored, err = store.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, ordertypes.StatePaid, stored.State)
}

func TestPaymentReplayIsIdempotent(t *testing.T) {
	p, store := newTestPipeline()
	ctx := context.Background()
	order := intakeOrder(t, p, 300, 100)
	driveToInvoiced(t, p, order.ID)

	obs := &ordertypes.PaymentObservation{
		TxID:   "0xdup",
		Amount: decimal.NewFromInt(100),
	}
	require.NoError(t, p.ApplyPayment(ctx, order.ID, obs))
	require.NoError(t, p.ApplyPayment(ctx, order.ID, obs))
	require.NoError(t, p.ApplyPayment(ctx, order.ID, obs))

	stored, err := store.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, stored.ReceivedAmount.Equal(decimal.NewFromInt(100)))
}

func TestOverduePaymentStillPays(t *testing.T) {
	p, store := newTestPipeline()
	ctx := context.Background()
	order := intakeOrder(t, p, 300, 100)
	driveToInvoiced(t, p, order.ID)

	require.NoError(t, p.MarkOverdue(ctx, order.ID))
	require.NoError(t, p.ApplyPayment(ctx, order.ID, &ordertypes.PaymentObservation{
		TxID:   "0xlate",
		Amount: decimal.NewFromInt(300),
	}))

	stored, err := store.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, ordertypes.StatePaid, stored.State)
}

func TestPaymentBeforeInvoiceRejected(t *testing.T) {
	p, _ := newTestPipeline()
	ctx := context.Background()
	order := intakeOrder(t, p, 300, 100)

	err := p.ApplyPayment(ctx, order.ID, &ordertypes.PaymentObservation{
		TxID:   "0xearly",
		Amount: decimal.NewFromInt(300),
	})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestConfirmPaymentManual(t *testing.T) {
	p, store := newTestPipeline()
	ctx := context.Background()
	order := intakeOrder(t, p, 300, 100)
	driveToInvoiced(t, p, order.ID)

	require.NoError(t, p.ConfirmPaymentManual(ctx, order.ID, decimal.NewFromInt(300), "WIRE-42", ordertypes.MethodBank))
	// Resubmitting the same reference changes nothing.
	require.NoError(t, p.ConfirmPaymentManual(ctx, order.ID, decimal.NewFromInt(300), "WIRE-42", ordertypes.MethodBank))

	stored, err := store.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, ordertypes.StatePaid, stored.State)
	assert.True(t, stored.ReceivedAmount.Equal(decimal.NewFromInt(300)))

	err = p.ConfirmPaymentManual(ctx, order.ID, decimal.NewFromInt(1), "", ordertypes.MethodBank)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestConcurrentPaymentsSerialized(t *testing.T) {
	p, store := newTestPipeline()
	ctx := context.Background()
	order := intakeOrder(t, p, 1000, 100)
	require.NoError(t, p.Approve(ctx, order.ID, approvedVerdict()))
	require.NoError(t, p.Dispatch(ctx, order.ID))
	require.NoError(t, p.Deliver(ctx, order.ID, "ref"))
	require.NoError(t, p.AttachInvoice(ctx, order.ID, "INV-CONC", ordertypes.MethodCrypto))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = p.ApplyPayment(ctx, order.ID, &ordertypes.PaymentObservation{
				TxID:   fmt.Sprintf("0xconc%v", i),
				Amount: decimal.NewFromInt(100),
			})
		}(i)
	}
	wg.Wait()

	stored, err := store.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, stored.ReceivedAmount.Equal(decimal.NewFromInt(1000)), "got %v", stored.ReceivedAmount)
	assert.Equal(t, ordertypes.StatePaid, stored.State)
}

func TestListActiveExcludesTerminal(t *testing.T) {
	p, _ := newTestPipeline()
	ctx := context.Background()

	active := intakeOrder(t, p, 300, 100)
	rejected := intakeOrder(t, p, 300, 100)
	require.NoError(t, p.Reject(ctx, rejected.ID, "no"))

	views, err := p.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, active.ID, views[0].ID)
}

func TestStats(t *testing.T) {
	p, _ := newTestPipeline()
	ctx := context.Background()

	first := intakeOrder(t, p, 300, 100)
	require.NoError(t, p.Approve(ctx, first.ID, approvedVerdict()))
	second := intakeOrder(t, p, 200, 50)
	require.NoError(t, p.Reject(ctx, second.ID, "no"))

	stats, err := p.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.ByState[ordertypes.StateApproved])
	assert.Equal(t, 1, stats.ByState[ordertypes.StateRejected])
	assert.True(t, stats.TotalBudget.Equal(decimal.NewFromInt(500)))
	assert.True(t, stats.ApprovedBudget.Equal(decimal.NewFromInt(300)))
}
