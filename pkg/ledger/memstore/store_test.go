package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusagency/nexus-scheduler/pkg/ledger"
	ordertypes "github.com/nexusagency/nexus-scheduler/pkg/order/types"
)

func testOrder(id string) *ordertypes.Order {
	return &ordertypes.Order{
		ID:           id,
		Title:        "test",
		BudgetAmount: decimal.NewFromInt(100),
		State:        ordertypes.StateVetting,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func TestCreateAndGet(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.CreateOrder(ctx, testOrder("a")))
	assert.ErrorIs(t, store.CreateOrder(ctx, testOrder("a")), ledger.ErrExists)

	order, err := store.GetOrder(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", order.ID)

	_, err = store.GetOrder(ctx, "missing")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestGetReturnsCopy(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	require.NoError(t, store.CreateOrder(ctx, testOrder("a")))

	order, err := store.GetOrder(ctx, "a")
	require.NoError(t, err)
	order.State = ordertypes.StateClosed

	again, err := store.GetOrder(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, ordertypes.StateVetting, again.State)
}

func TestUpdateOrder(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	assert.ErrorIs(t, store.UpdateOrder(ctx, testOrder("a")), ledger.ErrNotFound)

	require.NoError(t, store.CreateOrder(ctx, testOrder("a")))
	order, _ := store.GetOrder(ctx, "a")
	order.State = ordertypes.StateApproved
	require.NoError(t, store.UpdateOrder(ctx, order))

	stored, err := store.GetOrder(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, ordertypes.StateApproved, stored.State)
}

func TestListOrdersByState(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	first := testOrder("a")
	second := testOrder("b")
	second.State = ordertypes.StateApproved
	require.NoError(t, store.CreateOrder(ctx, first))
	require.NoError(t, store.CreateOrder(ctx, second))

	orders, err := store.ListOrders(ctx, ordertypes.StateApproved)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "b", orders[0].ID)

	all, err := store.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestApplyPaymentMarksTxSeen(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	require.NoError(t, store.CreateOrder(ctx, testOrder("a")))

	order, _ := store.GetOrder(ctx, "a")
	obs := &ordertypes.PaymentObservation{
		TxID:   "0x1",
		Amount: decimal.NewFromInt(100),
	}
	require.NoError(t, store.ApplyPayment(ctx, order, obs))

	seen, err := store.TxSeen(ctx, "0x1")
	require.NoError(t, err)
	assert.True(t, seen)

	assert.ErrorIs(t, store.ApplyPayment(ctx, order, obs), ledger.ErrTxApplied)
}

func TestCursor(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	height, err := store.Cursor(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), height)

	require.NoError(t, store.SetCursor(ctx, 42))
	height, err = store.Cursor(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), height)
}
