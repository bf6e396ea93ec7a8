package watch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusagency/nexus-scheduler/pkg/explorer"
	"github.com/nexusagency/nexus-scheduler/pkg/gatekeeper"
	"github.com/nexusagency/nexus-scheduler/pkg/ledger/memstore"
	ordertypes "github.com/nexusagency/nexus-scheduler/pkg/order/types"
	"github.com/nexusagency/nexus-scheduler/pkg/pipeline"
)

type fakeExplorer struct {
	transfers []*explorer.Transfer
	err       error
	calls     int
	since     []uint64
}

func (f *fakeExplorer) ListTransfers(ctx context.Context, address string, sinceHeight uint64) ([]*explorer.Transfer, error) {
	f.calls++
	f.since = append(f.since, sinceHeight)
	if f.err != nil {
		return nil, f.err
	}
	out := []*explorer.Transfer{}
	for _, transfer := range f.transfers {
		if transfer.BlockHeight >= sinceHeight {
			out = append(out, transfer)
		}
	}
	return out, nil
}

func newTestWatcher(client explorer.Client) (*Watcher, *memstore.Store, *pipeline.Pipeline) {
	store := memstore.NewStore()
	p := pipeline.NewPipeline(store, decimal.NewFromInt(2))
	w := NewWatcher(Config{
		Store:            store,
		Pipeline:         p,
		Client:           client,
		ReceivingAddress: "0xagency",
		TolerancePercent: decimal.NewFromInt(2),
		PollInterval:     time.Minute,
		PollTimeout:      time.Second,
	})
	return w, store, p
}

func invoicedOrder(t *testing.T, p *pipeline.Pipeline, budget int64) *ordertypes.Order {
	t.Helper()
	ctx := context.Background()
	order, err := p.Intake(ctx, &pipeline.IntakeRequest{
		Title:         "site",
		BudgetAmount:  decimal.NewFromInt(budget),
		EstimatedCost: decimal.NewFromInt(budget / 3),
	})
	require.NoError(t, err)
	require.NoError(t, p.Approve(ctx, order.ID, &gatekeeper.Verdict{
		Approved:      true,
		MarginPercent: decimal.NewFromInt(50),
	}))
	require.NoError(t, p.Dispatch(ctx, order.ID))
	require.NoError(t, p.Deliver(ctx, order.ID, "ref"))
	require.NoError(t, p.AttachInvoice(ctx, order.ID, "INV-"+order.ID[:8], ordertypes.MethodCrypto))
	return order
}

func TestScanOnceAppliesMatchingTransfer(t *testing.T) {
	client := &fakeExplorer{}
	w, store, p := newTestWatcher(client)
	order := invoicedOrder(t, p, 300)

	client.transfers = []*explorer.Transfer{
		{TxID: "0x1", Amount: decimal.NewFromInt(300), To: "0xagency", BlockHeight: 100},
	}

	require.NoError(t, w.scanOnce(context.Background()))

	stored, err := store.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, ordertypes.StatePaid, stored.State)

	cursor, err := store.Cursor(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(101), cursor)
}

func TestScanOnceSkipsSeenTransfers(t *testing.T) {
	client := &fakeExplorer{}
	w, store, p := newTestWatcher(client)
	first := invoicedOrder(t, p, 300)

	client.transfers = []*explorer.Transfer{
		{TxID: "0x1", Amount: decimal.NewFromInt(295), To: "0xagency", BlockHeight: 100},
	}
	require.NoError(t, w.scanOnce(context.Background()))

	stored, err := store.GetOrder(context.Background(), first.ID)
	require.NoError(t, err)
	require.Equal(t, ordertypes.StatePaid, stored.State)

	// Replay the window with a second open invoice of the same amount. The
	// applied tx must be skipped, not credited again.
	second := invoicedOrder(t, p, 300)
	require.NoError(t, store.SetCursor(context.Background(), 0))
	require.NoError(t, w.scanOnce(context.Background()))

	storedSecond, err := store.GetOrder(context.Background(), second.ID)
	require.NoError(t, err)
	assert.True(t, storedSecond.ReceivedAmount.IsZero(), "got %v", storedSecond.ReceivedAmount)
	assert.Equal(t, ordertypes.StateInvoiced, storedSecond.State)

	stored, err = store.GetOrder(context.Background(), first.ID)
	require.NoError(t, err)
	assert.True(t, stored.ReceivedAmount.Equal(decimal.NewFromInt(295)), "got %v", stored.ReceivedAmount)
}

func TestScanOnceDiscardsUnmatched(t *testing.T) {
	client := &fakeExplorer{}
	w, store, p := newTestWatcher(client)
	order := invoicedOrder(t, p, 300)

	client.transfers = []*explorer.Transfer{
		{TxID: "0xodd", Amount: decimal.NewFromInt(7), To: "0xagency", BlockHeight: 50},
	}
	require.NoError(t, w.scanOnce(context.Background()))

	stored, err := store.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, stored.ReceivedAmount.IsZero())
	assert.Equal(t, ordertypes.StateInvoiced, stored.State)

	// Unmatched transfers do not hold the cursor back.
	cursor, err := store.Cursor(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(51), cursor)
}

func TestScanOnceMatchesClosestOrder(t *testing.T) {
	client := &fakeExplorer{}
	w, store, p := newTestWatcher(client)
	small := invoicedOrder(t, p, 300)
	large := invoicedOrder(t, p, 3000)

	client.transfers = []*explorer.Transfer{
		{TxID: "0xbig", Amount: decimal.NewFromInt(2995), To: "0xagency", BlockHeight: 60},
	}
	require.NoError(t, w.scanOnce(context.Background()))

	storedSmall, err := store.GetOrder(context.Background(), small.ID)
	require.NoError(t, err)
	assert.True(t, storedSmall.ReceivedAmount.IsZero())

	storedLarge, err := store.GetOrder(context.Background(), large.ID)
	require.NoError(t, err)
	assert.Equal(t, ordertypes.StatePaid, storedLarge.State)
}

func TestScanOnceExplorerFailureKeepsCursor(t *testing.T) {
	client := &fakeExplorer{err: errors.New("rate limited")}
	w, store, p := newTestWatcher(client)
	invoicedOrder(t, p, 300)

	require.NoError(t, store.SetCursor(context.Background(), 40))
	require.Error(t, w.scanOnce(context.Background()))

	cursor, err := store.Cursor(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(40), cursor)
}

func TestScanOncePassesCursorToExplorer(t *testing.T) {
	client := &fakeExplorer{}
	w, store, _ := newTestWatcher(client)

	require.NoError(t, store.SetCursor(context.Background(), 77))
	require.NoError(t, w.scanOnce(context.Background()))
	require.Len(t, client.since, 1)
	assert.Equal(t, uint64(77), client.since[0])
}
