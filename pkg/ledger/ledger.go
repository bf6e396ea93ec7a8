package ledger

import (
	"context"
	"errors"

	ordertypes "github.com/nexusagency/nexus-scheduler/pkg/order/types"
)

var (
	// ErrNotFound is returned when no order exists for the given ID.
	ErrNotFound = errors.New("order not found")
	// ErrExists is returned when creating an order whose ID is taken.
	ErrExists = errors.New("order already exists")
	// ErrTxApplied is returned when a payment commit would apply a tx_id a
	// second time. It signals a consistency violation at commit time; callers
	// that pre-check TxSeen treat it as an idempotent replay.
	ErrTxApplied = errors.New("transaction already applied")
)

// Store is the durable ledger behind the pipeline. Implementations must make
// ApplyPayment atomic: the order update and the tx_id seen mark commit
// together or not at all.
type Store interface {
	CreateOrder(ctx context.Context, order *ordertypes.Order) error
	GetOrder(ctx context.Context, id string) (*ordertypes.Order, error)
	UpdateOrder(ctx context.Context, order *ordertypes.Order) error
	ListOrders(ctx context.Context, states ...ordertypes.OrderState) ([]*ordertypes.Order, error)

	ApplyPayment(ctx context.Context, order *ordertypes.Order, obs *ordertypes.PaymentObservation) error
	TxSeen(ctx context.Context, txID string) (bool, error)

	Cursor(ctx context.Context) (uint64, error)
	SetCursor(ctx context.Context, height uint64) error
}
