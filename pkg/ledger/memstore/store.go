package memstore

import (
	"context"
	"sync"

	"github.com/nexusagency/nexus-scheduler/pkg/ledger"
	ordertypes "github.com/nexusagency/nexus-scheduler/pkg/order/types"
)

// Store is an in-process ledger used by tests and single-binary dev runs.
// All methods copy orders on the way in and out so callers never alias the
// stored record.
type Store struct {
	mu     sync.RWMutex
	orders map[string]*ordertypes.Order
	seen   map[string]struct{}
	cursor uint64
}

func NewStore() *Store {
	return &Store{
		orders: map[string]*ordertypes.Order{},
		seen:   map[string]struct{}{},
	}
}

func clone(order *ordertypes.Order) *ordertypes.Order {
	o := *order
	return &o
}

func (s *Store) CreateOrder(ctx context.Context, order *ordertypes.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[order.ID]; ok {
		return ledger.ErrExists
	}
	s.orders[order.ID] = clone(order)
	return nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (*ordertypes.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	return clone(order), nil
}

func (s *Store) UpdateOrder(ctx context.Context, order *ordertypes.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[order.ID]; !ok {
		return ledger.ErrNotFound
	}
	s.orders[order.ID] = clone(order)
	return nil
}

func (s *Store) ListOrders(ctx context.Context, states ...ordertypes.OrderState) ([]*ordertypes.Order, error) {
	wanted := map[ordertypes.OrderState]bool{}
	for _, state := range states {
		wanted[state] = true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := []*ordertypes.Order{}
	for _, order := range s.orders {
		if len(states) == 0 || wanted[order.State] {
			orders = append(orders, clone(order))
		}
	}
	return orders, nil
}

func (s *Store) ApplyPayment(ctx context.Context, order *ordertypes.Order, obs *ordertypes.PaymentObservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[order.ID]; !ok {
		return ledger.ErrNotFound
	}
	if _, ok := s.seen[obs.TxID]; ok {
		return ledger.ErrTxApplied
	}
	s.seen[obs.TxID] = struct{}{}
	s.orders[order.ID] = clone(order)
	return nil
}

func (s *Store) TxSeen(ctx context.Context, txID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.seen[txID]
	return ok, nil
}

func (s *Store) Cursor(ctx context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursor, nil
}

func (s *Store) SetCursor(ctx context.Context, height uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor = height
	return nil
}
