package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	goredis "github.com/go-redis/redis/v8"

	"github.com/nexusagency/nexus-scheduler/pkg/ledger"
	ordertypes "github.com/nexusagency/nexus-scheduler/pkg/order/types"
)

const (
	orderKeyPrefix = "order:"
	stateKeyPrefix = "orders:state:"
	seenKey        = "payments:seen"
	cursorKey      = "payments:cursor"
)

// Store keeps orders as JSON values with one set per state for scanning.
// ApplyPayment runs under an optimistic transaction on the seen set so the
// order write and the tx_id mark commit together.
type Store struct {
	cli *goredis.Client
}

func NewStore(cli *goredis.Client) *Store {
	return &Store{cli: cli}
}

func orderKey(id string) string {
	return orderKeyPrefix + id
}

func stateKey(state ordertypes.OrderState) string {
	return stateKeyPrefix + string(state)
}

func marshalOrder(order *ordertypes.Order) (string, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return "", fmt.Errorf("marshal order: %w", err)
	}
	return string(body), nil
}

func (s *Store) CreateOrder(ctx context.Context, order *ordertypes.Order) error {
	body, err := marshalOrder(order)
	if err != nil {
		return err
	}
	created, err := s.cli.SetNX(ctx, orderKey(order.ID), body, 0).Result()
	if err != nil {
		return err
	}
	if !created {
		return ledger.ErrExists
	}
	return s.cli.SAdd(ctx, stateKey(order.State), order.ID).Err()
}

func (s *Store) GetOrder(ctx context.Context, id string) (*ordertypes.Order, error) {
	body, err := s.cli.Get(ctx, orderKey(id)).Result()
	if err == goredis.Nil {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	order := &ordertypes.Order{}
	if err := json.Unmarshal([]byte(body), order); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return order, nil
}

func (s *Store) writeOrder(ctx context.Context, tx goredis.Pipeliner, order *ordertypes.Order, oldState ordertypes.OrderState) error {
	body, err := marshalOrder(order)
	if err != nil {
		return err
	}
	tx.Set(ctx, orderKey(order.ID), body, 0)
	if oldState != order.State {
		tx.SMove(ctx, stateKey(oldState), stateKey(order.State), order.ID)
	}
	return nil
}

func (s *Store) UpdateOrder(ctx context.Context, order *ordertypes.Order) error {
	old, err := s.GetOrder(ctx, order.ID)
	if err != nil {
		return err
	}
	_, err = s.cli.TxPipelined(ctx, func(tx goredis.Pipeliner) error {
		return s.writeOrder(ctx, tx, order, old.State)
	})
	return err
}

func (s *Store) ListOrders(ctx context.Context, states ...ordertypes.OrderState) ([]*ordertypes.Order, error) {
	if len(states) == 0 {
		states = ordertypes.OrderStates
	}
	orders := []*ordertypes.Order{}
	for _, state := range states {
		ids, err := s.cli.SMembers(ctx, stateKey(state)).Result()
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			order, err := s.GetOrder(ctx, id)
			if err == ledger.ErrNotFound {
				continue
			}
			if err != nil {
				return nil, err
			}
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func (s *Store) ApplyPayment(ctx context.Context, order *ordertypes.Order, obs *ordertypes.PaymentObservation) error {
	// Watch the order key too, so a concurrent writer from another process
	// aborts the commit instead of losing its update.
	return s.cli.Watch(ctx, func(tx *goredis.Tx) error {
		body, err := tx.Get(ctx, orderKey(order.ID)).Result()
		if err == goredis.Nil {
			return ledger.ErrNotFound
		}
		if err != nil {
			return err
		}
		old := &ordertypes.Order{}
		if err := json.Unmarshal([]byte(body), old); err != nil {
			return fmt.Errorf("unmarshal order: %w", err)
		}
		seen, err := tx.SIsMember(ctx, seenKey, obs.TxID).Result()
		if err != nil {
			return err
		}
		if seen {
			return ledger.ErrTxApplied
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.SAdd(ctx, seenKey, obs.TxID)
			return s.writeOrder(ctx, pipe, order, old.State)
		})
		return err
	}, seenKey, orderKey(order.ID))
}

func (s *Store) TxSeen(ctx context.Context, txID string) (bool, error) {
	return s.cli.SIsMember(ctx, seenKey, txID).Result()
}

func (s *Store) Cursor(ctx context.Context) (uint64, error) {
	body, err := s.cli.Get(ctx, cursorKey).Result()
	if err == goredis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	height, err := strconv.ParseUint(body, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse cursor: %w", err)
	}
	return height, nil
}

func (s *Store) SetCursor(ctx context.Context, height uint64) error {
	return s.cli.Set(ctx, cursorKey, strconv.FormatUint(height, 10), 0).Err()
}
