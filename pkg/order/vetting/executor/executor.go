package executor

import (
	"context"
	"fmt"

	baseexecutor "github.com/nexusagency/nexus-scheduler/pkg/base/executor"
	"github.com/nexusagency/nexus-scheduler/pkg/order/common"
	ordertypes "github.com/nexusagency/nexus-scheduler/pkg/order/types"
)

type handler struct {
	deps *common.Deps
}

func NewExecutor(deps *common.Deps) baseexecutor.Exec {
	return &handler{
		deps: deps,
	}
}

func (e *handler) Exec(ctx context.Context, order interface{}, persistent, notif, done chan interface{}) error {
	_order, ok := order.(*ordertypes.Order)
	if !ok {
		return fmt.Errorf("invalid order")
	}

	h := &orderHandler{
		Order:      _order,
		deps:       e.deps,
		persistent: persistent,
		notif:      notif,
		done:       done,
	}
	return h.exec(ctx)
}
