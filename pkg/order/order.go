package order

import (
	"context"
	"sync"

	"github.com/nexusagency/nexus-scheduler/pkg/config"
	"github.com/nexusagency/nexus-scheduler/pkg/logger"
	"github.com/nexusagency/nexus-scheduler/pkg/order/common"
	"github.com/nexusagency/nexus-scheduler/pkg/order/dispatch"
	"github.com/nexusagency/nexus-scheduler/pkg/order/finish"
	"github.com/nexusagency/nexus-scheduler/pkg/order/fulfillment"
	"github.com/nexusagency/nexus-scheduler/pkg/order/invoice"
	"github.com/nexusagency/nexus-scheduler/pkg/order/overdue"
	"github.com/nexusagency/nexus-scheduler/pkg/order/vetting"
)

const subsystem = "order"

var running sync.Map

func Initialize(ctx context.Context, cancel context.CancelFunc, deps *common.Deps) {
	if b := config.SupportSubsystem(subsystem); !b {
		return
	}
	logger.Sugar().Infow(
		"Initialize",
		"Subsystem", subsystem,
	)

	vetting.Initialize(ctx, cancel, &running, deps)
	dispatch.Initialize(ctx, cancel, &running, deps)
	fulfillment.Initialize(ctx, cancel, &running, deps)
	invoice.Initialize(ctx, cancel, &running, deps)
	overdue.Initialize(ctx, cancel, &running, deps)
	finish.Initialize(ctx, cancel, &running, deps)
}

func Finalize(ctx context.Context) {
	if b := config.SupportSubsystem(subsystem); !b {
		return
	}
	finish.Finalize(ctx)
	overdue.Finalize(ctx)
	invoice.Finalize(ctx)
	fulfillment.Finalize(ctx)
	dispatch.Finalize(ctx)
	vetting.Finalize(ctx)
}
