package fulfillment

import (
	"context"
	"sync"

	"github.com/nexusagency/nexus-scheduler/pkg/base"
	"github.com/nexusagency/nexus-scheduler/pkg/config"
	"github.com/nexusagency/nexus-scheduler/pkg/logger"
	"github.com/nexusagency/nexus-scheduler/pkg/order/common"
	"github.com/nexusagency/nexus-scheduler/pkg/order/fulfillment/executor"
	"github.com/nexusagency/nexus-scheduler/pkg/order/fulfillment/notif"
	"github.com/nexusagency/nexus-scheduler/pkg/order/fulfillment/persistent"
	"github.com/nexusagency/nexus-scheduler/pkg/order/fulfillment/sentinel"
)

const subsystem = "fulfillment"

var h *base.Handler

func Initialize(ctx context.Context, cancel context.CancelFunc, running *sync.Map, deps *common.Deps) {
	_h, err := base.NewHandler(
		ctx,
		cancel,
		base.WithSubsystem(subsystem),
		base.WithScanInterval(config.ScanInterval()),
		base.WithScanner(sentinel.NewSentinel(deps)),
		base.WithExec(executor.NewExecutor()),
		base.WithPersistenter(persistent.NewPersistent(deps)),
		base.WithNotify(notif.NewNotif(deps)),
		base.WithRunningMap(running),
	)
	if err != nil || _h == nil {
		if err != nil {
			logger.Sugar().Errorw(
				"Initialize",
				"Subsystem", subsystem,
				"Error", err,
			)
		}
		return
	}

	h = _h
	go h.Run(ctx, cancel)
	go pump(ctx, deps)
}

// pump forwards production completions into the subsystem as triggers.
func pump(ctx context.Context, deps *common.Deps) {
	for {
		select {
		case completion := <-deps.Producer.Completions():
			h.Trigger(completion)
		case <-ctx.Done():
			return
		}
	}
}

func Finalize(ctx context.Context) {
	if h != nil {
		h.Finalize(ctx)
	}
}
