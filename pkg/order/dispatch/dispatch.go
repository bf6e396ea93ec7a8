package dispatch

import (
	"context"
	"sync"

	"github.com/nexusagency/nexus-scheduler/pkg/base"
	"github.com/nexusagency/nexus-scheduler/pkg/config"
	"github.com/nexusagency/nexus-scheduler/pkg/logger"
	"github.com/nexusagency/nexus-scheduler/pkg/order/common"
	"github.com/nexusagency/nexus-scheduler/pkg/order/dispatch/executor"
	"github.com/nexusagency/nexus-scheduler/pkg/order/dispatch/notif"
	"github.com/nexusagency/nexus-scheduler/pkg/order/dispatch/persistent"
	"github.com/nexusagency/nexus-scheduler/pkg/order/dispatch/sentinel"
)

const subsystem = "dispatch"

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
}

func Finalize(ctx context.Context) {
	if h != nil {
		h.Finalize(ctx)
	}
}
