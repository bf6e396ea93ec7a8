package invoice

import (
	"context"
	"sync"

	"github.com/nexusagency/nexus-scheduler/pkg/base"
	"github.com/nexusagency/nexus-scheduler/pkg/config"
	"github.com/nexusagency/nexus-scheduler/pkg/logger"
	"github.com/nexusagency/nexus-scheduler/pkg/order/common"
	"github.com/nexusagency/nexus-scheduler/pkg/order/invoice/executor"
	"github.com/nexusagency/nexus-scheduler/pkg/order/invoice/notif"
	"github.com/nexusagency/nexus-scheduler/pkg/order/invoice/persistent"
	"github.com/nexusagency/nexus-scheduler/pkg/order/invoice/sentinel"
)

const subsystem = "invoice"

var h *base.Handler

func Initialize(ctx context.Context, cancel context.CancelFunc, running *sync.Map, deps *common.Deps) {
	_h, err := base.NewHandler(
		ctx,
		cancel,
		base.WithSubsystem(subsystem),
		base.WithScanInterval(config.ScanInterval()),
		base.WithScanner(sentinel.NewSentinel(deps)),
		base.WithExec(executor.NewExecutor(deps)),
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
