package payment

import (
	"context"

	"github.com/nexusagency/nexus-scheduler/pkg/action"
	"github.com/nexusagency/nexus-scheduler/pkg/config"
	"github.com/nexusagency/nexus-scheduler/pkg/logger"
	"github.com/nexusagency/nexus-scheduler/pkg/payment/watch"
)

const subsystem = "payment"

func Initialize(ctx context.Context, cancel context.CancelFunc, watcher *watch.Watcher) {
	if b := config.SupportSubsystem(subsystem); !b {
		return
	}
	if watcher.ReceivingAddress == "" {
		logger.Sugar().Warnw(
			"Initialize",
			"Subsystem", subsystem,
			"State", "NoReceivingAddress",
		)
		return
	}
	logger.Sugar().Infow(
		"Initialize",
		"Subsystem", subsystem,
	)
	go action.Watch(ctx, cancel, watcher.Watch)
}
