package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/urfave/cli/v2"

	"github.com/nexusagency/nexus-scheduler/api"
	"github.com/nexusagency/nexus-scheduler/pkg/config"
	"github.com/nexusagency/nexus-scheduler/pkg/explorer/polygonscan"
	"github.com/nexusagency/nexus-scheduler/pkg/gatekeeper"
	"github.com/nexusagency/nexus-scheduler/pkg/invoicer"
	"github.com/nexusagency/nexus-scheduler/pkg/ledger"
	"github.com/nexusagency/nexus-scheduler/pkg/ledger/memstore"
	"github.com/nexusagency/nexus-scheduler/pkg/ledger/redisstore"
	"github.com/nexusagency/nexus-scheduler/pkg/logger"
	"github.com/nexusagency/nexus-scheduler/pkg/notify"
	"github.com/nexusagency/nexus-scheduler/pkg/order"
	"github.com/nexusagency/nexus-scheduler/pkg/order/common"
	"github.com/nexusagency/nexus-scheduler/pkg/order/vetting"
	"github.com/nexusagency/nexus-scheduler/pkg/payment"
	"github.com/nexusagency/nexus-scheduler/pkg/payment/watch"
	"github.com/nexusagency/nexus-scheduler/pkg/pipeline"
	"github.com/nexusagency/nexus-scheduler/pkg/producer"
	redis2 "github.com/nexusagency/nexus-scheduler/pkg/redis"
)

var runCmd = &cli.Command{
	Name:    "run",
	Aliases: []string{"s"},
	Usage:   "Run the daemon",
	Action: func(c *cli.Context) error {
		return run(c.Context, c.String("config"))
	},
}

func newStore() (ledger.Store, error) {
	if endpoint := config.RedisEndpoint(); endpoint != "" {
		cli, err := redis2.GetClient()
		if err != nil {
			return nil, err
		}
		return redisstore.NewStore(cli), nil
	}
	logger.Sugar().Warnw(
		"newStore",
		"State", "InMemory",
	)
	return memstore.NewStore(), nil
}

func newNotifier() notify.Notifier {
	if webhook := config.NotifyWebhook(); webhook != "" {
		return notify.NewWebhookNotifier(webhook)
	}
	return notify.NewLogNotifier()
}

func run(ctx context.Context, cfgFile string) error {
	if err := config.Init(cfgFile); err != nil {
		return err
	}
	if err := logger.Init(config.LogLevel()); err != nil {
		return err
	}
	if err := redis2.Init(config.RedisEndpoint()); err != nil {
		return err
	}

	logger.Sugar().Infow(
		"run",
		"Subsystems", config.Subsystems(),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store, err := newStore()
	if err != nil {
		return err
	}
	notifier := newNotifier()
	local := producer.NewLocal()
	pl := pipeline.NewPipeline(store, config.PaymentTolerancePercent())

	deps := &common.Deps{
		Store:    store,
		Pipeline: pl,
		Policy: &gatekeeper.Policy{
			MinimumMarginPercent: config.MinimumMarginPercent(),
			MinimumOrderAmount:   config.MinimumOrderAmount(),
		},
		Producer: local,
		Invoicer: invoicer.NewFileGenerator(config.InvoiceDir(), invoicer.PaymentDetails{
			WalletAddress: config.ReceivingAddress(),
		}),
		Notifier:        notifier,
		OverdueDeadline: config.OverdueDeadline(),
	}

	order.Initialize(ctx, cancel, deps)
	payment.Initialize(ctx, cancel, watch.NewWatcher(watch.Config{
		Store:            store,
		Pipeline:         pl,
		Client:           polygonscan.NewClient(config.ExplorerEndpoint(), config.ExplorerAPIKey()),
		Notifier:         notifier,
		ReceivingAddress: config.ReceivingAddress(),
		TolerancePercent: config.PaymentTolerancePercent(),
		PollInterval:     config.PollInterval(),
		PollTimeout:      config.PollTimeout(),
	}))

	go watchSignals(cancel)

	err = api.NewServer(pl, local, notifier, vetting.Trigger).Run(ctx, config.APIListen())

	order.Finalize(ctx)
	return err
}

func watchSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigs
	logger.Sugar().Infow(
		"watchSignals",
		"Signal", sig,
	)
	cancel()
}
