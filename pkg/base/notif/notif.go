package notif

import (
	"context"

	"github.com/nexusagency/nexus-scheduler/pkg/action"
	"github.com/nexusagency/nexus-scheduler/pkg/base/cancelablefeed"
	"github.com/nexusagency/nexus-scheduler/pkg/logger"
	"github.com/nexusagency/nexus-scheduler/pkg/watcher"
)

// Notify fans a processed entity out to external observers. Best effort;
// failures are logged and never fed back into the pipeline.
type Notify interface {
	Notify(ctx context.Context, ent interface{}) error
}

type Notif interface {
	Feed(ctx context.Context, ent interface{})
	Finalize(ctx context.Context)
}

type handler struct {
	feeder    chan interface{}
	notify    Notify
	w         *watcher.Watcher
	subsystem string
}

func NewNotif(ctx context.Context, cancel context.CancelFunc, notify Notify, subsystem string) Notif {
	p := &handler{
		feeder:    make(chan interface{}),
		notify:    notify,
		w:         watcher.NewWatcher(),
		subsystem: subsystem,
	}
	go action.Watch(ctx, cancel, p.run)
	return p
}

func (p *handler) handler(ctx context.Context) bool {
	select {
	case ent := <-p.feeder:
		if p.notify == nil {
			return false
		}
		if err := p.notify.Notify(ctx, ent); err != nil {
			logger.Sugar().Infow(
				"handler",
				"State", "Notify",
				"Subsystem", p.subsystem,
				"Error", err,
			)
		}
		return false
	case <-ctx.Done():
		close(p.w.ClosedChan())
		return true
	case <-p.w.CloseChan():
		close(p.w.ClosedChan())
		return true
	}
}

func (p *handler) run(ctx context.Context) {
	for {
		if b := p.handler(ctx); b {
			break
		}
	}
}

func (p *handler) Finalize(ctx context.Context) {
	if p != nil && p.w != nil {
		p.w.Shutdown(ctx)
	}
}

func (p *handler) Feed(ctx context.Context, ent interface{}) {
	cancelablefeed.CancelableFeed(ctx, ent, p.feeder)
}
