package persistent

import (
	"context"

	"github.com/nexusagency/nexus-scheduler/pkg/action"
	"github.com/nexusagency/nexus-scheduler/pkg/base/cancelablefeed"
	"github.com/nexusagency/nexus-scheduler/pkg/logger"
	"github.com/nexusagency/nexus-scheduler/pkg/watcher"
)

// Persistenter commits the executor's decision durably. Implementations feed
// the entity to done (always) and to notif (when something is worth telling).
type Persistenter interface {
	Update(ctx context.Context, ent interface{}, notif, done chan interface{}) error
}

type Persistent interface {
	Feed(ctx context.Context, ent interface{})
	Finalize(ctx context.Context)
}

type handler struct {
	feeder       chan interface{}
	notif        chan interface{}
	done         chan interface{}
	persistenter Persistenter
	w            *watcher.Watcher
	subsystem    string
}

func NewPersistent(ctx context.Context, cancel context.CancelFunc, notif, done chan interface{}, persistenter Persistenter, subsystem string) Persistent {
	p := &handler{
		feeder:       make(chan interface{}),
		notif:        notif,
		done:         done,
		persistenter: persistenter,
		w:            watcher.NewWatcher(),
		subsystem:    subsystem,
	}
	go action.Watch(ctx, cancel, p.run)
	return p
}

func (p *handler) handler(ctx context.Context) bool {
	select {
	case ent := <-p.feeder:
		if err := p.persistenter.Update(ctx, ent, p.notif, p.done); err != nil {
			logger.Sugar().Infow(
				"handler",
				"State", "Update",
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
