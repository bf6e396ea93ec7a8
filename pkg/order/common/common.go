package common

import (
	"time"

	"github.com/nexusagency/nexus-scheduler/pkg/gatekeeper"
	"github.com/nexusagency/nexus-scheduler/pkg/invoicer"
	"github.com/nexusagency/nexus-scheduler/pkg/ledger"
	"github.com/nexusagency/nexus-scheduler/pkg/notify"
	"github.com/nexusagency/nexus-scheduler/pkg/pipeline"
	"github.com/nexusagency/nexus-scheduler/pkg/producer"
)

// Deps carries everything the order subsystems share. One instance is built
// at startup and handed to each subsystem's Initialize.
type Deps struct {
	Store           ledger.Store
	Pipeline        *pipeline.Pipeline
	Policy          *gatekeeper.Policy
	Producer        producer.Producer
	Invoicer        invoicer.Generator
	Notifier        notify.Notifier
	OverdueDeadline time.Duration
}
