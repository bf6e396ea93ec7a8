package types

import (
	"github.com/nexusagency/nexus-scheduler/pkg/gatekeeper"
	ordertypes "github.com/nexusagency/nexus-scheduler/pkg/order/types"
)

type PersistentOrder struct {
	*ordertypes.Order
	Verdict *gatekeeper.Verdict
	Error   error
}
