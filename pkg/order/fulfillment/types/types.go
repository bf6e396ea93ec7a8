package types

import (
	ordertypes "github.com/nexusagency/nexus-scheduler/pkg/order/types"
	"github.com/nexusagency/nexus-scheduler/pkg/producer"
)

type PersistentOrder struct {
	*ordertypes.Order
	Completion *producer.Completion
	Error      error
}
