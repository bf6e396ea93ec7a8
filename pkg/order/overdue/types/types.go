package types

import (
	ordertypes "github.com/nexusagency/nexus-scheduler/pkg/order/types"
)

type PersistentOrder struct {
	*ordertypes.Order
}
