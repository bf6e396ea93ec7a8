package pipeline

import (
	"fmt"

	ordertypes "github.com/nexusagency/nexus-scheduler/pkg/order/types"
)

type Event string

const (
	EventVet      Event = "vet"
	EventApprove  Event = "approve"
	EventReject   Event = "reject"
	EventDispatch Event = "dispatch"
	EventDeliver  Event = "deliver"
	EventInvoice  Event = "invoice"
	EventPay      Event = "pay"
	EventOverdue  Event = "overdue"
	EventClose    Event = "close"
)

// transitions is the closed set of legal state changes. Anything not listed
// here fails with ErrInvalidTransition; there is no other way to move an
// order between states.
var transitions = map[ordertypes.OrderState]map[Event]ordertypes.OrderState{
	ordertypes.StateIntake: {
		EventVet: ordertypes.StateVetting,
	},
	ordertypes.StateVetting: {
		EventApprove: ordertypes.StateApproved,
		EventReject:  ordertypes.StateRejected,
	},
	ordertypes.StateApproved: {
		EventDispatch: ordertypes.StateInProgress,
	},
	ordertypes.StateInProgress: {
		EventDeliver: ordertypes.StateDelivered,
	},
	ordertypes.StateDelivered: {
		EventInvoice: ordertypes.StateInvoiced,
	},
	ordertypes.StateInvoiced: {
		EventPay:     ordertypes.StatePaid,
		EventOverdue: ordertypes.StateOverdue,
	},
	ordertypes.StateOverdue: {
		EventPay: ordertypes.StatePaid,
	},
	ordertypes.StatePaid: {
		EventClose: ordertypes.StateClosed,
	},
}

func nextState(state ordertypes.OrderState, event Event) (ordertypes.OrderState, error) {
	next, ok := transitions[state][event]
	if !ok {
		return state, fmt.Errorf("%w: %v from %v", ErrInvalidTransition, event, state)
	}
	return next, nil
}
