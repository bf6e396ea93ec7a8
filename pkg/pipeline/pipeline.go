package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nexusagency/nexus-scheduler/pkg/gatekeeper"
	"github.com/nexusagency/nexus-scheduler/pkg/ledger"
	"github.com/nexusagency/nexus-scheduler/pkg/logger"
	ordertypes "github.com/nexusagency/nexus-scheduler/pkg/order/types"
)

var (
	// ErrInvalidInput is returned for malformed intake or payment requests.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidTransition is returned when an event is not legal for the
	// order's current state.
	ErrInvalidTransition = errors.New("invalid transition")
)

var hundred = decimal.NewFromInt(100)

// IntakeRequest carries the raw lead fields. Budget must be positive and
// estimated cost non-negative; everything else is free text.
type IntakeRequest struct {
	Title         string
	Description   string
	ClientName    string
	BudgetAmount  decimal.Decimal
	EstimatedCost decimal.Decimal
}

// Stats is a point-in-time aggregate over the ledger.
type Stats struct {
	Total          int                           `json:"total"`
	ByState        map[ordertypes.OrderState]int `json:"by_state"`
	TotalBudget    decimal.Decimal               `json:"total_budget"`
	TotalReceived  decimal.Decimal               `json:"total_received"`
	ApprovedBudget decimal.Decimal               `json:"approved_budget"`
}

// Pipeline owns every state mutation of every order. Mutations on the same
// order are serialized through a per-order mutex; the underlying store only
// ever sees one writer per order at a time.
type Pipeline struct {
	store            ledger.Store
	tolerancePercent decimal.Decimal
	locks            sync.Map
}

func NewPipeline(store ledger.Store, tolerancePercent decimal.Decimal) *Pipeline {
	return &Pipeline{
		store:            store,
		tolerancePercent: tolerancePercent,
	}
}

func (p *Pipeline) lock(id string) func() {
	mu, _ := p.locks.LoadOrStore(id, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
	return mu.(*sync.Mutex).Unlock
}

// Intake registers a lead and immediately queues it for vetting.
func (p *Pipeline) Intake(ctx context.Context, req *IntakeRequest) (*ordertypes.Order, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("%w: empty title", ErrInvalidInput)
	}
	if req.BudgetAmount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: budget %v not positive", ErrInvalidInput, req.BudgetAmount)
	}
	if req.EstimatedCost.Sign() < 0 {
		return nil, fmt.Errorf("%w: estimated cost %v negative", ErrInvalidInput, req.EstimatedCost)
	}

	now := time.Now()
	order := &ordertypes.Order{
		ID:            uuid.NewString(),
		Title:         req.Title,
		Description:   req.Description,
		ClientName:    req.ClientName,
		BudgetAmount:  req.BudgetAmount,
		EstimatedCost: req.EstimatedCost,
		State:         ordertypes.StateIntake,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := p.store.CreateOrder(ctx, order); err != nil {
		return nil, err
	}
	if err := p.transition(ctx, order.ID, EventVet, nil); err != nil {
		return nil, err
	}
	return p.store.GetOrder(ctx, order.ID)
}

type mutator func(order *ordertypes.Order) error

// transition moves one order through one event under its per-order lock,
// rereading the order so the check and the write see the same state.
func (p *Pipeline) transition(ctx context.Context, id string, event Event, mutate mutator) error {
	unlock := p.lock(id)
	defer unlock()

	order, err := p.store.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	next, err := nextState(order.State, event)
	if err != nil {
		return err
	}
	from := order.State
	order.State = next
	order.UpdatedAt = time.Now()
	if mutate != nil {
		if err := mutate(order); err != nil {
			return err
		}
	}
	if err := p.store.UpdateOrder(ctx, order); err != nil {
		return err
	}
	logger.Sugar().Infow(
		"transition",
		"OrderID", id,
		"Event", event,
		"From", from,
		"To", order.State,
	)
	return nil
}

// Approve records a passing verdict and moves the order to approved.
func (p *Pipeline) Approve(ctx context.Context, id string, verdict *gatekeeper.Verdict) error {
	return p.transition(ctx, id, EventApprove, func(order *ordertypes.Order) error {
		order.MarginPercent = verdict.MarginPercent
		return nil
	})
}

// Reject terminates the order with the vetting reason. Rejected orders stay
// in the ledger for audit.
func (p *Pipeline) Reject(ctx context.Context, id string, reason string) error {
	return p.transition(ctx, id, EventReject, func(order *ordertypes.Order) error {
		order.RejectReason = reason
		return nil
	})
}

func (p *Pipeline) Dispatch(ctx context.Context, id string) error {
	return p.transition(ctx, id, EventDispatch, nil)
}

// Deliver records the work artifact and fixes the expected payment at the
// agreed budget.
func (p *Pipeline) Deliver(ctx context.Context, id, artifactRef string) error {
	return p.transition(ctx, id, EventDeliver, func(order *ordertypes.Order) error {
		order.ArtifactRef = artifactRef
		order.ExpectedPaymentAmount = order.BudgetAmount
		return nil
	})
}

// AttachInvoice binds a generated invoice reference to a delivered order.
// An order carries exactly one invoice for life.
func (p *Pipeline) AttachInvoice(ctx context.Context, id, invoiceRef string, method ordertypes.PaymentMethod) error {
	return p.transition(ctx, id, EventInvoice, func(order *ordertypes.Order) error {
		if order.InvoiceRef != "" {
			return fmt.Errorf("%w: invoice %v already attached", ErrInvalidTransition, order.InvoiceRef)
		}
		order.InvoiceRef = invoiceRef
		order.PaymentMethod = method
		order.InvoicedAt = time.Now()
		return nil
	})
}

func (p *Pipeline) MarkOverdue(ctx context.Context, id string) error {
	return p.transition(ctx, id, EventOverdue, nil)
}

func (p *Pipeline) Close(ctx context.Context, id string) error {
	return p.transition(ctx, id, EventClose, nil)
}

// sufficient reports whether received clears expected within the tolerance,
// received >= expected * (1 - tolerance/100).
func (p *Pipeline) sufficient(received, expected decimal.Decimal) bool {
	floor := expected.Mul(hundred.Sub(p.tolerancePercent)).Div(hundred)
	return received.GreaterThanOrEqual(floor)
}

// ApplyPayment credits one observed transaction against an order. A tx_id is
// applied at most once; replays return without changing anything. When the
// accumulated amount clears the tolerance floor the order moves to paid,
// whether it was invoiced or already overdue.
func (p *Pipeline) ApplyPayment(ctx context.Context, id string, obs *ordertypes.PaymentObservation) error {
	if obs.TxID == "" {
		return fmt.Errorf("%w: empty tx_id", ErrInvalidInput)
	}
	if obs.Amount.Sign() <= 0 {
		return fmt.Errorf("%w: amount %v not positive", ErrInvalidInput, obs.Amount)
	}

	unlock := p.lock(id)
	defer unlock()

	seen, err := p.store.TxSeen(ctx, obs.TxID)
	if err != nil {
		return err
	}
	if seen {
		logger.Sugar().Infow(
			"ApplyPayment",
			"OrderID", id,
			"TxID", obs.TxID,
			"State", "Replayed",
		)
		return nil
	}

	order, err := p.store.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	if order.State != ordertypes.StateInvoiced && order.State != ordertypes.StateOverdue {
		return fmt.Errorf("%w: payment in %v", ErrInvalidTransition, order.State)
	}

	from := order.State
	order.ReceivedAmount = order.ReceivedAmount.Add(obs.Amount)
	order.UpdatedAt = time.Now()
	paid := p.sufficient(order.ReceivedAmount, order.ExpectedPaymentAmount)
	if paid {
		next, err := nextState(order.State, EventPay)
		if err != nil {
			return err
		}
		order.State = next
		order.PaidAt = time.Now()
	}

	if err := p.store.ApplyPayment(ctx, order, obs); err != nil {
		if errors.Is(err, ledger.ErrTxApplied) {
			// Lost a commit race on the seen set; the tx landed elsewhere.
			return nil
		}
		return err
	}

	logger.Sugar().Infow(
		"ApplyPayment",
		"OrderID", id,
		"TxID", obs.TxID,
		"Amount", obs.Amount,
		"Received", order.ReceivedAmount,
		"Expected", order.ExpectedPaymentAmount,
		"From", from,
		"To", order.State,
	)
	return nil
}

// ConfirmPaymentManual records an out-of-band payment, bank wire or card,
// confirmed by an operator. The reference deduplicates repeated submissions
// the same way an on-chain tx_id would.
func (p *Pipeline) ConfirmPaymentManual(ctx context.Context, id string, amount decimal.Decimal, reference string, method ordertypes.PaymentMethod) error {
	if reference == "" {
		return fmt.Errorf("%w: empty payment reference", ErrInvalidInput)
	}
	switch method {
	case ordertypes.MethodBank, ordertypes.MethodCard, ordertypes.MethodCrypto:
	default:
		return fmt.Errorf("%w: unknown payment method %v", ErrInvalidInput, method)
	}
	obs := &ordertypes.PaymentObservation{
		TxID:       fmt.Sprintf("manual:%v", reference),
		Amount:     amount,
		ObservedAt: time.Now(),
	}
	return p.ApplyPayment(ctx, id, obs)
}

func (p *Pipeline) GetStatus(ctx context.Context, id string) (*ordertypes.OrderView, error) {
	order, err := p.store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return order.View(), nil
}

// ListActive returns every order not yet in a terminal state.
func (p *Pipeline) ListActive(ctx context.Context) ([]*ordertypes.OrderView, error) {
	states := []ordertypes.OrderState{}
	for _, state := range ordertypes.OrderStates {
		if !state.Terminal() {
			states = append(states, state)
		}
	}
	orders, err := p.store.ListOrders(ctx, states...)
	if err != nil {
		return nil, err
	}
	views := []*ordertypes.OrderView{}
	for _, order := range orders {
		views = append(views, order.View())
	}
	return views, nil
}

func (p *Pipeline) Stats(ctx context.Context) (*Stats, error) {
	orders, err := p.store.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	stats := &Stats{
		ByState: map[ordertypes.OrderState]int{},
	}
	for _, order := range orders {
		stats.Total++
		stats.ByState[order.State]++
		stats.TotalBudget = stats.TotalBudget.Add(order.BudgetAmount)
		stats.TotalReceived = stats.TotalReceived.Add(order.ReceivedAmount)
		switch order.State {
		case ordertypes.StateIntake, ordertypes.StateVetting, ordertypes.StateRejected:
		default:
			stats.ApprovedBudget = stats.ApprovedBudget.Add(order.BudgetAmount)
		}
	}
	return stats, nil
}
