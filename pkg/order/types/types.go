package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderState string

const (
	StateIntake     OrderState = "intake"
	StateVetting    OrderState = "vetting"
	StateApproved   OrderState = "approved"
	StateRejected   OrderState = "rejected"
	StateInProgress OrderState = "in_progress"
	StateDelivered  OrderState = "delivered"
	StateInvoiced   OrderState = "invoiced"
	StatePaid       OrderState = "paid"
	StateOverdue    OrderState = "overdue"
	StateClosed     OrderState = "closed"
)

// OrderStates lists every state the pipeline can hold, terminal ones last.
var OrderStates = []OrderState{
	StateIntake,
	StateVetting,
	StateApproved,
	StateInProgress,
	StateDelivered,
	StateInvoiced,
	StateOverdue,
	StatePaid,
	StateClosed,
	StateRejected,
}

func (s OrderState) Terminal() bool {
	return s == StateRejected || s == StateClosed
}

type PaymentMethod string

const (
	MethodCrypto PaymentMethod = "crypto"
	MethodBank   PaymentMethod = "bank"
	MethodCard   PaymentMethod = "card"
)

// Order is the unit of business engagement tracked from intake to close.
// State is mutated only through the pipeline's transition function; terminal
// orders are kept for audit and never deleted.
type Order struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ClientName  string `json:"client_name"`

	BudgetAmount  decimal.Decimal `json:"budget_amount"`
	EstimatedCost decimal.Decimal `json:"estimated_cost"`
	MarginPercent decimal.Decimal `json:"margin_percent"`

	State        OrderState `json:"state"`
	RejectReason string     `json:"reject_reason,omitempty"`
	ArtifactRef  string     `json:"artifact_ref,omitempty"`

	PaymentMethod         PaymentMethod   `json:"payment_method,omitempty"`
	ExpectedPaymentAmount decimal.Decimal `json:"expected_payment_amount"`
	ReceivedAmount        decimal.Decimal `json:"received_amount"`
	InvoiceRef            string          `json:"invoice_ref,omitempty"`

	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	InvoicedAt time.Time `json:"invoiced_at,omitempty"`
	PaidAt     time.Time `json:"paid_at,omitempty"`
}

// PaymentObservation is one external-ledger transaction inspected for
// relevance to an order. TxID is unique per source ledger and deduplicated
// against a persisted seen set.
type PaymentObservation struct {
	TxID             string          `json:"tx_id"`
	Amount           decimal.Decimal `json:"amount"`
	RecipientAddress string          `json:"recipient_address"`
	ObservedAt       time.Time       `json:"observed_at"`
}

type OrderView struct {
	ID                    string          `json:"id"`
	Title                 string          `json:"title"`
	ClientName            string          `json:"client_name,omitempty"`
	State                 OrderState      `json:"state"`
	BudgetAmount          decimal.Decimal `json:"budget_amount"`
	MarginPercent         decimal.Decimal `json:"margin_percent"`
	ExpectedPaymentAmount decimal.Decimal `json:"expected_payment_amount"`
	ReceivedAmount        decimal.Decimal `json:"received_amount"`
	InvoiceRef            string          `json:"invoice_ref,omitempty"`
	RejectReason          string          `json:"reject_reason,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

func (o *Order) View() *OrderView {
	return &OrderView{
		ID:                    o.ID,
		Title:                 o.Title,
		ClientName:            o.ClientName,
		State:                 o.State,
		BudgetAmount:          o.BudgetAmount,
		MarginPercent:         o.MarginPercent,
		ExpectedPaymentAmount: o.ExpectedPaymentAmount,
		ReceivedAmount:        o.ReceivedAmount,
		InvoiceRef:            o.InvoiceRef,
		RejectReason:          o.RejectReason,
		CreatedAt:             o.CreatedAt,
		UpdatedAt:             o.UpdatedAt,
	}
}
