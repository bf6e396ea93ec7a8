package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/nexusagency/nexus-scheduler/pkg/logger"
)

type EventKind string

const (
	EventLeadReceived     EventKind = "lead_received"
	EventOrderApproved    EventKind = "order_approved"
	EventOrderRejected    EventKind = "order_rejected"
	EventWorkDelivered    EventKind = "work_delivered"
	EventInvoiceIssued    EventKind = "invoice_issued"
	EventPaymentConfirmed EventKind = "payment_confirmed"
	EventPaymentReminder  EventKind = "payment_reminder"
	EventOrderClosed      EventKind = "order_closed"
	EventPipelineError    EventKind = "pipeline_error"
)

// Event is one business notification. Delivery is fire-and-forget; a lost
// notification never blocks or rolls back a transition.
type Event struct {
	Kind    EventKind              `json:"kind"`
	OrderID string                 `json:"order_id"`
	Message string                 `json:"message"`
	Detail  map[string]interface{} `json:"detail,omitempty"`
}

type Notifier interface {
	Notify(ctx context.Context, event *Event) error
}

// LogNotifier writes events to the structured log. It is the default sink
// when no webhook is configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Notify(ctx context.Context, event *Event) error {
	logger.Sugar().Infow(
		"Notify",
		"Kind", event.Kind,
		"OrderID", event.OrderID,
		"Message", event.Message,
	)
	return nil
}

// WebhookNotifier posts events as JSON to an operator-owned endpoint, a chat
// bridge or similar.
type WebhookNotifier struct {
	cli      *resty.Client
	endpoint string
}

func NewWebhookNotifier(endpoint string) *WebhookNotifier {
	cli := resty.New()
	cli = cli.SetTimeout(10 * time.Second)
	return &WebhookNotifier{
		cli:      cli,
		endpoint: endpoint,
	}
}

func (n *WebhookNotifier) Notify(ctx context.Context, event *Event) error {
	resp, err := n.cli.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(event).
		Post(n.endpoint)
	if err != nil {
		return fmt.Errorf("fail post event %v: %v", event.Kind, err)
	}
	if resp.IsError() {
		return fmt.Errorf("fail post event %v: %v", event.Kind, resp.Status())
	}
	return nil
}
