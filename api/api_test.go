package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusagency/nexus-scheduler/pkg/gatekeeper"
	"github.com/nexusagency/nexus-scheduler/pkg/ledger/memstore"
	"github.com/nexusagency/nexus-scheduler/pkg/notify"
	ordertypes "github.com/nexusagency/nexus-scheduler/pkg/order/types"
	"github.com/nexusagency/nexus-scheduler/pkg/pipeline"
	"github.com/nexusagency/nexus-scheduler/pkg/producer"
)

func newTestServer() (*Server, *pipeline.Pipeline, *producer.Local) {
	gin.SetMode(gin.TestMode)
	store := memstore.NewStore()
	p := pipeline.NewPipeline(store, decimal.NewFromInt(2))
	local := producer.NewLocal()
	return NewServer(p, local, notify.NewLogNotifier(), nil), p, local
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestCreateOrder(t *testing.T) {
	s, _, _ := newTestServer()

	rec := doJSON(t, s, http.MethodPost, "/v1/orders", gin.H{
		"title":          "landing page",
		"client_name":    "acme",
		"budget_amount":  "300",
		"estimated_cost": "100",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	view := ordertypes.OrderView{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.NotEmpty(t, view.ID)
	assert.Equal(t, ordertypes.StateVetting, view.State)
}

func TestCreateOrderValidation(t *testing.T) {
	s, _, _ := newTestServer()

	rec := doJSON(t, s, http.MethodPost, "/v1/orders", gin.H{
		"budget_amount": "300",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/v1/orders", gin.H{
		"title":         "free work",
		"budget_amount": "0",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrderNotFound(t *testing.T) {
	s, _, _ := newTestServer()
	rec := doJSON(t, s, http.MethodGet, "/v1/orders/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestManualPaymentConflict(t *testing.T) {
	s, p, _ := newTestServer()
	ctx := context.Background()

	order, err := p.Intake(ctx, &pipeline.IntakeRequest{
		Title:         "site",
		BudgetAmount:  decimal.NewFromInt(300),
		EstimatedCost: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	// Still in vetting; payments are not accepted yet.
	rec := doJSON(t, s, http.MethodPost, "/v1/orders/"+order.ID+"/payments", gin.H{
		"amount":    "300",
		"reference": "WIRE-1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestManualPaymentPays(t *testing.T) {
	s, p, _ := newTestServer()
	ctx := context.Background()

	order, err := p.Intake(ctx, &pipeline.IntakeRequest{
		Title:         "site",
		BudgetAmount:  decimal.NewFromInt(300),
		EstimatedCost: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	require.NoError(t, p.Approve(ctx, order.ID, &gatekeeper.Verdict{Approved: true}))
	require.NoError(t, p.Dispatch(ctx, order.ID))
	require.NoError(t, p.Deliver(ctx, order.ID, "ref"))
	require.NoError(t, p.AttachInvoice(ctx, order.ID, "INV-API", ordertypes.MethodBank))

	rec := doJSON(t, s, http.MethodPost, "/v1/orders/"+order.ID+"/payments", gin.H{
		"amount":    "300",
		"reference": "WIRE-1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	view := ordertypes.OrderView{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, ordertypes.StatePaid, view.State)
}

func TestCompleteWork(t *testing.T) {
	s, _, local := newTestServer()

	rec := doJSON(t, s, http.MethodPost, "/v1/orders/unknown/completions", gin.H{
		"success":      true,
		"artifact_ref": "https://artifacts/x",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.NoError(t, local.Submit(context.Background(), &producer.Brief{
		OrderID: "order-1",
		Title:   "site",
	}))
	rec = doJSON(t, s, http.MethodPost, "/v1/orders/order-1/completions", gin.H{
		"success":      true,
		"artifact_ref": "https://artifacts/x",
	})
	assert.Equal(t, http.StatusAccepted, rec.Code)

	completion := <-local.Completions()
	assert.Equal(t, "order-1", completion.OrderID)
	assert.True(t, completion.Success)
}

func TestListAndStats(t *testing.T) {
	s, p, _ := newTestServer()
	ctx := context.Background()

	_, err := p.Intake(ctx, &pipeline.IntakeRequest{
		Title:         "one",
		BudgetAmount:  decimal.NewFromInt(300),
		EstimatedCost: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	rec := doJSON(t, s, http.MethodGet, "/v1/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listing := struct {
		Orders []ordertypes.OrderView `json:"orders"`
	}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Len(t, listing.Orders, 1)

	rec = doJSON(t, s, http.MethodGet, "/v1/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := pipeline.Stats{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Total)
}
