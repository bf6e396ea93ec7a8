package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/nexusagency/nexus-scheduler/pkg/ledger"
	"github.com/nexusagency/nexus-scheduler/pkg/notify"
	ordertypes "github.com/nexusagency/nexus-scheduler/pkg/order/types"
	"github.com/nexusagency/nexus-scheduler/pkg/pipeline"
	"github.com/nexusagency/nexus-scheduler/pkg/producer"
)

// Server is the operator-facing command surface. It only ever talks to the
// pipeline; the subsystems pick changes up on their next scan. onIntake, when
// set, nudges the vetting subsystem so new leads are vetted without waiting
// for the scan interval.
type Server struct {
	pipeline *pipeline.Pipeline
	producer *producer.Local
	notifier notify.Notifier
	onIntake func(orderID string)
	router   *gin.Engine
}

func NewServer(p *pipeline.Pipeline, local *producer.Local, notifier notify.Notifier, onIntake func(orderID string)) *Server {
	s := &Server{
		pipeline: p,
		producer: local,
		notifier: notifier,
		onIntake: onIntake,
		router:   gin.New(),
	}
	s.router.Use(gin.Recovery())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	v1 := s.router.Group("/v1")
	v1.POST("/orders", s.createOrder)
	v1.GET("/orders", s.listOrders)
	v1.GET("/orders/:id", s.getOrder)
	v1.POST("/orders/:id/payments", s.confirmPayment)
	v1.POST("/orders/:id/completions", s.completeWork)
	v1.GET("/stats", s.getStats)
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func abortWith(c *gin.Context, err error) {
	c.JSON(statusOf(err), gin.H{"error": err.Error()})
}

type createOrderRequest struct {
	Title         string          `json:"title" binding:"required"`
	Description   string          `json:"description"`
	ClientName    string          `json:"client_name"`
	BudgetAmount  decimal.Decimal `json:"budget_amount"`
	EstimatedCost decimal.Decimal `json:"estimated_cost"`
}

func (s *Server) createOrder(c *gin.Context) {
	req := createOrderRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := s.pipeline.Intake(c.Request.Context(), &pipeline.IntakeRequest{
		Title:         req.Title,
		Description:   req.Description,
		ClientName:    req.ClientName,
		BudgetAmount:  req.BudgetAmount,
		EstimatedCost: req.EstimatedCost,
	})
	if err != nil {
		abortWith(c, err)
		return
	}
	if s.notifier != nil {
		_ = s.notifier.Notify(c.Request.Context(), &notify.Event{
			Kind:    notify.EventLeadReceived,
			OrderID: order.ID,
			Message: fmt.Sprintf("lead %v received, budget %v", order.Title, order.BudgetAmount),
		})
	}
	if s.onIntake != nil {
		s.onIntake(order.ID)
	}
	c.JSON(http.StatusCreated, order.View())
}

func (s *Server) getOrder(c *gin.Context) {
	view, err := s.pipeline.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) listOrders(c *gin.Context) {
	views, err := s.pipeline.ListActive(c.Request.Context())
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": views})
}

type confirmPaymentRequest struct {
	Amount    decimal.Decimal          `json:"amount"`
	Reference string                   `json:"reference" binding:"required"`
	Method    ordertypes.PaymentMethod `json:"method"`
}

func (s *Server) confirmPayment(c *gin.Context) {
	req := confirmPaymentRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Method == "" {
		req.Method = ordertypes.MethodBank
	}
	if err := s.pipeline.ConfirmPaymentManual(c.Request.Context(), c.Param("id"), req.Amount, req.Reference, req.Method); err != nil {
		abortWith(c, err)
		return
	}
	view, err := s.pipeline.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type completeWorkRequest struct {
	Success     bool   `json:"success"`
	ArtifactRef string `json:"artifact_ref"`
}

func (s *Server) completeWork(c *gin.Context) {
	if s.producer == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "external producer in use"})
		return
	}
	req := completeWorkRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.producer.Complete(c.Param("id"), req.Success, req.ArtifactRef); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

func (s *Server) getStats(c *gin.Context) {
	stats, err := s.pipeline.Stats(c.Request.Context())
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Run serves until ctx is canceled.
func (s *Server) Run(ctx context.Context, listen string) error {
	srv := &http.Server{
		Addr:    listen,
		Handler: s.router,
	}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
