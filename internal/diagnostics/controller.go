package diagnostics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"dorebell/internal/commons"
	"dorebell/internal/dto"
	"dorebell/internal/infrastructure/automation"

	"go.uber.org/zap"
)

const msgNotConfigured = "Make.com webhooks not configured"

type WebhookTester interface {
	Status() automation.Status
	Ping(ctx context.Context) automation.PingResult
	SendTest(ctx context.Context, testType string, data dto.WebhookTestData) (bool, error)
}

type Controller struct {
	useCase      WebhookTester
	maxBodyBytes int64
	logger       *zap.Logger
	now          func() time.Time
}

func NewController(useCase WebhookTester, maxBodyBytes int64, logger *zap.Logger) *Controller {
	return &Controller{
		useCase:      useCase,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
		now:          time.Now,
	}
}

// HandleCheck reports the webhook configuration and, when ready, pings both
// webhooks.
func (c *Controller) HandleCheck(w http.ResponseWriter, r *http.Request) {
	_, logger := commons.StartTrace(w, c.logger)

	status := c.useCase.Status()
	cfg := dto.WebhookConfigStatus{
		ContactWebhook: status.ContactConfigured,
		OrderWebhook:   status.OrderConfigured,
		Enabled:        status.Enabled,
	}

	if !status.Ready() {
		commons.WriteJSON(w, http.StatusBadRequest, dto.WebhookCheckResponse{
			Success: false,
			Message: msgNotConfigured,
			Config:  cfg,
		}, logger)
		return
	}

	ping := c.useCase.Ping(r.Context())
	now := c.now().UTC()
	resp := dto.WebhookCheckResponse{
		Success:   ping.OK(),
		Message:   "Both webhooks are working correctly",
		Timestamp: &now,
		Config:    cfg,
	}
	code := http.StatusOK
	if !ping.OK() {
		resp.Message = "One or more webhooks failed"
		code = http.StatusBadRequest
	}
	commons.WriteJSON(w, code, resp, logger)
}

// HandleTest sends a synthetic contact or order record to its webhook.
func (c *Controller) HandleTest(w http.ResponseWriter, r *http.Request) {
	_, logger := commons.StartTrace(w, c.logger)

	var req dto.WebhookTestRequest
	if err := commons.DecodeJSON(w, r, c.maxBodyBytes, &req); err != nil {
		commons.WriteJSON(w, http.StatusBadRequest, dto.WebhookTestResponse{
			Success: false,
			Message: "request body must be valid JSON",
		}, logger)
		return
	}

	if !c.useCase.Status().Ready() {
		commons.WriteJSON(w, http.StatusBadRequest, dto.WebhookTestResponse{
			Success: false,
			Message: msgNotConfigured,
		}, logger)
		return
	}

	ok, err := c.useCase.SendTest(r.Context(), req.Type, req.Data)
	if errors.Is(err, ErrInvalidTestType) {
		commons.WriteJSON(w, http.StatusBadRequest, dto.WebhookTestResponse{
			Success: false,
			Message: MsgInvalidTestType,
		}, logger)
		return
	}
	if err != nil {
		logger.Error("building webhook test record failed", zap.Error(err))
		commons.WriteJSON(w, http.StatusInternalServerError, dto.WebhookTestResponse{
			Success: false,
			Message: "Test failed",
		}, logger)
		return
	}

	message := "Contact test sent successfully"
	if req.Type == TestTypeOrder {
		message = "Order test sent successfully"
	}
	if !ok {
		message = "Contact test failed"
		if req.Type == TestTypeOrder {
			message = "Order test failed"
		}
	}

	now := c.now().UTC()
	commons.WriteJSON(w, http.StatusOK, dto.WebhookTestResponse{
		Success:   ok,
		Message:   message,
		Type:      req.Type,
		Timestamp: &now,
	}, logger)
}
