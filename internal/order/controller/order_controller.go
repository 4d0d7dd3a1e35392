package controller

import (
	"context"
	"net/http"

	"dorebell/internal/commons"
	"dorebell/internal/domain"
	"dorebell/internal/dto"
	apperrors "dorebell/internal/errors"
	"dorebell/internal/infrastructure/metrics"
	"dorebell/internal/validation"

	"go.uber.org/zap"
)

const (
	MsgOrderReceived  = "Order received successfully"
	EstimatedDelivery = "2-5 أيام عمل"
)

type PlaceOrderUseCase interface {
	PlaceOrder(ctx context.Context, req dto.OrderRequest, client domain.ClientInfo) (*domain.Order, error)
}

type RateLimiter interface {
	Check(ctx context.Context, key string) error
}

type OrderController struct {
	useCase      PlaceOrderUseCase
	limiter      RateLimiter
	maxBodyBytes int64
	logger       *zap.Logger
}

func NewOrderController(useCase PlaceOrderUseCase, limiter RateLimiter, maxBodyBytes int64, logger *zap.Logger) *OrderController {
	return &OrderController{
		useCase:      useCase,
		limiter:      limiter,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

func (c *OrderController) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	_, logger := commons.StartTrace(w, c.logger)

	// Rate limit before touching the body
	clientKey := commons.ClientKey(r)
	if err := c.limiter.Check(r.Context(), clientKey); err != nil {
		metrics.SubmissionsTotal.WithLabelValues("order", "limited").Inc()
		logger.Warn("order rejected", zap.Error(err))
		commons.WriteError(w, http.StatusTooManyRequests, commons.MsgTooManyRequests, logger)
		return
	}

	var req dto.OrderRequest
	if err := commons.DecodeJSON(w, r, c.maxBodyBytes, &req); err != nil {
		logger.Warn("invalid order body", zap.Error(err))
		c.writeRejected(w, err, "invalid", logger)
		return
	}

	result := validation.ValidateOrder(req)
	if !result.IsValid {
		outcome := "invalid"
		if result.IsSpam() {
			outcome = "spam"
			logger.Warn("honeypot triggered on order form", zap.String("client", clientKey))
		} else {
			logger.Info("order validation failed", zap.Strings("errors", result.Errors))
		}
		c.writeRejected(w, result.Err(), outcome, logger)
		return
	}

	order, err := c.useCase.PlaceOrder(r.Context(), req, commons.ClientInfo(r))
	if err != nil {
		if _, ok := apperrors.IsValidationError(err); ok {
			c.writeRejected(w, err, "invalid", logger)
			return
		}
		metrics.SubmissionsTotal.WithLabelValues("order", "error").Inc()
		logger.Error("placing order failed", zap.Error(err))
		commons.WriteError(w, http.StatusInternalServerError, commons.MsgInternalError, logger)
		return
	}

	metrics.SubmissionsTotal.WithLabelValues("order", "accepted").Inc()
	commons.WriteJSON(w, http.StatusOK, dto.OrderResponse{
		Success:           true,
		Message:           MsgOrderReceived,
		OrderID:           order.ID,
		EstimatedDelivery: EstimatedDelivery,
	}, logger)
}

func (c *OrderController) writeRejected(w http.ResponseWriter, err error, outcome string, logger *zap.Logger) {
	metrics.SubmissionsTotal.WithLabelValues("order", outcome).Inc()
	ve, _ := apperrors.IsValidationError(err)
	commons.WriteValidationError(w, ve, logger)
}
