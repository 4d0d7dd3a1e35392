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
	MsgContactReceived = "Contact message received successfully"
	EstimatedResponse  = "خلال 24 ساعة"
)

type SubmitContactUseCase interface {
	SubmitContact(ctx context.Context, req dto.ContactRequest, client domain.ClientInfo) (*domain.Contact, error)
}

type RateLimiter interface {
	Check(ctx context.Context, key string) error
}

type ContactController struct {
	useCase      SubmitContactUseCase
	limiter      RateLimiter
	maxBodyBytes int64
	logger       *zap.Logger
}

func NewContactController(useCase SubmitContactUseCase, limiter RateLimiter, maxBodyBytes int64, logger *zap.Logger) *ContactController {
	return &ContactController{
		useCase:      useCase,
		limiter:      limiter,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

func (c *ContactController) SubmitContact(w http.ResponseWriter, r *http.Request) {
	_, logger := commons.StartTrace(w, c.logger)

	clientKey := commons.ClientKey(r)
	if err := c.limiter.Check(r.Context(), clientKey); err != nil {
		c.count("limited")
		logger.Warn("contact rejected", zap.Error(err))
		commons.WriteError(w, http.StatusTooManyRequests, commons.MsgTooManyRequests, logger)
		return
	}

	var req dto.ContactRequest
	if err := commons.DecodeJSON(w, r, c.maxBodyBytes, &req); err != nil {
		logger.Warn("invalid contact body", zap.Error(err))
		c.count("invalid")
		ve, _ := apperrors.IsValidationError(err)
		commons.WriteValidationError(w, ve, logger)
		return
	}

	result := validation.ValidateContact(req)
	if !result.IsValid {
		if result.IsSpam() {
			c.count("spam")
			logger.Warn("honeypot triggered on contact form", zap.String("client", clientKey))
		} else {
			c.count("invalid")
			logger.Info("contact validation failed", zap.Strings("errors", result.Errors))
		}
		ve, _ := apperrors.IsValidationError(result.Err())
		commons.WriteValidationError(w, ve, logger)
		return
	}

	contact, err := c.useCase.SubmitContact(r.Context(), req, commons.ClientInfo(r))
	if err != nil {
		c.count("error")
		logger.Error("submitting contact failed", zap.Error(err))
		commons.WriteError(w, http.StatusInternalServerError, commons.MsgInternalError, logger)
		return
	}

	c.count("accepted")
	commons.WriteJSON(w, http.StatusOK, dto.ContactResponse{
		Success:           true,
		Message:           MsgContactReceived,
		MessageID:         contact.ID,
		EstimatedResponse: EstimatedResponse,
	}, logger)
}

func (c *ContactController) count(result string) {
	metrics.SubmissionsTotal.WithLabelValues("contact", result).Inc()
}
