package controller

import (
	"context"
	"net/http"

	"dorebell/internal/commons"
	"dorebell/internal/domain"
	"dorebell/internal/dto"
	apperrors "dorebell/internal/errors"
	"dorebell/internal/validation"

	"go.uber.org/zap"
)

type TrackEngagementUseCase interface {
	TrackButtonClick(ctx context.Context, req dto.ButtonClickRequest, client domain.ClientInfo) (bool, error)
	TrackSearch(ctx context.Context, req dto.SearchRequest, client domain.ClientInfo) (bool, error)
}

type RateLimiter interface {
	Check(ctx context.Context, key string) error
}

type EngagementController struct {
	useCase       TrackEngagementUseCase
	buttonLimiter RateLimiter
	searchLimiter RateLimiter
	maxBodyBytes  int64
	logger        *zap.Logger
}

func NewEngagementController(
	useCase TrackEngagementUseCase,
	buttonLimiter RateLimiter,
	searchLimiter RateLimiter,
	maxBodyBytes int64,
	logger *zap.Logger,
) *EngagementController {
	return &EngagementController{
		useCase:       useCase,
		buttonLimiter: buttonLimiter,
		searchLimiter: searchLimiter,
		maxBodyBytes:  maxBodyBytes,
		logger:        logger,
	}
}

func (c *EngagementController) TrackButtonClick(w http.ResponseWriter, r *http.Request) {
	_, logger := commons.StartTrace(w, c.logger)

	if !c.allow(w, r, c.buttonLimiter, logger) {
		return
	}

	var req dto.ButtonClickRequest
	if err := commons.DecodeJSON(w, r, c.maxBodyBytes, &req); err != nil {
		writeFirstError(w, err, logger)
		return
	}
	if err := validation.ValidateButtonClick(req).Err(); err != nil {
		writeFirstError(w, err, logger)
		return
	}

	tracked, err := c.useCase.TrackButtonClick(r.Context(), req, commons.ClientInfo(r))
	c.respond(w, "ClickButton", tracked, err, logger)
}

func (c *EngagementController) TrackSearch(w http.ResponseWriter, r *http.Request) {
	_, logger := commons.StartTrace(w, c.logger)

	if !c.allow(w, r, c.searchLimiter, logger) {
		return
	}

	var req dto.SearchRequest
	if err := commons.DecodeJSON(w, r, c.maxBodyBytes, &req); err != nil {
		writeFirstError(w, err, logger)
		return
	}
	if err := validation.ValidateSearch(req).Err(); err != nil {
		writeFirstError(w, err, logger)
		return
	}

	tracked, err := c.useCase.TrackSearch(r.Context(), req, commons.ClientInfo(r))
	c.respond(w, "Search", tracked, err, logger)
}

func (c *EngagementController) allow(w http.ResponseWriter, r *http.Request, limiter RateLimiter, logger *zap.Logger) bool {
	err := limiter.Check(r.Context(), commons.ClientKey(r))
	if err == nil {
		return true
	}
	logger.Warn("engagement rejected", zap.Error(err))
	commons.WriteError(w, http.StatusTooManyRequests, commons.MsgTooManyRequests, logger)
	return false
}

func (c *EngagementController) respond(w http.ResponseWriter, action string, tracked bool, err error, logger *zap.Logger) {
	if err != nil {
		logger.Error("tracking failed", zap.String("action", action), zap.Error(err))
		commons.WriteError(w, http.StatusInternalServerError, "Failed to track "+action+" event", logger)
		return
	}

	message := action + " event tracked successfully"
	if !tracked {
		message = action + " event not sent: tracking is disabled"
	}
	commons.WriteJSON(w, http.StatusOK, dto.TrackResponse{
		Success: true,
		Message: message,
		Tracked: tracked,
	}, logger)
}

// writeFirstError answers 400 with the first problem as the error text.
func writeFirstError(w http.ResponseWriter, err error, logger *zap.Logger) {
	message := commons.MsgValidationFailed
	if ve, ok := apperrors.IsValidationError(err); ok && len(ve.Details) > 0 {
		message = ve.Details[0].Message
	}
	commons.WriteError(w, http.StatusBadRequest, message, logger)
}
