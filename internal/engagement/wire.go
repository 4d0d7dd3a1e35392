package engagement

import (
	"time"

	"dorebell/internal/engagement/controller"
	"dorebell/internal/engagement/usecase"

	"go.uber.org/zap"
)

func NewModule(
	tracker usecase.Tracker,
	buttonLimiter controller.RateLimiter,
	searchLimiter controller.RateLimiter,
	maxBodyBytes int64,
	timeout time.Duration,
	logger *zap.Logger,
) *controller.EngagementController {
	uc := usecase.NewTrackEngagementUseCase(tracker, logger, timeout)
	return controller.NewEngagementController(uc, buttonLimiter, searchLimiter, maxBodyBytes, logger)
}
