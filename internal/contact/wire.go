package contact

import (
	"time"

	"dorebell/internal/contact/controller"
	"dorebell/internal/contact/usecase"

	"go.uber.org/zap"
)

func NewModule(
	dispatcher usecase.EventDispatcher,
	limiter controller.RateLimiter,
	maxBodyBytes int64,
	dispatchTimeout time.Duration,
	logger *zap.Logger,
) *controller.ContactController {
	uc := usecase.NewSubmitContactUseCase(dispatcher, logger, dispatchTimeout)
	return controller.NewContactController(uc, limiter, maxBodyBytes, logger)
}
