package order

import (
	"time"

	"dorebell/internal/order/controller"
	"dorebell/internal/order/usecase"

	"go.uber.org/zap"
)

func NewModule(
	dispatcher usecase.EventDispatcher,
	limiter controller.RateLimiter,
	maxBodyBytes int64,
	dispatchTimeout time.Duration,
	logger *zap.Logger,
) *controller.OrderController {
	uc := usecase.NewPlaceOrderUseCase(dispatcher, logger, dispatchTimeout)
	return controller.NewOrderController(uc, limiter, maxBodyBytes, logger)
}
