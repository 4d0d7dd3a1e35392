package diagnostics

import (
	"dorebell/internal/config"

	"go.uber.org/zap"
)

func NewModule(client AutomationClient, product config.ProductConfig, maxBodyBytes int64, logger *zap.Logger) *Controller {
	uc := NewWebhookTestUseCase(client, product, logger)
	return NewController(uc, maxBodyBytes, logger)
}
