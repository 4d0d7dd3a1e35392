package diagnostics

import (
	"context"
	"errors"
	"time"

	"dorebell/internal/config"
	"dorebell/internal/domain"
	"dorebell/internal/dto"
	apperrors "dorebell/internal/errors"
	"dorebell/internal/infrastructure/automation"

	"go.uber.org/zap"
)

const (
	TestTypeContact = "contact"
	TestTypeOrder   = "order"
)

const MsgInvalidTestType = `Invalid test type. Use "contact" or "order"`

var ErrInvalidTestType = errors.New("invalid test type")

type AutomationClient interface {
	Status() automation.Status
	Ping(ctx context.Context) automation.PingResult
	SendOrder(ctx context.Context, o *domain.Order) error
	SendContact(ctx context.Context, c *domain.Contact) error
}

// WebhookTestUseCase exercises the automation webhooks with synthetic
// records so operators can verify the spreadsheet scenarios.
type WebhookTestUseCase struct {
	client  AutomationClient
	product config.ProductConfig
	logger  *zap.Logger
	now     func() time.Time
}

func NewWebhookTestUseCase(client AutomationClient, product config.ProductConfig, logger *zap.Logger) *WebhookTestUseCase {
	return &WebhookTestUseCase{
		client:  client,
		product: product,
		logger:  logger,
		now:     time.Now,
	}
}

func (uc *WebhookTestUseCase) Status() automation.Status {
	return uc.client.Status()
}

func (uc *WebhookTestUseCase) Ping(ctx context.Context) automation.PingResult {
	return uc.client.Ping(ctx)
}

// SendTest delivers one synthetic record of the given type and reports
// whether the webhook accepted it.
func (uc *WebhookTestUseCase) SendTest(ctx context.Context, testType string, data dto.WebhookTestData) (bool, error) {
	var err error
	switch testType {
	case TestTypeContact:
		err = uc.client.SendContact(ctx, uc.testContact(data))
	case TestTypeOrder:
		o, buildErr := uc.testOrder(data)
		if buildErr != nil {
			return false, apperrors.NewInternalError("building test order", buildErr)
		}
		err = uc.client.SendOrder(ctx, o)
	default:
		return false, ErrInvalidTestType
	}

	if err != nil {
		uc.logger.Warn("webhook test failed", zap.String("type", testType), zap.Error(err))
		return false, nil
	}
	return true, nil
}

func (uc *WebhookTestUseCase) testContact(data dto.WebhookTestData) *domain.Contact {
	c := domain.NewContact(uc.now(), domain.ContactCustomer{
		Name:  orDefault(data.Name, "Test Contact"),
		Phone: orDefault(data.Phone, "01234567890"),
		Email: orDefault(data.Email, "test@example.com"),
	}, domain.Inquiry{
		Subject: "Test",
		Message: orDefault(data.Message, "Test message from Make.com integration"),
	})
	c.Source = "diagnostics"
	return c
}

func (uc *WebhookTestUseCase) testOrder(data dto.WebhookTestData) (*domain.Order, error) {
	quantity := data.Quantity
	if quantity < 1 {
		quantity = 1
	}

	unitPrice, err := domain.ParseMoney(uc.product.Price)
	if err != nil {
		return nil, err
	}

	o := domain.NewOrder(uc.now(), domain.Customer{
		FullName:       orDefault(data.Name, "Test Customer"),
		PhoneNumber:    orDefault(data.Phone, "01234567890"),
		WhatsappNumber: orDefault(data.Phone, "01234567890"),
		Address: domain.Address{
			City:    orDefault(data.City, "Cairo"),
			Area:    "Test Area",
			Details: orDefault(data.Address, "Test Address"),
		},
	}, uc.product.Name, unitPrice, quantity)

	if data.TotalPrice != "" {
		total, err := domain.ParseMoney(data.TotalPrice)
		if err != nil {
			return nil, err
		}
		o.Product.TotalPrice = total
	}
	o.Source = "diagnostics"
	return o, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
