package usecase

import (
	"context"
	"strings"
	"time"

	"dorebell/internal/dispatch"
	"dorebell/internal/domain"
	"dorebell/internal/dto"
	apperrors "dorebell/internal/errors"

	"go.uber.org/zap"
)

type EventDispatcher interface {
	Dispatch(ctx context.Context, evt domain.Event) dispatch.Report
}

type PlaceOrderUseCase struct {
	dispatcher      EventDispatcher
	logger          *zap.Logger
	dispatchTimeout time.Duration
	now             func() time.Time
}

func NewPlaceOrderUseCase(dispatcher EventDispatcher, logger *zap.Logger, dispatchTimeout time.Duration) *PlaceOrderUseCase {
	return &PlaceOrderUseCase{
		dispatcher:      dispatcher,
		logger:          logger,
		dispatchTimeout: dispatchTimeout,
		now:             time.Now,
	}
}

// PlaceOrder builds the order record from a validated request and hands it to
// the outbound sinks. Sink failures are reported in the logs only; the order
// is accepted either way.
func (uc *PlaceOrderUseCase) PlaceOrder(ctx context.Context, req dto.OrderRequest, client domain.ClientInfo) (*domain.Order, error) {
	price, err := domain.ParseMoney(req.Price)
	if err != nil {
		return nil, apperrors.NewValidationError("Validation failed", apperrors.ValidationDetail{
			Field:   "price",
			Message: "Invalid price",
		})
	}

	now := uc.now()
	order := domain.NewOrder(now, domain.Customer{
		FullName:       strings.TrimSpace(req.FullName),
		PhoneNumber:    strings.TrimSpace(req.PhoneNumber),
		WhatsappNumber: strings.TrimSpace(req.WhatsappNumber),
		Address: domain.Address{
			City:    strings.TrimSpace(req.City),
			Area:    strings.TrimSpace(req.Area),
			Details: strings.TrimSpace(req.Address),
		},
	}, strings.TrimSpace(req.ProductName), price, req.Quantity)
	order.Timestamp = domain.RecordTime(req.Timestamp, now)
	order.Notes = strings.TrimSpace(req.Notes)
	order.IP = client.IP

	uc.logger.Info("order received",
		zap.String("orderId", order.ID),
		zap.String("product", order.Product.Name),
		zap.Int("quantity", order.Product.Quantity),
		zap.String("totalPrice", order.Product.TotalPrice.String()),
		zap.String("city", order.Customer.Address.City),
		zap.Time("orderTimestamp", order.Timestamp),
	)

	dctx, cancel := dispatch.Detach(ctx, uc.dispatchTimeout)
	defer cancel()

	report := uc.dispatcher.Dispatch(dctx, domain.NewOrderEvent(order, client))
	if report.Failed() > 0 {
		uc.logger.Warn("order accepted with failed deliveries",
			zap.String("orderId", order.ID),
			zap.Int("failed", report.Failed()),
		)
	}

	return order, nil
}
