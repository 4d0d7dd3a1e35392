package usecase

import (
	"context"
	"strings"
	"time"

	"dorebell/internal/dispatch"
	"dorebell/internal/domain"
	"dorebell/internal/dto"

	"go.uber.org/zap"
)

type EventDispatcher interface {
	Dispatch(ctx context.Context, evt domain.Event) dispatch.Report
}

type SubmitContactUseCase struct {
	dispatcher      EventDispatcher
	logger          *zap.Logger
	dispatchTimeout time.Duration
	now             func() time.Time
}

func NewSubmitContactUseCase(dispatcher EventDispatcher, logger *zap.Logger, dispatchTimeout time.Duration) *SubmitContactUseCase {
	return &SubmitContactUseCase{
		dispatcher:      dispatcher,
		logger:          logger,
		dispatchTimeout: dispatchTimeout,
		now:             time.Now,
	}
}

func (uc *SubmitContactUseCase) SubmitContact(ctx context.Context, req dto.ContactRequest, client domain.ClientInfo) (*domain.Contact, error) {
	now := uc.now()
	contact := domain.NewContact(now, domain.ContactCustomer{
		Name:  strings.TrimSpace(req.Name),
		Phone: strings.TrimSpace(req.Phone),
		Email: strings.TrimSpace(req.Email),
	}, domain.Inquiry{
		Subject:     strings.TrimSpace(req.Subject),
		Message:     strings.TrimSpace(req.Message),
		OrderNumber: strings.TrimSpace(req.OrderNumber),
	})
	contact.Timestamp = domain.RecordTime(req.Timestamp, now)
	contact.IP = client.IP

	uc.logger.Info("contact message received",
		zap.String("messageId", contact.ID),
		zap.String("subject", contact.Inquiry.Subject),
		zap.Bool("hasOrderNumber", contact.HasOrderNumber()),
		zap.Time("contactTimestamp", contact.Timestamp),
	)

	dctx, cancel := dispatch.Detach(ctx, uc.dispatchTimeout)
	defer cancel()

	report := uc.dispatcher.Dispatch(dctx, domain.NewContactEvent(contact, client))
	if report.Failed() > 0 {
		uc.logger.Warn("contact accepted with failed deliveries",
			zap.String("messageId", contact.ID),
			zap.Int("failed", report.Failed()),
		)
	}

	return contact, nil
}
