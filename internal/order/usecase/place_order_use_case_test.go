package usecase

import (
	"context"
	"testing"
	"time"

	"dorebell/internal/dispatch"
	"dorebell/internal/domain"
	"dorebell/internal/dto"
	apperrors "dorebell/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Mock implementation
type mockDispatcher struct {
	DispatchFunc func(ctx context.Context, evt domain.Event) dispatch.Report
}

func (m *mockDispatcher) Dispatch(ctx context.Context, evt domain.Event) dispatch.Report {
	return m.DispatchFunc(ctx, evt)
}

var fixedNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func validRequest() dto.OrderRequest {
	return dto.OrderRequest{
		FullName:       " أحمد علي ",
		PhoneNumber:    "01012345678",
		WhatsappNumber: "01112345678",
		City:           "القاهرة",
		Area:           "مدينة نصر",
		Address:        "شارع مصطفى النحاس",
		Quantity:       2,
		ProductName:    "جرس الباب الذكي بالكاميرا",
		Price:          "1999",
		Notes:          "بعد الساعة 5",
	}
}

func newUseCase(d EventDispatcher) *PlaceOrderUseCase {
	uc := NewPlaceOrderUseCase(d, zap.NewNop(), time.Second)
	uc.now = func() time.Time { return fixedNow }
	return uc
}

func TestPlaceOrder_BuildsRecordAndDispatches(t *testing.T) {
	var got domain.Event
	uc := newUseCase(&mockDispatcher{DispatchFunc: func(_ context.Context, evt domain.Event) dispatch.Report {
		got = evt
		return dispatch.Report{EventID: evt.RecordID()}
	}})
	client := domain.ClientInfo{IP: "203.0.113.7", UserAgent: "UA"}

	order, err := uc.PlaceOrder(context.Background(), validRequest(), client)

	require.NoError(t, err)
	assert.Regexp(t, `^ORDER_\d+_[0-9a-f]{9}$`, order.ID)
	assert.Equal(t, "أحمد علي", order.Customer.FullName)
	assert.Equal(t, "3998", order.Product.TotalPrice.String())
	assert.Equal(t, domain.PaymentCashOnDelivery, order.PaymentMethod)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, "203.0.113.7", order.IP)
	assert.Equal(t, fixedNow, order.Timestamp)

	assert.Equal(t, domain.EventOrderPlaced, got.Kind)
	assert.Same(t, order, got.Order)
	assert.Equal(t, client, got.Client)
}

func TestPlaceOrder_UsesClientTimestamp(t *testing.T) {
	uc := newUseCase(&mockDispatcher{DispatchFunc: func(context.Context, domain.Event) dispatch.Report {
		return dispatch.Report{}
	}})
	req := validRequest()
	req.Timestamp = "2026-10-17T09:15:00Z"

	order, err := uc.PlaceOrder(context.Background(), req, domain.ClientInfo{})

	require.NoError(t, err)
	assert.True(t, order.Timestamp.Equal(time.Date(2026, 10, 17, 9, 15, 0, 0, time.UTC)))
}

func TestPlaceOrder_DispatchSurvivesCancelledRequest(t *testing.T) {
	var dispatchErr error
	var hasDeadline bool
	uc := newUseCase(&mockDispatcher{DispatchFunc: func(ctx context.Context, _ domain.Event) dispatch.Report {
		dispatchErr = ctx.Err()
		_, hasDeadline = ctx.Deadline()
		return dispatch.Report{}
	}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.PlaceOrder(ctx, validRequest(), domain.ClientInfo{})

	require.NoError(t, err)
	assert.NoError(t, dispatchErr)
	assert.True(t, hasDeadline)
}

func TestPlaceOrder_FailedSinksDoNotFailOrder(t *testing.T) {
	uc := newUseCase(&mockDispatcher{DispatchFunc: func(context.Context, domain.Event) dispatch.Report {
		return dispatch.Report{Outcomes: []dispatch.Outcome{
			{Sink: "automation", Status: dispatch.StatusFailed},
			{Sink: "tiktok", Status: dispatch.StatusFailed},
		}}
	}})

	order, err := uc.PlaceOrder(context.Background(), validRequest(), domain.ClientInfo{})

	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
}

func TestPlaceOrder_BadPrice(t *testing.T) {
	uc := newUseCase(&mockDispatcher{DispatchFunc: func(context.Context, domain.Event) dispatch.Report {
		t.Fatal("must not dispatch")
		return dispatch.Report{}
	}})
	req := validRequest()
	req.Price = "abc"

	_, err := uc.PlaceOrder(context.Background(), req, domain.ClientInfo{})

	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}
