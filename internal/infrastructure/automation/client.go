package automation

import (
	"context"
	"fmt"
	"time"

	"dorebell/internal/dispatch"
	"dorebell/internal/domain"
	"dorebell/internal/event"

	"go.uber.org/zap"
)

const (
	SinkName = "automation"

	OrderUserAgent   = "Dorebell-Orders/1.0"
	ContactUserAgent = "Dorebell-Contact/1.0"
)

type Deliverer interface {
	Deliver(ctx context.Context, req dispatch.Request) dispatch.Result
	Enabled() bool
}

type Config struct {
	OrderURL   string
	ContactURL string
}

type Status struct {
	OrderConfigured   bool
	ContactConfigured bool
	Enabled           bool
}

// Ready reports whether both webhooks are set and delivery is enabled.
func (s Status) Ready() bool {
	return s.Enabled && s.OrderConfigured && s.ContactConfigured
}

type PingResult struct {
	Order   dispatch.Result
	Contact dispatch.Result
}

func (p PingResult) OK() bool {
	return p.Order.Delivered && p.Contact.Delivered
}

// Client sends flattened rows to the Make.com scenarios that append them
// to the orders and contacts spreadsheets.
type Client struct {
	deliverer Deliverer
	cfg       Config
	locale    event.Locale
	logger    *zap.Logger
	now       func() time.Time
}

func NewClient(deliverer Deliverer, cfg Config, locale event.Locale, logger *zap.Logger) *Client {
	return &Client{
		deliverer: deliverer,
		cfg:       cfg,
		locale:    locale,
		logger:    logger,
		now:       time.Now,
	}
}

func (c *Client) Name() string {
	return SinkName
}

func (c *Client) Deliver(ctx context.Context, evt domain.Event) error {
	switch {
	case evt.Order != nil:
		return c.SendOrder(ctx, evt.Order)
	case evt.Contact != nil:
		return c.SendContact(ctx, evt.Contact)
	}
	return fmt.Errorf("automation: event %q has no record", evt.Kind)
}

func (c *Client) SendOrder(ctx context.Context, o *domain.Order) error {
	return c.deliverer.Deliver(ctx, dispatch.Request{
		Destination: "automation.orders",
		URL:         c.cfg.OrderURL,
		Headers:     map[string]string{"User-Agent": OrderUserAgent},
		Payload:     event.NewOrderRow(o, c.locale),
	}).AsError()
}

func (c *Client) SendContact(ctx context.Context, ct *domain.Contact) error {
	return c.deliverer.Deliver(ctx, dispatch.Request{
		Destination: "automation.contacts",
		URL:         c.cfg.ContactURL,
		Headers:     map[string]string{"User-Agent": ContactUserAgent},
		Payload:     event.NewContactRow(ct, c.locale),
	}).AsError()
}

func (c *Client) Status() Status {
	return Status{
		OrderConfigured:   dispatch.IsConfigured(c.cfg.OrderURL),
		ContactConfigured: dispatch.IsConfigured(c.cfg.ContactURL),
		Enabled:           c.deliverer.Enabled(),
	}
}

// Configured reports whether at least one webhook URL is set.
func (c *Client) Configured() bool {
	s := c.Status()
	return s.OrderConfigured || s.ContactConfigured
}

// Ping sends a test payload to both webhooks.
func (c *Client) Ping(ctx context.Context) PingResult {
	ping := event.NewTestPing(c.now())

	res := PingResult{
		Contact: c.deliverer.Deliver(ctx, dispatch.Request{
			Destination: "automation.contacts",
			URL:         c.cfg.ContactURL,
			Headers:     map[string]string{"User-Agent": ContactUserAgent},
			Payload:     ping,
		}),
		Order: c.deliverer.Deliver(ctx, dispatch.Request{
			Destination: "automation.orders",
			URL:         c.cfg.OrderURL,
			Headers:     map[string]string{"User-Agent": OrderUserAgent},
			Payload:     ping,
		}),
	}

	c.logger.Info("automation connectivity test",
		zap.Bool("contact", res.Contact.Delivered),
		zap.Bool("order", res.Order.Delivered),
	)
	return res
}
