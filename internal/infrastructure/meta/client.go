package meta

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"dorebell/internal/dispatch"
	"dorebell/internal/event"

	"go.uber.org/zap"
)

const (
	Name            = "meta"
	DefaultEndpoint = "https://graph.facebook.com"
	DefaultVersion  = "v19.0"
)

type Deliverer interface {
	Deliver(ctx context.Context, req dispatch.Request) dispatch.Result
}

type Config struct {
	PixelID       string
	AccessToken   string
	Endpoint      string
	APIVersion    string
	TestEventCode string
}

// Client sends conversions to the Meta Conversions API.
type Client struct {
	deliverer Deliverer
	cfg       Config
	logger    *zap.Logger
}

func NewClient(deliverer Deliverer, cfg Config, logger *zap.Logger) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultVersion
	}
	return &Client{
		deliverer: deliverer,
		cfg:       cfg,
		logger:    logger,
	}
}

func (c *Client) Name() string {
	return Name
}

func (c *Client) Configured() bool {
	return c.cfg.PixelID != "" && c.cfg.AccessToken != ""
}

// EventsURL carries the access token as a query parameter, so it must
// never be logged.
func (c *Client) EventsURL() string {
	return fmt.Sprintf("%s/%s/%s/events?access_token=%s",
		strings.TrimRight(c.cfg.Endpoint, "/"),
		c.cfg.APIVersion,
		url.PathEscape(c.cfg.PixelID),
		url.QueryEscape(c.cfg.AccessToken),
	)
}

func (c *Client) Track(ctx context.Context, conv event.Conversion) error {
	if !c.Configured() {
		return dispatch.ErrSkipped
	}

	payload, err := event.NewMetaRequest(conv, c.cfg.TestEventCode)
	if err != nil {
		return err
	}

	res := c.deliverer.Deliver(ctx, dispatch.Request{
		Destination: Name,
		URL:         c.EventsURL(),
		Payload:     payload,
	})
	if res.Delivered {
		c.logger.Debug("meta event sent",
			zap.String("event", payload.Data[0].EventName),
			zap.String("eventId", payload.Data[0].EventID),
		)
	}
	return res.AsError()
}
