package tiktok

import (
	"context"

	"dorebell/internal/dispatch"
	"dorebell/internal/event"

	"go.uber.org/zap"
)

const (
	Name            = "tiktok"
	DefaultEndpoint = "https://business-api.tiktok.com/open_api/v1.3/event/track/"
	tokenHeader     = "Access-Token"
)

type Deliverer interface {
	Deliver(ctx context.Context, req dispatch.Request) dispatch.Result
}

type Config struct {
	PixelID     string
	AccessToken string
	Endpoint    string
}

// Client sends conversions to the TikTok Events API.
type Client struct {
	deliverer Deliverer
	cfg       Config
	logger    *zap.Logger
}

func NewClient(deliverer Deliverer, cfg Config, logger *zap.Logger) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
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

func (c *Client) Track(ctx context.Context, conv event.Conversion) error {
	if !c.Configured() {
		return dispatch.ErrSkipped
	}

	payload, err := event.NewTikTokEvent(conv, c.cfg.PixelID)
	if err != nil {
		return err
	}

	res := c.deliverer.Deliver(ctx, dispatch.Request{
		Destination: Name,
		URL:         c.cfg.Endpoint,
		Headers:     map[string]string{tokenHeader: c.cfg.AccessToken},
		Payload:     payload,
	})
	if res.Delivered {
		c.logger.Debug("tiktok event sent",
			zap.String("event", payload.Event),
			zap.String("eventId", payload.EventID),
		)
	}
	return res.AsError()
}
