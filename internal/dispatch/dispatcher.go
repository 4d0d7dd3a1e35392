// Package dispatch delivers JSON payloads to outbound HTTP destinations with
// a fixed-delay retry, and fans accepted events out to independent sinks.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	"dorebell/internal/infrastructure/metrics"

	"go.uber.org/zap"
)

const (
	SourceHeader = "X-Webhook-Source"
	SecretHeader = "X-Webhook-Secret"
	SourceName   = "dorebell-website"

	placeholderMarker = "YOUR_"
	maxDrainBytes     = 64 << 10
)

var (
	// ErrSkipped means the destination is disabled or not configured.
	ErrSkipped        = errors.New("destination not configured")
	ErrDeliveryFailed = errors.New("delivery failed")
)

type Config struct {
	Enabled    bool
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
	Secret     string
	UserAgent  string
}

func DefaultConfig() Config {
	return Config{
		Enabled:    true,
		MaxRetries: 3,
		RetryDelay: time.Second,
		Timeout:    10 * time.Second,
		UserAgent:  "Dorebell/1.0",
	}
}

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Request is one payload for one destination. Destination labels logs and
// metrics; the URL is never logged since it may carry credentials.
type Request struct {
	Destination string
	URL         string
	Headers     map[string]string
	Payload     any
}

type Result struct {
	Delivered  bool
	Skipped    bool
	Attempts   int
	StatusCode int
	LastErr    error
}

// AsError is nil when delivered, ErrSkipped when skipped and a wrapped
// ErrDeliveryFailed otherwise.
func (r Result) AsError() error {
	switch {
	case r.Delivered:
		return nil
	case r.Skipped:
		return ErrSkipped
	}
	return fmt.Errorf("%w after %d attempts: %v", ErrDeliveryFailed, r.Attempts, r.LastErr)
}

// IsConfigured rejects empty URLs and the "YOUR_..." placeholders shipped in
// example environment files.
func IsConfigured(url string) bool {
	url = strings.TrimSpace(url)
	return url != "" && !strings.Contains(url, placeholderMarker)
}

type Dispatcher struct {
	client HTTPDoer
	cfg    Config
	logger *zap.Logger
}

func NewDispatcher(client HTTPDoer, cfg Config, logger *zap.Logger) *Dispatcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Dispatcher{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

func (d *Dispatcher) Enabled() bool {
	return d.cfg.Enabled
}

func (d *Dispatcher) Config() Config {
	return d.cfg
}

// Dispatch posts payload to url and reports whether it was delivered.
func (d *Dispatcher) Dispatch(ctx context.Context, url string, payload any) bool {
	return d.Deliver(ctx, Request{Destination: "webhook", URL: url, Payload: payload}).Delivered
}

// Deliver makes up to MaxRetries+1 attempts, waiting RetryDelay between
// them. It never returns an error; the outcome is in the Result.
func (d *Dispatcher) Deliver(ctx context.Context, req Request) Result {
	logger := d.logger.With(zap.String("destination", req.Destination))

	if !d.cfg.Enabled || !IsConfigured(req.URL) {
		logger.Info("destination not configured, skipping dispatch", zap.Bool("enabled", d.cfg.Enabled))
		metrics.DispatchAttemptsTotal.WithLabelValues(req.Destination, "skipped").Inc()
		return Result{Skipped: true}
	}

	body, err := json.Marshal(req.Payload)
	if err != nil {
		logger.Error("failed to encode payload", zap.Error(err))
		return Result{LastErr: fmt.Errorf("encoding payload: %w", err)}
	}

	var res Result
	for attempt := 0; ; attempt++ {
		res.Attempts = attempt + 1
		res.StatusCode, res.LastErr = d.post(ctx, req, body)

		if res.LastErr == nil {
			metrics.DispatchAttemptsTotal.WithLabelValues(req.Destination, "success").Inc()
			logger.Info("dispatch delivered",
				zap.Int("attempts", res.Attempts),
				zap.Int("status", res.StatusCode),
			)
			res.Delivered = true
			return res
		}

		metrics.DispatchAttemptsTotal.WithLabelValues(req.Destination, "error").Inc()

		if attempt >= d.cfg.MaxRetries {
			break
		}

		logger.Warn("dispatch attempt failed, retrying",
			zap.Int("attempt", res.Attempts),
			zap.Int("maxRetries", d.cfg.MaxRetries),
			zap.Int("status", res.StatusCode),
			zap.Error(res.LastErr),
		)

		if err := sleep(ctx, d.cfg.RetryDelay); err != nil {
			res.LastErr = fmt.Errorf("retry aborted: %w", err)
			break
		}
	}

	logger.Error("dispatch failed",
		zap.Int("attempts", res.Attempts),
		zap.Int("status", res.StatusCode),
		zap.Error(res.LastErr),
	)
	return res
}

func (d *Dispatcher) post(ctx context.Context, req Request, body []byte) (int, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, req.URL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("building request: %w", stripURL(err))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", d.cfg.UserAgent)
	httpReq.Header.Set(SourceHeader, SourceName)
	if d.cfg.Secret != "" {
		httpReq.Header.Set(SecretHeader, d.cfg.Secret)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("sending request: %w", stripURL(err))
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}

// stripURL drops the URL a *url.Error embeds, since it can hold an access token.
func stripURL(err error) error {
	var uerr *neturl.Error
	if errors.As(err, &uerr) {
		return uerr.Err
	}
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
