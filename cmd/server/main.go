package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"dorebell/internal/commons"
	"dorebell/internal/config"
	"dorebell/internal/contact"
	"dorebell/internal/diagnostics"
	"dorebell/internal/dispatch"
	"dorebell/internal/engagement"
	"dorebell/internal/event"
	"dorebell/internal/infrastructure/automation"
	"dorebell/internal/infrastructure/broker"
	"dorebell/internal/infrastructure/logger"
	"dorebell/internal/infrastructure/meta"
	"dorebell/internal/infrastructure/mysql"
	"dorebell/internal/infrastructure/tiktok"
	"dorebell/internal/order"
	"dorebell/internal/ratelimit"
	"dorebell/internal/server"
	"dorebell/internal/tracking"

	"go.uber.org/zap"
)

func main() {
	cfg, err := commons.LoadConfig("")
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level, !cfg.IsProduction())
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	health := server.NewHealthHandler(zapLogger)

	// Rate limiting
	store, sweeper := newRateLimitStore(ctx, cfg, health, zapLogger)
	policies := ratelimit.DefaultPolicies()
	for scope, p := range cfg.RateLimit.Policies {
		policies[scope] = ratelimit.Policy{Window: p.Window, Max: p.Max}
	}
	limiter := func(scope string) *ratelimit.Limiter {
		return ratelimit.New(scope, policies[scope], store, zapLogger)
	}
	if cfg.RateLimit.SweepInterval > 0 {
		go ratelimit.RunJanitor(ctx, sweeper, cfg.RateLimit.SweepInterval, zapLogger)
	}

	// Outbound sinks
	httpClient := &http.Client{}
	locale := event.DefaultLocale(cfg.Timezone)

	webhooks := dispatch.NewDispatcher(httpClient, dispatch.Config{
		Enabled:    cfg.WebhooksEnabled(),
		MaxRetries: cfg.Webhook.MaxRetries,
		RetryDelay: cfg.Webhook.RetryDelay,
		Timeout:    cfg.Webhook.Timeout,
		Secret:     cfg.Webhook.Secret,
		UserAgent:  dispatch.DefaultConfig().UserAgent,
	}, zapLogger)
	automationClient := automation.NewClient(webhooks, automation.Config{
		OrderURL:   cfg.Webhook.OrderURL,
		ContactURL: cfg.Webhook.ContactURL,
	}, locale, zapLogger)

	ads := dispatch.NewDispatcher(httpClient, dispatch.Config{
		Enabled:    cfg.IsProduction(),
		MaxRetries: cfg.Webhook.MaxRetries,
		RetryDelay: cfg.Webhook.RetryDelay,
		Timeout:    cfg.Webhook.Timeout,
		UserAgent:  dispatch.DefaultConfig().UserAgent,
	}, zapLogger)
	tiktokTracker, metaTracker := newTrackers(cfg, ads, zapLogger)

	sinks := []dispatch.Sink{
		automationClient,
		tracking.AsSink(tiktokTracker),
		tracking.AsSink(metaTracker),
	}
	if cfg.BrokerEnabled() {
		publisher, err := broker.Dial(cfg.Broker.URL, cfg.Broker.Exchange, zapLogger)
		if err != nil {
			zapLogger.Fatal("connecting to broker", zap.Error(err))
		}
		defer publisher.Close()
		health.Register("broker", func(context.Context) error {
			if !publisher.IsHealthy() {
				return broker.ErrUnhealthy
			}
			return nil
		})
		sinks = append(sinks, publisher)
	}
	fanOut := dispatch.NewFanOut(zapLogger, sinks...)

	zapLogger.Info("outbound sinks configured",
		zap.Strings("sinks", fanOut.SinkNames()),
		zap.Bool("webhooks", cfg.WebhooksEnabled()),
		zap.Bool("tiktok", cfg.TikTokEnabled()),
		zap.Bool("meta", cfg.MetaEnabled()),
		zap.String("environment", cfg.Environment),
		zap.String("timezone", locale.Location().String()),
	)

	// HTTP modules
	maxBody := cfg.Server.MaxBodyBytes
	timeout := cfg.Server.DispatchTimeout

	orderCtrl := order.NewModule(fanOut, limiter(ratelimit.ScopeOrder), maxBody, timeout, zapLogger)
	contactCtrl := contact.NewModule(fanOut, limiter(ratelimit.ScopeContact), maxBody, timeout, zapLogger)
	engagementCtrl := engagement.NewModule(
		tracking.Multi{tiktokTracker, metaTracker},
		limiter(ratelimit.ScopeButton),
		limiter(ratelimit.ScopeSearch),
		maxBody,
		timeout,
		zapLogger,
	)
	diagnosticsCtrl := diagnostics.NewModule(automationClient, cfg.Product, maxBody, zapLogger)

	router := server.NewRouter(orderCtrl, contactCtrl, engagementCtrl, diagnosticsCtrl, health, cfg.Server.TrustedProxies, zapLogger)
	srv := server.New(cfg.Server, router, zapLogger)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server shutdown failed", zap.Error(err))
		return
	}

	zapLogger.Info("server stopped gracefully")
}

func newRateLimitStore(ctx context.Context, cfg *config.Config, health *server.HealthHandler, logger *zap.Logger) (ratelimit.Store, ratelimit.Sweeper) {
	if cfg.RateLimit.Store != config.RateLimitStoreMySQL {
		store := ratelimit.NewMemoryStore()
		logger.Info("using in-memory rate limit store")
		return store, store
	}

	db, err := mysql.NewConnection(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	logger.Info("database connected")

	store := ratelimit.NewMySQLStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatal("creating rate limit schema", zap.Error(err))
	}
	health.Register("database", db.PingContext)

	return store, store
}

// newTrackers returns a live tracker per platform, or a Nop when the
// platform is disabled for this environment.
func newTrackers(cfg *config.Config, deliverer *dispatch.Dispatcher, logger *zap.Logger) (tracking.Tracker, tracking.Tracker) {
	var tiktokTracker tracking.Tracker = tracking.NewNop(tiktok.Name)
	if cfg.TikTokEnabled() {
		tiktokTracker = tiktok.NewClient(deliverer, tiktok.Config{
			PixelID:     cfg.TikTok.PixelID,
			AccessToken: cfg.TikTok.AccessToken,
			Endpoint:    cfg.TikTok.Endpoint,
		}, logger)
	}

	var metaTracker tracking.Tracker = tracking.NewNop(meta.Name)
	if cfg.MetaEnabled() {
		metaTracker = meta.NewClient(deliverer, meta.Config{
			PixelID:       cfg.Meta.PixelID,
			AccessToken:   cfg.Meta.AccessToken,
			Endpoint:      cfg.Meta.Endpoint,
			APIVersion:    cfg.Meta.APIVersion,
			TestEventCode: cfg.Meta.TestEventCode,
		}, logger)
	}

	return tiktokTracker, metaTracker
}
