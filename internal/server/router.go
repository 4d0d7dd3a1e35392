package server

import (
	"net/http"
	"net/netip"
	"strconv"
	"time"

	"dorebell/internal/commons"
	contactcontroller "dorebell/internal/contact/controller"
	"dorebell/internal/diagnostics"
	engagementcontroller "dorebell/internal/engagement/controller"
	"dorebell/internal/infrastructure/metrics"
	ordercontroller "dorebell/internal/order/controller"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func NewRouter(
	orderCtrl *ordercontroller.OrderController,
	contactCtrl *contactcontroller.ContactController,
	engagementCtrl *engagementcontroller.EngagementController,
	diagnosticsCtrl *diagnostics.Controller,
	health *HealthHandler,
	trustedProxies []netip.Prefix,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(realIP(trustedProxies))
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(instrument)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		commons.WriteError(w, http.StatusNotFound, commons.MsgNotFound, logger)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		commons.WriteError(w, http.StatusMethodNotAllowed, commons.MsgMethodNotAllowed, logger)
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/order", orderCtrl.PlaceOrder)
		r.Post("/contact", contactCtrl.SubmitContact)
		r.Post("/tiktok-button", engagementCtrl.TrackButtonClick)
		r.Post("/tiktok-search", engagementCtrl.TrackSearch)
		r.Get("/test-make", diagnosticsCtrl.HandleCheck)
		r.Post("/test-make", diagnosticsCtrl.HandleTest)
	})

	r.Get("/health", health.ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Info("request completed",
				zap.String("requestId", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("remoteIp", r.RemoteAddr),
			)
		})
	}
}

// instrument records request counts and latency by route pattern so ids in
// paths never explode the label space.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
