// Package ratelimit implements per-endpoint fixed-window request counters.
//
// A window opens on the first request from a client and closes a fixed
// duration later. Within a window a client may make at most Policy.Max
// requests. Counters live in a Store so they can be kept in process memory
// or in MySQL and expired by a janitor.
package ratelimit

import (
	"context"
	"time"

	apperrors "dorebell/internal/errors"
	"dorebell/internal/infrastructure/metrics"

	"go.uber.org/zap"
)

type Policy struct {
	Window time.Duration `yaml:"window"`
	Max    int           `yaml:"max"`
}

// Entry is the counter state of one client in one scope.
type Entry struct {
	Count   int
	ResetAt time.Time
}

// Store applies a hit to the counter of (scope, key) atomically and returns
// the resulting entry and whether the hit was allowed.
type Store interface {
	Hit(ctx context.Context, scope, key string, now time.Time, policy Policy) (Entry, bool, error)
}

// decide is the window rule shared by every store.
func decide(entry Entry, found bool, now time.Time, p Policy) (Entry, bool) {
	if !found || now.After(entry.ResetAt) {
		return Entry{Count: 1, ResetAt: now.Add(p.Window)}, true
	}
	if entry.Count < p.Max {
		entry.Count++
		return entry, true
	}
	return entry, false
}

type Limiter struct {
	scope  string
	policy Policy
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

func New(scope string, policy Policy, store Store, logger *zap.Logger) *Limiter {
	return &Limiter{
		scope:  scope,
		policy: policy,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the time source; used by tests.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

func (l *Limiter) Scope() string {
	return l.scope
}

func (l *Limiter) Policy() Policy {
	return l.policy
}

// Allow records one request for key and reports whether it may proceed.
// A failing store lets the request through.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	entry, allowed, err := l.store.Hit(ctx, l.scope, key, l.now(), l.policy)
	if err != nil {
		l.logger.Error("rate limit store failed, allowing request",
			zap.String("scope", l.scope),
			zap.String("clientKey", key),
			zap.Error(err),
		)
		metrics.RateLimitedTotal.WithLabelValues(l.scope, "store_error").Inc()
		return true
	}

	if !allowed {
		l.logger.Warn("rate limit exceeded",
			zap.String("scope", l.scope),
			zap.String("clientKey", key),
			zap.Int("count", entry.Count),
			zap.Time("resetAt", entry.ResetAt),
		)
		metrics.RateLimitedTotal.WithLabelValues(l.scope, "denied").Inc()
		return false
	}

	metrics.RateLimitedTotal.WithLabelValues(l.scope, "allowed").Inc()
	return true
}

// Check is Allow reported as an error: a denied request yields a
// *errors.RateLimitError.
func (l *Limiter) Check(ctx context.Context, key string) error {
	if l.Allow(ctx, key) {
		return nil
	}
	return apperrors.NewRateLimitError(l.scope, key)
}

// Default scopes and their policies.
const (
	ScopeContact = "contact"
	ScopeOrder   = "order"
	ScopeButton  = "tiktok-button"
	ScopeSearch  = "tiktok-search"
)

func DefaultPolicies() map[string]Policy {
	return map[string]Policy{
		ScopeContact: {Window: 15 * time.Minute, Max: 3},
		ScopeOrder:   {Window: 15 * time.Minute, Max: 5},
		ScopeButton:  {Window: 5 * time.Minute, Max: 20},
		ScopeSearch:  {Window: 5 * time.Minute, Max: 15},
	}
}
