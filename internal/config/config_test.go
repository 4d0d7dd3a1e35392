package config

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_ENV", "NODE_ENV", "ENABLE_WEBHOOKS", "MAKE_ORDER_WEBHOOK_URL", "MAKE_WEBHOOK_URL",
		"MAKE_CONTACT_WEBHOOK_URL", "RATE_LIMIT_STORE", "ENABLE_TIKTOK_API", "ENABLE_META_API",
		"SERVER_PORT", "WEBHOOK_RETRY_DELAY", "TRUSTED_PROXIES",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 3, cfg.Webhook.MaxRetries)
	assert.Equal(t, time.Second, cfg.Webhook.RetryDelay)
	assert.Equal(t, 10*time.Second, cfg.Webhook.Timeout)
	assert.Equal(t, RateLimitStoreMemory, cfg.RateLimit.Store)
	assert.Equal(t, "v19.0", cfg.Meta.APIVersion)
	assert.Equal(t, "Africa/Cairo", cfg.Timezone)
	assert.Equal(t, "config/config.yaml", cfg.ConfigFile)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("WEBHOOK_RETRY_DELAY", "250ms")
	t.Setenv("RATE_LIMIT_STORE", "MySQL")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Webhook.RetryDelay)
	assert.Equal(t, RateLimitStoreMySQL, cfg.RateLimit.Store)
}

func TestLoad_LegacyVariableNames(t *testing.T) {
	clearEnv(t)
	t.Setenv("NODE_ENV", "production")
	t.Setenv("MAKE_WEBHOOK_URL", "https://hook.make.com/legacy")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "https://hook.make.com/legacy", cfg.Webhook.OrderURL)
}

func TestLoad_PrimaryNameWinsOverLegacy(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "staging")
	t.Setenv("NODE_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
}

func TestLoad_TrustedProxies(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.168.1.10/32"),
	}, cfg.Server.TrustedProxies)
}

func TestLoad_NoTrustedProxiesByDefault(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.Server.TrustedProxies)
}

func TestLoad_InvalidTrustedProxy(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRUSTED_PROXIES", "not-an-ip")

	_, err := Load()
	assert.ErrorContains(t, err, "TRUSTED_PROXIES")
}

func TestLoad_InvalidStore(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_LIMIT_STORE", "redis")

	_, err := Load()
	assert.ErrorContains(t, err, "RATE_LIMIT_STORE")
}

func TestOutboundGates(t *testing.T) {
	cfg := &Config{
		Environment: "development",
		Webhook:     WebhookConfig{Enabled: true},
		TikTok:      TikTokConfig{Enabled: true},
		Meta:        MetaConfig{Enabled: false},
	}

	assert.False(t, cfg.WebhooksEnabled(), "flag alone is not enough outside production")
	assert.False(t, cfg.TikTokEnabled())

	cfg.Environment = "Production"
	assert.True(t, cfg.WebhooksEnabled())
	assert.True(t, cfg.TikTokEnabled())
	assert.False(t, cfg.MetaEnabled())

	assert.False(t, cfg.BrokerEnabled())
	cfg.Broker = BrokerConfig{Enabled: true, URL: "amqp://localhost"}
	assert.True(t, cfg.BrokerEnabled())
}
