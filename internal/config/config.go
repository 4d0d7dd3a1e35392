package config

import (
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvProduction = "production"

	RateLimitStoreMemory = "memory"
	RateLimitStoreMySQL  = "mysql"
)

type Config struct {
	Server      ServerConfig
	Log         LogConfig
	Environment string
	ConfigFile  string
	Timezone    string
	Webhook     WebhookConfig
	TikTok      TikTokConfig
	Meta        MetaConfig
	RateLimit   RateLimitConfig
	Database    DatabaseConfig
	Broker      BrokerConfig
	Product     ProductConfig
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	DispatchTimeout time.Duration
	MaxBodyBytes    int64
	// TrustedProxies are the peers whose forwarding headers name the client.
	TrustedProxies []netip.Prefix
}

type LogConfig struct {
	Level string
}

type WebhookConfig struct {
	Enabled    bool
	OrderURL   string
	ContactURL string
	Secret     string
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
}

type TikTokConfig struct {
	Enabled     bool
	PixelID     string
	AccessToken string
	Endpoint    string
}

type MetaConfig struct {
	Enabled       bool
	PixelID       string
	AccessToken   string
	APIVersion    string
	Endpoint      string
	TestEventCode string
}

type RateLimitPolicy struct {
	Window time.Duration `yaml:"window"`
	Max    int           `yaml:"max"`
}

type RateLimitConfig struct {
	Store         string
	SweepInterval time.Duration
	Policies      map[string]RateLimitPolicy
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type BrokerConfig struct {
	Enabled  bool
	URL      string
	Exchange string
}

// ProductConfig describes the single product sold by the storefront.
type ProductConfig struct {
	Name  string `yaml:"name"`
	Price string `yaml:"price"`
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, EnvProduction)
}

// WebhooksEnabled gates the automation webhooks: the feature flag and a
// production environment are both required.
func (c *Config) WebhooksEnabled() bool {
	return c.Webhook.Enabled && c.IsProduction()
}

func (c *Config) TikTokEnabled() bool {
	return c.TikTok.Enabled && c.IsProduction()
}

func (c *Config) MetaEnabled() bool {
	return c.Meta.Enabled && c.IsProduction()
}

func (c *Config) BrokerEnabled() bool {
	return c.Broker.Enabled && c.Broker.URL != ""
}

// Load reads configuration from the environment, after loading an optional
// .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	// Older deployments used NODE_ENV and a single MAKE_WEBHOOK_URL.
	_ = v.BindEnv("APP_ENV", "APP_ENV", "NODE_ENV")
	_ = v.BindEnv("MAKE_ORDER_WEBHOOK_URL", "MAKE_ORDER_WEBHOOK_URL", "MAKE_WEBHOOK_URL")

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetInt("SERVER_PORT"),
			ReadTimeout:     v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("SERVER_WRITE_TIMEOUT"),
			IdleTimeout:     v.GetDuration("SERVER_IDLE_TIMEOUT"),
			ShutdownTimeout: v.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
			DispatchTimeout: v.GetDuration("DISPATCH_TIMEOUT"),
			MaxBodyBytes:    v.GetInt64("MAX_BODY_BYTES"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Environment: v.GetString("APP_ENV"),
		ConfigFile:  v.GetString("CONFIG_FILE"),
		Timezone:    v.GetString("TIMEZONE"),
		Webhook: WebhookConfig{
			Enabled:    v.GetBool("ENABLE_WEBHOOKS"),
			OrderURL:   v.GetString("MAKE_ORDER_WEBHOOK_URL"),
			ContactURL: v.GetString("MAKE_CONTACT_WEBHOOK_URL"),
			Secret:     v.GetString("WEBHOOK_SECRET"),
			MaxRetries: v.GetInt("WEBHOOK_MAX_RETRIES"),
			RetryDelay: v.GetDuration("WEBHOOK_RETRY_DELAY"),
			Timeout:    v.GetDuration("WEBHOOK_TIMEOUT"),
		},
		TikTok: TikTokConfig{
			Enabled:     v.GetBool("ENABLE_TIKTOK_API"),
			PixelID:     v.GetString("TIKTOK_PIXEL_ID"),
			AccessToken: v.GetString("TIKTOK_ACCESS_TOKEN"),
			Endpoint:    v.GetString("TIKTOK_API_ENDPOINT"),
		},
		Meta: MetaConfig{
			Enabled:       v.GetBool("ENABLE_META_API"),
			PixelID:       v.GetString("META_PIXEL_ID"),
			AccessToken:   v.GetString("META_ACCESS_TOKEN"),
			APIVersion:    v.GetString("META_API_VERSION"),
			Endpoint:      v.GetString("META_API_ENDPOINT"),
			TestEventCode: v.GetString("META_TEST_EVENT_CODE"),
		},
		RateLimit: RateLimitConfig{
			Store:         strings.ToLower(v.GetString("RATE_LIMIT_STORE")),
			SweepInterval: v.GetDuration("RATE_LIMIT_SWEEP_INTERVAL"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Broker: BrokerConfig{
			Enabled:  v.GetBool("ENABLE_BROKER"),
			URL:      v.GetString("RABBITMQ_URL"),
			Exchange: v.GetString("RABBITMQ_EXCHANGE"),
		},
		Product: ProductConfig{
			Name:  v.GetString("PRODUCT_NAME"),
			Price: v.GetString("PRODUCT_PRICE"),
		},
	}

	proxies, err := parseTrustedProxies(v.GetString("TRUSTED_PROXIES"))
	if err != nil {
		return nil, err
	}
	cfg.Server.TrustedProxies = proxies

	switch cfg.RateLimit.Store {
	case RateLimitStoreMemory, RateLimitStoreMySQL:
	default:
		return nil, fmt.Errorf("invalid RATE_LIMIT_STORE %q", cfg.RateLimit.Store)
	}

	return cfg, nil
}

// parseTrustedProxies reads a comma separated list of CIDRs or single
// addresses.
func parseTrustedProxies(raw string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if strings.Contains(item, "/") {
			prefix, err := netip.ParsePrefix(item)
			if err != nil {
				return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q: %w", item, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(item)
		if err != nil {
			return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q: %w", item, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", "10s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "60s")
	v.SetDefault("SERVER_IDLE_TIMEOUT", "30s")
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("DISPATCH_TIMEOUT", "45s")
	v.SetDefault("MAX_BODY_BYTES", 64<<10)
	v.SetDefault("TRUSTED_PROXIES", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("CONFIG_FILE", "config/config.yaml")
	v.SetDefault("TIMEZONE", "Africa/Cairo")

	v.SetDefault("ENABLE_WEBHOOKS", false)
	v.SetDefault("WEBHOOK_MAX_RETRIES", 3)
	v.SetDefault("WEBHOOK_RETRY_DELAY", "1s")
	v.SetDefault("WEBHOOK_TIMEOUT", "10s")

	v.SetDefault("ENABLE_TIKTOK_API", false)
	v.SetDefault("TIKTOK_API_ENDPOINT", "https://business-api.tiktok.com/open_api/v1.3/event/track/")

	v.SetDefault("ENABLE_META_API", false)
	v.SetDefault("META_API_VERSION", "v19.0")
	v.SetDefault("META_API_ENDPOINT", "https://graph.facebook.com")

	v.SetDefault("RATE_LIMIT_STORE", "memory")
	v.SetDefault("RATE_LIMIT_SWEEP_INTERVAL", "1m")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 3306)
	v.SetDefault("DB_USER", "dorebell")
	v.SetDefault("DB_PASSWORD", "secret")
	v.SetDefault("DB_NAME", "dorebell")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")

	v.SetDefault("ENABLE_BROKER", false)
	v.SetDefault("RABBITMQ_EXCHANGE", "dorebell.events")

	v.SetDefault("PRODUCT_NAME", "جرس الباب الذكي بالكاميرا")
	v.SetDefault("PRODUCT_PRICE", "1999")
}
