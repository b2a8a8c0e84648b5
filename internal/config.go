package internal

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/frahmantamala/checkout-gateway/internal/provider"
)

type Config struct {
	Env           string              `mapstructure:"app_env"`
	Server        ServerConfig        `mapstructure:"http_server"`
	Provider      ProviderConfig      `mapstructure:"provider"`
	Webhook       WebhookConfig       `mapstructure:"webhook"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

type ProviderConfig struct {
	Shape               string        `mapstructure:"shape"`
	Auth                string        `mapstructure:"auth"`
	PublicAPIKey        string        `mapstructure:"public_api_key"`
	SecretAPIKey        string        `mapstructure:"secret_api_key"`
	WalletID            string        `mapstructure:"wallet_id"`
	PaylinkID           string        `mapstructure:"paylink_id"`
	APIEndpoint         string        `mapstructure:"api_endpoint"`
	PricingCurrencyID   string        `mapstructure:"pricing_currency_id"`
	RecipientCurrencyID string        `mapstructure:"recipient_currency_id"`
	DefaultCurrency     string        `mapstructure:"default_currency"`
	CheckoutCurrency    string        `mapstructure:"checkout_currency"`
	PaymentMethods      []string      `mapstructure:"payment_methods"`
	Timeout             time.Duration `mapstructure:"timeout"`
	Breaker             BreakerConfig `mapstructure:"breaker"`
}

type BreakerConfig struct {
	Enabled             bool          `mapstructure:"enabled"`
	MaxRequests         uint32        `mapstructure:"max_requests"`
	Interval            time.Duration `mapstructure:"interval"`
	OpenTimeout         time.Duration `mapstructure:"open_timeout"`
	ConsecutiveFailures uint32        `mapstructure:"consecutive_failures"`
}

type WebhookConfig struct {
	Sink         string   `mapstructure:"sink"`
	NATSURL      string   `mapstructure:"nats_url"`
	NATSSubject  string   `mapstructure:"nats_subject"`
	KafkaBrokers []string `mapstructure:"kafka_brokers"`
	KafkaTopic   string   `mapstructure:"kafka_topic"`
}

type ObservabilityConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	ServiceName  string  `mapstructure:"service_name"`
	SamplingRate float64 `mapstructure:"sampling_rate"`
	Endpoint     string  `mapstructure:"endpoint"`
	Insecure     bool    `mapstructure:"insecure"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ----------------- LOADING -----------------

var defaults = map[string]interface{}{
	"app_env": "development",

	"http_server.port":                3000,
	"http_server.allowed_origins":     "*",
	"http_server.read_header_timeout": 5 * time.Second,
	"http_server.read_timeout":        15 * time.Second,
	"http_server.write_timeout":       30 * time.Second,
	"http_server.idle_timeout":        60 * time.Second,
	"http_server.shutdown_timeout":    30 * time.Second,

	"provider.shape":                 provider.ShapeCharge,
	"provider.auth":                  "",
	"provider.public_api_key":        provider.PlaceholderPublicKey,
	"provider.secret_api_key":        provider.PlaceholderSecretKey,
	"provider.wallet_id":             "68d51417b75b14c25b97d4c8",
	"provider.paylink_id":            "",
	"provider.api_endpoint":          "https://api.hel.io/v1",
	"provider.pricing_currency_id":   "6340313846e4f91b8abc519b",
	"provider.recipient_currency_id": "6340313846e4f91b8abc519b",
	"provider.default_currency":      "USD",
	"provider.checkout_currency":     "USD",
	"provider.payment_methods":       []string{"card"},
	"provider.timeout":               10 * time.Second,

	"provider.breaker.enabled":              false,
	"provider.breaker.max_requests":         1,
	"provider.breaker.interval":             time.Minute,
	"provider.breaker.open_timeout":         30 * time.Second,
	"provider.breaker.consecutive_failures": 5,

	"webhook.sink":          "none",
	"webhook.nats_url":      "nats://127.0.0.1:4222",
	"webhook.nats_subject":  "checkout.webhook",
	"webhook.kafka_brokers": []string{"localhost:9092"},
	"webhook.kafka_topic":   "checkout.webhook",

	"observability.metrics.enabled":       true,
	"observability.metrics.path":          "/metrics",
	"observability.tracing.enabled":       false,
	"observability.tracing.service_name":  "checkout-gateway",
	"observability.tracing.sampling_rate": 1.0,
	"observability.tracing.endpoint":      "localhost:4318",
	"observability.tracing.insecure":      true,
	"observability.logging.level":         "info",
	"observability.logging.format":        "text",
}

// envAliases keeps the short variable names deployments already use. Every
// key is also reachable as CHECKOUT_<KEY> through AutomaticEnv.
var envAliases = map[string][]string{
	"app_env":                        {"APP_ENV"},
	"http_server.port":               {"PORT"},
	"http_server.allowed_origins":    {"ALLOWED_ORIGINS"},
	"provider.shape":                 {"CHECKOUT_SHAPE"},
	"provider.auth":                  {"CHECKOUT_AUTH"},
	"provider.public_api_key":        {"HELIO_PUBLIC_API_KEY"},
	"provider.secret_api_key":        {"HELIO_SECRET_API_KEY"},
	"provider.wallet_id":             {"HELIO_WALLET_ID"},
	"provider.paylink_id":            {"HELIO_PAYLINK_ID"},
	"provider.api_endpoint":          {"HELIO_API_ENDPOINT"},
	"provider.pricing_currency_id":   {"HELIO_PRICING_CURRENCY_ID"},
	"provider.recipient_currency_id": {"HELIO_RECIPIENT_CURRENCY_ID"},
	"provider.default_currency":      {"CHECKOUT_DEFAULT_CURRENCY"},
	"provider.timeout":               {"PROVIDER_TIMEOUT"},
	"webhook.sink":                   {"WEBHOOK_SINK"},
	"webhook.nats_url":               {"NATS_URL"},
	"webhook.kafka_brokers":          {"KAFKA_BROKERS"},
	"observability.logging.level":    {"LOG_LEVEL"},
	"observability.logging.format":   {"LOG_FORMAT"},
}

// LoadConfig reads defaults, an optional config.yml under path and the
// environment, in increasing order of precedence.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvPrefix("CHECKOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	for key, aliases := range envAliases {
		envs := append([]string{"CHECKOUT_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, aliases...)
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("error binding env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error validating config: %w", err)
	}

	return &cfg, nil
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Provider.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("provider config: %v", err))
	}

	if err := c.Webhook.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("webhook config: %v", err))
	}

	if err := c.Observability.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("observability config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.AllowedOrigins != "" {
		for _, origin := range c.Origins() {
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *ServerConfig) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func (c *ProviderConfig) Validate() error {
	switch c.Shape {
	case provider.ShapeCharge, provider.ShapeDirect:
	default:
		return fmt.Errorf("shape must be one of %q or %q, got %q", provider.ShapeCharge, provider.ShapeDirect, c.Shape)
	}
	switch c.Auth {
	case "", provider.AuthAPIKey, provider.AuthBearer:
	default:
		return fmt.Errorf("auth must be one of %q or %q, got %q", provider.AuthAPIKey, provider.AuthBearer, c.Auth)
	}
	if _, err := url.ParseRequestURI(c.APIEndpoint); err != nil {
		return fmt.Errorf("invalid api_endpoint: %w", err)
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.DefaultCurrency == "" {
		return errors.New("default_currency is required")
	}
	return nil
}

// ClientConfig is the read-only view handed to the provider client.
func (c *ProviderConfig) ClientConfig() provider.Config {
	return provider.Config{
		Shape:               c.Shape,
		Auth:                c.Auth,
		APIEndpoint:         c.APIEndpoint,
		PublicAPIKey:        c.PublicAPIKey,
		SecretAPIKey:        c.SecretAPIKey,
		WalletID:            c.WalletID,
		PaylinkID:           c.PaylinkID,
		PricingCurrencyID:   c.PricingCurrencyID,
		RecipientCurrencyID: c.RecipientCurrencyID,
		CheckoutCurrency:    c.CheckoutCurrency,
		PaymentMethods:      append([]string(nil), c.PaymentMethods...),
		Timeout:             c.Timeout,
		Breaker: provider.BreakerConfig{
			Enabled:             c.Breaker.Enabled,
			MaxRequests:         c.Breaker.MaxRequests,
			Interval:            c.Breaker.Interval,
			OpenTimeout:         c.Breaker.OpenTimeout,
			ConsecutiveFailures: c.Breaker.ConsecutiveFailures,
		},
	}
}

func (c *WebhookConfig) Validate() error {
	switch c.Sink {
	case "", "none":
	case "nats":
		if c.NATSURL == "" {
			return errors.New("nats_url is required when sink is nats")
		}
	case "kafka":
		if len(c.KafkaBrokers) == 0 || c.KafkaTopic == "" {
			return errors.New("kafka_brokers and kafka_topic are required when sink is kafka")
		}
	default:
		return fmt.Errorf("unknown sink %q", c.Sink)
	}
	return nil
}

func (c *ObservabilityConfig) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging format must be json or text, got %q", c.Logging.Format)
	}
	if c.Metrics.Enabled && c.Metrics.Path == "" {
		return errors.New("metrics path is required when metrics are enabled")
	}
	if c.Tracing.SamplingRate < 0 || c.Tracing.SamplingRate > 1 {
		return errors.New("tracing sampling_rate must be within [0, 1]")
	}
	if c.Tracing.Enabled && (c.Tracing.ServiceName == "" || c.Tracing.Endpoint == "") {
		return errors.New("tracing service_name and endpoint are required when tracing is enabled")
	}
	return nil
}
