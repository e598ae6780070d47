package config

import (
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/decision-cli/internal/model"
	"github.com/sells-group/decision-cli/internal/resilience"
)

// Config holds the full application configuration.
type Config struct {
	Upstream   UpstreamConfig   `yaml:"upstream" mapstructure:"upstream"`
	Wizard     WizardConfig     `yaml:"wizard" mapstructure:"wizard"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Stub       StubConfig       `yaml:"stub" mapstructure:"stub"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// UpstreamConfig configures the decision analysis service client.
type UpstreamConfig struct {
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int           `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Retry       RetryConfig   `yaml:"retry" mapstructure:"retry"`
	Circuit     CircuitConfig `yaml:"circuit" mapstructure:"circuit"`
	RatePerSec  float64       `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	RateBurst   int           `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// RetryConfig bounds retries of transient upstream failures.
type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
}

// CircuitConfig configures the upstream circuit breaker.
type CircuitConfig struct {
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// WizardConfig configures wizard sessions.
type WizardConfig struct {
	DefaultDepth   string `yaml:"default_depth" mapstructure:"default_depth"`
	StrictContract bool   `yaml:"strict_contract" mapstructure:"strict_contract"`
}

// StoreConfig configures the decision history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the session API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	SessionTTLMins int      `yaml:"session_ttl_mins" mapstructure:"session_ttl_mins"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// StubConfig configures the canned upstream service.
type StubConfig struct {
	Port      int `yaml:"port" mapstructure:"port"`
	LatencyMs int `yaml:"latency_ms" mapstructure:"latency_ms"`
}

// MonitoringConfig configures decision-quality alerting.
type MonitoringConfig struct {
	WebhookURL          string  `yaml:"webhook_url" mapstructure:"webhook_url"`
	CheckIntervalSecs   int     `yaml:"check_interval_secs" mapstructure:"check_interval_secs"`
	LookbackWindowHours int     `yaml:"lookback_window_hours" mapstructure:"lookback_window_hours"`
	AgreementThreshold  float64 `yaml:"agreement_threshold" mapstructure:"agreement_threshold"`
	ViolationThreshold  int     `yaml:"violation_threshold" mapstructure:"violation_threshold"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Guard converts the upstream settings into a resilience guard config.
func (u UpstreamConfig) Guard() resilience.GuardConfig {
	return resilience.GuardConfig{
		MaxAttempts:      u.Retry.MaxAttempts,
		InitialBackoffMs: u.Retry.InitialBackoffMs,
		MaxBackoffMs:     u.Retry.MaxBackoffMs,
		FailureThreshold: u.Circuit.FailureThreshold,
		ResetTimeoutSecs: u.Circuit.ResetTimeoutSecs,
		RatePerSec:       u.RatePerSec,
		RateBurst:        u.RateBurst,
	}
}

// defaults are applied beneath config.yaml and DECIDE_* variables.
var defaults = map[string]any{
	"upstream.base_url":                   "http://127.0.0.1:5000/api",
	"upstream.timeout_secs":               90,
	"upstream.retry.max_attempts":         2,
	"upstream.retry.initial_backoff_ms":   500,
	"upstream.retry.max_backoff_ms":       5000,
	"upstream.circuit.failure_threshold":  5,
	"upstream.circuit.reset_timeout_secs": 30,
	"upstream.rate_per_sec":               5,
	"upstream.rate_burst":                 5,
	"wizard.default_depth":                "balanced",
	"wizard.strict_contract":              false,
	"store.driver":                        "sqlite",
	"store.database_url":                  "decisions.db",
	"server.port":                         8080,
	"server.session_ttl_mins":             30,
	"server.allowed_origins":              []string{"http://localhost:3000"},
	"stub.port":                           5000,
	"stub.latency_ms":                     0,
	"monitoring.webhook_url":              "",
	"monitoring.check_interval_secs":      300,
	"monitoring.lookback_window_hours":    24,
	"monitoring.agreement_threshold":      0.5,
	"monitoring.violation_threshold":      10,
	"log.level":                           "info",
	"log.format":                          "json",
}

// Load reads config.yaml from the working directory when present, then
// applies DECIDE_* environment overrides (DECIDE_UPSTREAM_BASE_URL for
// upstream.base_url).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("DECIDE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return nil, eris.Wrap(err, "config: read config.yaml")
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, eris.Wrap(err, "config: decode")
	}
	return cfg, nil
}

// Validate checks the settings a command mode depends on. Modes are "run",
// "serve" and "stub".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "run", "serve":
		if c.Upstream.BaseURL == "" {
			errs = append(errs, "upstream.base_url is required")
		}
		if c.Upstream.TimeoutSecs <= 0 {
			errs = append(errs, "upstream.timeout_secs must be positive")
		}
		if c.Upstream.Retry.MaxAttempts < 1 || c.Upstream.Retry.MaxAttempts > 10 {
			errs = append(errs, "upstream.retry.max_attempts must be between 1 and 10")
		}
		if _, err := model.ParseDepth(c.Wizard.DefaultDepth); err != nil {
			errs = append(errs, "wizard.default_depth must be quick, balanced or thorough")
		}
		switch c.Store.Driver {
		case "sqlite", "postgres":
		default:
			errs = append(errs, "store.driver must be sqlite or postgres")
		}
		if mode == "serve" {
			if c.Server.Port < 1 || c.Server.Port > 65535 {
				errs = append(errs, "server.port must be between 1 and 65535")
			}
			if c.Server.SessionTTLMins < 0 {
				errs = append(errs, "server.session_ttl_mins must not be negative")
			}
		}
	case "stub":
		if c.Stub.Port < 1 || c.Stub.Port > 65535 {
			errs = append(errs, "stub.port must be between 1 and 65535")
		}
		if c.Stub.LatencyMs < 0 {
			errs = append(errs, "stub.latency_ms must not be negative")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: invalid for %s: %s", mode, strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger replaces the global zap logger. Format "console" selects the
// development encoder; anything else logs JSON.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
