package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:5000/api", cfg.Upstream.BaseURL)
	assert.Equal(t, 90, cfg.Upstream.TimeoutSecs)
	assert.Equal(t, 2, cfg.Upstream.Retry.MaxAttempts)
	assert.Equal(t, 500, cfg.Upstream.Retry.InitialBackoffMs)
	assert.Equal(t, 5000, cfg.Upstream.Retry.MaxBackoffMs)
	assert.Equal(t, 5, cfg.Upstream.Circuit.FailureThreshold)
	assert.Equal(t, 30, cfg.Upstream.Circuit.ResetTimeoutSecs)
	assert.InDelta(t, 5, cfg.Upstream.RatePerSec, 0.001)
	assert.Equal(t, 5, cfg.Upstream.RateBurst)
	assert.Equal(t, "balanced", cfg.Wizard.DefaultDepth)
	assert.False(t, cfg.Wizard.StrictContract)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "decisions.db", cfg.Store.DatabaseURL)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30, cfg.Server.SessionTTLMins)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 5000, cfg.Stub.Port)
	assert.Empty(t, cfg.Monitoring.WebhookURL)
	assert.Equal(t, 300, cfg.Monitoring.CheckIntervalSecs)
	assert.Equal(t, 24, cfg.Monitoring.LookbackWindowHours)
	assert.InDelta(t, 0.5, cfg.Monitoring.AgreementThreshold, 0.001)
	assert.Equal(t, 10, cfg.Monitoring.ViolationThreshold)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
upstream:
  base_url: http://decisions.internal/api
  retry:
    max_attempts: 4
wizard:
  default_depth: thorough
  strict_contract: true
store:
  driver: postgres
  database_url: postgres://localhost/decisions
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://decisions.internal/api", cfg.Upstream.BaseURL)
	assert.Equal(t, 4, cfg.Upstream.Retry.MaxAttempts)
	assert.Equal(t, "thorough", cfg.Wizard.DefaultDepth)
	assert.True(t, cfg.Wizard.StrictContract)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "console", cfg.Log.Format)
	// Defaults still apply for unset values
	assert.Equal(t, 500, cfg.Upstream.Retry.InitialBackoffMs)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: postgres
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("DECIDE_STORE_DRIVER", "sqlite")
	t.Setenv("DECIDE_LOG_LEVEL", "warn")
	t.Setenv("DECIDE_UPSTREAM_BASE_URL", "http://other:5000/api")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "http://other:5000/api", cfg.Upstream.BaseURL)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("upstream: [unclosed"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read config.yaml")
}

func TestGuard(t *testing.T) {
	u := UpstreamConfig{
		Retry:      RetryConfig{MaxAttempts: 3, InitialBackoffMs: 100, MaxBackoffMs: 900},
		Circuit:    CircuitConfig{FailureThreshold: 4, ResetTimeoutSecs: 10},
		RatePerSec: 2,
		RateBurst:  3,
	}
	g := u.Guard()
	assert.Equal(t, 3, g.MaxAttempts)
	assert.Equal(t, 100, g.InitialBackoffMs)
	assert.Equal(t, 900, g.MaxBackoffMs)
	assert.Equal(t, 4, g.FailureThreshold)
	assert.Equal(t, 10, g.ResetTimeoutSecs)
	assert.InDelta(t, 2, g.RatePerSec, 0.001)
	assert.Equal(t, 3, g.RateBurst)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Upstream.BaseURL = "http://127.0.0.1:5000/api"
	cfg.Upstream.TimeoutSecs = 90
	cfg.Upstream.Retry.MaxAttempts = 2
	cfg.Wizard.DefaultDepth = "balanced"
	cfg.Store.Driver = "sqlite"
	cfg.Server.Port = 8080
	cfg.Stub.Port = 5000
	return cfg
}

func TestValidateRun_Valid(t *testing.T) {
	assert.NoError(t, validDefaults().Validate("run"))
}

func TestValidateRun_MissingFields(t *testing.T) {
	cfg := validDefaults()
	cfg.Upstream.BaseURL = ""
	cfg.Wizard.DefaultDepth = "deep"
	cfg.Store.Driver = "mysql"

	err := cfg.Validate("run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream.base_url")
	assert.Contains(t, err.Error(), "wizard.default_depth")
	assert.Contains(t, err.Error(), "store.driver")
}

func TestValidateRun_RetryBounds(t *testing.T) {
	cfg := validDefaults()
	cfg.Upstream.Retry.MaxAttempts = 0
	assert.ErrorContains(t, cfg.Validate("run"), "max_attempts")

	cfg.Upstream.Retry.MaxAttempts = 11
	assert.ErrorContains(t, cfg.Validate("run"), "max_attempts")
}

func TestValidateServe_ValidPort(t *testing.T) {
	assert.NoError(t, validDefaults().Validate("serve"))
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 70000
	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
}

func TestValidateStub(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("stub"))

	cfg.Stub.LatencyMs = -1
	assert.ErrorContains(t, cfg.Validate("stub"), "stub.latency_ms")
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("batch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
