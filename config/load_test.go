package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeTempConfig(t, `
env: prod
server:
  addr: ":9300"
  metricsAddr: ":9400"
risk:
  confidence: 0.95
  maxExposure: 0.6
  maxDrawdown: 0.1
  latencyWarn: 2ms
state:
  backend: file
  path: /var/lib/risk/state.json
log:
  level: debug
  format: console
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, ":9300", cfg.Server.Addr)
	assert.Equal(t, 0.95, cfg.Risk.Confidence)
	assert.Equal(t, 2*time.Millisecond, cfg.Risk.LatencyWarn)
	assert.Equal(t, "/var/lib/risk/state.json", cfg.State.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	// 未出现的字段保留默认值
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 1_000_000, cfg.MonteCarlo.MaxIterations)

	limits := cfg.RiskLimits()
	assert.Equal(t, 0.6, limits.MaxExposure)
	assert.Equal(t, 0.1, limits.MaxDrawdown)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeTempConfig(t, `
risk:
  confidence: 1.5
`)
	_, err := Load(path)
	require.Error(t, err)
	var invalid ErrInvalid
	assert.True(t, errors.As(err, &invalid))
	assert.Contains(t, err.Error(), "risk.confidence")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := writeTempConfig(t, `
env: staging
risk:
  maxExposure: 0.5
`)
	t.Setenv("RISK_PORT", "8400")
	t.Setenv("RISK_CONFIDENCE", "0.95")
	t.Setenv("RISK_MAX_EXPOSURE", "0.6")
	t.Setenv("RISK_MAX_DRAWDOWN", "0.12")
	t.Setenv("RISK_STATE_PATH", "/tmp/risk.json")
	t.Setenv("RISK_LOG_LEVEL", "warn")

	cfg, err := LoadWithEnvOverrides(path)
	require.NoError(t, err)
	assert.Equal(t, ":8400", cfg.Server.Addr)
	assert.Equal(t, 0.95, cfg.Risk.Confidence)
	assert.Equal(t, 0.6, cfg.Risk.MaxExposure)
	assert.Equal(t, 0.12, cfg.Risk.MaxDrawdown)
	assert.Equal(t, "/tmp/risk.json", cfg.State.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadWithEnvOverridesNoFile(t *testing.T) {
	t.Setenv("RISK_STATE_DSN", "postgres://risk@localhost/risk?sslmode=disable")
	cfg, err := LoadWithEnvOverrides("")
	require.NoError(t, err)
	assert.Equal(t, ":8300", cfg.Server.Addr)
	assert.Equal(t, BackendPostgres, cfg.State.Backend)
}

func TestLoadWithEnvOverridesBadValue(t *testing.T) {
	t.Setenv("RISK_MAX_EXPOSURE", "lots")
	_, err := LoadWithEnvOverrides("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RISK_MAX_EXPOSURE")
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(Default()))

	tests := []struct {
		name   string
		mutate func(*AppConfig)
		field  string
	}{
		{"empty addr", func(c *AppConfig) { c.Server.Addr = "" }, "server.addr"},
		{"exposure", func(c *AppConfig) { c.Risk.MaxExposure = 0 }, "risk.maxExposure"},
		{"drawdown", func(c *AppConfig) { c.Risk.MaxDrawdown = 2 }, "risk.maxDrawdown"},
		{"mc cap", func(c *AppConfig) { c.MonteCarlo.MaxIterations = 2_000_000 }, "monteCarlo.maxIterations"},
		{"workers", func(c *AppConfig) { c.Backtest.Workers = -1 }, "backtest.workers"},
		{"backend", func(c *AppConfig) { c.State.Backend = "redis" }, "state.backend"},
		{"dsn", func(c *AppConfig) { c.State.Backend = BackendPostgres }, "state.dsn"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}
