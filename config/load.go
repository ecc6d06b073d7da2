package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"risk-engine-go/infrastructure/logger"
	"risk-engine-go/risk"
)

// AppConfig holds the main runtime configuration.
type AppConfig struct {
	Env        string           `yaml:"env"`
	Server     ServerConfig     `yaml:"server"`
	Risk       RiskConfig       `yaml:"risk"`
	MonteCarlo MonteCarloConfig `yaml:"monteCarlo"`
	Backtest   BacktestConfig   `yaml:"backtest"`
	State      StateConfig      `yaml:"state"`
	Log        logger.Config    `yaml:"log"`
	Alert      AlertConfig      `yaml:"alert"`
}

type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	MetricsAddr    string        `yaml:"metricsAddr"`
	ReadTimeout    time.Duration `yaml:"readTimeout"`
	WriteTimeout   time.Duration `yaml:"writeTimeout"`
	AllowedOrigins []string      `yaml:"allowedOrigins"` // websocket Origin 白名单，空表示不限制
}

// RiskConfig 风控阈值；LatencyWarn 为评估/准入的耗时告警阈值。
type RiskConfig struct {
	Confidence  float64       `yaml:"confidence"`
	MaxExposure float64       `yaml:"maxExposure"`
	MaxDrawdown float64       `yaml:"maxDrawdown"`
	LatencyWarn time.Duration `yaml:"latencyWarn"`
}

type MonteCarloConfig struct {
	MaxIterations int `yaml:"maxIterations"`
}

type BacktestConfig struct {
	Workers       int `yaml:"workers"` // 0 表示使用 CPU 核数
	MaxIterations int `yaml:"maxIterations"`
}

// StateConfig 风险状态持久化：file 或 postgres。
type StateConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	DSN     string `yaml:"dsn"`
}

type AlertConfig struct {
	Throttle time.Duration `yaml:"throttle"`
}

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Default 返回与历史环境变量默认值一致的配置。
func Default() AppConfig {
	limits := risk.DefaultLimits()
	return AppConfig{
		Env: "dev",
		Server: ServerConfig{
			Addr:         ":8300",
			MetricsAddr:  ":9100",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Risk: RiskConfig{
			Confidence:  limits.Confidence,
			MaxExposure: limits.MaxExposure,
			MaxDrawdown: limits.MaxDrawdown,
			LatencyWarn: time.Millisecond,
		},
		MonteCarlo: MonteCarloConfig{MaxIterations: 1_000_000},
		Backtest:   BacktestConfig{MaxIterations: 1_000_000},
		State:      StateConfig{Backend: BackendFile, Path: "state/risk_state.json"},
		Log:        logger.DefaultConfig(),
		Alert:      AlertConfig{Throttle: time.Minute},
	}
}

// RiskLimits 提取注入风控核心的阈值。
func (c AppConfig) RiskLimits() risk.Limits {
	return risk.Limits{
		Confidence:  c.Risk.Confidence,
		MaxExposure: c.Risk.MaxExposure,
		MaxDrawdown: c.Risk.MaxDrawdown,
	}
}

// Load reads YAML config from path on top of Default() and applies validation.
func Load(path string) (AppConfig, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadWithEnvOverrides loads config (or defaults when path is empty) then applies RISK_* env vars.
func LoadWithEnvOverrides(path string) (AppConfig, error) {
	cfg := Default()
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return loaded, err
		}
		cfg = loaded
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, Validate(cfg)
}

func applyEnv(cfg *AppConfig) error {
	if v := os.Getenv("RISK_PORT"); v != "" {
		if _, err := strconv.Atoi(v); err != nil {
			return fmt.Errorf("parse RISK_PORT: %w", err)
		}
		cfg.Server.Addr = ":" + v
	}
	floats := []struct {
		env string
		dst *float64
	}{
		{"RISK_CONFIDENCE", &cfg.Risk.Confidence},
		{"RISK_MAX_EXPOSURE", &cfg.Risk.MaxExposure},
		{"RISK_MAX_DRAWDOWN", &cfg.Risk.MaxDrawdown},
	}
	for _, f := range floats {
		v := os.Getenv(f.env)
		if v == "" {
			continue
		}
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parse %s: %w", f.env, err)
		}
		*f.dst = parsed
	}
	if v := os.Getenv("RISK_STATE_PATH"); v != "" {
		cfg.State.Path = v
	}
	if v := os.Getenv("RISK_STATE_DSN"); v != "" {
		cfg.State.Backend = BackendPostgres
		cfg.State.DSN = v
	}
	if v := os.Getenv("RISK_METRICS_ADDR"); v != "" {
		cfg.Server.MetricsAddr = v
	}
	if v := os.Getenv("RISK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	return nil
}
