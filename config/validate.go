package config

import (
	"fmt"

	"risk-engine-go/montecarlo"
)

// ErrInvalid 用于参数验证错误。
type ErrInvalid string

func (e ErrInvalid) Error() string { return string(e) }

// Validate ensures required fields are present and thresholds are in range.
func Validate(cfg AppConfig) error {
	if cfg.Server.Addr == "" {
		return ErrInvalid("server.addr is required")
	}
	if cfg.Server.ReadTimeout < 0 || cfg.Server.WriteTimeout < 0 {
		return ErrInvalid("server timeouts must be >= 0")
	}
	if c := cfg.Risk.Confidence; c <= 0.5 || c > 0.999 {
		return ErrInvalid("risk.confidence must be in (0.5, 0.999]")
	}
	if cfg.Risk.MaxExposure <= 0 {
		return ErrInvalid("risk.maxExposure must be > 0")
	}
	if d := cfg.Risk.MaxDrawdown; d <= 0 || d > 1 {
		return ErrInvalid("risk.maxDrawdown must be in (0, 1]")
	}
	if cfg.Risk.LatencyWarn < 0 {
		return ErrInvalid("risk.latencyWarn must be >= 0")
	}
	if n := cfg.MonteCarlo.MaxIterations; n <= 0 || n > montecarlo.MaxIterations {
		return ErrInvalid(fmt.Sprintf("monteCarlo.maxIterations must be in (0, %d]", montecarlo.MaxIterations))
	}
	if cfg.Backtest.Workers < 0 {
		return ErrInvalid("backtest.workers must be >= 0")
	}
	if cfg.Backtest.MaxIterations <= 0 {
		return ErrInvalid("backtest.maxIterations must be > 0")
	}
	switch cfg.State.Backend {
	case BackendFile:
		if cfg.State.Path == "" {
			return ErrInvalid("state.path is required for file backend")
		}
	case BackendPostgres:
		if cfg.State.DSN == "" {
			return ErrInvalid("state.dsn is required for postgres backend")
		}
	default:
		return ErrInvalid(fmt.Sprintf("state.backend %q must be file or postgres", cfg.State.Backend))
	}
	if cfg.Alert.Throttle < 0 {
		return ErrInvalid("alert.throttle must be >= 0")
	}
	return nil
}
