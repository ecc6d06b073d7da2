package backtest

import "errors"

var (
	ErrNoStrategies = errors.New("at least one strategy is required")
	ErrIterations   = errors.New("iterations out of range")
)
