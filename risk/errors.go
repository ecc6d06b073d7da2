package risk

import "errors"

var (
	ErrDrawdownExceeded = errors.New("drawdown exceeded")
	ErrExposureExceeded = errors.New("exposure exceeded")
	ErrInvalidLimits    = errors.New("invalid risk limits")
)
