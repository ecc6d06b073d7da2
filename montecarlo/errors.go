package montecarlo

import "errors"

var (
	ErrEmptyReturns       = errors.New("returns array cannot be empty")
	ErrNegativeIterations = errors.New("iterations must be >= 0")
)
