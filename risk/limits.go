package risk

import "fmt"

// Limits 风控阈值，由配置层注入。
type Limits struct {
	Confidence  float64 `yaml:"confidence" json:"confidence"`
	MaxExposure float64 `yaml:"max_exposure" json:"max_exposure"`
	MaxDrawdown float64 `yaml:"max_drawdown" json:"max_drawdown"`
}

// DefaultLimits 默认阈值。
func DefaultLimits() Limits {
	return Limits{
		Confidence:  0.99,
		MaxExposure: 0.75,
		MaxDrawdown: 0.08,
	}
}

// Validate 校验阈值范围。
func (l Limits) Validate() error {
	if l.Confidence <= 0.5 || l.Confidence > 0.999 {
		return fmt.Errorf("%w: confidence %.4f not in (0.5, 0.999]", ErrInvalidLimits, l.Confidence)
	}
	if l.MaxExposure <= 0 {
		return fmt.Errorf("%w: max_exposure %.4f must be > 0", ErrInvalidLimits, l.MaxExposure)
	}
	if l.MaxDrawdown <= 0 || l.MaxDrawdown > 1 {
		return fmt.Errorf("%w: max_drawdown %.4f not in (0, 1]", ErrInvalidLimits, l.MaxDrawdown)
	}
	return nil
}
