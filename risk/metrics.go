package risk

import "math"

// 参数法 VaR 假设的日波动率。
const assumedDailyVolatility = 0.02

// ZScore 置信度分档对应的正态分位数。
func ZScore(confidence float64) float64 {
	switch {
	case confidence >= 0.99:
		return 2.33
	case confidence >= 0.95:
		return 1.65
	default:
		return 1.28
	}
}

// CVaRMultiplier 置信度分档对应的 CVaR 放大系数。
func CVaRMultiplier(confidence float64) float64 {
	switch {
	case confidence >= 0.99:
		return 1.3
	case confidence >= 0.95:
		return 1.25
	default:
		return 1.2
	}
}

// Exposure 总敞口 Σ|q*p| / portfolioValue。
func Exposure(positions []Position, portfolioValue float64) float64 {
	if portfolioValue <= 0 {
		return 0
	}
	var gross float64
	for _, p := range positions {
		gross += math.Abs(p.Value())
	}
	return gross / portfolioValue
}

// DrawdownFromPositions 组合价值相对持仓市值的回撤百分比，限制在 [0, 100]。
func DrawdownFromPositions(positions []Position, portfolioValue float64) float64 {
	if portfolioValue <= 0 {
		return 0
	}
	dd := (portfolioValue - TotalValue(positions)) / portfolioValue * 100
	return math.Min(math.Max(dd, 0), 100)
}

// ParametricVaR 简化参数法 VaR。敞口比例使用带符号市值。
func ParametricVaR(positions []Position, portfolioValue, confidence float64) float64 {
	if len(positions) == 0 || portfolioValue <= 0 {
		return 0
	}
	ratio := TotalValue(positions) / portfolioValue
	return ZScore(confidence) * assumedDailyVolatility * portfolioValue * ratio
}

// CVaR 按置信度分档放大 VaR；VaR<=0 时为 0。
func CVaR(valueAtRisk, confidence float64) float64 {
	if valueAtRisk <= 0 {
		return 0
	}
	return valueAtRisk * CVaRMultiplier(confidence)
}

// Evaluation 一次风险评估的全部指标。
type Evaluation struct {
	VaR             float64
	CVaR            float64
	Drawdown        float64
	Exposure        float64
	ActivePositions int
}

// Evaluate 计算持仓集合的全部风险指标。
func Evaluate(positions []Position, portfolioValue, confidence float64) Evaluation {
	v := ParametricVaR(positions, portfolioValue, confidence)
	return Evaluation{
		VaR:             v,
		CVaR:            CVaR(v, confidence),
		Drawdown:        DrawdownFromPositions(positions, portfolioValue),
		Exposure:        Exposure(positions, portfolioValue),
		ActivePositions: len(positions),
	}
}
