package risk

// Scenario 压力情景：symbol -> 价格冲击比例，未列出的 symbol 冲击为 0。
type Scenario struct {
	Name   string             `json:"name"`
	Shocks map[string]float64 `json:"shocks"`
}

// ScenarioResult 单个情景的冲击结果。
type ScenarioResult struct {
	Name          string  `json:"name"`
	PnL           float64 `json:"pnl"`
	ExposureAfter float64 `json:"exposure_after"`
	DrawdownAfter float64 `json:"drawdown_after"`
}

// StressTest 对持仓依次施加各情景冲击，结果顺序与情景顺序一致。
// 初始组合价值取持仓市值之和；回撤只截断下界。
func StressTest(positions []Position, scenarios []Scenario) []ScenarioResult {
	initial := TotalValue(positions)
	results := make([]ScenarioResult, 0, len(scenarios))
	for _, sc := range scenarios {
		results = append(results, applyScenario(positions, sc, initial))
	}
	return results
}

func applyScenario(positions []Position, sc Scenario, initial float64) ScenarioResult {
	var pnl, after float64
	for _, p := range positions {
		shock := sc.Shocks[p.Symbol]
		shocked := p.Quantity * (p.Price * (1 + shock))
		after += shocked
		pnl += shocked - p.Value()
	}

	res := ScenarioResult{Name: sc.Name, PnL: pnl}
	if initial > 0 {
		res.ExposureAfter = after / initial
		if dd := (initial - after) / initial * 100; dd > 0 {
			res.DrawdownAfter = dd
		}
	}
	return res
}
