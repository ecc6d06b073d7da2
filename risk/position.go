package risk

import "time"

// Position 单个持仓，Quantity 带符号（负数为空头）。
type Position struct {
	Symbol   string  `json:"symbol"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
}

// Value 持仓市值 quantity*price。
func (p Position) Value() float64 {
	return p.Quantity * p.Price
}

// TotalValue 带符号的持仓总市值。
func TotalValue(positions []Position) float64 {
	var total float64
	for _, p := range positions {
		total += p.Value()
	}
	return total
}

// State 进程内唯一的风险状态快照。
type State struct {
	TotalExposure   float64 `json:"total_exposure"`
	ActivePositions int     `json:"active_positions"`
	VaR             float64 `json:"var"`
	CVaR            float64 `json:"cvar"`
	Drawdown        float64 `json:"drawdown"`
	LastUpdate      string  `json:"last_update"`
}

// NewState 返回全零状态，LastUpdate 记为 now。
func NewState(now time.Time) State {
	return State{LastUpdate: Timestamp(now)}
}

// Apply 用一次评估结果覆盖状态。
func (s *State) Apply(ev Evaluation, now time.Time) {
	s.TotalExposure = ev.Exposure
	s.ActivePositions = ev.ActivePositions
	s.VaR = ev.VaR
	s.CVaR = ev.CVaR
	s.Drawdown = ev.Drawdown
	s.LastUpdate = Timestamp(now)
}
