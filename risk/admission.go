package risk

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const approvedReason = "Within exposure limits"

// TradeRequest 待准入的交易。Side 仅记录，不影响交易额符号。
type TradeRequest struct {
	Symbol          string  `json:"symbol"`
	Side            string  `json:"side"`
	Quantity        float64 `json:"quantity"`
	Price           float64 `json:"price"`
	PortfolioValue  float64 `json:"portfolio_value"`
	CurrentDrawdown float64 `json:"current_drawdown"`
}

// Value 交易额 quantity*price。
func (t TradeRequest) Value() float64 {
	return t.Quantity * t.Price
}

// Decision 准入结果。
type Decision struct {
	Approved          bool     `json:"approved"`
	Reason            string   `json:"reason"`
	PostTradeExposure *float64 `json:"post_trade_exposure,omitempty"`
	ProjectedDrawdown *float64 `json:"projected_drawdown,omitempty"`
}

// Rejection 携带拒绝原因的错误，Unwrap 到哨兵错误。
type Rejection struct {
	Err               error
	Reason            string
	PostTradeExposure *float64
}

func (r *Rejection) Error() string { return fmt.Sprintf("%v: %s", r.Err, r.Reason) }

func (r *Rejection) Unwrap() error { return r.Err }

// PostTradeExposure 成交后敞口 (当前敞口*组合价值 + 交易额) / 组合价值。
func PostTradeExposure(trade TradeRequest, snapshot State) float64 {
	if trade.PortfolioValue <= 0 {
		return 0
	}
	return (snapshot.TotalExposure*trade.PortfolioValue + trade.Value()) / trade.PortfolioValue
}

// DrawdownGuard 当前回撤超过上限时拒绝。
type DrawdownGuard struct {
	Max float64
}

func (g DrawdownGuard) Check(trade TradeRequest, _ State) error {
	if trade.CurrentDrawdown > g.Max {
		return &Rejection{
			Err: ErrDrawdownExceeded,
			Reason: fmt.Sprintf("Current drawdown %s%% exceeds maximum %s%%",
				percent(trade.CurrentDrawdown), percent(g.Max)),
		}
	}
	return nil
}

// ExposureGuard 成交后敞口超过上限时拒绝。
type ExposureGuard struct {
	Max float64
}

func (g ExposureGuard) Check(trade TradeRequest, snapshot State) error {
	post := PostTradeExposure(trade, snapshot)
	if post > g.Max {
		return &Rejection{
			Err: ErrExposureExceeded,
			Reason: fmt.Sprintf("Post-trade exposure %s%% exceeds maximum %s%%",
				percent(post), percent(g.Max)),
			PostTradeExposure: &post,
		}
	}
	return nil
}

// Admit 依次执行回撤、敞口检查；第一个失败的检查决定拒绝原因。
// 回撤预估直接沿用当前状态中的回撤。
func Admit(trade TradeRequest, snapshot State, limits Limits) Decision {
	chain := MultiGuard{Guards: []Guard{
		DrawdownGuard{Max: limits.MaxDrawdown},
		ExposureGuard{Max: limits.MaxExposure},
	}}
	if err := chain.Check(trade, snapshot); err != nil {
		var rej *Rejection
		if errors.As(err, &rej) {
			return Decision{Reason: rej.Reason, PostTradeExposure: rej.PostTradeExposure}
		}
		return Decision{Reason: err.Error()}
	}
	post := PostTradeExposure(trade, snapshot)
	projected := snapshot.Drawdown
	return Decision{
		Approved:          true,
		Reason:            approvedReason,
		PostTradeExposure: &post,
		ProjectedDrawdown: &projected,
	}
}

// percent 将比例格式化为两位小数的百分数。
func percent(ratio float64) string {
	return decimal.NewFromFloat(ratio).Shift(2).StringFixed(2)
}
