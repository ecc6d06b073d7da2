package service

import (
	"risk-engine-go/backtest"
	"risk-engine-go/risk"
)

// EvaluateRequest 组合评估输入，未提供 Confidence 时使用当前限额的置信度；
// 显式传 0 按最低档计算。
type EvaluateRequest struct {
	Positions      []risk.Position `json:"positions"`
	PortfolioValue float64         `json:"portfolio_value"`
	Confidence     *float64        `json:"confidence,omitempty"`
}

type EvaluateResponse struct {
	ValueAtRisk    float64 `json:"value_at_risk"`
	ConditionalVaR float64 `json:"conditional_var"`
	Drawdown       float64 `json:"drawdown"`
	Exposure       float64 `json:"exposure"`
	Timestamp      string  `json:"timestamp"`
}

// ValidateRequest 交易准入输入。MaxDrawdown 为 nil 时使用配置值。
type ValidateRequest struct {
	Symbol          string   `json:"symbol"`
	Side            string   `json:"side"`
	Quantity        float64  `json:"quantity"`
	Price           float64  `json:"price"`
	PortfolioValue  float64  `json:"portfolio_value"`
	MaxDrawdown     *float64 `json:"max_drawdown,omitempty"`
	CurrentDrawdown float64  `json:"current_drawdown"`
}

type ValidateResponse struct {
	risk.Decision
	Timestamp string `json:"timestamp"`
}

type StressRequest struct {
	Positions []risk.Position `json:"positions"`
	Scenarios []risk.Scenario `json:"scenarios"`
}

type StressResponse struct {
	Results   []risk.ScenarioResult `json:"results"`
	Timestamp string                `json:"timestamp"`
}

// MonteCarloResponse 回显规整后的迭代次数与置信度。
type MonteCarloResponse struct {
	VaR        float64 `json:"var"`
	CVaR       float64 `json:"cvar"`
	RuntimeMs  float64 `json:"runtime_ms"`
	Iterations int     `json:"iterations"`
	Confidence float64 `json:"confidence"`
}

type BacktestResponse = backtest.Report

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}
