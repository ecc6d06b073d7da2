// Package backtest 并行评估多个策略的模拟收益统计。
package backtest

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"

	"risk-engine-go/stats"
)

// 年化因子使用的交易日数。
const tradingDays = 252

// Request 回测输入。Symbols 与日期只随报告回显，不参与计算。
type Request struct {
	Symbols    []string `json:"symbols"`
	Strategies []string `json:"strategies"`
	Start      string   `json:"start"`
	End        string   `json:"end"`
	Iterations int      `json:"iterations"`
	Seed       *uint64  `json:"seed,omitempty"`
}

// Result 单个策略的统计结果。
type Result struct {
	Strategy    string  `json:"strategy"`
	Sharpe      float64 `json:"sharpe"`
	MaxDrawdown float64 `json:"max_drawdown"`
	WinRate     float64 `json:"win_rate"`
	TotalReturn float64 `json:"total_return"`
	Trades      int     `json:"trades"`
}

// Validate 校验策略列表与迭代次数上限，maxIterations<=0 表示不限。
func (r Request) Validate(maxIterations int) error {
	if len(r.Strategies) == 0 {
		return ErrNoStrategies
	}
	if r.Iterations < 0 || (maxIterations > 0 && r.Iterations > maxIterations) {
		return ErrIterations
	}
	return nil
}

// Run 以至多 workers 个并发评估各策略，结果顺序与输入策略顺序一致。
// workers<=0 时取 CPU 核数。
func Run(ctx context.Context, req Request, workers int) ([]Result, error) {
	if err := req.Validate(0); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]Result, len(req.Strategies))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, name := range req.Strategies {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = RunStrategy(name, req.Iterations, sourceFor(name, req.Seed))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RunStrategy 生成 iterations 个 [-0.01, 0.01) 均匀分布的模拟收益并统计。
func RunStrategy(name string, iterations int, src *rand.Rand) Result {
	returns := make([]float64, iterations)
	for i := range returns {
		returns[i] = (src.Float64() - 0.5) * 0.02
	}
	res := Summarize(returns)
	res.Strategy = name
	res.Trades = iterations
	return res
}

// Summarize 计算收益序列的夏普、回撤、胜率与总收益；空序列全部为 0。
func Summarize(returns []float64) Result {
	if len(returns) == 0 {
		return Result{}
	}
	mean := stats.Mean(returns)
	sd := stats.StdDev(returns)
	var sharpe float64
	if sd != 0 {
		sharpe = mean / sd * math.Sqrt(tradingDays)
	}

	wins := 0
	for _, r := range returns {
		if r > 0 {
			wins++
		}
	}

	return Result{
		Sharpe:      sharpe,
		MaxDrawdown: PeakGap(returns),
		WinRate:     float64(wins) / float64(len(returns)),
		TotalReturn: stats.Sum(returns),
		Trades:      len(returns),
	}
}

// PeakGap 以单期收益的历史最大值为峰值，返回 (峰值 - 当期收益) 的最大值。
// 峰值从 0 开始，比较使用更新前的峰值；这不是净值曲线回撤。
func PeakGap(returns []float64) float64 {
	var peak, maxGap float64
	for _, r := range returns {
		maxGap = math.Max(maxGap, math.Max(peak-r, 0))
		peak = math.Max(peak, r)
	}
	return maxGap
}

// sourceFor 指定种子时按策略名派生独立随机源，结果与调度顺序无关。
func sourceFor(strategy string, seed *uint64) *rand.Rand {
	if seed == nil {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	h := fnv.New64a()
	h.Write([]byte(strategy))
	key := h.Sum64() ^ *seed
	return rand.New(rand.NewPCG(key, *seed))
}
