// Package montecarlo 通过正态抽样估计 VaR / CVaR。
//
// 随机源作为显式参数传入：给定种子时使用 PCG 生成确定性序列，
// 否则从运行时熵源取种子。抽样方法固定为 math/rand/v2 的 NormFloat64。
package montecarlo

import (
	"math"
	"math/rand/v2"
	"slices"

	"risk-engine-go/stats"
)

const (
	// MaxIterations 单次模拟的抽样上限。
	MaxIterations = 1_000_000

	MinConfidence     = 0.5
	MaxConfidence     = 0.999
	DefaultConfidence = 0.99

	// 尾部为空时 CVaR 相对 VaR 的放大系数。
	tailFallbackMultiplier = 1.3

	// PCG 的第二个种子字，固定以保证同种子可复现。
	pcgStream = 0x9e3779b97f4a7c15
)

// Request 模拟输入。Seed 为 nil 时结果不可复现。
type Request struct {
	Returns    []float64 `json:"returns"`
	Iterations int       `json:"iterations"`
	Confidence float64   `json:"confidence"`
	Seed       *uint64   `json:"seed,omitempty"`
}

// Result 模拟输出，VaR/CVaR 为非负损失幅度。
type Result struct {
	VaR  float64 `json:"var"`
	CVaR float64 `json:"cvar"`
}

// Normalize 边界层参数规整：校验收益序列，截断迭代次数，夹紧置信度。
func Normalize(req Request) (Request, error) {
	if len(req.Returns) == 0 {
		return req, ErrEmptyReturns
	}
	if req.Iterations < 0 {
		return req, ErrNegativeIterations
	}
	if req.Iterations > MaxIterations {
		req.Iterations = MaxIterations
	}
	if req.Confidence == 0 {
		req.Confidence = DefaultConfidence
	}
	req.Confidence = math.Min(math.Max(req.Confidence, MinConfidence), MaxConfidence)
	return req, nil
}

// NewSource 返回随机源：seed 非空时确定性，否则由全局熵源播种。
func NewSource(seed *uint64) *rand.Rand {
	if seed != nil {
		return rand.New(rand.NewPCG(*seed, *seed^pcgStream))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Simulate 以历史收益拟合正态分布并抽样，按分位数计算 VaR 与尾部均值 CVaR。
func Simulate(req Request, src *rand.Rand) Result {
	n := req.Iterations
	if len(req.Returns) == 0 || n <= 0 {
		return Result{}
	}
	mean := stats.Mean(req.Returns)
	sd := stats.StdDev(req.Returns)
	if sd == 0 {
		return Result{}
	}
	if !usable(mean, sd) {
		mean, sd = 0, 0.01
	}

	samples := make([]float64, n)
	for i := range samples {
		samples[i] = mean + sd*src.NormFloat64()
	}
	slices.Sort(samples)

	k := int((1 - req.Confidence) * float64(n))
	var valueAtRisk float64
	if k < n && samples[k] < 0 {
		valueAtRisk = -samples[k]
	}

	return Result{VaR: valueAtRisk, CVaR: tailMean(samples, k, valueAtRisk)}
}

// Run 规整请求后按请求种子建源并模拟。
func Run(req Request) (Request, Result, error) {
	req, err := Normalize(req)
	if err != nil {
		return req, Result{}, err
	}
	return req, Simulate(req, NewSource(req.Seed)), nil
}

// tailMean 前 k+1 个样本中不高于 -VaR 的部分取负均值。
func tailMean(sorted []float64, k int, valueAtRisk float64) float64 {
	limit := min(k+1, len(sorted))
	var sum float64
	var count int
	for _, s := range sorted[:limit] {
		if s <= -valueAtRisk {
			sum += s
			count++
		}
	}
	if count == 0 {
		return valueAtRisk * tailFallbackMultiplier
	}
	return -sum / float64(count)
}

func usable(mean, sd float64) bool {
	return !math.IsNaN(mean) && !math.IsInf(mean, 0) &&
		!math.IsNaN(sd) && !math.IsInf(sd, 0) && sd > 0
}
