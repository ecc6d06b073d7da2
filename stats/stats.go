// Package stats 提供风险计算使用的基础统计量，底层使用 gonum。
//
// 所有函数对空输入返回 NaN，调用方需自行保证样本数 > 0。
package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean 算术平均值。
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return stat.Mean(xs, nil)
}

// Variance 总体方差（除数为样本数）。
func Variance(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return stat.PopVariance(xs, nil)
}

// StdDev 总体标准差。
func StdDev(xs []float64) float64 {
	return math.Sqrt(Variance(xs))
}

// Sum 求和，空输入返回 0。
func Sum(xs []float64) float64 {
	return floats.Sum(xs)
}
