package stats

import (
	"math"
	"unsafe"
)

// view 将调用方持有的连续缓冲区包装为切片，不拷贝。
// 缓冲区的所有权与生命周期始终归调用方。
func view(ptr *float64, n int) []float64 {
	if ptr == nil || n <= 0 {
		return nil
	}
	return unsafe.Slice(ptr, n)
}

// MeanRaw 以指针+长度方式计算均值，供原生调用方使用。
func MeanRaw(ptr *float64, n int) float64 {
	xs := view(ptr, n)
	if xs == nil {
		return math.NaN()
	}
	return Mean(xs)
}

// VarianceRaw 以指针+长度方式计算总体方差。
func VarianceRaw(ptr *float64, n int) float64 {
	xs := view(ptr, n)
	if xs == nil {
		return math.NaN()
	}
	return Variance(xs)
}

// StdDevRaw 以指针+长度方式计算总体标准差。
func StdDevRaw(ptr *float64, n int) float64 {
	xs := view(ptr, n)
	if xs == nil {
		return math.NaN()
	}
	return StdDev(xs)
}
