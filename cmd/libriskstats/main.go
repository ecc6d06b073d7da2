// libriskstats 以 C 共享库形式导出统计原语，供非 Go 调用方直接传入连续的 double 缓冲区。
// 构建：
//
//	go build -buildmode=c-shared -o libriskstats.so ./cmd/libriskstats
//
// 缓冲区由调用方持有，本库只读且不保留引用；空指针或长度为 0 时返回 NaN。
package main

import "C"

import (
	"unsafe"

	"risk-engine-go/stats"
)

//export risk_stats_mean
func risk_stats_mean(ptr *C.double, n C.size_t) C.double {
	return C.double(stats.MeanRaw(toFloat(ptr), int(n)))
}

//export risk_stats_variance
func risk_stats_variance(ptr *C.double, n C.size_t) C.double {
	return C.double(stats.VarianceRaw(toFloat(ptr), int(n)))
}

//export risk_stats_stddev
func risk_stats_stddev(ptr *C.double, n C.size_t) C.double {
	return C.double(stats.StdDevRaw(toFloat(ptr), int(n)))
}

func toFloat(ptr *C.double) *float64 {
	return (*float64)(unsafe.Pointer(ptr))
}

func main() {}
