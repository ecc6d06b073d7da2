package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeanVariance(t *testing.T) {
	tests := []struct {
		name     string
		xs       []float64
		mean     float64
		variance float64
	}{
		{"single", []float64{5}, 5, 0},
		{"pair", []float64{1, 3}, 2, 1},
		{"textbook", []float64{2, 4, 4, 4, 5, 5, 7, 9}, 5, 4},
		{"negative", []float64{-0.01, 0.01}, 0, 0.0001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.mean, Mean(tt.xs), 1e-12)
			assert.InDelta(t, tt.variance, Variance(tt.xs), 1e-12)
		})
	}
}

func TestStdDevSquaredMatchesVariance(t *testing.T) {
	samples := [][]float64{
		{1},
		{0.5, -0.25, 0.125},
		{1e-6, 2e-6, -3e-6, 4e-6},
		{100, 250, 13, 7, 99.5},
	}
	for _, xs := range samples {
		sd := StdDev(xs)
		assert.InDelta(t, Variance(xs), sd*sd, 1e-9)
	}
}

func TestEmptyIsNaN(t *testing.T) {
	assert.True(t, math.IsNaN(Mean(nil)))
	assert.True(t, math.IsNaN(Variance([]float64{})))
	assert.True(t, math.IsNaN(StdDev(nil)))
	assert.Equal(t, 0.0, Sum(nil))
}

func TestRawBufferMatchesSlice(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	assert.Equal(t, Mean(xs), MeanRaw(&xs[0], len(xs)))
	assert.Equal(t, Variance(xs), VarianceRaw(&xs[0], len(xs)))
	assert.Equal(t, StdDev(xs), StdDevRaw(&xs[0], len(xs)))

	// 只读取前 n 个元素
	assert.InDelta(t, 10.0/3.0, MeanRaw(&xs[0], 3), 1e-12)

	assert.True(t, math.IsNaN(MeanRaw(nil, 4)))
	assert.True(t, math.IsNaN(StdDevRaw(&xs[0], 0)))
}

func TestVarianceUsesPopulationDivisor(t *testing.T) {
	xs := []float64{0.01, -0.02, 0.015, 0.03, -0.005}
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	var acc float64
	for _, x := range xs {
		acc += (x - mean) * (x - mean)
	}
	assert.InDelta(t, acc/float64(len(xs)), Variance(xs), 1e-15)
	assert.InDelta(t, math.Sqrt(acc/float64(len(xs))), StdDev(xs), 1e-15)
	assert.InDelta(t, 0.03, Sum(xs), 1e-15)
	assert.Zero(t, Sum(nil))
}
