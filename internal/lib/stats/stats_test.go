package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	_, ok := Mean(nil)
	assert.False(t, ok)

	m, ok := Mean([]float64{100, 150, 200})
	assert.True(t, ok)
	assert.InDelta(t, 150, m, 1e-9)
}

func TestMinMax(t *testing.T) {
	mn, ok := Min([]float64{180, 95, 210})
	assert.True(t, ok)
	assert.Equal(t, 95.0, mn)

	mx, ok := Max([]float64{180, 95, 210})
	assert.True(t, ok)
	assert.Equal(t, 210.0, mx)

	_, ok = Min(nil)
	assert.False(t, ok)
	_, ok = Max(nil)
	assert.False(t, ok)
}

func TestMedian(t *testing.T) {
	m, ok := Median([]float64{10, 20, 30})
	assert.True(t, ok)
	assert.Equal(t, 20.0, m)

	// Чётное число элементов — интерполяция между серединами
	m, ok = Median([]float64{10, 20, 30, 40})
	assert.True(t, ok)
	assert.Equal(t, 25.0, m)
}

func TestPercentile_MatchesPercentileCont(t *testing.T) {
	// PERCENTILE_CONT(0.25) от {100,140,160,200}: rank 0.75 → 100 + 0.75*40 = 130
	p25, ok := Percentile([]float64{200, 100, 160, 140}, 0.25)
	assert.True(t, ok)
	assert.InDelta(t, 130, p25, 1e-9)

	p75, ok := Percentile([]float64{200, 100, 160, 140}, 0.75)
	assert.True(t, ok)
	assert.InDelta(t, 170, p75, 1e-9)
}

func TestPercentile_Edges(t *testing.T) {
	v, ok := Percentile([]float64{42}, 0.9)
	assert.True(t, ok)
	assert.Equal(t, 42.0, v)

	lo, _ := Percentile([]float64{1, 2, 3}, 0)
	hi, _ := Percentile([]float64{1, 2, 3}, 1)
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 3.0, hi)

	_, ok = Percentile([]float64{1, 2}, 1.5)
	assert.False(t, ok)
	_, ok = Percentile(nil, 0.5)
	assert.False(t, ok)
}
