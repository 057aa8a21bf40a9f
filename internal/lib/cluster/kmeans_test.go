package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssign_FewerThanThreePoints(t *testing.T) {
	assert.Empty(t, Assign(nil, 10, 42, 10))
	assert.Equal(t, []int{0}, Assign([]Point{{51, -114}}, 10, 42, 10))
	assert.Equal(t, []int{0, 0}, Assign([]Point{{51, -114}, {52, -113}}, 10, 42, 10))
}

func TestAssign_AllPointsIdentical(t *testing.T) {
	points := make([]Point, 20)
	for i := range points {
		points[i] = Point{Lat: 51.05, Long: -114.07}
	}
	labels := Assign(points, 10, 42, 10)

	// Все точки совпадают — осмысленный результат один кластер на всех
	assert.Len(t, labels, 20)
	for _, l := range labels {
		assert.Equal(t, labels[0], l)
	}
}

func TestAssign_Deterministic(t *testing.T) {
	points := []Point{
		{51.01, -114.01}, {51.02, -114.02}, {51.03, -114.01},
		{51.50, -113.50}, {51.51, -113.52}, {51.49, -113.51},
		{52.00, -115.00}, {52.01, -115.01},
	}
	first := Assign(points, 3, 42, 10)
	second := Assign(points, 3, 42, 10)
	assert.Equal(t, first, second)
}

func TestAssign_SeparatesObviousGroups(t *testing.T) {
	// Две плотные группы на большом удалении друг от друга
	points := []Point{
		{51.00, -114.00}, {51.01, -114.01}, {51.00, -114.01},
		{55.00, -100.00}, {55.01, -100.01}, {55.00, -100.01},
	}
	labels := Assign(points, 2, 42, 10)

	assert.Equal(t, labels[0], labels[1])
	assert.Equal(t, labels[0], labels[2])
	assert.Equal(t, labels[3], labels[4])
	assert.Equal(t, labels[3], labels[5])
	assert.NotEqual(t, labels[0], labels[3])
}

func TestAssign_LabelsWithinRange(t *testing.T) {
	points := make([]Point, 50)
	for i := range points {
		points[i] = Point{Lat: 51 + float64(i)*0.01, Long: -114 - float64(i)*0.02}
	}
	labels := Assign(points, 10, 42, 10)
	assert.Len(t, labels, 50)
	for _, l := range labels {
		assert.GreaterOrEqual(t, l, 0)
		assert.Less(t, l, 10)
	}
}
