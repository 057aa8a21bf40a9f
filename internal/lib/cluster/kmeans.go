// Package cluster — разбиение географических координат на k-means кластеры.
// Метки кластеров носят рекомендательный характер: они усиливают сигнал
// локационной схожести, но не являются истиной о районах города.
package cluster

import (
	"math"
	"math/rand"
)

// Point — координатная пара (широта, долгота).
type Point struct {
	Lat  float64
	Long float64
}

const (
	maxIterations = 100
	// centroidEps — порог стабильности центроидов для сходимости
	centroidEps = 1e-9
)

// Assign разбивает точки на min(maxClusters, len(points)) кластеров и
// возвращает метку кластера для каждой точки в исходном порядке.
//
// При len(points) < 3 кластеризация не имеет смысла: все точки получают
// метку 0. Вырожденные входы (все точки совпадают) не ломают алгоритм —
// пустые кластеры схлопываются в метку 0.
func Assign(points []Point, maxClusters int, seed int64, restarts int) []int {
	labels := make([]int, len(points))
	if len(points) < 3 || maxClusters <= 1 {
		return labels
	}

	k := maxClusters
	if k > len(points) {
		k = len(points)
	}
	if restarts < 1 {
		restarts = 1
	}

	bestInertia := math.Inf(1)
	best := labels
	for r := 0; r < restarts; r++ {
		rng := rand.New(rand.NewSource(seed + int64(r)))
		assignment, inertia := runKMeans(points, k, rng)
		if inertia < bestInertia {
			bestInertia = inertia
			best = assignment
		}
	}
	return best
}

// runKMeans — один прогон Ллойда со случайной инициализацией центроидов.
func runKMeans(points []Point, k int, rng *rand.Rand) ([]int, float64) {
	centroids := make([]Point, k)
	for i, idx := range rng.Perm(len(points))[:k] {
		centroids[i] = points[idx]
	}

	assignment := make([]int, len(points))
	for iter := 0; iter < maxIterations; iter++ {
		for i, p := range points {
			assignment[i] = nearestCentroid(p, centroids)
		}

		moved := false
		for c := range centroids {
			var sumLat, sumLong float64
			count := 0
			for i, p := range points {
				if assignment[i] != c {
					continue
				}
				sumLat += p.Lat
				sumLong += p.Long
				count++
			}
			if count == 0 {
				continue
			}
			next := Point{Lat: sumLat / float64(count), Long: sumLong / float64(count)}
			if squaredDistance(next, centroids[c]) > centroidEps {
				moved = true
			}
			centroids[c] = next
		}
		if !moved {
			break
		}
	}

	var inertia float64
	for i, p := range points {
		inertia += squaredDistance(p, centroids[assignment[i]])
	}
	return assignment, inertia
}

func nearestCentroid(p Point, centroids []Point) int {
	best := 0
	bestDist := math.Inf(1)
	for c, centroid := range centroids {
		if d := squaredDistance(p, centroid); d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

func squaredDistance(a, b Point) float64 {
	dLat := a.Lat - b.Lat
	dLong := a.Long - b.Long
	return dLat*dLat + dLong*dLong
}
