// Package stats — агрегаты по ценам конкурентов.
// Percentile повторяет семантику PERCENTILE_CONT из PostgreSQL (линейная
// интерполяция), чтобы результаты совпадали с прежними SQL-отчётами.
package stats

import "sort"

// Mean — среднее арифметическое; false для пустого среза.
func Mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

// Min возвращает минимум; false для пустого среза.
func Min(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m, true
}

// Max возвращает максимум; false для пустого среза.
func Max(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m, true
}

// Median — 50-й перцентиль.
func Median(values []float64) (float64, bool) {
	return Percentile(values, 0.5)
}

// Percentile — перцентиль p ∈ [0,1] с линейной интерполяцией между
// соседними значениями (как PERCENTILE_CONT WITHIN GROUP).
func Percentile(values []float64, p float64) (float64, bool) {
	if len(values) == 0 || p < 0 || p > 1 {
		return 0, false
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0], true
	}

	rank := p * float64(len(sorted)-1)
	lower := int(rank)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[lower], true
	}
	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower]), true
}
