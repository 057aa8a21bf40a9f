package metrics

import (
	"sync/atomic"
	"time"
)

// Phase — фаза измерительного конвейера.
type Phase string

const (
	PhaseHosts           Phase = "dim_host"
	PhaseProperties      Phase = "dim_property"
	PhaseLocations       Phase = "dim_location"
	PhaseCategoryRatings Phase = "dim_category_ratings"
	PhaseListingMetrics  Phase = "fact_listing_metrics"
	PhaseAmenitySummary  Phase = "fact_listing_amenities_summary"
	PhaseCompetitors     Phase = "bridge_listing_competitors"
	PhasePricing         Phase = "fact_competitor_pricing_analysis"
)

// RunMetrics — счётчики одного прогона конвейера.
// Счётчики атомарные: фаза схожести может инкрементировать из воркеров.
type RunMetrics struct {
	startedAt time.Time

	counters map[Phase]*phaseCounter
}

type phaseCounter struct {
	loaded  int64
	skipped int64
}

// NewRunMetrics создаёт счётчики для всех фаз конвейера.
func NewRunMetrics() *RunMetrics {
	phases := []Phase{
		PhaseHosts, PhaseProperties, PhaseLocations, PhaseCategoryRatings,
		PhaseListingMetrics, PhaseAmenitySummary, PhaseCompetitors, PhasePricing,
	}
	counters := make(map[Phase]*phaseCounter, len(phases))
	for _, p := range phases {
		counters[p] = &phaseCounter{}
	}
	return &RunMetrics{
		startedAt: time.Now(),
		counters:  counters,
	}
}

// AddLoaded увеличивает счётчик загруженных строк фазы.
func (m *RunMetrics) AddLoaded(phase Phase, n int) {
	if c, ok := m.counters[phase]; ok {
		atomic.AddInt64(&c.loaded, int64(n))
	}
}

// AddSkipped увеличивает счётчик пропущенных строк фазы.
func (m *RunMetrics) AddSkipped(phase Phase, n int) {
	if c, ok := m.counters[phase]; ok {
		atomic.AddInt64(&c.skipped, int64(n))
	}
}

// Loaded возвращает число загруженных строк фазы.
func (m *RunMetrics) Loaded(phase Phase) int64 {
	if c, ok := m.counters[phase]; ok {
		return atomic.LoadInt64(&c.loaded)
	}
	return 0
}

// Skipped возвращает число пропущенных строк фазы.
func (m *RunMetrics) Skipped(phase Phase) int64 {
	if c, ok := m.counters[phase]; ok {
		return atomic.LoadInt64(&c.skipped)
	}
	return 0
}

// Elapsed — длительность прогона с момента создания счётчиков.
func (m *RunMetrics) Elapsed() time.Duration {
	return time.Since(m.startedAt)
}

// PhaseSummary — снимок счётчиков одной фазы для итогового отчёта.
type PhaseSummary struct {
	Phase   Phase
	Loaded  int64
	Skipped int64
}

// Snapshot возвращает сводку по фазам в порядке исполнения конвейера.
func (m *RunMetrics) Snapshot() []PhaseSummary {
	order := []Phase{
		PhaseHosts, PhaseProperties, PhaseLocations, PhaseCategoryRatings,
		PhaseListingMetrics, PhaseAmenitySummary, PhaseCompetitors, PhasePricing,
	}
	out := make([]PhaseSummary, 0, len(order))
	for _, p := range order {
		out = append(out, PhaseSummary{
			Phase:   p,
			Loaded:  m.Loaded(p),
			Skipped: m.Skipped(p),
		})
	}
	return out
}
