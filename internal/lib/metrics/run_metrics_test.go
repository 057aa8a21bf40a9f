package metrics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunMetrics_Counters(t *testing.T) {
	m := NewRunMetrics()

	m.AddLoaded(PhaseHosts, 10)
	m.AddLoaded(PhaseHosts, 5)
	m.AddSkipped(PhaseListingMetrics, 3)

	assert.Equal(t, int64(15), m.Loaded(PhaseHosts))
	assert.Equal(t, int64(0), m.Skipped(PhaseHosts))
	assert.Equal(t, int64(3), m.Skipped(PhaseListingMetrics))
}

func TestRunMetrics_UnknownPhaseIgnored(t *testing.T) {
	m := NewRunMetrics()
	m.AddLoaded(Phase("nope"), 100)
	assert.Equal(t, int64(0), m.Loaded(Phase("nope")))
}

func TestRunMetrics_ConcurrentIncrements(t *testing.T) {
	m := NewRunMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.AddLoaded(PhaseCompetitors, 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), m.Loaded(PhaseCompetitors))
}

func TestRunMetrics_SnapshotOrder(t *testing.T) {
	m := NewRunMetrics()
	m.AddLoaded(PhasePricing, 7)

	snap := m.Snapshot()
	assert.Len(t, snap, 8)
	assert.Equal(t, PhaseHosts, snap[0].Phase)
	assert.Equal(t, PhasePricing, snap[7].Phase)
	assert.Equal(t, int64(7), snap[7].Loaded)
}
