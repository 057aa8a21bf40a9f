package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"listing_analytics/internal/domain"
	"listing_analytics/internal/lib/metrics"
	"listing_analytics/internal/services/fact"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStores struct {
	calls []string

	// bridge хранит состояние моста между прогонами: ReplaceCompetitorBridge
	// перезаписывает его целиком, как и настоящий репозиторий
	bridge       []domain.CompetitorLink
	bridgeWrites [][]domain.CompetitorLink

	listingsErr error
	rankErr     error
}

func (f *fakeStores) record(name string) { f.calls = append(f.calls, name) }

func (f *fakeStores) Listings(context.Context) ([]domain.SourceListing, error) {
	f.record("source.Listings")
	if f.listingsErr != nil {
		return nil, f.listingsErr
	}
	return []domain.SourceListing{{PropertyID: "p1"}}, nil
}

func (f *fakeStores) EnsureSchema(context.Context) error {
	f.record("warehouse.EnsureSchema")
	return nil
}

func (f *fakeStores) Comparables(context.Context) ([]domain.Comparable, error) {
	f.record("warehouse.Comparables")
	return []domain.Comparable{{ListingKey: 1}, {ListingKey: 2}}, nil
}

func (f *fakeStores) ReplaceCompetitorBridge(_ context.Context, links []domain.CompetitorLink) error {
	f.record("warehouse.ReplaceCompetitorBridge")
	f.bridge = links
	f.bridgeWrites = append(f.bridgeWrites, links)
	return nil
}

func (f *fakeStores) RefreshTopCompetitors(context.Context) error {
	f.record("warehouse.RefreshTopCompetitors")
	return nil
}

func (f *fakeStores) LoadHosts(_ context.Context, _ *metrics.RunMetrics) (domain.HostKeyMap, error) {
	f.record("dimensions.LoadHosts")
	return domain.HostKeyMap{}, nil
}

func (f *fakeStores) LoadProperties(_ context.Context, _ []domain.SourceListing, _ *metrics.RunMetrics) (domain.PropertyKeyMap, error) {
	f.record("dimensions.LoadProperties")
	return domain.PropertyKeyMap{}, nil
}

func (f *fakeStores) LoadLocations(_ context.Context, _ []domain.SourceListing, _ *metrics.RunMetrics) (domain.LocationKeyMap, error) {
	f.record("dimensions.LoadLocations")
	return domain.LocationKeyMap{}, nil
}

func (f *fakeStores) LoadCategoryRatings(_ context.Context, _ *metrics.RunMetrics) (domain.RatingKeyMap, error) {
	f.record("dimensions.LoadCategoryRatings")
	return domain.RatingKeyMap{}, nil
}

func (f *fakeStores) LoadListingMetrics(_ context.Context, _ []domain.SourceListing, _ fact.KeySet, _ *metrics.RunMetrics) (map[string]int64, error) {
	f.record("facts.LoadListingMetrics")
	return map[string]int64{"p1": 1}, nil
}

func (f *fakeStores) LoadAmenitySummaries(_ context.Context, _ map[string]int64, _ *metrics.RunMetrics) error {
	f.record("facts.LoadAmenitySummaries")
	return nil
}

func (f *fakeStores) Rank(_ context.Context, _ []domain.Comparable) ([]domain.CompetitorLink, error) {
	f.record("ranker.Rank")
	if f.rankErr != nil {
		return nil, f.rankErr
	}
	return []domain.CompetitorLink{
		{ListingKey: 1, CompetitorKey: 2, Rank: 1, Weight: 1},
		{ListingKey: 2, CompetitorKey: 1, Rank: 1, Weight: 1},
	}, nil
}

func (f *fakeStores) Analyze(_ context.Context, _ []domain.Comparable, _ []domain.CompetitorLink, _ *metrics.RunMetrics) error {
	f.record("pricing.Analyze")
	return nil
}

func newTestOrchestrator(f *fakeStores) *Orchestrator {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(log, f, f, f, f, f, f)
}

func TestRun_PhaseOrder(t *testing.T) {
	f := &fakeStores{}

	rm, err := newTestOrchestrator(f).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"warehouse.EnsureSchema",
		"source.Listings",
		"dimensions.LoadHosts",
		"dimensions.LoadProperties",
		"dimensions.LoadLocations",
		"dimensions.LoadCategoryRatings",
		"facts.LoadListingMetrics",
		"facts.LoadAmenitySummaries",
		"warehouse.Comparables",
		"ranker.Rank",
		"warehouse.ReplaceCompetitorBridge",
		"pricing.Analyze",
		"warehouse.RefreshTopCompetitors",
	}, f.calls)

	assert.Equal(t, int64(1), rm.Loaded(metrics.PhaseCompetitors))
}

func TestRun_RerunReplacesCompetitorBridge(t *testing.T) {
	f := &fakeStores{}
	orc := newTestOrchestrator(f)

	_, err := orc.Run(context.Background())
	require.NoError(t, err)
	_, err = orc.Run(context.Background())
	require.NoError(t, err)

	// каждый прогон пишет мост целиком, а не дописывает дельту
	require.Len(t, f.bridgeWrites, 2)
	assert.Equal(t, f.bridgeWrites[0], f.bridgeWrites[1])

	// после второго прогона в мосте ровно один полный набор связей
	assert.Len(t, f.bridge, 2)
	assert.Equal(t, f.bridgeWrites[1], f.bridge)
}

func TestRun_StopsOnExtractError(t *testing.T) {
	f := &fakeStores{listingsErr: errors.New("source database down")}

	_, err := newTestOrchestrator(f).Run(context.Background())
	require.Error(t, err)

	// дальше извлечения не ушли
	assert.Equal(t, []string{
		"warehouse.EnsureSchema",
		"source.Listings",
	}, f.calls)
}

func TestRun_StopsOnRankError(t *testing.T) {
	f := &fakeStores{rankErr: errors.New("cancelled")}

	_, err := newTestOrchestrator(f).Run(context.Background())
	require.Error(t, err)
	assert.NotContains(t, f.calls, "warehouse.ReplaceCompetitorBridge")
	assert.NotContains(t, f.calls, "pricing.Analyze")
}
