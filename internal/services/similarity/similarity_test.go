package similarity

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"listing_analytics/internal/config"
	"listing_analytics/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func testEngine(topK, workers int) *Engine {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(log, config.PipelineConfig{TopCompetitors: topK, SimilarityWorkers: workers})
}

func comparable(key int64, price float64) domain.Comparable {
	return domain.Comparable{
		ListingKey:     key,
		Price:          fptr(price),
		Rating:         fptr(4.5),
		Bedrooms:       iptr(2),
		Beds:           iptr(2),
		Baths:          fptr(1),
		GuestsCapacity: iptr(4),
		Latitude:       51.05,
		Longitude:      -114.07,
		ClusterID:      1,
		AmenityScore:   fptr(20),
	}
}

func TestCompare_IdenticalListings(t *testing.T) {
	a := comparable(1, 150)
	b := comparable(2, 150)

	s := Compare(a, b)

	assert.InDelta(t, 100, s.Location, 1e-9)
	assert.InDelta(t, 100, s.Property, 1e-9)
	assert.InDelta(t, 100, s.Quality, 1e-9)
	assert.InDelta(t, 100, s.Amenity, 1e-9)
	assert.InDelta(t, 100, s.Price, 1e-9)
	assert.InDelta(t, 100, s.Overall, 1e-9)
}

func TestCompare_MissingDataIsNeutral(t *testing.T) {
	a := comparable(1, 150)
	a.Rating = nil
	a.AmenityScore = nil
	a.Price = nil
	b := comparable(2, 150)

	s := Compare(a, b)

	assert.InDelta(t, 50, s.Quality, 1e-9)
	assert.InDelta(t, 50, s.Amenity, 1e-9)
	assert.InDelta(t, 50, s.Price, 1e-9)
}

func TestCompare_PriceAsymmetry(t *testing.T) {
	a := comparable(1, 200)
	b := comparable(2, 150)

	// разница в процентах считается от цены базового листинга
	assert.InDelta(t, 50, Compare(a, b).Price, 1e-9)
	assert.InDelta(t, 100-100.0/150*50*2, Compare(b, a).Price, 1e-6)
}

func TestCompare_BedroomMatchBothUnknown(t *testing.T) {
	a := comparable(1, 150)
	a.Bedrooms = nil
	b := comparable(2, 150)
	b.Bedrooms = nil

	s := Compare(a, b)
	assert.InDelta(t, 100, s.Property, 1e-9)
}

func TestRank_TopKAndWeights(t *testing.T) {
	e := testEngine(2, 1)

	comparables := []domain.Comparable{
		comparable(1, 100),
		comparable(2, 110),
		comparable(3, 120),
		comparable(4, 400),
	}

	links, err := e.Rank(context.Background(), comparables)
	require.NoError(t, err)
	require.Len(t, links, 8)

	byListing := make(map[int64][]domain.CompetitorLink)
	for _, l := range links {
		byListing[l.ListingKey] = append(byListing[l.ListingKey], l)
	}

	for key, ls := range byListing {
		require.Len(t, ls, 2, "listing %d", key)

		var weightSum float64
		for i, l := range ls {
			assert.Equal(t, i+1, l.Rank)
			assert.NotEqual(t, key, l.CompetitorKey)
			weightSum += l.Weight
		}
		assert.InDelta(t, 1.0, weightSum, 1e-9)
		assert.GreaterOrEqual(t, ls[0].OverallSimilarity, ls[1].OverallSimilarity)
	}

	// дорогой листинг 4 никому не лучший конкурент
	for _, l := range byListing[1] {
		assert.NotEqual(t, int64(4), l.CompetitorKey)
	}
}

func TestRank_FewerCandidatesThanK(t *testing.T) {
	e := testEngine(25, 2)

	links, err := e.Rank(context.Background(), []domain.Comparable{
		comparable(1, 100),
		comparable(2, 110),
		comparable(3, 120),
	})
	require.NoError(t, err)
	// у каждого из трёх по два конкурента
	assert.Len(t, links, 6)
}

func TestRank_SingleListing(t *testing.T) {
	e := testEngine(25, 2)

	links, err := e.Rank(context.Background(), []domain.Comparable{comparable(1, 100)})
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestRank_DeterministicAcrossWorkerCounts(t *testing.T) {
	var comparables []domain.Comparable
	for i := int64(1); i <= 30; i++ {
		c := comparable(i, 100+float64(i)*7)
		c.Latitude += float64(i) * 0.001
		c.ClusterID = int(i % 3)
		comparables = append(comparables, c)
	}

	sequential, err := testEngine(5, 1).Rank(context.Background(), comparables)
	require.NoError(t, err)
	parallel, err := testEngine(5, 8).Rank(context.Background(), comparables)
	require.NoError(t, err)

	assert.Equal(t, sequential, parallel)
}

func TestRank_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var comparables []domain.Comparable
	for i := int64(1); i <= 100; i++ {
		comparables = append(comparables, comparable(i, 100))
	}

	_, err := testEngine(5, 1).Rank(ctx, comparables)
	assert.Error(t, err)
}
