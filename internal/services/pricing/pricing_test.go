package pricing

import (
	"testing"

	"listing_analytics/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }

func equalWeightCompetitors(prices ...float64) []domain.CompetitorPrice {
	w := 1.0 / float64(len(prices))
	out := make([]domain.CompetitorPrice, 0, len(prices))
	for i, p := range prices {
		out = append(out, domain.CompetitorPrice{
			ListingKey: int64(i + 1),
			Price:      fptr(p),
			Weight:     w,
		})
	}
	return out
}

func TestBuildAnalysis_OverpricedListing(t *testing.T) {
	// Листинг за 200 при конкурентах 150/140/160 с равными весами.
	analysis := BuildAnalysis(fptr(200), nil, equalWeightCompetitors(150, 140, 160))

	assert.Equal(t, 3, analysis.CompetitorCount)

	require.NotNil(t, analysis.WeightedAvgPrice)
	assert.InDelta(t, 150, *analysis.WeightedAvgPrice, 1e-9)

	require.NotNil(t, analysis.PremiumDiscount)
	assert.InDelta(t, 33.33, *analysis.PremiumDiscount, 0.01)

	// p25 = 145, p75 = 155 (линейная интерполяция)
	require.NotNil(t, analysis.RecommendedLower)
	assert.InDelta(t, 137.75, *analysis.RecommendedLower, 1e-9)
	require.NotNil(t, analysis.RecommendedUpper)
	assert.InDelta(t, 162.75, *analysis.RecommendedUpper, 1e-9)

	assert.Equal(t, domain.PricingStatusOverpriced, analysis.Status)
}

func TestBuildAnalysis_QualityAdjustment(t *testing.T) {
	competitors := equalWeightCompetitors(100, 100, 100)

	// рейтинг на базовой отметке — без поправки
	baseline := BuildAnalysis(fptr(100), fptr(4.5), competitors)
	require.NotNil(t, baseline.RecommendedOptimal)
	assert.InDelta(t, 100, *baseline.RecommendedOptimal, 1e-9)

	// рейтинг 5.0 упирается в потолок +15%, а не 5/4.5
	top := BuildAnalysis(fptr(100), fptr(5.0), competitors)
	require.NotNil(t, top.RecommendedOptimal)
	assert.InDelta(t, 115, *top.RecommendedOptimal, 1e-9)

	// низкий рейтинг зажат снизу на −15%
	low := BuildAnalysis(fptr(100), fptr(2.0), competitors)
	require.NotNil(t, low.RecommendedOptimal)
	assert.InDelta(t, 85, *low.RecommendedOptimal, 1e-9)

	// без рейтинга оптимум равен взвешенной средней
	none := BuildAnalysis(fptr(100), nil, competitors)
	require.NotNil(t, none.RecommendedOptimal)
	assert.InDelta(t, 100, *none.RecommendedOptimal, 1e-9)
}

func TestBuildAnalysis_StatusBounds(t *testing.T) {
	competitors := equalWeightCompetitors(100, 100, 100)
	// при одинаковых ценах коридор [95, 105]

	assert.Equal(t, domain.PricingStatusOptimal,
		BuildAnalysis(fptr(100), nil, competitors).Status)
	assert.Equal(t, domain.PricingStatusUnderpriced,
		BuildAnalysis(fptr(90), nil, competitors).Status)
	assert.Equal(t, domain.PricingStatusOverpriced,
		BuildAnalysis(fptr(110), nil, competitors).Status)
	assert.Equal(t, domain.PricingStatusUnknown,
		BuildAnalysis(nil, nil, competitors).Status)
}

func TestBuildAnalysis_CompetitorsWithoutPrices(t *testing.T) {
	competitors := []domain.CompetitorPrice{
		{ListingKey: 1, Price: fptr(120), Weight: 0.5},
		{ListingKey: 2, Price: nil, Weight: 0.5},
	}

	analysis := BuildAnalysis(fptr(100), nil, competitors)

	// безценовый конкурент остаётся в счётчике, но не в агрегатах;
	// его вес не перераспределяется
	assert.Equal(t, 2, analysis.CompetitorCount)
	require.NotNil(t, analysis.AvgPrice)
	assert.InDelta(t, 120, *analysis.AvgPrice, 1e-9)
	require.NotNil(t, analysis.WeightedAvgPrice)
	assert.InDelta(t, 60, *analysis.WeightedAvgPrice, 1e-9)
}

func TestBuildAnalysis_NoPricedCompetitors(t *testing.T) {
	analysis := BuildAnalysis(fptr(100), nil, []domain.CompetitorPrice{
		{ListingKey: 1, Price: nil, Weight: 1},
	})

	assert.Nil(t, analysis.AvgPrice)
	assert.Nil(t, analysis.WeightedAvgPrice)
	assert.Nil(t, analysis.RecommendedOptimal)
	assert.Equal(t, domain.PricingStatusUnknown, analysis.Status)
}
