package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"listing_analytics/internal/domain"
	"listing_analytics/internal/lib/metrics"
	"listing_analytics/internal/lib/stats"
)

const (
	// Границы рекомендованного коридора: p25 с дисконтом и p75 с надбавкой.
	lowerBoundFactor = 0.95
	upperBoundFactor = 1.05

	// Поправка на качество для оптимальной цены: rating/4.5, зажатый в ±15%.
	qualityBaseline  = 4.5
	qualityFactorMin = 0.85
	qualityFactorMax = 1.15
)

// WarehouseStore — загрузка ценового анализа.
type WarehouseStore interface {
	UpsertPricingAnalyses(ctx context.Context, rows []domain.PricingAnalysis) error
}

// Service строит ценовой анализ по топ-K конкурентам каждого листинга и
// грузит fact_competitor_pricing_analysis.
type Service struct {
	log       *slog.Logger
	warehouse WarehouseStore
	now       func() time.Time
}

func New(log *slog.Logger, warehouse WarehouseStore) *Service {
	return &Service{log: log, warehouse: warehouse, now: time.Now}
}

// Analyze агрегирует цены конкурентов из связей моста и грузит анализ.
// Листинги без конкурентов строки анализа не получают.
func (s *Service) Analyze(ctx context.Context, comparables []domain.Comparable, links []domain.CompetitorLink, rm *metrics.RunMetrics) error {
	const op = "pricing.Service.Analyze"

	if len(links) == 0 {
		s.log.Warn("no competitor links, skipping pricing analysis")
		return nil
	}

	byKey := make(map[int64]domain.Comparable, len(comparables))
	for _, c := range comparables {
		byKey[c.ListingKey] = c
	}

	grouped := make(map[int64][]domain.CompetitorPrice)
	order := make([]int64, 0, len(comparables))
	for _, l := range links {
		if _, ok := grouped[l.ListingKey]; !ok {
			order = append(order, l.ListingKey)
		}
		grouped[l.ListingKey] = append(grouped[l.ListingKey], domain.CompetitorPrice{
			ListingKey: l.CompetitorKey,
			Price:      byKey[l.CompetitorKey].Price,
			Weight:     l.Weight,
		})
	}

	now := s.now()
	dateKey := now.Year()*10000 + int(now.Month())*100 + now.Day()

	rows := make([]domain.PricingAnalysis, 0, len(grouped))
	for _, listingKey := range order {
		listing := byKey[listingKey]
		analysis := BuildAnalysis(listing.Price, listing.Rating, grouped[listingKey])
		analysis.ListingKey = listingKey
		analysis.AnalysisDateKey = dateKey
		rows = append(rows, analysis)
	}

	if err := s.warehouse.UpsertPricingAnalyses(ctx, rows); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rm.AddLoaded(metrics.PhasePricing, len(rows))
	s.log.Info("fact_competitor_pricing_analysis loaded", slog.Int("rows", len(rows)))

	return nil
}

// BuildAnalysis считает агрегаты по ценам конкурентов и рекомендации.
// Конкуренты без цены в агрегаты не входят, но в счётчик входят; их вес из
// взвешенного среднего не перераспределяется.
func BuildAnalysis(currentPrice, rating *float64, competitors []domain.CompetitorPrice) domain.PricingAnalysis {
	analysis := domain.PricingAnalysis{CompetitorCount: len(competitors)}

	var prices []float64
	var weightedSum float64
	var hasWeighted bool
	for _, c := range competitors {
		if c.Price == nil {
			continue
		}
		prices = append(prices, *c.Price)
		weightedSum += *c.Price * c.Weight
		hasWeighted = true
	}

	if v, ok := stats.Mean(prices); ok {
		analysis.AvgPrice = round2p(v)
	}
	if v, ok := stats.Min(prices); ok {
		analysis.MinPrice = round2p(v)
	}
	if v, ok := stats.Max(prices); ok {
		analysis.MaxPrice = round2p(v)
	}
	if v, ok := stats.Median(prices); ok {
		analysis.MedianPrice = round2p(v)
	}
	if v, ok := stats.Percentile(prices, 0.25); ok {
		analysis.P25Price = round2p(v)
		analysis.RecommendedLower = round2p(v * lowerBoundFactor)
	}
	if v, ok := stats.Percentile(prices, 0.75); ok {
		analysis.P75Price = round2p(v)
		analysis.RecommendedUpper = round2p(v * upperBoundFactor)
	}

	if hasWeighted {
		analysis.WeightedAvgPrice = round2p(weightedSum)

		if currentPrice != nil && *currentPrice > 0 && weightedSum > 0 {
			analysis.PremiumDiscount = round2p((*currentPrice - weightedSum) / weightedSum * 100)
		}

		optimal := weightedSum
		if rating != nil && *rating > 0 {
			factor := math.Min(math.Max(*rating/qualityBaseline, qualityFactorMin), qualityFactorMax)
			optimal *= factor
		}
		analysis.RecommendedOptimal = round2p(optimal)
	}

	analysis.Status = classifyStatus(currentPrice, analysis.RecommendedLower, analysis.RecommendedUpper)

	return analysis
}

// classifyStatus — единственное место, где выводится ценовой вердикт:
// сравнение текущей цены с границами коридора.
func classifyStatus(current, lower, upper *float64) domain.PricingStatus {
	if current == nil || *current <= 0 || lower == nil || upper == nil {
		return domain.PricingStatusUnknown
	}
	switch {
	case *current > *upper:
		return domain.PricingStatusOverpriced
	case *current < *lower:
		return domain.PricingStatusUnderpriced
	default:
		return domain.PricingStatusOptimal
	}
}

func round2p(v float64) *float64 {
	r := math.Round(v*100) / 100
	return &r
}
