package domain

// PricingStatus — вердикт по текущей цене листинга.
// Выводится единственным способом: сравнением текущей цены с границами
// [RecommendedLower, RecommendedUpper]. Никто не пересчитывает статус
// на стороне запросов.
type PricingStatus string

const (
	PricingStatusUnknown     PricingStatus = ""
	PricingStatusOptimal     PricingStatus = "OPTIMAL"
	PricingStatusOverpriced  PricingStatus = "OVERPRICED"
	PricingStatusUnderpriced PricingStatus = "UNDERPRICED"
)

func (s PricingStatus) String() string {
	return string(s)
}

// PricingAnalysis — строка fact_competitor_pricing_analysis: одна на
// листинг на дату анализа.
type PricingAnalysis struct {
	ListingKey      int64
	AnalysisDateKey int
	CompetitorCount int
	AvgPrice        *float64
	MinPrice        *float64
	MaxPrice        *float64
	MedianPrice     *float64
	P25Price        *float64
	P75Price        *float64
	// WeightedAvgPrice — Σ цена конкурента × вес
	WeightedAvgPrice *float64
	// PremiumDiscount — (текущая − взвешенная) / взвешенная × 100
	PremiumDiscount  *float64
	RecommendedLower *float64
	RecommendedUpper *float64
	// RecommendedOptimal — взвешенная средняя с поправкой на качество
	// clamp(rating/4.5, 0.85, 1.15); без рейтинга — без поправки
	RecommendedOptimal *float64
	Status             PricingStatus
}
