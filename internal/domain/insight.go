package domain

import "time"

// Читающая сторона хранилища: формы строк, которые отдаёт дашборду и
// экспорту view_listing_summary, view_top_competitors и
// view_price_recommendations.

// ListingSummary — денормализованная сводка листинга, одна строка на
// property_id.
type ListingSummary struct {
	ListingKey      int64
	PropertyID      string
	ListingName     *string
	HostName        *string
	HostTier        *string
	City            *string
	LocationTier    *string
	SizeTier        *string
	Bedrooms        *int
	PricePerNight   *float64
	Currency        *string
	Rating          *float64
	NumberOfReviews *int
	QualityTier     *string
	AmenityTier     *string
	AmenityScore    *int
	CompetitivenessScore *float64
	SnapshotDate         time.Time
}

// TopCompetitor — строка материализованного представления топ-конкурентов.
type TopCompetitor struct {
	PropertyID           string
	CompetitorPropertyID string
	CompetitorName       *string
	Rank                 int
	OverallSimilarity    float64
	LocationSimilarity   float64
	PropertySimilarity   float64
	QualitySimilarity    float64
	AmenitySimilarity    float64
	PriceSimilarity      float64
	Weight               float64
	CompetitorPrice      *float64
	CompetitorRating     *float64
}

// PriceRecommendation — строка view_price_recommendations.
type PriceRecommendation struct {
	PropertyID         string
	ListingName        *string
	CurrentPrice       *float64
	ListingRating      *float64
	NumberOfReviews    *int
	CompetitorCount    int
	AvgCompetitorPrice *float64
	MedianPrice        *float64
	WeightedAvgPrice   *float64
	P25Price           *float64
	P75Price           *float64
	RecommendedOptimal *float64
	RecommendedLower   *float64
	RecommendedUpper   *float64
	PremiumDiscount    *float64
	// PriceDifference — текущая цена минус рекомендованная оптимальная
	PriceDifference *float64
	Status          PricingStatus
	Bedrooms        *int
	LocationTier    *string
	AnalysisDate    time.Time
}
