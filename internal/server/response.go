package server

import (
	"time"

	"listing_analytics/internal/domain"
)

type listingSummaryResponse struct {
	PropertyID           string   `json:"property_id"`
	ListingName          *string  `json:"listing_name,omitempty"`
	HostName             *string  `json:"host_name,omitempty"`
	HostTier             *string  `json:"host_tier,omitempty"`
	City                 *string  `json:"city,omitempty"`
	LocationTier         *string  `json:"location_tier,omitempty"`
	SizeTier             *string  `json:"property_size_tier,omitempty"`
	Bedrooms             *int     `json:"bedrooms,omitempty"`
	PricePerNight        *float64 `json:"price_per_night,omitempty"`
	Currency             *string  `json:"currency,omitempty"`
	Rating               *float64 `json:"rating,omitempty"`
	NumberOfReviews      *int     `json:"number_of_reviews,omitempty"`
	QualityTier          *string  `json:"quality_tier,omitempty"`
	AmenityTier          *string  `json:"amenity_tier,omitempty"`
	AmenityScore         *int     `json:"amenity_score,omitempty"`
	CompetitivenessScore *float64 `json:"competitiveness_score,omitempty"`
	SnapshotDate         string   `json:"snapshot_date"`
}

func newListingSummaryResponse(m domain.ListingSummary) listingSummaryResponse {
	return listingSummaryResponse{
		PropertyID:           m.PropertyID,
		ListingName:          m.ListingName,
		HostName:             m.HostName,
		HostTier:             m.HostTier,
		City:                 m.City,
		LocationTier:         m.LocationTier,
		SizeTier:             m.SizeTier,
		Bedrooms:             m.Bedrooms,
		PricePerNight:        m.PricePerNight,
		Currency:             m.Currency,
		Rating:               m.Rating,
		NumberOfReviews:      m.NumberOfReviews,
		QualityTier:          m.QualityTier,
		AmenityTier:          m.AmenityTier,
		AmenityScore:         m.AmenityScore,
		CompetitivenessScore: m.CompetitivenessScore,
		SnapshotDate:         m.SnapshotDate.Format(time.DateOnly),
	}
}

type competitorResponse struct {
	CompetitorPropertyID string   `json:"competitor_property_id"`
	CompetitorName       *string  `json:"competitor_name,omitempty"`
	Rank                 int      `json:"rank"`
	OverallSimilarity    float64  `json:"overall_similarity"`
	LocationSimilarity   float64  `json:"location_similarity"`
	PropertySimilarity   float64  `json:"property_similarity"`
	QualitySimilarity    float64  `json:"quality_similarity"`
	AmenitySimilarity    float64  `json:"amenity_similarity"`
	PriceSimilarity      float64  `json:"price_similarity"`
	Weight               float64  `json:"weight"`
	CompetitorPrice      *float64 `json:"competitor_price,omitempty"`
	CompetitorRating     *float64 `json:"competitor_rating,omitempty"`
}

func newCompetitorResponse(c domain.TopCompetitor) competitorResponse {
	return competitorResponse{
		CompetitorPropertyID: c.CompetitorPropertyID,
		CompetitorName:       c.CompetitorName,
		Rank:                 c.Rank,
		OverallSimilarity:    c.OverallSimilarity,
		LocationSimilarity:   c.LocationSimilarity,
		PropertySimilarity:   c.PropertySimilarity,
		QualitySimilarity:    c.QualitySimilarity,
		AmenitySimilarity:    c.AmenitySimilarity,
		PriceSimilarity:      c.PriceSimilarity,
		Weight:               c.Weight,
		CompetitorPrice:      c.CompetitorPrice,
		CompetitorRating:     c.CompetitorRating,
	}
}

type priceRecommendationResponse struct {
	PropertyID         string   `json:"property_id"`
	ListingName        *string  `json:"listing_name,omitempty"`
	CurrentPrice       *float64 `json:"current_price,omitempty"`
	ListingRating      *float64 `json:"listing_rating,omitempty"`
	NumberOfReviews    *int     `json:"number_of_reviews,omitempty"`
	CompetitorCount    int      `json:"competitor_count"`
	AvgCompetitorPrice *float64 `json:"avg_competitor_price,omitempty"`
	MedianPrice        *float64 `json:"median_competitor_price,omitempty"`
	WeightedAvgPrice   *float64 `json:"weighted_avg_price,omitempty"`
	P25Price           *float64 `json:"price_percentile_25,omitempty"`
	P75Price           *float64 `json:"price_percentile_75,omitempty"`
	RecommendedOptimal *float64 `json:"recommended_price_optimal,omitempty"`
	RecommendedLower   *float64 `json:"recommended_price_lower,omitempty"`
	RecommendedUpper   *float64 `json:"recommended_price_upper,omitempty"`
	PremiumDiscount    *float64 `json:"premium_discount_pct,omitempty"`
	PriceDifference    *float64 `json:"price_difference,omitempty"`
	Status             string   `json:"pricing_status"`
	Bedrooms           *int     `json:"bedrooms,omitempty"`
	LocationTier       *string  `json:"location_tier,omitempty"`
	AnalysisDate       string   `json:"analysis_date"`
}

func newPriceRecommendationResponse(r domain.PriceRecommendation) priceRecommendationResponse {
	return priceRecommendationResponse{
		PropertyID:         r.PropertyID,
		ListingName:        r.ListingName,
		CurrentPrice:       r.CurrentPrice,
		ListingRating:      r.ListingRating,
		NumberOfReviews:    r.NumberOfReviews,
		CompetitorCount:    r.CompetitorCount,
		AvgCompetitorPrice: r.AvgCompetitorPrice,
		MedianPrice:        r.MedianPrice,
		WeightedAvgPrice:   r.WeightedAvgPrice,
		P25Price:           r.P25Price,
		P75Price:           r.P75Price,
		RecommendedOptimal: r.RecommendedOptimal,
		RecommendedLower:   r.RecommendedLower,
		RecommendedUpper:   r.RecommendedUpper,
		PremiumDiscount:    r.PremiumDiscount,
		PriceDifference:    r.PriceDifference,
		Status:             r.Status.String(),
		Bedrooms:           r.Bedrooms,
		LocationTier:       r.LocationTier,
		AnalysisDate:       r.AnalysisDate.Format(time.DateOnly),
	}
}
