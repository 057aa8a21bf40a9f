package domain

import (
	"time"

	"listing_analytics/internal/lib/geo"
)

// ListingMetrics — строка центрального факта fact_listing_metrics.
// Хост, объект и локация обязаны разрешаться в суррогатные ключи: листинг
// без любого из трёх в факт не попадает (пропускается и считается).
type ListingMetrics struct {
	ListingKey  int64
	PropertyID  string
	HostKey     int64
	PropertyKey int64
	LocationKey int64
	RatingKey   *int64
	DateKey     int
	PricePerNight   *float64
	Currency        string
	Rating          *float64
	NumberOfReviews *int
	IsAvailable     *bool
	PricePerGuest   *float64
	PricePerBedroom *float64
	PricePerBed     *float64
	// ReviewVelocity — отзывы в день с момента публикации; nil без
	// временной метки, 0 для только что опубликованных
	ReviewVelocity *float64
	// CompetitivenessScore — упрощённая сумма с потолками компонент
	// (рейтинг ≤30, объём отзывов ≤25, бонус фаворита 10): шкала ~0–65,
	// не нормирована к 100
	CompetitivenessScore float64
	ValueScore           *float64
	PopularityIndex      *float64
	ScrapedAt            *time.Time
	SnapshotDate         time.Time
}

// AmenitySummary — строка fact_listing_amenities_summary.
type AmenitySummary struct {
	ListingKey     int64
	TotalCount     int
	EssentialCount int
	LuxuryCount    int
	SafetyCount    int
	// Score = essential*2 + luxury*3 + safety*1
	Score int
	Tier  geo.AmenityTier
}
