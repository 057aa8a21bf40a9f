package insight_repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"listing_analytics/internal/domain"
	"listing_analytics/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InsightRepository — читающая сторона хранилища для дашборда и экспорта.
// Ходит только в представления, в таблицы фактов напрямую не лезет.
type InsightRepository struct {
	db  *pgxpool.Pool
	log *slog.Logger
}

func NewInsightRepository(db *pgxpool.Pool, log *slog.Logger) *InsightRepository {
	return &InsightRepository{db: db, log: log}
}

// ListingSummaries — все строки view_listing_summary.
func (r *InsightRepository) ListingSummaries(ctx context.Context) ([]domain.ListingSummary, error) {
	const op = "InsightRepository.ListingSummaries"

	query := `
		SELECT
			listing_key, property_id, listing_name, host_name, host_tier,
			city, location_tier, property_size_tier, bedrooms,
			price_per_night, currency, rating, number_of_reviews,
			quality_tier, amenity_tier, amenity_score,
			competitiveness_score, snapshot_date
		FROM view_listing_summary
		ORDER BY competitiveness_score DESC, listing_key
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var summaries []domain.ListingSummary
	for rows.Next() {
		var s domain.ListingSummary
		if err := rows.Scan(
			&s.ListingKey, &s.PropertyID, &s.ListingName, &s.HostName, &s.HostTier,
			&s.City, &s.LocationTier, &s.SizeTier, &s.Bedrooms,
			&s.PricePerNight, &s.Currency, &s.Rating, &s.NumberOfReviews,
			&s.QualityTier, &s.AmenityTier, &s.AmenityScore,
			&s.CompetitivenessScore, &s.SnapshotDate,
		); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows error: %w", op, err)
	}

	return summaries, nil
}

// ListingSummary — сводка одного листинга по property_id.
func (r *InsightRepository) ListingSummary(ctx context.Context, propertyID string) (domain.ListingSummary, error) {
	const op = "InsightRepository.ListingSummary"

	query := `
		SELECT
			listing_key, property_id, listing_name, host_name, host_tier,
			city, location_tier, property_size_tier, bedrooms,
			price_per_night, currency, rating, number_of_reviews,
			quality_tier, amenity_tier, amenity_score,
			competitiveness_score, snapshot_date
		FROM view_listing_summary
		WHERE property_id = $1
	`

	var s domain.ListingSummary
	err := r.db.QueryRow(ctx, query, propertyID).Scan(
		&s.ListingKey, &s.PropertyID, &s.ListingName, &s.HostName, &s.HostTier,
		&s.City, &s.LocationTier, &s.SizeTier, &s.Bedrooms,
		&s.PricePerNight, &s.Currency, &s.Rating, &s.NumberOfReviews,
		&s.QualityTier, &s.AmenityTier, &s.AmenityScore,
		&s.CompetitivenessScore, &s.SnapshotDate,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ListingSummary{}, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	if err != nil {
		return domain.ListingSummary{}, fmt.Errorf("%s: %w", op, err)
	}

	return s, nil
}

// TopCompetitors — конкуренты листинга из материализованного представления,
// по возрастанию ранга.
func (r *InsightRepository) TopCompetitors(ctx context.Context, propertyID string) ([]domain.TopCompetitor, error) {
	const op = "InsightRepository.TopCompetitors"

	rows, err := r.db.Query(ctx, topCompetitorQuery+` WHERE property_id = $1 ORDER BY competitor_rank`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	competitors, err := scanTopCompetitors(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return competitors, nil
}

// AllTopCompetitors — полный снимок view_top_competitors для выгрузки.
func (r *InsightRepository) AllTopCompetitors(ctx context.Context) ([]domain.TopCompetitor, error) {
	const op = "InsightRepository.AllTopCompetitors"

	rows, err := r.db.Query(ctx, topCompetitorQuery+` ORDER BY property_id, competitor_rank`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	competitors, err := scanTopCompetitors(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return competitors, nil
}

const topCompetitorQuery = `
	SELECT
		property_id, competitor_property_id, competitor_name,
		competitor_rank, overall_similarity, location_similarity,
		property_similarity, quality_similarity, amenity_similarity,
		price_similarity, competitor_weight,
		competitor_price, competitor_rating
	FROM view_top_competitors
`

func scanTopCompetitors(rows pgx.Rows) ([]domain.TopCompetitor, error) {
	defer rows.Close()

	var competitors []domain.TopCompetitor
	for rows.Next() {
		var c domain.TopCompetitor
		if err := rows.Scan(
			&c.PropertyID, &c.CompetitorPropertyID, &c.CompetitorName,
			&c.Rank, &c.OverallSimilarity, &c.LocationSimilarity,
			&c.PropertySimilarity, &c.QualitySimilarity, &c.AmenitySimilarity,
			&c.PriceSimilarity, &c.Weight,
			&c.CompetitorPrice, &c.CompetitorRating,
		); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		competitors = append(competitors, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return competitors, nil
}

// PriceRecommendations — все строки view_price_recommendations.
func (r *InsightRepository) PriceRecommendations(ctx context.Context) ([]domain.PriceRecommendation, error) {
	const op = "InsightRepository.PriceRecommendations"

	rows, err := r.db.Query(ctx, priceRecommendationQuery+` ORDER BY property_id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var recs []domain.PriceRecommendation
	for rows.Next() {
		rec, err := scanPriceRecommendation(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows error: %w", op, err)
	}

	return recs, nil
}

// PriceRecommendation — рекомендация по одному листингу.
func (r *InsightRepository) PriceRecommendation(ctx context.Context, propertyID string) (domain.PriceRecommendation, error) {
	const op = "InsightRepository.PriceRecommendation"

	row := r.db.QueryRow(ctx, priceRecommendationQuery+` WHERE property_id = $1`, propertyID)

	rec, err := scanPriceRecommendation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.PriceRecommendation{}, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	if err != nil {
		return domain.PriceRecommendation{}, fmt.Errorf("%s: %w", op, err)
	}

	return rec, nil
}

const priceRecommendationQuery = `
	SELECT
		property_id, listing_name, current_price, listing_rating,
		number_of_reviews, competitor_count, avg_competitor_price,
		median_competitor_price, weighted_avg_price,
		price_percentile_25, price_percentile_75,
		recommended_price_optimal, recommended_price_lower,
		recommended_price_upper, premium_discount_pct,
		price_difference, pricing_status, bedrooms, location_tier,
		analysis_date
	FROM view_price_recommendations
`

func scanPriceRecommendation(row pgx.Row) (domain.PriceRecommendation, error) {
	var rec domain.PriceRecommendation
	var status string
	err := row.Scan(
		&rec.PropertyID, &rec.ListingName, &rec.CurrentPrice, &rec.ListingRating,
		&rec.NumberOfReviews, &rec.CompetitorCount, &rec.AvgCompetitorPrice,
		&rec.MedianPrice, &rec.WeightedAvgPrice,
		&rec.P25Price, &rec.P75Price,
		&rec.RecommendedOptimal, &rec.RecommendedLower,
		&rec.RecommendedUpper, &rec.PremiumDiscount,
		&rec.PriceDifference, &status, &rec.Bedrooms, &rec.LocationTier,
		&rec.AnalysisDate,
	)
	if err != nil {
		return domain.PriceRecommendation{}, err
	}
	rec.Status = domain.PricingStatus(status)
	return rec, nil
}
