package warehouse_repository

import (
	"context"
	"fmt"
)

// schemaStatements — DDL звёздной схемы в порядке зависимостей.
// Все выражения идемпотентны: EnsureSchema можно звать на каждом запуске.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS dim_host (
		host_key BIGSERIAL PRIMARY KEY,
		host_id TEXT NOT NULL UNIQUE,
		host_name TEXT,
		host_rating DOUBLE PRECISION,
		number_of_reviews INTEGER,
		response_rate TEXT,
		response_time TEXT,
		years_hosting INTEGER,
		languages TEXT,
		my_work TEXT,
		image_url TEXT,
		profile_url TEXT,
		is_superhost BOOLEAN NOT NULL DEFAULT FALSE,
		host_tier TEXT NOT NULL,
		experience_level TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS dim_property (
		property_key BIGSERIAL PRIMARY KEY,
		property_id TEXT NOT NULL UNIQUE,
		property_name TEXT,
		listing_name TEXT,
		listing_title TEXT,
		category TEXT,
		url TEXT,
		description TEXT,
		guests_capacity INTEGER,
		bedrooms INTEGER,
		beds INTEGER,
		baths DOUBLE PRECISION,
		pets_allowed BOOLEAN,
		is_guest_favorite BOOLEAN,
		property_size_tier TEXT NOT NULL,
		guest_per_bedroom_ratio DOUBLE PRECISION,
		bath_to_bedroom_ratio DOUBLE PRECISION
	)`,

	`CREATE TABLE IF NOT EXISTS dim_location (
		location_key BIGSERIAL PRIMARY KEY,
		city TEXT,
		province TEXT,
		country TEXT,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		location_cluster_id INTEGER NOT NULL,
		distance_to_downtown_km DOUBLE PRECISION NOT NULL,
		location_tier TEXT NOT NULL,
		UNIQUE (latitude, longitude)
	)`,

	`CREATE TABLE IF NOT EXISTS dim_category_ratings (
		rating_key BIGSERIAL PRIMARY KEY,
		source_listing_id BIGINT NOT NULL UNIQUE,
		cleanliness_rating DOUBLE PRECISION,
		accuracy_rating DOUBLE PRECISION,
		checkin_rating DOUBLE PRECISION,
		communication_rating DOUBLE PRECISION,
		location_rating DOUBLE PRECISION,
		value_rating DOUBLE PRECISION,
		overall_quality_score DOUBLE PRECISION,
		quality_tier TEXT NOT NULL,
		value_index DOUBLE PRECISION
	)`,

	`CREATE TABLE IF NOT EXISTS fact_listing_metrics (
		listing_key BIGSERIAL PRIMARY KEY,
		property_id TEXT NOT NULL,
		host_key BIGINT NOT NULL REFERENCES dim_host (host_key),
		property_key BIGINT NOT NULL REFERENCES dim_property (property_key),
		location_key BIGINT NOT NULL REFERENCES dim_location (location_key),
		rating_key BIGINT REFERENCES dim_category_ratings (rating_key),
		date_key INTEGER NOT NULL,
		price_per_night DOUBLE PRECISION,
		currency TEXT NOT NULL,
		rating DOUBLE PRECISION,
		number_of_reviews INTEGER,
		is_available BOOLEAN,
		price_per_guest DOUBLE PRECISION,
		price_per_bedroom DOUBLE PRECISION,
		price_per_bed DOUBLE PRECISION,
		review_velocity DOUBLE PRECISION,
		competitiveness_score DOUBLE PRECISION NOT NULL,
		value_score DOUBLE PRECISION,
		popularity_index DOUBLE PRECISION,
		scraped_at TIMESTAMPTZ,
		snapshot_date DATE NOT NULL,
		UNIQUE (property_id, date_key)
	)`,

	`CREATE TABLE IF NOT EXISTS fact_listing_amenities_summary (
		listing_key BIGINT PRIMARY KEY REFERENCES fact_listing_metrics (listing_key),
		total_amenities_count INTEGER NOT NULL,
		essential_count INTEGER NOT NULL,
		luxury_count INTEGER NOT NULL,
		safety_count INTEGER NOT NULL,
		amenity_score INTEGER NOT NULL,
		amenity_tier TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS bridge_listing_competitors (
		listing_key BIGINT NOT NULL REFERENCES fact_listing_metrics (listing_key),
		competitor_listing_key BIGINT NOT NULL REFERENCES fact_listing_metrics (listing_key),
		competitor_rank INTEGER NOT NULL,
		overall_similarity DOUBLE PRECISION NOT NULL,
		location_similarity DOUBLE PRECISION NOT NULL,
		property_similarity DOUBLE PRECISION NOT NULL,
		quality_similarity DOUBLE PRECISION NOT NULL,
		amenity_similarity DOUBLE PRECISION NOT NULL,
		price_similarity DOUBLE PRECISION NOT NULL,
		competitor_weight DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (listing_key, competitor_listing_key)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_bridge_competitors_rank
		ON bridge_listing_competitors (listing_key, competitor_rank)`,

	`CREATE TABLE IF NOT EXISTS fact_competitor_pricing_analysis (
		listing_key BIGINT NOT NULL REFERENCES fact_listing_metrics (listing_key),
		analysis_date_key INTEGER NOT NULL,
		competitor_count INTEGER NOT NULL,
		avg_competitor_price DOUBLE PRECISION,
		min_competitor_price DOUBLE PRECISION,
		max_competitor_price DOUBLE PRECISION,
		median_competitor_price DOUBLE PRECISION,
		price_percentile_25 DOUBLE PRECISION,
		price_percentile_75 DOUBLE PRECISION,
		weighted_avg_price DOUBLE PRECISION,
		premium_discount_pct DOUBLE PRECISION,
		recommended_price_lower DOUBLE PRECISION,
		recommended_price_upper DOUBLE PRECISION,
		recommended_price_optimal DOUBLE PRECISION,
		pricing_status TEXT NOT NULL,
		PRIMARY KEY (listing_key, analysis_date_key)
	)`,

	`CREATE OR REPLACE VIEW view_listing_summary AS
		SELECT
			f.listing_key,
			f.property_id,
			p.listing_name,
			h.host_name,
			h.host_tier,
			l.city,
			l.location_tier,
			p.property_size_tier,
			p.bedrooms,
			f.price_per_night,
			f.currency,
			f.rating,
			f.number_of_reviews,
			cr.quality_tier,
			a.amenity_tier,
			a.amenity_score,
			f.competitiveness_score,
			f.snapshot_date
		FROM fact_listing_metrics f
		JOIN dim_host h ON f.host_key = h.host_key
		JOIN dim_property p ON f.property_key = p.property_key
		JOIN dim_location l ON f.location_key = l.location_key
		LEFT JOIN dim_category_ratings cr ON f.rating_key = cr.rating_key
		LEFT JOIN fact_listing_amenities_summary a ON f.listing_key = a.listing_key`,

	`CREATE OR REPLACE VIEW view_price_recommendations AS
		SELECT DISTINCT ON (pa.listing_key)
			f.property_id,
			p.listing_name,
			f.price_per_night AS current_price,
			f.rating AS listing_rating,
			f.number_of_reviews,
			pa.competitor_count,
			pa.avg_competitor_price,
			pa.median_competitor_price,
			pa.weighted_avg_price,
			pa.price_percentile_25,
			pa.price_percentile_75,
			pa.recommended_price_optimal,
			pa.recommended_price_lower,
			pa.recommended_price_upper,
			pa.premium_discount_pct,
			f.price_per_night - pa.recommended_price_optimal AS price_difference,
			pa.pricing_status,
			p.bedrooms,
			l.location_tier,
			to_date(pa.analysis_date_key::text, 'YYYYMMDD') AS analysis_date
		FROM fact_competitor_pricing_analysis pa
		JOIN fact_listing_metrics f ON pa.listing_key = f.listing_key
		JOIN dim_property p ON f.property_key = p.property_key
		JOIN dim_location l ON f.location_key = l.location_key
		ORDER BY pa.listing_key, pa.analysis_date_key DESC`,

	`CREATE MATERIALIZED VIEW IF NOT EXISTS view_top_competitors AS
		SELECT
			f.property_id,
			cf.property_id AS competitor_property_id,
			cp.listing_name AS competitor_name,
			b.competitor_rank,
			b.overall_similarity,
			b.location_similarity,
			b.property_similarity,
			b.quality_similarity,
			b.amenity_similarity,
			b.price_similarity,
			b.competitor_weight,
			cf.price_per_night AS competitor_price,
			cf.rating AS competitor_rating
		FROM bridge_listing_competitors b
		JOIN fact_listing_metrics f ON b.listing_key = f.listing_key
		JOIN fact_listing_metrics cf ON b.competitor_listing_key = cf.listing_key
		JOIN dim_property cp ON cf.property_key = cp.property_key`,

	`CREATE INDEX IF NOT EXISTS idx_top_competitors_property
		ON view_top_competitors (property_id, competitor_rank)`,
}

// EnsureSchema создаёт таблицы, представления и индексы хранилища.
func (r *WarehouseRepository) EnsureSchema(ctx context.Context) error {
	const op = "WarehouseRepository.EnsureSchema"

	for _, stmt := range schemaStatements {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}
