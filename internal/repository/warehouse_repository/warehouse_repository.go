package warehouse_repository

import (
	"context"
	"fmt"
	"log/slog"

	"listing_analytics/internal/domain"
	"listing_analytics/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WarehouseRepository — пишущая сторона звёздной схемы: измерения, факты,
// мост конкурентов и представления для дашборда.
type WarehouseRepository struct {
	db  *pgxpool.Pool
	log *slog.Logger
}

func NewWarehouseRepository(db *pgxpool.Pool, log *slog.Logger) *WarehouseRepository {
	return &WarehouseRepository{db: db, log: log}
}

// UpsertHosts грузит dim_host пачкой и возвращает карту
// host_id → host_key. Повторный запуск обновляет атрибуты, ключи стабильны.
func (r *WarehouseRepository) UpsertHosts(ctx context.Context, hosts []domain.Host) (domain.HostKeyMap, error) {
	const op = "WarehouseRepository.UpsertHosts"

	if len(hosts) == 0 {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrEmptyBatch)
	}

	query := `
		INSERT INTO dim_host (
			host_id, host_name, host_rating, number_of_reviews,
			response_rate, response_time, years_hosting, languages,
			my_work, image_url, profile_url, is_superhost,
			host_tier, experience_level
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (host_id) DO UPDATE SET
			host_name = EXCLUDED.host_name,
			host_rating = EXCLUDED.host_rating,
			number_of_reviews = EXCLUDED.number_of_reviews,
			response_rate = EXCLUDED.response_rate,
			response_time = EXCLUDED.response_time,
			years_hosting = EXCLUDED.years_hosting,
			languages = EXCLUDED.languages,
			my_work = EXCLUDED.my_work,
			image_url = EXCLUDED.image_url,
			profile_url = EXCLUDED.profile_url,
			is_superhost = EXCLUDED.is_superhost,
			host_tier = EXCLUDED.host_tier,
			experience_level = EXCLUDED.experience_level
		RETURNING host_key
	`

	batch := &pgx.Batch{}
	for _, h := range hosts {
		batch.Queue(query,
			h.HostID, h.Name, h.Rating, h.NumberOfReviews,
			h.ResponseRate, h.ResponseTime, h.YearsHosting, h.Languages,
			h.MyWork, h.ImageURL, h.ProfileURL, h.IsSuperhost,
			h.Tier.String(), h.Experience.String(),
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	keys := make(domain.HostKeyMap, len(hosts))
	for _, h := range hosts {
		var key int64
		if err := results.QueryRow().Scan(&key); err != nil {
			return nil, fmt.Errorf("%s: host %s: %w", op, h.HostID, err)
		}
		keys[h.HostID] = key
	}

	return keys, nil
}

// UpsertProperties грузит dim_property и возвращает карту
// property_id → property_key.
func (r *WarehouseRepository) UpsertProperties(ctx context.Context, properties []domain.Property) (domain.PropertyKeyMap, error) {
	const op = "WarehouseRepository.UpsertProperties"

	if len(properties) == 0 {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrEmptyBatch)
	}

	query := `
		INSERT INTO dim_property (
			property_id, property_name, listing_name, listing_title,
			category, url, description, guests_capacity,
			bedrooms, beds, baths, pets_allowed, is_guest_favorite,
			property_size_tier, guest_per_bedroom_ratio, bath_to_bedroom_ratio
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (property_id) DO UPDATE SET
			property_name = EXCLUDED.property_name,
			listing_name = EXCLUDED.listing_name,
			listing_title = EXCLUDED.listing_title,
			category = EXCLUDED.category,
			url = EXCLUDED.url,
			description = EXCLUDED.description,
			guests_capacity = EXCLUDED.guests_capacity,
			bedrooms = EXCLUDED.bedrooms,
			beds = EXCLUDED.beds,
			baths = EXCLUDED.baths,
			pets_allowed = EXCLUDED.pets_allowed,
			is_guest_favorite = EXCLUDED.is_guest_favorite,
			property_size_tier = EXCLUDED.property_size_tier,
			guest_per_bedroom_ratio = EXCLUDED.guest_per_bedroom_ratio,
			bath_to_bedroom_ratio = EXCLUDED.bath_to_bedroom_ratio
		RETURNING property_key
	`

	batch := &pgx.Batch{}
	for _, p := range properties {
		batch.Queue(query,
			p.PropertyID, p.Name, p.ListingName, p.ListingTitle,
			p.Category, p.URL, p.Description, p.GuestsCapacity,
			p.Bedrooms, p.Beds, p.Baths, p.PetsAllowed, p.IsGuestFavorite,
			p.SizeTier.String(), p.GuestPerBedroomRatio, p.BathToBedroomRatio,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	keys := make(domain.PropertyKeyMap, len(properties))
	for _, p := range properties {
		var key int64
		if err := results.QueryRow().Scan(&key); err != nil {
			return nil, fmt.Errorf("%s: property %s: %w", op, p.PropertyID, err)
		}
		keys[p.PropertyID] = key
	}

	return keys, nil
}

// UpsertLocations грузит dim_location и возвращает карту
// квантованные координаты → location_key.
func (r *WarehouseRepository) UpsertLocations(ctx context.Context, locations []domain.Location) (domain.LocationKeyMap, error) {
	const op = "WarehouseRepository.UpsertLocations"

	if len(locations) == 0 {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrEmptyBatch)
	}

	query := `
		INSERT INTO dim_location (
			city, province, country, latitude, longitude,
			location_cluster_id, distance_to_downtown_km, location_tier
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (latitude, longitude) DO UPDATE SET
			city = EXCLUDED.city,
			province = EXCLUDED.province,
			country = EXCLUDED.country,
			location_cluster_id = EXCLUDED.location_cluster_id,
			distance_to_downtown_km = EXCLUDED.distance_to_downtown_km,
			location_tier = EXCLUDED.location_tier
		RETURNING location_key
	`

	batch := &pgx.Batch{}
	for _, l := range locations {
		key := l.CoordKey()
		batch.Queue(query,
			l.City, l.Province, l.Country, key.Lat, key.Long,
			l.ClusterID, l.DistanceToDowntownKm, l.Tier.String(),
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	keys := make(domain.LocationKeyMap, len(locations))
	for _, l := range locations {
		var key int64
		if err := results.QueryRow().Scan(&key); err != nil {
			return nil, fmt.Errorf("%s: location (%f, %f): %w", op, l.Latitude, l.Longitude, err)
		}
		keys[l.CoordKey()] = key
	}

	return keys, nil
}

// UpsertCategoryRatings грузит dim_category_ratings и возвращает карту
// listing_id источника → rating_key.
func (r *WarehouseRepository) UpsertCategoryRatings(ctx context.Context, ratings []domain.CategoryRatings) (domain.RatingKeyMap, error) {
	const op = "WarehouseRepository.UpsertCategoryRatings"

	if len(ratings) == 0 {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrEmptyBatch)
	}

	query := `
		INSERT INTO dim_category_ratings (
			source_listing_id, cleanliness_rating, accuracy_rating,
			checkin_rating, communication_rating, location_rating,
			value_rating, overall_quality_score, quality_tier, value_index
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (source_listing_id) DO UPDATE SET
			cleanliness_rating = EXCLUDED.cleanliness_rating,
			accuracy_rating = EXCLUDED.accuracy_rating,
			checkin_rating = EXCLUDED.checkin_rating,
			communication_rating = EXCLUDED.communication_rating,
			location_rating = EXCLUDED.location_rating,
			value_rating = EXCLUDED.value_rating,
			overall_quality_score = EXCLUDED.overall_quality_score,
			quality_tier = EXCLUDED.quality_tier,
			value_index = EXCLUDED.value_index
		RETURNING rating_key
	`

	batch := &pgx.Batch{}
	for _, rt := range ratings {
		batch.Queue(query,
			rt.ListingID, rt.Cleanliness, rt.Accuracy,
			rt.Checkin, rt.Communication, rt.Location,
			rt.Value, rt.OverallQualityScore, rt.QualityTier.String(), rt.ValueIndex,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	keys := make(domain.RatingKeyMap, len(ratings))
	for _, rt := range ratings {
		var key int64
		if err := results.QueryRow().Scan(&key); err != nil {
			return nil, fmt.Errorf("%s: listing %d: %w", op, rt.ListingID, err)
		}
		keys[rt.ListingID] = key
	}

	return keys, nil
}

// InsertListingMetrics грузит центральный факт одной транзакцией и
// возвращает карту property_id → listing_key для последующих фаз.
func (r *WarehouseRepository) InsertListingMetrics(ctx context.Context, metrics []domain.ListingMetrics) (map[string]int64, error) {
	const op = "WarehouseRepository.InsertListingMetrics"

	if len(metrics) == 0 {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrEmptyBatch)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO fact_listing_metrics (
			property_id, host_key, property_key, location_key, rating_key,
			date_key, price_per_night, currency, rating, number_of_reviews,
			is_available, price_per_guest, price_per_bedroom, price_per_bed,
			review_velocity, competitiveness_score, value_score,
			popularity_index, scraped_at, snapshot_date
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (property_id, date_key) DO UPDATE SET
			host_key = EXCLUDED.host_key,
			property_key = EXCLUDED.property_key,
			location_key = EXCLUDED.location_key,
			rating_key = EXCLUDED.rating_key,
			price_per_night = EXCLUDED.price_per_night,
			currency = EXCLUDED.currency,
			rating = EXCLUDED.rating,
			number_of_reviews = EXCLUDED.number_of_reviews,
			is_available = EXCLUDED.is_available,
			price_per_guest = EXCLUDED.price_per_guest,
			price_per_bedroom = EXCLUDED.price_per_bedroom,
			price_per_bed = EXCLUDED.price_per_bed,
			review_velocity = EXCLUDED.review_velocity,
			competitiveness_score = EXCLUDED.competitiveness_score,
			value_score = EXCLUDED.value_score,
			popularity_index = EXCLUDED.popularity_index,
			scraped_at = EXCLUDED.scraped_at,
			snapshot_date = EXCLUDED.snapshot_date
		RETURNING listing_key
	`

	batch := &pgx.Batch{}
	for _, m := range metrics {
		batch.Queue(query,
			m.PropertyID, m.HostKey, m.PropertyKey, m.LocationKey, m.RatingKey,
			m.DateKey, m.PricePerNight, m.Currency, m.Rating, m.NumberOfReviews,
			m.IsAvailable, m.PricePerGuest, m.PricePerBedroom, m.PricePerBed,
			m.ReviewVelocity, m.CompetitivenessScore, m.ValueScore,
			m.PopularityIndex, m.ScrapedAt, m.SnapshotDate,
		)
	}

	results := tx.SendBatch(ctx, batch)

	keys := make(map[string]int64, len(metrics))
	for _, m := range metrics {
		var key int64
		if err := results.QueryRow().Scan(&key); err != nil {
			results.Close()
			if repository.IsForeignKeyViolation(err) {
				// карты ключей разошлись с измерениями — это ошибка фазы
				// измерений, а не этой строки
				return nil, fmt.Errorf("%s: listing %s references missing dimension row: %w", op, m.PropertyID, err)
			}
			return nil, fmt.Errorf("%s: listing %s: %w", op, m.PropertyID, err)
		}
		keys[m.PropertyID] = key
	}
	if err := results.Close(); err != nil {
		return nil, fmt.Errorf("%s: close batch: %w", op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	return keys, nil
}

// UpsertAmenitySummaries грузит fact_listing_amenities_summary.
func (r *WarehouseRepository) UpsertAmenitySummaries(ctx context.Context, summaries []domain.AmenitySummary) error {
	const op = "WarehouseRepository.UpsertAmenitySummaries"

	if len(summaries) == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrEmptyBatch)
	}

	query := `
		INSERT INTO fact_listing_amenities_summary (
			listing_key, total_amenities_count, essential_count,
			luxury_count, safety_count, amenity_score, amenity_tier
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (listing_key) DO UPDATE SET
			total_amenities_count = EXCLUDED.total_amenities_count,
			essential_count = EXCLUDED.essential_count,
			luxury_count = EXCLUDED.luxury_count,
			safety_count = EXCLUDED.safety_count,
			amenity_score = EXCLUDED.amenity_score,
			amenity_tier = EXCLUDED.amenity_tier
	`

	batch := &pgx.Batch{}
	for _, s := range summaries {
		batch.Queue(query,
			s.ListingKey, s.TotalCount, s.EssentialCount,
			s.LuxuryCount, s.SafetyCount, s.Score, s.Tier.String(),
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range summaries {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

// Comparables собирает из загруженного хранилища атрибуты листингов для
// движка схожести. Листинги без координат в выборку не попадают: локация
// обязательна ещё на загрузке факта.
func (r *WarehouseRepository) Comparables(ctx context.Context) ([]domain.Comparable, error) {
	const op = "WarehouseRepository.Comparables"

	query := `
		SELECT
			f.listing_key, f.property_id, f.price_per_night, f.rating,
			p.bedrooms, p.beds, p.baths, p.guests_capacity,
			l.latitude, l.longitude, l.location_cluster_id,
			cr.overall_quality_score,
			a.amenity_score
		FROM fact_listing_metrics f
		JOIN dim_property p ON f.property_key = p.property_key
		JOIN dim_location l ON f.location_key = l.location_key
		LEFT JOIN dim_category_ratings cr ON f.rating_key = cr.rating_key
		LEFT JOIN fact_listing_amenities_summary a ON f.listing_key = a.listing_key
		ORDER BY f.listing_key
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var comparables []domain.Comparable
	for rows.Next() {
		var c domain.Comparable
		var amenityScore *int
		if err := rows.Scan(
			&c.ListingKey, &c.PropertyID, &c.Price, &c.Rating,
			&c.Bedrooms, &c.Beds, &c.Baths, &c.GuestsCapacity,
			&c.Latitude, &c.Longitude, &c.ClusterID,
			&c.QualityScore,
			&amenityScore,
		); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		if amenityScore != nil {
			score := float64(*amenityScore)
			c.AmenityScore = &score
		}
		comparables = append(comparables, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows error: %w", op, err)
	}

	return comparables, nil
}

// ReplaceCompetitorBridge полностью перезаписывает bridge_listing_competitors
// одной транзакцией: мост — производная таблица, частичные обновления
// оставляли бы устаревшие ранги.
func (r *WarehouseRepository) ReplaceCompetitorBridge(ctx context.Context, links []domain.CompetitorLink) error {
	const op = "WarehouseRepository.ReplaceCompetitorBridge"

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM bridge_listing_competitors`); err != nil {
		return fmt.Errorf("%s: clear bridge: %w", op, err)
	}

	query := `
		INSERT INTO bridge_listing_competitors (
			listing_key, competitor_listing_key, competitor_rank,
			overall_similarity, location_similarity, property_similarity,
			quality_similarity, amenity_similarity, price_similarity,
			competitor_weight
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	batch := &pgx.Batch{}
	for _, l := range links {
		batch.Queue(query,
			l.ListingKey, l.CompetitorKey, l.Rank,
			l.OverallSimilarity, l.LocationSimilarity, l.PropertySimilarity,
			l.QualitySimilarity, l.AmenitySimilarity, l.PriceSimilarity,
			l.Weight,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for range links {
		if _, err := results.Exec(); err != nil {
			results.Close()
			if repository.IsUniqueViolation(err) {
				// движок схожести обязан отдавать каждую пару один раз
				return fmt.Errorf("%s: duplicate competitor pair from ranker: %w", op, err)
			}
			if repository.IsForeignKeyViolation(err) {
				return fmt.Errorf("%s: link references missing listing row: %w", op, err)
			}
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("%s: close batch: %w", op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return nil
}

// UpsertPricingAnalyses грузит fact_competitor_pricing_analysis.
func (r *WarehouseRepository) UpsertPricingAnalyses(ctx context.Context, analyses []domain.PricingAnalysis) error {
	const op = "WarehouseRepository.UpsertPricingAnalyses"

	if len(analyses) == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrEmptyBatch)
	}

	batch := &pgx.Batch{}
	for _, a := range analyses {
		batch.Queue(upsertPricingQuery,
			a.ListingKey, a.AnalysisDateKey, a.CompetitorCount,
			a.AvgPrice, a.MinPrice, a.MaxPrice,
			a.MedianPrice, a.P25Price, a.P75Price,
			a.WeightedAvgPrice, a.PremiumDiscount,
			a.RecommendedLower, a.RecommendedUpper,
			a.RecommendedOptimal, a.Status.String(),
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range analyses {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

// Зерно анализа — листинг на дату: прогон следующего дня добавляет строку,
// повторный прогон того же дня обновляет её. История по дням сохраняется.
const upsertPricingQuery = `
	INSERT INTO fact_competitor_pricing_analysis (
		listing_key, analysis_date_key, competitor_count,
		avg_competitor_price, min_competitor_price, max_competitor_price,
		median_competitor_price, price_percentile_25, price_percentile_75,
		weighted_avg_price, premium_discount_pct,
		recommended_price_lower, recommended_price_upper,
		recommended_price_optimal, pricing_status
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	ON CONFLICT (listing_key, analysis_date_key) DO UPDATE SET
		competitor_count = EXCLUDED.competitor_count,
		avg_competitor_price = EXCLUDED.avg_competitor_price,
		min_competitor_price = EXCLUDED.min_competitor_price,
		max_competitor_price = EXCLUDED.max_competitor_price,
		median_competitor_price = EXCLUDED.median_competitor_price,
		price_percentile_25 = EXCLUDED.price_percentile_25,
		price_percentile_75 = EXCLUDED.price_percentile_75,
		weighted_avg_price = EXCLUDED.weighted_avg_price,
		premium_discount_pct = EXCLUDED.premium_discount_pct,
		recommended_price_lower = EXCLUDED.recommended_price_lower,
		recommended_price_upper = EXCLUDED.recommended_price_upper,
		recommended_price_optimal = EXCLUDED.recommended_price_optimal,
		pricing_status = EXCLUDED.pricing_status
`

// RefreshTopCompetitors пересобирает материализованное представление после
// перезаписи моста.
func (r *WarehouseRepository) RefreshTopCompetitors(ctx context.Context) error {
	const op = "WarehouseRepository.RefreshTopCompetitors"

	if _, err := r.db.Exec(ctx, `REFRESH MATERIALIZED VIEW view_top_competitors`); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
