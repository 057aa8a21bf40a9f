package source_repository

import (
	"context"
	"fmt"
	"log/slog"

	"listing_analytics/internal/domain"
	"listing_analytics/internal/lib/logger/sl"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SourceRepository читает нормализованную (3НФ) базу скрейпера.
// Только SELECT: источник для конвейера неприкосновенен.
type SourceRepository struct {
	db  *pgxpool.Pool
	log *slog.Logger
}

func NewSourceRepository(db *pgxpool.Pool, log *slog.Logger) *SourceRepository {
	return &SourceRepository{db: db, log: log}
}

// Hosts — все хосты источника. Битая строка логируется и пропускается,
// выгрузка измерения из-за неё не падает.
func (r *SourceRepository) Hosts(ctx context.Context) ([]domain.SourceHost, error) {
	const op = "SourceRepository.Hosts"

	query := `
		SELECT
			host_id, name, image_url, profile_url, rating,
			number_of_reviews, response_rate, response_time,
			years_hosting, languages, my_work, is_superhost
		FROM hosts
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var hosts []domain.SourceHost
	for rows.Next() {
		var h domain.SourceHost
		var isSuperhost *bool
		if err := rows.Scan(
			&h.HostID,
			&h.Name,
			&h.ImageURL,
			&h.ProfileURL,
			&h.Rating,
			&h.NumberOfReviews,
			&h.ResponseRate,
			&h.ResponseTime,
			&h.YearsHosting,
			&h.Languages,
			&h.MyWork,
			&isSuperhost,
		); err != nil {
			r.log.Warn("skipping malformed host row", sl.Err(err))
			continue
		}
		if isSuperhost != nil {
			h.IsSuperhost = *isSuperhost
		}
		hosts = append(hosts, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows error: %w", op, err)
	}

	return hosts, nil
}

// Listings — все листинги источника с координатами и сырыми метриками.
func (r *SourceRepository) Listings(ctx context.Context) ([]domain.SourceListing, error) {
	const op = "SourceRepository.Listings"

	query := `
		SELECT
			listing_id, property_id, host_id, name, listing_title,
			listing_name, url, category, description,
			city, province, country, latitude, longitude,
			price_per_night, currency, rating, number_of_reviews,
			guests, bedrooms, beds, baths, pets_allowed,
			availability, is_guest_favorite, timestamp
		FROM listings
		WHERE property_id IS NOT NULL
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var listings []domain.SourceListing
	for rows.Next() {
		var l domain.SourceListing
		if err := rows.Scan(
			&l.ListingID,
			&l.PropertyID,
			&l.HostID,
			&l.Name,
			&l.ListingTitle,
			&l.ListingName,
			&l.URL,
			&l.Category,
			&l.Description,
			&l.City,
			&l.Province,
			&l.Country,
			&l.Latitude,
			&l.Longitude,
			&l.PricePerNight,
			&l.Currency,
			&l.Rating,
			&l.NumberOfReviews,
			&l.Guests,
			&l.Bedrooms,
			&l.Beds,
			&l.Baths,
			&l.PetsAllowed,
			&l.Availability,
			&l.IsGuestFavorite,
			&l.ScrapedAt,
		); err != nil {
			r.log.Warn("skipping malformed listing row", sl.Err(err))
			continue
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows error: %w", op, err)
	}

	return listings, nil
}

// CategoryRatings разворачивает строки listing_category_ratings в одну
// широкую запись на листинг (шесть категорий по маскам имён).
func (r *SourceRepository) CategoryRatings(ctx context.Context) ([]domain.CategoryRatingSet, error) {
	const op = "SourceRepository.CategoryRatings"

	query := `
		SELECT
			listing_id,
			MAX(CASE WHEN category_name ILIKE '%clean%' THEN rating_value END) AS cleanliness,
			MAX(CASE WHEN category_name ILIKE '%accura%' THEN rating_value END) AS accuracy,
			MAX(CASE WHEN category_name ILIKE '%check%' THEN rating_value END) AS checkin,
			MAX(CASE WHEN category_name ILIKE '%commun%' THEN rating_value END) AS communication,
			MAX(CASE WHEN category_name ILIKE '%locat%' THEN rating_value END) AS location,
			MAX(CASE WHEN category_name ILIKE '%value%' THEN rating_value END) AS value
		FROM listing_category_ratings
		GROUP BY listing_id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var sets []domain.CategoryRatingSet
	for rows.Next() {
		var s domain.CategoryRatingSet
		if err := rows.Scan(
			&s.ListingID,
			&s.Cleanliness,
			&s.Accuracy,
			&s.Checkin,
			&s.Communication,
			&s.Location,
			&s.Value,
		); err != nil {
			r.log.Warn("skipping malformed rating row", sl.Err(err))
			continue
		}
		sets = append(sets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows error: %w", op, err)
	}

	return sets, nil
}

// AmenitiesByProperty — названия удобств, сгруппированные по property_id.
func (r *SourceRepository) AmenitiesByProperty(ctx context.Context) (map[string][]string, error) {
	const op = "SourceRepository.AmenitiesByProperty"

	query := `
		SELECT l.property_id, a.amenity_name
		FROM listing_amenities la
		JOIN amenities a ON la.amenity_id = a.amenity_id
		JOIN listings l ON la.listing_id = l.listing_id
		WHERE l.property_id IS NOT NULL
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	amenities := make(map[string][]string)
	for rows.Next() {
		var propertyID, name string
		if err := rows.Scan(&propertyID, &name); err != nil {
			r.log.Warn("skipping malformed amenity row", sl.Err(err))
			continue
		}
		amenities[propertyID] = append(amenities[propertyID], name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows error: %w", op, err)
	}

	return amenities, nil
}
