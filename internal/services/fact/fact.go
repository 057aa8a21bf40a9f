package fact

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"listing_analytics/internal/domain"
	"listing_analytics/internal/lib/geo"
	"listing_analytics/internal/lib/metrics"

	"github.com/samber/lo"
)

// Классификация удобств: совпадение по подстроке, чтобы "Free parking on
// premises" считался за "Free parking". Регистр значим.
var (
	essentialAmenities = []string{
		"Wifi", "Kitchen", "Free parking", "Air conditioning",
		"Heating", "Washer", "Dryer", "Dedicated workspace",
	}
	luxuryAmenities = []string{
		"Pool", "Hot tub", "Gym", "EV charger", "Sauna",
		"BBQ grill", "Outdoor furniture", "Patio or balcony",
	}
	safetyAmenities = []string{
		"Smoke alarm", "Carbon monoxide alarm", "First aid kit",
		"Fire extinguisher", "Security cameras",
	}
)

// SourceStore — чтение удобств из нормализованной базы.
type SourceStore interface {
	AmenitiesByProperty(ctx context.Context) (map[string][]string, error)
}

// WarehouseStore — загрузка фактов.
type WarehouseStore interface {
	InsertListingMetrics(ctx context.Context, rows []domain.ListingMetrics) (map[string]int64, error)
	UpsertAmenitySummaries(ctx context.Context, rows []domain.AmenitySummary) error
}

// Service строит и грузит центральный факт и сводку удобств.
type Service struct {
	log       *slog.Logger
	source    SourceStore
	warehouse WarehouseStore
	now       func() time.Time
}

func New(log *slog.Logger, source SourceStore, warehouse WarehouseStore) *Service {
	return &Service{log: log, source: source, warehouse: warehouse, now: time.Now}
}

// KeySet — суррогатные ключи измерений, собранные фазой измерений.
type KeySet struct {
	Hosts      domain.HostKeyMap
	Properties domain.PropertyKeyMap
	Locations  domain.LocationKeyMap
	Ratings    domain.RatingKeyMap
}

// LoadListingMetrics грузит fact_listing_metrics и возвращает карту
// property_id → listing_key. Листинг без хоста, объекта или локации в факт
// не попадает и считается пропущенным; отсутствие категорийных оценок факту
// не мешает.
func (s *Service) LoadListingMetrics(ctx context.Context, listings []domain.SourceListing, keys KeySet, rm *metrics.RunMetrics) (map[string]int64, error) {
	const op = "fact.Service.LoadListingMetrics"

	unique := lo.UniqBy(listings, func(l domain.SourceListing) string {
		return l.PropertyID
	})
	rm.AddSkipped(metrics.PhaseListingMetrics, len(listings)-len(unique))

	now := s.now()
	var rows []domain.ListingMetrics
	for _, l := range unique {
		m, ok := s.buildListingMetrics(l, keys, now)
		if !ok {
			rm.AddSkipped(metrics.PhaseListingMetrics, 1)
			continue
		}
		rows = append(rows, m)
	}

	if len(rows) == 0 {
		s.log.Warn("no listings resolved all mandatory dimension keys")
		return map[string]int64{}, nil
	}

	listingKeys, err := s.warehouse.InsertListingMetrics(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rm.AddLoaded(metrics.PhaseListingMetrics, len(listingKeys))
	s.log.Info("fact_listing_metrics loaded",
		slog.Int("rows", len(listingKeys)),
		slog.Int64("skipped", rm.Skipped(metrics.PhaseListingMetrics)),
	)

	return listingKeys, nil
}

func (s *Service) buildListingMetrics(l domain.SourceListing, keys KeySet, now time.Time) (domain.ListingMetrics, bool) {
	hostKey, ok := resolveHostKey(l, keys.Hosts)
	if !ok {
		s.log.Debug("listing has no resolvable host", slog.String("property_id", l.PropertyID))
		return domain.ListingMetrics{}, false
	}

	propertyKey, ok := keys.Properties[l.PropertyID]
	if !ok {
		return domain.ListingMetrics{}, false
	}

	if l.Latitude == nil || l.Longitude == nil {
		return domain.ListingMetrics{}, false
	}
	locationKey, ok := keys.Locations[domain.NewCoordKey(*l.Latitude, *l.Longitude)]
	if !ok {
		return domain.ListingMetrics{}, false
	}

	m := domain.ListingMetrics{
		PropertyID:      l.PropertyID,
		HostKey:         hostKey,
		PropertyKey:     propertyKey,
		LocationKey:     locationKey,
		DateKey:         dateKey(now),
		PricePerNight:   l.PricePerNight,
		Currency:        "CAD",
		Rating:          l.Rating,
		NumberOfReviews: l.NumberOfReviews,
		IsAvailable:     l.Availability,
		ScrapedAt:       l.ScrapedAt,
		SnapshotDate:    now.Truncate(24 * time.Hour),
	}
	if l.Currency != nil && *l.Currency != "" {
		m.Currency = *l.Currency
	}
	if rk, ok := keys.Ratings[l.ListingID]; ok {
		m.RatingKey = &rk
	}

	m.PricePerGuest = perUnitPrice(l.PricePerNight, l.Guests)
	m.PricePerBedroom = perUnitPrice(l.PricePerNight, l.Bedrooms)
	m.PricePerBed = perUnitPrice(l.PricePerNight, l.Beds)
	m.ReviewVelocity = reviewVelocity(l.NumberOfReviews, l.ScrapedAt, now)
	m.CompetitivenessScore = competitivenessScore(l.Rating, l.NumberOfReviews, l.IsGuestFavorite)
	m.ValueScore = valueScore(l.Rating, l.PricePerNight)
	m.PopularityIndex = popularityIndex(l.Rating, l.NumberOfReviews)

	return m, true
}

// LoadAmenitySummaries агрегирует удобства по листингам и грузит
// fact_listing_amenities_summary. Листинги без строки в центральном факте
// пропускаются: сводка ссылается на listing_key.
func (s *Service) LoadAmenitySummaries(ctx context.Context, listingKeys map[string]int64, rm *metrics.RunMetrics) error {
	const op = "fact.Service.LoadAmenitySummaries"

	amenities, err := s.source.AmenitiesByProperty(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if len(amenities) == 0 {
		s.log.Warn("no amenities in source database")
		return nil
	}

	var rows []domain.AmenitySummary
	for propertyID, names := range amenities {
		listingKey, ok := listingKeys[propertyID]
		if !ok {
			rm.AddSkipped(metrics.PhaseAmenitySummary, 1)
			continue
		}
		summary := BuildAmenitySummary(names)
		summary.ListingKey = listingKey
		rows = append(rows, summary)
	}

	if len(rows) == 0 {
		return nil
	}

	if err := s.warehouse.UpsertAmenitySummaries(ctx, rows); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rm.AddLoaded(metrics.PhaseAmenitySummary, len(rows))
	s.log.Info("fact_listing_amenities_summary loaded", slog.Int("rows", len(rows)))

	return nil
}

// BuildAmenitySummary классифицирует удобства и считает взвешенный балл:
// essential ×2, luxury ×3, safety ×1.
func BuildAmenitySummary(names []string) domain.AmenitySummary {
	summary := domain.AmenitySummary{TotalCount: len(names)}
	for _, name := range names {
		if matchesAny(name, essentialAmenities) {
			summary.EssentialCount++
		}
		if matchesAny(name, luxuryAmenities) {
			summary.LuxuryCount++
		}
		if matchesAny(name, safetyAmenities) {
			summary.SafetyCount++
		}
	}
	summary.Score = summary.EssentialCount*2 + summary.LuxuryCount*3 + summary.SafetyCount
	summary.Tier = geo.ClassifyAmenityTier(summary.Score)
	return summary
}

func matchesAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(name, p) {
			return true
		}
	}
	return false
}

func resolveHostKey(l domain.SourceListing, hosts domain.HostKeyMap) (int64, bool) {
	if l.HostID == nil {
		return 0, false
	}
	key, ok := hosts[*l.HostID]
	return key, ok
}

func dateKey(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

func perUnitPrice(price *float64, units *int) *float64 {
	if price == nil || *price <= 0 || units == nil || *units <= 0 {
		return nil
	}
	v := *price / float64(*units)
	return &v
}

// reviewVelocity — отзывы в день с момента снятия листинга. Без временной
// метки скорость неизвестна; листинг моложе суток получает ноль.
func reviewVelocity(reviews *int, scrapedAt *time.Time, now time.Time) *float64 {
	if scrapedAt == nil {
		return nil
	}
	days := int(now.Sub(*scrapedAt).Hours() / 24)
	v := 0.0
	if days > 0 {
		n := 0
		if reviews != nil {
			n = *reviews
		}
		v = float64(n) / float64(days)
	}
	return &v
}

// competitivenessScore — упрощённая сумма с потолками компонент: рейтинг
// даёт до 30, объём отзывов до 25 (насыщение на 100 отзывах), фаворит 10.
// Шкала ~0–65, к 100 не нормируется.
func competitivenessScore(rating *float64, reviews *int, isFavorite *bool) float64 {
	score := 0.0
	if rating != nil && *rating > 0 {
		score += *rating / 5.0 * 30
	}
	if reviews != nil && *reviews > 0 {
		score += math.Min(float64(*reviews)/100, 1.0) * 25
	}
	if isFavorite != nil && *isFavorite {
		score += 10
	}
	return score
}

func valueScore(rating, price *float64) *float64 {
	if rating == nil || *rating <= 0 || price == nil || *price <= 0 {
		return nil
	}
	v := (*rating / 5.0) / (*price / 200) * 100
	v = math.Min(v, 100)
	return &v
}

func popularityIndex(rating *float64, reviews *int) *float64 {
	if rating == nil || *rating <= 0 || reviews == nil || *reviews <= 0 {
		return nil
	}
	v := float64(*reviews) * *rating / 10
	return &v
}
