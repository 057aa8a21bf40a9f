package dimension

import (
	"context"
	"fmt"
	"log/slog"

	"listing_analytics/internal/config"
	"listing_analytics/internal/domain"
	"listing_analytics/internal/lib/cluster"
	"listing_analytics/internal/lib/geo"
	"listing_analytics/internal/lib/metrics"

	"github.com/samber/lo"
)

// SourceStore — чтение нормализованной базы.
type SourceStore interface {
	Hosts(ctx context.Context) ([]domain.SourceHost, error)
	CategoryRatings(ctx context.Context) ([]domain.CategoryRatingSet, error)
}

// WarehouseStore — загрузка измерений с возвратом суррогатных ключей.
type WarehouseStore interface {
	UpsertHosts(ctx context.Context, hosts []domain.Host) (domain.HostKeyMap, error)
	UpsertProperties(ctx context.Context, properties []domain.Property) (domain.PropertyKeyMap, error)
	UpsertLocations(ctx context.Context, locations []domain.Location) (domain.LocationKeyMap, error)
	UpsertCategoryRatings(ctx context.Context, ratings []domain.CategoryRatings) (domain.RatingKeyMap, error)
}

// Service строит и грузит четыре измерения звёздной схемы. Ключевые карты
// возвращаются явно: фаза фактов получает их параметрами.
type Service struct {
	log       *slog.Logger
	source    SourceStore
	warehouse WarehouseStore
	cfg       config.PipelineConfig
}

func New(log *slog.Logger, source SourceStore, warehouse WarehouseStore, cfg config.PipelineConfig) *Service {
	return &Service{log: log, source: source, warehouse: warehouse, cfg: cfg}
}

// Веса категорий для overall_quality_score. При частично заполненных
// категориях веса перенормируются на непустое подмножество.
var qualityWeights = []float64{0.25, 0.15, 0.10, 0.15, 0.15, 0.20}

// LoadHosts читает хостов источника, классифицирует уровни и грузит dim_host.
func (s *Service) LoadHosts(ctx context.Context, rm *metrics.RunMetrics) (domain.HostKeyMap, error) {
	const op = "dimension.Service.LoadHosts"

	hosts, err := s.source.Hosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(hosts) == 0 {
		s.log.Warn("no hosts in source database")
		return domain.HostKeyMap{}, nil
	}

	rows := lo.Map(hosts, func(h domain.SourceHost, _ int) domain.Host {
		return BuildHost(h)
	})

	keys, err := s.warehouse.UpsertHosts(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rm.AddLoaded(metrics.PhaseHosts, len(keys))
	s.log.Info("dim_host loaded", slog.Int("rows", len(keys)))

	return keys, nil
}

// LoadProperties дедуплицирует листинги по property_id и грузит dim_property.
func (s *Service) LoadProperties(ctx context.Context, listings []domain.SourceListing, rm *metrics.RunMetrics) (domain.PropertyKeyMap, error) {
	const op = "dimension.Service.LoadProperties"

	unique := lo.UniqBy(listings, func(l domain.SourceListing) string {
		return l.PropertyID
	})
	rm.AddSkipped(metrics.PhaseProperties, len(listings)-len(unique))

	if len(unique) == 0 {
		s.log.Warn("no listings in source database")
		return domain.PropertyKeyMap{}, nil
	}

	rows := lo.Map(unique, func(l domain.SourceListing, _ int) domain.Property {
		return BuildProperty(l)
	})

	keys, err := s.warehouse.UpsertProperties(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rm.AddLoaded(metrics.PhaseProperties, len(keys))
	s.log.Info("dim_property loaded", slog.Int("rows", len(keys)))

	return keys, nil
}

// LoadLocations собирает уникальные координаты, кластеризует их k-means,
// считает удалённость от даунтауна и грузит dim_location.
func (s *Service) LoadLocations(ctx context.Context, listings []domain.SourceListing, rm *metrics.RunMetrics) (domain.LocationKeyMap, error) {
	const op = "dimension.Service.LoadLocations"

	locations := s.BuildLocations(listings)
	if len(locations) == 0 {
		s.log.Warn("no listings with coordinates in source database")
		return domain.LocationKeyMap{}, nil
	}

	keys, err := s.warehouse.UpsertLocations(ctx, locations)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rm.AddLoaded(metrics.PhaseLocations, len(keys))
	s.log.Info("dim_location loaded",
		slog.Int("rows", len(keys)),
		slog.Int("clusters", countClusters(locations)),
	)

	return keys, nil
}

// LoadCategoryRatings разворачивает категорийные оценки, считает сводную
// оценку качества и грузит dim_category_ratings.
func (s *Service) LoadCategoryRatings(ctx context.Context, rm *metrics.RunMetrics) (domain.RatingKeyMap, error) {
	const op = "dimension.Service.LoadCategoryRatings"

	sets, err := s.source.CategoryRatings(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(sets) == 0 {
		s.log.Warn("no category ratings in source database")
		return domain.RatingKeyMap{}, nil
	}

	rows := lo.Map(sets, func(set domain.CategoryRatingSet, _ int) domain.CategoryRatings {
		return BuildCategoryRatings(set)
	})

	keys, err := s.warehouse.UpsertCategoryRatings(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rm.AddLoaded(metrics.PhaseCategoryRatings, len(keys))
	s.log.Info("dim_category_ratings loaded", slog.Int("rows", len(keys)))

	return keys, nil
}

// BuildHost классифицирует уровень и стаж хоста.
func BuildHost(src domain.SourceHost) domain.Host {
	return domain.Host{
		HostID:          src.HostID,
		Name:            src.Name,
		Rating:          src.Rating,
		NumberOfReviews: src.NumberOfReviews,
		ResponseRate:    src.ResponseRate,
		ResponseTime:    src.ResponseTime,
		YearsHosting:    src.YearsHosting,
		Languages:       src.Languages,
		MyWork:          src.MyWork,
		ImageURL:        src.ImageURL,
		ProfileURL:      src.ProfileURL,
		IsSuperhost:     src.IsSuperhost,
		Tier:            geo.ClassifyHostTier(src.IsSuperhost, src.Rating),
		Experience:      geo.ClassifyExperienceLevel(src.YearsHosting),
	}
}

// BuildProperty считает производные атрибуты объекта. Оба отношения
// определены только при известном ненулевом числе спален.
func BuildProperty(src domain.SourceListing) domain.Property {
	p := domain.Property{
		PropertyID:      src.PropertyID,
		Name:            src.Name,
		ListingName:     src.ListingName,
		ListingTitle:    src.ListingTitle,
		Category:        src.Category,
		URL:             src.URL,
		Description:     src.Description,
		GuestsCapacity:  src.Guests,
		Bedrooms:        src.Bedrooms,
		Beds:            src.Beds,
		Baths:           src.Baths,
		PetsAllowed:     src.PetsAllowed,
		IsGuestFavorite: src.IsGuestFavorite,
		SizeTier:        geo.ClassifyPropertySizeTier(src.Bedrooms),
	}

	if src.Bedrooms != nil && *src.Bedrooms > 0 {
		if src.Guests != nil {
			ratio := float64(*src.Guests) / float64(*src.Bedrooms)
			p.GuestPerBedroomRatio = &ratio
		}
		if src.Baths != nil {
			ratio := *src.Baths / float64(*src.Bedrooms)
			p.BathToBedroomRatio = &ratio
		}
	}

	return p
}

// BuildLocations дедуплицирует координаты листингов (после квантования),
// назначает кластеры и уровни удалённости.
func (s *Service) BuildLocations(listings []domain.SourceListing) []domain.Location {
	var locations []domain.Location
	seen := make(map[domain.CoordKey]struct{})

	for _, l := range listings {
		if l.Latitude == nil || l.Longitude == nil {
			continue
		}
		key := domain.NewCoordKey(*l.Latitude, *l.Longitude)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		distance := geo.HaversineKm(key.Lat, key.Long, s.cfg.DowntownLat, s.cfg.DowntownLong)
		locations = append(locations, domain.Location{
			City:                 l.City,
			Province:             l.Province,
			Country:              l.Country,
			Latitude:             key.Lat,
			Longitude:            key.Long,
			DistanceToDowntownKm: distance,
			Tier:                 geo.ClassifyLocationTier(distance),
		})
	}

	points := lo.Map(locations, func(l domain.Location, _ int) cluster.Point {
		return cluster.Point{Lat: l.Latitude, Long: l.Longitude}
	})
	assignments := cluster.Assign(points, s.cfg.MaxClusters, s.cfg.ClusterSeed, s.cfg.ClusterRestarts)
	for i := range locations {
		locations[i].ClusterID = assignments[i]
	}

	return locations
}

// BuildCategoryRatings считает взвешенную сводную оценку качества по
// заполненным категориям и индекс соотношения цена/качество.
func BuildCategoryRatings(set domain.CategoryRatingSet) domain.CategoryRatings {
	row := domain.CategoryRatings{
		ListingID:     set.ListingID,
		Cleanliness:   set.Cleanliness,
		Accuracy:      set.Accuracy,
		Checkin:       set.Checkin,
		Communication: set.Communication,
		Location:      set.Location,
		Value:         set.Value,
	}

	categories := []*float64{
		set.Cleanliness, set.Accuracy, set.Checkin,
		set.Communication, set.Location, set.Value,
	}

	var weightedSum, totalWeight float64
	for i, c := range categories {
		if c == nil {
			continue
		}
		weightedSum += *c * qualityWeights[i]
		totalWeight += qualityWeights[i]
	}
	if totalWeight > 0 {
		overall := weightedSum / totalWeight
		row.OverallQualityScore = &overall
		if set.Value != nil && *set.Value > 0 && overall > 0 {
			index := *set.Value / overall
			row.ValueIndex = &index
		}
	}
	row.QualityTier = geo.ClassifyQualityTier(row.OverallQualityScore)

	return row
}

func countClusters(locations []domain.Location) int {
	ids := lo.UniqBy(locations, func(l domain.Location) int { return l.ClusterID })
	return len(ids)
}
