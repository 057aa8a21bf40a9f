package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"listing_analytics/internal/domain"
	"listing_analytics/internal/lib/metrics"
	"listing_analytics/internal/services/fact"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// SourceStore — чтение листингов источника (остальное читают сами фазы).
type SourceStore interface {
	Listings(ctx context.Context) ([]domain.SourceListing, error)
}

// WarehouseStore — операции хранилища, которыми управляет сам оркестратор.
type WarehouseStore interface {
	EnsureSchema(ctx context.Context) error
	Comparables(ctx context.Context) ([]domain.Comparable, error)
	ReplaceCompetitorBridge(ctx context.Context, links []domain.CompetitorLink) error
	RefreshTopCompetitors(ctx context.Context) error
}

// DimensionLoader — фаза измерений.
type DimensionLoader interface {
	LoadHosts(ctx context.Context, rm *metrics.RunMetrics) (domain.HostKeyMap, error)
	LoadProperties(ctx context.Context, listings []domain.SourceListing, rm *metrics.RunMetrics) (domain.PropertyKeyMap, error)
	LoadLocations(ctx context.Context, listings []domain.SourceListing, rm *metrics.RunMetrics) (domain.LocationKeyMap, error)
	LoadCategoryRatings(ctx context.Context, rm *metrics.RunMetrics) (domain.RatingKeyMap, error)
}

// FactLoader — фаза фактов.
type FactLoader interface {
	LoadListingMetrics(ctx context.Context, listings []domain.SourceListing, keys fact.KeySet, rm *metrics.RunMetrics) (map[string]int64, error)
	LoadAmenitySummaries(ctx context.Context, listingKeys map[string]int64, rm *metrics.RunMetrics) error
}

// CompetitorRanker — движок схожести.
type CompetitorRanker interface {
	Rank(ctx context.Context, comparables []domain.Comparable) ([]domain.CompetitorLink, error)
}

// PricingAnalyzer — фаза ценового анализа.
type PricingAnalyzer interface {
	Analyze(ctx context.Context, comparables []domain.Comparable, links []domain.CompetitorLink, rm *metrics.RunMetrics) error
}

// Orchestrator прогоняет конвейер: измерения → факты → конкуренты → цены.
// Порядок фаз жёсткий, каждая фаза получает ключи предыдущей параметрами.
type Orchestrator struct {
	log        *slog.Logger
	source     SourceStore
	warehouse  WarehouseStore
	dimensions DimensionLoader
	facts      FactLoader
	ranker     CompetitorRanker
	pricing    PricingAnalyzer
}

func New(
	log *slog.Logger,
	source SourceStore,
	warehouse WarehouseStore,
	dimensions DimensionLoader,
	facts FactLoader,
	ranker CompetitorRanker,
	pricing PricingAnalyzer,
) *Orchestrator {
	return &Orchestrator{
		log:        log,
		source:     source,
		warehouse:  warehouse,
		dimensions: dimensions,
		facts:      facts,
		ranker:     ranker,
		pricing:    pricing,
	}
}

// Run выполняет полный прогон конвейера и возвращает счётчики. Ошибка любой
// фазы останавливает прогон: последующие фазы зависят от её результата.
func (o *Orchestrator) Run(ctx context.Context) (*metrics.RunMetrics, error) {
	const op = "pipeline.Orchestrator.Run"

	runID := uuid.NewString()
	log := o.log.With(slog.String("run_id", runID))
	rm := metrics.NewRunMetrics()

	log.Info("pipeline started")

	if err := o.warehouse.EnsureSchema(ctx); err != nil {
		return rm, fmt.Errorf("%s: %w", op, err)
	}

	listings, err := o.source.Listings(ctx)
	if err != nil {
		return rm, fmt.Errorf("%s: %w", op, err)
	}
	log.Info("source extracted", slog.Int("listings", len(listings)))

	hostKeys, err := o.dimensions.LoadHosts(ctx, rm)
	if err != nil {
		return rm, fmt.Errorf("%s: %w", op, err)
	}
	propertyKeys, err := o.dimensions.LoadProperties(ctx, listings, rm)
	if err != nil {
		return rm, fmt.Errorf("%s: %w", op, err)
	}
	locationKeys, err := o.dimensions.LoadLocations(ctx, listings, rm)
	if err != nil {
		return rm, fmt.Errorf("%s: %w", op, err)
	}
	ratingKeys, err := o.dimensions.LoadCategoryRatings(ctx, rm)
	if err != nil {
		return rm, fmt.Errorf("%s: %w", op, err)
	}

	listingKeys, err := o.facts.LoadListingMetrics(ctx, listings, fact.KeySet{
		Hosts:      hostKeys,
		Properties: propertyKeys,
		Locations:  locationKeys,
		Ratings:    ratingKeys,
	}, rm)
	if err != nil {
		return rm, fmt.Errorf("%s: %w", op, err)
	}

	if err := o.facts.LoadAmenitySummaries(ctx, listingKeys, rm); err != nil {
		return rm, fmt.Errorf("%s: %w", op, err)
	}

	comparables, err := o.warehouse.Comparables(ctx)
	if err != nil {
		return rm, fmt.Errorf("%s: %w", op, err)
	}

	links, err := o.ranker.Rank(ctx, comparables)
	if err != nil {
		return rm, fmt.Errorf("%s: %w", op, err)
	}
	if err := o.warehouse.ReplaceCompetitorBridge(ctx, links); err != nil {
		return rm, fmt.Errorf("%s: %w", op, err)
	}
	rm.AddLoaded(metrics.PhaseCompetitors, len(links))
	log.Info("bridge_listing_competitors loaded", slog.Int("rows", len(links)))

	if err := o.pricing.Analyze(ctx, comparables, links, rm); err != nil {
		return rm, fmt.Errorf("%s: %w", op, err)
	}

	if err := o.warehouse.RefreshTopCompetitors(ctx); err != nil {
		return rm, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("pipeline finished", slog.Duration("elapsed", rm.Elapsed()))

	return rm, nil
}

// PrintSummary печатает итоговую таблицу прогона в терминал.
func PrintSummary(rm *metrics.RunMetrics) {
	color.New(color.Bold).Println("Pipeline run summary")
	for _, s := range rm.Snapshot() {
		line := fmt.Sprintf("%-36s loaded %6d", s.Phase, s.Loaded)
		if s.Skipped > 0 {
			line += color.YellowString("  skipped %d", s.Skipped)
		}
		color.Green(line)
	}
	fmt.Printf("elapsed: %s\n", rm.Elapsed().Round(time.Millisecond))
}
