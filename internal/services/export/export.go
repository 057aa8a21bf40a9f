package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"listing_analytics/internal/domain"
	"listing_analytics/internal/lib/minio/core"
)

// InsightStore — читающая сторона хранилища для выгрузок.
type InsightStore interface {
	ListingSummaries(ctx context.Context) ([]domain.ListingSummary, error)
	AllTopCompetitors(ctx context.Context) ([]domain.TopCompetitor, error)
	PriceRecommendations(ctx context.Context) ([]domain.PriceRecommendation, error)
}

// Service выгружает представления хранилища в CSV. При включенном MinIO
// файлы дополнительно уходят в бакет, локальные копии остаются.
type Service struct {
	log       *slog.Logger
	insights  InsightStore
	storage   core.Client
	outputDir string
}

func New(log *slog.Logger, insights InsightStore, storage core.Client, outputDir string) *Service {
	return &Service{log: log, insights: insights, storage: storage, outputDir: outputDir}
}

// Run пишет все выгрузки и возвращает пути созданных файлов.
func (s *Service) Run(ctx context.Context) ([]string, error) {
	const op = "export.Service.Run"

	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var files []string

	summaryPath, err := s.exportListingSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	files = append(files, summaryPath)

	competitorsPath, err := s.exportTopCompetitors(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	files = append(files, competitorsPath)

	recsPath, err := s.exportPriceRecommendations(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	files = append(files, recsPath)

	if s.storage.IsEnabled() {
		prefix := time.Now().Format("2006-01-02")
		for _, f := range files {
			object := prefix + "/" + filepath.Base(f)
			if _, err := s.storage.UploadFile(ctx, f, object); err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
		}
	}

	return files, nil
}

func (s *Service) exportListingSummaries(ctx context.Context) (string, error) {
	summaries, err := s.insights.ListingSummaries(ctx)
	if err != nil {
		return "", err
	}

	header := []string{
		"property_id", "listing_name", "host_name", "host_tier",
		"city", "location_tier", "property_size_tier", "bedrooms",
		"price_per_night", "currency", "rating", "number_of_reviews",
		"quality_tier", "amenity_tier", "amenity_score",
		"competitiveness_score", "snapshot_date",
	}

	rows := make([][]string, 0, len(summaries))
	for _, m := range summaries {
		rows = append(rows, []string{
			m.PropertyID,
			strOrEmpty(m.ListingName),
			strOrEmpty(m.HostName),
			strOrEmpty(m.HostTier),
			strOrEmpty(m.City),
			strOrEmpty(m.LocationTier),
			strOrEmpty(m.SizeTier),
			intOrEmpty(m.Bedrooms),
			floatOrEmpty(m.PricePerNight),
			strOrEmpty(m.Currency),
			floatOrEmpty(m.Rating),
			intOrEmpty(m.NumberOfReviews),
			strOrEmpty(m.QualityTier),
			strOrEmpty(m.AmenityTier),
			intOrEmpty(m.AmenityScore),
			floatOrEmpty(m.CompetitivenessScore),
			m.SnapshotDate.Format("2006-01-02"),
		})
	}

	return s.writeCSV("listing_summary.csv", header, rows)
}

func (s *Service) exportTopCompetitors(ctx context.Context) (string, error) {
	competitors, err := s.insights.AllTopCompetitors(ctx)
	if err != nil {
		return "", err
	}

	header := []string{
		"property_id", "competitor_property_id", "competitor_name",
		"competitor_rank", "overall_similarity", "location_similarity",
		"property_similarity", "quality_similarity", "amenity_similarity",
		"price_similarity", "competitor_weight", "competitor_price",
		"competitor_rating",
	}

	rows := make([][]string, 0, len(competitors))
	for _, c := range competitors {
		rows = append(rows, []string{
			c.PropertyID,
			c.CompetitorPropertyID,
			strOrEmpty(c.CompetitorName),
			strconv.Itoa(c.Rank),
			formatFloat(c.OverallSimilarity),
			formatFloat(c.LocationSimilarity),
			formatFloat(c.PropertySimilarity),
			formatFloat(c.QualitySimilarity),
			formatFloat(c.AmenitySimilarity),
			formatFloat(c.PriceSimilarity),
			formatFloat(c.Weight),
			floatOrEmpty(c.CompetitorPrice),
			floatOrEmpty(c.CompetitorRating),
		})
	}

	return s.writeCSV("top_competitors.csv", header, rows)
}

func (s *Service) exportPriceRecommendations(ctx context.Context) (string, error) {
	recs, err := s.insights.PriceRecommendations(ctx)
	if err != nil {
		return "", err
	}

	header := []string{
		"property_id", "listing_name", "current_price", "listing_rating",
		"number_of_reviews", "competitor_count", "avg_competitor_price",
		"median_competitor_price", "weighted_avg_price",
		"price_percentile_25", "price_percentile_75",
		"recommended_price_optimal", "recommended_price_lower",
		"recommended_price_upper", "premium_discount_pct",
		"price_difference", "pricing_status", "bedrooms", "location_tier",
		"analysis_date",
	}

	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []string{
			r.PropertyID,
			strOrEmpty(r.ListingName),
			floatOrEmpty(r.CurrentPrice),
			floatOrEmpty(r.ListingRating),
			intOrEmpty(r.NumberOfReviews),
			strconv.Itoa(r.CompetitorCount),
			floatOrEmpty(r.AvgCompetitorPrice),
			floatOrEmpty(r.MedianPrice),
			floatOrEmpty(r.WeightedAvgPrice),
			floatOrEmpty(r.P25Price),
			floatOrEmpty(r.P75Price),
			floatOrEmpty(r.RecommendedOptimal),
			floatOrEmpty(r.RecommendedLower),
			floatOrEmpty(r.RecommendedUpper),
			floatOrEmpty(r.PremiumDiscount),
			floatOrEmpty(r.PriceDifference),
			r.Status.String(),
			intOrEmpty(r.Bedrooms),
			strOrEmpty(r.LocationTier),
			r.AnalysisDate.Format("2006-01-02"),
		})
	}

	return s.writeCSV("price_recommendations.csv", header, rows)
}

func (s *Service) writeCSV(name string, header []string, rows [][]string) (string, error) {
	path := filepath.Join(s.outputDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return "", err
	}
	if err := w.WriteAll(rows); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	s.log.Info("export written", slog.String("file", path), slog.Int("rows", len(rows)))

	return path, nil
}

func strOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func intOrEmpty(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func floatOrEmpty(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
