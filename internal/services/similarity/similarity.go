package similarity

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"

	"listing_analytics/internal/config"
	"listing_analytics/internal/domain"
	"listing_analytics/internal/lib/geo"
)

// Веса компонент итоговой схожести.
const (
	locationWeight = 0.35
	propertyWeight = 0.25
	qualityWeight  = 0.20
	amenityWeight  = 0.10
	priceWeight    = 0.10

	// neutralScore подставляется компоненте, когда у одной из сторон нет
	// данных для сравнения
	neutralScore = 50.0
)

// Score — покомпонентная схожесть пары листингов, все значения в [0, 100].
type Score struct {
	Location float64
	Property float64
	Quality  float64
	Amenity  float64
	Price    float64
	Overall  float64
}

// Engine считает попарную схожесть листингов и отбирает топ-K конкурентов
// каждому. Внешний цикл O(N²) раскладывается по воркерам; каждый воркер
// пишет только свой слот, поэтому результат не зависит от числа воркеров.
type Engine struct {
	log     *slog.Logger
	topK    int
	workers int
}

func New(log *slog.Logger, cfg config.PipelineConfig) *Engine {
	workers := cfg.SimilarityWorkers
	if workers < 1 {
		workers = 1
	}
	return &Engine{log: log, topK: cfg.TopCompetitors, workers: workers}
}

// Rank возвращает связи мост-таблицы для всех листингов: до K конкурентов
// на листинг с плотными рангами 1..K и нормированными весами.
func (e *Engine) Rank(ctx context.Context, comparables []domain.Comparable) ([]domain.CompetitorLink, error) {
	const op = "similarity.Engine.Rank"

	if len(comparables) < 2 {
		e.log.Warn("not enough listings for competitor analysis", slog.Int("listings", len(comparables)))
		return nil, nil
	}

	perListing := make([][]domain.CompetitorLink, len(comparables))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				perListing[i] = e.rankOne(comparables, i)
			}
		}()
	}

	for i := range comparables {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, fmt.Errorf("%s: %w", op, ctx.Err())
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	var links []domain.CompetitorLink
	for _, l := range perListing {
		links = append(links, l...)
	}

	return links, nil
}

// rankOne считает схожесть листинга i со всеми остальными и отбирает топ-K.
func (e *Engine) rankOne(comparables []domain.Comparable, i int) []domain.CompetitorLink {
	base := comparables[i]

	candidates := make([]domain.CompetitorLink, 0, len(comparables)-1)
	for j, other := range comparables {
		if i == j {
			continue
		}
		score := Compare(base, other)
		candidates = append(candidates, domain.CompetitorLink{
			ListingKey:         base.ListingKey,
			CompetitorKey:      other.ListingKey,
			OverallSimilarity:  score.Overall,
			LocationSimilarity: score.Location,
			PropertySimilarity: score.Property,
			QualitySimilarity:  score.Quality,
			AmenitySimilarity:  score.Amenity,
			PriceSimilarity:    score.Price,
		})
	}

	// При равной схожести порядок фиксируется меньшим ключом конкурента:
	// прогон воспроизводим байт в байт.
	sort.SliceStable(candidates, func(a, b int) bool {
		if candidates[a].OverallSimilarity != candidates[b].OverallSimilarity {
			return candidates[a].OverallSimilarity > candidates[b].OverallSimilarity
		}
		return candidates[a].CompetitorKey < candidates[b].CompetitorKey
	})

	top := candidates
	if len(top) > e.topK {
		top = top[:e.topK]
	}

	var total float64
	for _, c := range top {
		total += c.OverallSimilarity
	}
	for rank := range top {
		top[rank].Rank = rank + 1
		if total > 0 {
			top[rank].Weight = top[rank].OverallSimilarity / total
		} else {
			top[rank].Weight = 1.0 / float64(len(top))
		}
	}

	return top
}

// Compare считает покомпонентную схожесть пары. Ценовая компонента
// несимметрична: относительная разница берётся от цены базового листинга.
func Compare(a, b domain.Comparable) Score {
	s := Score{
		Location: locationSimilarity(a, b),
		Property: propertySimilarity(a, b),
		Quality:  quality(a.Rating, b.Rating),
		Amenity:  amenity(a.AmenityScore, b.AmenityScore),
		Price:    price(a.Price, b.Price),
	}
	s.Overall = s.Location*locationWeight +
		s.Property*propertyWeight +
		s.Quality*qualityWeight +
		s.Amenity*amenityWeight +
		s.Price*priceWeight
	return s
}

func locationSimilarity(a, b domain.Comparable) float64 {
	bonus := 0.0
	if a.ClusterID == b.ClusterID {
		bonus = 50
	}
	distance := geo.HaversineKm(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
	return math.Min(bonus+100*math.Exp(-distance/2), 100)
}

func propertySimilarity(a, b domain.Comparable) float64 {
	score := 0.0
	if intEqual(a.Bedrooms, b.Bedrooms) {
		score += 40
	}

	guestDiff := math.Abs(float64(intOrZero(a.GuestsCapacity) - intOrZero(b.GuestsCapacity)))
	if guestDiff <= 2 {
		score += 30
	} else {
		score += math.Max(0, 30-guestDiff*5)
	}

	bedBathDiff := math.Abs(float64(intOrZero(a.Beds)-intOrZero(b.Beds))) +
		math.Abs(floatOrZero(a.Baths)-floatOrZero(b.Baths))
	score += math.Max(0, 30-bedBathDiff*5)

	return score
}

func quality(a, b *float64) float64 {
	if a == nil || *a == 0 || b == nil || *b == 0 {
		return neutralScore
	}
	return math.Max(0, 100-math.Abs(*a-*b)*20)
}

func amenity(a, b *float64) float64 {
	if a == nil || *a == 0 || b == nil || *b == 0 {
		return neutralScore
	}
	return math.Max(0, 100-math.Abs(*a-*b)*2)
}

func price(a, b *float64) float64 {
	if a == nil || *a <= 0 || b == nil || *b == 0 {
		return neutralScore
	}
	diffPct := math.Abs(*a-*b) / *a * 100
	return math.Max(0, 100-diffPct*2)
}

func intEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
