package domain

import (
	"math"

	"listing_analytics/internal/lib/geo"
)

// Ключевые карты измерений: натуральный ключ → суррогатный ключ.
// Возвращаются загрузчиками явно и передаются дальше параметрами,
// никакого глобального состояния между фазами.
type (
	HostKeyMap     map[string]int64
	PropertyKeyMap map[string]int64
	LocationKeyMap map[CoordKey]int64
	RatingKeyMap   map[int64]int64
)

// CoordKey — натуральный ключ dim_location. Координаты квантуются до шести
// знаков (~0.1 м): повторные скрейпы одного объекта с плавающим хвостом
// не должны порождать дубли локаций.
type CoordKey struct {
	Lat  float64
	Long float64
}

// NewCoordKey квантует координаты и возвращает ключ локации.
func NewCoordKey(lat, long float64) CoordKey {
	return CoordKey{Lat: quantizeCoord(lat), Long: quantizeCoord(long)}
}

func quantizeCoord(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// Host — строка dim_host с производными атрибутами.
type Host struct {
	Key             int64
	HostID          string
	Name            *string
	Rating          *float64
	NumberOfReviews *int
	ResponseRate    *string
	ResponseTime    *string
	YearsHosting    *int
	Languages       *string
	MyWork          *string
	ImageURL        *string
	ProfileURL      *string
	IsSuperhost     bool
	Tier            geo.HostTier
	Experience      geo.ExperienceLevel
}

// Property — строка dim_property с производными атрибутами.
type Property struct {
	Key             int64
	PropertyID      string
	Name            *string
	ListingName     *string
	ListingTitle    *string
	Category        *string
	URL             *string
	Description     *string
	GuestsCapacity  *int
	Bedrooms        *int
	Beds            *int
	Baths           *float64
	PetsAllowed     *bool
	IsGuestFavorite *bool
	SizeTier        geo.SizeTier
	// GuestPerBedroomRatio / BathToBedroomRatio — nil при нулевых или
	// неизвестных спальнях, никогда не ноль и не бесконечность
	GuestPerBedroomRatio *float64
	BathToBedroomRatio   *float64
}

// Location — строка dim_location: квантованные координаты, кластер и
// удалённость от даунтауна.
type Location struct {
	Key                  int64
	City                 *string
	Province             *string
	Country              *string
	Latitude             float64
	Longitude            float64
	ClusterID            int
	DistanceToDowntownKm float64
	Tier                 geo.LocationTier
}

// CoordKey — натуральный ключ строки локации.
func (l Location) CoordKey() CoordKey {
	return NewCoordKey(l.Latitude, l.Longitude)
}

// CategoryRatings — строка dim_category_ratings с производными атрибутами.
type CategoryRatings struct {
	Key           int64
	ListingID     int64
	Cleanliness   *float64
	Accuracy      *float64
	Checkin       *float64
	Communication *float64
	Location      *float64
	Value         *float64
	// OverallQualityScore — взвешенное среднее только по заполненным
	// категориям, веса перенормируются на непустое подмножество
	OverallQualityScore *float64
	QualityTier         geo.QualityTier
	ValueIndex          *float64
}
