// Package geo — чистые функции геометрии и tier-классификаторов измерений.
// Ничего не знает о БД: принимает значения, возвращает строки уровней.
package geo

import "math"

const earthRadiusKm = 6371.0

// HostTier — уровень хоста.
type HostTier string

const (
	HostTierElite    HostTier = "Elite"
	HostTierPremium  HostTier = "Premium"
	HostTierStandard HostTier = "Standard"
)

// ExperienceLevel — стаж хоста.
type ExperienceLevel string

const (
	ExperienceExpert      ExperienceLevel = "Expert"
	ExperienceExperienced ExperienceLevel = "Experienced"
	ExperienceNew         ExperienceLevel = "New"
)

// SizeTier — размер объекта по числу спален.
type SizeTier string

const (
	SizeTierStudio SizeTier = "Studio"
	SizeTierSmall  SizeTier = "Small"
	SizeTierMedium SizeTier = "Medium"
	SizeTierLarge  SizeTier = "Large"
)

// LocationTier — удалённость от даунтауна.
type LocationTier string

const (
	LocationUrbanCore        LocationTier = "Urban Core"
	LocationDowntownAdjacent LocationTier = "Downtown Adjacent"
	LocationNeighborhood     LocationTier = "Neighborhood"
	LocationSuburban         LocationTier = "Suburban"
)

// QualityTier — уровень качества по сводной оценке.
type QualityTier string

const (
	QualityExceptional QualityTier = "Exceptional"
	QualityExcellent   QualityTier = "Excellent"
	QualityGood        QualityTier = "Good"
	QualityFair        QualityTier = "Fair"
)

// AmenityTier — уровень оснащённости.
type AmenityTier string

const (
	AmenityLuxury   AmenityTier = "Luxury"
	AmenityPremium  AmenityTier = "Premium"
	AmenityStandard AmenityTier = "Standard"
	AmenityBasic    AmenityTier = "Basic"
)

func (t HostTier) String() string        { return string(t) }
func (e ExperienceLevel) String() string { return string(e) }
func (t SizeTier) String() string        { return string(t) }
func (t LocationTier) String() string    { return string(t) }
func (t QualityTier) String() string     { return string(t) }
func (t AmenityTier) String() string     { return string(t) }

// HaversineKm возвращает расстояние по дуге большого круга в километрах.
// Симметрична и равна нулю для совпадающих точек.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// ClassifyHostTier: Elite требует и суперхоста, и рейтинг строго выше 4.8.
// Без рейтинга хост всегда Standard.
func ClassifyHostTier(isSuperhost bool, rating *float64) HostTier {
	if rating == nil {
		return HostTierStandard
	}
	switch {
	case isSuperhost && *rating > 4.8:
		return HostTierElite
	case *rating > 4.5:
		return HostTierPremium
	default:
		return HostTierStandard
	}
}

// ClassifyExperienceLevel: до 2 лет включительно (или неизвестно) — New.
func ClassifyExperienceLevel(yearsHosting *int) ExperienceLevel {
	switch {
	case yearsHosting == nil || *yearsHosting <= 2:
		return ExperienceNew
	case *yearsHosting <= 5:
		return ExperienceExperienced
	default:
		return ExperienceExpert
	}
}

// ClassifyPropertySizeTier: 0 или неизвестное число спален — Studio.
func ClassifyPropertySizeTier(bedrooms *int) SizeTier {
	switch {
	case bedrooms == nil || *bedrooms == 0:
		return SizeTierStudio
	case *bedrooms == 1:
		return SizeTierSmall
	case *bedrooms == 2 || *bedrooms == 3:
		return SizeTierMedium
	default:
		return SizeTierLarge
	}
}

// ClassifyLocationTier по расстоянию до даунтауна в км.
func ClassifyLocationTier(distanceKm float64) LocationTier {
	switch {
	case distanceKm < 1:
		return LocationUrbanCore
	case distanceKm < 3:
		return LocationDowntownAdjacent
	case distanceKm < 7:
		return LocationNeighborhood
	default:
		return LocationSuburban
	}
}

// ClassifyQualityTier: границы строгие, ровно 4.8 — это ещё Excellent.
func ClassifyQualityTier(overallQualityScore *float64) QualityTier {
	if overallQualityScore == nil {
		return QualityFair
	}
	switch {
	case *overallQualityScore > 4.8:
		return QualityExceptional
	case *overallQualityScore > 4.5:
		return QualityExcellent
	case *overallQualityScore > 4.0:
		return QualityGood
	default:
		return QualityFair
	}
}

// ClassifyAmenityTier по сводному баллу оснащённости.
func ClassifyAmenityTier(amenityScore int) AmenityTier {
	switch {
	case amenityScore > 50:
		return AmenityLuxury
	case amenityScore > 30:
		return AmenityPremium
	case amenityScore > 15:
		return AmenityStandard
	default:
		return AmenityBasic
	}
}
