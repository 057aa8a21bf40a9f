package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptrF(v float64) *float64 { return &v }
func ptrI(v int) *int         { return &v }

func TestHaversineKm_IdenticalPoints(t *testing.T) {
	points := [][2]float64{
		{0, 0},
		{51.0447, -114.0719},
		{-33.8688, 151.2093},
	}
	for _, p := range points {
		assert.Zero(t, HaversineKm(p[0], p[1], p[0], p[1]))
	}
}

func TestHaversineKm_Symmetric(t *testing.T) {
	d1 := HaversineKm(51.0447, -114.0719, 51.0486, -114.0708)
	d2 := HaversineKm(51.0486, -114.0708, 51.0447, -114.0719)
	assert.InDelta(t, d1, d2, 1e-12)
}

func TestHaversineKm_KnownDistance(t *testing.T) {
	// Калгари → Эдмонтон, ~280 км по прямой
	d := HaversineKm(51.0447, -114.0719, 53.5461, -113.4938)
	assert.InDelta(t, 281, d, 5)
}

func TestHaversineKm_OneDegreeLatitude(t *testing.T) {
	// Один градус широты ≈ 111.19 км независимо от долготы
	d := HaversineKm(10, 20, 11, 20)
	assert.InDelta(t, 2*math.Pi*earthRadiusKm/360, d, 0.01)
}

func TestClassifyHostTier(t *testing.T) {
	tests := []struct {
		name        string
		isSuperhost bool
		rating      *float64
		want        HostTier
	}{
		{"нет рейтинга", true, nil, HostTierStandard},
		{"суперхост выше 4.8", true, ptrF(4.9), HostTierElite},
		{"ровно 4.8 — граница строгая", true, ptrF(4.8), HostTierPremium},
		{"не суперхост с высоким рейтингом", false, ptrF(4.9), HostTierPremium},
		{"ровно 4.5", false, ptrF(4.5), HostTierStandard},
		{"низкий рейтинг", true, ptrF(3.2), HostTierStandard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyHostTier(tt.isSuperhost, tt.rating))
		})
	}
}

func TestClassifyExperienceLevel(t *testing.T) {
	assert.Equal(t, ExperienceNew, ClassifyExperienceLevel(nil))
	assert.Equal(t, ExperienceNew, ClassifyExperienceLevel(ptrI(2)))
	assert.Equal(t, ExperienceExperienced, ClassifyExperienceLevel(ptrI(3)))
	assert.Equal(t, ExperienceExperienced, ClassifyExperienceLevel(ptrI(5)))
	assert.Equal(t, ExperienceExpert, ClassifyExperienceLevel(ptrI(6)))
}

func TestClassifyPropertySizeTier(t *testing.T) {
	assert.Equal(t, SizeTierStudio, ClassifyPropertySizeTier(nil))
	assert.Equal(t, SizeTierStudio, ClassifyPropertySizeTier(ptrI(0)))
	assert.Equal(t, SizeTierSmall, ClassifyPropertySizeTier(ptrI(1)))
	assert.Equal(t, SizeTierMedium, ClassifyPropertySizeTier(ptrI(2)))
	assert.Equal(t, SizeTierMedium, ClassifyPropertySizeTier(ptrI(3)))
	assert.Equal(t, SizeTierLarge, ClassifyPropertySizeTier(ptrI(4)))
}

func TestClassifyLocationTier(t *testing.T) {
	assert.Equal(t, LocationUrbanCore, ClassifyLocationTier(0))
	assert.Equal(t, LocationUrbanCore, ClassifyLocationTier(0.99))
	assert.Equal(t, LocationDowntownAdjacent, ClassifyLocationTier(1))
	assert.Equal(t, LocationNeighborhood, ClassifyLocationTier(3))
	assert.Equal(t, LocationSuburban, ClassifyLocationTier(7))
	assert.Equal(t, LocationSuburban, ClassifyLocationTier(50))
}

func TestClassifyQualityTier_Boundaries(t *testing.T) {
	assert.Equal(t, QualityFair, ClassifyQualityTier(nil))
	assert.Equal(t, QualityExceptional, ClassifyQualityTier(ptrF(4.81)))
	assert.Equal(t, QualityExcellent, ClassifyQualityTier(ptrF(4.80)))
	assert.Equal(t, QualityExcellent, ClassifyQualityTier(ptrF(4.51)))
	assert.Equal(t, QualityGood, ClassifyQualityTier(ptrF(4.5)))
	assert.Equal(t, QualityFair, ClassifyQualityTier(ptrF(4.0)))
}

func TestClassifyAmenityTier(t *testing.T) {
	assert.Equal(t, AmenityLuxury, ClassifyAmenityTier(51))
	assert.Equal(t, AmenityPremium, ClassifyAmenityTier(50))
	assert.Equal(t, AmenityPremium, ClassifyAmenityTier(31))
	assert.Equal(t, AmenityStandard, ClassifyAmenityTier(30))
	assert.Equal(t, AmenityStandard, ClassifyAmenityTier(16))
	assert.Equal(t, AmenityBasic, ClassifyAmenityTier(15))
	assert.Equal(t, AmenityBasic, ClassifyAmenityTier(0))
}
