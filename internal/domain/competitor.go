package domain

// Comparable — атрибуты листинга, по которым считается схожесть с
// конкурентами. Собирается из уже загруженного факта и измерений.
type Comparable struct {
	ListingKey     int64
	PropertyID     string
	Price          *float64
	Rating         *float64
	Bedrooms       *int
	Beds           *int
	Baths          *float64
	GuestsCapacity *int
	Latitude       float64
	Longitude      float64
	ClusterID      int
	QualityScore   *float64
	AmenityScore   *float64
}

// CompetitorLink — строка bridge_listing_competitors: конкурент с рангом,
// покомпонентными оценками схожести и нормированным весом.
type CompetitorLink struct {
	ListingKey    int64
	CompetitorKey int64
	// Rank — плотная последовательность 1..K без пропусков
	Rank                int
	OverallSimilarity   float64
	LocationSimilarity  float64
	PropertySimilarity  float64
	QualitySimilarity   float64
	AmenitySimilarity   float64
	PriceSimilarity     float64
	// Weight — доля схожести конкурента в сумме топ-K; сумма весов по
	// листингу равна 1 (или веса равны 1/K при нулевой сумме)
	Weight float64
}

// CompetitorPrice — цена конкурента с весом для взвешенного среднего.
type CompetitorPrice struct {
	ListingKey int64
	Price      *float64
	Weight     float64
}
