package domain

import "time"

// Сырые строки нормализованной (3НФ) базы. Источник считается заранее
// загруженным и консистентным по внешним ключам — здесь только чтение.

// SourceHost — строка таблицы hosts источника.
type SourceHost struct {
	HostID          string
	Name            *string
	ImageURL        *string
	ProfileURL      *string
	Rating          *float64
	NumberOfReviews *int
	ResponseRate    *string
	ResponseTime    *string
	YearsHosting    *int
	Languages       *string
	MyWork          *string
	IsSuperhost     bool
}

// SourceListing — строка таблицы listings источника.
type SourceListing struct {
	ListingID       int64
	PropertyID      string
	HostID          *string
	Name            *string
	ListingTitle    *string
	ListingName     *string
	URL             *string
	Category        *string
	Description     *string
	City            *string
	Province        *string
	Country         *string
	Latitude        *float64
	Longitude       *float64
	PricePerNight   *float64
	Currency        *string
	Rating          *float64
	NumberOfReviews *int
	Guests          *int
	Bedrooms        *int
	Beds            *int
	Baths           *float64
	PetsAllowed     *bool
	Availability    *bool
	IsGuestFavorite *bool
	ScrapedAt       *time.Time
}

// CategoryRatingSet — шесть категорийных оценок листинга, развёрнутых из
// строк listing_category_ratings в одну широкую запись.
type CategoryRatingSet struct {
	ListingID     int64
	Cleanliness   *float64
	Accuracy      *float64
	Checkin       *float64
	Communication *float64
	Location      *float64
	Value         *float64
}
