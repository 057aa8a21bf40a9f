package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"listing_analytics/internal/config"
	"listing_analytics/internal/domain"
	"listing_analytics/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInsights struct{}

func (fakeInsights) ListingSummaries(context.Context) ([]domain.ListingSummary, error) {
	return []domain.ListingSummary{{PropertyID: "p1"}, {PropertyID: "p2"}}, nil
}

func (fakeInsights) ListingSummary(_ context.Context, propertyID string) (domain.ListingSummary, error) {
	if propertyID != "p1" {
		return domain.ListingSummary{}, fmt.Errorf("lookup: %w", repository.ErrNotFound)
	}
	price := 150.0
	return domain.ListingSummary{
		PropertyID:    "p1",
		PricePerNight: &price,
		SnapshotDate:  time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
	}, nil
}

func (fakeInsights) TopCompetitors(_ context.Context, propertyID string) ([]domain.TopCompetitor, error) {
	return []domain.TopCompetitor{
		{PropertyID: propertyID, CompetitorPropertyID: "p2", Rank: 1, OverallSimilarity: 87.5, Weight: 1},
	}, nil
}

func (fakeInsights) PriceRecommendation(_ context.Context, propertyID string) (domain.PriceRecommendation, error) {
	if propertyID != "p1" {
		return domain.PriceRecommendation{}, fmt.Errorf("lookup: %w", repository.ErrNotFound)
	}
	return domain.PriceRecommendation{
		PropertyID:      "p1",
		CompetitorCount: 25,
		Status:          domain.PricingStatusOverpriced,
		AnalysisDate:    time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
	}, nil
}

func testServer() *Server {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(log, fakeInsights{}, config.HTTPConfig{Port: 0, Timeout: 5 * time.Second})
}

func doRequest(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	testServer().httpSrv.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := doRequest(t, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListings(t *testing.T) {
	rec := doRequest(t, "/api/listings")
	require.Equal(t, http.StatusOK, rec.Code)

	var out []listingSummaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Len(t, out, 2)
}

func TestListing_Found(t *testing.T) {
	rec := doRequest(t, "/api/listings/p1")
	require.Equal(t, http.StatusOK, rec.Code)

	var out listingSummaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "p1", out.PropertyID)
	assert.Equal(t, "2026-08-31", out.SnapshotDate)
}

func TestListing_NotFound(t *testing.T) {
	rec := doRequest(t, "/api/listings/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCompetitors(t *testing.T) {
	rec := doRequest(t, "/api/listings/p1/competitors")
	require.Equal(t, http.StatusOK, rec.Code)

	var out []competitorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].Rank)
	assert.Equal(t, "p2", out[0].CompetitorPropertyID)
}

func TestPricing(t *testing.T) {
	rec := doRequest(t, "/api/listings/p1/pricing")
	require.Equal(t, http.StatusOK, rec.Code)

	var out priceRecommendationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "OVERPRICED", out.Status)
	assert.Equal(t, 25, out.CompetitorCount)
}
