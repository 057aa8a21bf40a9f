package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"listing_analytics/internal/config"
	"listing_analytics/internal/domain"
	"listing_analytics/internal/lib/logger/sl"
	"listing_analytics/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// InsightStore — читающая сторона хранилища для API дашборда.
type InsightStore interface {
	ListingSummaries(ctx context.Context) ([]domain.ListingSummary, error)
	ListingSummary(ctx context.Context, propertyID string) (domain.ListingSummary, error)
	TopCompetitors(ctx context.Context, propertyID string) ([]domain.TopCompetitor, error)
	PriceRecommendation(ctx context.Context, propertyID string) (domain.PriceRecommendation, error)
}

// Server — HTTP-фасад хранилища, только чтение.
type Server struct {
	log      *slog.Logger
	insights InsightStore
	httpSrv  *http.Server
}

func New(log *slog.Logger, insights InsightStore, cfg config.HTTPConfig) *Server {
	s := &Server{log: log, insights: insights}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Timeout))

	r.Get("/health", s.handleHealth)
	r.Route("/api/listings", func(r chi.Router) {
		r.Get("/", s.handleListings)
		r.Route("/{propertyID}", func(r chi.Router) {
			r.Get("/", s.handleListing)
			r.Get("/competitors", s.handleCompetitors)
			r.Get("/pricing", s.handlePricing)
		})
	})

	handler := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(r)

	s.httpSrv = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Run блокируется до остановки сервера.
func (s *Server) Run() error {
	const op = "server.Server.Run"

	s.log.Info("http server started", slog.String("addr", s.httpSrv.Addr))
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Shutdown гасит сервер, дожидаясь активных запросов.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListings(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.insights.ListingSummaries(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]listingSummaryResponse, 0, len(summaries))
	for _, m := range summaries {
		out = append(out, newListingSummaryResponse(m))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListing(w http.ResponseWriter, r *http.Request) {
	summary, err := s.insights.ListingSummary(r.Context(), chi.URLParam(r, "propertyID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newListingSummaryResponse(summary))
}

func (s *Server) handleCompetitors(w http.ResponseWriter, r *http.Request) {
	competitors, err := s.insights.TopCompetitors(r.Context(), chi.URLParam(r, "propertyID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]competitorResponse, 0, len(competitors))
	for _, c := range competitors {
		out = append(out, newCompetitorResponse(c))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePricing(w http.ResponseWriter, r *http.Request) {
	rec, err := s.insights.PriceRecommendation(r.Context(), chi.URLParam(r, "propertyID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newPriceRecommendationResponse(rec))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("failed to encode response", sl.Err(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "listing not found"})
		return
	}
	s.log.Error("request failed",
		slog.String("path", r.URL.Path),
		sl.Err(err),
	)
	s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}
