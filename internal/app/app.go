package app

import (
	"context"
	"fmt"

	"listing_analytics/internal/config"
	minio "listing_analytics/internal/lib/minio/core"
	"listing_analytics/internal/repository/insight_repository"
	"listing_analytics/internal/repository/source_repository"
	"listing_analytics/internal/repository/warehouse_repository"
	"listing_analytics/internal/server"
	"listing_analytics/internal/services/dimension"
	"listing_analytics/internal/services/export"
	"listing_analytics/internal/services/fact"
	"listing_analytics/internal/services/pipeline"
	"listing_analytics/internal/services/pricing"
	"listing_analytics/internal/services/similarity"

	"github.com/jackc/pgx/v5/pgxpool"

	"log/slog"
)

// App собирает зависимости: два пула (источник и хранилище), репозитории,
// сервисы конвейера, HTTP-фасад и экспорт.
type App struct {
	Pipeline *pipeline.Orchestrator
	Server   *server.Server
	Export   *export.Service

	sourcePool *pgxpool.Pool
	targetPool *pgxpool.Pool
}

func New(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	const op = "app.New"

	sourcePool, err := pgxpool.New(ctx, cfg.SourceDatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: source pool: %w", op, err)
	}

	targetPool, err := pgxpool.New(ctx, cfg.TargetDatabaseURL)
	if err != nil {
		sourcePool.Close()
		return nil, fmt.Errorf("%s: target pool: %w", op, err)
	}

	minioClient, err := minio.NewClient(ctx, cfg.Minio, log)
	if err != nil {
		sourcePool.Close()
		targetPool.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sourceRepository := source_repository.NewSourceRepository(sourcePool, log)
	warehouseRepository := warehouse_repository.NewWarehouseRepository(targetPool, log)
	insightRepository := insight_repository.NewInsightRepository(targetPool, log)

	dimensionService := dimension.New(log, sourceRepository, warehouseRepository, cfg.Pipeline)
	factService := fact.New(log, sourceRepository, warehouseRepository)
	similarityEngine := similarity.New(log, cfg.Pipeline)
	pricingService := pricing.New(log, warehouseRepository)

	orchestrator := pipeline.New(
		log,
		sourceRepository,
		warehouseRepository,
		dimensionService,
		factService,
		similarityEngine,
		pricingService,
	)

	return &App{
		Pipeline:   orchestrator,
		Server:     server.New(log, insightRepository, cfg.HTTP),
		Export:     export.New(log, insightRepository, minioClient, cfg.Export.OutputDir),
		sourcePool: sourcePool,
		targetPool: targetPool,
	}, nil
}

// Close отдаёт соединения обоих пулов.
func (a *App) Close() {
	a.sourcePool.Close()
	a.targetPool.Close()
}
