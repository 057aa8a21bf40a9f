package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env string `env:"ENV" env-default:"local"`
	// SourceDatabaseURL — нормализованная (3НФ) база со свежими данными скрейпера
	SourceDatabaseURL string `env:"SOURCE_DATABASE_URL" env-required:"true"`
	// TargetDatabaseURL — измерительная (star schema) база, единственная цель записи
	TargetDatabaseURL string `env:"TARGET_DATABASE_URL" env-required:"true"`
	HTTP              HTTPConfig
	Minio             MinioConfig
	Pipeline          PipelineConfig
	Export            ExportConfig
}

type HTTPConfig struct {
	Port    int           `env:"HTTP_PORT" env-default:"8080"`
	Timeout time.Duration `env:"HTTP_TIMEOUT" env-default:"30s"`
}

type MinioConfig struct {
	Enabled           bool   `env:"MINIO_ENABLE" env-default:"false"`
	MinioEndpoint     string `env:"MINIO_ENDPOINT"`
	BucketName        string `env:"MINIO_BUCKET" env-default:"warehouse-exports"`
	MinioRootUser     string `env:"MINIO_USER"`
	MinioRootPassword string `env:"MINIO_PASSWORD"`
	MinioUseSSL       bool   `env:"MINIO_USE_SSL"`
}

// PipelineConfig — настройки измерительного ETL-конвейера.
type PipelineConfig struct {
	// TopCompetitors — размер топ-K конкурентов на листинг
	TopCompetitors int `env:"PIPELINE_TOP_COMPETITORS" env-default:"25"`
	// MaxClusters — верхняя граница числа гео-кластеров (k = min(MaxClusters, N))
	MaxClusters int `env:"PIPELINE_MAX_CLUSTERS" env-default:"10"`
	// ClusterSeed — фиксированный seed k-means для воспроизводимости
	ClusterSeed int64 `env:"PIPELINE_CLUSTER_SEED" env-default:"42"`
	// ClusterRestarts — число рестартов k-means с разной инициализацией
	ClusterRestarts int `env:"PIPELINE_CLUSTER_RESTARTS" env-default:"10"`
	// SimilarityWorkers — воркеры внешнего цикла O(N²); 1 = последовательно
	SimilarityWorkers int `env:"PIPELINE_SIMILARITY_WORKERS" env-default:"4"`
	// DowntownLat / DowntownLong — референсная точка для distance_to_downtown_km
	DowntownLat  float64 `env:"PIPELINE_DOWNTOWN_LAT" env-default:"51.0447"`
	DowntownLong float64 `env:"PIPELINE_DOWNTOWN_LONG" env-default:"-114.0719"`
}

type ExportConfig struct {
	OutputDir string `env:"EXPORT_OUTPUT_DIR" env-default:"database_export"`
}

func MustLoad() *Config {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		panic("cannot read config from environment: " + err.Error())
	}
	return &cfg
}
