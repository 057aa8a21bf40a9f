package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"listing_analytics/internal/config"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Client — объектное хранилище для выгрузок хранилища данных.
type Client interface {
	// UploadFile кладёт локальный файл в бакет и возвращает имя объекта.
	UploadFile(ctx context.Context, localPath, objectName string) (string, error)
	// IsEnabled проверяет, включен ли сервис.
	IsEnabled() bool
}

type client struct {
	mc     *minio.Client
	bucket string
	log    *slog.Logger
}

type disabledClient struct{}

func (disabledClient) UploadFile(context.Context, string, string) (string, error) {
	return "", fmt.Errorf("minio is disabled")
}

func (disabledClient) IsEnabled() bool { return false }

// NewClient подключается к MinIO и гарантирует существование бакета.
// При выключенном сервисе возвращает заглушку: вызывающий код проверяет
// IsEnabled и не зависит от наличия MinIO в окружении.
func NewClient(ctx context.Context, cfg config.MinioConfig, log *slog.Logger) (Client, error) {
	const op = "minio.NewClient"

	if !cfg.Enabled {
		log.Info("minio disabled, exports stay on local disk")
		return disabledClient{}, nil
	}

	mc, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioRootUser, cfg.MinioRootPassword, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := mc.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("%s: check bucket: %w", op, err)
	}
	if !exists {
		if err := mc.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("%s: create bucket: %w", op, err)
		}
		log.Info("minio bucket created", slog.String("bucket", cfg.BucketName))
	}

	return &client{mc: mc, bucket: cfg.BucketName, log: log}, nil
}

func (c *client) UploadFile(ctx context.Context, localPath, objectName string) (string, error) {
	const op = "minio.Client.UploadFile"

	info, err := os.Stat(localPath)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	contentType := "application/octet-stream"
	if filepath.Ext(localPath) == ".csv" {
		contentType = "text/csv"
	}

	_, err = c.mc.FPutObject(ctx, c.bucket, objectName, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	c.log.Info("export uploaded",
		slog.String("object", objectName),
		slog.Int64("size_bytes", info.Size()),
	)

	return objectName, nil
}

func (c *client) IsEnabled() bool { return true }
