package services

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"tenantconsole-backend/shared/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// ReportArchive stores generated setup reports and returns their object key.
type ReportArchive interface {
	Store(ctx context.Context, tenantID string, report []byte) (string, error)
}

// MinIOReportArchive keeps setup reports in a MinIO bucket.
type MinIOReportArchive struct {
	client     *minio.Client
	bucketName string
	log        *zap.Logger
}

func NewMinIOReportArchive(ctx context.Context, cfg *config.Config, log *zap.Logger) (*MinIOReportArchive, error) {
	parsedURL, err := url.Parse(cfg.MinIOServerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid MinIO endpoint: %w", err)
	}
	endpoint := parsedURL.Host
	if endpoint == "" {
		endpoint = cfg.MinIOServerURL
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIORootUser, cfg.MinIORootPassword, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	archive := &MinIOReportArchive{
		client:     client,
		bucketName: cfg.MinIOBucketName,
		log:        log.Named("report_archive"),
	}
	if err := archive.initializeBucket(ctx); err != nil {
		return nil, err
	}
	return archive, nil
}

func (a *MinIOReportArchive) initializeBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		a.log.Info("report bucket ready", zap.String("bucket", a.bucketName))
		return nil
	}

	if err := a.client.MakeBucket(ctx, a.bucketName, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	a.log.Info("report bucket created", zap.String("bucket", a.bucketName))
	return nil
}

// ReportObjectKey returns where the report of tenantID generated at t is stored.
func ReportObjectKey(tenantID string, t time.Time) string {
	return fmt.Sprintf("setup-reports/%s/%s.json", tenantID, t.UTC().Format("20060102T150405Z"))
}

func (a *MinIOReportArchive) Store(ctx context.Context, tenantID string, report []byte) (string, error) {
	key := ReportObjectKey(tenantID, time.Now())
	_, err := a.client.PutObject(ctx, a.bucketName, key, bytes.NewReader(report), int64(len(report)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report: %w", err)
	}
	return key, nil
}
