// Package minio archives review artefacts (JSON reports and fixed copies)
// in an S3-compatible object store.
package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/turtacn/meisai-checker/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/meisai-checker/pkg/errors"
)

// MinIOAPI is the subset of *minio.Client the archive uses.
type MinIOAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error)
}

// MinIOConfig holds connection parameters.
type MinIOConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	Region        string
	Bucket        string
	PresignExpiry time.Duration
}

func applyDefaults(cfg *MinIOConfig) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.Bucket == "" {
		cfg.Bucket = "meisai-reports"
	}
	if cfg.PresignExpiry == 0 {
		cfg.PresignExpiry = time.Hour
	}
}

// MinIOClient wraps a MinIOAPI bound to one bucket.
type MinIOClient struct {
	client MinIOAPI
	config MinIOConfig
	logger logging.Logger
}

// NewMinIOClient connects to cfg.Endpoint and makes sure the bucket exists.
func NewMinIOClient(ctx context.Context, cfg MinIOConfig, log logging.Logger) (*MinIOClient, error) {
	applyDefaults(&cfg)
	if cfg.Endpoint == "" {
		return nil, errors.InvalidParam("minio endpoint is required")
	}

	api, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageUploadFailed, "failed to create minio client")
	}
	return NewMinIOClientWithAPI(ctx, api, cfg, log)
}

// NewMinIOClientWithAPI builds a client around an existing API value.
func NewMinIOClientWithAPI(ctx context.Context, api MinIOAPI, cfg MinIOConfig, log logging.Logger) (*MinIOClient, error) {
	applyDefaults(&cfg)
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &MinIOClient{client: api, config: cfg, logger: log.Named("minio")}
	if err := c.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	c.logger.Info("MinIO archive ready",
		logging.String("endpoint", cfg.Endpoint),
		logging.String("bucket", cfg.Bucket),
		logging.Bool("ssl", cfg.UseSSL))
	return c, nil
}

// EnsureBucket creates the configured bucket when it is missing.
func (c *MinIOClient) EnsureBucket(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.config.Bucket)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to check bucket existence").WithDetail(c.config.Bucket)
	}
	if exists {
		return nil
	}
	if err := c.client.MakeBucket(ctx, c.config.Bucket, minio.MakeBucketOptions{Region: c.config.Region}); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageUploadFailed, fmt.Sprintf("failed to create bucket %s", c.config.Bucket))
	}
	c.logger.Info("Created bucket", logging.String("bucket", c.config.Bucket))
	return nil
}

// Bucket returns the archive bucket name.
func (c *MinIOClient) Bucket() string {
	return c.config.Bucket
}

// HealthStatus is the result of HealthCheck.
type HealthStatus struct {
	Healthy bool
	Latency time.Duration
	Error   string
}

// HealthCheck verifies that the bucket is reachable.
func (c *MinIOClient) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	start := time.Now()
	exists, err := c.client.BucketExists(ctx, c.config.Bucket)
	status := &HealthStatus{Healthy: err == nil && exists, Latency: time.Since(start)}
	switch {
	case err != nil:
		status.Error = err.Error()
		return status, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "minio health check failed")
	case !exists:
		status.Error = fmt.Sprintf("bucket %s missing", c.config.Bucket)
	}
	return status, nil
}

//Personal.AI order the ending
