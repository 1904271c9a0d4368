package minio

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/meisai-checker/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/meisai-checker/pkg/errors"
)

// Content types of archived artefacts.
const (
	ContentTypeJSON = "application/json; charset=utf-8"
	ContentTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	contentTypeBin  = "application/octet-stream"
)

// ArchivedObject describes one uploaded file.
type ArchivedObject struct {
	Bucket     string    `json:"bucket"`
	Key        string    `json:"key"`
	ETag       string    `json:"etag"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// ReportArchive stores the files of one review run under "<run id>/".
type ReportArchive struct {
	client *MinIOClient
	logger logging.Logger
}

// NewReportArchive returns an archive writing through client.
func NewReportArchive(client *MinIOClient, logger logging.Logger) *ReportArchive {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ReportArchive{client: client, logger: logger.Named("archive")}
}

// ObjectKey returns the key a file of a run is stored under.
func ObjectKey(runID, file string) string {
	return path.Join(runID, filepath.Base(file))
}

func contentTypeFor(file string) string {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".json":
		return ContentTypeJSON
	case ".docx":
		return ContentTypeDocx
	default:
		return contentTypeBin
	}
}

// ArchiveRun uploads files and stops at the first failure.
func (a *ReportArchive) ArchiveRun(ctx context.Context, runID string, files ...string) ([]ArchivedObject, error) {
	if runID == "" {
		return nil, errors.InvalidParam("run id is required")
	}
	out := make([]ArchivedObject, 0, len(files))
	for _, file := range files {
		obj, err := a.upload(ctx, runID, file)
		if err != nil {
			return out, err
		}
		out = append(out, *obj)
	}
	return out, nil
}

func (a *ReportArchive) upload(ctx context.Context, runID, file string) (*ArchivedObject, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageUploadFailed, "open artefact").WithDetail(file)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageUploadFailed, "stat artefact").WithDetail(file)
	}

	key := ObjectKey(runID, file)
	res, err := a.client.client.PutObject(ctx, a.client.Bucket(), key, f, info.Size(), minio.PutObjectOptions{
		ContentType:  contentTypeFor(file),
		UserMetadata: map[string]string{"run-id": runID},
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageUploadFailed, "upload artefact").WithDetail(key)
	}

	a.logger.Debug("artefact archived",
		logging.String("bucket", a.client.Bucket()),
		logging.String("key", key),
		logging.Int64("size", res.Size))
	return &ArchivedObject{
		Bucket:     a.client.Bucket(),
		Key:        key,
		ETag:       res.ETag,
		Size:       res.Size,
		UploadedAt: time.Now().UTC(),
	}, nil
}

// Exists reports whether key is present in the bucket.
func (a *ReportArchive) Exists(ctx context.Context, key string) (bool, error) {
	_, err := a.client.client.StatObject(ctx, a.client.Bucket(), key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}
	return false, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "stat object").WithDetail(key)
}

// PresignedURL returns a temporary download link for key.  A zero expiry
// selects the configured default.
func (a *ReportArchive) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		expiry = a.client.config.PresignExpiry
	}
	u, err := a.client.client.PresignedGetObject(ctx, a.client.Bucket(), key, expiry, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeExternalService, "presign object").WithDetail(key)
	}
	return u.String(), nil
}

//Personal.AI order the ending
