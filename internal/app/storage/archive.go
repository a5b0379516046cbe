// Package storage archives finished transcripts to S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"whisper-bridge/internal/config"
)

// Archiver stores the envelope JSON of a run.
type Archiver interface {
	Archive(ctx context.Context, runID string, envelopeJSON []byte) (string, error)
}

// Noop discards everything. Used when MINIO_ENDPOINT is unset.
type Noop struct{}

func (Noop) Archive(ctx context.Context, runID string, envelopeJSON []byte) (string, error) {
	return "", nil
}

// ObjectKey is transcripts/<yyyy>/<mm>/<runID>.json in UTC.
func ObjectKey(runID string, at time.Time) string {
	at = at.UTC()
	return fmt.Sprintf("transcripts/%04d/%02d/%s.json", at.Year(), int(at.Month()), runID)
}

type objectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64,
		opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// MinioArchiver writes to a single bucket.
type MinioArchiver struct {
	client objectPutter
	bucket string
	now    func() time.Time
	logger *zap.Logger
}

// NewMinioArchiver creates the client and makes sure the bucket exists.
func NewMinioArchiver(ctx context.Context, s config.MinIOSettings, logger *zap.Logger) (*MinioArchiver, error) {
	client, err := minio.New(s.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(s.AccessKey, s.SecretKey, ""),
		Secure: s.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, s.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, s.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Info("Created bucket", zap.String("bucket", s.Bucket))
	}

	return newMinioArchiver(client, s.Bucket, logger), nil
}

func newMinioArchiver(client objectPutter, bucket string, logger *zap.Logger) *MinioArchiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MinioArchiver{client: client, bucket: bucket, now: time.Now, logger: logger}
}

// Archive uploads the JSON and returns the object key.
func (a *MinioArchiver) Archive(ctx context.Context, runID string, envelopeJSON []byte) (string, error) {
	key := ObjectKey(runID, a.now())
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(envelopeJSON), int64(len(envelopeJSON)),
		minio.PutObjectOptions{
			ContentType:  "application/json",
			UserMetadata: map[string]string{"run-id": runID},
		})
	if err != nil {
		return "", fmt.Errorf("failed to upload transcript to MinIO: %w", err)
	}
	a.logger.Debug("Transcript archived", zap.String("bucket", a.bucket), zap.String("key", key))
	return key, nil
}
