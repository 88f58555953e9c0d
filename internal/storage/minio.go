// Package storage archives evicted résumé versions to MinIO.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/resumefire/backend/go-services/internal/resume"
)

const archivePrefix = "archive"

// ObjectStore is the subset of the MinIO client the archive uses.
type ObjectStore interface {
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// MinIOArchive writes documents that left the version store as JSON objects
// under archive/<owner>/<versionId>.json. Nothing reads them back through
// the store.
type MinIOArchive struct {
	client ObjectStore
	bucket string
}

func NewMinIOArchive(client ObjectStore, bucket string) *MinIOArchive {
	return &MinIOArchive{client: client, bucket: bucket}
}

// NewMinIOArchiveFromConfig connects to MinIO and ensures the bucket exists.
func NewMinIOArchiveFromConfig(ctx context.Context, cfg *MinIOConfig) (*MinIOArchive, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
		exist, xerr := mc.BucketExists(ctx, cfg.Bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return NewMinIOArchive(mc, cfg.Bucket), nil
}

// ObjectKey is where doc is archived.
func ObjectKey(userID, versionID string) string {
	return path.Join(archivePrefix, userID, versionID+".json")
}

// Archive uploads each document. It stops at the first failure.
func (a *MinIOArchive) Archive(ctx context.Context, userID string, docs []resume.Document) error {
	for _, d := range docs {
		b, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("encode %s: %w", d.VersionID, err)
		}
		key := ObjectKey(userID, d.VersionID)
		_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(b), int64(len(b)), minio.PutObjectOptions{ContentType: "application/json"})
		if err != nil {
			return fmt.Errorf("put %s: %w", key, err)
		}
	}
	return nil
}
