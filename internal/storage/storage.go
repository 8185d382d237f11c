// Package storage uploads user media to the S3-compatible buckets of the
// hosted storage service and builds their public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"agora/internal/config"
)

// Buckets
const (
	BucketAvatars        = "avatars"
	BucketPortfolioMedia = "portfolio-media"
)

// allowedTypes maps accepted content types to the stored file extension
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"video/mp4":  ".mp4",
}

// ErrUnsupportedType is returned for content types outside the allow list
var ErrUnsupportedType = errors.New("unsupported content type")

// ObjectStore is the subset of the S3 client used by Storage
type ObjectStore interface {
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucket, key string, opts minio.RemoveObjectOptions) error
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
}

// Storage uploads objects and resolves their public URLs
type Storage struct {
	client     ObjectStore
	publicBase string
	logger     *slog.Logger
}

// New connects to the S3 endpoint from cfg
func New(cfg *config.Config, logger *slog.Logger) (*Storage, error) {
	client, err := minio.New(cfg.StorageEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.StorageAccessKey, cfg.StorageSecretKey, ""),
		Secure: cfg.StorageUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return NewWithClient(client, cfg.StoragePublicURL, logger), nil
}

// NewWithClient creates a Storage from an existing client
func NewWithClient(client ObjectStore, publicBase string, logger *slog.Logger) *Storage {
	return &Storage{
		client:     client,
		publicBase: strings.TrimRight(publicBase, "/"),
		logger:     logger,
	}
}

// EnsureBuckets creates the buckets if they don't exist
func (s *Storage) EnsureBuckets(ctx context.Context) error {
	for _, bucket := range []string{BucketAvatars, BucketPortfolioMedia} {
		exists, err := s.client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("check bucket %s: %w", bucket, err)
		}
		if exists {
			continue
		}
		if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", bucket, err)
		}
		s.logger.Info("created bucket", "bucket", bucket)
	}
	return nil
}

// ObjectKey returns "<ownerID>/<uuid><ext>" for a content type
func ObjectKey(ownerID, contentType string) (string, error) {
	ext, ok := allowedTypes[normalizeType(contentType)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	return ownerID + "/" + uuid.NewString() + ext, nil
}

// IsImage reports whether contentType is an accepted image type
func IsImage(contentType string) bool {
	ct := normalizeType(contentType)
	_, ok := allowedTypes[ct]
	return ok && strings.HasPrefix(ct, "image/")
}

func normalizeType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}

// Upload stores r under a fresh key for ownerID and returns the object's public URL
func (s *Storage) Upload(ctx context.Context, bucket, ownerID string, r io.Reader, size int64, contentType string) (string, error) {
	key, err := ObjectKey(ownerID, contentType)
	if err != nil {
		return "", err
	}

	info, err := s.client.PutObject(ctx, bucket, key, r, size, minio.PutObjectOptions{
		ContentType: normalizeType(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s/%s: %w", bucket, key, err)
	}

	s.logger.Info("object uploaded",
		"bucket", bucket,
		"key", key,
		"size", info.Size,
	)
	return s.PublicURL(bucket, key), nil
}

// Remove deletes an object by its public URL. URLs outside publicBase are ignored.
func (s *Storage) Remove(ctx context.Context, publicURL string) error {
	bucket, key, ok := s.parsePublicURL(publicURL)
	if !ok {
		return nil
	}
	if err := s.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove %s/%s: %w", bucket, key, err)
	}
	return nil
}

// PublicURL returns <publicBase>/<bucket>/<key>
func (s *Storage) PublicURL(bucket, key string) string {
	return s.publicBase + "/" + path.Join(bucket, key)
}

func (s *Storage) parsePublicURL(u string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(u, s.publicBase+"/")
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || key == "" {
		return "", "", false
	}
	return bucket, key, true
}
