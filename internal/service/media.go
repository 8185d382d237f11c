package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"agora/internal/config"
	"agora/internal/domain"
	"agora/internal/domain/services"
	"agora/internal/storage"
)

// MediaStore uploads files to public buckets
type MediaStore interface {
	Upload(ctx context.Context, bucket, ownerID string, r io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, publicURL string) error
}

// uploadMedia checks size and type, then stores the file under ownerID.
// A nil store means storage is not configured.
func uploadMedia(ctx context.Context, store MediaStore, bucket, ownerID string, upload services.Upload, imagesOnly bool) (string, error) {
	if store == nil {
		return "", fmt.Errorf("%w: media storage is not configured", domain.ErrUnavailable)
	}
	if upload.Size <= 0 {
		return "", &domain.ValidationError{Message: "file is empty"}
	}
	if upload.Size > config.MaxUploadBytes {
		return "", &domain.ValidationError{Message: fmt.Sprintf("file exceeds %d bytes", config.MaxUploadBytes)}
	}
	if imagesOnly && !storage.IsImage(upload.ContentType) {
		return "", &domain.ValidationError{Message: "file must be an image"}
	}

	url, err := store.Upload(ctx, bucket, ownerID, upload.Reader, upload.Size, upload.ContentType)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) {
			return "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		return "", err
	}
	return url, nil
}

// removeMedia deletes an object; failures only leave an orphaned file behind.
func removeMedia(ctx context.Context, store MediaStore, url string, logger *slog.Logger) {
	if store == nil || url == "" {
		return
	}
	if err := store.Remove(ctx, url); err != nil {
		logger.Warn("media cleanup failed", "url", url, "error", err)
	}
}
