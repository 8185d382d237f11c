package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
)

type fakeObjects struct {
	puts    map[string]string // bucket/key -> content type
	removed []string
	buckets map[string]bool
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{puts: map[string]string{}, buckets: map[string]bool{BucketAvatars: true}}
}

func (f *fakeObjects) PutObject(_ context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	data, _ := io.ReadAll(r)
	f.puts[bucket+"/"+key] = opts.ContentType
	return minio.UploadInfo{Bucket: bucket, Key: key, Size: int64(len(data))}, nil
}

func (f *fakeObjects) RemoveObject(_ context.Context, bucket, key string, _ minio.RemoveObjectOptions) error {
	f.removed = append(f.removed, bucket+"/"+key)
	return nil
}

func (f *fakeObjects) BucketExists(_ context.Context, bucket string) (bool, error) {
	return f.buckets[bucket], nil
}

func (f *fakeObjects) MakeBucket(_ context.Context, bucket string, _ minio.MakeBucketOptions) error {
	f.buckets[bucket] = true
	return nil
}

const base = "https://proj.supabase.co/storage/v1/object/public"

func newTestStorage(f *fakeObjects) *Storage {
	return NewWithClient(f, base+"/", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestUpload(t *testing.T) {
	f := newFakeObjects()
	s := newTestStorage(f)

	url, err := s.Upload(context.Background(), BucketAvatars, "user-1", bytes.NewReader([]byte("img")), 3, "image/png; charset=binary")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	prefix := base + "/avatars/user-1/"
	if !strings.HasPrefix(url, prefix) || !strings.HasSuffix(url, ".png") {
		t.Errorf("unexpected URL %s", url)
	}
	key := strings.TrimPrefix(url, base+"/")
	if ct := f.puts[key]; ct != "image/png" {
		t.Errorf("stored content type = %q, want image/png", ct)
	}
}

func TestUpload_UnsupportedType(t *testing.T) {
	s := newTestStorage(newFakeObjects())

	_, err := s.Upload(context.Background(), BucketAvatars, "u", strings.NewReader("x"), 1, "application/x-msdownload")
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestRemove(t *testing.T) {
	f := newFakeObjects()
	s := newTestStorage(f)

	if err := s.Remove(context.Background(), base+"/portfolio-media/u/abc.jpg"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := s.Remove(context.Background(), "https://elsewhere.example/x.jpg"); err != nil {
		t.Fatalf("Remove of foreign URL failed: %v", err)
	}

	if len(f.removed) != 1 || f.removed[0] != "portfolio-media/u/abc.jpg" {
		t.Errorf("removed = %v", f.removed)
	}
}

func TestEnsureBuckets(t *testing.T) {
	f := newFakeObjects()
	s := newTestStorage(f)

	if err := s.EnsureBuckets(context.Background()); err != nil {
		t.Fatalf("EnsureBuckets failed: %v", err)
	}
	if !f.buckets[BucketPortfolioMedia] {
		t.Error("portfolio-media bucket not created")
	}
}

func TestIsImage(t *testing.T) {
	tests := map[string]bool{
		"image/png":                true,
		"IMAGE/JPEG":               true,
		"image/webp; charset=bin":  true,
		"video/mp4":                false,
		"image/svg+xml":            false,
		"application/octet-stream": false,
	}
	for ct, want := range tests {
		if got := IsImage(ct); got != want {
			t.Errorf("IsImage(%q) = %v, want %v", ct, got, want)
		}
	}
}
