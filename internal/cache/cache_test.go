package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func setupTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	c, err := NewRedisCache("redis://"+s.Addr(), "test:", time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("failed to create redis cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c, s
}

func TestNewRedisCache_BadURL(t *testing.T) {
	if _, err := NewRedisCache("not-a-url", "", time.Minute, slog.Default()); err == nil {
		t.Error("expected error for invalid URL")
	}
}

func TestSetGet(t *testing.T) {
	c, s := setupTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", payload{Name: "a", Count: 2}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !s.Exists("test:k") {
		t.Error("expected key to be namespaced with prefix")
	}

	var got payload
	if err := c.Get(ctx, "k", &got); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "a" || got.Count != 2 {
		t.Errorf("Get returned %+v", got)
	}
}

func TestGet_Miss(t *testing.T) {
	c, _ := setupTestCache(t)

	var got payload
	if err := c.Get(context.Background(), "missing", &got); !errors.Is(err, ErrMiss) {
		t.Errorf("expected ErrMiss, got %v", err)
	}
}

func TestTTLExpiry(t *testing.T) {
	c, s := setupTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", payload{Name: "x"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	s.FastForward(2 * time.Minute)

	var got payload
	if err := c.Get(ctx, "k", &got); !errors.Is(err, ErrMiss) {
		t.Errorf("expected ErrMiss after TTL, got %v", err)
	}
}

func TestDeletePrefix(t *testing.T) {
	c, _ := setupTestCache(t)
	ctx := context.Background()

	for _, k := range []string{ProfileKey("u1", ""), ProfileKey("u1", "v2"), ProfileKey("u2", ""), KeyCategoryTree} {
		if err := c.Set(ctx, k, payload{}); err != nil {
			t.Fatalf("Set(%s) failed: %v", k, err)
		}
	}

	n, err := c.DeletePrefix(ctx, PrefixProfile+"u1:")
	if err != nil {
		t.Fatalf("DeletePrefix failed: %v", err)
	}
	if n != 2 {
		t.Errorf("DeletePrefix removed %d keys, want 2", n)
	}

	var got payload
	if err := c.Get(ctx, ProfileKey("u2", ""), &got); err != nil {
		t.Errorf("unrelated key removed: %v", err)
	}
	if err := c.Get(ctx, KeyCategoryTree, &got); err != nil {
		t.Errorf("category tree removed: %v", err)
	}

	if err := c.Delete(ctx, KeyCategoryTree); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := c.Get(ctx, KeyCategoryTree, &got); !errors.Is(err, ErrMiss) {
		t.Errorf("expected ErrMiss after Delete, got %v", err)
	}
}
