package search

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
)

type fakeSearcher struct {
	healthy bool
	hits    []Hit
	err     error
	calls   int
}

func (f *fakeSearcher) Search(context.Context, Query) ([]Hit, int, error) {
	f.calls++
	return f.hits, len(f.hits), f.err
}

func (f *fakeSearcher) Healthy() bool { return f.healthy }

type fakeIndexer struct {
	mu      sync.Mutex
	batches [][]ProviderRecord
	err     error
}

func (f *fakeIndexer) IndexProviders(records []ProviderRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, records)
	return f.err
}

func (f *fakeIndexer) DeleteProvider(string) error { return nil }

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestSearch_PrefersHealthyPrimary(t *testing.T) {
	primary := &fakeSearcher{healthy: true, hits: []Hit{{ID: "m1"}}}
	fallback := &fakeSearcher{healthy: true, hits: []Hit{{ID: "p1"}}}
	s := newService(primary, nil, fallback, discard())

	resp := s.Search(context.Background(), Query{Text: "photo"})

	if len(resp.Hits) != 1 || resp.Hits[0].ID != "m1" {
		t.Errorf("expected meili hit, got %+v", resp.Hits)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback called %d times", fallback.calls)
	}
}

func TestSearch_FallsBack(t *testing.T) {
	tests := []struct {
		name    string
		primary *fakeSearcher
	}{
		{"unhealthy", &fakeSearcher{healthy: false}},
		{"error", &fakeSearcher{healthy: true, err: errors.New("boom")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fallback := &fakeSearcher{healthy: true, hits: []Hit{{ID: "p1"}}}
			s := newService(tt.primary, nil, fallback, discard())

			resp := s.Search(context.Background(), Query{Text: "photo"})
			if len(resp.Hits) != 1 || resp.Hits[0].ID != "p1" {
				t.Errorf("expected fallback hit, got %+v", resp.Hits)
			}
		})
	}
}

func TestSearch_NoPrimaryAndFallbackError(t *testing.T) {
	s := newService(nil, nil, &fakeSearcher{err: errors.New("db down")}, discard())

	resp := s.Search(context.Background(), Query{Text: "x"})
	if resp.Hits == nil || len(resp.Hits) != 0 {
		t.Errorf("expected empty non-nil hits, got %#v", resp.Hits)
	}
}

func TestReindex_Batches(t *testing.T) {
	idx := &fakeIndexer{}
	s := newService(&fakeSearcher{healthy: true}, idx, &fakeSearcher{}, discard())

	records := make([]ProviderRecord, 1200)
	n, err := s.Reindex(records)
	if err != nil {
		t.Fatalf("Reindex failed: %v", err)
	}
	if n != 1200 {
		t.Errorf("indexed %d, want 1200", n)
	}
	if len(idx.batches) != 3 {
		t.Errorf("got %d batches, want 3", len(idx.batches))
	}
}

func TestReindex_Unavailable(t *testing.T) {
	s := newService(nil, nil, &fakeSearcher{}, discard())
	if _, err := s.Reindex(nil); !errors.Is(err, ErrIndexUnavailable) {
		t.Errorf("expected ErrIndexUnavailable, got %v", err)
	}
}
