package search

import (
	"context"
	"log/slog"
)

// Service is the facade that tries Meilisearch first and falls back to PG FTS.
type Service struct {
	meili    Searcher
	indexer  Indexer
	fallback Searcher
	logger   *slog.Logger
}

// NewService creates a search service. meili may be nil if Meilisearch is not configured.
func NewService(meili *Meili, fallback Searcher, logger *slog.Logger) *Service {
	if meili == nil {
		return newService(nil, nil, fallback, logger)
	}
	return newService(meili, meili, fallback, logger)
}

func newService(primary Searcher, indexer Indexer, fallback Searcher, logger *slog.Logger) *Service {
	return &Service{meili: primary, indexer: indexer, fallback: fallback, logger: logger}
}

// Search tries Meilisearch if healthy, otherwise falls back to PG FTS.
func (s *Service) Search(ctx context.Context, q Query) Response {
	if s.meili != nil && s.meili.Healthy() {
		hits, total, err := s.meili.Search(ctx, q)
		if err == nil {
			return Response{Hits: nonNil(hits), Total: total, Query: q.Text}
		}
		s.logger.Warn("meilisearch error, falling back to pgfts", "error", err)
	}

	hits, total, err := s.fallback.Search(ctx, q)
	if err != nil {
		s.logger.Error("pgfts error", "error", err)
		return Response{Hits: []Hit{}, Total: 0, Query: q.Text}
	}
	return Response{Hits: nonNil(hits), Total: total, Query: q.Text}
}

// IndexProvider indexes a provider (fire-and-forget to Meilisearch).
func (s *Service) IndexProvider(record ProviderRecord) {
	if s.indexer == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.indexer.IndexProviders([]ProviderRecord{record}); err != nil {
			s.logger.Warn("index provider failed", "id", record.ID, "error", err)
		}
	}()
}

// DeleteProvider removes a provider from the index (fire-and-forget).
func (s *Service) DeleteProvider(id string) {
	if s.indexer == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.indexer.DeleteProvider(id); err != nil {
			s.logger.Warn("delete provider from index failed", "id", id, "error", err)
		}
	}()
}

// Reindex pushes all records synchronously. It reports the number indexed.
func (s *Service) Reindex(records []ProviderRecord) (int, error) {
	if s.indexer == nil || !s.meili.Healthy() {
		return 0, ErrIndexUnavailable
	}
	const batch = 500
	for start := 0; start < len(records); start += batch {
		end := min(start+batch, len(records))
		if err := s.indexer.IndexProviders(records[start:end]); err != nil {
			return start, err
		}
	}
	return len(records), nil
}

func nonNil(h []Hit) []Hit {
	if h == nil {
		return []Hit{}
	}
	return h
}
