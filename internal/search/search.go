// Package search finds provider listings by text, through Meilisearch when it
// is reachable and Postgres full-text search otherwise.
package search

import (
	"context"
	"errors"
)

// ErrIndexUnavailable is returned by Reindex when Meilisearch is not configured or unhealthy.
var ErrIndexUnavailable = errors.New("search index unavailable")

// Query is a provider directory search
type Query struct {
	Text   string
	TypeID string
	Limit  int
	Offset int
}

func (q *Query) applyDefaults() {
	if q.Limit <= 0 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
}

// Hit is a ranked provider id
type Hit struct {
	ID string `json:"id"`
}

// Response is the result of a search
type Response struct {
	Hits  []Hit  `json:"hits"`
	Total int    `json:"total"`
	Query string `json:"query"`
}

// ProviderRecord is the document stored in the provider index
type ProviderRecord struct {
	ID             string `json:"id"`
	ProviderTypeID string `json:"providerTypeId"`
	DisplayName    string `json:"displayName"`
	Headline       string `json:"headline"`
	Bio            string `json:"bio"`
	Location       string `json:"location"`
	Verified       bool   `json:"verified"`
	FollowerCount  int    `json:"followerCount"`
}

// Searcher executes queries
type Searcher interface {
	Search(ctx context.Context, q Query) ([]Hit, int, error)
	Healthy() bool
}

// Indexer maintains the index
type Indexer interface {
	IndexProviders(records []ProviderRecord) error
	DeleteProvider(id string) error
}
