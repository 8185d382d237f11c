// Package store is the client-side state of an agora session.
//
// Each slice holds fetched server data behind its own mutex. Mutations are
// optimistic: the change is applied locally at once, the API call runs, and
// a failure restores the snapshot taken before the change (see Ledger).
// Realtime change events are merged by id through ApplyChange.
package store

import (
	"context"
	"log/slog"
	"sync"

	"agora/internal/client"
	"agora/internal/domain/models"
	"agora/internal/realtime"
)

// Status is the lifecycle of an async operation
type Status string

const (
	StatusIdle      Status = "idle"
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// OpState is the last known state of one operation. Error is set when
// Status is failed.
type OpState struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

func pending() OpState { return OpState{Status: StatusPending} }

func settled(err error) OpState {
	if err != nil {
		return OpState{Status: StatusFailed, Error: err.Error()}
	}
	return OpState{Status: StatusSucceeded}
}

// ops tracks per-operation state, keyed by operation name
type ops struct {
	mu sync.Mutex
	m  map[string]OpState
}

func (o *ops) set(name string, s OpState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.m == nil {
		o.m = make(map[string]OpState)
	}
	o.m[name] = s
}

// Op returns the state of a named operation, idle when it never ran
func (o *ops) Op(name string) OpState {
	o.mu.Lock()
	defer o.mu.Unlock()
	if s, ok := o.m[name]; ok {
		return s
	}
	return OpState{Status: StatusIdle}
}

// API is the subset of the HTTP client the store calls
type API interface {
	ListPosts(ctx context.Context, p client.ListPostsParams) ([]models.Post, error)
	VotePost(ctx context.Context, id string, value int) (*models.VoteTally, error)
	GetThread(ctx context.Context, postID string) (*models.CommentThread, error)
	CreateComment(ctx context.Context, postID string, parentID *string, body string) (*models.Comment, error)
	VoteComment(ctx context.Context, id string, value int) (*models.VoteTally, error)
	CategoryTree(ctx context.Context) ([]*models.Category, error)
	GetProfile(ctx context.Context, id string) (*models.ProfileWithStats, error)
	SetFollowingUser(ctx context.Context, userID string, follow bool) error
	SearchProviders(ctx context.Context, p client.SearchProvidersParams) (*models.ProviderPage, error)
	SetFollowingProvider(ctx context.Context, providerID string, follow bool) error
	ListPortfolios(ctx context.Context, p client.ListPortfoliosParams) ([]models.Portfolio, error)
	SetCollected(ctx context.Context, portfolioID string, collected bool) (*client.CollectResult, error)
}

// Store groups the slices of one session
type Store struct {
	Posts      *Posts
	Thread     *Thread
	Categories *Categories
	Profiles   *Profiles
	Providers  *Providers
	Portfolios *Portfolios

	logger *slog.Logger
}

// New creates an empty store backed by api
func New(api API, logger *slog.Logger) *Store {
	return &Store{
		Posts:      newPosts(api),
		Thread:     newThread(api),
		Categories: newCategories(api),
		Profiles:   newProfiles(api),
		Providers:  newProviders(api),
		Portfolios: newPortfolios(api),
		logger:     logger,
	}
}

// ApplyChange merges a realtime change into the slice that holds its table.
// Updates overwrite only the columns present in the row; deletes remove by
// id. It reports whether any local state changed.
func (s *Store) ApplyChange(ch realtime.Change) bool {
	var applied bool
	switch ch.Table {
	case "posts":
		applied = s.Posts.apply(ch)
	case "comments":
		applied = s.Thread.apply(ch)
	case "categories":
		applied = s.Categories.apply(ch)
	case "profiles":
		applied = s.Profiles.apply(ch)
	case "providers":
		applied = s.Providers.apply(ch)
	case "portfolios":
		applied = s.Portfolios.apply(ch)
	default:
		s.logger.Debug("change for unknown table ignored", "table", ch.Table)
		return false
	}
	s.logger.Debug("change applied", "table", ch.Table, "type", ch.Type, "applied", applied)
	return applied
}
