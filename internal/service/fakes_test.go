package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"agora/internal/cache"
	"agora/internal/domain"
	"agora/internal/domain/models"
	"agora/internal/domain/repositories"
	"agora/internal/domain/services"
	"agora/internal/search"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func strPtr(s string) *string { return &s }

// fakeTx runs fn inline and counts transactions
type fakeTx struct{ calls int }

func (f *fakeTx) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	f.calls++
	return fn(ctx)
}

// allowAll authorizes everything
type allowAll struct{}

func (allowAll) CanModifyPost(context.Context, services.Actor, string) error      { return nil }
func (allowAll) CanModifyComment(context.Context, services.Actor, string) error   { return nil }
func (allowAll) CanModifyProvider(context.Context, services.Actor, string) error  { return nil }
func (allowAll) CanModifyPortfolio(context.Context, services.Actor, string) error { return nil }

// mapCache is an in-memory cache.Cache storing values by reference through JSON-free copies
type mapCache struct {
	mu   sync.Mutex
	data map[string]any
}

func newMapCache() *mapCache { return &mapCache{data: map[string]any{}} }

func (c *mapCache) Get(_ context.Context, key string, dest any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return cache.ErrMiss
	}
	switch d := dest.(type) {
	case *[]*models.Category:
		*d = v.([]*models.Category)
	case *models.ProfileWithStats:
		*d = *v.(*models.ProfileWithStats)
	default:
		return fmt.Errorf("mapCache: unsupported type %T", dest)
	}
	return nil
}

func (c *mapCache) Set(_ context.Context, key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *mapCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *mapCache) DeletePrefix(_ context.Context, prefix string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k := range c.data {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(c.data, k)
			n++
		}
	}
	return n, nil
}

func (c *mapCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

// fakePosts stores posts by id
type fakePosts struct {
	posts map[string]*models.Post
	err   error
}

func (f *fakePosts) Create(_ context.Context, p *models.Post) error {
	p.ID = fmt.Sprintf("p%d", len(f.posts)+1)
	f.posts[p.ID] = p
	return nil
}

func (f *fakePosts) GetByID(_ context.Context, id, _ string) (*models.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %s: %w", id, domain.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (f *fakePosts) List(_ context.Context, filter repositories.PostFilter, _ string) ([]models.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []models.Post{}
	for _, p := range f.posts {
		if filter.AuthorID == "" || p.AuthorID == filter.AuthorID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakePosts) Update(_ context.Context, p *models.Post) error {
	f.posts[p.ID] = p
	return nil
}

func (f *fakePosts) Delete(_ context.Context, id string) error {
	delete(f.posts, id)
	return nil
}

// fakeComments returns a fixed flat list
type fakeComments struct {
	flat    []models.Comment
	created []*models.Comment
}

func (f *fakeComments) Create(_ context.Context, c *models.Comment) error {
	c.ID = fmt.Sprintf("c%d", len(f.created)+1)
	f.created = append(f.created, c)
	return nil
}

func (f *fakeComments) GetByID(_ context.Context, id string) (*models.Comment, error) {
	for i := range f.flat {
		if f.flat[i].ID == id {
			return &f.flat[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeComments) ListByPost(_ context.Context, postID, _ string) ([]models.Comment, error) {
	out := []models.Comment{}
	for _, c := range f.flat {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeComments) Delete(context.Context, string) error { return nil }

// fakeVotes records the last vote
type fakeVotes struct{ last models.Vote }

func (f *fakeVotes) Set(_ context.Context, v models.Vote) (*models.VoteTally, error) {
	f.last = v
	t := &models.VoteTally{MyVote: v.Value}
	if v.Value == 1 {
		t.Upvotes = 1
	}
	if v.Value == -1 {
		t.Downvotes = 1
	}
	return t, nil
}

// fakeCategories stores categories in a slice, in list order
type fakeCategories struct {
	items     []models.Category
	listCalls int
}

func (f *fakeCategories) List(context.Context) ([]models.Category, error) {
	f.listCalls++
	return append([]models.Category(nil), f.items...), nil
}

func (f *fakeCategories) GetByID(_ context.Context, id string) (*models.Category, error) {
	for i := range f.items {
		if f.items[i].ID == id {
			c := f.items[i]
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCategories) Create(_ context.Context, c *models.Category) error {
	c.ID = fmt.Sprintf("cat%d", len(f.items)+1)
	f.items = append(f.items, *c)
	return nil
}

func (f *fakeCategories) Update(_ context.Context, c *models.Category) error {
	for i := range f.items {
		if f.items[i].ID == c.ID {
			f.items[i] = *c
		}
	}
	return nil
}

func (f *fakeCategories) Delete(context.Context, string) error { return nil }

// fakeProfiles stores profiles by id
type fakeProfiles struct {
	profiles map[string]*models.Profile
	created  int
}

func (f *fakeProfiles) Create(_ context.Context, p *models.Profile) error {
	f.created++
	f.profiles[p.ID] = p
	return nil
}

func (f *fakeProfiles) GetByID(_ context.Context, id string) (*models.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) List(context.Context, models.Page) ([]models.Profile, int, error) {
	out := []models.Profile{}
	for _, p := range f.profiles {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (f *fakeProfiles) Update(_ context.Context, p *models.Profile) error {
	f.profiles[p.ID] = p
	return nil
}

func (f *fakeProfiles) SetAvatarURL(_ context.Context, id, url string) error {
	f.profiles[id].AvatarURL = &url
	return nil
}

func (f *fakeProfiles) SetBannedUntil(_ context.Context, id string, until *time.Time) error {
	f.profiles[id].BannedUntil = until
	return nil
}

// fakeFollows records follow calls
type fakeFollows struct{ users map[[2]string]bool }

func (f *fakeFollows) FollowUser(_ context.Context, a, b string) error {
	f.users[[2]string{a, b}] = true
	return nil
}

func (f *fakeFollows) UnfollowUser(_ context.Context, a, b string) error {
	delete(f.users, [2]string{a, b})
	return nil
}

func (f *fakeFollows) FollowProvider(context.Context, string, string) error   { return nil }
func (f *fakeFollows) UnfollowProvider(context.Context, string, string) error { return nil }

// fakeRPC serves canned RPC results
type fakeRPC struct {
	mu          sync.Mutex
	statsCalls  int
	badges      []models.EarnedBadge
	impressions map[string]int
}

func (f *fakeRPC) ProfileWithStats(_ context.Context, userID, viewerID string) (*models.ProfileWithStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statsCalls++
	if userID == "missing" {
		return nil, domain.ErrNotFound
	}
	return &models.ProfileWithStats{
		Profile:     models.Profile{ID: userID, Username: "user_" + userID},
		Stats:       models.ProfileStats{PostCount: 3},
		IsFollowing: viewerID != "",
	}, nil
}

func (f *fakeRPC) ProviderFullProfile(_ context.Context, id, _ string) (*models.ProviderFullProfile, error) {
	return &models.ProviderFullProfile{Provider: models.Provider{ID: id}}, nil
}

func (f *fakeRPC) CalculateUserBadges(context.Context, string) ([]models.EarnedBadge, error) {
	return f.badges, nil
}

func (f *fakeRPC) RecordPortfolioImpression(_ context.Context, id, _ string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.impressions[id]++
	return f.impressions[id], nil
}

// fakePortfolios stores portfolios by id
type fakePortfolios struct {
	portfolios map[string]*models.Portfolio
}

func (f *fakePortfolios) Create(_ context.Context, p *models.Portfolio) error {
	p.ID = fmt.Sprintf("pf%d", len(f.portfolios)+1)
	f.portfolios[p.ID] = p
	return nil
}

func (f *fakePortfolios) GetByID(_ context.Context, id, _ string) (*models.Portfolio, error) {
	p, ok := f.portfolios[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePortfolios) List(context.Context, repositories.PortfolioFilter, string) ([]models.Portfolio, error) {
	return []models.Portfolio{}, nil
}

func (f *fakePortfolios) Update(_ context.Context, p *models.Portfolio) error {
	f.portfolios[p.ID] = p
	return nil
}

func (f *fakePortfolios) Delete(_ context.Context, id string) error {
	delete(f.portfolios, id)
	return nil
}

func (f *fakePortfolios) AddMedia(_ context.Context, m *models.PortfolioMedia) error {
	m.ID = "m1"
	return nil
}

func (f *fakePortfolios) ListMedia(context.Context, string) ([]models.PortfolioMedia, error) {
	return nil, nil
}

func (f *fakePortfolios) SetCollected(context.Context, string, string, bool) (int, error) {
	return 1, nil
}

// fakeProviders stores providers by id
type fakeProviders struct {
	providers map[string]*models.Provider
}

func (f *fakeProviders) Create(_ context.Context, p *models.Provider) error {
	p.ID = fmt.Sprintf("pr%d", len(f.providers)+1)
	f.providers[p.ID] = p
	return nil
}

func (f *fakeProviders) GetByID(_ context.Context, id, _ string) (*models.Provider, error) {
	p, ok := f.providers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProviders) List(context.Context, models.ProviderFilter, string) ([]models.Provider, error) {
	out := []models.Provider{}
	for _, p := range f.providers {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProviders) ListByIDs(_ context.Context, ids []string, _ string) ([]models.Provider, error) {
	out := []models.Provider{}
	for _, id := range ids {
		if p, ok := f.providers[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProviders) All(ctx context.Context) ([]models.Provider, error) {
	return f.List(ctx, models.ProviderFilter{}, "")
}

func (f *fakeProviders) Update(_ context.Context, p *models.Provider) error {
	f.providers[p.ID] = p
	return nil
}

func (f *fakeProviders) SetVerified(_ context.Context, id string, v bool) error {
	f.providers[id].Verified = v
	return nil
}

// fakeSearch returns fixed hits and records indexed ids
type fakeSearch struct {
	mu      sync.Mutex
	hits    []search.Hit
	indexed []string
	queries []search.Query
}

func (f *fakeSearch) Search(_ context.Context, q search.Query) search.Response {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	return search.Response{Hits: f.hits, Total: len(f.hits) + 10, Query: q.Text}
}

func (f *fakeSearch) IndexProvider(r search.ProviderRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed = append(f.indexed, r.ID)
}

func (f *fakeSearch) Reindex(records []search.ProviderRecord) (int, error) {
	return len(records), nil
}

// fakeUsers records auth admin calls
type fakeUsers struct {
	banned map[string]time.Duration
	err    error
}

func (f *fakeUsers) Ban(_ context.Context, id string, d time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.banned[id] = d
	return nil
}

func (f *fakeUsers) Unban(_ context.Context, id string) error {
	delete(f.banned, id)
	return nil
}

func (f *fakeUsers) DeleteUser(context.Context, string) error { return nil }
