package store

import (
	"context"
	"sync"

	"agora/internal/client"
	"agora/internal/domain/models"
	"agora/internal/mapper"
	"agora/internal/realtime"
)

// applyPatch merges an update event into item id and removes it on delete
func applyPatch[T any](c *Collection[T], ch realtime.Change, patch func(*T, []byte) int) bool {
	id := mapper.RecordID(ch.Row())
	if id == "" {
		return false
	}
	switch ch.Type {
	case realtime.EventDelete:
		return c.Remove(id)
	case realtime.EventUpdate:
		applied := 0
		c.Update(id, func(item *T) { applied = patch(item, ch.Record) })
		return applied > 0
	}
	return false
}

var profileFollow = lens[models.ProfileWithStats, Membership]{
	get: func(p *models.ProfileWithStats) Membership {
		return Membership{Member: p.IsFollowing, Count: p.Stats.FollowerCount}
	},
	set: func(p *models.ProfileWithStats, m Membership) {
		p.IsFollowing, p.Stats.FollowerCount = m.Member, m.Count
	},
}

// Profiles caches the profiles viewed in this session
type Profiles struct {
	*Collection[models.ProfileWithStats]
	ops

	api     API
	follows *Ledger[Membership]
}

func newProfiles(api API) *Profiles {
	return &Profiles{
		Collection: NewCollection(func(p *models.ProfileWithStats) string { return p.ID }),
		api:        api,
		follows:    NewLedger[Membership](),
	}
}

// Fetch loads a profile and stores it
func (p *Profiles) Fetch(ctx context.Context, id string) (*models.ProfileWithStats, error) {
	op := "fetch:" + id
	p.set(op, pending())
	profile, err := p.api.GetProfile(ctx, id)
	p.set(op, settled(err))
	if err != nil {
		return nil, err
	}
	p.Put(*profile)
	return profile, nil
}

// SetFollowing follows or unfollows a user
func (p *Profiles) SetFollowing(ctx context.Context, userID string, follow bool) error {
	op := "follow:" + userID
	p.set(op, pending())
	err := mutate(ctx, p.Collection, p.follows, profileFollow, "user:"+userID, userID,
		func(m Membership) Membership { return ApplyMembership(m, follow) },
		func(ctx context.Context) error { return p.api.SetFollowingUser(ctx, userID, follow) })
	p.set(op, settled(err))
	return err
}

func (p *Profiles) apply(ch realtime.Change) bool {
	return applyPatch(p.Collection, ch, func(pw *models.ProfileWithStats, raw []byte) int {
		return mapper.PatchProfile(&pw.Profile, raw)
	})
}

var providerFollow = lens[models.Provider, Membership]{
	get: func(p *models.Provider) Membership { return Membership{Member: p.IsFollowing, Count: p.FollowerCount} },
	set: func(p *models.Provider, m Membership) { p.IsFollowing, p.FollowerCount = m.Member, m.Count },
}

// Providers is the provider directory result list
type Providers struct {
	*Collection[models.Provider]
	ops

	api     API
	follows *Ledger[Membership]

	mu     sync.Mutex
	params client.SearchProvidersParams
}

func newProviders(api API) *Providers {
	return &Providers{
		Collection: NewCollection(func(p *models.Provider) string { return p.ID }),
		api:        api,
		follows:    NewLedger[Membership](),
	}
}

// Search replaces the results with the first page for typeID and query
func (p *Providers) Search(ctx context.Context, typeID, query string) error {
	p.mu.Lock()
	p.params = client.SearchProvidersParams{TypeID: typeID, Query: query}
	p.mu.Unlock()
	return p.load(ctx, true)
}

// More appends the next page of the current search
func (p *Providers) More(ctx context.Context) error {
	return p.load(ctx, false)
}

func (p *Providers) load(ctx context.Context, reset bool) error {
	p.mu.Lock()
	params := p.params
	p.mu.Unlock()

	_, err := p.Collection.Load(ctx, reset, func(ctx context.Context, offset int) ([]models.Provider, error) {
		params.Limit, params.Offset = PageSize, offset
		page, err := p.api.SearchProviders(ctx, params)
		if err != nil {
			return nil, err
		}
		return page.Providers, nil
	})
	return err
}

// SetFollowing follows or unfollows a provider
func (p *Providers) SetFollowing(ctx context.Context, providerID string, follow bool) error {
	op := "follow:" + providerID
	p.set(op, pending())
	err := mutate(ctx, p.Collection, p.follows, providerFollow, "provider:"+providerID, providerID,
		func(m Membership) Membership { return ApplyMembership(m, follow) },
		func(ctx context.Context) error { return p.api.SetFollowingProvider(ctx, providerID, follow) })
	p.set(op, settled(err))
	return err
}

func (p *Providers) apply(ch realtime.Change) bool {
	return applyPatch(p.Collection, ch, mapper.PatchProvider)
}

var portfolioCollect = lens[models.Portfolio, Membership]{
	get: func(p *models.Portfolio) Membership { return Membership{Member: p.IsCollected, Count: p.CollectCount} },
	set: func(p *models.Portfolio, m Membership) { p.IsCollected, p.CollectCount = m.Member, m.Count },
}

// Portfolios is a portfolio listing, optionally of one owner
type Portfolios struct {
	*Collection[models.Portfolio]
	ops

	api      API
	collects *Ledger[Membership]

	mu    sync.Mutex
	owner string
}

func newPortfolios(api API) *Portfolios {
	return &Portfolios{
		Collection: NewCollection(func(p *models.Portfolio) string { return p.ID }),
		api:        api,
		collects:   NewLedger[Membership](),
	}
}

// Load replaces the listing with the first page of ownerID's portfolios ("" for all)
func (p *Portfolios) Load(ctx context.Context, ownerID string) error {
	p.mu.Lock()
	p.owner = ownerID
	p.mu.Unlock()
	return p.load(ctx, true)
}

// More appends the next page
func (p *Portfolios) More(ctx context.Context) error {
	return p.load(ctx, false)
}

func (p *Portfolios) load(ctx context.Context, reset bool) error {
	p.mu.Lock()
	owner := p.owner
	p.mu.Unlock()

	_, err := p.Collection.Load(ctx, reset, func(ctx context.Context, offset int) ([]models.Portfolio, error) {
		return p.api.ListPortfolios(ctx, client.ListPortfoliosParams{OwnerID: owner, Limit: PageSize, Offset: offset})
	})
	return err
}

// SetCollected adds or removes a portfolio from the caller's collection
func (p *Portfolios) SetCollected(ctx context.Context, portfolioID string, collected bool) error {
	op := "collect:" + portfolioID
	p.set(op, pending())
	err := mutate(ctx, p.Collection, p.collects, portfolioCollect, "portfolio:"+portfolioID, portfolioID,
		func(m Membership) Membership { return ApplyMembership(m, collected) },
		func(ctx context.Context) error {
			_, err := p.api.SetCollected(ctx, portfolioID, collected)
			return err
		})
	p.set(op, settled(err))
	return err
}

func (p *Portfolios) apply(ch realtime.Change) bool {
	return applyPatch(p.Collection, ch, mapper.PatchPortfolio)
}
