package store

import (
	"context"
	"sync"

	"agora/internal/client"
	"agora/internal/domain/models"
	"agora/internal/mapper"
	"agora/internal/realtime"
)

// PageSize is the page length requested by paged slices
const PageSize = 20

var postTally = lens[models.Post, Tally]{
	get: func(p *models.Post) Tally { return Tally{Upvotes: p.Upvotes, Downvotes: p.Downvotes, MyVote: p.MyVote} },
	set: func(p *models.Post, t Tally) { p.Upvotes, p.Downvotes, p.MyVote = t.Upvotes, t.Downvotes, t.MyVote },
}

// Posts is the post feed of one category (or all categories)
type Posts struct {
	*Collection[models.Post]
	ops

	api   API
	votes *Ledger[Tally]

	mu       sync.Mutex
	category string
}

func newPosts(api API) *Posts {
	return &Posts{
		Collection: NewCollection(func(p *models.Post) string { return p.ID }),
		api:        api,
		votes:      NewLedger[Tally](),
	}
}

// Load replaces the feed with the first page of categoryID ("" for all).
// A load still running for a previous category is cancelled and discarded.
func (p *Posts) Load(ctx context.Context, categoryID string) error {
	p.mu.Lock()
	p.category = categoryID
	p.mu.Unlock()
	return p.load(ctx, true)
}

// More appends the next page of the current feed
func (p *Posts) More(ctx context.Context) error {
	return p.load(ctx, false)
}

func (p *Posts) load(ctx context.Context, reset bool) error {
	p.mu.Lock()
	category := p.category
	p.mu.Unlock()

	_, err := p.Collection.Load(ctx, reset, func(ctx context.Context, offset int) ([]models.Post, error) {
		return p.api.ListPosts(ctx, client.ListPostsParams{CategoryID: category, Limit: PageSize, Offset: offset})
	})
	return err
}

// Vote sets the caller's vote on a post to value (1, -1 or 0)
func (p *Posts) Vote(ctx context.Context, id string, value int) error {
	op := "vote:" + id
	p.set(op, pending())
	err := mutate(ctx, p.Collection, p.votes, postTally, "post:"+id, id,
		func(t Tally) Tally { return ApplyVote(t, value) },
		func(ctx context.Context) error {
			_, err := p.api.VotePost(ctx, id, value)
			return err
		})
	p.set(op, settled(err))
	return err
}

// Inserts are picked up by the next load; feed order is server-defined
func (p *Posts) apply(ch realtime.Change) bool {
	return applyPatch(p.Collection, ch, mapper.PatchPost)
}
