package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"agora/internal/domain/models"
	"agora/internal/mapper"
	"agora/internal/realtime"
	"agora/internal/tree"
)

// TempIDPrefix marks comments that exist only locally until the server answers
const TempIDPrefix = "temp-"

var commentTally = lens[models.Comment, Tally]{
	get: func(c *models.Comment) Tally { return Tally{Upvotes: c.Upvotes, Downvotes: c.Downvotes, MyVote: c.MyVote} },
	set: func(c *models.Comment, t Tally) { c.Upvotes, c.Downvotes, c.MyVote = t.Upvotes, t.Downvotes, t.MyVote },
}

// Thread is the comment tree of the post being viewed
type Thread struct {
	ops

	api   API
	votes *Ledger[Tally]

	mu     sync.Mutex
	postID string
	roots  []*models.Comment
	gen    uint64
	cancel context.CancelFunc
	state  OpState
}

func newThread(api API) *Thread {
	return &Thread{api: api, votes: NewLedger[Tally](), state: OpState{Status: StatusIdle}}
}

// Load replaces the thread with the comments of postID. Switching posts
// cancels and discards a load still running for the previous one.
func (t *Thread) Load(ctx context.Context, postID string) error {
	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
	}
	t.gen++
	gen := t.gen
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.postID = postID
	t.roots = nil
	t.state = pending()
	t.mu.Unlock()
	defer cancel()

	thread, err := t.api.GetThread(ctx, postID)

	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.gen {
		return ErrSuperseded
	}
	t.cancel = nil
	t.state = settled(err)
	if err != nil {
		return err
	}
	t.roots = thread.Comments
	if t.roots == nil {
		t.roots = []*models.Comment{}
	}
	return nil
}

// PostID is the post the thread belongs to
func (t *Thread) PostID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.postID
}

// State is the state of the last load
func (t *Thread) State() OpState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Roots returns a deep copy of the tree
func (t *Thread) Roots() []*models.Comment {
	t.mu.Lock()
	defer t.mu.Unlock()
	return cloneComments(t.roots)
}

// Count is the number of comments in the tree
func (t *Thread) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return tree.Count(t.roots)
}

// Update runs fn on the comment with id while holding the lock
func (t *Thread) Update(id string, fn func(*models.Comment)) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	c := tree.Find(t.roots, id)
	if c == nil {
		return false
	}
	fn(c)
	return true
}

// Vote sets the caller's vote on a comment to value (1, -1 or 0)
func (t *Thread) Vote(ctx context.Context, id string, value int) error {
	op := "vote:" + id
	t.set(op, pending())
	err := mutate(ctx, t, t.votes, commentTally, "comment:"+id, id,
		func(v Tally) Tally { return ApplyVote(v, value) },
		func(ctx context.Context) error {
			_, err := t.api.VoteComment(ctx, id, value)
			return err
		})
	t.set(op, settled(err))
	return err
}

// Reply posts a comment under parentID (nil for a top-level comment). The
// comment shows up at once under a temporary id, which is swapped for the
// server's on success and removed on failure.
func (t *Thread) Reply(ctx context.Context, parentID *string, body, authorID string) (*models.Comment, error) {
	tempID := TempIDPrefix + uuid.NewString()
	now := time.Now()

	t.mu.Lock()
	postID, gen := t.postID, t.gen
	t.roots = tree.InsertChild(t.roots, parentID, &models.Comment{
		ID:        tempID,
		PostID:    postID,
		AuthorID:  authorID,
		ParentID:  parentID,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
		Children:  []*models.Comment{},
	})
	t.mu.Unlock()

	op := "reply:" + tempID
	t.set(op, pending())
	created, err := t.api.CreateComment(ctx, postID, parentID, body)
	t.set(op, settled(err))

	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.gen {
		// The thread was reloaded; the temporary node is gone already
		return created, err
	}
	if err != nil {
		t.roots, _ = tree.Remove(t.roots, tempID)
		return nil, err
	}

	if tree.Find(t.roots, created.ID) != nil {
		// A realtime insert beat the response
		t.roots, _ = tree.Remove(t.roots, tempID)
		return created, nil
	}
	if node := tree.Find(t.roots, tempID); node != nil {
		children := node.Children
		*node = *created
		node.Children = children
		if node.Children == nil {
			node.Children = []*models.Comment{}
		}
	}
	return created, nil
}

func (t *Thread) apply(ch realtime.Change) bool {
	row := ch.Row()
	id := mapper.RecordID(row)
	if id == "" {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	switch ch.Type {
	case realtime.EventDelete:
		var removed bool
		t.roots, removed = tree.Remove(t.roots, id)
		return removed
	case realtime.EventUpdate:
		c := tree.Find(t.roots, id)
		if c == nil {
			return false
		}
		return mapper.PatchComment(c, ch.Record) > 0
	case realtime.EventInsert:
		comment, err := mapper.Decode(ch.Record, mapper.ToComment)
		if err != nil || comment.PostID != t.postID || tree.Find(t.roots, id) != nil {
			return false
		}
		if t.replacePendingReply(&comment) {
			return true
		}
		t.roots = tree.InsertChild(t.roots, comment.ParentID, &comment)
		return true
	}
	return false
}

// replacePendingReply swaps a temporary node for the inserted comment when
// the insert is our own reply arriving before the create response.
func (t *Thread) replacePendingReply(c *models.Comment) bool {
	var match *models.Comment
	tree.Walk(t.roots, func(n *models.Comment, _ int) bool {
		if match == nil && strings.HasPrefix(n.ID, TempIDPrefix) &&
			n.AuthorID == c.AuthorID && n.Body == c.Body && samePtr(n.ParentID, c.ParentID) {
			match = n
		}
		return match == nil
	})
	if match == nil {
		return false
	}
	children := match.Children
	*match = *c
	match.Children = children
	return true
}

func samePtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func cloneComments(nodes []*models.Comment) []*models.Comment {
	out := make([]*models.Comment, len(nodes))
	for i, n := range nodes {
		cp := *n
		cp.Children = cloneComments(n.Children)
		out[i] = &cp
	}
	return out
}
