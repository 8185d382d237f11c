package models

import "time"

// Post is a top-level forum thread.
type Post struct {
	ID           string          `json:"id"`
	AuthorID     string          `json:"authorId"`
	CategoryID   *string         `json:"categoryId"`
	Title        string          `json:"title"`
	Body         string          `json:"body"`
	Upvotes      int             `json:"upvotes"`
	Downvotes    int             `json:"downvotes"`
	CommentCount int             `json:"commentCount"`
	MyVote       int             `json:"myVote"` // -1, 0 or 1 for the requesting user
	Author       *ProfileSummary `json:"author,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Score is upvotes minus downvotes.
func (p *Post) Score() int {
	return p.Upvotes - p.Downvotes
}

// Comment is a reply to a post or to another comment.
type Comment struct {
	ID        string          `json:"id"`
	PostID    string          `json:"postId"`
	AuthorID  string          `json:"authorId"`
	ParentID  *string         `json:"parentId"`
	Body      string          `json:"body"`
	Upvotes   int             `json:"upvotes"`
	Downvotes int             `json:"downvotes"`
	MyVote    int             `json:"myVote"`
	Author    *ProfileSummary `json:"author,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Children  []*Comment      `json:"children"`
}

func (c *Comment) NodeID() string                    { return c.ID }
func (c *Comment) NodeParentID() *string             { return c.ParentID }
func (c *Comment) ChildNodes() []*Comment            { return c.Children }
func (c *Comment) SetChildNodes(children []*Comment) { c.Children = children }

// VoteTarget identifies what a vote applies to.
type VoteTarget string

const (
	VoteTargetPost    VoteTarget = "post"
	VoteTargetComment VoteTarget = "comment"
)

// Vote is one user's vote on a post or comment. Value is -1 or 1; 0 clears.
type Vote struct {
	TargetType VoteTarget `json:"targetType"`
	TargetID   string     `json:"targetId"`
	UserID     string     `json:"userId"`
	Value      int        `json:"value"`
}

// VoteTally is the state of a target after a vote was applied.
type VoteTally struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
	MyVote    int `json:"myVote"`
}
