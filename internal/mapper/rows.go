// Package mapper converts database rows (snake_case) into domain models (camelCase).
//
// The same row structs are used for pgx scans (db tags), for JSON returned by
// RPC functions and for raw records carried by realtime change events (json tags).
package mapper

import "time"

type ProfileRow struct {
	ID          string     `db:"id" json:"id"`
	Username    string     `db:"username" json:"username"`
	DisplayName string     `db:"display_name" json:"display_name"`
	AvatarURL   *string    `db:"avatar_url" json:"avatar_url"`
	Bio         string     `db:"bio" json:"bio"`
	Location    string     `db:"location" json:"location"`
	Role        string     `db:"role" json:"role"`
	BannedUntil *time.Time `db:"banned_until" json:"banned_until"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// ProfileWithStatsRow is the JSON shape of get_user_profile_with_stats.
type ProfileWithStatsRow struct {
	ProfileRow
	PostCount      int  `json:"post_count"`
	CommentCount   int  `json:"comment_count"`
	FollowerCount  int  `json:"follower_count"`
	FollowingCount int  `json:"following_count"`
	Reputation     int  `json:"reputation"`
	IsFollowing    bool `json:"is_following"`
}

// AuthorColumns are the LEFT JOINed profile columns carried by post and comment rows.
type AuthorColumns struct {
	AuthorUsername    *string `db:"author_username" json:"author_username,omitempty"`
	AuthorDisplayName *string `db:"author_display_name" json:"author_display_name,omitempty"`
	AuthorAvatarURL   *string `db:"author_avatar_url" json:"author_avatar_url,omitempty"`
}

type PostRow struct {
	ID           string    `db:"id" json:"id"`
	AuthorID     string    `db:"author_id" json:"author_id"`
	CategoryID   *string   `db:"category_id" json:"category_id"`
	Title        string    `db:"title" json:"title"`
	Body         string    `db:"body" json:"body"`
	Upvotes      int       `db:"upvotes" json:"upvotes"`
	Downvotes    int       `db:"downvotes" json:"downvotes"`
	CommentCount int       `db:"comment_count" json:"comment_count"`
	MyVote       int       `db:"my_vote" json:"my_vote"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
	AuthorColumns
}

type CommentRow struct {
	ID        string    `db:"id" json:"id"`
	PostID    string    `db:"post_id" json:"post_id"`
	AuthorID  string    `db:"author_id" json:"author_id"`
	ParentID  *string   `db:"parent_id" json:"parent_id"`
	Body      string    `db:"body" json:"body"`
	Upvotes   int       `db:"upvotes" json:"upvotes"`
	Downvotes int       `db:"downvotes" json:"downvotes"`
	MyVote    int       `db:"my_vote" json:"my_vote"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
	AuthorColumns
}

type CategoryRow struct {
	ID          string    `db:"id" json:"id"`
	ParentID    *string   `db:"parent_id" json:"parent_id"`
	Name        string    `db:"name" json:"name"`
	Slug        string    `db:"slug" json:"slug"`
	Description string    `db:"description" json:"description"`
	SortOrder   int       `db:"sort_order" json:"sort_order"`
	PostCount   int       `db:"post_count" json:"post_count"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type ProviderTypeRow struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Slug        string    `db:"slug" json:"slug"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type ProviderRow struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	ProviderTypeID string    `db:"provider_type_id" json:"provider_type_id"`
	DisplayName    string    `db:"display_name" json:"display_name"`
	Headline       string    `db:"headline" json:"headline"`
	Bio            string    `db:"bio" json:"bio"`
	Location       string    `db:"location" json:"location"`
	Website        *string   `db:"website" json:"website"`
	Verified       bool      `db:"verified" json:"verified"`
	FollowerCount  int       `db:"follower_count" json:"follower_count"`
	IsFollowing    bool      `db:"is_following" json:"is_following"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// ProviderFullProfileRow is the JSON shape of get_provider_full_profile.
type ProviderFullProfileRow struct {
	ProviderRow
	Type       ProviderTypeRow `json:"type"`
	Owner      ProfileRow      `json:"owner"`
	Portfolios []PortfolioRow  `json:"portfolios"`
}

type PortfolioRow struct {
	ID              string    `db:"id" json:"id"`
	OwnerID         string    `db:"owner_id" json:"owner_id"`
	ProviderID      *string   `db:"provider_id" json:"provider_id"`
	Title           string    `db:"title" json:"title"`
	Description     string    `db:"description" json:"description"`
	CoverURL        *string   `db:"cover_url" json:"cover_url"`
	Tags            []string  `db:"tags" json:"tags"`
	ImpressionCount int       `db:"impression_count" json:"impression_count"`
	CollectCount    int       `db:"collect_count" json:"collect_count"`
	IsCollected     bool      `db:"is_collected" json:"is_collected"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

type PortfolioMediaRow struct {
	ID          string    `db:"id" json:"id"`
	PortfolioID string    `db:"portfolio_id" json:"portfolio_id"`
	URL         string    `db:"url" json:"url"`
	ContentType string    `db:"content_type" json:"content_type"`
	Position    int       `db:"position" json:"position"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type EarnedBadgeRow struct {
	Code     string    `db:"code" json:"code"`
	EarnedAt time.Time `db:"earned_at" json:"earned_at"`
}
