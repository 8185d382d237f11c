package models

import "time"

// Role is the application-level role of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Profile is the public profile of a user.
type Profile struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	DisplayName string     `json:"displayName"`
	AvatarURL   *string    `json:"avatarUrl"`
	Bio         string     `json:"bio"`
	Location    string     `json:"location"`
	Role        Role       `json:"role"`
	BannedUntil *time.Time `json:"bannedUntil,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// IsBanned reports whether the profile is banned at the given instant.
func (p *Profile) IsBanned(now time.Time) bool {
	return p.BannedUntil != nil && p.BannedUntil.After(now)
}

// ProfileSummary is the author card embedded in posts, comments and providers.
type ProfileSummary struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	DisplayName string  `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl"`
}

// ProfileStats are the aggregate counters returned by get_user_profile_with_stats.
type ProfileStats struct {
	PostCount      int `json:"postCount"`
	CommentCount   int `json:"commentCount"`
	FollowerCount  int `json:"followerCount"`
	FollowingCount int `json:"followingCount"`
	Reputation     int `json:"reputation"`
}

// ProfileWithStats is a profile plus its counters and the viewer's follow state.
type ProfileWithStats struct {
	Profile
	Stats       ProfileStats `json:"stats"`
	IsFollowing bool         `json:"isFollowing"`
}

// ProfilePage aggregates everything the profile screen renders.
type ProfilePage struct {
	Profile     *ProfileWithStats `json:"profile"`
	Badges      []Badge           `json:"badges"`
	RecentPosts []Post            `json:"recentPosts"`
	Portfolios  []Portfolio       `json:"portfolios"`
}
