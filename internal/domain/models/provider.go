package models

import "time"

// ProviderType classifies directory listings (e.g. "photographer").
type ProviderType struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Provider is a directory listing owned by a user.
type Provider struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	ProviderTypeID string    `json:"providerTypeId"`
	DisplayName    string    `json:"displayName"`
	Headline       string    `json:"headline"`
	Bio            string    `json:"bio"`
	Location       string    `json:"location"`
	Website        *string   `json:"website"`
	Verified       bool      `json:"verified"`
	FollowerCount  int       `json:"followerCount"`
	IsFollowing    bool      `json:"isFollowing"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ProviderFullProfile is the payload of get_provider_full_profile.
type ProviderFullProfile struct {
	Provider
	Type       ProviderType   `json:"type"`
	Owner      ProfileSummary `json:"owner"`
	Portfolios []Portfolio    `json:"portfolios"`
}

// ProviderFilter narrows a directory listing.
type ProviderFilter struct {
	TypeID string
	Query  string
	Page   Page
}
