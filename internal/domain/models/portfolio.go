package models

import "time"

// Portfolio is a showcase of work, optionally attached to a provider listing.
type Portfolio struct {
	ID              string           `json:"id"`
	OwnerID         string           `json:"ownerId"`
	ProviderID      *string          `json:"providerId"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	CoverURL        *string          `json:"coverUrl"`
	Tags            []string         `json:"tags"`
	ImpressionCount int              `json:"impressionCount"`
	CollectCount    int              `json:"collectCount"`
	IsCollected     bool             `json:"isCollected"`
	Media           []PortfolioMedia `json:"media,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// PortfolioMedia is one uploaded asset of a portfolio.
type PortfolioMedia struct {
	ID          string    `json:"id"`
	PortfolioID string    `json:"portfolioId"`
	URL         string    `json:"url"`
	ContentType string    `json:"contentType"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"createdAt"`
}
