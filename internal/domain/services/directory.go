package services

import (
	"context"

	"agora/internal/domain/models"
)

// CreateProviderTypeRequest represents a request to create a provider type
type CreateProviderTypeRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// CreateProviderRequest represents a request to list the caller as a provider
type CreateProviderRequest struct {
	UserID         string  `json:"-"`
	ProviderTypeID string  `json:"providerTypeId"`
	DisplayName    string  `json:"displayName"`
	Headline       string  `json:"headline"`
	Bio            string  `json:"bio"`
	Location       string  `json:"location"`
	Website        *string `json:"website"`
}

// UpdateProviderRequest updates only the provided fields
type UpdateProviderRequest struct {
	ProviderTypeID *string
	DisplayName    *string
	Headline       *string
	Bio            *string
	Location       *string
	Website        models.OptionalString
}

// ProviderService defines business logic operations for the provider directory
type ProviderService interface {
	ListTypes(ctx context.Context) ([]models.ProviderType, error)

	// CreateType fails with PROVIDER_TYPE_EXISTS on duplicates
	CreateType(ctx context.Context, req *CreateProviderTypeRequest) (*models.ProviderType, error)

	CreateProvider(ctx context.Context, req *CreateProviderRequest) (*models.Provider, error)

	// GetProvider returns the full profile through the RPC function
	GetProvider(ctx context.Context, id, viewerID string) (*models.ProviderFullProfile, error)

	// SearchProviders uses the search index for text queries and a plain listing otherwise
	SearchProviders(ctx context.Context, filter models.ProviderFilter, viewerID string) (*models.ProviderPage, error)
	UpdateProvider(ctx context.Context, id string, actor Actor, req *UpdateProviderRequest) (*models.Provider, error)
	SetVerified(ctx context.Context, id string, verified bool) error
	Follow(ctx context.Context, userID, providerID string) error
	Unfollow(ctx context.Context, userID, providerID string) error

	// Reindex rebuilds the search index from the database
	Reindex(ctx context.Context) (int, error)
}

// CreatePortfolioRequest represents a request to create a portfolio
type CreatePortfolioRequest struct {
	OwnerID     string   `json:"-"`
	ProviderID  *string  `json:"providerId"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// UpdatePortfolioRequest updates only the provided fields
type UpdatePortfolioRequest struct {
	ProviderID  models.OptionalString
	Title       *string
	Description *string
	Tags        *[]string
}

// ListPortfoliosRequest filters a portfolio listing
type ListPortfoliosRequest struct {
	OwnerID    string
	ProviderID string
	Page       models.Page
}

// PortfolioService defines business logic operations for portfolios
type PortfolioService interface {
	CreatePortfolio(ctx context.Context, req *CreatePortfolioRequest) (*models.Portfolio, error)

	// GetPortfolio records an impression for every view except the owner's
	GetPortfolio(ctx context.Context, id, viewerID string) (*models.Portfolio, error)
	ListPortfolios(ctx context.Context, req *ListPortfoliosRequest, viewerID string) ([]models.Portfolio, error)
	UpdatePortfolio(ctx context.Context, id string, actor Actor, req *UpdatePortfolioRequest) (*models.Portfolio, error)
	DeletePortfolio(ctx context.Context, id string, actor Actor) error
	AddMedia(ctx context.Context, portfolioID string, actor Actor, upload Upload) (*models.PortfolioMedia, error)

	// SetCollected is idempotent and returns the new collect count
	SetCollected(ctx context.Context, portfolioID, userID string, collected bool) (int, error)
}
