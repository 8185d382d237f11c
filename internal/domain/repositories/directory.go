package repositories

import (
	"context"

	"agora/internal/domain/models"
)

// ProviderTypeRepository defines data access operations for provider types
type ProviderTypeRepository interface {
	List(ctx context.Context) ([]models.ProviderType, error)

	// Create fails with a PROVIDER_TYPE_EXISTS conflict on duplicate name or slug
	Create(ctx context.Context, providerType *models.ProviderType) error
}

// ProviderRepository defines data access operations for directory listings
type ProviderRepository interface {
	// Create fails with a PROVIDER_EXISTS conflict when the user already has a listing
	Create(ctx context.Context, provider *models.Provider) error
	GetByID(ctx context.Context, id, viewerID string) (*models.Provider, error)

	// List filters by type only; text queries go through the search service
	List(ctx context.Context, filter models.ProviderFilter, viewerID string) ([]models.Provider, error)

	// ListByIDs returns providers in the order of ids, skipping missing ones
	ListByIDs(ctx context.Context, ids []string, viewerID string) ([]models.Provider, error)

	// All streams every provider (for reindexing)
	All(ctx context.Context) ([]models.Provider, error)
	Update(ctx context.Context, provider *models.Provider) error
	SetVerified(ctx context.Context, id string, verified bool) error
}

// PortfolioFilter narrows a portfolio listing
type PortfolioFilter struct {
	OwnerID    string
	ProviderID string
	Page       models.Page
}

// PortfolioRepository defines data access operations for portfolios and their media
type PortfolioRepository interface {
	Create(ctx context.Context, portfolio *models.Portfolio) error
	GetByID(ctx context.Context, id, viewerID string) (*models.Portfolio, error)
	List(ctx context.Context, filter PortfolioFilter, viewerID string) ([]models.Portfolio, error)
	Update(ctx context.Context, portfolio *models.Portfolio) error
	Delete(ctx context.Context, id string) error

	// AddMedia appends media at the next position
	AddMedia(ctx context.Context, media *models.PortfolioMedia) error
	ListMedia(ctx context.Context, portfolioID string) ([]models.PortfolioMedia, error)

	// SetCollected adds or removes the user's collect and returns the new collect count
	SetCollected(ctx context.Context, portfolioID, userID string, collected bool) (int, error)
}
