package client

import (
	"context"
	"net/http"
	"net/url"

	"agora/internal/domain/models"
	"agora/internal/domain/services"
)

func (c *Client) GetProfile(ctx context.Context, id string) (*models.ProfileWithStats, error) {
	var profile models.ProfileWithStats
	if err := c.do(ctx, http.MethodGet, "/api/profiles/"+url.PathEscape(id), nil, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) GetProfilePage(ctx context.Context, id string) (*models.ProfilePage, error) {
	var page models.ProfilePage
	if err := c.do(ctx, http.MethodGet, "/api/profiles/"+url.PathEscape(id)+"/page", nil, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdateMe updates the caller's profile, creating it on first use
func (c *Client) UpdateMe(ctx context.Context, req *services.UpdateProfileRequest) (*models.Profile, error) {
	var profile models.Profile
	if err := c.do(ctx, http.MethodPatch, "/api/profiles/me", nil, req, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// SetFollowingUser follows (PUT) or unfollows (DELETE) a user
func (c *Client) SetFollowingUser(ctx context.Context, userID string, follow bool) error {
	return c.do(ctx, followMethod(follow), "/api/profiles/"+url.PathEscape(userID)+"/follow", nil, nil, nil)
}

// SetFollowingProvider follows (PUT) or unfollows (DELETE) a provider
func (c *Client) SetFollowingProvider(ctx context.Context, providerID string, follow bool) error {
	return c.do(ctx, followMethod(follow), "/api/providers/"+url.PathEscape(providerID)+"/follow", nil, nil, nil)
}

func followMethod(follow bool) string {
	if follow {
		return http.MethodPut
	}
	return http.MethodDelete
}

func (c *Client) ListProviderTypes(ctx context.Context) ([]models.ProviderType, error) {
	var types []models.ProviderType
	err := c.do(ctx, http.MethodGet, "/api/provider-types", nil, nil, &types)
	return types, err
}

// CreateProviderType requires an admin token. Duplicates fail with the
// PROVIDER_TYPE_EXISTS code.
func (c *Client) CreateProviderType(ctx context.Context, req *services.CreateProviderTypeRequest) (*models.ProviderType, error) {
	var pt models.ProviderType
	if err := c.do(ctx, http.MethodPost, "/api/admin/provider-types", nil, req, &pt); err != nil {
		return nil, err
	}
	return &pt, nil
}

// SearchProvidersParams filters GET /api/providers
type SearchProvidersParams struct {
	TypeID string
	Query  string
	Limit  int
	Offset int
}

func (c *Client) SearchProviders(ctx context.Context, p SearchProvidersParams) (*models.ProviderPage, error) {
	q := url.Values{}
	if p.TypeID != "" {
		q.Set("type", p.TypeID)
	}
	if p.Query != "" {
		q.Set("q", p.Query)
	}
	var page models.ProviderPage
	if err := c.do(ctx, http.MethodGet, "/api/providers", pageQuery(q, p.Limit, p.Offset), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetProvider(ctx context.Context, id string) (*models.ProviderFullProfile, error) {
	var provider models.ProviderFullProfile
	if err := c.do(ctx, http.MethodGet, "/api/providers/"+url.PathEscape(id), nil, nil, &provider); err != nil {
		return nil, err
	}
	return &provider, nil
}

// ListPortfoliosParams filters GET /api/portfolios
type ListPortfoliosParams struct {
	OwnerID    string
	ProviderID string
	Limit      int
	Offset     int
}

func (c *Client) ListPortfolios(ctx context.Context, p ListPortfoliosParams) ([]models.Portfolio, error) {
	q := url.Values{}
	if p.OwnerID != "" {
		q.Set("owner", p.OwnerID)
	}
	if p.ProviderID != "" {
		q.Set("provider", p.ProviderID)
	}
	var portfolios []models.Portfolio
	err := c.do(ctx, http.MethodGet, "/api/portfolios", pageQuery(q, p.Limit, p.Offset), nil, &portfolios)
	return portfolios, err
}

// CollectResult is the portfolio's collect state after a collect call
type CollectResult struct {
	CollectCount int  `json:"collectCount"`
	IsCollected  bool `json:"isCollected"`
}

// SetCollected adds (PUT) or removes (DELETE) a portfolio from the caller's collection
func (c *Client) SetCollected(ctx context.Context, portfolioID string, collected bool) (*CollectResult, error) {
	var res CollectResult
	if err := c.do(ctx, followMethod(collected), "/api/portfolios/"+url.PathEscape(portfolioID)+"/collect", nil, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// AdminStats requires an admin token
func (c *Client) AdminStats(ctx context.Context) (*models.AdminStats, error) {
	var stats models.AdminStats
	if err := c.do(ctx, http.MethodGet, "/api/admin/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
