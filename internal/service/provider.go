package service

import (
	"context"
	"log/slog"
	"strings"

	"agora/internal/config"
	"agora/internal/domain/models"
	"agora/internal/domain/repositories"
	"agora/internal/domain/services"
	"agora/internal/search"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// ProviderSearch is the search facade used by the directory
type ProviderSearch interface {
	Search(ctx context.Context, q search.Query) search.Response
	IndexProvider(record search.ProviderRecord)
	Reindex(records []search.ProviderRecord) (int, error)
}

// providerService implements the ProviderService interface
type providerService struct {
	typeRepo     repositories.ProviderTypeRepository
	providerRepo repositories.ProviderRepository
	followRepo   repositories.FollowRepository
	rpcRepo      repositories.RPCRepository
	search       ProviderSearch
	authorizer   services.ResourceAuthorizer
	logger       *slog.Logger
}

// NewProviderService creates a new provider directory service
func NewProviderService(
	typeRepo repositories.ProviderTypeRepository,
	providerRepo repositories.ProviderRepository,
	followRepo repositories.FollowRepository,
	rpcRepo repositories.RPCRepository,
	providerSearch ProviderSearch,
	authorizer services.ResourceAuthorizer,
	logger *slog.Logger,
) services.ProviderService {
	return &providerService{
		typeRepo:     typeRepo,
		providerRepo: providerRepo,
		followRepo:   followRepo,
		rpcRepo:      rpcRepo,
		search:       providerSearch,
		authorizer:   authorizer,
		logger:       logger,
	}
}

// ListTypes returns every provider type
func (s *providerService) ListTypes(ctx context.Context) ([]models.ProviderType, error) {
	return s.typeRepo.List(ctx)
}

// CreateType creates a provider type. The slug is derived from the name when omitted.
func (s *providerService) CreateType(ctx context.Context, req *services.CreateProviderTypeRequest) (*models.ProviderType, error) {
	req.Name = strings.TrimSpace(req.Name)
	if strings.TrimSpace(req.Slug) == "" {
		req.Slug = slugify(req.Name)
	}

	if err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxNameLength)),
		validation.Field(&req.Slug, validation.Required, validation.Match(slugPattern).Error("must be lowercase words separated by dashes")),
		validation.Field(&req.Description, validation.Length(0, config.MaxBioLength)),
	); err != nil {
		return nil, invalid(err)
	}

	pt := &models.ProviderType{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	}
	if err := s.typeRepo.Create(ctx, pt); err != nil {
		return nil, err
	}

	s.logger.Info("provider type created", "id", pt.ID, "slug", pt.Slug)
	return pt, nil
}

// CreateProvider lists the user in the directory
func (s *providerService) CreateProvider(ctx context.Context, req *services.CreateProviderRequest) (*models.Provider, error) {
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if err := validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.ProviderTypeID, validation.Required),
		validation.Field(&req.DisplayName, validation.Required, validation.Length(1, config.MaxNameLength)),
		validation.Field(&req.Headline, validation.Length(0, config.MaxNameLength)),
		validation.Field(&req.Bio, validation.Length(0, config.MaxBioLength)),
		validation.Field(&req.Location, validation.Length(0, config.MaxNameLength)),
		validation.Field(&req.Website, validation.NilOrNotEmpty, is.URL),
	); err != nil {
		return nil, invalid(err)
	}

	provider := &models.Provider{
		UserID:         req.UserID,
		ProviderTypeID: req.ProviderTypeID,
		DisplayName:    req.DisplayName,
		Headline:       strings.TrimSpace(req.Headline),
		Bio:            req.Bio,
		Location:       strings.TrimSpace(req.Location),
		Website:        trimmed(req.Website),
	}
	if err := s.providerRepo.Create(ctx, provider); err != nil {
		return nil, err
	}

	s.search.IndexProvider(providerRecord(provider))
	s.logger.Info("provider created",
		"id", provider.ID,
		"user_id", provider.UserID,
		"type_id", provider.ProviderTypeID,
	)

	return provider, nil
}

// GetProvider returns the provider's full profile
func (s *providerService) GetProvider(ctx context.Context, id, viewerID string) (*models.ProviderFullProfile, error) {
	return s.rpcRepo.ProviderFullProfile(ctx, id, viewerID)
}

// SearchProviders ranks by the search index when a query is given and
// lists newest first otherwise.
func (s *providerService) SearchProviders(ctx context.Context, filter models.ProviderFilter, viewerID string) (*models.ProviderPage, error) {
	filter.Page.ApplyDefaults()
	filter.Query = strings.TrimSpace(filter.Query)

	if filter.Query == "" {
		providers, err := s.providerRepo.List(ctx, filter, viewerID)
		if err != nil {
			return nil, err
		}
		return &models.ProviderPage{Providers: providers, Total: len(providers)}, nil
	}

	resp := s.search.Search(ctx, search.Query{
		Text:   filter.Query,
		TypeID: filter.TypeID,
		Limit:  filter.Page.Limit,
		Offset: filter.Page.Offset,
	})

	ids := make([]string, len(resp.Hits))
	for i, hit := range resp.Hits {
		ids[i] = hit.ID
	}
	providers, err := s.providerRepo.ListByIDs(ctx, ids, viewerID)
	if err != nil {
		return nil, err
	}

	return &models.ProviderPage{Providers: providers, Total: resp.Total}, nil
}

// UpdateProvider applies a partial update
func (s *providerService) UpdateProvider(ctx context.Context, id string, actor services.Actor, req *services.UpdateProviderRequest) (*models.Provider, error) {
	req.DisplayName = trimmed(req.DisplayName)
	if err := validation.ValidateStruct(req,
		validation.Field(&req.ProviderTypeID, validation.NilOrNotEmpty),
		validation.Field(&req.DisplayName, validation.NilOrNotEmpty, validation.Length(1, config.MaxNameLength)),
		validation.Field(&req.Headline, validation.Length(0, config.MaxNameLength)),
		validation.Field(&req.Bio, validation.Length(0, config.MaxBioLength)),
		validation.Field(&req.Location, validation.Length(0, config.MaxNameLength)),
	); err != nil {
		return nil, invalid(err)
	}
	if req.Website.Present && req.Website.Value != nil {
		if err := validation.Validate(*req.Website.Value, validation.Required, is.URL); err != nil {
			return nil, invalid(validation.Errors{"website": err})
		}
	}

	if err := s.authorizer.CanModifyProvider(ctx, actor, id); err != nil {
		return nil, err
	}

	provider, err := s.providerRepo.GetByID(ctx, id, actor.UserID)
	if err != nil {
		return nil, err
	}

	if req.ProviderTypeID != nil {
		provider.ProviderTypeID = *req.ProviderTypeID
	}
	if req.DisplayName != nil {
		provider.DisplayName = *req.DisplayName
	}
	if req.Headline != nil {
		provider.Headline = strings.TrimSpace(*req.Headline)
	}
	if req.Bio != nil {
		provider.Bio = *req.Bio
	}
	if req.Location != nil {
		provider.Location = strings.TrimSpace(*req.Location)
	}
	req.Website.Apply(&provider.Website)

	if err := s.providerRepo.Update(ctx, provider); err != nil {
		return nil, err
	}

	s.search.IndexProvider(providerRecord(provider))
	s.logger.Info("provider updated", "id", id, "user_id", actor.UserID)

	return provider, nil
}

// SetVerified marks a provider as verified by an admin
func (s *providerService) SetVerified(ctx context.Context, id string, verified bool) error {
	if err := s.providerRepo.SetVerified(ctx, id, verified); err != nil {
		return err
	}

	if provider, err := s.providerRepo.GetByID(ctx, id, ""); err == nil {
		s.search.IndexProvider(providerRecord(provider))
	}
	s.logger.Info("provider verification changed", "id", id, "verified", verified)
	return nil
}

// Follow makes userID follow the provider
func (s *providerService) Follow(ctx context.Context, userID, providerID string) error {
	if err := s.followRepo.FollowProvider(ctx, userID, providerID); err != nil {
		return err
	}
	s.logger.Info("provider followed", "user_id", userID, "provider_id", providerID)
	return nil
}

// Unfollow removes the follow, if any
func (s *providerService) Unfollow(ctx context.Context, userID, providerID string) error {
	if err := s.followRepo.UnfollowProvider(ctx, userID, providerID); err != nil {
		return err
	}
	s.logger.Info("provider unfollowed", "user_id", userID, "provider_id", providerID)
	return nil
}

// Reindex rebuilds the search index from the database
func (s *providerService) Reindex(ctx context.Context) (int, error) {
	providers, err := s.providerRepo.All(ctx)
	if err != nil {
		return 0, err
	}

	records := make([]search.ProviderRecord, len(providers))
	for i := range providers {
		records[i] = providerRecord(&providers[i])
	}

	n, err := s.search.Reindex(records)
	if err != nil {
		return n, err
	}

	s.logger.Info("provider index rebuilt", "providers", n)
	return n, nil
}

func providerRecord(p *models.Provider) search.ProviderRecord {
	return search.ProviderRecord{
		ID:             p.ID,
		ProviderTypeID: p.ProviderTypeID,
		DisplayName:    p.DisplayName,
		Headline:       p.Headline,
		Bio:            p.Bio,
		Location:       p.Location,
		Verified:       p.Verified,
		FollowerCount:  p.FollowerCount,
	}
}
