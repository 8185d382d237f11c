package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"agora/internal/config"
	"agora/internal/domain"
	"agora/internal/domain/models"
	"agora/internal/domain/repositories"
	"agora/internal/domain/services"
	"agora/internal/storage"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const maxPortfolioTags = 12

// portfolioService implements the PortfolioService interface
type portfolioService struct {
	portfolioRepo repositories.PortfolioRepository
	providerRepo  repositories.ProviderRepository
	rpcRepo       repositories.RPCRepository
	authorizer    services.ResourceAuthorizer
	media         MediaStore
	logger        *slog.Logger
}

// NewPortfolioService creates a new portfolio service. media may be nil when
// storage is not configured.
func NewPortfolioService(
	portfolioRepo repositories.PortfolioRepository,
	providerRepo repositories.ProviderRepository,
	rpcRepo repositories.RPCRepository,
	authorizer services.ResourceAuthorizer,
	media MediaStore,
	logger *slog.Logger,
) services.PortfolioService {
	return &portfolioService{
		portfolioRepo: portfolioRepo,
		providerRepo:  providerRepo,
		rpcRepo:       rpcRepo,
		authorizer:    authorizer,
		media:         media,
		logger:        logger,
	}
}

// CreatePortfolio creates a portfolio, optionally attached to the owner's provider listing
func (s *portfolioService) CreatePortfolio(ctx context.Context, req *services.CreatePortfolioRequest) (*models.Portfolio, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Tags = normalizeTags(req.Tags)
	if err := validation.ValidateStruct(req,
		validation.Field(&req.OwnerID, validation.Required),
		validation.Field(&req.Title, validation.Required, validation.Length(1, config.MaxNameLength)),
		validation.Field(&req.Description, validation.Length(0, config.MaxPostBodyLength)),
		validation.Field(&req.Tags, validation.Length(0, maxPortfolioTags)),
		validation.Field(&req.ProviderID, validation.NilOrNotEmpty),
	); err != nil {
		return nil, invalid(err)
	}

	if req.ProviderID != nil {
		if err := s.checkProviderOwner(ctx, *req.ProviderID, req.OwnerID); err != nil {
			return nil, err
		}
	}

	portfolio := &models.Portfolio{
		OwnerID:     req.OwnerID,
		ProviderID:  req.ProviderID,
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Media:       []models.PortfolioMedia{},
	}
	if err := s.portfolioRepo.Create(ctx, portfolio); err != nil {
		return nil, err
	}

	s.logger.Info("portfolio created",
		"id", portfolio.ID,
		"owner_id", portfolio.OwnerID,
		"provider_id", portfolio.ProviderID,
	)

	return portfolio, nil
}

// checkProviderOwner rejects attaching a portfolio to someone else's listing
func (s *portfolioService) checkProviderOwner(ctx context.Context, providerID, ownerID string) error {
	provider, err := s.providerRepo.GetByID(ctx, providerID, "")
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.ValidationError{Message: "providerId: provider does not exist"}
		}
		return err
	}
	if provider.UserID != ownerID {
		return &domain.ValidationError{Message: "providerId: provider belongs to another user"}
	}
	return nil
}

// GetPortfolio returns a portfolio with its media and counts a view for
// everyone but the owner.
func (s *portfolioService) GetPortfolio(ctx context.Context, id, viewerID string) (*models.Portfolio, error) {
	portfolio, err := s.portfolioRepo.GetByID(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}

	if viewerID != portfolio.OwnerID {
		n, err := s.rpcRepo.RecordPortfolioImpression(ctx, id, viewerID)
		if err != nil {
			// The page still renders without the count bump
			s.logger.Warn("record impression failed", "portfolio_id", id, "error", err)
		} else {
			portfolio.ImpressionCount = n
		}
	}

	return portfolio, nil
}

// ListPortfolios returns a page of portfolios, newest first
func (s *portfolioService) ListPortfolios(ctx context.Context, req *services.ListPortfoliosRequest, viewerID string) ([]models.Portfolio, error) {
	page := req.Page
	page.ApplyDefaults()

	return s.portfolioRepo.List(ctx, repositories.PortfolioFilter{
		OwnerID:    req.OwnerID,
		ProviderID: req.ProviderID,
		Page:       page,
	}, viewerID)
}

// UpdatePortfolio applies a partial update
func (s *portfolioService) UpdatePortfolio(ctx context.Context, id string, actor services.Actor, req *services.UpdatePortfolioRequest) (*models.Portfolio, error) {
	req.Title = trimmed(req.Title)
	if req.Tags != nil {
		tags := normalizeTags(*req.Tags)
		req.Tags = &tags
	}
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.NilOrNotEmpty, validation.Length(1, config.MaxNameLength)),
		validation.Field(&req.Description, validation.Length(0, config.MaxPostBodyLength)),
		validation.Field(&req.Tags, validation.Length(0, maxPortfolioTags)),
	); err != nil {
		return nil, invalid(err)
	}

	if err := s.authorizer.CanModifyPortfolio(ctx, actor, id); err != nil {
		return nil, err
	}

	portfolio, err := s.portfolioRepo.GetByID(ctx, id, actor.UserID)
	if err != nil {
		return nil, err
	}

	if req.ProviderID.Present && req.ProviderID.Value != nil {
		if err := s.checkProviderOwner(ctx, *req.ProviderID.Value, portfolio.OwnerID); err != nil {
			return nil, err
		}
	}

	if req.Title != nil {
		portfolio.Title = *req.Title
	}
	if req.Description != nil {
		portfolio.Description = *req.Description
	}
	if req.Tags != nil {
		portfolio.Tags = *req.Tags
	}
	req.ProviderID.Apply(&portfolio.ProviderID)

	if err := s.portfolioRepo.Update(ctx, portfolio); err != nil {
		return nil, err
	}

	s.logger.Info("portfolio updated", "id", id, "user_id", actor.UserID)
	return portfolio, nil
}

// DeletePortfolio deletes a portfolio and removes its media objects
func (s *portfolioService) DeletePortfolio(ctx context.Context, id string, actor services.Actor) error {
	if err := s.authorizer.CanModifyPortfolio(ctx, actor, id); err != nil {
		return err
	}

	media, err := s.portfolioRepo.ListMedia(ctx, id)
	if err != nil {
		return err
	}

	if err := s.portfolioRepo.Delete(ctx, id); err != nil {
		return err
	}

	for _, m := range media {
		removeMedia(ctx, s.media, m.URL, s.logger)
	}

	s.logger.Info("portfolio deleted",
		"id", id,
		"user_id", actor.UserID,
		"media", len(media),
		"moderated", actor.IsAdmin(),
	)
	return nil
}

// AddMedia uploads a file and appends it to the portfolio
func (s *portfolioService) AddMedia(ctx context.Context, portfolioID string, actor services.Actor, upload services.Upload) (*models.PortfolioMedia, error) {
	if err := s.authorizer.CanModifyPortfolio(ctx, actor, portfolioID); err != nil {
		return nil, err
	}

	url, err := uploadMedia(ctx, s.media, storage.BucketPortfolioMedia, actor.UserID, upload, false)
	if err != nil {
		return nil, err
	}

	media := &models.PortfolioMedia{
		PortfolioID: portfolioID,
		URL:         url,
		ContentType: upload.ContentType,
	}
	if err := s.portfolioRepo.AddMedia(ctx, media); err != nil {
		removeMedia(ctx, s.media, url, s.logger)
		return nil, err
	}

	s.logger.Info("portfolio media added",
		"portfolio_id", portfolioID,
		"media_id", media.ID,
		"position", media.Position,
	)
	return media, nil
}

// SetCollected adds or removes the portfolio from the user's collection
func (s *portfolioService) SetCollected(ctx context.Context, portfolioID, userID string, collected bool) (int, error) {
	n, err := s.portfolioRepo.SetCollected(ctx, portfolioID, userID, collected)
	if err != nil {
		return 0, err
	}
	s.logger.Info("portfolio collect changed",
		"portfolio_id", portfolioID,
		"user_id", userID,
		"collected", collected,
	)
	return n, nil
}

// normalizeTags lowercases, trims and de-duplicates tags, keeping first-seen order
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
