package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"agora/internal/cache"
	"agora/internal/config"
	"agora/internal/domain"
	"agora/internal/domain/models"
	"agora/internal/domain/repositories"
	"agora/internal/domain/services"
	"agora/internal/tree"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// categoryService implements the CategoryService interface
type categoryService struct {
	categoryRepo repositories.CategoryRepository
	cache        cache.Cache
	logger       *slog.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(
	categoryRepo repositories.CategoryRepository,
	c cache.Cache,
	logger *slog.Logger,
) services.CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		cache:        c,
		logger:       logger,
	}
}

// ListCategories returns the flat category list
func (s *categoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categoryRepo.List(ctx)
}

// GetTree returns the assembled hierarchy. The cache is filled on a miss and
// cleared by writes and by realtime category changes.
func (s *categoryService) GetTree(ctx context.Context) ([]*models.Category, error) {
	var roots []*models.Category
	err := s.cache.Get(ctx, cache.KeyCategoryTree, &roots)
	if err == nil {
		return roots, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn("category tree cache read failed", "error", err)
	}

	flat, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	forest := tree.Assemble(flat)
	if len(forest.Orphans) > 0 || len(forest.Cycles) > 0 {
		s.logger.Warn("category hierarchy has unresolved parents",
			"orphans", forest.Orphans,
			"cycles", forest.Cycles,
		)
	}

	if err := s.cache.Set(ctx, cache.KeyCategoryTree, forest.Roots); err != nil {
		s.logger.Warn("category tree cache write failed", "error", err)
	}
	return forest.Roots, nil
}

// CreateCategory creates a category. The slug is derived from the name when omitted.
func (s *categoryService) CreateCategory(ctx context.Context, req *services.CreateCategoryRequest) (*models.Category, error) {
	req.Name = strings.TrimSpace(req.Name)
	if strings.TrimSpace(req.Slug) == "" {
		req.Slug = slugify(req.Name)
	}

	if err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxNameLength)),
		validation.Field(&req.Slug, validation.Required, validation.Match(slugPattern).Error("must be lowercase words separated by dashes")),
		validation.Field(&req.ParentID, validation.NilOrNotEmpty),
		validation.Field(&req.Description, validation.Length(0, config.MaxBioLength)),
	); err != nil {
		return nil, invalid(err)
	}

	category := &models.Category{
		ParentID:    req.ParentID,
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		SortOrder:   req.SortOrder,
		Children:    []*models.Category{},
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	s.invalidateTree(ctx)
	s.logger.Info("category created",
		"id", category.ID,
		"slug", category.Slug,
		"parent_id", category.ParentID,
	)

	return category, nil
}

// UpdateCategory applies a partial update. Moving a category under one of its
// own descendants is rejected.
func (s *categoryService) UpdateCategory(ctx context.Context, id string, req *services.UpdateCategoryRequest) (*models.Category, error) {
	req.Name = trimmed(req.Name)
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.NilOrNotEmpty, validation.Length(1, config.MaxNameLength)),
		validation.Field(&req.Slug, validation.NilOrNotEmpty, validation.Match(slugPattern).Error("must be lowercase words separated by dashes")),
		validation.Field(&req.Description, validation.Length(0, config.MaxBioLength)),
	); err != nil {
		return nil, invalid(err)
	}

	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ParentID.Present && req.ParentID.Value != nil {
		if err := s.checkParent(ctx, id, *req.ParentID.Value); err != nil {
			return nil, err
		}
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Slug != nil {
		category.Slug = *req.Slug
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.SortOrder != nil {
		category.SortOrder = *req.SortOrder
	}
	req.ParentID.Apply(&category.ParentID)

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}

	s.invalidateTree(ctx)
	s.logger.Info("category updated",
		"id", id,
		"parent_id", category.ParentID,
	)

	return category, nil
}

// checkParent rejects parentID when it is id itself or one of its descendants
func (s *categoryService) checkParent(ctx context.Context, id, parentID string) error {
	if parentID == id {
		return &domain.ValidationError{Message: "category cannot be its own parent"}
	}

	flat, err := s.categoryRepo.List(ctx)
	if err != nil {
		return err
	}
	roots := tree.Build(flat)
	self := tree.Find(roots, id)
	if self == nil {
		return nil
	}
	if tree.Find(self.Children, parentID) != nil {
		return &domain.ValidationError{Message: "category cannot be moved under its own descendant"}
	}
	return nil
}

// DeleteCategory deletes an empty category
func (s *categoryService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateTree(ctx)
	s.logger.Info("category deleted", "id", id)

	return nil
}

func (s *categoryService) invalidateTree(ctx context.Context) {
	if err := s.cache.Delete(ctx, cache.KeyCategoryTree); err != nil {
		s.logger.Warn("category tree cache invalidation failed", "error", err)
	}
}
