// Package seed loads the reference catalogue (categories and provider types)
// and the optional admin account into a fresh database.
package seed

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"agora/internal/domain"
	"agora/internal/domain/models"
	"agora/internal/domain/services"
)

//go:embed catalogue/*.yaml
var catalogueFiles embed.FS

// CategorySeed is a catalogue category with its nested children
type CategorySeed struct {
	Name        string         `yaml:"name"`
	Slug        string         `yaml:"slug"`
	Description string         `yaml:"description"`
	SortOrder   int            `yaml:"sort_order"`
	Children    []CategorySeed `yaml:"children"`
}

// ProviderTypeSeed is a catalogue provider type
type ProviderTypeSeed struct {
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
}

// Catalogue is the reference data applied by the seeder
type Catalogue struct {
	Categories    []CategorySeed     `yaml:"categories"`
	ProviderTypes []ProviderTypeSeed `yaml:"provider_types"`
}

// LoadCatalogue reads the embedded catalogue
func LoadCatalogue() (*Catalogue, error) {
	data, err := catalogueFiles.ReadFile("catalogue/catalogue.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read seed catalogue: %w", err)
	}
	return ParseCatalogue(data)
}

// ParseCatalogue decodes a catalogue and rejects duplicate slugs
func ParseCatalogue(data []byte) (*Catalogue, error) {
	var c Catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal seed catalogue: %w", err)
	}

	seen := make(map[string]bool)
	var check func([]CategorySeed) error
	check = func(nodes []CategorySeed) error {
		for _, n := range nodes {
			if n.Name == "" {
				return fmt.Errorf("category %q: missing name", n.Slug)
			}
			if seen[n.Slug] {
				return fmt.Errorf("category %q: duplicate slug", n.Slug)
			}
			seen[n.Slug] = true
			if err := check(n.Children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := check(c.Categories); err != nil {
		return nil, err
	}

	types := make(map[string]bool)
	for _, pt := range c.ProviderTypes {
		if types[pt.Slug] {
			return nil, fmt.Errorf("provider type %q: duplicate slug", pt.Slug)
		}
		types[pt.Slug] = true
	}
	return &c, nil
}

// CategoryWriter is the part of the category service the seeder needs
type CategoryWriter interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, req *services.CreateCategoryRequest) (*models.Category, error)
}

// ProviderTypeWriter is the part of the provider service the seeder needs
type ProviderTypeWriter interface {
	ListTypes(ctx context.Context) ([]models.ProviderType, error)
	CreateType(ctx context.Context, req *services.CreateProviderTypeRequest) (*models.ProviderType, error)
}

// AccountCreator creates accounts in the hosted auth service
type AccountCreator interface {
	FindUserIDByEmail(ctx context.Context, email string) (string, error)
	CreateUser(ctx context.Context, email, password string, appMetadata map[string]any) (string, error)
}

// Result counts what a run created
type Result struct {
	Categories    int
	ProviderTypes int
}

// Seeder applies the catalogue through the service layer so validation and
// cache invalidation run as they do for API writes. Rows whose slug already
// exists are left untouched.
type Seeder struct {
	categories CategoryWriter
	types      ProviderTypeWriter
	logger     *slog.Logger
}

// NewSeeder creates a catalogue seeder
func NewSeeder(categories CategoryWriter, types ProviderTypeWriter, logger *slog.Logger) *Seeder {
	return &Seeder{categories: categories, types: types, logger: logger}
}

// Seed applies every catalogue entry that is missing
func (s *Seeder) Seed(ctx context.Context, c *Catalogue) (Result, error) {
	var res Result

	existing, err := s.categories.ListCategories(ctx)
	if err != nil {
		return res, fmt.Errorf("list categories: %w", err)
	}
	bySlug := make(map[string]string, len(existing))
	for _, cat := range existing {
		bySlug[cat.Slug] = cat.ID
	}
	n, err := s.seedCategories(ctx, c.Categories, nil, bySlug)
	res.Categories = n
	if err != nil {
		return res, err
	}

	types, err := s.types.ListTypes(ctx)
	if err != nil {
		return res, fmt.Errorf("list provider types: %w", err)
	}
	typeSlugs := make(map[string]bool, len(types))
	for _, pt := range types {
		typeSlugs[pt.Slug] = true
	}
	for _, pt := range c.ProviderTypes {
		if typeSlugs[pt.Slug] {
			continue
		}
		created, err := s.types.CreateType(ctx, &services.CreateProviderTypeRequest{
			Name:        pt.Name,
			Slug:        pt.Slug,
			Description: pt.Description,
		})
		if err != nil {
			return res, fmt.Errorf("create provider type %s: %w", pt.Slug, err)
		}
		res.ProviderTypes++
		s.logger.Debug("seeded provider type", "id", created.ID, "slug", created.Slug)
	}

	s.logger.Info("catalogue seeded",
		"categories", res.Categories,
		"provider_types", res.ProviderTypes,
	)
	return res, nil
}

func (s *Seeder) seedCategories(ctx context.Context, nodes []CategorySeed, parentID *string, bySlug map[string]string) (int, error) {
	created := 0
	for _, node := range nodes {
		id, ok := bySlug[node.Slug]
		if !ok {
			cat, err := s.categories.CreateCategory(ctx, &services.CreateCategoryRequest{
				ParentID:    parentID,
				Name:        node.Name,
				Slug:        node.Slug,
				Description: node.Description,
				SortOrder:   node.SortOrder,
			})
			if err != nil {
				return created, fmt.Errorf("create category %s: %w", node.Slug, err)
			}
			id = cat.ID
			bySlug[node.Slug] = id
			created++
		}

		n, err := s.seedCategories(ctx, node.Children, &id, bySlug)
		created += n
		if err != nil {
			return created, err
		}
	}
	return created, nil
}

// EnsureAdmin creates an admin account for email unless one exists.
// Returns the user's ID and whether it was created.
func EnsureAdmin(ctx context.Context, accounts AccountCreator, email, password string) (string, bool, error) {
	id, err := accounts.FindUserIDByEmail(ctx, email)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", false, err
	}
	if password == "" {
		return "", false, fmt.Errorf("admin %s does not exist and no password was given: %w", email, domain.ErrValidation)
	}

	id, err = accounts.CreateUser(ctx, email, password, map[string]any{"role": "admin"})
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}
