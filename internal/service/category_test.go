package service

import (
	"context"
	"errors"
	"testing"

	"agora/internal/cache"
	"agora/internal/domain"
	"agora/internal/domain/models"
	"agora/internal/domain/services"
)

func categoryFixture() (*fakeCategories, *mapCache, services.CategoryService) {
	repo := &fakeCategories{items: []models.Category{
		{ID: "root", Name: "Root", Slug: "root"},
		{ID: "child", Name: "Child", Slug: "child", ParentID: strPtr("root")},
		{ID: "grandchild", Name: "Grandchild", Slug: "grandchild", ParentID: strPtr("child")},
		{ID: "other", Name: "Other", Slug: "other"},
	}}
	c := newMapCache()
	return repo, c, NewCategoryService(repo, c, discard())
}

func TestGetTree_CachesUntilWrite(t *testing.T) {
	repo, c, svc := categoryFixture()
	ctx := context.Background()

	roots, err := svc.GetTree(ctx)
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	if len(roots) != 2 || roots[0].ID != "root" || roots[0].Children[0].Children[0].ID != "grandchild" {
		t.Fatalf("unexpected tree: %+v", roots)
	}
	if _, err := svc.GetTree(ctx); err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	if repo.listCalls != 1 {
		t.Errorf("List called %d times, want 1 (second read from cache)", repo.listCalls)
	}

	if _, err := svc.CreateCategory(ctx, &services.CreateCategoryRequest{Name: "New Things"}); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if c.has(cache.KeyCategoryTree) {
		t.Errorf("tree still cached after create")
	}
	roots, err = svc.GetTree(ctx)
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	if len(roots) != 3 {
		t.Errorf("got %d roots after create, want 3", len(roots))
	}
}

func TestCreateCategory_Slug(t *testing.T) {
	tests := []struct {
		name     string
		req      services.CreateCategoryRequest
		wantSlug string
		wantErr  bool
	}{
		{name: "derived", req: services.CreateCategoryRequest{Name: "  Wedding Photos! "}, wantSlug: "wedding-photos"},
		{name: "explicit", req: services.CreateCategoryRequest{Name: "Gear", Slug: "gear-talk"}, wantSlug: "gear-talk"},
		{name: "bad slug", req: services.CreateCategoryRequest{Name: "Gear", Slug: "Gear Talk"}, wantErr: true},
		{name: "no name", req: services.CreateCategoryRequest{Name: "  "}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, svc := categoryFixture()
			req := tt.req
			got, err := svc.CreateCategory(context.Background(), &req)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrValidation) {
					t.Errorf("err = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateCategory: %v", err)
			}
			if got.Slug != tt.wantSlug {
				t.Errorf("Slug = %q, want %q", got.Slug, tt.wantSlug)
			}
		})
	}
}

func TestUpdateCategory_Parent(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		parent  *string
		wantErr bool
	}{
		{name: "move under sibling tree", id: "other", parent: strPtr("grandchild")},
		{name: "detach to root", id: "child", parent: nil},
		{name: "own parent", id: "child", parent: strPtr("child"), wantErr: true},
		{name: "under own child", id: "root", parent: strPtr("child"), wantErr: true},
		{name: "under own grandchild", id: "root", parent: strPtr("grandchild"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _, svc := categoryFixture()
			got, err := svc.UpdateCategory(context.Background(), tt.id, &services.UpdateCategoryRequest{
				ParentID: models.SetString(tt.parent),
			})
			if tt.wantErr {
				if !errors.Is(err, domain.ErrValidation) {
					t.Errorf("err = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("UpdateCategory: %v", err)
			}
			if (got.ParentID == nil) != (tt.parent == nil) {
				t.Errorf("ParentID = %v, want %v", got.ParentID, tt.parent)
			}
			stored, _ := repo.GetByID(context.Background(), tt.id)
			if (stored.ParentID == nil) != (tt.parent == nil) {
				t.Errorf("stored ParentID = %v, want %v", stored.ParentID, tt.parent)
			}
		})
	}
}

func TestUpdateCategory_AbsentParentUnchanged(t *testing.T) {
	repo, _, svc := categoryFixture()

	name := "Renamed"
	if _, err := svc.UpdateCategory(context.Background(), "child", &services.UpdateCategoryRequest{Name: &name}); err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}
	stored, _ := repo.GetByID(context.Background(), "child")
	if stored.ParentID == nil || *stored.ParentID != "root" {
		t.Errorf("ParentID changed to %v", stored.ParentID)
	}
	if stored.Name != "Renamed" {
		t.Errorf("Name = %q", stored.Name)
	}
}
