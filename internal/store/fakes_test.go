package store

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"agora/internal/client"
	"agora/internal/domain/models"
)

var errBoom = errors.New("boom")

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func strPtr(s string) *string { return &s }

// fakeAPI answers from canned data. Hooks, when set, replace the default
// behaviour so tests can block or fail individual calls.
type fakeAPI struct {
	posts     []models.Post
	thread    *models.CommentThread
	tree      []*models.Category
	profiles  map[string]models.ProfileWithStats
	providers []models.Provider

	listPosts     func(ctx context.Context, p client.ListPostsParams) ([]models.Post, error)
	votePost      func(ctx context.Context, id string, value int) error
	createComment func(ctx context.Context, postID string, parentID *string, body string) (*models.Comment, error)
	follow        func(ctx context.Context, id string, follow bool) error
	categoryTree  func(ctx context.Context) ([]*models.Category, error)
}

func (f *fakeAPI) ListPosts(ctx context.Context, p client.ListPostsParams) ([]models.Post, error) {
	if f.listPosts != nil {
		return f.listPosts(ctx, p)
	}
	return f.posts, nil
}

func (f *fakeAPI) VotePost(ctx context.Context, id string, value int) (*models.VoteTally, error) {
	if f.votePost != nil {
		if err := f.votePost(ctx, id, value); err != nil {
			return nil, err
		}
	}
	return &models.VoteTally{MyVote: value}, nil
}

func (f *fakeAPI) GetThread(ctx context.Context, postID string) (*models.CommentThread, error) {
	if f.thread == nil {
		return nil, errBoom
	}
	return f.thread, nil
}

func (f *fakeAPI) CreateComment(ctx context.Context, postID string, parentID *string, body string) (*models.Comment, error) {
	if f.createComment != nil {
		return f.createComment(ctx, postID, parentID, body)
	}
	return &models.Comment{ID: "srv-1", PostID: postID, ParentID: parentID, Body: body, Children: []*models.Comment{}}, nil
}

func (f *fakeAPI) VoteComment(ctx context.Context, id string, value int) (*models.VoteTally, error) {
	return &models.VoteTally{MyVote: value}, nil
}

func (f *fakeAPI) CategoryTree(ctx context.Context) ([]*models.Category, error) {
	if f.categoryTree != nil {
		return f.categoryTree(ctx)
	}
	return f.tree, nil
}

func (f *fakeAPI) GetProfile(ctx context.Context, id string) (*models.ProfileWithStats, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, &client.APIError{Status: 404, Detail: "profile not found"}
	}
	return &p, nil
}

func (f *fakeAPI) SetFollowingUser(ctx context.Context, userID string, follow bool) error {
	if f.follow != nil {
		return f.follow(ctx, userID, follow)
	}
	return nil
}

func (f *fakeAPI) SearchProviders(ctx context.Context, p client.SearchProvidersParams) (*models.ProviderPage, error) {
	return &models.ProviderPage{Providers: f.providers, Total: len(f.providers)}, nil
}

func (f *fakeAPI) SetFollowingProvider(ctx context.Context, providerID string, follow bool) error {
	if f.follow != nil {
		return f.follow(ctx, providerID, follow)
	}
	return nil
}

func (f *fakeAPI) ListPortfolios(ctx context.Context, p client.ListPortfoliosParams) ([]models.Portfolio, error) {
	return nil, nil
}

func (f *fakeAPI) SetCollected(ctx context.Context, portfolioID string, collected bool) (*client.CollectResult, error) {
	return &client.CollectResult{IsCollected: collected}, nil
}
