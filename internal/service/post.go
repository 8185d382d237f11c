package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"agora/internal/config"
	"agora/internal/domain/models"
	"agora/internal/domain/repositories"
	"agora/internal/domain/services"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// postService implements the PostService interface
type postService struct {
	postRepo   repositories.PostRepository
	voteRepo   repositories.VoteRepository
	txManager  repositories.TransactionManager
	authorizer services.ResourceAuthorizer
	logger     *slog.Logger
}

// NewPostService creates a new post service
func NewPostService(
	postRepo repositories.PostRepository,
	voteRepo repositories.VoteRepository,
	txManager repositories.TransactionManager,
	authorizer services.ResourceAuthorizer,
	logger *slog.Logger,
) services.PostService {
	return &postService{
		postRepo:   postRepo,
		voteRepo:   voteRepo,
		txManager:  txManager,
		authorizer: authorizer,
		logger:     logger,
	}
}

// CreatePost creates a new post
func (s *postService) CreatePost(ctx context.Context, req *services.CreatePostRequest) (*models.Post, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.AuthorID, validation.Required),
		validation.Field(&req.Title, validation.Required, validation.By(notBlank), validation.Length(1, config.MaxPostTitleLength)),
		validation.Field(&req.Body, validation.Length(0, config.MaxPostBodyLength)),
	); err != nil {
		return nil, invalid(err)
	}

	post := &models.Post{
		AuthorID:   req.AuthorID,
		CategoryID: req.CategoryID,
		Title:      strings.TrimSpace(req.Title),
		Body:       req.Body,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	s.logger.Info("post created",
		"id", post.ID,
		"author_id", post.AuthorID,
		"category_id", post.CategoryID,
	)

	// Re-read for the author card
	return s.postRepo.GetByID(ctx, post.ID, req.AuthorID)
}

// GetPost retrieves a post by ID
func (s *postService) GetPost(ctx context.Context, id, viewerID string) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id, viewerID)
}

// ListPosts retrieves a page of posts, newest first
func (s *postService) ListPosts(ctx context.Context, req *services.ListPostsRequest, viewerID string) ([]models.Post, error) {
	page := req.Page
	page.ApplyDefaults()

	return s.postRepo.List(ctx, repositories.PostFilter{
		CategoryID: req.CategoryID,
		AuthorID:   req.AuthorID,
		Page:       page,
	}, viewerID)
}

// UpdatePost applies a partial update
func (s *postService) UpdatePost(ctx context.Context, id string, actor services.Actor, req *services.UpdatePostRequest) (*models.Post, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.NilOrNotEmpty, validation.By(notBlank), validation.Length(1, config.MaxPostTitleLength)),
		validation.Field(&req.Body, validation.Length(0, config.MaxPostBodyLength)),
	); err != nil {
		return nil, invalid(err)
	}

	if err := s.authorizer.CanModifyPost(ctx, actor, id); err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, id, actor.UserID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		post.Title = strings.TrimSpace(*req.Title)
	}
	if req.Body != nil {
		post.Body = *req.Body
	}
	req.CategoryID.Apply(&post.CategoryID)

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	s.logger.Info("post updated",
		"id", id,
		"user_id", actor.UserID,
	)

	return post, nil
}

// DeletePost deletes a post with its comments and votes
func (s *postService) DeletePost(ctx context.Context, id string, actor services.Actor) error {
	if err := s.authorizer.CanModifyPost(ctx, actor, id); err != nil {
		return err
	}

	if err := s.postRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("post deleted",
		"id", id,
		"user_id", actor.UserID,
		"moderated", actor.IsAdmin(),
	)

	return nil
}

// VotePost sets the user's vote on a post
func (s *postService) VotePost(ctx context.Context, id, userID string, value int) (*models.VoteTally, error) {
	return castVote(ctx, s.txManager, s.voteRepo, s.logger, models.Vote{
		TargetType: models.VoteTargetPost,
		TargetID:   id,
		UserID:     userID,
		Value:      value,
	})
}

// castVote validates and stores a vote in its own transaction.
// The vote row and the denormalized tally change together.
func castVote(
	ctx context.Context,
	txManager repositories.TransactionManager,
	voteRepo repositories.VoteRepository,
	logger *slog.Logger,
	vote models.Vote,
) (*models.VoteTally, error) {
	if err := validation.ValidateStruct(&vote,
		validation.Field(&vote.TargetID, validation.Required),
		validation.Field(&vote.UserID, validation.Required),
		validation.Field(&vote.Value, voteValue),
	); err != nil {
		return nil, invalid(err)
	}

	var tally *models.VoteTally
	err := txManager.ExecTx(ctx, func(ctx context.Context) error {
		var err error
		tally, err = voteRepo.Set(ctx, vote)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("vote on %s %s: %w", vote.TargetType, vote.TargetID, err)
	}

	logger.Debug("vote recorded",
		"target_type", vote.TargetType,
		"target_id", vote.TargetID,
		"user_id", vote.UserID,
		"value", vote.Value,
	)

	return tally, nil
}
