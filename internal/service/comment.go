package service

import (
	"context"
	"log/slog"

	"agora/internal/config"
	"agora/internal/domain/models"
	"agora/internal/domain/repositories"
	"agora/internal/domain/services"
	"agora/internal/tree"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// commentService implements the CommentService interface
type commentService struct {
	commentRepo repositories.CommentRepository
	postRepo    repositories.PostRepository
	voteRepo    repositories.VoteRepository
	txManager   repositories.TransactionManager
	authorizer  services.ResourceAuthorizer
	logger      *slog.Logger
}

// NewCommentService creates a new comment service
func NewCommentService(
	commentRepo repositories.CommentRepository,
	postRepo repositories.PostRepository,
	voteRepo repositories.VoteRepository,
	txManager repositories.TransactionManager,
	authorizer services.ResourceAuthorizer,
	logger *slog.Logger,
) services.CommentService {
	return &commentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		voteRepo:    voteRepo,
		txManager:   txManager,
		authorizer:  authorizer,
		logger:      logger,
	}
}

// CreateComment adds a comment to a post, optionally as a reply
func (s *commentService) CreateComment(ctx context.Context, req *services.CreateCommentRequest) (*models.Comment, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.PostID, validation.Required),
		validation.Field(&req.AuthorID, validation.Required),
		validation.Field(&req.ParentID, validation.NilOrNotEmpty),
		validation.Field(&req.Body, validation.Required, validation.By(notBlank), validation.Length(1, config.MaxCommentBodyLength)),
	); err != nil {
		return nil, invalid(err)
	}

	comment := &models.Comment{
		PostID:   req.PostID,
		AuthorID: req.AuthorID,
		ParentID: req.ParentID,
		Body:     req.Body,
		Children: []*models.Comment{},
	}

	// Comment insert and post comment_count move together
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		return s.commentRepo.Create(ctx, comment)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("comment created",
		"id", comment.ID,
		"post_id", comment.PostID,
		"parent_id", comment.ParentID,
		"author_id", comment.AuthorID,
	)

	return comment, nil
}

// GetThread returns the nested comment tree of a post
func (s *commentService) GetThread(ctx context.Context, postID, viewerID string) (*models.CommentThread, error) {
	// 404 for unknown posts instead of an empty thread
	if _, err := s.postRepo.GetByID(ctx, postID, viewerID); err != nil {
		return nil, err
	}

	flat, err := s.commentRepo.ListByPost(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}

	forest := tree.Assemble(flat)
	if len(forest.Orphans) > 0 || len(forest.Cycles) > 0 {
		s.logger.Warn("comment thread has unresolved parents",
			"post_id", postID,
			"orphans", forest.Orphans,
			"cycles", forest.Cycles,
		)
	}

	return &models.CommentThread{
		PostID:   postID,
		Total:    len(flat),
		Comments: forest.Roots,
	}, nil
}

// DeleteComment deletes a comment and its replies
func (s *commentService) DeleteComment(ctx context.Context, id string, actor services.Actor) error {
	if err := s.authorizer.CanModifyComment(ctx, actor, id); err != nil {
		return err
	}

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		return s.commentRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("comment deleted",
		"id", id,
		"user_id", actor.UserID,
		"moderated", actor.IsAdmin(),
	)

	return nil
}

// VoteComment sets the user's vote on a comment
func (s *commentService) VoteComment(ctx context.Context, id, userID string, value int) (*models.VoteTally, error) {
	return castVote(ctx, s.txManager, s.voteRepo, s.logger, models.Vote{
		TargetType: models.VoteTargetComment,
		TargetID:   id,
		UserID:     userID,
		Value:      value,
	})
}
