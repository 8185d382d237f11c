package handler

import (
	"log/slog"
	"net/http"

	"agora/internal/domain/services"
	"agora/internal/httputil"
)

// CommentHandler handles comment HTTP requests that are not scoped to a post
type CommentHandler struct {
	commentService services.CommentService
	logger         *slog.Logger
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(commentService services.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		logger:         logger,
	}
}

// DeleteComment deletes a comment and its replies
// DELETE /api/comments/{id}
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Comment ID")
	if !ok {
		return
	}

	if err := h.commentService.DeleteComment(r.Context(), id, actorFrom(r)); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// VoteComment sets the caller's vote
// PUT /api/comments/{id}/vote
func (h *CommentHandler) VoteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Comment ID")
	if !ok {
		return
	}

	var req voteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tally, err := h.commentService.VoteComment(r.Context(), id, httputil.GetUserID(r), req.Value)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tally)
}
