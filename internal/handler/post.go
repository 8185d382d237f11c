package handler

import (
	"log/slog"
	"net/http"

	"agora/internal/domain/services"
	"agora/internal/httputil"
)

// PostHandler handles forum post and comment thread HTTP requests
type PostHandler struct {
	postService    services.PostService
	commentService services.CommentService
	logger         *slog.Logger
}

// NewPostHandler creates a new post handler
func NewPostHandler(postService services.PostService, commentService services.CommentService, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		postService:    postService,
		commentService: commentService,
		logger:         logger,
	}
}

// updatePostBody distinguishes an absent categoryId from null
type updatePostBody struct {
	Title      *string                 `json:"title"`
	Body       *string                 `json:"body"`
	CategoryID httputil.OptionalString `json:"categoryId"`
}

// ListPosts returns a page of posts, newest first
// GET /api/posts?category=&author=&limit=&offset=
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	page, ok := pageFrom(w, r)
	if !ok {
		return
	}

	posts, err := h.postService.ListPosts(r.Context(), &services.ListPostsRequest{
		CategoryID: r.URL.Query().Get("category"),
		AuthorID:   r.URL.Query().Get("author"),
		Page:       page,
	}, httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, posts)
}

// CreatePost creates a post authored by the caller
// POST /api/posts
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req services.CreatePostRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.AuthorID = httputil.GetUserID(r)

	post, err := h.postService.CreatePost(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, post)
}

// GetPost retrieves a post with the caller's vote
// GET /api/posts/{id}
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Post ID")
	if !ok {
		return
	}

	post, err := h.postService.GetPost(r.Context(), id, httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, post)
}

// UpdatePost applies a partial update
// PATCH /api/posts/{id}
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Post ID")
	if !ok {
		return
	}

	var body updatePostBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	post, err := h.postService.UpdatePost(r.Context(), id, actorFrom(r), &services.UpdatePostRequest{
		Title:      body.Title,
		Body:       body.Body,
		CategoryID: body.CategoryID.Domain(),
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, post)
}

// DeletePost deletes a post. Also mounted under /api/admin for moderation.
// DELETE /api/posts/{id}
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Post ID")
	if !ok {
		return
	}

	if err := h.postService.DeletePost(r.Context(), id, actorFrom(r)); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// VotePost sets the caller's vote
// PUT /api/posts/{id}/vote
func (h *PostHandler) VotePost(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Post ID")
	if !ok {
		return
	}

	var req voteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tally, err := h.postService.VotePost(r.Context(), id, httputil.GetUserID(r), req.Value)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tally)
}

// GetThread returns the nested comment tree of a post
// GET /api/posts/{id}/comments
func (h *PostHandler) GetThread(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Post ID")
	if !ok {
		return
	}

	thread, err := h.commentService.GetThread(r.Context(), id, httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, thread)
}

// CreateComment replies to a post or to one of its comments
// POST /api/posts/{id}/comments
func (h *PostHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Post ID")
	if !ok {
		return
	}

	var req services.CreateCommentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.PostID = id
	req.AuthorID = httputil.GetUserID(r)

	comment, err := h.commentService.CreateComment(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, comment)
}
