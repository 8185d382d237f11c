package handler

import (
	"log/slog"
	"net/http"

	"agora/internal/domain/services"
	"agora/internal/httputil"
)

// PortfolioHandler handles portfolio HTTP requests
type PortfolioHandler struct {
	portfolioService services.PortfolioService
	logger           *slog.Logger
}

// NewPortfolioHandler creates a new portfolio handler
func NewPortfolioHandler(portfolioService services.PortfolioService, logger *slog.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
		logger:           logger,
	}
}

type updatePortfolioBody struct {
	ProviderID  httputil.OptionalString `json:"providerId"`
	Title       *string                 `json:"title"`
	Description *string                 `json:"description"`
	Tags        *[]string               `json:"tags"`
}

type collectResponse struct {
	CollectCount int  `json:"collectCount"`
	IsCollected  bool `json:"isCollected"`
}

// ListPortfolios returns a page of portfolios
// GET /api/portfolios?owner=&provider=&limit=&offset=
func (h *PortfolioHandler) ListPortfolios(w http.ResponseWriter, r *http.Request) {
	page, ok := pageFrom(w, r)
	if !ok {
		return
	}

	portfolios, err := h.portfolioService.ListPortfolios(r.Context(), &services.ListPortfoliosRequest{
		OwnerID:    r.URL.Query().Get("owner"),
		ProviderID: r.URL.Query().Get("provider"),
		Page:       page,
	}, httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, portfolios)
}

// CreatePortfolio creates a portfolio owned by the caller
// POST /api/portfolios
func (h *PortfolioHandler) CreatePortfolio(w http.ResponseWriter, r *http.Request) {
	var req services.CreatePortfolioRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.OwnerID = httputil.GetUserID(r)

	portfolio, err := h.portfolioService.CreatePortfolio(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, portfolio)
}

// GetPortfolio returns a portfolio and records an impression
// GET /api/portfolios/{id}
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Portfolio ID")
	if !ok {
		return
	}

	portfolio, err := h.portfolioService.GetPortfolio(r.Context(), id, httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, portfolio)
}

// UpdatePortfolio applies a partial update
// PATCH /api/portfolios/{id}
func (h *PortfolioHandler) UpdatePortfolio(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Portfolio ID")
	if !ok {
		return
	}

	var body updatePortfolioBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	portfolio, err := h.portfolioService.UpdatePortfolio(r.Context(), id, actorFrom(r), &services.UpdatePortfolioRequest{
		ProviderID:  body.ProviderID.Domain(),
		Title:       body.Title,
		Description: body.Description,
		Tags:        body.Tags,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, portfolio)
}

// DeletePortfolio deletes a portfolio and its media
// DELETE /api/portfolios/{id}
func (h *PortfolioHandler) DeletePortfolio(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Portfolio ID")
	if !ok {
		return
	}

	if err := h.portfolioService.DeletePortfolio(r.Context(), id, actorFrom(r)); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddMedia uploads an image or video to a portfolio
// POST /api/portfolios/{id}/media (multipart, field "file")
func (h *PortfolioHandler) AddMedia(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Portfolio ID")
	if !ok {
		return
	}

	upload, cleanup, ok := parseUpload(w, r)
	if !ok {
		return
	}
	defer cleanup()

	media, err := h.portfolioService.AddMedia(r.Context(), id, actorFrom(r), upload)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, media)
}

// Collect adds the portfolio to the caller's collection
// PUT /api/portfolios/{id}/collect
func (h *PortfolioHandler) Collect(w http.ResponseWriter, r *http.Request) {
	h.setCollected(w, r, true)
}

// Uncollect removes the portfolio from the caller's collection
// DELETE /api/portfolios/{id}/collect
func (h *PortfolioHandler) Uncollect(w http.ResponseWriter, r *http.Request) {
	h.setCollected(w, r, false)
}

func (h *PortfolioHandler) setCollected(w http.ResponseWriter, r *http.Request, collected bool) {
	id, ok := PathParam(w, r, "id", "Portfolio ID")
	if !ok {
		return
	}

	n, err := h.portfolioService.SetCollected(r.Context(), id, httputil.GetUserID(r), collected)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, collectResponse{CollectCount: n, IsCollected: collected})
}
