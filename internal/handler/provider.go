package handler

import (
	"log/slog"
	"net/http"

	"agora/internal/domain/models"
	"agora/internal/domain/services"
	"agora/internal/httputil"
)

// ProviderHandler handles provider directory HTTP requests
type ProviderHandler struct {
	providerService services.ProviderService
	logger          *slog.Logger
}

// NewProviderHandler creates a new provider handler
func NewProviderHandler(providerService services.ProviderService, logger *slog.Logger) *ProviderHandler {
	return &ProviderHandler{
		providerService: providerService,
		logger:          logger,
	}
}

type updateProviderBody struct {
	ProviderTypeID *string                 `json:"providerTypeId"`
	DisplayName    *string                 `json:"displayName"`
	Headline       *string                 `json:"headline"`
	Bio            *string                 `json:"bio"`
	Location       *string                 `json:"location"`
	Website        httputil.OptionalString `json:"website"`
}

type verifiedRequest struct {
	Verified bool `json:"verified"`
}

// ListTypes returns every provider type
// GET /api/provider-types
func (h *ProviderHandler) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.providerService.ListTypes(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, types)
}

// CreateType creates a provider type. Duplicates are 409 with code PROVIDER_TYPE_EXISTS.
// POST /api/admin/provider-types
func (h *ProviderHandler) CreateType(w http.ResponseWriter, r *http.Request) {
	var req services.CreateProviderTypeRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	pt, err := h.providerService.CreateType(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, pt)
}

// SearchProviders lists or searches the directory
// GET /api/providers?type=&q=&limit=&offset=
func (h *ProviderHandler) SearchProviders(w http.ResponseWriter, r *http.Request) {
	page, ok := pageFrom(w, r)
	if !ok {
		return
	}

	result, err := h.providerService.SearchProviders(r.Context(), models.ProviderFilter{
		TypeID: r.URL.Query().Get("type"),
		Query:  r.URL.Query().Get("q"),
		Page:   page,
	}, httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// CreateProvider lists the caller in the directory
// POST /api/providers
func (h *ProviderHandler) CreateProvider(w http.ResponseWriter, r *http.Request) {
	var req services.CreateProviderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.UserID = httputil.GetUserID(r)

	provider, err := h.providerService.CreateProvider(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, provider)
}

// GetProvider returns the provider's full profile
// GET /api/providers/{id}
func (h *ProviderHandler) GetProvider(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Provider ID")
	if !ok {
		return
	}

	provider, err := h.providerService.GetProvider(r.Context(), id, httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, provider)
}

// UpdateProvider applies a partial update
// PATCH /api/providers/{id}
func (h *ProviderHandler) UpdateProvider(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Provider ID")
	if !ok {
		return
	}

	var body updateProviderBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	provider, err := h.providerService.UpdateProvider(r.Context(), id, actorFrom(r), &services.UpdateProviderRequest{
		ProviderTypeID: body.ProviderTypeID,
		DisplayName:    body.DisplayName,
		Headline:       body.Headline,
		Bio:            body.Bio,
		Location:       body.Location,
		Website:        body.Website.Domain(),
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, provider)
}

// SetVerified marks a provider as verified
// PUT /api/admin/providers/{id}/verified
func (h *ProviderHandler) SetVerified(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Provider ID")
	if !ok {
		return
	}

	var req verifiedRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.providerService.SetVerified(r.Context(), id, req.Verified); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Follow makes the caller follow a provider
// PUT /api/providers/{id}/follow
func (h *ProviderHandler) Follow(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Provider ID")
	if !ok {
		return
	}

	if err := h.providerService.Follow(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Unfollow removes the caller's follow
// DELETE /api/providers/{id}/follow
func (h *ProviderHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Provider ID")
	if !ok {
		return
	}

	if err := h.providerService.Unfollow(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
