package handler

import (
	"log/slog"
	"net/http"

	"agora/internal/domain/services"
	"agora/internal/httputil"
)

// ProfileHandler handles profile and user follow HTTP requests
type ProfileHandler struct {
	profileService services.ProfileService
	logger         *slog.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService services.ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		logger:         logger,
	}
}

// GetProfile returns a profile with stats
// GET /api/profiles/{id}
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Profile ID")
	if !ok {
		return
	}

	profile, err := h.profileService.GetProfile(r.Context(), id, httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, profile)
}

// GetProfilePage returns everything the profile screen renders
// GET /api/profiles/{id}/page
func (h *ProfileHandler) GetProfilePage(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Profile ID")
	if !ok {
		return
	}

	page, err := h.profileService.GetProfilePage(r.Context(), id, httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, page)
}

// GetBadges returns the user's earned badges
// GET /api/profiles/{id}/badges
func (h *ProfileHandler) GetBadges(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Profile ID")
	if !ok {
		return
	}

	badges, err := h.profileService.GetBadges(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, badges)
}

// UpdateMe updates the caller's profile, creating it on first use
// PATCH /api/profiles/me
func (h *ProfileHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateProfileRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	profile, err := h.profileService.UpdateProfile(r.Context(), httputil.GetUserID(r), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, profile)
}

// UploadAvatar replaces the caller's avatar
// POST /api/profiles/me/avatar (multipart, field "file")
func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	upload, cleanup, ok := parseUpload(w, r)
	if !ok {
		return
	}
	defer cleanup()

	profile, err := h.profileService.UploadAvatar(r.Context(), httputil.GetUserID(r), upload)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, profile)
}

// Follow makes the caller follow a user
// PUT /api/profiles/{id}/follow
func (h *ProfileHandler) Follow(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Profile ID")
	if !ok {
		return
	}

	if err := h.profileService.Follow(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Unfollow removes the caller's follow
// DELETE /api/profiles/{id}/follow
func (h *ProfileHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Profile ID")
	if !ok {
		return
	}

	if err := h.profileService.Unfollow(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
