package handler

import (
	"log/slog"
	"net/http"

	"agora/internal/domain/services"
	"agora/internal/httputil"
)

// AdminHandler handles the admin panel's user moderation requests.
// Content moderation routes reuse the owning handlers.
type AdminHandler struct {
	adminService services.AdminService
	logger       *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService services.AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		logger:       logger,
	}
}

type banRequest struct {
	Hours int `json:"hours"`
}

// Stats returns dashboard counters
// GET /api/admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminService.Stats(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, stats)
}

// ListUsers returns a page of users
// GET /api/admin/users?limit=&offset=
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, ok := pageFrom(w, r)
	if !ok {
		return
	}

	users, err := h.adminService.ListUsers(r.Context(), page)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, users)
}

// BanUser suspends a user for the given number of hours
// POST /api/admin/users/{id}/ban
func (h *AdminHandler) BanUser(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "User ID")
	if !ok {
		return
	}

	var req banRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	profile, err := h.adminService.BanUser(r.Context(), id, req.Hours)
	if err != nil {
		handleError(w, err)
		return
	}

	h.logger.Info("ban issued", "admin_id", httputil.GetUserID(r), "user_id", id)
	httputil.RespondJSON(w, http.StatusOK, profile)
}

// UnbanUser lifts a suspension
// POST /api/admin/users/{id}/unban
func (h *AdminHandler) UnbanUser(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "User ID")
	if !ok {
		return
	}

	profile, err := h.adminService.UnbanUser(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, profile)
}
