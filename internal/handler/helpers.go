package handler

import (
	"errors"
	"net/http"

	"agora/internal/config"
	"agora/internal/domain"
	"agora/internal/domain/models"
	"agora/internal/domain/services"
	"agora/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var conflictErr *domain.ConflictError

	switch {
	case errors.As(err, &conflictErr):
		extras := map[string]interface{}{"code": conflictErr.Code}
		if conflictErr.ResourceID != "" {
			extras["resourceId"] = conflictErr.ResourceID
		}
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(), extras)
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrUnavailable):
		httputil.RespondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// PathParam reads a required path value, writing a 400 when it is empty
func PathParam(w http.ResponseWriter, r *http.Request, name, label string) (string, bool) {
	v := r.PathValue(name)
	if v == "" {
		httputil.RespondError(w, http.StatusBadRequest, label+" is required")
		return "", false
	}
	return v, true
}

// actorFrom builds the service actor from the verified identity
func actorFrom(r *http.Request) services.Actor {
	return services.Actor{UserID: httputil.GetUserID(r), Role: httputil.GetRole(r)}
}

// pageFrom reads limit and offset, writing a 400 on malformed values
func pageFrom(w http.ResponseWriter, r *http.Request) (models.Page, bool) {
	limit, offset, err := httputil.PageParams(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return models.Page{}, false
	}
	page := models.Page{Limit: limit, Offset: offset}
	page.ApplyDefaults()
	return page, true
}

// voteRequest is the body of PUT .../vote
type voteRequest struct {
	Value int `json:"value"`
}

// parseUpload reads the "file" part of a multipart form. The returned
// cleanup closes the part and removes temporary files.
func parseUpload(w http.ResponseWriter, r *http.Request) (services.Upload, func(), bool) {
	// Multipart framing adds a little on top of the file itself
	const limit = config.MaxUploadBytes + (1 << 20)
	if r.ContentLength > limit {
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, "file is too large")
		return services.Upload{}, nil, false
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(config.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.RespondError(w, http.StatusRequestEntityTooLarge, "file is too large")
			return services.Upload{}, nil, false
		}
		httputil.RespondError(w, http.StatusBadRequest, "Failed to parse multipart form")
		return services.Upload{}, nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		r.MultipartForm.RemoveAll()
		httputil.RespondError(w, http.StatusBadRequest, "No file provided")
		return services.Upload{}, nil, false
	}

	cleanup := func() {
		file.Close()
		r.MultipartForm.RemoveAll()
	}
	return services.Upload{
		Reader:      file,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
	}, cleanup, true
}
