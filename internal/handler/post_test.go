package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"agora/internal/domain/models"
	"agora/internal/domain/services"
	"agora/internal/httputil"
)

// recordingPosts captures the last update; other methods panic via the nil embed
type recordingPosts struct {
	services.PostService
	id     string
	actor  services.Actor
	update *services.UpdatePostRequest
	vote   int
}

func (f *recordingPosts) UpdatePost(_ context.Context, id string, actor services.Actor, req *services.UpdatePostRequest) (*models.Post, error) {
	f.id, f.actor, f.update = id, actor, req
	return &models.Post{ID: id}, nil
}

func (f *recordingPosts) VotePost(_ context.Context, id, userID string, value int) (*models.VoteTally, error) {
	f.vote = value
	return &models.VoteTally{MyVote: value}, nil
}

func patchPost(t *testing.T, h *PostHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPatch, "/api/posts/p1", strings.NewReader(body))
	req.SetPathValue("id", "p1")
	req = httputil.WithIdentity(req, "u1", models.RoleAdmin)
	rec := httptest.NewRecorder()
	h.UpdatePost(rec, req)
	return rec
}

func TestUpdatePost_CategoryTriState(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantPresent bool
		wantValue   *string
	}{
		{name: "absent", body: `{"title":"new"}`},
		{name: "null clears", body: `{"categoryId":null}`, wantPresent: true},
		{name: "set", body: `{"categoryId":"c9"}`, wantPresent: true, wantValue: ptr("c9")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &recordingPosts{}
			rec := patchPost(t, NewPostHandler(svc, nil, discard()), tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
			}

			got := svc.update.CategoryID
			if got.Present != tt.wantPresent {
				t.Errorf("Present = %v, want %v", got.Present, tt.wantPresent)
			}
			if (got.Value == nil) != (tt.wantValue == nil) || (got.Value != nil && *got.Value != *tt.wantValue) {
				t.Errorf("Value = %v, want %v", got.Value, tt.wantValue)
			}
			if svc.actor.UserID != "u1" || !svc.actor.IsAdmin() {
				t.Errorf("actor = %+v", svc.actor)
			}
		})
	}
}

func TestUpdatePost_UnknownField(t *testing.T) {
	svc := &recordingPosts{}
	rec := patchPost(t, NewPostHandler(svc, nil, discard()), `{"authorId":"someone-else"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if svc.update != nil {
		t.Errorf("service called with an invalid body")
	}
}

func TestVotePost(t *testing.T) {
	svc := &recordingPosts{}
	h := NewPostHandler(svc, nil, discard())

	req := httptest.NewRequest(http.MethodPut, "/api/posts/p1/vote", strings.NewReader(`{"value":-1}`))
	req.SetPathValue("id", "p1")
	req = httputil.WithUserID(req, "u1")
	rec := httptest.NewRecorder()
	h.VotePost(rec, req)

	if rec.Code != http.StatusOK || svc.vote != -1 {
		t.Errorf("status = %d, vote = %d", rec.Code, svc.vote)
	}
}

func TestPathParam_Missing(t *testing.T) {
	h := NewPostHandler(&recordingPosts{}, nil, discard())
	rec := httptest.NewRecorder()
	h.GetPost(rec, httptest.NewRequest(http.MethodGet, "/api/posts/", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func ptr(s string) *string { return &s }
