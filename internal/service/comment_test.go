package service

import (
	"context"
	"errors"
	"testing"

	"agora/internal/domain"
	"agora/internal/domain/models"
	"agora/internal/domain/services"
)

func newThreadFixture(flat []models.Comment) (services.CommentService, *fakeTx, *fakeComments) {
	posts := &fakePosts{posts: map[string]*models.Post{"p1": {ID: "p1", AuthorID: "u1"}}}
	comments := &fakeComments{flat: flat}
	tx := &fakeTx{}
	svc := NewCommentService(comments, posts, &fakeVotes{}, tx, allowAll{}, discard())
	return svc, tx, comments
}

func TestGetThread_Nests(t *testing.T) {
	svc, _, _ := newThreadFixture([]models.Comment{
		{ID: "a", PostID: "p1"},
		{ID: "b", PostID: "p1", ParentID: strPtr("a")},
		{ID: "c", PostID: "p1", ParentID: strPtr("b")},
		{ID: "d", PostID: "p1"},
		{ID: "x", PostID: "p2"},
	})

	thread, err := svc.GetThread(context.Background(), "p1", "")
	if err != nil {
		t.Fatalf("GetThread: %v", err)
	}
	if thread.Total != 4 {
		t.Errorf("Total = %d, want 4", thread.Total)
	}
	if len(thread.Comments) != 2 {
		t.Fatalf("got %d roots, want 2", len(thread.Comments))
	}
	a := thread.Comments[0]
	if a.ID != "a" || len(a.Children) != 1 || a.Children[0].ID != "b" {
		t.Fatalf("unexpected first root: %+v", a)
	}
	if got := a.Children[0].Children; len(got) != 1 || got[0].ID != "c" {
		t.Errorf("b children = %+v, want [c]", got)
	}
	if thread.Comments[1].ID != "d" {
		t.Errorf("second root = %s, want d", thread.Comments[1].ID)
	}
}

func TestGetThread_OrphanBecomesRoot(t *testing.T) {
	svc, _, _ := newThreadFixture([]models.Comment{
		{ID: "a", PostID: "p1", ParentID: strPtr("gone")},
	})

	thread, err := svc.GetThread(context.Background(), "p1", "")
	if err != nil {
		t.Fatalf("GetThread: %v", err)
	}
	if len(thread.Comments) != 1 || thread.Comments[0].ID != "a" {
		t.Errorf("orphan not promoted to root: %+v", thread.Comments)
	}
}

func TestGetThread_UnknownPost(t *testing.T) {
	svc, _, _ := newThreadFixture(nil)

	_, err := svc.GetThread(context.Background(), "nope", "")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateComment(t *testing.T) {
	tests := []struct {
		name    string
		req     services.CreateCommentRequest
		wantErr bool
	}{
		{name: "top level", req: services.CreateCommentRequest{PostID: "p1", AuthorID: "u1", Body: "hi"}},
		{name: "reply", req: services.CreateCommentRequest{PostID: "p1", AuthorID: "u1", ParentID: strPtr("a"), Body: "hi"}},
		{name: "blank body", req: services.CreateCommentRequest{PostID: "p1", AuthorID: "u1", Body: "   "}, wantErr: true},
		{name: "empty parent", req: services.CreateCommentRequest{PostID: "p1", AuthorID: "u1", ParentID: strPtr(""), Body: "hi"}, wantErr: true},
		{name: "no author", req: services.CreateCommentRequest{PostID: "p1", Body: "hi"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, tx, repo := newThreadFixture(nil)
			req := tt.req
			c, err := svc.CreateComment(context.Background(), &req)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrValidation) {
					t.Errorf("err = %v, want ErrValidation", err)
				}
				if tx.calls != 0 {
					t.Errorf("transaction opened for invalid input")
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateComment: %v", err)
			}
			if tx.calls != 1 || len(repo.created) != 1 {
				t.Errorf("tx calls = %d, created = %d; want 1, 1", tx.calls, len(repo.created))
			}
			if c.Children == nil {
				t.Errorf("Children must be an empty slice, not nil")
			}
		})
	}
}

func TestVoteComment(t *testing.T) {
	tests := []struct {
		value   int
		wantErr bool
	}{
		{value: 1},
		{value: -1},
		{value: 0},
		{value: 2, wantErr: true},
		{value: -5, wantErr: true},
	}

	for _, tt := range tests {
		votes := &fakeVotes{}
		tx := &fakeTx{}
		svc := NewCommentService(&fakeComments{}, &fakePosts{posts: map[string]*models.Post{}}, votes, tx, allowAll{}, discard())

		tally, err := svc.VoteComment(context.Background(), "c1", "u1", tt.value)
		if tt.wantErr {
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("value %d: err = %v, want ErrValidation", tt.value, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("value %d: %v", tt.value, err)
		}
		if tally.MyVote != tt.value {
			t.Errorf("MyVote = %d, want %d", tally.MyVote, tt.value)
		}
		if votes.last.TargetType != models.VoteTargetComment || votes.last.TargetID != "c1" {
			t.Errorf("vote stored as %+v", votes.last)
		}
		if tx.calls != 1 {
			t.Errorf("vote ran in %d transactions, want 1", tx.calls)
		}
	}
}
