package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"agora/internal/client"
	"agora/internal/domain/models"
)

type item struct {
	ID   string
	Name string
}

func newItems() *Collection[item] {
	return NewCollection(func(i *item) string { return i.ID })
}

func ids(items []item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestAppendPageDedupsByID(t *testing.T) {
	c := newItems()
	gen := c.Reset()

	if added, ok := c.AppendPage(gen, []item{{ID: "a"}, {ID: "b"}}); !ok || added != 2 {
		t.Fatalf("first page: added=%d ok=%v", added, ok)
	}
	// Offset pagination shifts when rows are inserted upstream
	if added, ok := c.AppendPage(gen, []item{{ID: "b", Name: "dup"}, {ID: "c"}, {ID: "c"}}); !ok || added != 1 {
		t.Fatalf("second page: added=%d ok=%v", added, ok)
	}

	if diff := cmp.Diff([]string{"a", "b", "c"}, ids(c.Items())); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
	if b, _ := c.Get("b"); b.Name != "" {
		t.Errorf("duplicate overwrote the first copy: %+v", b)
	}
}

func TestAppendPageStaleGeneration(t *testing.T) {
	c := newItems()
	old := c.Reset()
	c.Reset()

	if _, ok := c.AppendPage(old, []item{{ID: "a"}}); ok {
		t.Error("stale page accepted")
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
}

func TestLoadSupersededByReset(t *testing.T) {
	c := newItems()
	started := make(chan struct{})
	release := make(chan struct{})
	result := make(chan error, 1)
	var firstCtx context.Context

	go func() {
		_, err := c.Load(context.Background(), true, func(ctx context.Context, offset int) ([]item, error) {
			firstCtx = ctx
			close(started)
			<-release
			return []item{{ID: "old"}}, nil
		})
		result <- err
	}()
	<-started

	if _, err := c.Load(context.Background(), true, func(ctx context.Context, offset int) ([]item, error) {
		return []item{{ID: "new"}}, nil
	}); err != nil {
		t.Fatal(err)
	}
	if firstCtx.Err() == nil {
		t.Error("superseded load was not cancelled")
	}

	close(release)
	if err := <-result; !errors.Is(err, ErrSuperseded) {
		t.Errorf("first load returned %v, want ErrSuperseded", err)
	}
	if diff := cmp.Diff([]string{"new"}, ids(c.Items())); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadContinuesAtOffset(t *testing.T) {
	c := newItems()
	var offsets []int
	fetch := func(ctx context.Context, offset int) ([]item, error) {
		offsets = append(offsets, offset)
		return []item{{ID: string(rune('a' + offset))}}, nil
	}

	ctx := context.Background()
	c.Load(ctx, true, fetch)
	c.Load(ctx, false, fetch)
	c.Load(ctx, false, fetch)

	if diff := cmp.Diff([]int{0, 1, 2}, offsets); diff != "" {
		t.Errorf("offsets mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFailureRecordsError(t *testing.T) {
	c := newItems()
	_, err := c.Load(context.Background(), true, func(context.Context, int) ([]item, error) {
		return nil, errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected errBoom, got %v", err)
	}
	want := OpState{Status: StatusFailed, Error: "boom"}
	if got := c.State(); got != want {
		t.Errorf("State = %+v, want %+v", got, want)
	}
}

func TestRemoveKeepsIndex(t *testing.T) {
	c := newItems()
	c.AppendPage(c.Reset(), []item{{ID: "a"}, {ID: "b"}, {ID: "c"}})

	if !c.Remove("a") {
		t.Fatal("Remove(a) = false")
	}
	if !c.Update("c", func(i *item) { i.Name = "cee" }) {
		t.Fatal("Update(c) = false after removal")
	}
	if got, _ := c.Get("c"); got.Name != "cee" {
		t.Errorf("Get(c) = %+v", got)
	}
}

func TestPostsFilterChangeResets(t *testing.T) {
	api := &fakeAPI{listPosts: func(ctx context.Context, p client.ListPostsParams) ([]models.Post, error) {
		return []models.Post{{ID: "in-" + p.CategoryID}}, nil
	}}
	posts := newPosts(api)
	ctx := context.Background()

	if err := posts.Load(ctx, "c1"); err != nil {
		t.Fatal(err)
	}
	if err := posts.Load(ctx, "c2"); err != nil {
		t.Fatal(err)
	}

	got := posts.Items()
	if len(got) != 1 || got[0].ID != "in-c2" {
		t.Errorf("feed = %+v, want only in-c2", got)
	}
}
