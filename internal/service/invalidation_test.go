package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"agora/internal/cache"
	"agora/internal/realtime"
)

func TestAffectedUsers(t *testing.T) {
	tests := []struct {
		name string
		ch   realtime.Change
		want []string
	}{
		{
			name: "follow insert",
			ch:   realtime.Change{Table: "follows", Type: realtime.EventInsert, Record: json.RawMessage(`{"follower_id":"a","followee_id":"b"}`)},
			want: []string{"a", "b"},
		},
		{
			name: "follow delete uses old row",
			ch:   realtime.Change{Table: "follows", Type: realtime.EventDelete, OldRecord: json.RawMessage(`{"follower_id":"a","followee_id":"b"}`)},
			want: []string{"a", "b"},
		},
		{
			name: "post author change dedups",
			ch: realtime.Change{
				Table:     "posts",
				Type:      realtime.EventUpdate,
				Record:    json.RawMessage(`{"id":"p","author_id":"a"}`),
				OldRecord: json.RawMessage(`{"id":"p","author_id":"a"}`),
			},
			want: []string{"a"},
		},
		{
			name: "profile",
			ch:   realtime.Change{Table: "profiles", Type: realtime.EventUpdate, Record: json.RawMessage(`{"id":"u1","bio":"x"}`)},
			want: []string{"u1"},
		},
		{
			name: "null column",
			ch:   realtime.Change{Table: "comments", Type: realtime.EventInsert, Record: json.RawMessage(`{"author_id":null}`)},
		},
		{
			name: "untracked table",
			ch:   realtime.Change{Table: "votes", Type: realtime.EventInsert, Record: json.RawMessage(`{"user_id":"a"}`)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, affectedUsers(tt.ch)); diff != "" {
				t.Errorf("affectedUsers mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCacheInvalidator(t *testing.T) {
	hub := realtime.NewHub(realtime.DefaultBuffer, discard())
	defer hub.Close()

	c := newMapCache()
	ctx := context.Background()
	_ = c.Set(ctx, cache.KeyCategoryTree, "tree")
	_ = c.Set(ctx, cache.ProfileKey("a", ""), "a-anon")
	_ = c.Set(ctx, cache.ProfileKey("a", "b"), "a-for-b")
	_ = c.Set(ctx, cache.ProfileKey("z", ""), "z-anon")

	inv, err := StartCacheInvalidator(hub, c, discard())
	if err != nil {
		t.Fatalf("StartCacheInvalidator: %v", err)
	}

	hub.Publish(realtime.Change{Table: "follows", Type: realtime.EventInsert, Record: json.RawMessage(`{"follower_id":"b","followee_id":"a"}`)})
	waitFor(t, func() bool {
		return !c.has(cache.ProfileKey("a", "")) && !c.has(cache.ProfileKey("a", "b"))
	})
	if !c.has(cache.ProfileKey("z", "")) {
		t.Errorf("unrelated profile invalidated")
	}

	hub.Publish(realtime.Change{Table: "categories", Type: realtime.EventDelete, OldRecord: json.RawMessage(`{"id":"c1"}`)})
	waitFor(t, func() bool { return !c.has(cache.KeyCategoryTree) })

	inv.Close()
	if hub.Len() != 0 {
		t.Errorf("hub still has %d subscriptions after Close", hub.Len())
	}
}
