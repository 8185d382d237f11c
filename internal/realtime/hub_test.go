package realtime

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func waitFor(t *testing.T, ch <-chan Change) Change {
	t.Helper()
	select {
	case c := <-ch:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Change{}
	}
}

func TestHubDeliversMatchingEvents(t *testing.T) {
	hub := NewHub(8, discard())
	defer hub.Close()

	got := make(chan Change, 8)
	sub, err := hub.Subscribe(Filter{Table: "posts", Event: EventInsert}, func(c Change) { got <- c })
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Close()

	hub.Publish(change("comments", EventInsert, `{"id":"c1"}`, ""))
	hub.Publish(change("posts", EventDelete, "", `{"id":"p0"}`))
	hub.Publish(change("posts", EventInsert, `{"id":"p1"}`, ""))

	c := waitFor(t, got)
	if string(c.Record) != `{"id":"p1"}` {
		t.Errorf("unexpected record %s", c.Record)
	}
	select {
	case extra := <-got:
		t.Errorf("unexpected extra event %+v", extra)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscriptionCloseStopsDelivery(t *testing.T) {
	hub := NewHub(8, discard())
	defer hub.Close()

	got := make(chan Change, 8)
	sub, err := hub.Subscribe(Filter{Table: "posts", Event: EventAll}, func(c Change) { got <- c })
	if err != nil {
		t.Fatal(err)
	}

	sub.Close()
	sub.Close() // second close is a no-op

	if hub.Len() != 0 {
		t.Fatalf("hub still holds %d subscriptions", hub.Len())
	}
	select {
	case <-sub.Done():
	default:
		t.Fatal("Done not closed")
	}

	hub.Publish(change("posts", EventInsert, `{"id":"p1"}`, ""))
	select {
	case c := <-got:
		t.Errorf("closed subscription received %+v", c)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscriptionCloseFromHandler(t *testing.T) {
	hub := NewHub(8, discard())
	defer hub.Close()

	var (
		mu    sync.Mutex
		calls int
		sub   *Subscription
	)
	ready := make(chan struct{})
	sub, err := hub.Subscribe(Filter{Table: "posts", Event: EventAll}, func(Change) {
		<-ready
		mu.Lock()
		calls++
		mu.Unlock()
		sub.Close()
	})
	if err != nil {
		t.Fatal(err)
	}
	close(ready)

	hub.Publish(change("posts", EventInsert, `{"id":"p1"}`, ""))
	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("subscription not closed by its handler")
	}
	hub.Publish(change("posts", EventInsert, `{"id":"p2"}`, ""))

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("handler called %d times, want 1", calls)
	}
}

func TestSlowSubscriberDropsWithoutBlocking(t *testing.T) {
	hub := NewHub(1, discard())
	defer hub.Close()

	release := make(chan struct{})
	started := make(chan struct{}, 1)
	sub, err := hub.Subscribe(Filter{Table: "posts", Event: EventAll}, func(Change) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
	})
	if err != nil {
		t.Fatal(err)
	}

	hub.Publish(change("posts", EventInsert, `{"id":"p1"}`, ""))
	<-started // handler now blocked on p1

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 5; i++ {
			hub.Publish(change("posts", EventInsert, `{"id":"px"}`, ""))
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}

	// one event fits in the buffer, the other four are dropped
	if got := sub.Dropped(); got != 4 {
		t.Errorf("Dropped() = %d, want 4", got)
	}
	close(release)
}

func TestHubCloseClosesSubscriptions(t *testing.T) {
	hub := NewHub(4, discard())

	subs := make([]*Subscription, 3)
	for i := range subs {
		s, err := hub.Subscribe(Filter{Table: "posts", Event: EventAll}, func(Change) {})
		if err != nil {
			t.Fatal(err)
		}
		subs[i] = s
	}

	hub.Close()
	hub.Close()

	for i, s := range subs {
		select {
		case <-s.Done():
		default:
			t.Errorf("subscription %d still open", i)
		}
		s.Close()
	}

	if _, err := hub.Subscribe(Filter{Table: "posts"}, func(Change) {}); err != ErrHubClosed {
		t.Errorf("Subscribe after Close: err = %v, want ErrHubClosed", err)
	}
}
