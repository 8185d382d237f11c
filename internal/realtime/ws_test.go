package realtime

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
)

func dialWS(t *testing.T, hub *Hub) (*websocket.Conn, func()) {
	t.Helper()
	srv := httptest.NewServer(NewWSHandler(hub, discard()))
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		srv.Close()
		t.Fatalf("dial: %v", err)
	}
	return conn, func() {
		conn.Close()
		srv.Close()
	}
}

func readMsg(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func waitSubs(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Len() != n {
		if time.Now().After(deadline) {
			t.Fatalf("hub has %d subscriptions, want %d", hub.Len(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWSSubscribeReceivesChanges(t *testing.T) {
	hub := NewHub(8, discard())
	defer hub.Close()
	conn, closeAll := dialWS(t, hub)
	defer closeAll()

	if err := conn.WriteJSON(Message{Type: MsgSubscribe, Topic: "t1", Table: "comments", Event: "INSERT", Filter: "post_id=eq.p1"}); err != nil {
		t.Fatal(err)
	}
	if msg := readMsg(t, conn); msg.Type != MsgSubscribed || msg.Topic != "t1" {
		t.Fatalf("unexpected ack %+v", msg)
	}

	hub.Publish(change("comments", EventInsert, `{"id":"c0","post_id":"p2"}`, ""))
	hub.Publish(change("comments", EventInsert, `{"id":"c1","post_id":"p1"}`, ""))

	msg := readMsg(t, conn)
	if msg.Type != MsgChange || msg.Topic != "t1" || msg.Change == nil {
		t.Fatalf("unexpected frame %+v", msg)
	}
	if !strings.Contains(string(msg.Change.Record), `"c1"`) {
		t.Errorf("unexpected record %s", msg.Change.Record)
	}
}

func TestWSUnsubscribeAndDisconnectRelease(t *testing.T) {
	hub := NewHub(8, discard())
	defer hub.Close()
	conn, closeAll := dialWS(t, hub)

	for _, topic := range []string{"a", "b"} {
		if err := conn.WriteJSON(Message{Type: MsgSubscribe, Topic: topic, Table: "posts"}); err != nil {
			t.Fatal(err)
		}
		readMsg(t, conn)
	}
	waitSubs(t, hub, 2)

	if err := conn.WriteJSON(Message{Type: MsgUnsubscribe, Topic: "a"}); err != nil {
		t.Fatal(err)
	}
	if msg := readMsg(t, conn); msg.Type != MsgUnsubscribed {
		t.Fatalf("unexpected frame %+v", msg)
	}
	waitSubs(t, hub, 1)

	closeAll()
	waitSubs(t, hub, 0)
}

func TestWSRejectsBadMessages(t *testing.T) {
	hub := NewHub(8, discard())
	defer hub.Close()
	conn, closeAll := dialWS(t, hub)
	defer closeAll()

	cases := []Message{
		{Type: MsgSubscribe, Table: "posts"},
		{Type: MsgSubscribe, Topic: "x", Table: "posts", Filter: "id=gt.1"},
		{Type: "publish", Topic: "x"},
	}
	for _, m := range cases {
		if err := conn.WriteJSON(m); err != nil {
			t.Fatal(err)
		}
		if msg := readMsg(t, conn); msg.Type != MsgError {
			t.Errorf("%+v: got %+v, want error frame", m, msg)
		}
	}

	if err := conn.WriteJSON(Message{Type: MsgSubscribe, Topic: "dup", Table: "posts"}); err != nil {
		t.Fatal(err)
	}
	readMsg(t, conn)
	if err := conn.WriteJSON(Message{Type: MsgSubscribe, Topic: "dup", Table: "posts"}); err != nil {
		t.Fatal(err)
	}
	if msg := readMsg(t, conn); msg.Type != MsgError || msg.Topic != "dup" {
		t.Errorf("duplicate topic: got %+v", msg)
	}
}

func TestWSChangeFrameShape(t *testing.T) {
	hub := NewHub(8, discard())
	defer hub.Close()
	conn, closeAll := dialWS(t, hub)
	defer closeAll()

	if err := conn.WriteJSON(Message{Type: MsgSubscribe, Topic: "t1", Table: "posts", Event: "*"}); err != nil {
		t.Fatal(err)
	}
	readMsg(t, conn)

	hub.Publish(change("posts", EventUpdate, `{"id":"p1","title":"hi"}`, ""))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	frame := gjson.ParseBytes(raw)
	tests := []struct {
		path string
		want string
	}{
		{"type", "change"},
		{"topic", "t1"},
		{"change.table", "posts"},
		{"change.type", "UPDATE"},
		{"change.record.id", "p1"},
	}
	for _, tt := range tests {
		if got := frame.Get(tt.path).String(); got != tt.want {
			t.Errorf("%s = %q, want %q in %s", tt.path, got, tt.want, raw)
		}
	}
	if frame.Get("event").Exists() {
		t.Errorf("change frame carries a subscribe-only event field: %s", raw)
	}
}
