package sse

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

type countingWriter struct {
	n      atomic.Int32
	failAt int32
}

func (c *countingWriter) WriteKeepAlive() error {
	if c.n.Add(1) == c.failAt {
		return errors.New("broken pipe")
	}
	return nil
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestTickerKeepAlive_StopsOnWriteError(t *testing.T) {
	w := &countingWriter{failAt: 3}
	done := NewTickerKeepAlive(time.Millisecond).Start(context.Background(), w, discard())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("keep-alive did not stop after a failed write")
	}
	if got := w.n.Load(); got != 3 {
		t.Errorf("writes = %d, want 3", got)
	}
}

func TestTickerKeepAlive_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := NewTickerKeepAlive(time.Hour).Start(ctx, &countingWriter{}, discard())
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("keep-alive did not stop on cancel")
	}
}

func TestWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	w, err := NewWriter(rec)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	if err := w.WriteEvent("change", []byte(`{"table":"posts"}`)); err != nil {
		t.Fatalf("WriteEvent: %v", err)
	}
	if err := w.WriteKeepAlive(); err != nil {
		t.Fatalf("WriteKeepAlive: %v", err)
	}
	w.Close()
	if err := w.WriteEvent("change", []byte(`{}`)); !errors.Is(err, ErrClosed) {
		t.Errorf("write after Close: err = %v, want ErrClosed", err)
	}

	want := "event: change\ndata: {\"table\":\"posts\"}\n\n: keepalive\n\n"
	if got := rec.Body.String(); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestConfigWithDefaults(t *testing.T) {
	var nilCfg *Config
	if got := nilCfg.WithDefaults(); *got != *DefaultConfig() {
		t.Errorf("nil config = %+v", got)
	}

	in := &Config{Buffer: 8}
	got := in.WithDefaults()
	if got.Buffer != 8 || got.KeepAliveInterval != defaultKeepAlive {
		t.Errorf("partial config = %+v", got)
	}
	if in.KeepAliveInterval != 0 {
		t.Error("WithDefaults modified its receiver")
	}
}
