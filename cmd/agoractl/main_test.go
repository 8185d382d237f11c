package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseVote(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"up", 1, false},
		{"down", -1, false},
		{"clear", 0, false},
		{"sideways", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseVote(tt.in)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Errorf("parseVote(%q) = (%d, %v)", tt.in, got, err)
			}
		})
	}
}

func TestFirstLine(t *testing.T) {
	if got := firstLine("title\nbody"); got != "title" {
		t.Errorf("got %q", got)
	}
	long := strings.Repeat("x", 100)
	if got := firstLine(long); len(got) != 80 || !strings.HasSuffix(got, "...") {
		t.Errorf("long line rendered as %q", got)
	}
}

// run executes the root command against a fake API
func run(t *testing.T, handler http.HandlerFunc, args ...string) (string, error) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"--api", srv.URL, "--token", "tok"}, args...))
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestCategoriesTreeCommand(t *testing.T) {
	out, err := run(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/categories/tree" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`[{"id":"a","name":"Showcase","slug":"showcase","postCount":3,
			"children":[{"id":"b","parentId":"a","name":"Photos","slug":"photos","children":[]}]}]`))
	}, "categories", "tree")
	if err != nil {
		t.Fatal(err)
	}

	want := "Showcase (showcase) posts=3\n  Photos (photos) posts=0\n"
	if out != want {
		t.Errorf("output:\n%s\nwant:\n%s", out, want)
	}
}

func TestThreadCommand(t *testing.T) {
	out, err := run(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"postId":"p1","total":2,"comments":[
			{"id":"c1","postId":"p1","body":"first\nmore","upvotes":2,"children":[
				{"id":"c2","postId":"p1","parentId":"c1","body":"reply","downvotes":1,"children":[]}]}]}`))
	}, "thread", "p1")
	if err != nil {
		t.Fatal(err)
	}

	want := "[c1] +2 first\n  [c2] -1 reply\n2 comments\n"
	if out != want {
		t.Errorf("output:\n%s\nwant:\n%s", out, want)
	}
}

func TestVoteCommandReportsFailure(t *testing.T) {
	_, err := run(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte(`{"id":"p1","title":"t","upvotes":1}`))
			return
		}
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"status":403,"detail":"banned"}`))
	}, "vote", "post", "p1", "up")
	if err == nil || !strings.Contains(err.Error(), "banned") {
		t.Errorf("expected the server's detail in the error, got %v", err)
	}
}
