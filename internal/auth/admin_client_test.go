package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agora/internal/domain"
)

type recorded struct {
	method string
	path   string
	body   map[string]any
	apikey string
}

func adminServer(t *testing.T, status int, response string) (*AdminClient, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path, apikey: r.Header.Get("apikey")}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&rec.body)
		}
		calls = append(calls, rec)
		w.WriteHeader(status)
		w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return NewAdminClient(srv.URL, "service-key"), &calls
}

func TestAdminClientBan(t *testing.T) {
	c, calls := adminServer(t, http.StatusOK, `{}`)

	if err := c.Ban(context.Background(), "u1", 36*time.Hour+time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := c.Unban(context.Background(), "u1"); err != nil {
		t.Fatal(err)
	}

	if len(*calls) != 2 {
		t.Fatalf("got %d calls, want 2", len(*calls))
	}
	ban, unban := (*calls)[0], (*calls)[1]
	if ban.method != http.MethodPut || ban.path != "/auth/v1/admin/users/u1" {
		t.Errorf("ban request = %s %s", ban.method, ban.path)
	}
	if ban.body["ban_duration"] != "37h" {
		t.Errorf("ban_duration = %v, want 37h", ban.body["ban_duration"])
	}
	if unban.body["ban_duration"] != "none" {
		t.Errorf("unban ban_duration = %v, want none", unban.body["ban_duration"])
	}
	if ban.apikey != "service-key" {
		t.Errorf("apikey header = %q", ban.apikey)
	}
}

func TestAdminClientBanRejectsNonPositive(t *testing.T) {
	c, calls := adminServer(t, http.StatusOK, `{}`)
	err := c.Ban(context.Background(), "u1", 0)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if len(*calls) != 0 {
		t.Errorf("unexpected request sent")
	}
}

func TestAdminClientNotFound(t *testing.T) {
	c, _ := adminServer(t, http.StatusNotFound, `{"msg":"User not found"}`)

	if err := c.Ban(context.Background(), "missing", time.Hour); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Ban err = %v, want ErrNotFound", err)
	}
	if err := c.DeleteUser(context.Background(), "missing"); err != nil {
		t.Errorf("DeleteUser of unknown user should be a no-op, got %v", err)
	}
}

func TestAdminClientCreateUser(t *testing.T) {
	c, calls := adminServer(t, http.StatusOK, `{"id":"new-id","email":"a@b.c"}`)

	id, err := c.CreateUser(context.Background(), "a@b.c", "pw", map[string]any{"role": "admin"})
	if err != nil {
		t.Fatal(err)
	}
	if id != "new-id" {
		t.Errorf("id = %q", id)
	}
	meta, _ := (*calls)[0].body["app_metadata"].(map[string]any)
	if meta["role"] != "admin" {
		t.Errorf("app_metadata = %v", (*calls)[0].body["app_metadata"])
	}
	if (*calls)[0].body["email_confirm"] != true {
		t.Error("email_confirm not set")
	}
}

func TestFormatBanDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{time.Hour, "1h"},
		{90 * time.Minute, "2h"},
		{24 * time.Hour, "24h"},
		{time.Second, "1h"},
	}
	for _, tt := range tests {
		if got := formatBanDuration(tt.d); got != tt.want {
			t.Errorf("formatBanDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
