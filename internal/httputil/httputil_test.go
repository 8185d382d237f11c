package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOptionalStringDecode(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantPresent bool
		wantValue   string // "" means nil
	}{
		{"absent", `{}`, false, ""},
		{"null clears", `{"v":null}`, true, ""},
		{"blank clears", `{"v":"  "}`, true, ""},
		{"value trimmed", `{"v":" abc "}`, true, "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body struct {
				V OptionalString `json:"v"`
			}
			if err := json.Unmarshal([]byte(tt.body), &body); err != nil {
				t.Fatal(err)
			}
			got := body.V.Domain()
			if got.Present != tt.wantPresent {
				t.Errorf("Present = %v, want %v", got.Present, tt.wantPresent)
			}
			if tt.wantValue == "" && got.Value != nil {
				t.Errorf("Value = %q, want nil", *got.Value)
			}
			if tt.wantValue != "" && (got.Value == nil || *got.Value != tt.wantValue) {
				t.Errorf("Value = %v, want %q", got.Value, tt.wantValue)
			}
		})
	}
}

func TestOptionalStringRejectsNonString(t *testing.T) {
	var body struct {
		V OptionalString `json:"v"`
	}
	if err := json.Unmarshal([]byte(`{"v":42}`), &body); err == nil {
		t.Error("expected error for a number")
	}
}

func TestRespondErrorWithExtras(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondErrorWithExtras(rec, http.StatusConflict, "provider type exists", map[string]interface{}{"code": "PROVIDER_TYPE_EXISTS"})

	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["code"] != "PROVIDER_TYPE_EXISTS" || body["status"] != float64(409) || body["title"] != "Conflict" {
		t.Errorf("body = %v", body)
	}
}
