package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetTablePrefix(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		override string
		want     string
	}{
		{name: "prod", env: "prod", want: "prod_"},
		{name: "test", env: "test", want: "test_"},
		{name: "dev", env: "dev", want: "dev_"},
		{name: "unknown falls back to dev", env: "staging", want: "dev_"},
		{name: "override wins", env: "prod", override: "custom_", want: "custom_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TABLE_PREFIX", tt.override)
			if got := getTablePrefix(tt.env); got != tt.want {
				t.Errorf("getTablePrefix(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("SUPABASE_URL", "https://example.supabase.co/")
	t.Setenv("CACHE_TTL_SECONDS", "not-a-number")
	t.Setenv("STORAGE_PUBLIC_URL", "")
	t.Setenv("DEBUG", "")

	cfg := Load()

	if cfg.Environment != "dev" {
		t.Errorf("Environment = %q, want dev", cfg.Environment)
	}
	if cfg.SupabaseJWKSURL != "https://example.supabase.co/auth/v1/.well-known/jwks.json" {
		t.Errorf("unexpected JWKS URL %q", cfg.SupabaseJWKSURL)
	}
	if cfg.CacheTTL != 300*time.Second {
		t.Errorf("CacheTTL = %v, want 5m fallback", cfg.CacheTTL)
	}
	if cfg.StoragePublicURL != "https://example.supabase.co/storage/v1/object/public" {
		t.Errorf("unexpected storage public URL %q", cfg.StoragePublicURL)
	}
	if !cfg.Debug {
		t.Error("debug should default to true outside prod")
	}
}

func TestSetupLogFile_RotatesOldFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"agora-2024-01-01T00-00-00.log", "agora-2024-01-02T00-00-00.log", "agora-2024-01-03T00-00-00.log"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	f, err := SetupLogFile(dir, 2)
	if err != nil {
		t.Fatalf("SetupLogFile: %v", err)
	}
	defer f.Close()

	files, _ := filepath.Glob(filepath.Join(dir, "agora-*.log"))
	if len(files) != 2 {
		t.Fatalf("expected 2 log files after rotation, got %d: %v", len(files), files)
	}
	if _, err := os.Stat(filepath.Join(dir, "agora-2024-01-01T00-00-00.log")); !os.IsNotExist(err) {
		t.Error("oldest log file should have been removed")
	}
}
