package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV_FILE", "does-not-exist.env")
	t.Setenv("JWT_SECRET", "a-very-long-test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Upload.MaxSize != 10*1024*1024 {
		t.Errorf("Expected 10MB upload cap, got %d", cfg.Upload.MaxSize)
	}
	if cfg.AI.Timeout != 45*time.Second {
		t.Errorf("Expected 45s AI timeout, got %s", cfg.AI.Timeout)
	}
	if cfg.Jobs.ReaperSchedule != "@every 5m" {
		t.Errorf("Unexpected reaper schedule %q", cfg.Jobs.ReaperSchedule)
	}
	for _, ct := range cfg.Upload.AllowedTypes {
		if ct == "image/svg+xml" {
			t.Errorf("SVG must be opt-in, defaults are %v", cfg.Upload.AllowedTypes)
		}
	}
}

func TestLoad_ListAndDurationOverrides(t *testing.T) {
	t.Setenv("ENV_FILE", "does-not-exist.env")
	t.Setenv("JWT_SECRET", "a-very-long-test-secret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("JOB_MAX_LIFETIME", "90s")
	t.Setenv("STORAGE_USE_SSL", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("Unexpected origins: %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.Jobs.MaxLifetime != 90*time.Second {
		t.Errorf("Expected 90s, got %s", cfg.Jobs.MaxLifetime)
	}
	if !cfg.Storage.UseSSL {
		t.Error("Expected UseSSL true")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		secret  string
		wantErr bool
	}{
		{"production requires secret", "production", "", true},
		{"production rejects short secret", "production", "short", true},
		{"production accepts long secret", "production", "0123456789abcdef", false},
		{"development falls back", "development", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Server:   ServerConfig{Environment: tt.env},
				Database: DatabaseConfig{Host: "localhost", Name: "db"},
				Auth:     AuthConfig{JWTSecret: tt.secret},
				Upload:   UploadConfig{MaxSize: 1},
				Jobs:     JobsConfig{Workers: 1},
			}
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
