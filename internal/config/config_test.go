package config

import (
	"log/slog"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8050 {
		t.Errorf("Port = %d, want 8050", cfg.Server.Port)
	}
	if cfg.Dataset.SeedFile != "" {
		t.Errorf("SeedFile = %q, want empty", cfg.Dataset.SeedFile)
	}
	if cfg.Dataset.MaxUploadBytes != 10<<20 {
		t.Errorf("MaxUploadBytes = %d", cfg.Dataset.MaxUploadBytes)
	}
	if cfg.Taxonomy.MappingFile != "data/subcategories.csv" || cfg.Taxonomy.CategoriesFile != "data/categories.txt" {
		t.Errorf("unexpected taxonomy defaults: %+v", cfg.Taxonomy)
	}
	if cfg.Address() != "localhost:8050" {
		t.Errorf("Address() = %q", cfg.Address())
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("SERVER_READ_TIMEOUT", "5s")
	t.Setenv("SEED_FILE", "testdata/transactions.csv")
	t.Setenv("MAX_UPLOAD_BYTES", "2048")
	t.Setenv("SECURITY_ALLOWED_ORIGINS", "http://a.example, http://b.example,")
	t.Setenv("SECURITY_RATE_LIMIT_ENABLED", "false")
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9000 || cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("server config not read from env: %+v", cfg.Server)
	}
	if cfg.Dataset.SeedFile != "testdata/transactions.csv" || cfg.Dataset.MaxUploadBytes != 2048 {
		t.Errorf("dataset config not read from env: %+v", cfg.Dataset)
	}
	want := []string{"http://a.example", "http://b.example"}
	if !slices.Equal(cfg.Security.AllowedOrigins, want) {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.Security.AllowedOrigins, want)
	}
	if cfg.Security.EnableRateLimit {
		t.Error("rate limit should be disabled")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port out of range", "SERVER_PORT", "70000"},
		{"negative read timeout", "SERVER_READ_TIMEOUT", "-1s"},
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"bad log format", "LOG_FORMAT", "xml"},
		{"zero upload size", "MAX_UPLOAD_BYTES", "0"},
		{"zero rps", "SECURITY_RATE_LIMIT_RPS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%s should fail", tt.key, tt.value)
			}
		})
	}
}

func TestGetEnvHelpers_FallBackOnGarbage(t *testing.T) {
	t.Setenv("X_INT", "abc")
	t.Setenv("X_BOOL", "maybe")
	t.Setenv("X_DURATION", "soon")

	if getEnvInt("X_INT", 7) != 7 {
		t.Error("getEnvInt should fall back")
	}
	if !getEnvBool("X_BOOL", true) {
		t.Error("getEnvBool should fall back")
	}
	if getEnvDuration("X_DURATION", time.Minute) != time.Minute {
		t.Error("getEnvDuration should fall back")
	}
}

func TestConfig_LogValue(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	var buf strings.Builder
	slog.New(slog.NewTextHandler(&buf, nil)).Info("starting", "config", cfg)

	out := buf.String()
	for _, want := range []string{"config.addr=localhost:8050", "config.max_upload_bytes=10485760", "config.taxonomy_mapping=data/subcategories.csv"} {
		if !strings.Contains(out, want) {
			t.Errorf("log line missing %q: %s", want, out)
		}
	}
}
