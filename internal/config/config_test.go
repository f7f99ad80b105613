package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"METABASE_URL", "METABASE_API_KEY", "METABASE_USER_EMAIL", "METABASE_PASSWORD",
		"MBMCP_TRANSPORT", "MBMCP_HOST", "MBMCP_PORT", "MBMCP_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_valid(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("testdata/valid.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Transport != "sse" {
		t.Errorf("Server.Transport = %q, want sse", cfg.Server.Transport)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 15s", cfg.Server.ReadTimeout)
	}
	if cfg.Metabase.URL != "https://metabase.example.com" {
		t.Errorf("Metabase.URL = %q", cfg.Metabase.URL)
	}
	if cfg.Metabase.APIKey != "mb_test_key" {
		t.Errorf("Metabase.APIKey = %q", cfg.Metabase.APIKey)
	}
	if cfg.Metabase.Timeout != 20*time.Second {
		t.Errorf("Metabase.Timeout = %v, want 20s", cfg.Metabase.Timeout)
	}
	if cfg.Observability.LogLevel != "debug" {
		t.Errorf("Observability.LogLevel = %q, want debug", cfg.Observability.LogLevel)
	}
	if cfg.Observability.Tracing.Exporter != "stdout" {
		t.Errorf("Tracing.Exporter = %q, want stdout", cfg.Observability.Tracing.Exporter)
	}
}

func TestLoad_missing_file(t *testing.T) {
	clearEnv(t)
	if _, err := Load("testdata/nonexistent.yaml"); err == nil {
		t.Fatal("Load() with missing file should return error")
	}
}

func TestLoad_missing_credentials(t *testing.T) {
	clearEnv(t)
	if _, err := Load("testdata/missing_credentials.yaml"); err == nil {
		t.Fatal("Load() without credentials should return error")
	}
}

func TestLoad_envOnly(t *testing.T) {
	clearEnv(t)
	t.Setenv("METABASE_URL", "https://mb.internal")
	t.Setenv("METABASE_USER_EMAIL", "bot@example.com")
	t.Setenv("METABASE_PASSWORD", "hunter2")
	t.Setenv("MBMCP_PORT", "9100")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Metabase.URL != "https://mb.internal" {
		t.Errorf("Metabase.URL = %q", cfg.Metabase.URL)
	}
	if cfg.Metabase.Email != "bot@example.com" {
		t.Errorf("Metabase.Email = %q", cfg.Metabase.Email)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("Server.Port = %d, want 9100", cfg.Server.Port)
	}
}

func TestLoad_envOnly_noURL(t *testing.T) {
	clearEnv(t)
	if _, err := Load(""); err == nil {
		t.Fatal("Load() without METABASE_URL should return error")
	}
}

func TestValidate_badTransport(t *testing.T) {
	cfg := Defaults()
	cfg.Metabase.URL = "https://mb.internal"
	cfg.Metabase.APIKey = "k"
	cfg.Server.Transport = "grpc"
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() with unknown transport should return error")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.Server.Transport != "stdio" {
		t.Errorf("default Transport = %q, want stdio", cfg.Server.Transport)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("default Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Metabase.Timeout != 30*time.Second {
		t.Errorf("default Metabase.Timeout = %v, want 30s", cfg.Metabase.Timeout)
	}
	if cfg.Observability.LogLevel != "info" {
		t.Errorf("default LogLevel = %q, want info", cfg.Observability.LogLevel)
	}
}
