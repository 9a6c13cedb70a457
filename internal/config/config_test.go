package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "factoryplan.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
dashboard:
  addr: ":9000"
  backend_url: "https://api.example.com"
notify:
  recipients: ["ops@example.com"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Dashboard.Addr != ":9000" {
		t.Errorf("Addr = %q, want :9000", cfg.Dashboard.Addr)
	}
	if cfg.Dashboard.BackendURL != "https://api.example.com" {
		t.Errorf("BackendURL = %q", cfg.Dashboard.BackendURL)
	}
	if cfg.Dashboard.BackendTimeout != "15s" {
		t.Errorf("BackendTimeout = %q, want default 15s kept", cfg.Dashboard.BackendTimeout)
	}
	if len(cfg.Notify.Recipients) != 1 {
		t.Errorf("Recipients = %v", cfg.Notify.Recipients)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeFile(t, "dashboard: [unclosed")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, `
dashboard:
  backend_url: "https://file.example.com"
`)
	t.Setenv("FACTORYPLAN_BACKEND_URL", "http://env.example.com:5000")
	t.Setenv("FACTORYPLAN_NOTIFY_RECIPIENTS", "a@example.com, ,b@example.com")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Dashboard.BackendURL != "http://env.example.com:5000" {
		t.Errorf("BackendURL = %q, want env value", cfg.Dashboard.BackendURL)
	}
	if strings.Join(cfg.Notify.Recipients, "|") != "a@example.com|b@example.com" {
		t.Errorf("Recipients = %v", cfg.Notify.Recipients)
	}
}

func TestApplyEnv_EmptyValueIgnored(t *testing.T) {
	cfg := Default()
	cfg.applyEnv(func(key string) (string, bool) {
		if key == "FACTORYPLAN_ADDR" {
			return "", true
		}
		return "", false
	})
	if cfg.Dashboard.Addr != ":8080" {
		t.Errorf("Addr = %q, want default kept", cfg.Dashboard.Addr)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad environment", func(c *Config) { c.Environment = "staging" }, "invalid environment"},
		{"relative backend url", func(c *Config) { c.Dashboard.BackendURL = "/api" }, "backend_url"},
		{"bad timeout", func(c *Config) { c.Dashboard.BackendTimeout = "soon" }, "backend_timeout"},
		{"production without csrf key", func(c *Config) { c.Environment = Production }, "csrf_key"},
		{"production with short csrf key", func(c *Config) {
			c.Environment = Production
			c.Dashboard.CSRFKey = "short"
		}, "csrf_key"},
		{"recipients without from", func(c *Config) {
			c.Notify.Recipients = []string{"x@example.com"}
			c.Notify.From = ""
		}, "notify.from"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ProductionWithKey(t *testing.T) {
	cfg := Default()
	cfg.Environment = Production
	cfg.Dashboard.CSRFKey = strings.Repeat("k", 32)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
}

func TestDurations(t *testing.T) {
	cfg := Default()
	if got := cfg.BackendTimeout(); got != 15*time.Second {
		t.Errorf("BackendTimeout() = %v", got)
	}
	if got := cfg.SlowBackendCall(); got != 500*time.Millisecond {
		t.Errorf("SlowBackendCall() = %v", got)
	}
	cfg.Dashboard.BackendTimeout = "x"
	if got := cfg.BackendTimeout(); got != 0 {
		t.Errorf("BackendTimeout() = %v, want 0 on parse error", got)
	}
}
