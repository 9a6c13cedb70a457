// Package config loads factoryplan configuration.
//
// Values come from three layers, later layers winning:
//   - built-in defaults (Default)
//   - an optional YAML file (--config or FACTORYPLAN_CONFIG)
//   - FACTORYPLAN_* environment variables
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment is the deployment type.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

// Config is the full configuration of both commands.
type Config struct {
	Environment Environment      `yaml:"environment"`
	Dashboard   DashboardConfig  `yaml:"dashboard"`
	DevBackend  DevBackendConfig `yaml:"devbackend"`
	Notify      NotifyConfig     `yaml:"notify"`
}

// DashboardConfig configures `factoryplan serve`.
type DashboardConfig struct {
	Addr string `yaml:"addr"`

	// BackendURL is the root of the content REST API.
	BackendURL string `yaml:"backend_url"`

	// CSRFKey is the 32-byte key for form CSRF tokens. Required in production.
	CSRFKey string `yaml:"csrf_key"`

	// BackendTimeout bounds each backend call, e.g. "15s".
	BackendTimeout string `yaml:"backend_timeout"`

	// SlowBackendCall is the WARN threshold for backend calls, e.g. "500ms".
	SlowBackendCall string `yaml:"slow_backend_call"`
}

// DevBackendConfig configures `factoryplan devbackend`.
type DevBackendConfig struct {
	Addr          string `yaml:"addr"`
	DBPath        string `yaml:"db_path"`
	AdminUsername string `yaml:"admin_username"`
	AdminPassword string `yaml:"admin_password"`
}

// NotifyConfig configures content-change emails. No recipients disables them.
type NotifyConfig struct {
	ResendKey  string   `yaml:"resend_key"`
	From       string   `yaml:"from"`
	ReplyTo    string   `yaml:"reply_to"`
	Recipients []string `yaml:"recipients"`
}

// Default returns the development defaults.
func Default() *Config {
	return &Config{
		Environment: Development,
		Dashboard: DashboardConfig{
			Addr:            ":8080",
			BackendURL:      "http://localhost:5000",
			BackendTimeout:  "15s",
			SlowBackendCall: "500ms",
		},
		DevBackend: DevBackendConfig{
			Addr:          ":5000",
			DBPath:        "factoryplan.db",
			AdminUsername: "admin",
			AdminPassword: "factory-admin",
		},
		Notify: NotifyConfig{
			From: "Factory Planning <noreply@factoryplan.local>",
		},
	}
}

// Load builds the configuration from defaults, the file at path (skipped when
// path is empty) and the environment.
// POST: Returned config has had env overrides applied but is not yet validated
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("FACTORYPLAN_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv(os.LookupEnv)
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides file values with FACTORYPLAN_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var env string
	set("FACTORYPLAN_ENV", &env)
	if env != "" {
		c.Environment = Environment(env)
	}
	set("FACTORYPLAN_ADDR", &c.Dashboard.Addr)
	set("FACTORYPLAN_BACKEND_URL", &c.Dashboard.BackendURL)
	set("FACTORYPLAN_CSRF_KEY", &c.Dashboard.CSRFKey)
	set("FACTORYPLAN_BACKEND_TIMEOUT", &c.Dashboard.BackendTimeout)
	set("FACTORYPLAN_DEVBACKEND_ADDR", &c.DevBackend.Addr)
	set("FACTORYPLAN_DB", &c.DevBackend.DBPath)
	set("FACTORYPLAN_ADMIN_USERNAME", &c.DevBackend.AdminUsername)
	set("FACTORYPLAN_ADMIN_PASSWORD", &c.DevBackend.AdminPassword)
	set("FACTORYPLAN_RESEND_KEY", &c.Notify.ResendKey)
	set("FACTORYPLAN_RESEND_FROM", &c.Notify.From)
	set("FACTORYPLAN_REPLY_TO", &c.Notify.ReplyTo)

	var recipients string
	set("FACTORYPLAN_NOTIFY_RECIPIENTS", &recipients)
	if recipients != "" {
		c.Notify.Recipients = splitList(recipients)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction reports whether the environment is production.
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// BackendTimeout parses Dashboard.BackendTimeout.
func (c *Config) BackendTimeout() time.Duration {
	d, err := time.ParseDuration(c.Dashboard.BackendTimeout)
	if err != nil {
		return 0
	}
	return d
}

// SlowBackendCall parses Dashboard.SlowBackendCall.
func (c *Config) SlowBackendCall() time.Duration {
	d, err := time.ParseDuration(c.Dashboard.SlowBackendCall)
	if err != nil {
		return 0
	}
	return d
}

// Validate checks the configuration for errors, reporting all of them.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}
	if c.Dashboard.Addr == "" {
		errs = append(errs, errors.New("dashboard.addr is required"))
	}
	if u, err := url.Parse(c.Dashboard.BackendURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("dashboard.backend_url must be an absolute http(s) URL, got %q", c.Dashboard.BackendURL))
	}
	if _, err := time.ParseDuration(c.Dashboard.BackendTimeout); err != nil {
		errs = append(errs, fmt.Errorf("dashboard.backend_timeout: %w", err))
	}
	if c.Dashboard.SlowBackendCall != "" {
		if _, err := time.ParseDuration(c.Dashboard.SlowBackendCall); err != nil {
			errs = append(errs, fmt.Errorf("dashboard.slow_backend_call: %w", err))
		}
	}
	if c.IsProduction() && len(c.Dashboard.CSRFKey) != 32 {
		errs = append(errs, errors.New("dashboard.csrf_key must be 32 bytes in production"))
	}
	if c.DevBackend.DBPath == "" {
		errs = append(errs, errors.New("devbackend.db_path is required"))
	}
	if len(c.Notify.Recipients) > 0 && c.Notify.From == "" {
		errs = append(errs, errors.New("notify.from is required when recipients are set"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
