// Package config loads service settings from defaults, an optional YAML file
// and environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// PathEnv names the environment variable holding the optional YAML file path.
const PathEnv = "CALC_CONFIG"

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Sessions SessionsConfig `yaml:"sessions"`
	OTLP     OTLPConfig     `yaml:"otlp"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type SessionsConfig struct {
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	MaxSessions   int           `yaml:"max_sessions"`
}

// OTLPConfig toggles the OTLP exporters. Endpoints and headers come from the
// standard OTEL_EXPORTER_OTLP_* variables read by the exporters themselves.
type OTLPConfig struct {
	Enabled     bool `yaml:"enabled"`
	LogsEnabled bool `yaml:"logs_enabled"`
}

func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ShutdownTimeout: 5 * time.Second,
		},
		Sessions: SessionsConfig{
			TTL:           30 * time.Minute,
			SweepInterval: time.Minute,
			MaxSessions:   10000,
		},
	}
}

// Load builds the configuration: defaults, then the file named by
// CALC_CONFIG if set, then environment overrides.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if path := strings.TrimSpace(os.Getenv(PathEnv)); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func applyEnvOverrides(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv("HTTP_ADDR")); v != "" {
		cfg.HTTP.Addr = v
	}
	if err := envDuration("SHUTDOWN_TIMEOUT", &cfg.HTTP.ShutdownTimeout); err != nil {
		return err
	}
	if err := envDuration("SESSION_TTL", &cfg.Sessions.TTL); err != nil {
		return err
	}
	if err := envDuration("SESSION_SWEEP_INTERVAL", &cfg.Sessions.SweepInterval); err != nil {
		return err
	}
	if v := strings.TrimSpace(os.Getenv("MAX_SESSIONS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MAX_SESSIONS: %w", err)
		}
		cfg.Sessions.MaxSessions = n
	}
	if err := envBool("OTLP_ENABLED", &cfg.OTLP.Enabled); err != nil {
		return err
	}
	if err := envBool("OTLP_LOGS_ENABLED", &cfg.OTLP.LogsEnabled); err != nil {
		return err
	}
	return nil
}

func envDuration(key string, dst *time.Duration) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func envBool(key string, dst *bool) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr is required"))
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("http.shutdown_timeout must be positive"))
	}
	if c.Sessions.TTL < 0 {
		errs = append(errs, errors.New("sessions.ttl must not be negative"))
	}
	if c.Sessions.SweepInterval < 0 {
		errs = append(errs, errors.New("sessions.sweep_interval must not be negative"))
	}
	if c.Sessions.MaxSessions < 0 {
		errs = append(errs, errors.New("sessions.max_sessions must not be negative"))
	}
	if c.OTLP.LogsEnabled && !c.OTLP.Enabled {
		errs = append(errs, errors.New("otlp.logs_enabled requires otlp.enabled"))
	}
	return errors.Join(errs...)
}
