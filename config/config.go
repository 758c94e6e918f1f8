// Package config loads the service configuration: defaults first, then an
// optional JSON file, then environment overrides. Durations in the file may
// be written either as Go duration strings ("2s") or as nanosecond numbers.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// Duration wraps time.Duration so JSON configs can use readable strings.
type Duration time.Duration

// UnmarshalJSON accepts both "2s" and raw nanosecond numbers.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		*d = Duration(parsed)
		return nil
	default:
		return fmt.Errorf("invalid duration type %T", v)
	}
}

// MarshalJSON writes the string form.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Std returns the standard library representation.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the complete service configuration.
type Config struct {
	NATS       NATSConfig       `json:"nats"`
	Store      StoreConfig      `json:"store"`
	Server     ServerConfig     `json:"server"`
	Metrics    MetricsConfig    `json:"metrics"`
	Validation ValidationConfig `json:"validation"`
}

// NATSConfig defines the NATS connection settings.
type NATSConfig struct {
	URL            string   `json:"url"`
	Name           string   `json:"name,omitempty"`
	MaxReconnects  int      `json:"max_reconnects,omitempty"`
	ReconnectWait  Duration `json:"reconnect_wait,omitempty"`
	ConnectTimeout Duration `json:"connect_timeout,omitempty"`
}

// StoreConfig defines the JetStream ObjectStore bucket.
type StoreConfig struct {
	Bucket      string `json:"bucket"`
	Description string `json:"description,omitempty"`
	Replicas    int    `json:"replicas,omitempty"`
}

// ServerConfig defines the request/reply subjects and per-request timeout.
// Empty subjects fall back to the server package defaults.
type ServerConfig struct {
	OperationsSubject string   `json:"operations_subject,omitempty"`
	AnalysisSubject   string   `json:"analysis_subject,omitempty"`
	ReportSubject     string   `json:"report_subject,omitempty"`
	ClientsSubject    string   `json:"clients_subject,omitempty"`
	WorkloadsSubject  string   `json:"workloads_subject,omitempty"`
	RequestTimeout    Duration `json:"request_timeout,omitempty"`
}

// MetricsConfig defines the prometheus scrape endpoint.
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr,omitempty"`
}

// ValidationConfig bounds the accepted date range in payloads.
type ValidationConfig struct {
	MinYear int `json:"min_year,omitempty"`
}

// Default returns the configuration used when no file and no environment
// overrides are present.
func Default() *Config {
	return &Config{
		NATS: NATSConfig{
			URL:            "nats://localhost:4222",
			Name:           "workplan",
			MaxReconnects:  -1,
			ReconnectWait:  Duration(2 * time.Second),
			ConnectTimeout: Duration(5 * time.Second),
		},
		Store: StoreConfig{
			Bucket:      "WORKPLAN",
			Description: "Client and workload documents",
			Replicas:    1,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    ":9090",
		},
		Validation: ValidationConfig{
			MinYear: 2024,
		},
	}
}

// Load builds the configuration from defaults, the optional file at path,
// and environment overrides, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Environment variable names recognized by applyEnvOverrides.
const (
	EnvNATSURL     = "WORKPLAN_NATS_URL"
	EnvStoreBucket = "WORKPLAN_STORE_BUCKET"
	EnvMetricsAddr = "WORKPLAN_METRICS_ADDR"
)

func applyEnvOverrides(cfg *Config) {
	if url := os.Getenv(EnvNATSURL); url != "" {
		cfg.NATS.URL = url
	}
	if bucket := os.Getenv(EnvStoreBucket); bucket != "" {
		cfg.Store.Bucket = bucket
	}
	if addr := os.Getenv(EnvMetricsAddr); addr != "" {
		cfg.Metrics.Addr = addr
	}
}

// Validate checks the configuration for values the service cannot start
// with.
func (c *Config) Validate() error {
	if c.NATS.URL == "" {
		return errors.New("nats.url is required")
	}
	if c.Store.Bucket == "" {
		return errors.New("store.bucket is required")
	}
	if c.Store.Replicas < 0 {
		return fmt.Errorf("store.replicas cannot be negative: %d", c.Store.Replicas)
	}
	if c.Server.RequestTimeout < 0 {
		return errors.New("server.request_timeout cannot be negative")
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return errors.New("metrics.addr is required when metrics are enabled")
	}
	if c.Validation.MinYear < 0 {
		return fmt.Errorf("validation.min_year cannot be negative: %d", c.Validation.MinYear)
	}
	return nil
}
