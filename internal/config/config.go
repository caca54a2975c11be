// Package config defines the run configuration of the loader.
//
// A Config is decoded from a YAML or JSON file (chosen by extension), then
// overlaid with environment variables so the same file can be reused across
// environments, 12-factor style. Connection strings may be given directly,
// as a database URL (resolved with xo/dburl), or composed from the legacy
// LOCAL_* (MySQL source) and ONLINE_* (Postgres warehouse) variables.
//
// Example (YAML):
//
//	job: nightly
//	source:
//	  kind: mysql
//	  dsn: app:secret@tcp(db:3306)/shop
//	warehouse:
//	  kind: postgres
//	  url: postgres://dw:secret@dw:5432/sales?sslmode=require
//	  ensure_schema: true
//	runtime:
//	  batch_size: 5000
//	  parallel_dimensions: true
//	  stage_timeout: 30m
//	  batch_timeout: 2m
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level run configuration.
type Config struct {
	// Job names the run in logs and metrics.
	Job       string    `yaml:"job" json:"job"`
	Source    Source    `yaml:"source" json:"source"`
	Warehouse Warehouse `yaml:"warehouse" json:"warehouse"`
	Runtime   Runtime   `yaml:"runtime" json:"runtime"`
	Metrics   Metrics   `yaml:"metrics" json:"metrics"`
}

// Source addresses the operational store.
type Source struct {
	// Kind is one of mysql, sqlserver, sqlite, postgres.
	Kind string `yaml:"kind" json:"kind"`
	DSN  string `yaml:"dsn" json:"dsn"`
	// URL, when set, determines both Kind and DSN.
	URL string `yaml:"url" json:"url"`
}

// Warehouse addresses the star schema.
type Warehouse struct {
	// Kind is one of the registered storage backends.
	Kind     string `yaml:"kind" json:"kind"`
	DSN      string `yaml:"dsn" json:"dsn"`
	URL      string `yaml:"url" json:"url"`
	MaxConns int    `yaml:"max_conns" json:"max_conns"`
	// EnsureSchema creates missing warehouse tables before loading.
	EnsureSchema bool `yaml:"ensure_schema" json:"ensure_schema"`
}

// Runtime controls batching, concurrency and timeouts.
type Runtime struct {
	BatchSize          int      `yaml:"batch_size" json:"batch_size"`
	ParallelDimensions bool     `yaml:"parallel_dimensions" json:"parallel_dimensions"`
	StageTimeout       Duration `yaml:"stage_timeout" json:"stage_timeout"`
	BatchTimeout       Duration `yaml:"batch_timeout" json:"batch_timeout"`
}

// Metrics selects the metrics backend.
type Metrics struct {
	// Backend is one of "", "none", "pushgateway", "datadog".
	Backend        string   `yaml:"backend" json:"backend"`
	PushgatewayURL string   `yaml:"pushgateway_url" json:"pushgateway_url"`
	DatadogAddr    string   `yaml:"datadog_addr" json:"datadog_addr"`
	Namespace      string   `yaml:"namespace" json:"namespace"`
	Tags           []string `yaml:"tags" json:"tags"`
}

// DefaultBatchSize matches batch.DefaultSize.
const DefaultBatchSize = 5000

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Job:       "salesdw",
		Source:    Source{Kind: "mysql"},
		Warehouse: Warehouse{Kind: "postgres"},
		Runtime:   Runtime{BatchSize: DefaultBatchSize},
	}
}

// Load reads path over Default, applies the environment and resolves the
// connection strings. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := Decode(b, filepath.Ext(path), &cfg); err != nil {
			return Config{}, fmt.Errorf("decode config %s: %w", path, err)
		}
	}
	ApplyEnv(&cfg, os.Getenv)
	if err := Resolve(&cfg, os.Getenv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode unmarshals b into cfg: JSON for ".json", YAML otherwise. Unknown
// fields are rejected.
func Decode(b []byte, ext string, cfg *Config) error {
	if strings.EqualFold(ext, ".json") {
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		return dec.Decode(cfg)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Duration is a time.Duration written as a Go duration string ("90s",
// "30m") in both YAML and JSON.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	return d.parse(s)
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) { return d.String(), nil }

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"90s\": %w", err)
	}
	return d.parse(s)
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

func (d *Duration) parse(s string) error {
	if strings.TrimSpace(s) == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}
