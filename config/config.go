// Package config provides configuration loading and management for semevents.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Output modes.
const (
	ModeSimple  = "simple"
	ModeBERT    = "bert"
	ModeComplex = "complex"
)

// AllModes lists the output modes in the order they are written.
var AllModes = []string{ModeSimple, ModeBERT, ModeComplex}

// GroupColumns are the columns rows can be grouped on.
var GroupColumns = []string{"event_id", "event"}

var rdfFormats = []string{"", "turtle", "ttl", "ntriples", "n-triples", "nt", "jsonld", "json-ld"}

// Config represents the complete semevents configuration
type Config struct {
	Input       InputConfig       `yaml:"input"`
	Output      OutputConfig      `yaml:"output"`
	Split       SplitConfig       `yaml:"split"`
	Naturalizer NaturalizerConfig `yaml:"naturalizer"`
	NATS        NATSConfig        `yaml:"nats"`
	Neo4j       Neo4jConfig       `yaml:"neo4j"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Watch       WatchConfig       `yaml:"watch"`
	// Workers bounds the number of event groups converted concurrently.
	Workers int `yaml:"workers"`
}

// InputConfig configures the event tables to read
type InputConfig struct {
	// Paths are file paths or doublestar globs (e.g. "data/**/*.tsv")
	Paths []string `yaml:"paths"`
	// Separator is the field separator: a single character, "tab", "comma" or "semicolon"
	Separator string `yaml:"separator"`
	// GroupBy is the column rows are grouped on ("event_id" or "event")
	GroupBy string `yaml:"group_by"`
}

// OutputConfig configures what is written and where
type OutputConfig struct {
	// Dir is the output directory (empty = next to each input)
	Dir string `yaml:"dir"`
	// Modes selects the descriptions to generate
	Modes []string `yaml:"modes"`
	// RDFFormat exports complex descriptions as RDF when set
	RDFFormat string `yaml:"rdf_format"`
	// Sequential uses counter identifiers instead of random UUIDs in complex mode
	Sequential bool `yaml:"sequential"`
}

// SplitConfig configures the train/val/test split of each output
type SplitConfig struct {
	Enabled bool    `yaml:"enabled"`
	Train   float64 `yaml:"train"`
	Val     float64 `yaml:"val"`
	Test    float64 `yaml:"test"`
	Seed    uint64  `yaml:"seed"`
}

// NaturalizerConfig configures date naturalization in BERT mode
type NaturalizerConfig struct {
	// Locale is a BCP 47 tag; French and English month names are supported
	Locale string `yaml:"locale"`
}

// NATSConfig configures the NATS connection
type NATSConfig struct {
	// URL is the NATS server URL (empty = NATS disabled)
	URL string `yaml:"url"`
	// Publish sends complex descriptions to the graph ingest stream
	Publish bool `yaml:"publish"`
	// Store keeps every description in a JetStream key-value bucket per mode
	Store bool `yaml:"store"`
	// Timeout bounds connection and publish operations
	Timeout time.Duration `yaml:"timeout"`
}

// Neo4jConfig configures loading complex descriptions into Neo4j
type Neo4jConfig struct {
	// URI is the bolt URI (empty = Neo4j disabled)
	URI      string `yaml:"uri"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// MetricsConfig configures the Prometheus endpoint
type MetricsConfig struct {
	// Addr is the listen address of /metrics in watch mode (empty = disabled)
	Addr string `yaml:"addr"`
}

// WatchConfig configures watch mode
type WatchConfig struct {
	// Debounce is the quiet period before a changed table is converted
	Debounce time.Duration `yaml:"debounce"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			Separator: "tab",
			GroupBy:   "event_id",
		},
		Output: OutputConfig{
			Dir:   "", // Next to input
			Modes: []string{ModeSimple, ModeBERT, ModeComplex},
		},
		Split: SplitConfig{
			Enabled: true,
			Train:   0.8,
			Val:     0.1,
			Test:    0.1,
			Seed:    42,
		},
		Naturalizer: NaturalizerConfig{
			Locale: "fr",
		},
		NATS: NATSConfig{
			Timeout: 10 * time.Second,
		},
		Neo4j: Neo4jConfig{
			User:     "neo4j",
			Database: "neo4j",
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
		Workers: 1,
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Input.GroupBy == "" {
		return fmt.Errorf("input.group_by is required")
	}
	if !slices.Contains(GroupColumns, c.Input.GroupBy) {
		return fmt.Errorf("input.group_by: unsupported column %q (want event_id or event)", c.Input.GroupBy)
	}
	if len(c.Output.Modes) == 0 {
		return fmt.Errorf("output.modes must name at least one mode")
	}
	for _, mode := range c.Output.Modes {
		if !slices.Contains(AllModes, mode) {
			return fmt.Errorf("output.modes: unknown mode %q", mode)
		}
	}
	if !slices.Contains(rdfFormats, c.Output.RDFFormat) {
		return fmt.Errorf("output.rdf_format: unsupported format %q", c.Output.RDFFormat)
	}
	if c.Split.Enabled {
		if c.Split.Train < 0 || c.Split.Val < 0 || c.Split.Test < 0 {
			return fmt.Errorf("split ratios must not be negative")
		}
		if sum := c.Split.Train + c.Split.Val + c.Split.Test; math.Abs(sum-1) > 1e-6 {
			return fmt.Errorf("split ratios must sum to 1.0, got %.6f", sum)
		}
	}
	if (c.NATS.Publish || c.NATS.Store) && c.NATS.URL == "" {
		return fmt.Errorf("nats.url is required when nats.publish or nats.store is set")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	return nil
}

// HasMode reports whether mode is enabled.
func (c *Config) HasMode(mode string) bool {
	return slices.Contains(c.Output.Modes, mode)
}

// ApplyFile overlays the YAML file at path onto c. Keys absent from the file
// keep their current value.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values).
// Booleans can only be switched on by a merge.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Input
	if len(other.Input.Paths) > 0 {
		c.Input.Paths = other.Input.Paths
	}
	if other.Input.Separator != "" {
		c.Input.Separator = other.Input.Separator
	}
	if other.Input.GroupBy != "" {
		c.Input.GroupBy = other.Input.GroupBy
	}

	// Output
	if other.Output.Dir != "" {
		c.Output.Dir = other.Output.Dir
	}
	if len(other.Output.Modes) > 0 {
		c.Output.Modes = other.Output.Modes
	}
	if other.Output.RDFFormat != "" {
		c.Output.RDFFormat = other.Output.RDFFormat
	}
	if other.Output.Sequential {
		c.Output.Sequential = true
	}

	// Split
	if other.Split.Enabled {
		c.Split.Enabled = true
	}
	if other.Split.Train != 0 || other.Split.Val != 0 || other.Split.Test != 0 {
		c.Split.Train = other.Split.Train
		c.Split.Val = other.Split.Val
		c.Split.Test = other.Split.Test
	}
	if other.Split.Seed != 0 {
		c.Split.Seed = other.Split.Seed
	}

	// Naturalizer
	if other.Naturalizer.Locale != "" {
		c.Naturalizer.Locale = other.Naturalizer.Locale
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.Publish {
		c.NATS.Publish = true
	}
	if other.NATS.Store {
		c.NATS.Store = true
	}
	if other.NATS.Timeout != 0 {
		c.NATS.Timeout = other.NATS.Timeout
	}

	// Neo4j
	if other.Neo4j.URI != "" {
		c.Neo4j.URI = other.Neo4j.URI
	}
	if other.Neo4j.User != "" {
		c.Neo4j.User = other.Neo4j.User
	}
	if other.Neo4j.Password != "" {
		c.Neo4j.Password = other.Neo4j.Password
	}
	if other.Neo4j.Database != "" {
		c.Neo4j.Database = other.Neo4j.Database
	}

	// Metrics
	if other.Metrics.Addr != "" {
		c.Metrics.Addr = other.Metrics.Addr
	}

	// Watch
	if other.Watch.Debounce != 0 {
		c.Watch.Debounce = other.Watch.Debounce
	}

	if other.Workers != 0 {
		c.Workers = other.Workers
	}
}
