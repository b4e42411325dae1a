package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Input.GroupBy != "event_id" {
		t.Errorf("expected default group_by event_id, got %s", cfg.Input.GroupBy)
	}
	if len(cfg.Output.Modes) != 3 {
		t.Errorf("expected 3 default modes, got %v", cfg.Output.Modes)
	}
	if !cfg.Split.Enabled || cfg.Split.Seed != 42 {
		t.Errorf("expected split enabled with seed 42, got %+v", cfg.Split)
	}
	if cfg.Naturalizer.Locale != "fr" {
		t.Errorf("expected default locale fr, got %s", cfg.Naturalizer.Locale)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing group_by",
			modify:  func(c *Config) { c.Input.GroupBy = "" },
			wantErr: true,
		},
		{
			name:    "label-level grouping",
			modify:  func(c *Config) { c.Input.GroupBy = "event" },
			wantErr: false,
		},
		{
			name:    "unsupported group_by column",
			modify:  func(c *Config) { c.Input.GroupBy = "landmark_label" },
			wantErr: true,
		},
		{
			name:    "no modes",
			modify:  func(c *Config) { c.Output.Modes = nil },
			wantErr: true,
		},
		{
			name:    "unknown mode",
			modify:  func(c *Config) { c.Output.Modes = []string{"simple", "gpt"} },
			wantErr: true,
		},
		{
			name:    "unsupported rdf format",
			modify:  func(c *Config) { c.Output.RDFFormat = "rdfxml" },
			wantErr: true,
		},
		{
			name:    "turtle rdf format",
			modify:  func(c *Config) { c.Output.RDFFormat = "turtle" },
			wantErr: false,
		},
		{
			name:    "ratios not summing to one",
			modify:  func(c *Config) { c.Split.Test = 0.2 },
			wantErr: true,
		},
		{
			name: "bad ratios ignored when split disabled",
			modify: func(c *Config) {
				c.Split.Enabled = false
				c.Split.Test = 0.2
			},
			wantErr: false,
		},
		{
			name:    "publish without url",
			modify:  func(c *Config) { c.NATS.Publish = true },
			wantErr: true,
		},
		{
			name:    "zero workers",
			modify:  func(c *Config) { c.Workers = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyFile(t *testing.T) {
	// Create temp file with config
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
input:
  paths:
    - "data/**/*.tsv"
  separator: ";"
  group_by: event
output:
  dir: out
  modes: [simple, complex]
  rdf_format: ntriples
split:
  enabled: false
naturalizer:
  locale: en-GB
nats:
  url: "nats://test:4222"
  publish: true
  timeout: 3s
watch:
  debounce: 2s
workers: 4
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := DefaultConfig()
	if err := cfg.ApplyFile(configPath); err != nil {
		t.Fatalf("ApplyFile() error = %v", err)
	}

	if len(cfg.Input.Paths) != 1 || cfg.Input.Paths[0] != "data/**/*.tsv" {
		t.Errorf("unexpected input paths %v", cfg.Input.Paths)
	}
	if cfg.Input.Separator != ";" {
		t.Errorf("expected separator ;, got %s", cfg.Input.Separator)
	}
	if cfg.Input.GroupBy != "event" {
		t.Errorf("expected group_by event, got %s", cfg.Input.GroupBy)
	}
	if !cfg.HasMode(ModeComplex) || cfg.HasMode(ModeBERT) {
		t.Errorf("unexpected modes %v", cfg.Output.Modes)
	}
	if cfg.Split.Enabled {
		t.Error("expected split disabled by file")
	}
	if cfg.Split.Seed != 42 {
		t.Errorf("expected default seed to survive, got %d", cfg.Split.Seed)
	}
	if cfg.NATS.Timeout != 3*time.Second {
		t.Errorf("expected nats timeout 3s, got %v", cfg.NATS.Timeout)
	}
	if cfg.Watch.Debounce != 2*time.Second {
		t.Errorf("expected debounce 2s, got %v", cfg.Watch.Debounce)
	}
	if cfg.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Workers)
	}
	if cfg.Neo4j.User != "neo4j" {
		t.Errorf("expected default neo4j user, got %s", cfg.Neo4j.User)
	}
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()
	override := &Config{
		Input: InputConfig{
			GroupBy: "event",
		},
		Output: OutputConfig{
			Dir:        "/override/out",
			Sequential: true,
		},
		Split: SplitConfig{
			Train: 0.6,
			Val:   0.2,
			Test:  0.2,
		},
	}

	base.Merge(override)

	if base.Input.GroupBy != "event" {
		t.Errorf("expected group_by event, got %s", base.Input.GroupBy)
	}
	// Separator should remain from base since override didn't set it
	if base.Input.Separator != "tab" {
		t.Errorf("expected separator to remain default, got %s", base.Input.Separator)
	}
	if base.Output.Dir != "/override/out" || !base.Output.Sequential {
		t.Errorf("unexpected output %+v", base.Output)
	}
	if base.Split.Train != 0.6 || base.Split.Seed != 42 {
		t.Errorf("unexpected split %+v", base.Split)
	}
	if len(base.Output.Modes) != 3 {
		t.Errorf("expected modes to remain default, got %v", base.Output.Modes)
	}
}

func TestConfigSaveToFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "config.yaml")

	cfg := DefaultConfig()
	cfg.Naturalizer.Locale = "en"

	if err := cfg.SaveToFile(configPath); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	// Verify file was created
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("config file was not created")
	}

	// Load and verify
	loaded := &Config{}
	if err := loaded.ApplyFile(configPath); err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if loaded.Naturalizer.Locale != "en" {
		t.Errorf("expected locale en, got %s", loaded.Naturalizer.Locale)
	}
	if loaded.Watch.Debounce != cfg.Watch.Debounce {
		t.Errorf("expected debounce %v, got %v", cfg.Watch.Debounce, loaded.Watch.Debounce)
	}
}

func TestLoaderLayers(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	userConfig := filepath.Join(home, UserConfigDir, UserConfigFile)
	if err := os.MkdirAll(filepath.Dir(userConfig), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(userConfig, []byte("naturalizer:\n  locale: en\nworkers: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	project := t.TempDir()
	nested := filepath.Join(project, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(project, ProjectConfigFile), []byte("workers: 3\ninput:\n  group_by: event\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(nested)

	explicit := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(explicit, []byte("output:\n  dir: results\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvNATSURL, "nats://env:4222")
	t.Setenv(EnvNeo4jPassword, "secret")

	cfg, err := NewLoader(nil).Load(explicit)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Naturalizer.Locale != "en" {
		t.Errorf("expected user locale en, got %s", cfg.Naturalizer.Locale)
	}
	if cfg.Workers != 3 {
		t.Errorf("expected project workers 3, got %d", cfg.Workers)
	}
	if cfg.Input.GroupBy != "event" {
		t.Errorf("expected project group_by event, got %s", cfg.Input.GroupBy)
	}
	if cfg.Output.Dir != "results" {
		t.Errorf("expected explicit output dir results, got %s", cfg.Output.Dir)
	}
	if cfg.NATS.URL != "nats://env:4222" {
		t.Errorf("expected env nats url, got %s", cfg.NATS.URL)
	}
	if cfg.Neo4j.Password != "secret" {
		t.Errorf("expected env neo4j password, got %s", cfg.Neo4j.Password)
	}
}

func TestLoaderMissingExplicitFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	if _, err := NewLoader(nil).Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestEnsureUserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := NewLoader(nil).EnsureUserConfig()
	if err != nil {
		t.Fatalf("EnsureUserConfig() error = %v", err)
	}
	if path != filepath.Join(home, UserConfigDir, UserConfigFile) {
		t.Errorf("unexpected path %s", path)
	}
	created := &Config{}
	if err := created.ApplyFile(path); err != nil {
		t.Fatalf("created config does not load: %v", err)
	}
	if err := created.Validate(); err != nil {
		t.Errorf("created config is invalid: %v", err)
	}
}
