package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Filter.MinRating != 2000 || cfg.Filter.MinBaseSeconds != 180 || cfg.Filter.MaxHeaderLines != 50 {
		t.Errorf("unexpected filter defaults: %+v", cfg.Filter)
	}
	if !cfg.Dataset.FlushPartial {
		t.Error("FlushPartial should default to true")
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
filter:
  min_rating: 2400
dataset:
  batch_size: 1000
  compress: false
sink:
  kind: gcs
  bucket: training-data
  prefix: lichess/2024-01
eco_dir: ./data/eco
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Filter.MinRating != 2400 {
		t.Errorf("MinRating = %d, want 2400", cfg.Filter.MinRating)
	}
	// unset keys keep defaults
	if cfg.Filter.MinBaseSeconds != 180 {
		t.Errorf("MinBaseSeconds = %d, want 180", cfg.Filter.MinBaseSeconds)
	}
	if cfg.Dataset.BatchSize != 1000 || cfg.Dataset.Compress {
		t.Errorf("Dataset = %+v", cfg.Dataset)
	}
	if cfg.Sink.Kind != SinkGCS || cfg.Sink.Bucket != "training-data" || cfg.Sink.Prefix != "lichess/2024-01" {
		t.Errorf("Sink = %+v", cfg.Sink)
	}
	if cfg.ECODir != "./data/eco" {
		t.Errorf("ECODir = %q", cfg.ECODir)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PGNTENSOR_RATING_MIN", "2500")
	t.Setenv("PGNTENSOR_BATCH_SIZE", "64")
	t.Setenv("PGNTENSOR_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Filter.MinRating != 2500 || cfg.Dataset.BatchSize != 64 || cfg.Log.Level != "debug" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}

	t.Setenv("PGNTENSOR_RATING_MIN", "high")
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Filter.MinRating != 2000 {
		t.Errorf("malformed env value applied: MinRating = %d", cfg.Filter.MinRating)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load of missing file succeeded")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("filter: [1, 2"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load of malformed YAML succeeded")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero batch", func(c *Config) { c.Dataset.BatchSize = 0 }, "batch_size"},
		{"negative max batches", func(c *Config) { c.Dataset.MaxBatches = -1 }, "max_batches"},
		{"zero header bound", func(c *Config) { c.Filter.MaxHeaderLines = 0 }, "max_header_lines"},
		{"dir without path", func(c *Config) { c.Sink.Dir = "" }, "sink.dir"},
		{"gcs without bucket", func(c *Config) { c.Sink.Kind = SinkGCS }, "sink.bucket"},
		{"unknown sink", func(c *Config) { c.Sink.Kind = "s3" }, "unknown sink"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
