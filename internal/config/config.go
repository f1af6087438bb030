// Package config loads pipeline settings from YAML, the environment and flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Sink kinds.
const (
	SinkDir = "dir"
	SinkGCS = "gcs"
)

// Filter holds the record acceptance thresholds.
type Filter struct {
	MinRating      int `yaml:"min_rating"`       // both ratings must exceed this
	MinBaseSeconds int `yaml:"min_base_seconds"` // base time control floor
	MaxHeaderLines int `yaml:"max_header_lines"` // scan bound per record
}

// Dataset controls batching of encoded samples.
type Dataset struct {
	BatchSize    int  `yaml:"batch_size"`
	MaxBatches   int  `yaml:"max_batches"` // 0 = unlimited
	Compress     bool `yaml:"compress"`
	FlushPartial bool `yaml:"flush_partial"`
}

// Sink selects where batches are written.
type Sink struct {
	Kind   string `yaml:"kind"` // dir or gcs
	Dir    string `yaml:"dir"`
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
}

// Log configures the logger.
type Log struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Config is the full pipeline configuration.
type Config struct {
	Filter     Filter  `yaml:"filter"`
	Dataset    Dataset `yaml:"dataset"`
	Sink       Sink    `yaml:"sink"`
	Log        Log     `yaml:"log"`
	ECODir     string  `yaml:"eco_dir"`
	MaxRecords int     `yaml:"max_records"` // 0 = unlimited
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Filter: Filter{
			MinRating:      2000,
			MinBaseSeconds: 180,
			MaxHeaderLines: 50,
		},
		Dataset: Dataset{
			BatchSize:    2_000_000,
			MaxBatches:   0,
			Compress:     true,
			FlushPartial: true,
		},
		Sink: Sink{
			Kind: SinkDir,
			Dir:  "./data/datasets",
		},
		Log: Log{Level: "info"},
	}
}

// Load reads path (if non-empty) over the defaults and applies environment
// overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v, ok := envInt("PGNTENSOR_RATING_MIN"); ok {
		cfg.Filter.MinRating = v
	}
	if v, ok := envInt("PGNTENSOR_BATCH_SIZE"); ok {
		cfg.Dataset.BatchSize = v
	}
	if v := os.Getenv("PGNTENSOR_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func envInt(name string) (int, bool) {
	s := os.Getenv(name)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	var errs []error
	if c.Filter.MaxHeaderLines <= 0 {
		errs = append(errs, errors.New("filter.max_header_lines must be positive"))
	}
	if c.Dataset.BatchSize <= 0 {
		errs = append(errs, errors.New("dataset.batch_size must be positive"))
	}
	if c.Dataset.MaxBatches < 0 {
		errs = append(errs, errors.New("dataset.max_batches must not be negative"))
	}
	switch c.Sink.Kind {
	case SinkDir:
		if c.Sink.Dir == "" {
			errs = append(errs, errors.New("sink.dir is required for dir sink"))
		}
	case SinkGCS:
		if c.Sink.Bucket == "" {
			errs = append(errs, errors.New("sink.bucket is required for gcs sink"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown sink kind %q", c.Sink.Kind))
	}
	return errors.Join(errs...)
}
