// Package config loads examiner settings from a YAML file with environment
// overrides.
//
// Environment variables use the EXAMINER_ prefix and take precedence over
// the file:
//
//	EXAMINER_LOG_LEVEL=debug
//	EXAMINER_LOG_FORMAT=json
//	EXAMINER_OBJECT_NAME=patient
//	EXAMINER_PARALLEL=true
//	EXAMINER_WORKERS=8
//	EXAMINER_POOLING=false
//	EXAMINER_METRICS=true
//	EXAMINER_EXPRESSION_CACHE_SIZE=512
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	ex "github.com/gofhir/examiner"
	"github.com/gofhir/examiner/fhirpath"
	"github.com/gofhir/examiner/pkg/logger"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "EXAMINER_"

var (
	// ErrInvalidConfig is returned when a loaded configuration fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config is the complete examiner configuration.
type Config struct {
	Log         LogConfig             `yaml:"log" envPrefix:"LOG_"`
	Examination ExaminationConfig     `yaml:"examination"`
	Invariants  []fhirpath.Constraint `yaml:"invariants"`
}

// LogConfig configures pkg/logger.
type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

// ExaminationConfig mirrors examiner.Options.
type ExaminationConfig struct {
	ObjectName          string `yaml:"object_name" env:"OBJECT_NAME"`
	Parallel            bool   `yaml:"parallel" env:"PARALLEL"`
	Workers             int    `yaml:"workers" env:"WORKERS"`
	Pooling             bool   `yaml:"pooling" env:"POOLING"`
	Metrics             bool   `yaml:"metrics" env:"METRICS"`
	ExpressionCacheSize int    `yaml:"expression_cache_size" env:"EXPRESSION_CACHE_SIZE"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	opts := ex.DefaultOptions()
	return &Config{
		Log: LogConfig{
			Level:  logger.LevelInfo.String(),
			Format: string(logger.FormatText),
		},
		Examination: ExaminationConfig{
			ObjectName:          opts.ObjectName,
			Parallel:            opts.ParallelBranches,
			Workers:             opts.WorkerCount,
			Pooling:             opts.EnablePooling,
			Metrics:             opts.CollectMetrics,
			ExpressionCacheSize: opts.ExpressionCacheSize,
		},
	}
}

// Load reads the YAML file at path on top of the defaults, then applies
// environment overrides and validates the result. An empty path skips the
// file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		defer f.Close()

		if err := cfg.decode(f); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML on top of the defaults and validates the result.
// Environment overrides are not applied.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(r); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate reports every problem found, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error

	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if _, err := logger.ParseFormat(c.Log.Format); err != nil {
		errs = append(errs, fmt.Errorf("log.format: %w", err))
	}
	if c.Examination.Workers < 0 {
		errs = append(errs, fmt.Errorf("examination.workers: must not be negative, got %d", c.Examination.Workers))
	}
	if c.Examination.ExpressionCacheSize < 0 {
		errs = append(errs, fmt.Errorf("examination.expression_cache_size: must not be negative, got %d", c.Examination.ExpressionCacheSize))
	}

	keys := make(map[string]struct{}, len(c.Invariants))
	for i, inv := range c.Invariants {
		switch {
		case inv.Key == "":
			errs = append(errs, fmt.Errorf("invariants[%d]: key is required", i))
		case inv.Expression == "":
			errs = append(errs, fmt.Errorf("invariants[%d]: %s has no expression", i, inv.Key))
		}
		if inv.Key == "" {
			continue
		}
		if _, dup := keys[inv.Key]; dup {
			errs = append(errs, fmt.Errorf("invariants[%d]: duplicate key %s", i, inv.Key))
		}
		keys[inv.Key] = struct{}{}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// Options converts the examination settings to examiner options.
func (c *Config) Options() []ex.Option {
	e := c.Examination
	return []ex.Option{
		ex.WithObjectName(e.ObjectName),
		ex.WithParallelBranches(e.Parallel),
		ex.WithWorkerCount(e.Workers),
		ex.WithPooling(e.Pooling),
		ex.WithMetrics(e.Metrics),
		ex.WithExpressionCache(e.ExpressionCacheSize),
	}
}

// Logger builds a logger writing to w.
func (c LogConfig) Logger(w io.Writer) (*logger.Logger, error) {
	level, err := logger.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	format, err := logger.ParseFormat(c.Format)
	if err != nil {
		return nil, err
	}
	return logger.New(w, level, logger.WithFormat(format)), nil
}
