package replaycache

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ygrebnov/errorc"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

// Config holds the tunables of a cache in a file-friendly shape.
// Collaborators (Source, Augment, Combine, Logger, Hooks) are code, not config;
// merge a Config into Options with ApplyConfig.
//
//	name: train-shuffle
//	capacity: 4096
//	concat_size: 4
//	seed: 42
//	poll_interval: 25ms
//	join_timeout: 2s
//	fetch_rate: 200   # upstream records per second, 0 = unlimited
//	fetch_burst: 16
type Config struct {
	Name         string        `yaml:"name"`
	Capacity     int           `yaml:"capacity"`
	ConcatSize   int           `yaml:"concat_size"`
	Seed         uint64        `yaml:"seed"`
	PollInterval time.Duration `yaml:"poll_interval"`
	JoinTimeout  time.Duration `yaml:"join_timeout"`
	FetchRate    float64       `yaml:"fetch_rate"`
	FetchBurst   int           `yaml:"fetch_burst"`
}

// ParseConfig decodes YAML into a Config. Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%s: parse config: %w", Namespace, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%s: read config: %w", Namespace, err)
	}
	return ParseConfig(data)
}

func (cfg Config) validate() error {
	switch {
	case cfg.Capacity < 0:
		return errorc.With(ErrInvalidConfig, errorc.String("capacity", "must be >= 0"))
	case cfg.FetchRate < 0:
		return errorc.With(ErrInvalidConfig, errorc.String("fetch_rate", "must be >= 0"))
	case cfg.FetchBurst < 0:
		return errorc.With(ErrInvalidConfig, errorc.String("fetch_burst", "must be >= 0"))
	case cfg.PollInterval < 0 || cfg.JoinTimeout < 0:
		return errorc.With(ErrInvalidConfig, errorc.String("timeouts", "must be >= 0"))
	}
	return nil
}

// ApplyConfig copies every non-zero field of cfg onto opts. Seed is always copied
// (0 asks for a random seed per instance).
// A positive FetchRate installs a token-bucket limiter (burst defaults to 1).
func ApplyConfig[R any](opts *Options[R], cfg Config) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	opts.Name = coalesce(cfg.Name, opts.Name)
	opts.Capacity = coalesce(cfg.Capacity, opts.Capacity)
	opts.ConcatSize = coalesce(cfg.ConcatSize, opts.ConcatSize)
	opts.PollInterval = coalesce(cfg.PollInterval, opts.PollInterval)
	opts.JoinTimeout = coalesce(cfg.JoinTimeout, opts.JoinTimeout)
	opts.Seed = cfg.Seed
	if cfg.FetchRate > 0 {
		opts.FetchLimiter = rate.NewLimiter(rate.Limit(cfg.FetchRate), max(cfg.FetchBurst, 1))
	}
	return nil
}
