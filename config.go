package depot

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const defaultInitialCapacity = 64

// Config holds the settings a World is created with.
type Config struct {
	Name            string    `yaml:"name"`
	InitialCapacity int       `yaml:"initial_capacity"`
	MaxEntities     uint64    `yaml:"max_entities"`
	Log             LogConfig `yaml:"log"`
}

// LogConfig configures the zap logger built for a world. A disabled config
// yields a no-op logger.
type LogConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

func DefaultConfig() Config {
	return Config{
		InitialCapacity: defaultInitialCapacity,
		Log: LogConfig{
			Level:    "info",
			Encoding: "json",
		},
	}
}

// LoadConfig decodes YAML on top of DefaultConfig.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.InitialCapacity < 0 {
		return fmt.Errorf("initial_capacity must not be negative: %d", c.InitialCapacity)
	}
	switch c.Log.Encoding {
	case "", "json", "console":
	default:
		return fmt.Errorf("unknown log encoding %q", c.Log.Encoding)
	}
	return nil
}

// Option adjusts world construction.
type Option func(*worldOptions)

type worldOptions struct {
	config Config
	logger *zap.Logger
}

func WithName(name string) Option {
	return func(o *worldOptions) {
		o.config.Name = name
	}
}

func WithInitialCapacity(n int) Option {
	return func(o *worldOptions) {
		o.config.InitialCapacity = n
	}
}

// WithMaxEntities narrows the id space; 0 means the full range.
func WithMaxEntities(n uint64) Option {
	return func(o *worldOptions) {
		o.config.MaxEntities = n
	}
}

// WithLogger overrides the logger built from the config.
func WithLogger(l *zap.Logger) Option {
	return func(o *worldOptions) {
		o.logger = l
	}
}
