// Package config holds the tunables of the rain effect and reads them from YAML or JSON files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ensigniasec/signature-rain/internal/validate"
)

// DefaultPath is where the CLI looks for a config file when --config is not given.
const DefaultPath = "~/.config/signature-rain/config.yaml"

// Environment overrides, applied after the file and before flags.
const (
	EnvReducedMotion = "RAIN_REDUCED_MOTION"
	EnvTheme         = "RAIN_THEME"
)

// ErrInvalid wraps every validation failure returned by Load and Validate.
var ErrInvalid = errors.New("invalid config")

// Config is the full set of rain tunables. Zero values are not meaningful; start from Default.
type Config struct {
	InitialColumns int `yaml:"initial_columns" json:"initial_columns" validate:"gte=0,ltefield=MaxColumns"`
	MaxColumns     int `yaml:"max_columns" json:"max_columns" validate:"gte=1,lte=1000"`

	MinLength int `yaml:"min_length" json:"min_length" validate:"gte=1"`
	MaxLength int `yaml:"max_length" json:"max_length" validate:"gtfield=MinLength,lte=500"`

	MinDuration Duration `yaml:"min_duration" json:"min_duration" validate:"gt=0"`
	MaxDuration Duration `yaml:"max_duration" json:"max_duration" validate:"gtfield=MinDuration"`
	MaxDelay    Duration `yaml:"max_delay" json:"max_delay" validate:"gte=0"`

	SpawnInterval         Duration `yaml:"spawn_interval" json:"spawn_interval" validate:"gt=0"`
	ReducedMotionInterval Duration `yaml:"reduced_motion_interval" json:"reduced_motion_interval" validate:"gt=0"`
	MinSpawnGap           Duration `yaml:"min_spawn_gap" json:"min_spawn_gap" validate:"gte=0"`

	CleanupInterval Duration `yaml:"cleanup_interval" json:"cleanup_interval" validate:"gt=0"`
	// TrimThreshold of 0 means half of MaxColumns.
	TrimThreshold int `yaml:"trim_threshold" json:"trim_threshold" validate:"gte=0,ltefield=MaxColumns"`
	TrimBatch     int `yaml:"trim_batch" json:"trim_batch" validate:"gte=1"`

	ReducedMotion bool   `yaml:"reduced_motion" json:"reduced_motion"`
	Theme         string `yaml:"theme" json:"theme" validate:"required"`
	ThemeDir      string `yaml:"theme_dir,omitempty" json:"theme_dir,omitempty"`
	// Charset overrides the theme's glyphs when set.
	Charset   string `yaml:"charset,omitempty" json:"charset,omitempty" validate:"omitempty,charset"`
	FrameRate int    `yaml:"frame_rate" json:"frame_rate" validate:"gte=1,lte=120"`
}

// Default returns the stock configuration of the signature effect.
func Default() Config {
	return Config{
		InitialColumns:        40, //nolint:mnd // defaults table
		MaxColumns:            80, //nolint:mnd
		MinLength:             10, //nolint:mnd
		MaxLength:             30, //nolint:mnd
		MinDuration:           Duration(15 * time.Second),
		MaxDuration:           Duration(25 * time.Second),
		MaxDelay:              Duration(2 * time.Second),
		SpawnInterval:         Duration(300 * time.Millisecond),
		ReducedMotionInterval: Duration(2 * time.Second),
		MinSpawnGap:           Duration(100 * time.Millisecond),
		CleanupInterval:       Duration(5 * time.Second),
		TrimThreshold:         0,
		TrimBatch:             10, //nolint:mnd
		Theme:                 "matrix",
		FrameRate:             30, //nolint:mnd
	}
}

// Threshold is the live count above which defensive trimming kicks in.
func (c Config) Threshold() int {
	if c.TrimThreshold > 0 {
		return c.TrimThreshold
	}
	return c.MaxColumns / 2 //nolint:mnd // half capacity
}

// Validate checks bounds and cross-field rules.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalid, validate.Describe(err))
	}
	return nil
}

// Load reads a config file over the defaults and validates the result.
// A missing file is reported with an error wrapping fs.ErrNotExist.
func Load(path string) (Config, error) {
	cfg := Default()
	expanded, err := ExpandTilde(path)
	if err != nil {
		return cfg, err
	}
	logrus.Debug("Loading config file from: ", expanded)
	data, err := readFile(expanded)
	if err != nil {
		return cfg, err
	}
	if err := unmarshal(expanded, data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %s: %w", ErrInvalid, expanded, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", expanded, err)
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but returns the defaults when the file does not exist.
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		logrus.Debugf("no config at %s; using defaults", path)
		return Default(), nil
	}
	return cfg, err
}

// ApplyEnv overlays RAIN_* environment variables. Unparseable values are logged and ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(EnvReducedMotion); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			logrus.Warnf("ignoring %s=%q: %v", EnvReducedMotion, v, err)
		} else {
			c.ReducedMotion = b
		}
	}
	if v, ok := lookup(EnvTheme); ok && v != "" {
		c.Theme = v
	}
}

// Save writes the config as YAML, creating parent directories as needed.
func (c Config) Save(path string) error {
	expanded, err := ExpandTilde(path)
	if err != nil {
		return err
	}
	logrus.Debug("Saving config file to: ", expanded)
	if err := os.MkdirAll(filepath.Dir(expanded), 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(expanded, data, 0o600)
}

// ExpandTilde expands a leading tilde to the user's home directory.
func ExpandTilde(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, path[1:]), nil
}
