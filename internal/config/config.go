package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file configuration.
const (
	EnvHome              = "CHRONOLINE_HOME"
	EnvLogLevel          = "CHRONOLINE_LOG_LEVEL"
	EnvLogFormat         = "CHRONOLINE_LOG_FORMAT"
	EnvMode              = "CHRONOLINE_MODE"
	EnvSlideshowDuration = "CHRONOLINE_SLIDESHOW_DURATION"
)

// Defaults applied by New.
const (
	DefaultMode                = "vertical"
	DefaultEstimatedItemHeight = 6
	DefaultOverscan            = 3
	DefaultCardWidth           = 48
	DefaultMarkdownStyle       = "dark"
	DefaultPrewarmThreshold    = 500
	DefaultSlideshowDuration   = 5 * time.Second
	DefaultFrameInterval       = 16 * time.Millisecond

	// minCardWidth leaves room for borders, padding and a few characters of text.
	minCardWidth = 16

	configFileName = "config.yaml"
	homeDirName    = ".chronoline"
)

// Validation errors.
var (
	ErrInvalidMode     = errors.New("view.mode must be one of vertical, horizontal, alternating")
	ErrInvalidHeight   = errors.New("view.estimated_item_height must be positive")
	ErrInvalidOverscan = errors.New("view.overscan must not be negative")
	ErrInvalidWidth    = fmt.Errorf("view.card_width must be at least %d", minCardWidth)
	ErrInvalidDuration = errors.New("slideshow.duration must be positive")
	ErrInvalidFrame    = errors.New("slideshow.frame_interval must be positive")
)

// Config is the complete chronoline configuration.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	View      ViewConfig      `yaml:"view"`
	Slideshow SlideshowConfig `yaml:"slideshow"`
	Search    SearchConfig    `yaml:"search"`
}

// LoggingConfig controls log level, format and destination.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

// ViewConfig controls timeline layout.
type ViewConfig struct {
	// Mode is the default layout: vertical, horizontal or alternating.
	Mode string `yaml:"mode"`

	// EstimatedItemHeight is the row count assumed for cards not yet rendered.
	EstimatedItemHeight int `yaml:"estimated_item_height"`

	// Overscan is the number of extra cards rendered above and below the viewport.
	Overscan int `yaml:"overscan"`

	// CardWidth is the card width in columns.
	CardWidth int `yaml:"card_width"`

	// MarkdownStyle is the glamour style used for card details.
	MarkdownStyle string `yaml:"markdown_style"`

	// PrewarmThreshold is the item count above which card heights are measured
	// up front in background batches. Zero disables prewarming.
	PrewarmThreshold int `yaml:"prewarm_threshold"`
}

// SlideshowConfig controls automatic advancing through items.
type SlideshowConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Duration      time.Duration `yaml:"duration"`
	FrameInterval time.Duration `yaml:"frame_interval"`

	// Loop restarts from the first item after the last one.
	Loop bool `yaml:"loop"`
}

// SearchConfig controls text search.
type SearchConfig struct {
	CaseSensitive bool `yaml:"case_sensitive"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		View: ViewConfig{
			Mode:                DefaultMode,
			EstimatedItemHeight: DefaultEstimatedItemHeight,
			Overscan:            DefaultOverscan,
			CardWidth:           DefaultCardWidth,
			MarkdownStyle:       DefaultMarkdownStyle,
			PrewarmThreshold:    DefaultPrewarmThreshold,
		},
		Slideshow: SlideshowConfig{
			Duration:      DefaultSlideshowDuration,
			FrameInterval: DefaultFrameInterval,
			Loop:          true,
		},
	}
}

// HomeDir returns the chronoline home directory: $CHRONOLINE_HOME when set,
// otherwise ~/.chronoline.
func HomeDir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, homeDirName), nil
}

// DefaultPath returns the path of the global config file.
func DefaultPath() (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Load reads the config file at path on top of the defaults. A missing file is
// not an error; the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := New()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err = os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv applies environment overrides using lookup (typically os.LookupEnv).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		c.Logging.Format = v
	}
	if v, ok := lookup(EnvMode); ok && v != "" {
		c.View.Mode = strings.ToLower(v)
	}
	if v, ok := lookup(EnvSlideshowDuration); ok && v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSlideshowDuration, err)
		}
		c.Slideshow.Duration = d
	}
	return nil
}

// parseDuration accepts Go duration strings or a bare number of milliseconds.
func parseDuration(v string) (time.Duration, error) {
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", v, err)
	}
	return d, nil
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	switch c.View.Mode {
	case "vertical", "horizontal", "alternating":
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidMode, c.View.Mode)
	}
	if c.View.EstimatedItemHeight <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidHeight, c.View.EstimatedItemHeight)
	}
	if c.View.Overscan < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidOverscan, c.View.Overscan)
	}
	if c.View.CardWidth < minCardWidth {
		return fmt.Errorf("%w: got %d", ErrInvalidWidth, c.View.CardWidth)
	}
	if c.Slideshow.Duration <= 0 {
		return fmt.Errorf("%w: got %s", ErrInvalidDuration, c.Slideshow.Duration)
	}
	if c.Slideshow.FrameInterval <= 0 {
		return fmt.Errorf("%w: got %s", ErrInvalidFrame, c.Slideshow.FrameInterval)
	}
	return nil
}
