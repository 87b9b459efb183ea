package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/sceneviewer/loading"
)

//go:embed default.yaml
var defaultYAML []byte

type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Log     LogConfig     `yaml:"log"`
	Loading LoadingConfig `yaml:"loading"`
	History HistoryConfig `yaml:"history"`
}

type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type LoadingConfig struct {
	DropPolicy      string `yaml:"drop_policy"`
	Tracking        string `yaml:"tracking"`
	DefaultSubScene int    `yaml:"default_sub_scene"`
	// CaseInsensitive is a pointer so an explicit false survives defaulting.
	CaseInsensitive *bool  `yaml:"case_insensitive_extensions"`
	Workers         int    `yaml:"workers"`
	WatchForChanges *bool  `yaml:"watch_for_changes"`
	RoutingScript   string `yaml:"routing_script"`
}

type HistoryConfig struct {
	// Path of the LevelDB journal. Empty disables the journal.
	Path string `yaml:"path"`
	// Keep bounds the journal on shutdown. 0 keeps nothing; unset means 500.
	Keep *int `yaml:"keep"`
}

// Default returns the embedded configuration.
func Default() (*Config, error) {
	return parse("default.yaml", defaultYAML)
}

// Load reads the config file at path, or the embedded default when path
// is empty.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}
	return parse(path, data)
}

func parse(name string, data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal %s: %w", name, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", name, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Window.Title == "" {
		c.Window.Title = "Scene Viewer"
	}
	if c.Window.Width <= 0 {
		c.Window.Width = 1200
	}
	if c.Window.Height <= 0 {
		c.Window.Height = 720
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Loading.DropPolicy == "" {
		c.Loading.DropPolicy = loading.AllDrops.String()
	}
	if c.Loading.Tracking == "" {
		c.Loading.Tracking = string(loading.TrackRegistry)
	}
	if c.Loading.CaseInsensitive == nil {
		c.Loading.CaseInsensitive = boolPtr(true)
	}
	if c.Loading.WatchForChanges == nil {
		c.Loading.WatchForChanges = boolPtr(true)
	}
	if c.History.Keep == nil {
		c.History.Keep = intPtr(500)
	}
}

// Validate rejects unknown enum values and negative counts.
func (c *Config) Validate() error {
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if _, err := loading.ParseDropPolicy(c.Loading.DropPolicy); err != nil {
		return err
	}
	if _, err := loading.ParseTrackingMode(c.Loading.Tracking); err != nil {
		return err
	}
	if c.Loading.Workers < 0 {
		return fmt.Errorf("loading.workers must not be negative, got %d", c.Loading.Workers)
	}
	if c.History.Keep != nil && *c.History.Keep < 0 {
		return fmt.Errorf("history.keep must not be negative, got %d", *c.History.Keep)
	}
	return nil
}

func (c *Config) LogLevel() (slog.Level, error) {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", c.Log.Level)
	}
}

func (c *Config) CaseInsensitive() bool {
	return c.Loading.CaseInsensitive == nil || *c.Loading.CaseInsensitive
}

func (c *Config) WatchForChanges() bool {
	return c.Loading.WatchForChanges == nil || *c.Loading.WatchForChanges
}

// HistoryKeep returns how many journal entries survive shutdown.
func (c *Config) HistoryKeep() int {
	if c.History.Keep == nil {
		return 500
	}
	return *c.History.Keep
}

func intPtr(i int) *int {
	return &i
}

func boolPtr(b bool) *bool {
	return &b
}
