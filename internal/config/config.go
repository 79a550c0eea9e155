// Package config loads the embedded defaults and the optional user file.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fioncat/otree/internal/filter"
	"github.com/fioncat/otree/pkg/settings"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

var (
	embeddedConfigOnce sync.Once
	embeddedConfig     Config
	embeddedConfigErr  error
)

// Config is the merged configuration.
type Config struct {
	App        AppConfig        `yaml:"app"`
	UI         UIConfig         `yaml:"ui"`
	Filter     FilterConfig     `yaml:"filter"`
	LiveReload LiveReloadConfig `yaml:"live_reload"`
}

// AppConfig holds process-wide switches.
type AppConfig struct {
	Debug bool `yaml:"debug"`
}

// UIConfig controls the terminal view.
type UIConfig struct {
	PageSize  int           `yaml:"page_size"`
	NoColor   bool          `yaml:"no_color"`
	ShowTypes bool          `yaml:"show_types"`
	Colors    Colors        `yaml:"colors"`
	Preview   PreviewConfig `yaml:"preview"`
}

// Bounds for PreviewConfig.TreeSize.
const (
	MinTreeSize = 20
	MaxTreeSize = 80
)

// PreviewConfig controls the pane that shows the selected value.
type PreviewConfig struct {
	Enabled bool `yaml:"enabled"`
	// TreeSize is the percentage of the width given to the tree.
	TreeSize int `yaml:"tree_size"`
}

// Colors are lipgloss color strings: ANSI numbers or "#rrggbb".
type Colors struct {
	Key          string `yaml:"key"`
	Value        string `yaml:"value"`
	Summary      string `yaml:"summary"`
	Match        string `yaml:"match"`
	CurrentMatch string `yaml:"current_match"`
	Cursor       string `yaml:"cursor"`
	Status       string `yaml:"status"`
	Error        string `yaml:"error"`
}

// FilterConfig is the initial filter state.
type FilterConfig struct {
	Mode       string `yaml:"mode"`
	IgnoreCase bool   `yaml:"ignore_case"`
	Exclude    bool   `yaml:"exclude"`
	Regex      bool   `yaml:"regex"`
}

// LiveReloadConfig tunes file watching.
type LiveReloadConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxDataSize int64         `yaml:"max_data_size"`
	MinInterval time.Duration `yaml:"min_interval"`
}

// DefaultYAML returns a copy of the embedded default config YAML bytes.
func DefaultYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// Default parses and returns the embedded default configuration.
func Default() (Config, error) {
	embeddedConfigOnce.Do(func() {
		if len(embeddedDefaultConfig) == 0 {
			embeddedConfigErr = fmt.Errorf("embedded default config is empty")
			return
		}
		if err := decode(embeddedDefaultConfig, &embeddedConfig); err != nil {
			embeddedConfigErr = fmt.Errorf("decode embedded default config: %w", err)
		}
	})
	return embeddedConfig, embeddedConfigErr
}

// DefaultPath returns $XDG_CONFIG_HOME/otree/config.yaml, falling back to
// ~/.config/otree/config.yaml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, settings.CliBinaryName, "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", settings.CliBinaryName, "config.yaml"), nil
}

// Load merges the user file at path over the defaults. An empty path
// selects DefaultPath, which may be absent; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, err
	}

	explicit := path != ""
	if !explicit {
		if path, err = DefaultPath(); err != nil {
			return cfg, err
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := decode(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// decode overlays data onto cfg; keys absent from data keep their value.
// Unknown keys are rejected.
func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate rejects values no component can use.
func (c Config) Validate() error {
	var errs []error
	if c.UI.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("ui.page_size must be positive, got %d", c.UI.PageSize))
	}
	if size := c.UI.Preview.TreeSize; size < MinTreeSize || size > MaxTreeSize {
		errs = append(errs, fmt.Errorf("ui.preview.tree_size must be between %d and %d, got %d", MinTreeSize, MaxTreeSize, size))
	}
	if _, err := filter.ParseMode(c.Filter.Mode); err != nil {
		errs = append(errs, fmt.Errorf("filter.mode: %w", err))
	}
	if c.LiveReload.MaxDataSize < 0 {
		errs = append(errs, fmt.Errorf("live_reload.max_data_size must not be negative, got %d", c.LiveReload.MaxDataSize))
	}
	if c.LiveReload.MinInterval < 0 {
		errs = append(errs, fmt.Errorf("live_reload.min_interval must not be negative, got %s", c.LiveReload.MinInterval))
	}
	return errors.Join(errs...)
}

// FilterState converts the filter section into the initial filter state.
func (c Config) FilterState() filter.State {
	mode, _ := filter.ParseMode(c.Filter.Mode)
	return filter.State{
		Mode:       mode,
		IgnoreCase: c.Filter.IgnoreCase,
		Exclude:    c.Filter.Exclude,
		Regex:      c.Filter.Regex,
	}
}
