// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/kiwimenu/internal/geometry"
	"github.com/jmylchreest/kiwimenu/internal/recent"
	"github.com/jmylchreest/kiwimenu/internal/schedule"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "kiwimenu"

// Default configuration values.
const (
	DefaultPanelHeight  = 32
	DefaultBridgeGrace  = time.Duration(0)
	DefaultQueryTimeout = 2 * time.Second
	DefaultTheme        = "default"
)

// Config represents the kiwimenu configuration.
// Loaded from ~/.config/kiwimenu/kiwimenu.toml
type Config struct {
	Submenu  SubmenuConfig  `toml:"submenu"`
	Panel    PanelConfig    `toml:"panel"`
	Paths    PathsConfig    `toml:"paths"`
	Session  SessionConfig  `toml:"session"`
	Theme    ThemeConfig    `toml:"theme"`
	Settings SettingsConfig `toml:"settings"`
}

// SubmenuConfig holds the hover timing and bridge geometry.
type SubmenuConfig struct {
	OpenDelay           Duration `toml:"open_delay"`            // Hover time before the popout opens
	ClosePoll           Duration `toml:"close_poll"`            // Pointer poll interval while closing
	Tolerance           float64  `toml:"tolerance"`             // Pixels of slack around both surfaces
	BridgeLeftTolerance float64  `toml:"bridge_left_tolerance"` // Bridge overlap into the trigger
	MaxItems            int      `toml:"max_items"`             // Recent items shown
	Side                string   `toml:"side"`                  // "right", "left" or "auto"
	BridgeGrace         Duration `toml:"bridge_grace"`          // How long a pointer exit position stays valid
}

// PanelConfig holds the panel bar placement.
type PanelConfig struct {
	Position string `toml:"position"` // "top" or "bottom"
	Height   int    `toml:"height"`
	OffsetX  int    `toml:"offset_x"`
	OffsetY  int    `toml:"offset_y"`
	Monitor  int    `toml:"monitor"` // 0 = default, 1+ = specific monitor

	// Run by the activities button. Empty makes the button open the menu.
	ActivitiesCommand []string `toml:"activities_command"`
}

// PathsConfig overrides data file locations. Empty means the default.
type PathsConfig struct {
	Layout string `toml:"layout"`
	Icons  string `toml:"icons"`
	Recent string `toml:"recent"`
	Icon   string `toml:"icon_dir"` // Base directory for relative icon paths
}

// SessionConfig holds login session query settings.
type SessionConfig struct {
	QueryTimeout Duration `toml:"query_timeout"`
}

// ThemeConfig contains theme settings.
type ThemeConfig struct {
	Name        string `toml:"name"`         // Theme name without .css extension
	ColorScheme string `toml:"color_scheme"` // "system", "light", or "dark"
}

// SettingsConfig holds the user-facing menu settings.
type SettingsConfig struct {
	Icon                   int             `toml:"icon"`
	ActivityMenuVisibility bool            `toml:"activity-menu-visibility"`
	AppStoreCommand        string          `toml:"app-store-command"`
	Toggles                map[string]bool `toml:"toggles"`
}

// ColorScheme represents the color scheme preference.
type ColorScheme string

const (
	ColorSchemeSystem ColorScheme = "system"
	ColorSchemeLight  ColorScheme = "light"
	ColorSchemeDark   ColorScheme = "dark"
)

// ValidColorSchemes returns all valid color scheme values.
func ValidColorSchemes() []ColorScheme {
	return []ColorScheme{ColorSchemeSystem, ColorSchemeLight, ColorSchemeDark}
}

// Position represents the panel edge.
type Position string

const (
	PositionTop    Position = "top"
	PositionBottom Position = "bottom"
)

// ValidPositions returns all valid position values.
func ValidPositions() []Position {
	return []Position{PositionTop, PositionBottom}
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	tol := geometry.DefaultTolerances()
	return &Config{
		Submenu: SubmenuConfig{
			OpenDelay:           Duration(schedule.DefaultOpenDelay),
			ClosePoll:           Duration(schedule.DefaultPollInterval),
			Tolerance:           tol.General,
			BridgeLeftTolerance: tol.BridgeLeft,
			MaxItems:            recent.MaxItems,
			Side:                geometry.SideRight.String(),
			BridgeGrace:         Duration(DefaultBridgeGrace),
		},
		Panel: PanelConfig{
			Position: string(PositionTop),
			Height:   DefaultPanelHeight,
		},
		Session: SessionConfig{
			QueryTimeout: Duration(DefaultQueryTimeout),
		},
		Theme: ThemeConfig{
			Name:        DefaultTheme,
			ColorScheme: string(ColorSchemeSystem),
		},
		Settings: SettingsConfig{
			Icon:                   0,
			ActivityMenuVisibility: true,
			Toggles: map[string]bool{
				"show-app-store":  true,
				"show-force-quit": true,
			},
		},
	}
}

// ConfigDir returns the kiwimenu config directory.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, AppName)
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, AppName+".toml")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := Parse(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse overlays TOML data onto cfg and validates the result.
func Parse(data []byte, cfg *Config) error {
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c *Config) normalize() {
	c.Submenu.OpenDelay = c.Submenu.OpenDelay.fromBareInt()
	c.Submenu.ClosePoll = c.Submenu.ClosePoll.fromBareInt()
	c.Submenu.BridgeGrace = c.Submenu.BridgeGrace.fromBareInt()
	c.Session.QueryTimeout = c.Session.QueryTimeout.fromBareInt()

	c.Submenu.Side = strings.ToLower(strings.TrimSpace(c.Submenu.Side))
	c.Panel.Position = strings.ToLower(strings.TrimSpace(c.Panel.Position))
	if c.Settings.Toggles == nil {
		c.Settings.Toggles = make(map[string]bool)
	}
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Submenu.OpenDelay <= 0 {
		return fmt.Errorf("open_delay must be positive, got %s", c.Submenu.OpenDelay.Duration())
	}
	if c.Submenu.ClosePoll <= 0 {
		return fmt.Errorf("close_poll must be positive, got %s", c.Submenu.ClosePoll.Duration())
	}
	if c.Submenu.Tolerance < 0 || c.Submenu.BridgeLeftTolerance < 0 {
		return fmt.Errorf("tolerances must not be negative")
	}
	if c.Submenu.MaxItems < 1 || c.Submenu.MaxItems > 100 {
		return fmt.Errorf("max_items must be between 1 and 100, got %d", c.Submenu.MaxItems)
	}
	switch c.Submenu.Side {
	case "right", "left", "auto":
	default:
		return fmt.Errorf("invalid side %q, must be one of: right, left, auto", c.Submenu.Side)
	}

	validPos := false
	for _, p := range ValidPositions() {
		if c.Panel.Position == string(p) {
			validPos = true
			break
		}
	}
	if !validPos {
		return fmt.Errorf("invalid position %q, must be one of: %v", c.Panel.Position, ValidPositions())
	}
	if c.Panel.Height < 16 || c.Panel.Height > 128 {
		return fmt.Errorf("height must be between 16 and 128, got %d", c.Panel.Height)
	}

	validScheme := false
	for _, s := range ValidColorSchemes() {
		if c.Theme.ColorScheme == string(s) {
			validScheme = true
			break
		}
	}
	if !validScheme {
		return fmt.Errorf("invalid color_scheme %q, must be one of: %v", c.Theme.ColorScheme, ValidColorSchemes())
	}

	return nil
}

// Tolerance returns the bridge geometry tolerances.
func (c *Config) Tolerance() geometry.Tolerance {
	return geometry.Tolerance{
		General:    c.Submenu.Tolerance,
		BridgeLeft: c.Submenu.BridgeLeftTolerance,
		Side:       geometry.ParseSide(c.Submenu.Side),
	}
}

// LayoutPath returns the configured layout path, expanded.
func (c *Config) LayoutPath() string { return expandPath(c.Paths.Layout) }

// IconsPath returns the configured icons path, expanded.
func (c *Config) IconsPath() string { return expandPath(c.Paths.Icons) }

// IconDir returns the base directory for relative icon paths.
func (c *Config) IconDir() string {
	if c.Paths.Icon != "" {
		return expandPath(c.Paths.Icon)
	}
	return ConfigDir()
}

// RecentPath returns the recent items file, falling back to the XDG default.
func (c *Config) RecentPath() string {
	if c.Paths.Recent != "" {
		return expandPath(c.Paths.Recent)
	}
	return recent.DefaultPath()
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
