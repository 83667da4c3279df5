// Package layout loads the menu layout and panel icon descriptors.
//
// Both files are JSON arrays; comments and trailing commas are accepted.
// A missing or malformed file yields an empty list, never an error.
package layout

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/tidwall/jsonc"
)

// EntryType identifies the kind of a layout entry.
type EntryType string

const (
	TypeMenu        EntryType = "menu"
	TypeRecentItems EntryType = "recent-items"
	TypeSeparator   EntryType = "separator"
)

// Entry is one row of the menu layout.
type Entry struct {
	Type  EntryType `json:"type" yaml:"type"`
	Title string    `json:"title,omitempty" yaml:"title,omitempty"`
	Cmds  []string  `json:"cmds,omitempty" yaml:"cmds,omitempty"`
	// Flag names a boolean setting that must be true for the entry to be shown.
	Flag string `json:"flag,omitempty" yaml:"flag,omitempty"`
}

// Validate checks the per-type invariants.
func (e Entry) Validate() error {
	switch e.Type {
	case TypeMenu:
		if len(e.Cmds) == 0 {
			return fmt.Errorf("menu entry %q has no commands", e.Title)
		}
	case TypeRecentItems:
		if e.Title == "" {
			return errors.New("recent-items entry has no title")
		}
	case TypeSeparator:
	default:
		return fmt.Errorf("unknown entry type %q", e.Type)
	}
	return nil
}

// Clone returns a deep copy of the entry.
func (e Entry) Clone() Entry {
	e.Cmds = slices.Clone(e.Cmds)
	return e
}

// Icon describes a selectable panel icon. Path is either an icon name or a
// file path, relative paths being resolved against the config directory.
type Icon struct {
	Title string `json:"title" yaml:"title"`
	Path  string `json:"path" yaml:"path"`
}

// Resolve returns the icon's file path, or its name when it is not a path.
func (i Icon) Resolve(baseDir string) string {
	if filepath.IsAbs(i.Path) || baseDir == "" || filepath.Base(i.Path) == i.Path {
		return i.Path
	}
	return filepath.Join(baseDir, i.Path)
}

// IsFile reports whether the icon refers to a file rather than a themed icon name.
func (i Icon) IsFile() bool {
	return filepath.Base(i.Path) != i.Path
}

// SelectIcon returns icons[index], falling back to the first icon when the
// index is out of range. ok is false only when there are no icons.
func SelectIcon(icons []Icon, index int) (Icon, bool) {
	if len(icons) == 0 {
		return Icon{}, false
	}
	if index < 0 || index >= len(icons) {
		return icons[0], true
	}
	return icons[index], true
}

// ParseEntries decodes layout JSON, dropping entries that fail validation.
func ParseEntries(data []byte, logger *slog.Logger) ([]Entry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var raw []Entry
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	entries := make([]Entry, 0, len(raw))
	for i, e := range raw {
		if err := e.Validate(); err != nil {
			logger.Warn("skipping invalid layout entry", "index", i, "error", err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ParseIcons decodes icon descriptor JSON.
func ParseIcons(data []byte) ([]Icon, error) {
	var icons []Icon
	if err := json.Unmarshal(jsonc.ToJSON(data), &icons); err != nil {
		return nil, fmt.Errorf("parse icons: %w", err)
	}
	return icons, nil
}

// LoadEntries reads a layout file. Errors are logged and yield an empty list.
func LoadEntries(path string, logger *slog.Logger) []Entry {
	if logger == nil {
		logger = slog.Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("failed to read menu layout", "path", path, "error", err)
		return []Entry{}
	}

	entries, err := ParseEntries(data, logger)
	if err != nil {
		logger.Warn("failed to load menu layout", "path", path, "error", err)
		return []Entry{}
	}
	return entries
}

// LoadIcons reads an icon descriptor file. Errors are logged and yield an empty list.
func LoadIcons(path string, logger *slog.Logger) []Icon {
	if logger == nil {
		logger = slog.Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("failed to read icons", "path", path, "error", err)
		return []Icon{}
	}

	icons, err := ParseIcons(data)
	if err != nil {
		logger.Warn("failed to load icons", "path", path, "error", err)
		return []Icon{}
	}
	return icons
}

// Entries loads the layout from path. An empty path uses the user's layout
// file when one exists and the embedded default otherwise.
func Entries(path string, logger *slog.Logger) []Entry {
	if path == "" {
		path = UserLayoutPath()
		if _, err := os.Stat(path); err != nil {
			return DefaultEntries()
		}
	}
	return LoadEntries(path, logger)
}

// Icons loads icon descriptors the same way Entries loads the layout.
func Icons(path string, logger *slog.Logger) []Icon {
	if path == "" {
		path = UserIconsPath()
		if _, err := os.Stat(path); err != nil {
			return DefaultIcons()
		}
	}
	return LoadIcons(path, logger)
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
	return filepath.Join(configHome, "kiwimenu")
}

// UserLayoutPath returns the path of the user's layout override.
func UserLayoutPath() string {
	return filepath.Join(ConfigDir(), LayoutFile)
}

// UserIconsPath returns the path of the user's icon override.
func UserIconsPath() string {
	return filepath.Join(ConfigDir(), IconsFile)
}
