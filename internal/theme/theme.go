package theme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jmylchreest/kiwimenu/internal/config"
)

// importRegex matches @import "file.css"; or @import 'file.css'; or @import url("file.css");
var importRegex = regexp.MustCompile(`@import\s+(?:url\s*\(\s*)?["']([^"']+)["']\s*\)?;?`)

// Theme is a resolved theme with its imports inlined.
type Theme struct {
	Name    string
	Path    string // Empty for bundled themes
	CSS     string
	Bundled bool
}

// ThemesDir returns the user's themes directory.
func ThemesDir() string {
	dir := config.ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "themes")
}

// NewTheme loads a CSS file and inlines its imports.
func NewTheme(name, path string) (*Theme, error) {
	css, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme %q: %w", name, err)
	}
	return &Theme{
		Name: name,
		Path: path,
		CSS:  ProcessImports(string(css), filepath.Dir(path), nil),
	}, nil
}

// Resolve finds a theme by name: a file in dir wins over a bundled theme of
// the same name. Unknown names resolve to the default theme; the returned
// error then explains the fallback.
func Resolve(name, dir string) (*Theme, error) {
	if name == "" {
		name = DefaultThemeName
	}

	var userErr error
	if dir != "" {
		path := filepath.Join(dir, name+".css")
		t, err := NewTheme(name, path)
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			userErr = err
		}
	}

	if css, ok := GetEmbeddedTheme(name); ok {
		return &Theme{Name: name, CSS: ProcessImports(css, "", nil), Bundled: true}, userErr
	}

	css, _ := GetEmbeddedTheme(DefaultThemeName)
	def := &Theme{Name: DefaultThemeName, CSS: ProcessImports(css, "", nil), Bundled: true}
	if userErr != nil {
		return def, userErr
	}
	return def, fmt.Errorf("theme %q not found", name)
}

// ProcessImports resolves and inlines @import statements in CSS.
// Imports are resolved relative to baseDir, falling back to bundled partials
// and themes. The seen map prevents circular imports.
func ProcessImports(css string, baseDir string, seen map[string]bool) string {
	if seen == nil {
		seen = make(map[string]bool)
	}

	return importRegex.ReplaceAllStringFunc(css, func(match string) string {
		submatch := importRegex.FindStringSubmatch(match)
		if len(submatch) < 2 {
			return match
		}
		importPath := submatch[1]

		fullPath := importPath
		if !filepath.IsAbs(importPath) {
			fullPath = filepath.Join(baseDir, importPath)
		}

		if seen[fullPath] {
			return "/* circular import prevented: " + importPath + " */"
		}
		seen[fullPath] = true

		imported, err := os.ReadFile(fullPath)
		if err != nil {
			baseName := filepath.Base(importPath)
			if strings.HasPrefix(baseName, "_") {
				if embedded, found := GetEmbeddedPartial(baseName); found {
					return "/* imported (embedded): " + importPath + " */\n" + embedded
				}
			}
			if embedded, found := GetEmbeddedTheme(strings.TrimSuffix(baseName, ".css")); found {
				return "/* imported (embedded): " + importPath + " */\n" + ProcessImports(embedded, "", seen)
			}
			return "/* import failed: " + importPath + " - " + err.Error() + " */"
		}

		return "/* imported: " + importPath + " */\n" + ProcessImports(string(imported), filepath.Dir(fullPath), seen)
	})
}

// Reload rereads the theme from disk. It reports whether the CSS changed.
// Bundled themes never change.
func (t *Theme) Reload() (bool, error) {
	if t.Bundled || t.Path == "" {
		return false, nil
	}

	css, err := os.ReadFile(t.Path)
	if err != nil {
		return false, fmt.Errorf("failed to reload theme %q: %w", t.Name, err)
	}

	processed := ProcessImports(string(css), filepath.Dir(t.Path), nil)
	if processed == t.CSS {
		return false, nil
	}
	t.CSS = processed
	return true, nil
}

// Info describes an available theme.
type Info struct {
	Name      string `json:"name" yaml:"name"`
	Path      string `json:"path,omitempty" yaml:"path,omitempty"`
	IsDefault bool   `json:"default,omitempty" yaml:"default,omitempty"`
	IsBundled bool   `json:"bundled,omitempty" yaml:"bundled,omitempty"`
}

// ListAvailableThemes lists bundled themes followed by user themes in dir.
// A user theme overriding a bundled one is reported once, with its path.
func ListAvailableThemes(dir string) ([]Info, error) {
	index := make(map[string]int)
	var themes []Info

	for _, name := range ListEmbeddedThemes() {
		index[name] = len(themes)
		themes = append(themes, Info{Name: name, IsDefault: name == DefaultThemeName, IsBundled: true})
	}

	if dir == "" {
		return themes, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return themes, nil
		}
		return themes, fmt.Errorf("failed to read themes directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "_") || filepath.Ext(name) != ".css" {
			continue
		}
		themeName := strings.TrimSuffix(name, ".css")
		path := filepath.Join(dir, name)
		if i, ok := index[themeName]; ok {
			themes[i].Path = path
			continue
		}
		index[themeName] = len(themes)
		themes = append(themes, Info{Name: themeName, Path: path})
	}

	return themes, nil
}
