package theme

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessImports_NoImports(t *testing.T) {
	css := `.kiwimenu-menu { color: red; }`
	result := ProcessImports(css, "", nil)
	assert.Equal(t, css, result)
}

func TestProcessImports_FileImport(t *testing.T) {
	// Create a temporary directory with test CSS files
	tmpDir := t.TempDir()

	// Create a partial file
	partialContent := `:root { --custom: #ff0000; }`
	partialPath := filepath.Join(tmpDir, "_custom.css")
	err := os.WriteFile(partialPath, []byte(partialContent), 0644)
	require.NoError(t, err)

	// Create main CSS that imports the partial
	mainCSS := `@import "_custom.css";
.kiwimenu-menu { color: var(--custom); }`

	result := ProcessImports(mainCSS, tmpDir, nil)

	assert.Contains(t, result, "/* imported: _custom.css */")
	assert.Contains(t, result, "--custom: #ff0000")
	assert.Contains(t, result, ".kiwimenu-menu")
}

func TestProcessImports_NestedImports(t *testing.T) {
	tmpDir := t.TempDir()

	// Create nested structure: main imports child, child imports grandchild
	grandchildContent := `.grandchild { color: blue; }`
	grandchildPath := filepath.Join(tmpDir, "_grandchild.css")
	err := os.WriteFile(grandchildPath, []byte(grandchildContent), 0644)
	require.NoError(t, err)

	childContent := `@import "_grandchild.css";
.child { color: green; }`
	childPath := filepath.Join(tmpDir, "_child.css")
	err = os.WriteFile(childPath, []byte(childContent), 0644)
	require.NoError(t, err)

	mainCSS := `@import "_child.css";
.main { color: red; }`

	result := ProcessImports(mainCSS, tmpDir, nil)

	assert.Contains(t, result, "/* imported: _child.css */")
	assert.Contains(t, result, "/* imported: _grandchild.css */")
	assert.Contains(t, result, ".grandchild")
	assert.Contains(t, result, ".child")
	assert.Contains(t, result, ".main")
}

func TestProcessImports_CircularPrevention(t *testing.T) {
	tmpDir := t.TempDir()

	// Create circular imports: a imports b, b imports a
	aContent := `@import "_b.css";
.a { color: red; }`
	aPath := filepath.Join(tmpDir, "_a.css")
	err := os.WriteFile(aPath, []byte(aContent), 0644)
	require.NoError(t, err)

	bContent := `@import "_a.css";
.b { color: blue; }`
	bPath := filepath.Join(tmpDir, "_b.css")
	err = os.WriteFile(bPath, []byte(bContent), 0644)
	require.NoError(t, err)

	// Start with a
	result := ProcessImports(`@import "_a.css";`, tmpDir, nil)

	// Should have both imports but one marked as circular
	assert.Contains(t, result, "/* imported: _a.css */")
	assert.Contains(t, result, "/* imported: _b.css */")
	assert.Contains(t, result, "/* circular import prevented: _a.css */")
}

func TestProcessImports_MissingFile(t *testing.T) {
	css := `@import "nonexistent.css";`

	result := ProcessImports(css, "/tmp", nil)

	assert.Contains(t, result, "/* import failed: nonexistent.css")
}

func TestProcessImports_FallbackToEmbeddedTheme(t *testing.T) {
	result := ProcessImports(`@import "default.css";`, "/nonexistent/path", nil)

	assert.Contains(t, result, "/* imported (embedded): default.css */")
	assert.Contains(t, result, ".kiwimenu-menu")
	assert.Contains(t, result, ".kiwimenu-backdrop", "nested partial should be inlined")
}

func TestProcessImports_EmbeddedPartial(t *testing.T) {
	result := ProcessImports(`@import "_base.css";`, t.TempDir(), nil)
	assert.Contains(t, result, "/* imported (embedded): _base.css */")
	assert.Contains(t, result, ".kiwimenu-bridge")
}

func TestImportRegex(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`@import "file.css";`, "file.css"},
		{`@import 'file.css';`, "file.css"},
		{`@import url("file.css");`, "file.css"},
		{`@import url('file.css');`, "file.css"},
		{`@import url( "file.css" );`, "file.css"},
		{`@import "_partial.css"`, "_partial.css"}, // Without semicolon
		{`@import   "spaced.css"  ;`, "spaced.css"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			matches := importRegex.FindStringSubmatch(tt.input)
			require.Len(t, matches, 2, "should match import statement")
			assert.Equal(t, tt.expected, matches[1])
		})
	}
}

func TestNewTheme_ProcessesImports(t *testing.T) {
	tmpDir := t.TempDir()

	// Create a partial
	partialContent := `:root { --custom: #ff0000; }`
	partialPath := filepath.Join(tmpDir, "_colors.css")
	err := os.WriteFile(partialPath, []byte(partialContent), 0644)
	require.NoError(t, err)

	// Create main theme that imports the partial
	themeContent := `@import "_colors.css";
.kiwimenu-menu { color: var(--custom); }`
	themePath := filepath.Join(tmpDir, "custom.css")
	err = os.WriteFile(themePath, []byte(themeContent), 0644)
	require.NoError(t, err)

	theme, err := NewTheme("custom", themePath)
	require.NoError(t, err)

	// CSS should have processed imports
	assert.Contains(t, theme.CSS, "/* imported: _colors.css */")
	assert.Contains(t, theme.CSS, "--custom: #ff0000")
	assert.Contains(t, theme.CSS, ".kiwimenu-menu")
}

func TestTheme_Reload_ProcessesImports(t *testing.T) {
	tmpDir := t.TempDir()

	// Create initial theme
	themeContent := `.kiwimenu-menu { color: red; }`
	themePath := filepath.Join(tmpDir, "test.css")
	err := os.WriteFile(themePath, []byte(themeContent), 0644)
	require.NoError(t, err)

	theme, err := NewTheme("test", themePath)
	require.NoError(t, err)
	assert.Contains(t, theme.CSS, "color: red")

	// Create a partial
	partialContent := `:root { --new-color: blue; }`
	partialPath := filepath.Join(tmpDir, "_new.css")
	err = os.WriteFile(partialPath, []byte(partialContent), 0644)
	require.NoError(t, err)

	// Update theme to import the partial
	newContent := `@import "_new.css";
.kiwimenu-menu { color: var(--new-color); }`
	err = os.WriteFile(themePath, []byte(newContent), 0644)
	require.NoError(t, err)

	// Reload should process imports
	changed, err := theme.Reload()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Contains(t, theme.CSS, "/* imported: _new.css */")
	assert.Contains(t, theme.CSS, "--new-color: blue")

	changed, err = theme.Reload()
	require.NoError(t, err)
	assert.False(t, changed, "unchanged content is not a change")
}

func TestResolve_UserThemeOverridesBundled(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "default.css"), []byte(`.kiwimenu-menu { color: pink; }`), 0644))

	theme, err := Resolve("default", dir)
	require.NoError(t, err)
	assert.False(t, theme.Bundled)
	assert.Equal(t, filepath.Join(dir, "default.css"), theme.Path)
	assert.Contains(t, theme.CSS, "pink")
}

func TestResolve_Bundled(t *testing.T) {
	theme, err := Resolve("catppuccin", t.TempDir())
	require.NoError(t, err)
	assert.True(t, theme.Bundled)
	assert.Equal(t, "catppuccin", theme.Name)
	assert.Contains(t, theme.CSS, "--ctp-base")
}

func TestResolve_UnknownFallsBackToDefault(t *testing.T) {
	theme, err := Resolve("nope", t.TempDir())
	assert.Error(t, err)
	require.NotNil(t, theme)
	assert.Equal(t, DefaultThemeName, theme.Name)
	assert.True(t, theme.Bundled)

	theme, err = Resolve("", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultThemeName, theme.Name)
}

func TestTheme_ReloadBundledIsNoop(t *testing.T) {
	theme, err := Resolve("minimal", "")
	require.NoError(t, err)

	changed, err := theme.Reload()
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestListAvailableThemes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mine.css"), []byte(`.a{}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "minimal.css"), []byte(`.b{}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_partial.css"), []byte(`.c{}`), 0644))

	themes, err := ListAvailableThemes(dir)
	require.NoError(t, err)

	byName := make(map[string]Info)
	for _, info := range themes {
		byName[info.Name] = info
	}
	assert.Len(t, themes, len(ListEmbeddedThemes())+1)
	assert.True(t, byName["default"].IsDefault)
	assert.True(t, byName["minimal"].IsBundled)
	assert.Equal(t, filepath.Join(dir, "minimal.css"), byName["minimal"].Path)
	assert.False(t, byName["mine"].IsBundled)
	assert.NotContains(t, byName, "_partial")

	themes, err = ListAvailableThemes(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Len(t, themes, len(ListEmbeddedThemes()))
}

func TestThemesDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/kiwimenu/themes", ThemesDir())
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "live.css")
	require.NoError(t, os.WriteFile(path, []byte(`.kiwimenu-menu { color: red; }`), 0644))

	theme, err := NewTheme("live", path)
	require.NoError(t, err)

	w := NewWatcher(theme, nil)
	w.SetSettle(10 * time.Millisecond)
	changes := make(chan string, 8)
	w.SetChangeCallback(func(css string) { changes <- css })
	require.NoError(t, w.Start())
	defer w.Stop()
	assert.True(t, w.IsRunning())

	require.NoError(t, os.WriteFile(path, []byte(`.kiwimenu-menu { color: blue; }`), 0644))

	deadline := time.After(2 * time.Second)
	for {
		select {
		case css := <-changes:
			if strings.Contains(css, "blue") {
				return
			}
		case <-deadline:
			t.Fatal("theme change was not reported")
		}
	}
}

func TestWatcher_BundledNotWatched(t *testing.T) {
	w := NewWatcher(mustResolve(t, DefaultThemeName), nil)
	require.NoError(t, w.Start())
	assert.False(t, w.IsRunning())
	w.Stop()
	w.Stop()
}

func mustResolve(t *testing.T, name string) *Theme {
	t.Helper()
	theme, err := Resolve(name, "")
	require.NoError(t, err)
	return theme
}
