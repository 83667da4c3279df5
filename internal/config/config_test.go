package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/kiwimenu/internal/geometry"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 500*time.Millisecond, cfg.Submenu.OpenDelay.Duration())
	assert.Equal(t, 200*time.Millisecond, cfg.Submenu.ClosePoll.Duration())
	assert.Equal(t, 8.0, cfg.Submenu.Tolerance)
	assert.Equal(t, 4.0, cfg.Submenu.BridgeLeftTolerance)
	assert.Equal(t, 10, cfg.Submenu.MaxItems)
	assert.Equal(t, "right", cfg.Submenu.Side)
	assert.Equal(t, "top", cfg.Panel.Position)
	assert.Equal(t, 2*time.Second, cfg.Session.QueryTimeout.Duration())
	assert.True(t, cfg.Settings.ActivityMenuVisibility)
	assert.True(t, cfg.Settings.Toggles["show-force-quit"])
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/kiwimenu.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Submenu, cfg.Submenu)
}

func TestLoadConfig_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kiwimenu.toml")

	content := `
[submenu]
open_delay = "300ms"
close_poll = "100"
tolerance = 10.5
bridge_left_tolerance = 2
max_items = 5
side = "Left"

[panel]
position = "bottom"
height = 40

[paths]
recent = "/tmp/recent.xbel"

[session]
query_timeout = "5s"

[theme]
name = "dark"
color_scheme = "dark"

[settings]
icon = 2
activity-menu-visibility = false
app-store-command = "gnome-software"

[settings.toggles]
show-force-quit = false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 300*time.Millisecond, cfg.Submenu.OpenDelay.Duration())
	assert.Equal(t, 100*time.Millisecond, cfg.Submenu.ClosePoll.Duration())
	assert.Equal(t, 10.5, cfg.Submenu.Tolerance)
	assert.Equal(t, 5, cfg.Submenu.MaxItems)
	assert.Equal(t, "left", cfg.Submenu.Side)
	assert.Equal(t, "bottom", cfg.Panel.Position)
	assert.Equal(t, 40, cfg.Panel.Height)
	assert.Equal(t, "/tmp/recent.xbel", cfg.RecentPath())
	assert.Equal(t, 5*time.Second, cfg.Session.QueryTimeout.Duration())
	assert.Equal(t, "dark", cfg.Theme.Name)
	assert.Equal(t, 2, cfg.Settings.Icon)
	assert.False(t, cfg.Settings.ActivityMenuVisibility)
	assert.Equal(t, "gnome-software", cfg.Settings.AppStoreCommand)
	assert.False(t, cfg.Settings.Toggles["show-force-quit"])

	tol := cfg.Tolerance()
	assert.Equal(t, geometry.SideLeft, tol.Side)
	assert.Equal(t, 2.0, tol.BridgeLeft)
}

func TestLoadConfig_BareIntegerMilliseconds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kiwimenu.toml")
	require.NoError(t, os.WriteFile(path, []byte("[submenu]\nopen_delay = 750\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 750*time.Millisecond, cfg.Submenu.OpenDelay.Duration())
}

func TestLoadConfig_PartialConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kiwimenu.toml")
	require.NoError(t, os.WriteFile(path, []byte("[panel]\nheight = 24\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 24, cfg.Panel.Height)
	assert.Equal(t, "top", cfg.Panel.Position)
	assert.Equal(t, DefaultConfig().Submenu, cfg.Submenu)
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kiwimenu.toml")
	require.NoError(t, os.WriteFile(path, []byte(`this is not valid toml [`), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"bad side", func(c *Config) { c.Submenu.Side = "up" }},
		{"bad position", func(c *Config) { c.Panel.Position = "left" }},
		{"zero delay", func(c *Config) { c.Submenu.OpenDelay = 0 }},
		{"zero poll", func(c *Config) { c.Submenu.ClosePoll = 0 }},
		{"negative tolerance", func(c *Config) { c.Submenu.Tolerance = -1 }},
		{"too many items", func(c *Config) { c.Submenu.MaxItems = 1000 }},
		{"tiny panel", func(c *Config) { c.Panel.Height = 2 }},
		{"bad scheme", func(c *Config) { c.Theme.ColorScheme = "sepia" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_Save(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "kiwimenu.toml")

	cfg := DefaultConfig()
	cfg.Submenu.OpenDelay = Duration(250 * time.Millisecond)
	cfg.Settings.Toggles["custom"] = true

	require.NoError(t, cfg.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, loaded.Submenu.OpenDelay.Duration())
	assert.True(t, loaded.Settings.Toggles["custom"])
}

func TestDuration_UnmarshalText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1s")))
	assert.Equal(t, time.Second, d.Duration())

	require.NoError(t, d.UnmarshalText([]byte("250")))
	assert.Equal(t, 250, d.Milliseconds())

	assert.Error(t, d.UnmarshalText([]byte("soon")))
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/kiwimenu/kiwimenu.toml", ConfigPath())
	assert.Equal(t, "/custom/config/kiwimenu", ConfigDir())
}

func TestRecentPathDefault(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	assert.Equal(t, "/custom/data/recently-used.xbel", DefaultConfig().RecentPath())
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "icons"), expandPath("~/icons"))
	assert.Equal(t, "/abs", expandPath("/abs"))
}

func TestWatcher_ReloadsValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kiwimenu.toml")
	require.NoError(t, os.WriteFile(path, []byte("[panel]\nheight = 24\n"), 0644))

	w, err := NewWatcher(path, nil)
	require.NoError(t, err)
	w.SetSettle(10 * time.Millisecond)

	reloaded := make(chan *Config, 16)
	failed := make(chan error, 16)
	w.SetReloadCallback(func(c *Config) { reloaded <- c })
	w.SetErrorCallback(func(err error) { failed <- err })

	initial, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, w.Start(initial))
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("[panel]\nheight = 48\n"), 0644))

	// A truncate may be seen separately from the write; wait for the final content.
	deadline := time.After(2 * time.Second)
	for got := false; !got; {
		select {
		case c := <-reloaded:
			got = c.Panel.Height == 48
		case <-deadline:
			t.Fatal("config was not reloaded")
		}
	}
	assert.Equal(t, 48, w.GetCurrentConfig().Panel.Height)

	require.NoError(t, os.WriteFile(path, []byte("[panel]\nposition = \"middle\"\n"), 0644))

	select {
	case err := <-failed:
		assert.Error(t, err)
		assert.NotEqual(t, "middle", w.GetCurrentConfig().Panel.Position)
	case <-time.After(2 * time.Second):
		t.Fatal("invalid config was not reported")
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "kiwimenu.toml"), nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(DefaultConfig()))
	w.Stop()
	w.Stop()
}
