package theme

import (
	"log/slog"
	"sync"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
)

// Loader applies a theme to the display and keeps it current.
type Loader struct {
	mu        sync.Mutex
	logger    *slog.Logger
	provider  *gtk.CSSProvider
	themesDir string
	theme     *Theme
	watcher   *Watcher
	applied   bool
	dispatch  func(func())
}

// NewLoader creates a loader reading user themes from ThemesDir.
// dispatch runs GTK calls on the main loop; nil runs them inline.
func NewLoader(dispatch func(func()), logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	return &Loader{
		logger:    logger,
		provider:  gtk.NewCSSProvider(),
		themesDir: ThemesDir(),
		dispatch:  dispatch,
	}
}

// LoadTheme resolves name and loads it into the provider. User themes take
// precedence over bundled ones; unknown names fall back to the default theme.
func (l *Loader) LoadTheme(name string) {
	t, err := Resolve(name, l.themesDir)
	if err != nil {
		l.logger.Warn("theme fallback", "requested", name, "loaded", t.Name, "error", err)
	}

	l.mu.Lock()
	l.theme = t
	l.mu.Unlock()

	l.provider.LoadFromString(t.CSS)
	l.logger.Info("loaded theme", "name", t.Name, "bundled", t.Bundled, "path", t.Path)
}

// Apply attaches the provider to display, or the default display when nil.
func (l *Loader) Apply(display *gdk.Display) {
	if display == nil {
		display = gdk.DisplayGetDefault()
	}
	if display == nil {
		l.logger.Warn("no display available, cannot apply theme")
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.applied {
		return
	}
	l.applied = true
	gtk.StyleContextAddProviderForDisplay(display, l.provider, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION)
}

// StartHotReload watches the current user theme and reloads it on change.
func (l *Loader) StartHotReload() {
	l.StopHotReload()

	l.mu.Lock()
	t := l.theme
	l.mu.Unlock()
	if t == nil || t.Bundled {
		l.logger.Debug("not starting hot-reload for bundled theme")
		return
	}

	w := NewWatcher(t, l.logger)
	w.SetChangeCallback(func(css string) {
		l.dispatch(func() {
			l.provider.LoadFromString(css)
			l.logger.Info("hot-reloaded theme", "name", t.Name)
		})
	})
	if err := w.Start(); err != nil {
		l.logger.Warn("failed to start theme watcher", "error", err)
		return
	}

	l.mu.Lock()
	l.watcher = w
	l.mu.Unlock()
}

// StopHotReload stops watching the theme.
func (l *Loader) StopHotReload() {
	l.mu.Lock()
	w := l.watcher
	l.watcher = nil
	l.mu.Unlock()

	if w != nil {
		w.Stop()
	}
}

// CurrentTheme returns the loaded theme's name.
func (l *Loader) CurrentTheme() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.theme == nil {
		return ""
	}
	return l.theme.Name
}
