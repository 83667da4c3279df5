// Package settings exposes the user-facing menu settings as typed keys with
// per-key change notifications.
package settings

import (
	"log/slog"
	"maps"
	"sort"
	"sync"

	"github.com/jmylchreest/kiwimenu/internal/config"
)

// Well-known keys.
const (
	KeyIcon                   = "icon"
	KeyActivityMenuVisibility = "activity-menu-visibility"
	KeyAppStoreCommand        = "app-store-command"
)

// Handle identifies a subscription. Zero is never returned.
type Handle uint64

type subscription struct {
	key string
	fn  func(key string)
}

// Store holds the current settings. It is safe for concurrent use.
type Store struct {
	logger *slog.Logger

	mu       sync.RWMutex
	values   config.SettingsConfig
	subs     map[Handle]subscription
	lastID   Handle
	dispatch func(func())
}

// New creates a store seeded with values.
func New(values config.SettingsConfig, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		logger:   logger,
		values:   clone(values),
		subs:     make(map[Handle]subscription),
		dispatch: func(fn func()) { fn() },
	}
}

// SetDispatcher sets how notifications are delivered. The default calls
// handlers synchronously on the goroutine that called Update.
func (s *Store) SetDispatcher(dispatch func(func())) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	s.dispatch = dispatch
}

// GetInt returns an integer setting. Unknown keys return 0.
func (s *Store) GetInt(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if key == KeyIcon {
		return s.values.Icon
	}
	return 0
}

// GetBoolean returns a boolean setting. Feature toggles that were never set
// are on.
func (s *Store) GetBoolean(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if key == KeyActivityMenuVisibility {
		return s.values.ActivityMenuVisibility
	}
	v, ok := s.values.Toggles[key]
	return !ok || v
}

// GetString returns a string setting. Unknown keys return "".
func (s *Store) GetString(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if key == KeyAppStoreCommand {
		return s.values.AppStoreCommand
	}
	return ""
}

// Values returns a copy of the current settings.
func (s *Store) Values() config.SettingsConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.values)
}

// Connect subscribes fn to changes of key. An empty key subscribes to every key.
func (s *Store) Connect(key string, fn func(key string)) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	s.subs[s.lastID] = subscription{key: key, fn: fn}
	return s.lastID
}

// Disconnect removes a subscription. Unknown handles are ignored.
func (s *Store) Disconnect(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, h)
}

// Update replaces the settings and notifies subscribers of every key whose
// value changed.
func (s *Store) Update(values config.SettingsConfig) {
	s.mu.Lock()
	changed := diff(s.values, values)
	s.values = clone(values)

	type call struct {
		key string
		fn  func(string)
	}
	var calls []call
	ids := make([]Handle, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, key := range changed {
		for _, id := range ids {
			sub := s.subs[id]
			if sub.key == "" || sub.key == key {
				calls = append(calls, call{key: key, fn: sub.fn})
			}
		}
	}
	dispatch := s.dispatch
	s.mu.Unlock()

	if len(changed) > 0 {
		s.logger.Debug("settings changed", "keys", changed)
	}
	for _, c := range calls {
		dispatch(func() { c.fn(c.key) })
	}
}

// diff returns the keys whose effective value differs, in sorted order.
func diff(old, new config.SettingsConfig) []string {
	var keys []string
	if old.Icon != new.Icon {
		keys = append(keys, KeyIcon)
	}
	if old.ActivityMenuVisibility != new.ActivityMenuVisibility {
		keys = append(keys, KeyActivityMenuVisibility)
	}
	if old.AppStoreCommand != new.AppStoreCommand {
		keys = append(keys, KeyAppStoreCommand)
	}

	seen := make(map[string]bool)
	for k := range old.Toggles {
		seen[k] = true
	}
	for k := range new.Toggles {
		seen[k] = true
	}
	for k := range seen {
		if toggle(old.Toggles, k) != toggle(new.Toggles, k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func toggle(m map[string]bool, key string) bool {
	v, ok := m[key]
	return !ok || v
}

func clone(v config.SettingsConfig) config.SettingsConfig {
	v.Toggles = maps.Clone(v.Toggles)
	return v
}
