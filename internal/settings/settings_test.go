package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/kiwimenu/internal/config"
)

func defaults() config.SettingsConfig {
	return config.DefaultConfig().Settings
}

func TestStore_Getters(t *testing.T) {
	v := defaults()
	v.Icon = 3
	v.AppStoreCommand = "gnome-software"
	v.Toggles["show-force-quit"] = false
	s := New(v, nil)

	assert.Equal(t, 3, s.GetInt(KeyIcon))
	assert.Equal(t, 0, s.GetInt("unknown"))
	assert.True(t, s.GetBoolean(KeyActivityMenuVisibility))
	assert.False(t, s.GetBoolean("show-force-quit"))
	assert.True(t, s.GetBoolean("show-app-store"))
	assert.True(t, s.GetBoolean("never-configured"))
	assert.Equal(t, "gnome-software", s.GetString(KeyAppStoreCommand))
	assert.Equal(t, "", s.GetString("unknown"))
}

func TestStore_CopiesInput(t *testing.T) {
	v := defaults()
	s := New(v, nil)
	v.Toggles["show-app-store"] = false

	assert.True(t, s.GetBoolean("show-app-store"))

	out := s.Values()
	out.Toggles["show-app-store"] = false
	assert.True(t, s.GetBoolean("show-app-store"))
}

func TestStore_UpdateNotifiesChangedKeys(t *testing.T) {
	s := New(defaults(), nil)

	var icon, all []string
	s.Connect(KeyIcon, func(k string) { icon = append(icon, k) })
	s.Connect("", func(k string) { all = append(all, k) })

	next := defaults()
	next.Icon = 1
	next.Toggles["show-force-quit"] = false
	s.Update(next)

	assert.Equal(t, []string{KeyIcon}, icon)
	assert.Equal(t, []string{KeyIcon, "show-force-quit"}, all)

	// Same values again: nothing fires.
	s.Update(next)
	assert.Len(t, all, 2)
}

func TestStore_ToggleRemovalCountsAsOn(t *testing.T) {
	v := defaults()
	v.Toggles = map[string]bool{"show-force-quit": true}
	s := New(v, nil)

	var changed []string
	s.Connect("", func(k string) { changed = append(changed, k) })

	s.Update(config.SettingsConfig{ActivityMenuVisibility: true})
	assert.Empty(t, changed)
}

func TestStore_Disconnect(t *testing.T) {
	s := New(defaults(), nil)

	calls := 0
	h := s.Connect(KeyAppStoreCommand, func(string) { calls++ })
	require.NotZero(t, h)

	s.Disconnect(h)
	s.Disconnect(h)
	s.Disconnect(999)

	next := defaults()
	next.AppStoreCommand = "discover"
	s.Update(next)
	assert.Zero(t, calls)
}

func TestStore_Dispatcher(t *testing.T) {
	s := New(defaults(), nil)

	var queued []func()
	s.SetDispatcher(func(fn func()) { queued = append(queued, fn) })

	fired := false
	s.Connect(KeyActivityMenuVisibility, func(string) { fired = true })

	next := defaults()
	next.ActivityMenuVisibility = false
	s.Update(next)

	assert.False(t, fired)
	require.Len(t, queued, 1)
	queued[0]()
	assert.True(t, fired)
	assert.False(t, s.GetBoolean(KeyActivityMenuVisibility))
}
