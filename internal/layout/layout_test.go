package layout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultEntries(t *testing.T) {
	entries := DefaultEntries()
	require.NotEmpty(t, entries)

	var recent, logout int
	for _, e := range entries {
		require.NoError(t, e.Validate())
		if e.Type == TypeRecentItems {
			recent++
		}
		if e.Type == TypeMenu && len(e.Cmds) > 1 && e.Cmds[1] == "--logout" {
			logout++
		}
	}
	assert.Equal(t, 1, recent, "default layout has exactly one recent-items trigger")
	assert.Equal(t, 1, logout)
}

func TestDefaultIcons(t *testing.T) {
	icons := DefaultIcons()
	require.NotEmpty(t, icons)
	assert.Equal(t, "Kiwi", icons[0].Title)
}

func TestParseEntries_CommentsAndTrailingCommas(t *testing.T) {
	data := []byte(`[
		// leading comment
		{ "type": "menu", "title": "Terminal", "cmds": ["kgx"] }, /* inline */
		{ "type": "separator" },
	]`)

	entries, err := ParseEntries(data, nil)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, TypeMenu, entries[0].Type)
	assert.Equal(t, []string{"kgx"}, entries[0].Cmds)
	assert.Equal(t, TypeSeparator, entries[1].Type)
}

func TestParseEntries_DropsInvalid(t *testing.T) {
	data := []byte(`[
		{ "type": "menu", "title": "No commands" },
		{ "type": "recent-items" },
		{ "type": "bogus", "title": "?" },
		{ "type": "recent-items", "title": "Recent Items" }
	]`)

	entries, err := ParseEntries(data, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Recent Items", entries[0].Title)
}

func TestParseEntries_Malformed(t *testing.T) {
	_, err := ParseEntries([]byte(`{"type": "menu"}`), nil)
	assert.Error(t, err)
}

func TestLoadEntries_MissingOrMalformed(t *testing.T) {
	dir := t.TempDir()

	assert.Empty(t, LoadEntries(filepath.Join(dir, "missing.json"), nil))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("[{"), 0644))
	entries := LoadEntries(bad, nil)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)

	assert.Empty(t, LoadIcons(bad, nil))
}

func TestEntries_UserOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	// No user file: embedded default.
	assert.Equal(t, DefaultEntries(), Entries("", nil))
	assert.Equal(t, DefaultIcons(), Icons("", nil))

	require.NoError(t, os.MkdirAll(ConfigDir(), 0755))
	require.NoError(t, os.WriteFile(UserLayoutPath(), []byte(`[{"type":"separator"}]`), 0644))

	entries := Entries("", nil)
	require.Len(t, entries, 1)
	assert.Equal(t, TypeSeparator, entries[0].Type)
}

func TestSelectIcon(t *testing.T) {
	icons := []Icon{{Title: "a", Path: "a-symbolic"}, {Title: "b", Path: "icons/b.svg"}}

	icon, ok := SelectIcon(icons, 1)
	require.True(t, ok)
	assert.Equal(t, "b", icon.Title)

	icon, ok = SelectIcon(icons, 7)
	require.True(t, ok)
	assert.Equal(t, "a", icon.Title)

	_, ok = SelectIcon(nil, 0)
	assert.False(t, ok)
}

func TestIcon_Resolve(t *testing.T) {
	assert.Equal(t, "a-symbolic", Icon{Path: "a-symbolic"}.Resolve("/etc/kiwi"))
	assert.Equal(t, "/etc/kiwi/icons/b.svg", Icon{Path: "icons/b.svg"}.Resolve("/etc/kiwi"))
	assert.Equal(t, "/abs/c.svg", Icon{Path: "/abs/c.svg"}.Resolve("/etc/kiwi"))
	assert.True(t, Icon{Path: "icons/b.svg"}.IsFile())
	assert.False(t, Icon{Path: "a-symbolic"}.IsFile())
}

func TestEntry_Clone(t *testing.T) {
	e := Entry{Type: TypeMenu, Title: "x", Cmds: []string{"a", "b"}}
	c := e.Clone()
	c.Cmds[0] = "z"
	assert.Equal(t, "a", e.Cmds[0])
}
