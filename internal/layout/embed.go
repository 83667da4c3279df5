package layout

import (
	"embed"
	"log/slog"
)

// File names shared by the embedded defaults and the user overrides.
const (
	LayoutFile = "menulayout.json"
	IconsFile  = "icons.json"
)

//go:embed data/*.json
var EmbeddedData embed.FS

// DefaultEntries returns the embedded menu layout.
func DefaultEntries() []Entry {
	data, err := EmbeddedData.ReadFile("data/" + LayoutFile)
	if err != nil {
		return []Entry{}
	}
	entries, err := ParseEntries(data, slog.Default())
	if err != nil {
		return []Entry{}
	}
	return entries
}

// DefaultIcons returns the embedded icon descriptors.
func DefaultIcons() []Icon {
	data, err := EmbeddedData.ReadFile("data/" + IconsFile)
	if err != nil {
		return []Icon{}
	}
	icons, err := ParseIcons(data)
	if err != nil {
		return []Icon{}
	}
	return icons
}
