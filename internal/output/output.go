// Package output formats recent items for the command line.
package output

import (
	"io"

	"github.com/jmylchreest/kiwimenu/internal/recent"
)

// Formatter formats recent records for output.
type Formatter interface {
	// Format writes formatted records to the writer.
	Format(w io.Writer, records []recent.Record) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatDmenu FormatType = "dmenu"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
	FormatPlain FormatType = "plain"
	FormatURIs  FormatType = "uris"
)

// ValidFormats lists every format NewFormatter understands.
func ValidFormats() []FormatType {
	return []FormatType{FormatDmenu, FormatJSON, FormatYAML, FormatPlain, FormatURIs}
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(opts)
	case FormatYAML:
		return NewYAMLFormatter(opts)
	case FormatPlain:
		return NewPlainFormatter(opts)
	case FormatURIs:
		return NewURIFormatter()
	case FormatDmenu:
		fallthrough
	default:
		return NewDmenuFormatter(opts)
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template    string // Custom template for dmenu/plain format
	ShowIndex   bool   // Show 1-based index prefix
	ShowTime    bool   // Show relative time
	ShowMime    bool   // Show mime type
	TitleMaxLen int    // Maximum title length (0 = unlimited)
	Separator   string // Field separator for dmenu format
}

// DefaultFormatterOptions returns sensible defaults for dmenu output.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowIndex:   true,
		ShowTime:    true,
		ShowMime:    false,
		TitleMaxLen: 80,
		Separator:   " | ",
	}
}
