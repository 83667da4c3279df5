package output

import (
	"fmt"
	"io"

	"github.com/jmylchreest/kiwimenu/internal/recent"
)

// URIFormatter outputs just the URIs, one per line.
// Useful for piping to other commands (e.g., xargs xdg-open).
type URIFormatter struct{}

// NewURIFormatter creates a new URI formatter.
func NewURIFormatter() *URIFormatter {
	return &URIFormatter{}
}

// Format writes record URIs to the writer, one per line.
func (f *URIFormatter) Format(w io.Writer, records []recent.Record) error {
	for _, r := range records {
		if _, err := fmt.Fprintln(w, r.URI); err != nil {
			return err
		}
	}
	return nil
}
