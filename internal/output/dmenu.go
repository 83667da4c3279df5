package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/jmylchreest/kiwimenu/internal/recent"
)

// DmenuFormatter formats records for dmenu/rofi/fuzzel, one per line.
type DmenuFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewDmenuFormatter creates a new dmenu formatter.
func NewDmenuFormatter(opts FormatterOptions) *DmenuFormatter {
	f := &DmenuFormatter{opts: opts}
	if opts.Template != "" {
		tmpl, err := template.New("dmenu").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}
	return f
}

// Format writes records in dmenu format (one per line).
func (f *DmenuFormatter) Format(w io.Writer, records []recent.Record) error {
	for i := range records {
		if _, err := fmt.Fprintln(w, f.formatLine(i+1, &records[i])); err != nil {
			return err
		}
	}
	return nil
}

func (f *DmenuFormatter) formatLine(index int, r *recent.Record) string {
	if f.template != nil {
		var buf strings.Builder
		if err := f.template.Execute(&buf, newTemplateData(index, r)); err == nil {
			return buf.String()
		}
	}

	// Default format: index | time | [mime] | title
	sep := f.opts.Separator
	if sep == "" {
		sep = " | "
	}

	var parts []string
	if f.opts.ShowIndex {
		parts = append(parts, fmt.Sprintf("%d", index))
	}
	if f.opts.ShowTime {
		parts = append(parts, relativeTime(r.Timestamp))
	}
	if f.opts.ShowMime && r.MimeType != "" {
		parts = append(parts, r.MimeType)
	}
	parts = append(parts, sanitize(r.Title, f.opts.TitleMaxLen))

	return strings.Join(parts, sep)
}

// templateData provides data for custom templates.
type templateData struct {
	Index        int
	Record       *recent.Record
	RelativeTime string
	Age          string
}

func newTemplateData(index int, r *recent.Record) templateData {
	return templateData{
		Index:        index,
		Record:       r,
		RelativeTime: relativeTime(r.Timestamp),
		Age:          r.Age(),
	}
}

// templateFuncs returns template helper functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate": func(s string, maxLen int) string {
			return sanitize(s, maxLen)
		},
		"reltime": relativeTime,
		"localIcon": func(r *recent.Record) string {
			if r.IsLocal() {
				return "F"
			}
			return "W"
		},
	}
}

// relativeTime returns a compact relative time such as "5m" or "2d".
func relativeTime(timestamp int64) string {
	if timestamp == 0 {
		return "unknown"
	}

	d := time.Since(time.Unix(timestamp, 0))
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dw", int(d.Hours()/24/7))
	}
}

// sanitize flattens text to a single line, collapses runs of spaces and
// truncates it to maxLen runes (0 = unlimited).
func sanitize(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	s = strings.TrimSpace(s)

	r := []rune(s)
	if maxLen > 0 && len(r) > maxLen {
		if maxLen <= 3 {
			return string(r[:maxLen])
		}
		return string(r[:maxLen-3]) + "..."
	}
	return s
}
