package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/jmylchreest/kiwimenu/internal/recent"
)

// PlainFormatter formats records as plain text.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	f := &PlainFormatter{opts: opts}
	if opts.Template != "" {
		tmpl, err := template.New("plain").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}
	return f
}

// Format writes records as plain text.
func (f *PlainFormatter) Format(w io.Writer, records []recent.Record) error {
	for i := range records {
		if err := f.formatRecord(w, i+1, &records[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *PlainFormatter) formatRecord(w io.Writer, index int, r *recent.Record) error {
	if f.template != nil {
		return f.template.Execute(w, newTemplateData(index, r))
	}

	var sb strings.Builder
	if f.opts.ShowIndex {
		fmt.Fprintf(&sb, "[%d] ", index)
	}
	if f.opts.ShowMime && r.MimeType != "" {
		fmt.Fprintf(&sb, "<%s> ", r.MimeType)
	}
	sb.WriteString(sanitize(r.Title, f.opts.TitleMaxLen))
	if f.opts.ShowTime {
		age := r.Age()
		if age == "" {
			age = "unknown"
		}
		fmt.Fprintf(&sb, " (%s)", age)
	}
	sb.WriteString("\n")
	sb.WriteString("    " + r.URI + "\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// FormatField outputs a specific field from a record.
func FormatField(r *recent.Record, field string) string {
	switch strings.ToLower(field) {
	case "uri", "url", "href":
		return r.URI
	case "title", "name":
		return r.Title
	case "mime", "mime_type", "type":
		return r.MimeType
	case "timestamp", "time":
		return fmt.Sprintf("%d", r.Timestamp)
	case "age":
		return r.Age()
	case "all", "full":
		return fmt.Sprintf("%s\n%s", r.Title, r.URI)
	default:
		return r.URI
	}
}
