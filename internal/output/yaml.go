package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/kiwimenu/internal/recent"
)

// YAMLFormatter formats records as a YAML sequence.
type YAMLFormatter struct {
	opts FormatterOptions
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(opts FormatterOptions) *YAMLFormatter {
	return &YAMLFormatter{opts: opts}
}

// Format writes records as YAML.
func (f *YAMLFormatter) Format(w io.Writer, records []recent.Record) error {
	if records == nil {
		records = []recent.Record{}
	}
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(records); err != nil {
		return err
	}
	return encoder.Close()
}
