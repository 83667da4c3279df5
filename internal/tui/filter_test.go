package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsFilterExpression(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected bool
	}{
		// Valid filter expressions
		{"title_equal", "title=report.pdf", true},
		{"uri_not_equal", "uri!=file:///tmp/a", true},
		{"mime_contains", "mime~pdf", true},
		{"uri_regex", "uri~=(?i)documents", true},
		{"age_greater", "age>1d", true},
		{"age_less", "age<1h", true},
		{"age_less_eq", "age<=2w", true},
		{"local", "local=true", true},
		{"scheme", "scheme=https", true},
		{"multiple", "mime~image,age<1d", true},

		// Not filter expressions (plain text search)
		{"plain_word", "report", false},
		{"plain_phrase", "quarterly report", false},
		{"email_address", "user@example.com", false}, // @ is not a filter operator
		{"url", "https://example.com", false},
		{"unknown_field", "unknown=value", false},
		{"just_equals", "=value", false},
		{"number", "12345", false},
		{"empty", "", false},
		{"bad_age", "age<soon", false},

		// Edge cases
		{"partial_field", "tit=report", false},           // "tit" is not a valid field
		{"case_insensitive_field", "MIME=text/plain", true}, // fields are case-insensitive
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isFilterExpression(tt.query)
			assert.Equal(t, tt.expected, result, "query: %q", tt.query)
		})
	}
}

func TestContainsIgnoreCase(t *testing.T) {
	assert.True(t, containsIgnoreCase("Report.PDF", "pdf"))
	assert.True(t, containsIgnoreCase("anything", ""))
	assert.False(t, containsIgnoreCase("notes", "report"))
}
