package recent

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// FilterOp represents a comparison operator.
type FilterOp string

const (
	FilterOpEqual     FilterOp = "="  // Exact match
	FilterOpNotEqual  FilterOp = "!=" // Not equal
	FilterOpContains  FilterOp = "~"  // Contains substring
	FilterOpRegex     FilterOp = "~=" // Regex match
	FilterOpGreater   FilterOp = ">"  // Greater than
	FilterOpLess      FilterOp = "<"  // Less than
	FilterOpGreaterEq FilterOp = ">=" // Greater than or equal
	FilterOpLessEq    FilterOp = "<=" // Less than or equal
)

// operators are tried longest first so "!=" is not read as "=".
var operators = []FilterOp{
	FilterOpNotEqual,
	FilterOpGreaterEq,
	FilterOpLessEq,
	FilterOpRegex,
	FilterOpEqual,
	FilterOpContains,
	FilterOpGreater,
	FilterOpLess,
}

// fieldAliases maps accepted field names to their canonical form.
var fieldAliases = map[string]string{
	"title":  "title",
	"name":   "title",
	"uri":    "uri",
	"url":    "uri",
	"href":   "uri",
	"mime":   "mime",
	"type":   "mime",
	"age":    "age",
	"local":  "local",
	"scheme": "scheme",
}

// FilterCondition is a single field comparison.
type FilterCondition struct {
	Field    string
	Operator FilterOp
	Value    string

	regex   *regexp.Regexp
	age     time.Duration
	boolVal bool
}

// FilterExpr is a set of conditions that must all match.
type FilterExpr struct {
	Conditions []FilterCondition
}

// IsFilterField reports whether name is a field a filter can compare.
func IsFilterField(name string) bool {
	_, ok := fieldAliases[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// ParseDuration parses a duration with day and week suffixes (7d, 1w)
// on top of the standard Go forms.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "0" || s == "" {
		return 0, nil
	}

	if daysStr, found := strings.CutSuffix(s, "d"); found {
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	if weeksStr, found := strings.CutSuffix(s, "w"); found {
		weeks, err := strconv.Atoi(weeksStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(weeks) * 7 * 24 * time.Hour, nil
	}

	return time.ParseDuration(s)
}

// ParseFilter parses a comma separated filter expression.
//
// Supported fields: title, uri, mime, scheme, age, local.
// Supported operators: = != ~ ~= > < >= <=
//
// Examples:
//   - "mime~pdf" - mime type contains "pdf"
//   - "uri~=^file:///home/.*/Documents" - regex on the URI
//   - "age<1h,local=true" - local files used in the last hour
func ParseFilter(expr string) (*FilterExpr, error) {
	f := &FilterExpr{}
	for part := range strings.SplitSeq(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		cond, err := parseCondition(part)
		if err != nil {
			return nil, err
		}
		f.Conditions = append(f.Conditions, cond)
	}
	return f, nil
}

func parseCondition(s string) (FilterCondition, error) {
	for _, op := range operators {
		idx := strings.Index(s, string(op))
		if idx <= 0 {
			continue
		}
		cond := FilterCondition{
			Field:    strings.ToLower(strings.TrimSpace(s[:idx])),
			Operator: op,
			Value:    strings.TrimSpace(s[idx+len(op):]),
		}
		if err := cond.init(); err != nil {
			return FilterCondition{}, err
		}
		return cond, nil
	}
	return FilterCondition{}, fmt.Errorf("invalid filter condition: %s (missing operator)", s)
}

func (c *FilterCondition) init() error {
	field, ok := fieldAliases[c.Field]
	if !ok {
		return fmt.Errorf("unknown filter field: %s", c.Field)
	}
	c.Field = field

	switch field {
	case "age":
		d, err := ParseDuration(c.Value)
		if err != nil {
			return fmt.Errorf("invalid age value: %w", err)
		}
		c.age = d
	case "local":
		c.boolVal = parseBool(c.Value)
	}

	if c.Operator == FilterOpRegex {
		re, err := regexp.Compile(c.Value)
		if err != nil {
			return fmt.Errorf("invalid regex: %w", err)
		}
		c.regex = re
	}
	return nil
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1", "y", "t":
		return true
	default:
		return false
	}
}

// Match reports whether r satisfies every condition.
func (f *FilterExpr) Match(r Record, now time.Time) bool {
	for i := range f.Conditions {
		if !f.Conditions[i].Match(r, now) {
			return false
		}
	}
	return true
}

// Match reports whether r satisfies this condition.
func (c *FilterCondition) Match(r Record, now time.Time) bool {
	switch c.Field {
	case "title":
		return c.matchString(r.Title)
	case "uri":
		return c.matchString(r.URI)
	case "mime":
		return c.matchString(r.MimeType)
	case "scheme":
		scheme, _, _ := strings.Cut(r.URI, ":")
		return c.matchString(scheme)
	case "local":
		return c.matchBool(r.IsLocal())
	case "age":
		if r.Timestamp == 0 {
			return false
		}
		return c.matchAge(now.Sub(r.Time()))
	default:
		return false
	}
}

func (c *FilterCondition) matchString(v string) bool {
	switch c.Operator {
	case FilterOpEqual:
		return v == c.Value
	case FilterOpNotEqual:
		return v != c.Value
	case FilterOpContains:
		return strings.Contains(strings.ToLower(v), strings.ToLower(c.Value))
	case FilterOpRegex:
		return c.regex != nil && c.regex.MatchString(v)
	default:
		return false
	}
}

func (c *FilterCondition) matchBool(v bool) bool {
	switch c.Operator {
	case FilterOpEqual:
		return v == c.boolVal
	case FilterOpNotEqual:
		return v != c.boolVal
	default:
		return false
	}
}

func (c *FilterCondition) matchAge(age time.Duration) bool {
	switch c.Operator {
	case FilterOpGreater:
		return age > c.age
	case FilterOpLess:
		return age < c.age
	case FilterOpGreaterEq:
		return age >= c.age
	case FilterOpLessEq:
		return age <= c.age
	default:
		return false
	}
}

// Filter returns the records matching expr. A nil or empty expression
// matches everything.
func Filter(records []Record, expr *FilterExpr, now time.Time) []Record {
	if expr == nil || len(expr.Conditions) == 0 {
		return records
	}
	result := make([]Record, 0, len(records))
	for _, r := range records {
		if expr.Match(r, now) {
			result = append(result, r)
		}
	}
	return result
}
