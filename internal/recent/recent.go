// Package recent reads the desktop's recently-used bookmark file (XBEL) and
// turns it into a short, ranked list of records for the Recent Items popout.
package recent

import (
	"encoding/xml"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// MaxItems is the number of records returned by Load.
const MaxItems = 10

// FileName is the basename of the bookmark file.
const FileName = "recently-used.xbel"

// Record is a single recent item.
type Record struct {
	Title     string `json:"title" yaml:"title"`
	URI       string `json:"uri" yaml:"uri"`
	Timestamp int64  `json:"timestamp" yaml:"timestamp"` // Unix seconds, 0 if unknown
	MimeType  string `json:"mime_type,omitempty" yaml:"mime_type,omitempty"`
}

// Time returns the record's timestamp as a time.Time.
func (r Record) Time() time.Time {
	return time.Unix(r.Timestamp, 0)
}

// Age returns a human readable age such as "3 hours ago", or "" when the
// timestamp is unknown.
func (r Record) Age() string {
	if r.Timestamp == 0 {
		return ""
	}
	return humanize.Time(r.Time())
}

// IsLocal reports whether the record points at a local file.
func (r Record) IsLocal() bool {
	return strings.HasPrefix(r.URI, "file://")
}

// DefaultPath returns the bookmark file location.
// Uses XDG_DATA_HOME if set, otherwise ~/.local/share.
func DefaultPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, FileName)
}

type xbel struct {
	XMLName   xml.Name   `xml:"xbel"`
	Bookmarks []bookmark `xml:"bookmark"`
}

type bookmark struct {
	Href     string `xml:"href,attr"`
	Modified string `xml:"modified,attr"`
	Title    string `xml:"title"`
	Info     struct {
		Metadata []struct {
			MimeType struct {
				Type string `xml:"type,attr"`
			} `xml:"mime-type"`
		} `xml:"metadata"`
	} `xml:"info"`
}

func (b bookmark) mimeType() string {
	for _, m := range b.Info.Metadata {
		if m.MimeType.Type != "" {
			return m.MimeType.Type
		}
	}
	return ""
}

// Parse decodes XBEL content into ranked records, at most limit of them.
// A limit of 0 or less means MaxItems.
func Parse(data []byte, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = MaxItems
	}

	var doc xbel
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse bookmarks: %w", err)
	}

	seen := make(map[string]bool, len(doc.Bookmarks))
	records := make([]Record, 0, len(doc.Bookmarks))
	for _, b := range doc.Bookmarks {
		if b.Href == "" || seen[b.Href] {
			continue
		}
		seen[b.Href] = true

		title := strings.TrimSpace(b.Title)
		if title == "" {
			title = DeriveTitle(b.Href)
		}

		records = append(records, Record{
			Title:     title,
			URI:       b.Href,
			Timestamp: parseTimestamp(b.Modified),
			MimeType:  b.mimeType(),
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp > records[j].Timestamp
	})

	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// DeriveTitle builds a display title for a URI without a title element.
// Local files use their final path segment; anything else is shown decoded.
func DeriveTitle(uri string) string {
	decoded, err := url.PathUnescape(uri)
	if err != nil {
		decoded = uri
	}

	if !strings.HasPrefix(decoded, "file://") {
		return decoded
	}

	base := path.Base(strings.TrimPrefix(decoded, "file://"))
	if base == "/" || base == "." || base == "" {
		return decoded
	}
	return base
}

func parseTimestamp(s string) int64 {
	if s == "" {
		return 0
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return 0
	}
	return t.Unix()
}

// Source loads records from a bookmark file.
type Source struct {
	Path   string
	Limit  int
	Logger *slog.Logger
}

// NewSource creates a source for path. An empty path uses DefaultPath.
func NewSource(path string, limit int, logger *slog.Logger) *Source {
	if path == "" {
		path = DefaultPath()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{Path: path, Limit: limit, Logger: logger}
}

// Load reads the bookmark file. Missing or malformed files yield an empty list.
func (s *Source) Load() []Record {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.Logger.Warn("failed to read recent items", "path", s.Path, "error", err)
		}
		return []Record{}
	}

	records, err := Parse(data, s.Limit)
	if err != nil {
		s.Logger.Warn("failed to parse recent items", "path", s.Path, "error", err)
		return []Record{}
	}
	return records
}

// Load reads the bookmark file at path using the default limit and logger.
func Load(path string) []Record {
	return NewSource(path, MaxItems, nil).Load()
}
