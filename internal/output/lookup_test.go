package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/kiwimenu/internal/recent"
)

func TestLookupByIndex(t *testing.T) {
	records := testRecords()

	r := LookupByIndex(records, 1)
	require.NotNil(t, r)
	assert.Equal(t, "report.pdf", r.Title)

	assert.Nil(t, LookupByIndex(records, 0))
	assert.Nil(t, LookupByIndex(records, 3))
}

func TestLookupByURI(t *testing.T) {
	records := testRecords()

	r := LookupByURI(records, "https://example.com/")
	require.NotNil(t, r)
	assert.Equal(t, "Example Domain", r.Title)
	assert.Nil(t, LookupByURI(records, "https://missing.example/"))
}

func TestLookup(t *testing.T) {
	records := testRecords()

	tests := []struct {
		selector string
		want     string
	}{
		{"2", "Example Domain"},
		{" 1 ", "report.pdf"},
		{"2 | 2h | Example Domain", "Example Domain"},
		{"file:///home/alice/report.pdf", "report.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			r := Lookup(records, tt.selector)
			require.NotNil(t, r)
			assert.Equal(t, tt.want, r.Title)
		})
	}

	assert.Nil(t, Lookup(records, ""))
	assert.Nil(t, Lookup(records, "nothing"))
	assert.Nil(t, Lookup(records, "9"))
}

func TestSort(t *testing.T) {
	records := []recent.Record{
		{Title: "b", MimeType: "text/plain", Timestamp: 20},
		{Title: "A", MimeType: "image/png", Timestamp: 30},
		{Title: "c", MimeType: "application/pdf", Timestamp: 10},
	}

	Sort(records, DefaultSortOptions())
	assert.Equal(t, []int64{30, 20, 10}, []int64{records[0].Timestamp, records[1].Timestamp, records[2].Timestamp})

	Sort(records, SortOptions{Field: SortByTitle, Order: SortAsc})
	assert.Equal(t, "A", records[0].Title)
	assert.Equal(t, "c", records[2].Title)

	Sort(records, SortOptions{Field: SortByMime, Order: SortAsc})
	assert.Equal(t, "application/pdf", records[0].MimeType)
}

func TestSort_StableOnTies(t *testing.T) {
	records := []recent.Record{
		{Title: "first", Timestamp: 5},
		{Title: "second", Timestamp: 5},
	}
	Sort(records, DefaultSortOptions())
	assert.Equal(t, "first", records[0].Title)
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, SortByTitle, ParseSortField("Title"))
	assert.Equal(t, SortByMime, ParseSortField("type"))
	assert.Equal(t, SortByTimestamp, ParseSortField("whatever"))
	assert.Equal(t, SortAsc, ParseSortOrder("asc"))
	assert.Equal(t, SortDesc, ParseSortOrder(""))
}
