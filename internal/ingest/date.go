package ingest

import "time"

// Explicit layouts tried in order. US month-first forms come before
// day-first forms, so an ambiguous 01/02/2026 resolves as January 2nd.
// Layouts that would produce an invalid date simply fail and the next
// one is tried.
// The numeric layouts use the non-padded forms, which time.Parse accepts
// for both "1/5/2026" and "01/05/2026".
var dateLayouts = []string{
	"1/2/2006",
	"2006-1-2",
	"2/1/2006",
	"2006/1/2",
	"1-2-2006",
	"2.1.2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"1/2/06",
	"1-2-06",
}

// Layouts for the general-purpose fallback, covering exports that include
// a time component.
var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-1-2 15:04:05",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
}

// parseDate resolves a raw date string to an ISO (YYYY-MM-DD) date.
// The first layout that yields a valid date wins.
func parseDate(raw string) (string, bool) {
	for _, layout := range dateLayouts {
		if date, err := time.Parse(layout, raw); err == nil {
			return date.Format("2006-01-02"), true
		}
	}

	for _, layout := range dateTimeLayouts {
		if date, err := time.Parse(layout, raw); err == nil {
			return date.Format("2006-01-02"), true
		}
	}

	return "", false
}
