package rss

import (
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

var publishedLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Date patterns searched for in item descriptions, most specific first
var descriptionDatePatterns = []struct {
	re      *regexp.Regexp
	layouts []string
}{
	{
		re:      regexp.MustCompile(`(?:Mon|Tue|Wed|Thu|Fri|Sat|Sun), \d{1,2} (?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec) \d{4} \d{2}:\d{2}(?::\d{2})? (?:[+-]\d{4}|[A-Z]{2,4})`),
		layouts: []string{time.RFC1123Z, time.RFC1123, "Mon, 2 Jan 2006 15:04:05 -0700", "Mon, 2 Jan 2006 15:04:05 MST", "Mon, 2 Jan 2006 15:04 -0700", "Mon, 2 Jan 2006 15:04 MST"},
	},
	{
		re:      regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:\d{2})`),
		layouts: []string{time.RFC3339Nano},
	},
	{
		re:      regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),
		layouts: []string{"2006-01-02"},
	},
	{
		re:      regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`),
		layouts: []string{"2/1/2006", "02/01/2006"},
	},
	{
		re:      regexp.MustCompile(`(?:January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Oct|Nov|Dec) \d{1,2}, \d{4}`),
		layouts: []string{"January 2, 2006", "Jan 2, 2006"},
	},
}

// dateSource records how an item date was obtained
type dateSource int

const (
	dateFromFeed dateSource = iota
	dateFromDescription
	dateDefaulted
)

// normalizeDate picks the item's publish date: parsed pubDate, then updated date,
// then a date found in the description, then now. The last two are estimates.
func normalizeDate(item *gofeed.Item, now time.Time) (time.Time, dateSource) {
	if item.PublishedParsed != nil && !item.PublishedParsed.IsZero() {
		return *item.PublishedParsed, dateFromFeed
	}
	if item.UpdatedParsed != nil && !item.UpdatedParsed.IsZero() {
		return *item.UpdatedParsed, dateFromFeed
	}
	if t, ok := parseWithLayouts(strings.TrimSpace(item.Published), publishedLayouts); ok {
		return t, dateFromFeed
	}
	if t, ok := dateFromText(item.Description); ok {
		return t, dateFromDescription
	}
	return now, dateDefaulted
}

// dateFromText finds the first recognisable date in free text
func dateFromText(text string) (time.Time, bool) {
	if text == "" {
		return time.Time{}, false
	}
	for _, p := range descriptionDatePatterns {
		match := p.re.FindString(text)
		if match == "" {
			continue
		}
		if t, ok := parseWithLayouts(match, p.layouts); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseWithLayouts(value string, layouts []string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
