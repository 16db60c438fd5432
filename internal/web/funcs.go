package web

import (
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/khabar-news/khabar/internal/models"
)

var hindiMonths = [...]string{
	"जनवरी", "फ़रवरी", "मार्च", "अप्रैल", "मई", "जून",
	"जुलाई", "अगस्त", "सितंबर", "अक्टूबर", "नवंबर", "दिसंबर",
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"date":      formatDate,
		"dateTime":  formatDateTime,
		"isoDate":   func(t time.Time) string { return t.Format(time.RFC3339) },
		"monthName": monthName,
		"truncate":  truncate,
		"embedURL":  embedURL,
		"pageURL":   pageURL,
		"monthURL":  func(t time.Time) string { return "/calendar?month=" + t.Format("2006-01") },
		"add":       func(a, b int) int { return a + b },
		"pager":     func(p models.Pagination, base string) Pager { return Pager{Pagination: p, Base: base} },
	}
}

// formatDate renders "15 मार्च 2025"
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d %s %d", t.Day(), hindiMonths[t.Month()-1], t.Year())
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return formatDate(t) + ", " + t.Format("15:04")
}

func monthName(t time.Time) string {
	return fmt.Sprintf("%s %d", hindiMonths[t.Month()-1], t.Year())
}

// truncate cuts s to n characters, appending an ellipsis when shortened
func truncate(n int, s string) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n])) + "…"
}

// embedURL turns a YouTube watch or short link into its embeddable form.
// Other URLs are returned unchanged.
func embedURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	host := strings.TrimPrefix(u.Host, "www.")
	switch host {
	case "youtube.com", "m.youtube.com":
		if id := u.Query().Get("v"); id != "" {
			return "https://www.youtube.com/embed/" + id
		}
	case "youtu.be":
		if id := strings.Trim(u.Path, "/"); id != "" {
			return "https://www.youtube.com/embed/" + id
		}
	}
	return raw
}

// pageURL appends a page parameter to base, omitting it for the first page
func pageURL(base string, page int) string {
	if page <= 1 {
		return base
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%spage=%d", base, sep, page)
}
