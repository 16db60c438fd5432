package models

import (
	"regexp"
	"strconv"
	"time"
)

// Ad placement slots
const (
	PlacementHomeTop       = "home-top"
	PlacementHomeSidebar   = "home-sidebar"
	PlacementArticleTop    = "article-top"
	PlacementArticleInline = "article-inline"
	PlacementArticleSide   = "article-sidebar"
	PlacementCategory      = "category"
	PlacementVideos        = "videos"
	PlacementCalendar      = "calendar"
)

var durationBucketRegex = regexp.MustCompile(`^\s*(\d+)\s*days?\s*$`)

// Advertisement is a placed banner with a bounded lifetime
type Advertisement struct {
	ID         string    `json:"_id"`
	Title      string    `json:"title"`
	Image      *Image    `json:"image,omitempty"`
	Link       string    `json:"link,omitempty"`
	Placements []string  `json:"placement,omitempty"`
	StartDate  time.Time `json:"startDate"`
	Duration   string    `json:"duration"`
}

// DurationBucket parses values such as "1day", "15 days" or "30days".
// ok is false for anything else.
func DurationBucket(bucket string) (d time.Duration, ok bool) {
	m := durationBucketRegex.FindStringSubmatch(bucket)
	if m == nil {
		return 0, false
	}
	days, err := strconv.Atoi(m[1])
	if err != nil || days <= 0 {
		return 0, false
	}
	return time.Duration(days) * 24 * time.Hour, true
}

// EndDate is StartDate plus the duration bucket
func (a Advertisement) EndDate() (time.Time, bool) {
	d, ok := DurationBucket(a.Duration)
	if !ok {
		return time.Time{}, false
	}
	return a.StartDate.Add(d), true
}

// ActiveAt reports whether startDate <= now < startDate+duration.
// Ads with an unrecognised duration are never active.
func (a Advertisement) ActiveAt(now time.Time) bool {
	end, ok := a.EndDate()
	if !ok {
		return false
	}
	return !now.Before(a.StartDate) && now.Before(end)
}

// HasPlacement reports whether the ad may appear in slot
func (a Advertisement) HasPlacement(slot string) bool {
	for _, p := range a.Placements {
		if p == slot {
			return true
		}
	}
	return false
}

// FilterActiveAds keeps ads that are active at now and tagged for slot
func FilterActiveAds(ads []Advertisement, slot string, now time.Time) []Advertisement {
	out := make([]Advertisement, 0, len(ads))
	for _, ad := range ads {
		if ad.HasPlacement(slot) && ad.ActiveAt(now) {
			out = append(out, ad)
		}
	}
	return out
}
