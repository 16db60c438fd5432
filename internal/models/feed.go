package models

import "time"

// Feed is a parsed external RSS/Atom feed
type Feed struct {
	Source      string     `json:"source"`
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	Description string     `json:"description"`
	Items       []FeedItem `json:"items"`
	// Partial marks a feed that had a title but no items
	Partial bool `json:"partial,omitempty"`
}

// FeedItem is a single entry of a feed
type FeedItem struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Description string    `json:"description"`
	Image       string    `json:"image,omitempty"`
	Categories  []string  `json:"categories,omitempty"`
	PublishedAt time.Time `json:"pubDate"`
	// DateEstimated is set when the publish date was recovered heuristically
	DateEstimated bool `json:"dateEstimated,omitempty"`
}
