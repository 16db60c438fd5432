package models

import (
	"html/template"
	"time"
)

// Layout is the chrome shared by every page
type Layout struct {
	Categories []Category `json:"categories"`
	Notices    []Notice   `json:"notices"`
}

// HomePage aggregates the home page sections
type HomePage struct {
	Latest       []ArticleSummary `json:"latest"`
	Trending     []ArticleSummary `json:"trending"`
	EditorPicks  []ArticleSummary `json:"editorPicks"`
	Events       []Event          `json:"events"`
	Videos       []Video          `json:"videos"`
	Testimonials []Testimonial    `json:"testimonials"`
	TopAds       []Advertisement  `json:"topAds"`
	SidebarAds   []Advertisement  `json:"sidebarAds"`
}

// ArticlePage is a single article with its related content
type ArticlePage struct {
	Article    *Article         `json:"article"`
	BodyHTML   template.HTML    `json:"-"`
	Related    []ArticleSummary `json:"related"`
	TopAds     []Advertisement  `json:"topAds"`
	InlineAds  []Advertisement  `json:"inlineAds"`
	SidebarAds []Advertisement  `json:"sidebarAds"`
}

// Pagination describes a 1-based page window
type Pagination struct {
	Page       int  `json:"page"`
	TotalPages int  `json:"totalPages"`
	TotalCount int  `json:"totalCount"`
	HasPrev    bool `json:"hasPrev"`
	HasNext    bool `json:"hasNext"`
}

// NewPagination computes the window for total items split into pages of size
func NewPagination(page, size, total int) Pagination {
	if size < 1 {
		size = 1
	}
	if page < 1 {
		page = 1
	}
	totalPages := (total + size - 1) / size
	return Pagination{
		Page:       page,
		TotalPages: totalPages,
		TotalCount: total,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
}

// PrevPage is the previous page number
func (p Pagination) PrevPage() int { return p.Page - 1 }

// NextPage is the next page number
func (p Pagination) NextPage() int { return p.Page + 1 }

// CategoryPage lists the articles of a category or subcategory
type CategoryPage struct {
	Category   *Category        `json:"category"`
	Articles   []ArticleSummary `json:"articles"`
	Pagination Pagination       `json:"pagination"`
	Ads        []Advertisement  `json:"ads"`
}

// CalendarDay is one cell of the month grid
type CalendarDay struct {
	Date    time.Time `json:"date"`
	InMonth bool      `json:"inMonth"`
	Today   bool      `json:"today"`
	Events  []Event   `json:"events"`
}

// CalendarPage is a month of events laid out as weeks starting on Sunday
type CalendarPage struct {
	Month    time.Time       `json:"month"`
	Prev     time.Time       `json:"prev"`
	Next     time.Time       `json:"next"`
	Weeks    [][]CalendarDay `json:"weeks"`
	Events   []Event         `json:"events"`
	Upcoming []Event         `json:"upcoming"`
	Ads      []Advertisement `json:"ads"`
}

// EventPage is a single event
type EventPage struct {
	Event       *Event        `json:"event"`
	DetailsHTML template.HTML `json:"-"`
	Upcoming    []Event       `json:"upcoming"`
}

// VideosPage is a page of the video gallery
type VideosPage struct {
	Videos     []Video         `json:"videos"`
	Pagination Pagination      `json:"pagination"`
	Ads        []Advertisement `json:"ads"`
}
