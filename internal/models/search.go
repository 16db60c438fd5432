package models

import "time"

// Search content type filters
const (
	SearchTypeAll     = "all"
	SearchTypeArticle = "article"
	SearchTypeVideo   = "video"
	SearchTypeEvent   = "event"
)

// SearchTypes lists the concrete document types searched for "all"
var SearchTypes = []string{SearchTypeArticle, SearchTypeVideo, SearchTypeEvent}

// SearchRequest is the parsed query of GET /api/search
type SearchRequest struct {
	Term        string
	Type        string
	Page        int
	Limit       int
	Suggestions bool
}

// SearchResult is one matching document of any searchable type
type SearchResult struct {
	ID          string    `json:"_id"`
	Type        string    `json:"_type"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug,omitempty"`
	Excerpt     string    `json:"excerpt,omitempty"`
	Image       *Image    `json:"image,omitempty"`
	Category    string    `json:"category,omitempty"`
	VideoURL    string    `json:"videoUrl,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
}

// URL returns the site path of the result
func (r SearchResult) URL() string {
	switch r.Type {
	case SearchTypeArticle:
		return "/articles/" + r.Slug
	case SearchTypeEvent:
		return "/calendar/event/" + r.Slug
	case SearchTypeVideo:
		return "/videos"
	}
	return "/"
}

// Suggestion is a title completion
type Suggestion struct {
	Title string `json:"title"`
	Type  string `json:"_type"`
	Slug  string `json:"slug,omitempty"`
}

// SearchResponse is the JSON payload of GET /api/search
type SearchResponse struct {
	Results     []SearchResult `json:"results"`
	TotalCount  int            `json:"totalCount"`
	Suggestions []Suggestion   `json:"suggestions"`
	Page        int            `json:"page"`
	TotalPages  int            `json:"totalPages"`
	HasMore     bool           `json:"hasMore"`
	SearchTerm  string         `json:"searchTerm,omitempty"`
	Type        string         `json:"type,omitempty"`
	Message     string         `json:"message,omitempty"`
}

// EmptySearchResponse is returned for terms that are too short
func EmptySearchResponse(message string) *SearchResponse {
	return &SearchResponse{
		Results:     []SearchResult{},
		Suggestions: []Suggestion{},
		Message:     message,
	}
}
