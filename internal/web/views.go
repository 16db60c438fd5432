package web

import "github.com/khabar-news/khabar/internal/models"

// Pager feeds the pagination partial
type Pager struct {
	models.Pagination
	Base string
}

// SearchView is the content of the search page
type SearchView struct {
	Query    string
	Type     string
	Types    []string
	Response *models.SearchResponse
	Error    string
}

// CategoryView is the content of a category listing
type CategoryView struct {
	*models.CategoryPage
	Base string
}

// VideosView is the content of the video gallery
type VideosView struct {
	*models.VideosPage
	Base string
}

// FormView is the content of the contact and submission pages
type FormView struct {
	Endpoint string
}
