package models

import (
	"encoding/json"
	"time"
)

// Slug is the CMS slug object; only Current is used for routing
type Slug struct {
	Current string `json:"current"`
}

// Image is a resolved CMS image reference
type Image struct {
	URL string `json:"url,omitempty"`
	Alt string `json:"alt,omitempty"`
}

// Category groups articles; subcategories point at their parent
type Category struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	TitleHindi  string `json:"titleHindi,omitempty"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Order       int    `json:"order,omitempty"`
}

// DisplayTitle prefers the Hindi title when one is set
func (c Category) DisplayTitle() string {
	if c.TitleHindi != "" {
		return c.TitleHindi
	}
	return c.Title
}

// Author of an article
type Author struct {
	Name  string `json:"name"`
	Slug  string `json:"slug,omitempty"`
	Image *Image `json:"image,omitempty"`
	Bio   string `json:"bio,omitempty"`
}

// ArticleSummary is the card-sized projection used by listings
type ArticleSummary struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Excerpt     string    `json:"excerpt,omitempty"`
	MainImage   *Image    `json:"mainImage,omitempty"`
	Category    *Category `json:"category,omitempty"`
	AuthorName  string    `json:"authorName,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
	IsTrending  bool      `json:"isTrending,omitempty"`
	EditorPick  bool      `json:"isEditorsPick,omitempty"`
	Relevance   int       `json:"relevance,omitempty"`
}

// Article is the full article document
type Article struct {
	ID          string          `json:"_id"`
	Title       string          `json:"title"`
	Slug        string          `json:"slug"`
	Excerpt     string          `json:"excerpt,omitempty"`
	Body        json.RawMessage `json:"body,omitempty"`
	MainImage   *Image          `json:"mainImage,omitempty"`
	CoverImage  *Image          `json:"coverImage,omitempty"`
	Category    *Category       `json:"category,omitempty"`
	Subcategory *Category       `json:"subcategory,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	Author      *Author         `json:"author,omitempty"`
	PublishedAt time.Time       `json:"publishedAt"`
	IsTrending  bool            `json:"isTrending,omitempty"`
	EditorPick  bool            `json:"isEditorsPick,omitempty"`
}

// Summary projects the article into its card form
func (a *Article) Summary() ArticleSummary {
	s := ArticleSummary{
		ID:          a.ID,
		Title:       a.Title,
		Slug:        a.Slug,
		Excerpt:     a.Excerpt,
		MainImage:   a.MainImage,
		Category:    a.Category,
		PublishedAt: a.PublishedAt,
		IsTrending:  a.IsTrending,
		EditorPick:  a.EditorPick,
	}
	if a.Author != nil {
		s.AuthorName = a.Author.Name
	}
	return s
}

// CategoryID returns the category reference or empty
func (a *Article) CategoryID() string {
	if a.Category == nil {
		return ""
	}
	return a.Category.ID
}

// SubcategoryID returns the subcategory reference or empty
func (a *Article) SubcategoryID() string {
	if a.Subcategory == nil {
		return ""
	}
	return a.Subcategory.ID
}

// Video is a video document with an embeddable URL
type Video struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Thumbnail   *Image    `json:"thumbnail,omitempty"`
	VideoURL    string    `json:"videoUrl"`
	Category    *Category `json:"category,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
	Views       int       `json:"views,omitempty"`
}

// Notice is one entry of the scrolling ticker
type Notice struct {
	ID       string `json:"_id"`
	Message  string `json:"message"`
	Link     string `json:"link,omitempty"`
	Order    int    `json:"order"`
	IsActive bool   `json:"isActive"`
}

// Testimonial is a reader quote shown on the home page
type Testimonial struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
	Quote    string `json:"quote"`
	Category string `json:"category,omitempty"`
	Rating   int    `json:"rating,omitempty"`
	Featured bool   `json:"featured"`
	Image    *Image `json:"image,omitempty"`
}

// Stars returns a slice sized to the rating, clamped to 0..5, for template ranges
func (t Testimonial) Stars() []struct{} {
	n := t.Rating
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	return make([]struct{}, n)
}

// WeeklyPDF is the weekly print edition
type WeeklyPDF struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	FileURL     string    `json:"fileUrl"`
	Cover       *Image    `json:"coverImage,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
}
