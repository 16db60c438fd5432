// Package queries holds every read query the site sends to the CMS.
// Queries are data: user input only ever reaches them as bound parameters.
package queries

import (
	"time"

	"github.com/khabar-news/khabar/internal/cms"
)

// Document types, also used as cache tags
const (
	TypeArticle            = "article"
	TypeCategory           = "category"
	TypeVideo              = "video"
	TypeEvent              = "event"
	TypeAdvertisement      = "advertisement"
	TypeNotice             = "notice"
	TypeTestimonial        = "testimonial"
	TypeWeeklyPDF          = "weeklyPdf"
	TypeContactSettings    = "contactSettings"
	TypeSubmissionSettings = "submissionSettings"
)

const imageProjection = `{"url": asset->url, "alt": alt}`

const categoryProjection = `{_id, title, titleHindi, "slug": slug.current, description, color, order}`

const articleCardProjection = `{
  _id,
  title,
  "slug": slug.current,
  excerpt,
  "mainImage": mainImage` + imageProjection + `,
  "category": category->` + categoryProjection + `,
  "authorName": author->name,
  publishedAt,
  isTrending,
  isEditorsPick
}`

const articleProjection = `{
  _id,
  title,
  "slug": slug.current,
  excerpt,
  body[]{
    ...,
    _type == "image" => {..., "url": asset->url}
  },
  "mainImage": mainImage` + imageProjection + `,
  "coverImage": coverImage` + imageProjection + `,
  "category": category->` + categoryProjection + `,
  "subcategory": subcategory->` + categoryProjection + `,
  tags,
  "author": author->{name, "slug": slug.current, bio, "image": image` + imageProjection + `},
  publishedAt,
  isTrending,
  isEditorsPick
}`

const videoProjection = `{
  _id,
  title,
  description,
  "thumbnail": thumbnail` + imageProjection + `,
  videoUrl,
  "category": category->` + categoryProjection + `,
  publishedAt,
  views
}`

const eventProjection = `{
  _id,
  title,
  "slug": slug.current,
  description,
  detailedDescription,
  "image": image` + imageProjection + `,
  category,
  venue,
  organizer,
  ticketInfo,
  startDate,
  endDate,
  priority,
  isFeatured
}`

const settingsProjection = `{
  recipientEmail,
  isActive,
  emailService,
  fromEmail,
  fromName,
  smtpHost,
  smtpPort,
  smtpUser,
  smtpPass,
  smtpSecure,
  sendgridApiKey,
  resendApiKey
}`

// durationSeconds maps an advertisement duration bucket to seconds inside GROQ
const durationSeconds = `select(
  duration in ["1day", "1 day"] => 86400,
  duration in ["15days", "15 days"] => 1296000,
  duration in ["30days", "30 days"] => 2592000,
  0
)`

const searchFilter = `_type in $types && (
  title match $pattern ||
  excerpt match $pattern ||
  description match $pattern ||
  pt::text(body) match $pattern ||
  tags[] match $pattern
)`

const searchResultProjection = `{
  _id,
  _type,
  title,
  "slug": slug.current,
  "excerpt": coalesce(excerpt, description),
  "image": coalesce(mainImage, thumbnail, image)` + imageProjection + `,
  "category": coalesce(category->title, category),
  videoUrl,
  "publishedAt": coalesce(publishedAt, startDate, _createdAt)
}`

// Catalog is the full set of named queries. Cached queries share one revalidate window.
type Catalog struct {
	LatestArticles   cms.Query
	TrendingArticles cms.Query
	EditorPicks      cms.Query
	ArticleBySlug    cms.Query
	RelatedArticles  cms.Query

	Categories         cms.Query
	CategoryBySlug     cms.Query
	ArticlesByCategory cms.Query
	CountByCategory    cms.Query

	Videos       cms.Query
	CountVideos  cms.Query
	LatestVideos cms.Query

	EventsBetween  cms.Query
	UpcomingEvents cms.Query
	FeaturedEvents cms.Query
	EventBySlug    cms.Query

	ActiveAds            cms.Query
	ActiveNotices        cms.Query
	FeaturedTestimonials cms.Query
	WeeklyPDFs           cms.Query

	ContactSettings    cms.Query
	SubmissionSettings cms.Query

	SearchMatches     cms.Query
	SearchCount       cms.Query
	SearchSuggestions cms.Query
}

// NewCatalog builds the catalog with the given revalidate window for cacheable queries
func NewCatalog(revalidate time.Duration) *Catalog {
	cached := func(name, groq string, tags ...string) cms.Query {
		return cms.Query{Name: name, GROQ: groq, Tags: tags, Revalidate: revalidate}
	}
	live := func(name, groq string, tags ...string) cms.Query {
		return cms.Query{Name: name, GROQ: groq, Tags: tags}
	}

	return &Catalog{
		// $start, $end
		LatestArticles: cached("articles.latest",
			`*[_type == "article" && defined(slug.current) && publishedAt <= now()]
			 | order(publishedAt desc) [$start...$end] `+articleCardProjection,
			TypeArticle),
		// $limit
		TrendingArticles: cached("articles.trending",
			`*[_type == "article" && isTrending == true && publishedAt <= now()]
			 | order(publishedAt desc) [0...$limit] `+articleCardProjection,
			TypeArticle),
		// $limit
		EditorPicks: cached("articles.editorPicks",
			`*[_type == "article" && isEditorsPick == true && publishedAt <= now()]
			 | order(publishedAt desc) [0...$limit] `+articleCardProjection,
			TypeArticle),
		// $slug
		ArticleBySlug: cached("articles.bySlug",
			`*[_type == "article" && slug.current == $slug][0] `+articleProjection,
			TypeArticle),
		// $slug, $categoryId, $subcategoryId, $tags, $limit
		// Tiers: same category 3, same subcategory 2, shared tag 1; newest first within a tier.
		RelatedArticles: cached("articles.related",
			`*[_type == "article" && slug.current != $slug && publishedAt <= now() && (
			   (defined(category) && category._ref == $categoryId) ||
			   (defined(subcategory) && subcategory._ref == $subcategoryId) ||
			   count(tags[@ in $tags]) > 0
			 )]{
			   ...,
			   "relevance": select(
			     category._ref == $categoryId => 3,
			     subcategory._ref == $subcategoryId => 2,
			     1
			   )
			 } | order(relevance desc, publishedAt desc) [0...$limit] `+
				`{..., "slug": slug.current, "mainImage": mainImage`+imageProjection+
				`, "category": category->`+categoryProjection+`, "authorName": author->name}`,
			TypeArticle),

		Categories: cached("categories.all",
			`*[_type == "category" && !defined(parent)] | order(order asc, title asc) `+categoryProjection,
			TypeCategory),
		// $slug
		CategoryBySlug: cached("categories.bySlug",
			`*[_type == "category" && slug.current == $slug][0] `+categoryProjection,
			TypeCategory),
		// $slug, $start, $end
		ArticlesByCategory: cached("articles.byCategory",
			`*[_type == "article" && publishedAt <= now() &&
			   (category->slug.current == $slug || subcategory->slug.current == $slug)]
			 | order(publishedAt desc) [$start...$end] `+articleCardProjection,
			TypeArticle, TypeCategory),
		// $slug
		CountByCategory: cached("articles.countByCategory",
			`count(*[_type == "article" && publishedAt <= now() &&
			   (category->slug.current == $slug || subcategory->slug.current == $slug)])`,
			TypeArticle, TypeCategory),

		// $start, $end
		Videos: cached("videos.page",
			`*[_type == "video"] | order(publishedAt desc) [$start...$end] `+videoProjection,
			TypeVideo),
		CountVideos: cached("videos.count", `count(*[_type == "video"])`, TypeVideo),
		// $limit
		LatestVideos: cached("videos.latest",
			`*[_type == "video"] | order(publishedAt desc) [0...$limit] `+videoProjection,
			TypeVideo),

		// $from, $to (RFC3339)
		EventsBetween: cached("events.between",
			`*[_type == "event" && dateTime(startDate) < dateTime($to) &&
			   dateTime(coalesce(endDate, startDate)) >= dateTime($from)]
			 | order(startDate asc, priority desc) `+eventProjection,
			TypeEvent),
		// $limit
		UpcomingEvents: cached("events.upcoming",
			`*[_type == "event" && dateTime(coalesce(endDate, startDate)) >= dateTime(now())]
			 | order(startDate asc, priority desc) [0...$limit] `+eventProjection,
			TypeEvent),
		// $limit
		FeaturedEvents: cached("events.featured",
			`*[_type == "event" && isFeatured == true && dateTime(coalesce(endDate, startDate)) >= dateTime(now())]
			 | order(priority desc, startDate asc) [0...$limit] `+eventProjection,
			TypeEvent),
		// $slug
		EventBySlug: cached("events.bySlug",
			`*[_type == "event" && slug.current == $slug][0] `+eventProjection,
			TypeEvent),

		// $placement; active when startDate <= now < startDate + duration
		ActiveAds: cached("ads.active",
			`*[_type == "advertisement" && $placement in placement &&
			   dateTime(startDate) <= dateTime(now()) &&
			   dateTime(now()) < dateTime(startDate) + `+durationSeconds+`]
			 | order(startDate desc) {
			   _id, title, "image": image`+imageProjection+`, link, placement, startDate, duration
			 }`,
			TypeAdvertisement),
		ActiveNotices: cached("notices.active",
			`*[_type == "notice" && isActive == true] | order(order asc) {_id, message, link, order, isActive}`,
			TypeNotice),
		// $limit
		FeaturedTestimonials: cached("testimonials.featured",
			`*[_type == "testimonial" && featured == true] | order(_createdAt desc) [0...$limit] {
			   _id, name, location, quote, category, rating, featured, "image": image`+imageProjection+`
			 }`,
			TypeTestimonial),
		// $limit
		WeeklyPDFs: cached("weeklyPdfs.latest",
			`*[_type == "weeklyPdf"] | order(publishedAt desc) [0...$limit] {
			   _id, title, description, "fileUrl": pdfFile.asset->url, "coverImage": coverImage`+imageProjection+`, publishedAt
			 }`,
			TypeWeeklyPDF),

		ContactSettings: live("settings.contact",
			`*[_type == "contactSettings"][0] `+settingsProjection,
			TypeContactSettings),
		SubmissionSettings: live("settings.submission",
			`*[_type == "submissionSettings"][0] `+settingsProjection,
			TypeSubmissionSettings),

		// $types, $pattern, $start, $end
		SearchMatches: live("search.matches",
			`*[`+searchFilter+`]
			 | score(boost(title match $pattern, 3), excerpt match $pattern, description match $pattern)
			 | order(_score desc, coalesce(publishedAt, startDate, _createdAt) desc) [$start...$end] `+searchResultProjection),
		// $types, $pattern
		SearchCount: live("search.count", `count(*[`+searchFilter+`])`),
		// $types, $prefix, $limit
		SearchSuggestions: live("search.suggestions",
			`*[_type in $types && title match $prefix]
			 | order(coalesce(publishedAt, startDate, _createdAt) desc) [0...$limit] {title, _type, "slug": slug.current}`),
	}
}

// Page converts a 1-based page and size into the $start/$end slice params
func Page(page, size int) cms.Params {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 1
	}
	start := (page - 1) * size
	return cms.Params{"start": start, "end": start + size}
}

// Merge combines param sets; later sets win
func Merge(sets ...cms.Params) cms.Params {
	out := cms.Params{}
	for _, s := range sets {
		for k, v := range s {
			out[k] = v
		}
	}
	return out
}
