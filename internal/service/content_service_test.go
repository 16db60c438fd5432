package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/khabar-news/khabar/internal/cms"
	"github.com/khabar-news/khabar/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summaries(slugs ...string) []models.ArticleSummary {
	out := make([]models.ArticleSummary, 0, len(slugs))
	for _, s := range slugs {
		out = append(out, models.ArticleSummary{ID: "id-" + s, Title: s, Slug: s, PublishedAt: fixedNow})
	}
	return out
}

func TestHome_OptionalSectionsDegrade(t *testing.T) {
	h := newHarness()
	h.querier.
		Respond("articles.latest", summaries("a", "b")).
		Fail("articles.trending", errors.New("timeout")).
		Respond("articles.editorPicks", summaries("c")).
		Fail("events.featured", errors.New("timeout")).
		Respond("videos.latest", []models.Video{{ID: "v1", Title: "clip"}})

	page, err := h.services.Content.Home(context.Background())
	require.NoError(t, err)

	assert.Len(t, page.Latest, 2)
	assert.Empty(t, page.Trending)
	assert.Len(t, page.EditorPicks, 1)
	assert.Empty(t, page.Events)
	assert.Len(t, page.Videos, 1)
	assert.Empty(t, page.Testimonials)

	assert.Equal(t, 12, h.querier.LastParams("articles.latest")["end"])
	assert.Equal(t, 5, h.querier.LastParams("articles.trending")["limit"])
}

func TestHome_LatestFailureFailsPage(t *testing.T) {
	h := newHarness()
	h.querier.Fail("articles.latest", errors.New("cms down"))

	_, err := h.services.Content.Home(context.Background())
	assert.Error(t, err)
}

func TestHome_AdsFilteredBySlotAndWindow(t *testing.T) {
	h := newHarness()
	h.querier.
		Respond("articles.latest", summaries("a")).
		Respond("ads.active", []models.Advertisement{
			{ID: "live", Placements: []string{models.PlacementHomeTop}, StartDate: fixedNow.AddDate(0, 0, -1), Duration: "7days"},
			{ID: "expired", Placements: []string{models.PlacementHomeTop}, StartDate: fixedNow.AddDate(0, 0, -10), Duration: "7days"},
			{ID: "future", Placements: []string{models.PlacementHomeTop}, StartDate: fixedNow.Add(time.Hour), Duration: "1day"},
			{ID: "unknown", Placements: []string{models.PlacementHomeTop}, StartDate: fixedNow.AddDate(0, 0, -1), Duration: "forever"},
			{ID: "sidebar", Placements: []string{models.PlacementHomeSidebar}, StartDate: fixedNow, Duration: "15 days"},
		})

	page, err := h.services.Content.Home(context.Background())
	require.NoError(t, err)

	require.Len(t, page.TopAds, 1)
	assert.Equal(t, "live", page.TopAds[0].ID)
	require.Len(t, page.SidebarAds, 1)
	assert.Equal(t, "sidebar", page.SidebarAds[0].ID)
}

func TestArticle(t *testing.T) {
	h := newHarness()
	h.querier.
		Respond("articles.bySlug", models.Article{
			ID:       "a1",
			Title:    "Budget",
			Slug:     "budget",
			Category: &models.Category{ID: "cat-1", Slug: "india"},
			Body:     json.RawMessage(`[{"_type":"block","style":"normal","children":[{"_type":"span","text":"Hello world"}]}]`),
		}).
		Respond("articles.related", summaries("x", "y"))

	page, err := h.services.Content.Article(context.Background(), "budget")
	require.NoError(t, err)

	assert.Equal(t, "Budget", page.Article.Title)
	assert.Contains(t, string(page.BodyHTML), "Hello world")
	assert.Len(t, page.Related, 2)

	params := h.querier.LastParams("articles.related")
	assert.Equal(t, "budget", params["slug"])
	assert.Equal(t, "cat-1", params["categoryId"])
	assert.Equal(t, "", params["subcategoryId"])
	assert.Equal(t, []string{}, params["tags"])
	assert.Equal(t, 4, params["limit"])
}

func TestArticle_NotFound(t *testing.T) {
	h := newHarness()

	_, err := h.services.Content.Article(context.Background(), "missing")
	assert.ErrorIs(t, err, cms.ErrNotFound)
	assert.Equal(t, 0, h.querier.CallCount("articles.related"))
}

func TestArticle_RelatedFailureStillRenders(t *testing.T) {
	h := newHarness()
	h.querier.
		Respond("articles.bySlug", models.Article{ID: "a1", Slug: "budget", Tags: []string{"tax"}}).
		Fail("articles.related", errors.New("timeout"))

	page, err := h.services.Content.Article(context.Background(), "budget")
	require.NoError(t, err)
	assert.Empty(t, page.Related)
	assert.Equal(t, []string{"tax"}, h.querier.LastParams("articles.related")["tags"])
}

func TestCategory_Pagination(t *testing.T) {
	h := newHarness()
	h.querier.
		Respond("categories.bySlug", models.Category{ID: "cat-1", Title: "India", Slug: "india"}).
		Respond("articles.byCategory", summaries("a", "b")).
		Respond("articles.countByCategory", 30)

	page, err := h.services.Content.Category(context.Background(), "india", 2)
	require.NoError(t, err)

	assert.Equal(t, "India", page.Category.Title)
	assert.Equal(t, models.Pagination{Page: 2, TotalPages: 3, TotalCount: 30, HasPrev: true, HasNext: true}, page.Pagination)

	params := h.querier.LastParams("articles.byCategory")
	assert.Equal(t, "india", params["slug"])
	assert.Equal(t, 12, params["start"])
	assert.Equal(t, 24, params["end"])
}

func TestCategory_NotFound(t *testing.T) {
	h := newHarness()

	_, err := h.services.Content.Category(context.Background(), "nope", 1)
	assert.ErrorIs(t, err, cms.ErrNotFound)
}

func TestCalendar_MonthGrid(t *testing.T) {
	end := time.Date(2025, 3, 12, 18, 0, 0, 0, time.UTC)
	h := newHarness()
	h.querier.Respond("events.between", []models.Event{
		{ID: "e1", Title: "Mela", StartDate: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), EndDate: &end},
		{ID: "e2", Title: "Talk", StartDate: time.Date(2025, 3, 15, 17, 0, 0, 0, time.UTC)},
	})

	page, err := h.services.Content.Calendar(context.Background(), time.Time{})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), page.Month)
	assert.Equal(t, time.February, page.Prev.Month())
	assert.Equal(t, time.April, page.Next.Month())

	params := h.querier.LastParams("events.between")
	assert.Equal(t, "2025-03-01T00:00:00Z", params["from"])
	assert.Equal(t, "2025-04-01T00:00:00Z", params["to"])

	// March 2025 starts on a Saturday and spans six Sunday-first weeks
	require.Len(t, page.Weeks, 6)
	first := page.Weeks[0][0]
	assert.Equal(t, time.Date(2025, 2, 23, 0, 0, 0, 0, time.UTC), first.Date)
	assert.False(t, first.InMonth)
	assert.True(t, page.Weeks[0][6].InMonth)

	today := page.Weeks[2][6]
	assert.Equal(t, 15, today.Date.Day())
	assert.True(t, today.Today)
	require.Len(t, today.Events, 1)
	assert.Equal(t, "e2", today.Events[0].ID)

	for i, day := range page.Weeks[2][1:5] {
		if day.Date.Day() <= 12 {
			assert.Len(t, day.Events, 1, "day %d", i)
		} else {
			assert.Empty(t, day.Events, "day %d", i)
		}
	}
}

func TestCalendar_EventsFailureFailsPage(t *testing.T) {
	h := newHarness()
	h.querier.Fail("events.between", errors.New("cms down"))

	_, err := h.services.Content.Calendar(context.Background(), fixedNow)
	assert.Error(t, err)
}

func TestEvent_UpcomingExcludesSelf(t *testing.T) {
	h := newHarness()
	h.querier.
		Respond("events.bySlug", models.Event{ID: "e1", Slug: "mela", StartDate: fixedNow}).
		Respond("events.upcoming", []models.Event{{ID: "e1"}, {ID: "e2"}})

	page, err := h.services.Content.Event(context.Background(), "mela")
	require.NoError(t, err)

	require.Len(t, page.Upcoming, 1)
	assert.Equal(t, "e2", page.Upcoming[0].ID)
}

func TestVideos_PageClamped(t *testing.T) {
	h := newHarness()
	h.querier.
		Respond("videos.page", []models.Video{{ID: "v1"}}).
		Respond("videos.count", 1)

	page, err := h.services.Content.Videos(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 1, page.Pagination.Page)
	assert.False(t, page.Pagination.HasNext)
	assert.Equal(t, 0, h.querier.LastParams("videos.page")["start"])
}

func TestLayout(t *testing.T) {
	h := newHarness()
	h.querier.
		Respond("categories.all", []models.Category{{ID: "c1", Title: "India"}}).
		Fail("notices.active", errors.New("timeout"))

	layout, err := h.services.Content.Layout(context.Background())
	require.NoError(t, err)
	assert.Len(t, layout.Categories, 1)
	assert.Empty(t, layout.Notices)
}
