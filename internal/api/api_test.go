package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/khabar-news/khabar/internal/api"
	"github.com/khabar-news/khabar/internal/config"
	"github.com/khabar-news/khabar/internal/mail"
	"github.com/khabar-news/khabar/internal/mocks"
	"github.com/khabar-news/khabar/internal/models"
	"github.com/khabar-news/khabar/internal/queries"
	"github.com/khabar-news/khabar/internal/repository"
	"github.com/khabar-news/khabar/internal/service"
	"github.com/khabar-news/khabar/internal/web"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "s3cret"

type testDeps struct {
	router  *gin.Engine
	querier *mocks.MockQuerier
	mailers *mocks.MockMailerFactory
	repo    *mocks.MockDispatchRepository
	content *mocks.MockContentService
	feed    *mocks.MockFeedService
	cache   *mocks.MockCacheService
}

type fakeDB struct{ err error }

func (f fakeDB) HealthCheck(ctx context.Context) error { return f.err }

func setupTestRouter(t *testing.T, db ...api.HealthChecker) *testDeps {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:             "8080",
			AllowedOrigins:   []string{"*"},
			RevalidateSecret: testSecret,
		},
		Search: config.SearchConfig{
			CacheTTL:        time.Minute,
			CacheCapacity:   100,
			DefaultLimit:    10,
			MaxLimit:        50,
			SuggestionCount: 5,
		},
		Mail: config.MailConfig{DefaultFrom: "noreply@khabar.news"},
		Site: config.SiteConfig{Name: "खबर", Language: "hi"},
	}

	d := &testDeps{
		querier: mocks.NewMockQuerier(),
		mailers: mocks.NewMockMailerFactory(),
		repo:    mocks.NewMockDispatchRepository(),
		content: mocks.NewMockContentService(),
		feed:    &mocks.MockFeedService{},
		cache:   &mocks.MockCacheService{},
	}

	log := zerolog.Nop()
	services := service.NewServices(service.Deps{
		Querier: d.querier,
		Catalog: queries.NewCatalog(time.Minute),
		Mailers: d.mailers,
		Repos:   &repository.Repositories{Dispatch: d.repo},
	}, cfg, log)
	services.Content = d.content
	services.Feed = d.feed
	services.Cache = d.cache

	renderer, err := web.NewRenderer(cfg.Site, log)
	require.NoError(t, err)

	var checker api.HealthChecker
	if len(db) > 0 {
		checker = db[0]
	}
	d.router = api.NewRouter(services, renderer, checker, cfg, log)
	return d
}

func (d *testDeps) do(method, path string, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	d.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func activeSettings() models.DeliverySettings {
	return models.DeliverySettings{
		RecipientEmail: "desk@khabar.news",
		IsActive:       true,
		EmailService:   "smtp",
		SMTPHost:       "smtp.example.com",
	}
}

const validContactJSON = `{"name":"Test","email":"t@example.com","subject":"Hi","message":"Hello"}`

func TestHealthEndpoint(t *testing.T) {
	d := setupTestRouter(t)

	w := d.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "khabar", resp["service"])
	assert.NotEmpty(t, w.Header().Get(api.RequestIDHeader))
}

func TestHealthEndpoint_Database(t *testing.T) {
	d := setupTestRouter(t, fakeDB{})
	w := d.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["database"])

	d = setupTestRouter(t, fakeDB{err: errors.New("connection refused")})
	w = d.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	resp := decode(t, w)
	assert.Equal(t, "unhealthy", resp["status"])
	assert.Equal(t, "unreachable", resp["database"])
}

func TestRequestIDPropagated(t *testing.T) {
	d := setupTestRouter(t)

	w := d.do(http.MethodGet, "/health", "", api.RequestIDHeader, "req-123")
	assert.Equal(t, "req-123", w.Header().Get(api.RequestIDHeader))
}

func TestMetricsEndpoint(t *testing.T) {
	d := setupTestRouter(t)
	d.querier.Respond("settings.contact", activeSettings())
	require.Equal(t, http.StatusOK, d.do(http.MethodPost, "/api/contact", validContactJSON).Code)

	w := d.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	dispatch := resp["dispatch"].(map[string]any)
	assert.Equal(t, float64(1), dispatch["sent"])
	search := resp["search"].(map[string]any)
	assert.Equal(t, float64(0), search["cacheSize"])
	assert.Equal(t, []any{}, resp["recentFailures"])
}

func TestMetricsEndpoint_RecentFailures(t *testing.T) {
	d := setupTestRouter(t)
	d.querier.Respond("settings.contact", activeSettings())
	d.mailers.Mailer.SendError = errors.New("535 auth failed")
	require.Equal(t, http.StatusInternalServerError, d.do(http.MethodPost, "/api/contact", validContactJSON).Code)

	w := d.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	dispatch := resp["dispatch"].(map[string]any)
	assert.Equal(t, float64(1), dispatch["failed"])

	recent := resp["recentFailures"].([]any)
	require.Len(t, recent, 1)
	failure := recent[0].(map[string]any)
	assert.Equal(t, "contact", failure["kind"])
	assert.Equal(t, "535 auth failed", failure["error"])
	assert.NotContains(t, failure, "recipient")
	assert.NotContains(t, failure, "subject")
}

func TestSearch_ShortTermNeverQueries(t *testing.T) {
	d := setupTestRouter(t)

	w := d.do(http.MethodGet, "/api/search?q=a", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.Equal(t, float64(0), resp["totalCount"])
	assert.Equal(t, []any{}, resp["results"])
	assert.Equal(t, []any{}, resp["suggestions"])
	assert.Equal(t, service.ShortTermMessage, resp["message"])
	assert.Equal(t, 0, d.querier.TotalCalls())
}

func TestSearch_Success(t *testing.T) {
	d := setupTestRouter(t)
	d.querier.
		Respond("search.matches", []models.SearchResult{
			{ID: "1", Type: "article", Title: "Budget 2025", Slug: "budget-2025"},
		}).
		Respond("search.count", 1)

	w := d.do(http.MethodGet, "/api/search?q=%20Budget%20&type=article&page=1&limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.Equal(t, float64(1), resp["totalCount"])
	assert.Equal(t, "budget", resp["searchTerm"])
	assert.Equal(t, "article", resp["type"])
	assert.Equal(t, float64(1), resp["totalPages"])
	assert.Equal(t, false, resp["hasMore"])
	assert.Len(t, resp["results"], 1)
	assert.Equal(t, 0, d.querier.CallCount("search.suggestions"))
}

func TestSearch_UpstreamErrorReturnsEmptyArrays(t *testing.T) {
	d := setupTestRouter(t)
	d.querier.Fail("search.matches", errors.New("cms down")).Respond("search.count", 0)

	w := d.do(http.MethodGet, "/api/search?q=budget", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)

	resp := decode(t, w)
	assert.Equal(t, []any{}, resp["results"])
	assert.Equal(t, []any{}, resp["suggestions"])
	assert.Equal(t, float64(0), resp["totalCount"])
	assert.NotContains(t, w.Body.String(), "cms down")
}

func TestRecordSearch(t *testing.T) {
	d := setupTestRouter(t)

	w := d.do(http.MethodPost, "/api/search", `{"searchTerm":"budget"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["success"])

	w = d.do(http.MethodPost, "/api/search", `{"searchTerm":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}

func TestContact_EndToEnd(t *testing.T) {
	d := setupTestRouter(t)
	d.querier.Respond("settings.contact", activeSettings())

	w := d.do(http.MethodPost, "/api/contact", validContactJSON)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode(t, w)
	assert.Equal(t, true, resp["success"])
	assert.NotEmpty(t, resp["message"])

	require.Equal(t, 1, d.mailers.Mailer.SendCalls())
	assert.Equal(t, "desk@khabar.news", d.mailers.Mailer.Sent[0].To)
}

func TestContact_MissingFieldNeverSends(t *testing.T) {
	fields := []string{"name", "email", "subject", "message"}
	for _, field := range fields {
		t.Run(field, func(t *testing.T) {
			d := setupTestRouter(t)
			d.querier.Respond("settings.contact", activeSettings())

			payload := map[string]string{"name": "Test", "email": "t@example.com", "subject": "Hi", "message": "Hello"}
			payload[field] = ""
			body, _ := json.Marshal(payload)

			w := d.do(http.MethodPost, "/api/contact", string(body))
			require.Equal(t, http.StatusBadRequest, w.Code)

			resp := decode(t, w)
			assert.Equal(t, false, resp["success"])
			assert.NotEmpty(t, resp["error"])
			assert.Equal(t, []any{field}, resp["fields"])
			assert.Equal(t, 0, d.mailers.Mailer.SendCalls())
		})
	}
}

func TestContact_InactiveRegardlessOfPayload(t *testing.T) {
	d := setupTestRouter(t)
	settings := activeSettings()
	settings.IsActive = false
	d.querier.Respond("settings.contact", settings)

	for _, body := range []string{validContactJSON, `{}`} {
		w := d.do(http.MethodPost, "/api/contact", body)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, body)
		assert.Equal(t, false, decode(t, w)["success"])
	}
	assert.Equal(t, 0, d.mailers.Mailer.SendCalls())
}

func TestContact_ServerErrors(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(d *testDeps)
	}{
		{
			name:    "no settings document",
			prepare: func(d *testDeps) {},
		},
		{
			name: "missing recipient",
			prepare: func(d *testDeps) {
				s := activeSettings()
				s.RecipientEmail = ""
				d.querier.Respond("settings.contact", s)
			},
		},
		{
			name: "unsupported provider",
			prepare: func(d *testDeps) {
				d.querier.Respond("settings.contact", activeSettings())
				d.mailers.NewError = mail.ErrUnsupportedProvider
			},
		},
		{
			name: "send failure",
			prepare: func(d *testDeps) {
				d.querier.Respond("settings.contact", activeSettings())
				d.mailers.Mailer.SendError = errors.New("535 auth failed")
			},
		},
		{
			name: "cms unreachable",
			prepare: func(d *testDeps) {
				d.querier.Fail("settings.contact", errors.New("dial tcp: timeout"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := setupTestRouter(t)
			tt.prepare(d)

			w := d.do(http.MethodPost, "/api/contact", validContactJSON)
			require.Equal(t, http.StatusInternalServerError, w.Code)

			resp := decode(t, w)
			assert.Equal(t, false, resp["success"])
			assert.NotEmpty(t, resp["error"])
			assert.NotContains(t, w.Body.String(), "auth failed")
			assert.NotContains(t, w.Body.String(), "dial tcp")
		})
	}
}

func TestContact_MalformedJSON(t *testing.T) {
	d := setupTestRouter(t)

	w := d.do(http.MethodPost, "/api/contact", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, d.querier.TotalCalls())
}

func TestSubmission(t *testing.T) {
	d := setupTestRouter(t)
	d.querier.Respond("settings.submission", activeSettings())

	body := `{"title":"बाढ़","description":"गांव में पानी","reporterName":"सीता","contact":"9876543210","driveLink":"https://drive.google.com/x"}`
	w := d.do(http.MethodPost, "/api/submissions", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decode(t, w)["success"])
	require.Equal(t, 1, d.mailers.Mailer.SendCalls())
	assert.Contains(t, d.mailers.Mailer.Sent[0].Subject, "बाढ़")

	w = d.do(http.MethodPost, "/api/submissions", `{"title":"t"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 1, d.mailers.Mailer.SendCalls())
}

func TestRevalidate(t *testing.T) {
	t.Run("wrong secret", func(t *testing.T) {
		d := setupTestRouter(t)
		w := d.do(http.MethodPost, "/api/cache", `{"tag":"article"}`, "X-Revalidate-Secret", "nope")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, d.cache.Invalidated)
	})

	t.Run("missing tag", func(t *testing.T) {
		d := setupTestRouter(t)
		w := d.do(http.MethodPost, "/api/cache", `{"tag":"  "}`, "X-Revalidate-Secret", testSecret)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, d.cache.Invalidated)
	})

	t.Run("success", func(t *testing.T) {
		d := setupTestRouter(t)
		d.cache.Count = 3
		w := d.do(http.MethodPost, "/api/cache", `{"tag":"article"}`, "X-Revalidate-Secret", testSecret)
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode(t, w)
		assert.Equal(t, true, resp["success"])
		assert.Equal(t, true, resp["revalidated"])
		assert.Equal(t, "article", resp["tag"])
		assert.Equal(t, []string{"article"}, d.cache.Invalidated)
	})

	t.Run("store failure", func(t *testing.T) {
		d := setupTestRouter(t)
		d.cache.Err = errors.New("redis down")
		w := d.do(http.MethodPost, "/api/cache", `{"tag":"article"}`, "X-Revalidate-Secret", testSecret)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestCORSPreflight(t *testing.T) {
	d := setupTestRouter(t)

	w := d.do(http.MethodOptions, "/api/contact", "",
		"Origin", "https://example.com",
		"Access-Control-Request-Method", http.MethodPost,
	)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, 0, d.querier.TotalCalls())
}

func TestPanicRecovered(t *testing.T) {
	d := setupTestRouter(t)
	d.router.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := d.do(http.MethodGet, "/boom", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}

func TestPages(t *testing.T) {
	d := setupTestRouter(t)
	d.content.HomeFunc = func(ctx context.Context) (*models.HomePage, error) {
		return &models.HomePage{Latest: []models.ArticleSummary{{Title: "पहली खबर", Slug: "first"}}}, nil
	}
	d.content.ArticleFunc = func(ctx context.Context, slug string) (*models.ArticlePage, error) {
		if slug == "broken" {
			return nil, errors.New("cms down")
		}
		return &models.ArticlePage{Article: &models.Article{Title: "बजट", Slug: slug}, BodyHTML: "<p>text</p>"}, nil
	}

	tests := []struct {
		path     string
		status   int
		contains string
	}{
		{"/", http.StatusOK, "पहली खबर"},
		{"/articles/budget", http.StatusOK, "<p>text</p>"},
		{"/articles/broken", http.StatusInternalServerError, "कुछ गलत हो गया"},
		{"/category/missing", http.StatusNotFound, "यह पृष्ठ नहीं मिला"},
		{"/calendar/event/missing", http.StatusNotFound, "यह पृष्ठ नहीं मिला"},
		{"/calendar?month=2025-03", http.StatusOK, "मार्च 2025"},
		{"/calendar?month=march", http.StatusNotFound, "यह पृष्ठ नहीं मिला"},
		{"/videos?page=2", http.StatusOK, "वीडियो"},
		{"/weekly-pdf", http.StatusOK, "साप्ताहिक अंक"},
		{"/search?q=a", http.StatusOK, service.ShortTermMessage},
		{"/about", http.StatusOK, "हमारे बारे में"},
		{"/contact", http.StatusOK, `data-endpoint="/api/contact"`},
		{"/submissions", http.StatusOK, `data-endpoint="/api/submissions"`},
		{"/terms", http.StatusOK, "नियम और शर्तें"},
		{"/privacy", http.StatusOK, "गोपनीयता नीति"},
		{"/disclaimer", http.StatusOK, "अस्वीकरण"},
		{"/no/such/page", http.StatusNotFound, "यह पृष्ठ नहीं मिला"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := d.do(http.MethodGet, tt.path, "")
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
			assert.Contains(t, w.Body.String(), tt.contains)
		})
	}
}

func TestRSSFeedPage(t *testing.T) {
	t.Run("feed items", func(t *testing.T) {
		d := setupTestRouter(t)
		d.feed.Feed = &models.Feed{
			Title: "Wire",
			Items: []models.FeedItem{{Title: "Headline", Link: "https://wire.example/1", PublishedAt: time.Now()}},
		}

		w := d.do(http.MethodGet, "/rss-feed", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Headline")
	})

	t.Run("partial feed shows notice", func(t *testing.T) {
		d := setupTestRouter(t)
		d.feed.Feed = &models.Feed{Title: "Wire", Partial: true}

		w := d.do(http.MethodGet, "/rss-feed", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "इस स्रोत से अभी कोई खबर उपलब्ध नहीं है")
	})

	t.Run("total feed outage is not found", func(t *testing.T) {
		d := setupTestRouter(t)
		d.feed.Err = errors.New("all sources failed")

		w := d.do(http.MethodGet, "/rss-feed", "")
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "यह पृष्ठ नहीं मिला")
		assert.NotContains(t, w.Body.String(), "all sources failed")
	})
}

func TestPageLayoutFailureDegrades(t *testing.T) {
	d := setupTestRouter(t)
	d.content.LayoutFunc = func(ctx context.Context) (*models.Layout, error) {
		return nil, errors.New("cms down")
	}

	w := d.do(http.MethodGet, "/about", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
