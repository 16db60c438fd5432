// Package cms executes GROQ queries against the Sanity HTTP query API.
package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/khabar-news/khabar/internal/config"
	"github.com/rs/zerolog"
)

// maxGETLength is the URL length above which queries are sent as POST
const maxGETLength = 11000

// ErrNotFound is returned by FetchOne when the query yields null
var ErrNotFound = errors.New("document not found")

// APIError is a non-2xx answer from the query API
type APIError struct {
	StatusCode  int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cms query failed with status %d: %s", e.StatusCode, e.Description)
}

// Client talks to one project/dataset of the content store
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        zerolog.Logger
}

var _ Querier = (*Client)(nil)

// NewClient builds a client from configuration. The CDN host is used only for
// unauthenticated reads, as tokens bypass the CDN.
func NewClient(cfg *config.CMSConfig, log zerolog.Logger) *Client {
	host := "api.sanity.io"
	if cfg.UseCDN && cfg.Token == "" {
		host = "apicdn.sanity.io"
	}
	base := fmt.Sprintf("https://%s.%s/v%s/data/query/%s", cfg.ProjectID, host, cfg.APIVersion, cfg.Dataset)
	return NewClientWithBaseURL(base, cfg.Token, cfg.Timeout, log)
}

// NewClientWithBaseURL targets an explicit query endpoint; tests point it at httptest servers
func NewClientWithBaseURL(baseURL, token string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.With().Str("component", "cms").Logger(),
	}
}

type queryEnvelope struct {
	Result json.RawMessage `json:"result"`
	MS     int             `json:"ms"`
	// Error is either an object with a description or a plain string
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

type queryBody struct {
	Query  string         `json:"query"`
	Params map[string]any `json:"params,omitempty"`
}

// Query runs q with params bound through the API's parameter mechanism
func (c *Client) Query(ctx context.Context, q Query, params Params) (json.RawMessage, error) {
	req, err := c.buildRequest(ctx, q, params)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cms query %s: %w", q.Name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cms query %s: reading response: %w", q.Name, err)
	}

	var env queryEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		if resp.StatusCode >= 300 {
			return nil, &APIError{StatusCode: resp.StatusCode, Description: http.StatusText(resp.StatusCode)}
		}
		return nil, fmt.Errorf("cms query %s: decoding response: %w", q.Name, err)
	}
	if resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Description: env.describeError()}
	}

	c.log.Debug().
		Str("query", q.Name).
		Int("server_ms", env.MS).
		Dur("duration", time.Since(start)).
		Msg("CMS query executed")

	if len(env.Result) == 0 {
		return json.RawMessage("null"), nil
	}
	return env.Result, nil
}

func (c *Client) buildRequest(ctx context.Context, q Query, params Params) (*http.Request, error) {
	values := url.Values{}
	values.Set("query", q.GROQ)
	for name, v := range params {
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("cms query %s: encoding param %s: %w", q.Name, name, err)
		}
		values.Set("$"+name, string(encoded))
	}

	getURL := c.baseURL + "?" + values.Encode()
	if len(getURL) <= maxGETLength {
		return http.NewRequestWithContext(ctx, http.MethodGet, getURL, nil)
	}

	payload, err := json.Marshal(queryBody{Query: q.GROQ, Params: params})
	if err != nil {
		return nil, fmt.Errorf("cms query %s: encoding body: %w", q.Name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (e queryEnvelope) describeError() string {
	if len(e.Error) > 0 {
		var obj struct {
			Description string `json:"description"`
			Type        string `json:"type"`
		}
		if err := json.Unmarshal(e.Error, &obj); err == nil && obj.Description != "" {
			return obj.Description
		}
		var s string
		if err := json.Unmarshal(e.Error, &s); err == nil && s != "" {
			if e.Message != "" {
				return s + ": " + e.Message
			}
			return s
		}
	}
	if e.Message != "" {
		return e.Message
	}
	return "unknown error"
}
