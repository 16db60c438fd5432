package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Query is a named, parameterized GROQ query. Values are never interpolated into
// GROQ; they travel as Params.
type Query struct {
	Name string
	GROQ string
	// Tags group cached results for invalidation, usually document types
	Tags []string
	// Revalidate is how long a result may be served from cache; zero disables caching
	Revalidate time.Duration
}

// Params binds $name placeholders
type Params map[string]any

// Querier executes a Query and returns the raw result
type Querier interface {
	Query(ctx context.Context, q Query, params Params) (json.RawMessage, error)
}

// Fetch runs q and decodes the result into T
func Fetch[T any](ctx context.Context, qr Querier, q Query, params Params) (T, error) {
	var out T
	raw, err := qr.Query(ctx, q, params)
	if err != nil {
		return out, err
	}
	if isNull(raw) {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("cms query %s: decoding result: %w", q.Name, err)
	}
	return out, nil
}

// FetchOne is Fetch for single-document queries; a null result is ErrNotFound
func FetchOne[T any](ctx context.Context, qr Querier, q Query, params Params) (*T, error) {
	raw, err := qr.Query(ctx, q, params)
	if err != nil {
		return nil, err
	}
	if isNull(raw) {
		return nil, ErrNotFound
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("cms query %s: decoding result: %w", q.Name, err)
	}
	return &out, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
