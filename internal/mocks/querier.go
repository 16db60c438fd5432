package mocks

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/khabar-news/khabar/internal/cms"
)

// MockQuerier answers CMS queries by query name and counts the calls
type MockQuerier struct {
	mu        sync.Mutex
	Responses map[string]any
	Errors    map[string]error
	QueryFunc func(ctx context.Context, q cms.Query, params cms.Params) (json.RawMessage, error)
	Calls     map[string]int
	Params    map[string][]cms.Params
}

// Verify interface compliance
var _ cms.Querier = (*MockQuerier)(nil)

func NewMockQuerier() *MockQuerier {
	return &MockQuerier{
		Responses: make(map[string]any),
		Errors:    make(map[string]error),
		Calls:     make(map[string]int),
		Params:    make(map[string][]cms.Params),
	}
}

// Respond sets the value returned, JSON encoded, for the named query
func (m *MockQuerier) Respond(name string, value any) *MockQuerier {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[name] = value
	return m
}

// Fail makes the named query return err
func (m *MockQuerier) Fail(name string, err error) *MockQuerier {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[name] = err
	return m
}

func (m *MockQuerier) Query(ctx context.Context, q cms.Query, params cms.Params) (json.RawMessage, error) {
	m.mu.Lock()
	m.Calls[q.Name]++
	m.Params[q.Name] = append(m.Params[q.Name], params)
	fn := m.QueryFunc
	err := m.Errors[q.Name]
	resp, ok := m.Responses[q.Name]
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, q, params)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return json.RawMessage("null"), nil
	}
	if raw, isRaw := resp.(json.RawMessage); isRaw {
		return raw, nil
	}
	return json.Marshal(resp)
}

// CallCount returns how often the named query ran
func (m *MockQuerier) CallCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[name]
}

// TotalCalls returns the number of queries of any name
func (m *MockQuerier) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.Calls {
		total += n
	}
	return total
}

// LastParams returns the params of the latest call of the named query
func (m *MockQuerier) LastParams(name string) cms.Params {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := m.Params[name]
	if len(calls) == 0 {
		return nil
	}
	return calls[len(calls)-1]
}
