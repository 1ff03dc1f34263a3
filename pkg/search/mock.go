package search

import (
	"context"
	"sync"
)

// Mock is a mock implementation of Searcher for testing.
type Mock struct {
	mu sync.Mutex

	// Answer is returned for every query unless SearchFunc is set.
	Answer string

	// Configurable behavior
	SearchFunc func(ctx context.Context, query string) string

	// Captured calls for assertions
	Queries []string
}

// NewMock creates a new Mock searcher.
func NewMock(answer string) *Mock {
	return &Mock{Answer: answer}
}

// Search implements Searcher.
func (m *Mock) Search(ctx context.Context, query string) string {
	m.mu.Lock()
	m.Queries = append(m.Queries, query)
	m.mu.Unlock()

	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query)
	}
	return m.Answer
}
