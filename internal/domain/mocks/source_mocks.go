package mocks

import (
	"context"
	"sync"

	"github.com/tweetpanel/panel-api/internal/domain"
)

// MockPostSource is a mock implementation of domain.PostSource for testing.
type MockPostSource struct {
	mu         sync.Mutex
	Posts      []domain.Post
	FetchErr   error
	Keywords   []string
	DateRanges []domain.DateRange
	FetchCalls int
}

func (m *MockPostSource) FetchPosts(ctx context.Context, keyword string, dateRange domain.DateRange) ([]domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchCalls++
	m.Keywords = append(m.Keywords, keyword)
	m.DateRanges = append(m.DateRanges, dateRange)
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	return m.Posts, nil
}

// MockDemographicSource is a mock implementation of domain.DemographicSource
// for testing.
type MockDemographicSource struct {
	mu           sync.Mutex
	Records      []domain.DemographicRecord
	FetchErr     error
	RequestedIDs [][]string
	FetchCalls   int
}

func (m *MockDemographicSource) FetchDemographics(ctx context.Context, authorIDs []string) ([]domain.DemographicRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchCalls++
	m.RequestedIDs = append(m.RequestedIDs, authorIDs)
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	return m.Records, nil
}
