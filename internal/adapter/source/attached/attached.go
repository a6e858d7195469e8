// Package attached provides in-memory sources backed by data attached at
// construction time. They serve tests and local smoke runs where no search
// index or database is available.
package attached

import (
	"context"

	"github.com/tweetpanel/panel-api/internal/domain"
)

// PostSource returns its attached posts for every keyword, honoring only the
// date range. Keyword matching is assumed to have happened when the data was
// attached.
type PostSource struct {
	posts []domain.Post
}

// NewPostSource creates a post source over the given data.
func NewPostSource(posts []domain.Post) *PostSource {
	return &PostSource{posts: posts}
}

func (s *PostSource) FetchPosts(_ context.Context, _ string, dateRange domain.DateRange) ([]domain.Post, error) {
	matched := make([]domain.Post, 0, len(s.posts))
	for _, post := range s.posts {
		if dateRange.After != nil && post.CreatedAt.Before(*dateRange.After) {
			continue
		}
		// Before is an inclusive date bound, so the cutoff is the next midnight.
		if dateRange.Before != nil && !post.CreatedAt.Before(dateRange.Before.AddDate(0, 0, 1)) {
			continue
		}
		matched = append(matched, post)
	}
	return matched, nil
}

// DemographicSource serves attached demographic records filtered to the
// requested author ids.
type DemographicSource struct {
	records map[string]domain.DemographicRecord
}

// NewDemographicSource creates a demographic source over the given records.
func NewDemographicSource(records []domain.DemographicRecord) *DemographicSource {
	indexed := make(map[string]domain.DemographicRecord, len(records))
	for _, rec := range records {
		indexed[rec.AuthorID] = rec
	}
	return &DemographicSource{records: indexed}
}

func (s *DemographicSource) FetchDemographics(_ context.Context, authorIDs []string) ([]domain.DemographicRecord, error) {
	matched := make([]domain.DemographicRecord, 0, len(authorIDs))
	for _, id := range authorIDs {
		if rec, ok := s.records[id]; ok {
			matched = append(matched, rec)
		}
	}
	return matched, nil
}
