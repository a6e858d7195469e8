package domain

import "context"

// PostSource supplies posts matching a keyword within an optional date range.
// Implementations are selected once at construction time (search index,
// attached test data) and must be safe for concurrent use.
type PostSource interface {
	FetchPosts(ctx context.Context, keyword string, dateRange DateRange) ([]Post, error)
}

// DemographicSource supplies panel demographic records for a set of author
// ids. Authors the panel does not know are simply absent from the returned
// slice; that is not an error.
type DemographicSource interface {
	FetchDemographics(ctx context.Context, authorIDs []string) ([]DemographicRecord, error)
}
