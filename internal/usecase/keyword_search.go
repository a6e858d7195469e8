package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tweetpanel/panel-api/internal/domain"
)

// KeywordSearchUseCase runs the full query pipeline: fetch matching posts,
// fetch demographics for their authors, aggregate, and censor. It holds no
// mutable state and is safe for concurrent use.
type KeywordSearchUseCase struct {
	posts        domain.PostSource
	demographics domain.DemographicSource
	aggregator   *Aggregator
	logger       *slog.Logger
	threshold    int
	fillZeros    bool
}

// NewKeywordSearchUseCase creates the keyword search pipeline. threshold is
// the minimum displayed count; fillZeros controls whether output carries
// explicit zeros for absent categories.
func NewKeywordSearchUseCase(
	posts domain.PostSource,
	demographics domain.DemographicSource,
	aggregator *Aggregator,
	logger *slog.Logger,
	threshold int,
	fillZeros bool,
) *KeywordSearchUseCase {
	return &KeywordSearchUseCase{
		posts:        posts,
		demographics: demographics,
		aggregator:   aggregator,
		logger:       logger,
		threshold:    threshold,
		fillZeros:    fillZeros,
	}
}

// Threshold returns the configured minimum displayed count.
func (uc *KeywordSearchUseCase) Threshold() int {
	return uc.threshold
}

// Search executes a validated query and returns the censored aggregation.
// Source failures propagate; the use case performs no retries. An empty
// match is a well-formed empty result, not an error.
func (uc *KeywordSearchUseCase) Search(ctx context.Context, query *domain.KeywordQuery) (domain.Result, error) {
	posts, err := uc.posts.FetchPosts(ctx, query.Keyword, query.Range)
	if err != nil {
		return domain.Result{}, fmt.Errorf("fetch posts: %w", err)
	}
	uc.logger.Debug("fetched posts", "keyword", query.Keyword, "count", len(posts))

	if len(posts) == 0 {
		return domain.Result{CrossSections: query.CrossSections, Periods: []domain.PeriodRecord{}}, nil
	}

	records, err := uc.demographics.FetchDemographics(ctx, distinctAuthorIDs(posts))
	if err != nil {
		return domain.Result{}, fmt.Errorf("fetch demographics: %w", err)
	}
	uc.logger.Debug("fetched demographics", "authors", len(records))

	result := uc.aggregator.Aggregate(posts, records, query.Bucket, query.CrossSections, uc.fillZeros)

	// Zero-filled output keeps its complete schema, so suppressed entries are
	// masked rather than removed.
	mode := CensorRemove
	if uc.fillZeros {
		mode = CensorMask
	}
	return Censor(result, uc.threshold, mode), nil
}

func distinctAuthorIDs(posts []domain.Post) []string {
	seen := make(map[string]struct{}, len(posts))
	ids := make([]string, 0, len(posts))
	for _, post := range posts {
		if _, ok := seen[post.AuthorID]; ok {
			continue
		}
		seen[post.AuthorID] = struct{}{}
		ids = append(ids, post.AuthorID)
	}
	return ids
}
