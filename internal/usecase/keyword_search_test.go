package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/tweetpanel/panel-api/internal/domain"
	"github.com/tweetpanel/panel-api/internal/domain/mocks"
)

func newSearchUseCase(posts *mocks.MockPostSource, demos *mocks.MockDemographicSource, threshold int, fillZeros bool) *KeywordSearchUseCase {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewKeywordSearchUseCase(posts, demos, NewAggregator(domain.NewCatalog()), logger, threshold, fillZeros)
}

func TestKeywordSearchUseCase_Search(t *testing.T) {
	query := &domain.KeywordQuery{Keyword: "election", Bucket: domain.TimeBucketDay}

	t.Run("Successful Pipeline", func(t *testing.T) {
		postSource := &mocks.MockPostSource{Posts: fixturePosts()}
		demoSource := &mocks.MockDemographicSource{Records: fixtureDemographics()}
		uc := newSearchUseCase(postSource, demoSource, 1, false)

		result, err := uc.Search(context.Background(), query)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(result.Periods) != 5 {
			t.Errorf("expected 5 periods, got %d", len(result.Periods))
		}
		if postSource.Keywords[0] != "election" {
			t.Errorf("post source got keyword %q", postSource.Keywords[0])
		}
	})

	t.Run("Demographics Requested Once Per Distinct Author", func(t *testing.T) {
		postSource := &mocks.MockPostSource{Posts: fixturePosts()}
		demoSource := &mocks.MockDemographicSource{Records: fixtureDemographics()}
		uc := newSearchUseCase(postSource, demoSource, 1, false)

		if _, err := uc.Search(context.Background(), query); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		// 13 posts, but author "9" appears 4 times.
		want := []string{"0", "1", "2", "3", "9", "4", "5", "6", "7", "8"}
		if !reflect.DeepEqual(demoSource.RequestedIDs[0], want) {
			t.Errorf("requested ids %v, want %v", demoSource.RequestedIDs[0], want)
		}
	})

	t.Run("No Matches Yields Empty Result", func(t *testing.T) {
		postSource := &mocks.MockPostSource{}
		demoSource := &mocks.MockDemographicSource{Records: fixtureDemographics()}
		uc := newSearchUseCase(postSource, demoSource, 10, false)

		result, err := uc.Search(context.Background(), query)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Periods == nil || len(result.Periods) != 0 {
			t.Errorf("expected empty period list, got %v", result.Periods)
		}
		if demoSource.FetchCalls != 0 {
			t.Error("demographic source must not be called when nothing matched")
		}
	})

	t.Run("Post Source Failure Propagates", func(t *testing.T) {
		postSource := &mocks.MockPostSource{FetchErr: errors.New("index unreachable")}
		uc := newSearchUseCase(postSource, &mocks.MockDemographicSource{}, 10, false)

		if _, err := uc.Search(context.Background(), query); err == nil {
			t.Fatal("expected an error, got nil")
		}
	})

	t.Run("Demographic Source Failure Propagates", func(t *testing.T) {
		postSource := &mocks.MockPostSource{Posts: fixturePosts()}
		demoSource := &mocks.MockDemographicSource{FetchErr: errors.New("database down")}
		uc := newSearchUseCase(postSource, demoSource, 10, false)

		if _, err := uc.Search(context.Background(), query); err == nil {
			t.Fatal("expected an error, got nil")
		}
	})

	t.Run("Output Is Censored", func(t *testing.T) {
		postSource := &mocks.MockPostSource{Posts: fixturePosts()}
		demoSource := &mocks.MockDemographicSource{Records: fixtureDemographics()}
		uc := newSearchUseCase(postSource, demoSource, 10, false)

		result, err := uc.Search(context.Background(), query)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !IsCompliant(result, 10) {
			t.Error("search output violates the privacy threshold")
		}
	})

	t.Run("Zero Fill Uses Mask Mode", func(t *testing.T) {
		postSource := &mocks.MockPostSource{Posts: fixturePosts()}
		demoSource := &mocks.MockDemographicSource{Records: fixtureDemographics()}
		uc := newSearchUseCase(postSource, demoSource, 10, true)

		result, err := uc.Search(context.Background(), query)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		catalog := domain.NewCatalog()
		for _, period := range result.Periods {
			for _, dim := range domain.Dimensions() {
				if len(period.Demographics[dim]) != len(catalog.Domain(dim)) {
					t.Fatalf("masking must keep the complete zero-filled schema for %s", dim)
				}
			}
		}
		if !IsCompliant(result, 10) {
			t.Error("masked output violates the privacy threshold")
		}
	})
}
