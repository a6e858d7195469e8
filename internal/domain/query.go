package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidQuery marks any query that failed validation. Callers should test
// with errors.Is; the wrapped message carries the specific reason.
var ErrInvalidQuery = errors.New("invalid query")

// apiDateLayout is the fixed ISO format accepted for date-range endpoints.
const apiDateLayout = "2006-01-02"

// RawQuery mirrors the inbound JSON request body before validation.
type RawQuery struct {
	KeywordQuery        string   `json:"keyword_query"`
	AggregateTimePeriod string   `json:"aggregate_time_period"`
	CrossSections       []string `json:"cross_sections,omitempty"`
	After               string   `json:"after,omitempty"`
	Before              string   `json:"before,omitempty"`
}

// DateRange bounds a query in time. Both ends are inclusive; a nil end means
// "no boundary".
type DateRange struct {
	After  *time.Time
	Before *time.Time
}

// KeywordQuery is a fully validated keyword search query. Instances only
// exist if every invariant holds; construct them through ParseQuery.
type KeywordQuery struct {
	Keyword       string
	Bucket        TimeBucket
	CrossSections []Dimension
	Range         DateRange
}

// ParseQuery validates a raw request against the catalog and the configured
// cross-section limit. It either returns a complete KeywordQuery or an error
// wrapping ErrInvalidQuery; no partially validated query escapes.
func ParseQuery(raw RawQuery, catalog *Catalog, maxCrossSections int) (*KeywordQuery, error) {
	if raw.KeywordQuery == "" {
		return nil, fmt.Errorf("%w: keyword_query is required", ErrInvalidQuery)
	}

	bucket, err := ParseTimeBucket(raw.AggregateTimePeriod)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	var crossSections []Dimension
	if len(raw.CrossSections) > 0 {
		if len(raw.CrossSections) > maxCrossSections {
			return nil, fmt.Errorf("%w: at most %d cross sections allowed, got %d",
				ErrInvalidQuery, maxCrossSections, len(raw.CrossSections))
		}
		seen := make(map[Dimension]struct{}, len(raw.CrossSections))
		for _, name := range raw.CrossSections {
			dim, ok := catalog.DimensionFromName(name)
			if !ok {
				return nil, fmt.Errorf("%w: %q is not a recognized demographic", ErrInvalidQuery, name)
			}
			if _, dup := seen[dim]; dup {
				return nil, fmt.Errorf("%w: duplicate cross section %q", ErrInvalidQuery, name)
			}
			seen[dim] = struct{}{}
			crossSections = append(crossSections, dim)
		}
	}

	dateRange, err := parseDateRange(raw.After, raw.Before)
	if err != nil {
		return nil, err
	}

	return &KeywordQuery{
		Keyword:       raw.KeywordQuery,
		Bucket:        bucket,
		CrossSections: crossSections,
		Range:         dateRange,
	}, nil
}

func parseDateRange(after, before string) (DateRange, error) {
	var r DateRange
	if after != "" {
		t, err := time.ParseInLocation(apiDateLayout, after, time.UTC)
		if err != nil {
			return DateRange{}, fmt.Errorf("%w: invalid date %q", ErrInvalidQuery, after)
		}
		r.After = &t
	}
	if before != "" {
		t, err := time.ParseInLocation(apiDateLayout, before, time.UTC)
		if err != nil {
			return DateRange{}, fmt.Errorf("%w: invalid date %q", ErrInvalidQuery, before)
		}
		r.Before = &t
	}
	if r.After != nil && r.Before != nil && r.After.After(*r.Before) {
		return DateRange{}, fmt.Errorf("%w: date range is inverted", ErrInvalidQuery)
	}
	return r, nil
}
