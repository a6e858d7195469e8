package domain

import (
	"encoding/json"
	"time"
)

// CategoryCounts maps a category value to its count of distinct authors.
// A nil count is a masked entry: the category is reportable but its count
// was suppressed by the privacy censor.
type CategoryCounts map[string]*int

// GroupRecord is one cross-sectional cell: a category value per requested
// dimension plus the count of distinct authors falling in that combination.
type GroupRecord struct {
	Categories map[Dimension]string
	Count      *int
}

// MarshalJSON flattens the group's category values alongside its count, e.g.
// {"voterbase_race": "Asian", "voterbase_gender": "Female", "count": 12}.
func (g GroupRecord) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(g.Categories)+1)
	for dim, value := range g.Categories {
		m[string(dim)] = value
	}
	m["count"] = g.Count
	return json.Marshal(m)
}

// PeriodRecord is the aggregation output for one time slice. Groups is nil
// when no cross sections were requested and non-nil (possibly empty)
// otherwise.
type PeriodRecord struct {
	Start        time.Time
	NTweets      int
	NTweeters    int
	Demographics map[Dimension]CategoryCounts
	Groups       []GroupRecord
}

// MarshalJSON emits the flat wire shape consumed by dashboard clients: the
// dimension maps keyed by their wire names next to ts/n_tweets/n_tweeters.
func (p PeriodRecord) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(p.Demographics)+4)
	m["ts"] = p.Start.UTC().Format(time.RFC3339)
	m["n_tweets"] = p.NTweets
	m["n_tweeters"] = p.NTweeters
	for dim, counts := range p.Demographics {
		m[string(dim)] = counts
	}
	if p.Groups != nil {
		m["groups"] = p.Groups
	}
	return json.Marshal(m)
}

// Result is a complete aggregation: one period record per distinct time
// slice, ordered by slice start ascending. CrossSections echoes the
// dimensions the aggregation grouped by, in request order.
type Result struct {
	CrossSections []Dimension
	Periods       []PeriodRecord
}
