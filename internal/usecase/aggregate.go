package usecase

import (
	"sort"
	"strings"
	"time"

	"github.com/tweetpanel/panel-api/internal/domain"
)

// Aggregator turns a raw join of posts and demographic records into
// time-sliced demographic distributions. It holds no per-request state and is
// safe for concurrent use.
type Aggregator struct {
	catalog *domain.Catalog
}

// NewAggregator creates an Aggregator backed by the given catalog.
func NewAggregator(catalog *domain.Catalog) *Aggregator {
	return &Aggregator{catalog: catalog}
}

// joinedRow is one post inner-joined to its author's demographics, with the
// age already bucketed and the time slice already derived.
type joinedRow struct {
	sliceStart time.Time
	authorID   string
	categories map[domain.Dimension]string
}

// Aggregate inner-joins posts to demographics on author id, partitions the
// joined rows by time slice, and counts distinct authors per demographic
// category within each slice. Posts whose author has no demographic record
// are dropped; that is policy, not an error. When crossSections is non-empty
// each slice also carries joint counts over those dimensions. With zeroFill,
// every absent category (and every absent cross-section combination) gets an
// explicit zero entry.
func (a *Aggregator) Aggregate(
	posts []domain.Post,
	demographics []domain.DemographicRecord,
	bucket domain.TimeBucket,
	crossSections []domain.Dimension,
	zeroFill bool,
) domain.Result {
	byAuthor := make(map[string]map[domain.Dimension]string, len(demographics))
	for _, rec := range demographics {
		byAuthor[rec.AuthorID] = rec.Categories()
	}

	slices := make(map[time.Time][]joinedRow)
	for _, post := range posts {
		categories, ok := byAuthor[post.AuthorID]
		if !ok {
			continue
		}
		start := bucket.Start(post.CreatedAt)
		slices[start] = append(slices[start], joinedRow{
			sliceStart: start,
			authorID:   post.AuthorID,
			categories: categories,
		})
	}

	starts := make([]time.Time, 0, len(slices))
	for start := range slices {
		starts = append(starts, start)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	result := domain.Result{
		CrossSections: crossSections,
		Periods:       make([]domain.PeriodRecord, 0, len(starts)),
	}
	for _, start := range starts {
		period := a.aggregateSlice(start, slices[start], crossSections)
		if zeroFill {
			a.fillZeros(&period, crossSections)
		}
		result.Periods = append(result.Periods, period)
	}
	return result
}

func (a *Aggregator) aggregateSlice(
	start time.Time,
	rows []joinedRow,
	crossSections []domain.Dimension,
) domain.PeriodRecord {
	// De-duplicate authors, keeping the first occurrence. Demographics are
	// constant per author, so which duplicate survives does not matter.
	distinct := rows[:0:0]
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.authorID]; ok {
			continue
		}
		seen[row.authorID] = struct{}{}
		distinct = append(distinct, row)
	}

	period := domain.PeriodRecord{
		Start:        start,
		NTweets:      len(rows),
		NTweeters:    len(distinct),
		Demographics: make(map[domain.Dimension]domain.CategoryCounts, len(domain.Dimensions())),
	}

	for _, dim := range domain.Dimensions() {
		counts := make(domain.CategoryCounts)
		for _, row := range distinct {
			value := row.categories[dim]
			if counts[value] == nil {
				counts[value] = new(int)
			}
			*counts[value]++
		}
		period.Demographics[dim] = counts
	}

	if len(crossSections) > 0 {
		period.Groups = crossSectionGroups(distinct, crossSections)
	}
	return period
}

// crossSectionGroups counts distinct authors per combination of the requested
// dimensions' values, emitting groups in first-occurrence order.
func crossSectionGroups(distinct []joinedRow, crossSections []domain.Dimension) []domain.GroupRecord {
	groups := make([]domain.GroupRecord, 0)
	index := make(map[string]int)
	for _, row := range distinct {
		values := make([]string, len(crossSections))
		for i, dim := range crossSections {
			values[i] = row.categories[dim]
		}
		key := strings.Join(values, "\x1f")
		i, ok := index[key]
		if !ok {
			categories := make(map[domain.Dimension]string, len(crossSections))
			for j, dim := range crossSections {
				categories[dim] = values[j]
			}
			i = len(groups)
			index[key] = i
			groups = append(groups, domain.GroupRecord{Categories: categories, Count: new(int)})
		}
		*groups[i].Count++
	}
	return groups
}

// fillZeros reindexes the period onto the full declared domains: every
// category of every dimension appears, and the group list becomes the full
// Cartesian product of the requested dimensions' domains. Counts for
// categories outside a declared domain are discarded by the reindex.
func (a *Aggregator) fillZeros(period *domain.PeriodRecord, crossSections []domain.Dimension) {
	for _, dim := range domain.Dimensions() {
		counts := period.Demographics[dim]
		filled := make(domain.CategoryCounts, len(a.catalog.Domain(dim)))
		for _, value := range a.catalog.Domain(dim) {
			if count, ok := counts[value]; ok {
				filled[value] = count
			} else {
				filled[value] = new(int)
			}
		}
		period.Demographics[dim] = filled
	}

	if len(crossSections) == 0 {
		return
	}
	existing := make(map[string]*int, len(period.Groups))
	for _, group := range period.Groups {
		values := make([]string, len(crossSections))
		for i, dim := range crossSections {
			values[i] = group.Categories[dim]
		}
		existing[strings.Join(values, "\x1f")] = group.Count
	}

	filled := make([]domain.GroupRecord, 0)
	forEachCombination(a.catalog, crossSections, func(values []string) {
		categories := make(map[domain.Dimension]string, len(crossSections))
		for i, dim := range crossSections {
			categories[dim] = values[i]
		}
		count, ok := existing[strings.Join(values, "\x1f")]
		if !ok {
			count = new(int)
		}
		filled = append(filled, domain.GroupRecord{Categories: categories, Count: count})
	})
	period.Groups = filled
}

// forEachCombination walks the Cartesian product of the dimensions' domains
// in declaration order.
func forEachCombination(catalog *domain.Catalog, dims []domain.Dimension, fn func(values []string)) {
	values := make([]string, len(dims))
	var walk func(depth int)
	walk = func(depth int) {
		if depth == len(dims) {
			fn(values)
			return
		}
		for _, value := range catalog.Domain(dims[depth]) {
			values[depth] = value
			walk(depth + 1)
		}
	}
	walk(0)
}
