package usecase

import "github.com/tweetpanel/panel-api/internal/domain"

// CensorMode selects how counts below the privacy threshold are suppressed.
type CensorMode string

const (
	// CensorRemove drops offending entries entirely.
	CensorRemove CensorMode = "remove"
	// CensorMask keeps offending entries but nulls their counts. Used for
	// zero-filled output so the schema stays complete.
	CensorMask CensorMode = "mask"
)

// Censor returns a copy of result in which every count below threshold is
// suppressed according to mode. The input is never mutated. Entries whose
// count is already null are left alone, so censoring an already-censored
// result is a no-op.
func Censor(result domain.Result, threshold int, mode CensorMode) domain.Result {
	censored := domain.Result{
		CrossSections: result.CrossSections,
		Periods:       make([]domain.PeriodRecord, len(result.Periods)),
	}
	for i, period := range result.Periods {
		censored.Periods[i] = censorPeriod(period, threshold, mode)
	}
	return censored
}

func censorPeriod(period domain.PeriodRecord, threshold int, mode CensorMode) domain.PeriodRecord {
	out := domain.PeriodRecord{
		Start:        period.Start,
		NTweets:      period.NTweets,
		NTweeters:    period.NTweeters,
		Demographics: make(map[domain.Dimension]domain.CategoryCounts, len(period.Demographics)),
	}

	for dim, counts := range period.Demographics {
		censored := make(domain.CategoryCounts, len(counts))
		for value, count := range counts {
			switch {
			case count == nil:
				censored[value] = nil
			case *count < threshold:
				if mode == CensorMask {
					censored[value] = nil
				}
			default:
				kept := *count
				censored[value] = &kept
			}
		}
		out.Demographics[dim] = censored
	}

	if period.Groups != nil {
		out.Groups = make([]domain.GroupRecord, 0, len(period.Groups))
		for _, group := range period.Groups {
			censored, keep := censorGroup(group, threshold, mode)
			if keep {
				out.Groups = append(out.Groups, censored)
			}
		}
	}
	return out
}

func censorGroup(group domain.GroupRecord, threshold int, mode CensorMode) (domain.GroupRecord, bool) {
	categories := make(map[domain.Dimension]string, len(group.Categories))
	for dim, value := range group.Categories {
		categories[dim] = value
	}
	out := domain.GroupRecord{Categories: categories}

	switch {
	case group.Count == nil:
		return out, true
	case *group.Count < threshold:
		if mode == CensorRemove {
			return domain.GroupRecord{}, false
		}
		return out, true
	default:
		kept := *group.Count
		out.Count = &kept
		return out, true
	}
}

// IsCompliant reports whether no entry in any period carries a non-null count
// below threshold. It is the verification oracle for Censor:
// IsCompliant(Censor(r, t, mode), t) holds for any r, t, and mode.
func IsCompliant(result domain.Result, threshold int) bool {
	for _, period := range result.Periods {
		for _, counts := range period.Demographics {
			for _, count := range counts {
				if count != nil && *count < threshold {
					return false
				}
			}
		}
		for _, group := range period.Groups {
			if group.Count != nil && *group.Count < threshold {
				return false
			}
		}
	}
	return true
}

// SampleTooSmall reports whether a non-empty result has no period with
// enough distinct authors to clear the privacy threshold. Such results read
// as fully suppressed and are reported with an explanatory message instead
// of data.
func SampleTooSmall(result domain.Result, threshold int) bool {
	if len(result.Periods) == 0 {
		return false
	}
	for _, period := range result.Periods {
		if period.NTweeters >= threshold {
			return false
		}
	}
	return true
}
