package domain

import (
	"fmt"
	"strconv"
	"time"
)

// Dimension identifies one demographic axis. The value doubles as the wire
// key used in serialized period records.
type Dimension string

const (
	DimensionState  Dimension = "tsmart_state"
	DimensionAge    Dimension = "vb_age_decade"
	DimensionGender Dimension = "voterbase_gender"
	DimensionRace   Dimension = "voterbase_race"
)

// Dimensions returns all demographic dimensions in their canonical order.
func Dimensions() []Dimension {
	return []Dimension{DimensionState, DimensionAge, DimensionGender, DimensionRace}
}

// AgeUnknown is the bracket assigned to authors with no usable age value.
const AgeUnknown = "Unknown"

var stateValues = []string{
	"CA", "TX", "NY", "FL", "OH", "IL", "PA", "MI", "GA", "NC",
	"WA", "MA", "MN", "NJ", "IN", "VA", "CO", "WI", "TN", "AZ",
	"MO", "OR", "MD", "IA", "KY", "LA", "AL", "SC", "OK", "KS",
	"CT", "NV", "NE", "AR", "UT", "MS", "DC", "WV", "ME", "NM",
	"NH", "RI", "ID", "HI", "SD", "MT", "ND", "DE", "AK", "VT",
	"WY",
}

var ageValues = []string{
	"under 30", "30 - 40", "40 - 50", "50 - 60", "60 - 70", "70+", AgeUnknown,
}

var genderValues = []string{"Female", "Male", "Unknown"}

var raceValues = []string{
	"Caucasian", "African-American", "Hispanic", "Uncoded", "Asian", "Other",
	"Native American",
}

// Catalog is the immutable lookup table from dimension to its closed, ordered
// domain of category values. Construct it once at startup and share it by
// reference; it is safe for concurrent use.
type Catalog struct {
	domains map[Dimension][]string
	aliases map[string]Dimension
}

// NewCatalog builds the catalog of all demographic dimensions and the
// human-readable names that resolve to them.
func NewCatalog() *Catalog {
	c := &Catalog{
		domains: map[Dimension][]string{
			DimensionState:  stateValues,
			DimensionAge:    ageValues,
			DimensionGender: genderValues,
			DimensionRace:   raceValues,
		},
		aliases: map[string]Dimension{
			"state":  DimensionState,
			"age":    DimensionAge,
			"gender": DimensionGender,
			"race":   DimensionRace,
		},
	}
	// The wire keys are valid names too.
	for _, dim := range Dimensions() {
		c.aliases[string(dim)] = dim
	}
	return c
}

// Domain returns the ordered category values of a dimension. Callers must not
// mutate the returned slice.
func (c *Catalog) Domain(dim Dimension) []string {
	return c.domains[dim]
}

// DimensionFromName resolves a human-readable name or wire key to a Dimension.
func (c *Catalog) DimensionFromName(name string) (Dimension, bool) {
	dim, ok := c.aliases[name]
	return dim, ok
}

// BucketAge maps a raw age to its named bracket. A nil or negative age maps
// to the Unknown bracket.
func BucketAge(age *int) string {
	switch {
	case age == nil || *age < 0:
		return AgeUnknown
	case *age < 30:
		return "under 30"
	case *age >= 70:
		return "70+"
	default:
		decade := 10 * (*age / 10)
		return strconv.Itoa(decade) + " - " + strconv.Itoa(decade+10)
	}
}

// TimeBucket is a policy for collapsing a timestamp to the start of its
// containing period.
type TimeBucket string

const (
	TimeBucketDay   TimeBucket = "day"
	TimeBucketWeek  TimeBucket = "week"
	TimeBucketMonth TimeBucket = "month"
)

// ParseTimeBucket resolves a raw aggregation period name.
func ParseTimeBucket(s string) (TimeBucket, error) {
	switch TimeBucket(s) {
	case TimeBucketDay, TimeBucketWeek, TimeBucketMonth:
		return TimeBucket(s), nil
	}
	return "", fmt.Errorf("unrecognized time bucket %q", s)
}

// Start returns the start instant of the period containing t. Days start at
// midnight UTC, weeks on Monday, months on the 1st.
func (b TimeBucket) Start(t time.Time) time.Time {
	t = t.UTC()
	switch b {
	case TimeBucketWeek:
		offset := (int(t.Weekday()) + 6) % 7
		t = t.AddDate(0, 0, -offset)
	case TimeBucketMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
