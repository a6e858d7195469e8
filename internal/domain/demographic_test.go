package domain

import (
	"testing"
	"time"
)

func TestBucketAge(t *testing.T) {
	intp := func(n int) *int { return &n }

	tests := []struct {
		name string
		age  *int
		want string
	}{
		{"Missing", nil, "Unknown"},
		{"Negative", intp(-1), "Unknown"},
		{"Under 30", intp(29), "under 30"},
		{"Exactly 30", intp(30), "30 - 40"},
		{"Mid Decade", intp(45), "40 - 50"},
		{"Decade Boundary", intp(60), "60 - 70"},
		{"Exactly 70", intp(70), "70+"},
		{"Very Old", intp(104), "70+"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BucketAge(tt.age); got != tt.want {
				t.Errorf("BucketAge(%v) = %q, want %q", tt.age, got, tt.want)
			}
		})
	}
}

func TestBucketAgeStaysInDomain(t *testing.T) {
	catalog := NewCatalog()
	domainValues := make(map[string]struct{})
	for _, v := range catalog.Domain(DimensionAge) {
		domainValues[v] = struct{}{}
	}

	for age := 0; age <= 120; age++ {
		a := age
		if _, ok := domainValues[BucketAge(&a)]; !ok {
			t.Fatalf("age %d buckets to %q, which is outside the declared domain", age, BucketAge(&a))
		}
	}
	if _, ok := domainValues[BucketAge(nil)]; !ok {
		t.Fatal("missing age buckets outside the declared domain")
	}
}

func TestTimeBucketStart(t *testing.T) {
	ts := func(y int, m time.Month, d, hour int) time.Time {
		return time.Date(y, m, d, hour, 30, 0, 0, time.UTC)
	}
	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name   string
		bucket TimeBucket
		in     time.Time
		want   time.Time
	}{
		{"Day", TimeBucketDay, ts(2023, 2, 17, 14), date(2023, 2, 17)},
		{"Week Friday Rounds To Monday", TimeBucketWeek, ts(2023, 2, 17, 14), date(2023, 2, 13)},
		{"Week Monday Is Its Own Start", TimeBucketWeek, ts(2023, 2, 13, 0), date(2023, 2, 13)},
		{"Week Sunday Belongs To Prior Monday", TimeBucketWeek, ts(2023, 2, 19, 23), date(2023, 2, 13)},
		{"Month", TimeBucketMonth, ts(2023, 2, 17, 14), date(2023, 2, 1)},
		{"Month Across Year", TimeBucketMonth, ts(2022, 12, 31, 23), date(2022, 12, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.bucket.Start(tt.in); !got.Equal(tt.want) {
				t.Errorf("%s.Start(%v) = %v, want %v", tt.bucket, tt.in, got, tt.want)
			}
		})
	}
}

func TestParseTimeBucket(t *testing.T) {
	for _, valid := range []string{"day", "week", "month"} {
		if _, err := ParseTimeBucket(valid); err != nil {
			t.Errorf("ParseTimeBucket(%q) returned error: %v", valid, err)
		}
	}
	for _, invalid := range []string{"", "hour", "Week", "yearly"} {
		if _, err := ParseTimeBucket(invalid); err == nil {
			t.Errorf("ParseTimeBucket(%q) should fail", invalid)
		}
	}
}

func TestCatalogDimensionFromName(t *testing.T) {
	catalog := NewCatalog()

	tests := []struct {
		name string
		want Dimension
		ok   bool
	}{
		{"race", DimensionRace, true},
		{"gender", DimensionGender, true},
		{"age", DimensionAge, true},
		{"state", DimensionState, true},
		{"voterbase_race", DimensionRace, true},
		{"tsmart_state", DimensionState, true},
		{"party", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := catalog.DimensionFromName(tt.name)
		if ok != tt.ok || got != tt.want {
			t.Errorf("DimensionFromName(%q) = (%q, %v), want (%q, %v)", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCatalogDomains(t *testing.T) {
	catalog := NewCatalog()

	if got := len(catalog.Domain(DimensionState)); got != 51 {
		t.Errorf("expected 51 states (incl. DC), got %d", got)
	}
	if got := catalog.Domain(DimensionGender); len(got) != 3 {
		t.Errorf("unexpected gender domain %v", got)
	}
	if got := catalog.Domain(DimensionRace)[0]; got != "Caucasian" {
		t.Errorf("race domain order changed, got %q first", got)
	}
}
