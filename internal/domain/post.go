package domain

import "time"

// Post is one matched post from the search backend. It only lives for the
// duration of a single query.
type Post struct {
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

// DemographicRecord holds the panel attributes of one author. Age is the raw
// numeric age; it is bucketed by BucketAge before aggregation. A nil Age means
// the panel has no age on file.
type DemographicRecord struct {
	AuthorID string `json:"author_id"`
	State    string `json:"state"`
	Age      *int   `json:"age"`
	Gender   string `json:"gender"`
	Race     string `json:"race"`
}

// Categories returns the record's category value per dimension, with the raw
// age collapsed to its bracket.
func (r DemographicRecord) Categories() map[Dimension]string {
	return map[Dimension]string{
		DimensionState:  r.State,
		DimensionAge:    BucketAge(r.Age),
		DimensionGender: r.Gender,
		DimensionRace:   r.Race,
	}
}
