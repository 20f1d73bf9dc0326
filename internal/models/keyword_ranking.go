package models

import (
	"time"

	"github.com/google/uuid"
)

// KeywordRanking is one observation of the business's position for a keyword
// in a service area. Rows are never updated.
type KeywordRanking struct {
	ID          uuid.UUID `json:"id"`
	LocationID  uuid.UUID `json:"locationId"`
	Keyword     string    `json:"keyword"`
	Position    *int      `json:"position"` // nil when not ranked
	Clicks      int       `json:"clicks"`
	Impressions int       `json:"impressions"`
	CTR         float64   `json:"ctr"`
	CheckedAt   time.Time `json:"checkedAt"`
}

// CurrentKeywordRanking aggregates KeywordRanking rows over a recency window.
type CurrentKeywordRanking struct {
	Area            string    `json:"area"`
	Keyword         string    `json:"keyword"`
	AveragePosition *float64  `json:"averagePosition"`
	Clicks          int64     `json:"clicks"`
	Impressions     int64     `json:"impressions"`
	CTR             float64   `json:"ctr"`
	Checks          int64     `json:"checks"`
	LastCheckedAt   time.Time `json:"lastCheckedAt"`
}
