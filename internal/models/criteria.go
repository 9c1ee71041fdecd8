package models

import (
	"math"
	"time"
)

// AmountRange is a preference band in yen. Max == 0 means open-ended.
type AmountRange struct {
	Min int64
	Max int64
}

// Contains reports whether amount falls inside the band.
func (r AmountRange) Contains(amount int64) bool {
	if amount < r.Min {
		return false
	}
	return r.Max == 0 || amount <= r.Max
}

func (r AmountRange) Bounded() bool { return r.Min > 0 || r.Max > 0 }

// amountRanges maps the amount answer codes from the diagnosis flow.
var amountRanges = map[string]AmountRange{
	"under_500k": {Min: 0, Max: 500_000},
	"500k_1m":    {Min: 500_000, Max: 1_000_000},
	"1m_3m":      {Min: 1_000_000, Max: 3_000_000},
	"3m_10m":     {Min: 3_000_000, Max: 10_000_000},
	"over_10m":   {Min: 10_000_000, Max: 0},
}

// AmountRangeFor resolves an amount answer code. The zero range (returned for
// "any" and unknown codes) means no amount preference.
func AmountRangeFor(code string) AmountRange {
	return amountRanges[code]
}

// DeadlineHorizon maps a deadline answer code to the horizon the user has in
// mind. The horizon is advisory context for ranking; the filter floor is
// always "today" regardless of preference.
func DeadlineHorizon(code string, now time.Time) time.Time {
	switch code {
	case "asap":
		return now.AddDate(0, 1, 0)
	case "3months":
		return now.AddDate(0, 3, 0)
	case "6months":
		return now.AddDate(0, 6, 0)
	default: // "1year", "anytime", unspecified
		return now.AddDate(1, 0, 0)
	}
}

// SearchCriteria is the structured slice of a UserProfile the catalog query
// needs. Built once per matching invocation.
type SearchCriteria struct {
	UserType         UserType
	RegionCode       string // "" or "any" = no region predicate
	RegionName       string
	RegionSubstrings []string // display name + metropolitan sub-districts
	Municipality     string
	PurposeCodes     []string
	CategoryKeywords []string
	Amount           AmountRange
	DeadlineCode     string
	Now              time.Time
}

// HasRegion reports whether the region predicate applies.
func (c *SearchCriteria) HasRegion() bool {
	return c.RegionCode != "" && c.RegionCode != "any" && len(c.RegionSubstrings) > 0
}

// Recommendation is one entry of a final match result.
type Recommendation struct {
	Grant         Grant   `json:"grant"`
	MatchingScore float64 `json:"matching_score"` // always within [0,1]
	Reasoning     string  `json:"reasoning"`
	Ranking       int     `json:"ranking"` // contiguous, 1 = best
}

// ClampScore forces a raw score into [0,1]; NaN collapses to the neutral 0.5.
func ClampScore(score float64) float64 {
	if math.IsNaN(score) {
		return 0.5
	}
	return math.Min(1, math.Max(0, score))
}

// RankedCandidate is one validated entry of the reasoner's ranking response.
type RankedCandidate struct {
	GrantID   int64
	Rank      int
	Score     float64
	Reasoning string
}
