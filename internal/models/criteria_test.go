package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAmountRange_Contains(t *testing.T) {
	band := AmountRangeFor("1m_3m")
	assert.True(t, band.Contains(1_000_000))
	assert.True(t, band.Contains(2_500_000))
	assert.True(t, band.Contains(3_000_000))
	assert.False(t, band.Contains(999_999))
	assert.False(t, band.Contains(3_000_001))

	open := AmountRangeFor("over_10m")
	assert.True(t, open.Contains(50_000_000))
	assert.False(t, open.Contains(9_999_999))

	any := AmountRangeFor("any")
	assert.False(t, any.Bounded())
}

func TestDeadlineHorizon(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, now.AddDate(0, 1, 0), DeadlineHorizon("asap", now))
	assert.Equal(t, now.AddDate(0, 3, 0), DeadlineHorizon("3months", now))
	assert.Equal(t, now.AddDate(0, 6, 0), DeadlineHorizon("6months", now))
	assert.Equal(t, now.AddDate(1, 0, 0), DeadlineHorizon("anytime", now))
	assert.Equal(t, now.AddDate(1, 0, 0), DeadlineHorizon("", now))
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0.0, ClampScore(-0.3))
	assert.Equal(t, 1.0, ClampScore(1.7))
	assert.Equal(t, 0.42, ClampScore(0.42))
	assert.Equal(t, 0.5, ClampScore(math.NaN()))
}

func TestRegionSubstrings(t *testing.T) {
	tokyo := RegionSubstrings("tokyo")
	assert.Contains(t, tokyo, "東京都")
	assert.Contains(t, tokyo, "渋谷区")
	assert.Len(t, tokyo, 24) // prefecture name + 23 wards

	osaka := RegionSubstrings("osaka")
	assert.Equal(t, []string{"大阪府"}, osaka)

	assert.Nil(t, RegionSubstrings("any"))
	assert.Nil(t, RegionSubstrings(""))
}

func TestGrant_CategoryList(t *testing.T) {
	g := Grant{Category: "IT導入,DX, 業務効率化"}
	assert.Equal(t, []string{"IT導入", "DX", "業務効率化"}, g.CategoryList())

	g = Grant{Category: `["創業","起業"]`}
	assert.Equal(t, []string{"創業", "起業"}, g.CategoryList())

	g = Grant{Category: ""}
	assert.Nil(t, g.CategoryList())
}

func TestGrant_Nationwide(t *testing.T) {
	pref := "東京都"
	empty := ""

	assert.True(t, (&Grant{}).Nationwide())
	assert.True(t, (&Grant{Prefecture: &empty}).Nationwide())
	assert.False(t, (&Grant{Prefecture: &pref}).Nationwide())
}
