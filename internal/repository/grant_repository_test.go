package repository

import (
	"strings"
	"testing"
	"time"

	"grant-navi/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokyoCriteria() *models.SearchCriteria {
	return &models.SearchCriteria{
		UserType:         models.UserTypeCorporate,
		RegionCode:       "tokyo",
		RegionName:       "東京都",
		RegionSubstrings: models.RegionSubstrings("tokyo"),
		Municipality:     "渋谷区",
		CategoryKeywords: []string{"IT導入", "DX"},
		Amount:           models.AmountRangeFor("1m_3m"),
		Now:              time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC),
	}
}

func TestBuildCandidateQuery_Shape(t *testing.T) {
	sql, args, err := buildCandidateQuery(tokyoCriteria(), 100)
	require.NoError(t, err)

	assert.Contains(t, sql, "AS location_score")
	assert.Contains(t, sql, "AS other_score")
	assert.Contains(t, sql, "FROM grants")
	assert.Contains(t, sql, "status = $")
	assert.Contains(t, sql, "deadline IS NULL OR deadline >= $")
	assert.Contains(t, sql, "ORDER BY location_score DESC, other_score DESC, created_at DESC")
	assert.Contains(t, sql, "LIMIT 100")

	// The score tiers are part of the SQL text, not parameters.
	assert.Contains(t, sql, "THEN 1000")
	assert.Contains(t, sql, "THEN 200")
	assert.NotEmpty(t, args)
}

func TestBuildCandidateQuery_UserStringsAreBound(t *testing.T) {
	sql, args, err := buildCandidateQuery(tokyoCriteria(), 100)
	require.NoError(t, err)

	// Profile-derived strings must never be spliced into the SQL text.
	for _, needle := range []string{"渋谷区", "東京都", "IT導入", "DX"} {
		assert.NotContains(t, sql, needle)
	}

	joined := make([]string, 0, len(args))
	for _, a := range args {
		if s, ok := a.(string); ok {
			joined = append(joined, s)
		}
	}
	all := strings.Join(joined, "|")
	assert.Contains(t, all, "%渋谷区%")
	assert.Contains(t, all, "%東京都%")
	assert.Contains(t, all, "%IT導入%")
}

func TestBuildCandidateQuery_RegionPredicate(t *testing.T) {
	t.Run("present with region", func(t *testing.T) {
		sql, _, err := buildCandidateQuery(tokyoCriteria(), 100)
		require.NoError(t, err)
		assert.Contains(t, sql, "COALESCE(prefecture, '') = ''")
		assert.Contains(t, sql, "COALESCE(municipality, '') LIKE $")
	})

	t.Run("absent without region", func(t *testing.T) {
		c := &models.SearchCriteria{
			UserType: models.UserTypeCorporate,
			Now:      time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		}
		sql, _, err := buildCandidateQuery(c, 100)
		require.NoError(t, err)
		// Only the location-score CASE floor mentions the empty prefecture,
		// the WHERE clause carries no region condition.
		where := sql[strings.Index(sql, "WHERE"):]
		assert.NotContains(t, where, "prefecture, '') LIKE")
		assert.NotContains(t, sql, "THEN 200")
		assert.NotContains(t, sql, "THEN 1000")
	})
}

func TestBuildCandidateQuery_DeadlineFloorIsToday(t *testing.T) {
	c := tokyoCriteria()
	c.DeadlineCode = "asap"

	_, args, err := buildCandidateQuery(c, 100)
	require.NoError(t, err)

	// The urgency answer steers ranking only; the filter floor stays at today.
	today := c.Now.Truncate(24 * time.Hour)
	found := false
	for _, a := range args {
		if ts, ok := a.(time.Time); ok {
			assert.Equal(t, today, ts)
			found = true
		}
	}
	assert.True(t, found)
}

func TestBuildCandidateQuery_AmountBands(t *testing.T) {
	t.Run("bounded band binds both edges", func(t *testing.T) {
		c := tokyoCriteria()
		c.Amount = models.AmountRangeFor("500k_1m")

		_, args, err := buildCandidateQuery(c, 100)
		require.NoError(t, err)
		assert.Contains(t, args, int64(500_000))
		assert.Contains(t, args, int64(1_000_000))
	})

	t.Run("open band binds the floor only", func(t *testing.T) {
		c := tokyoCriteria()
		c.Amount = models.AmountRangeFor("over_10m")

		_, args, err := buildCandidateQuery(c, 100)
		require.NoError(t, err)
		assert.Contains(t, args, int64(10_000_000))
	})
}
