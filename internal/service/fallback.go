package service

import (
	"sort"
	"strings"
	"time"

	"grant-navi/internal/models"
)

// FallbackReasoning is the generic justification attached when the reasoning
// capability is unavailable. This path trades explanation quality for
// availability.
const FallbackReasoning = "ご回答いただいた条件(地域・目的・金額)に基づいて選定した補助金です。詳細な対象条件や申請方法は、各制度の公募要領をご確認ください。"

const fallbackRecencyWindow = 30 * 24 * time.Hour

// fallbackScore computes the deterministic substitute score for one grant:
// neutral 0.5, plus category overlap, region fit and a recency boost.
func fallbackScore(g *models.Grant, c *models.SearchCriteria) float64 {
	score := 0.5

	for _, kw := range c.CategoryKeywords {
		if strings.Contains(g.Category, kw) {
			score += 0.05
		}
	}

	if g.Nationwide() {
		score += 0.15
	} else {
		for _, sub := range c.RegionSubstrings {
			if strings.Contains(*g.Prefecture, sub) ||
				(g.Municipality != nil && strings.Contains(*g.Municipality, sub)) {
				score += 0.15
				break
			}
		}
	}

	if c.Now.Sub(g.CreatedAt) <= fallbackRecencyWindow {
		score += 0.1
	}

	return models.ClampScore(score)
}

// FallbackRank is the deterministic substitute for the LLM ranking stage.
// Pure function: same (candidates, criteria, k) always yields the same
// ordered output, no external calls.
func FallbackRank(candidates []models.Grant, c *models.SearchCriteria, k int) []models.Recommendation {
	type scored struct {
		grant models.Grant
		score float64
	}

	entries := make([]scored, 0, len(candidates))
	for _, g := range candidates {
		entries = append(entries, scored{grant: g, score: fallbackScore(&g, c)})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].score != entries[j].score {
			return entries[i].score > entries[j].score
		}
		if !entries[i].grant.CreatedAt.Equal(entries[j].grant.CreatedAt) {
			return entries[i].grant.CreatedAt.After(entries[j].grant.CreatedAt)
		}
		return entries[i].grant.ID < entries[j].grant.ID
	})

	if k > len(entries) {
		k = len(entries)
	}

	recommendations := make([]models.Recommendation, 0, k)
	for i := 0; i < k; i++ {
		recommendations = append(recommendations, models.Recommendation{
			Grant:         entries[i].grant,
			MatchingScore: entries[i].score,
			Reasoning:     FallbackReasoning,
			Ranking:       i + 1,
		})
	}

	return recommendations
}
