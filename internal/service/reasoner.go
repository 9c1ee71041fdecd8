package service

import (
	"context"
	"errors"

	"grant-navi/internal/models"
)

// ErrRankingUnavailable signals that the reasoning capability could not
// produce a usable ranking (timeout, malformed output, zero valid entries).
// The caller recovers through the deterministic fallback scorer.
var ErrRankingUnavailable = errors.New("ranking unavailable")

// Reasoner is the narrow view of the external reasoning capability the
// matching pipeline depends on. Every operation must return an explicit
// error instead of hanging; callers bound each call with a timeout.
type Reasoner interface {
	// ExtractIntent derives a structured intent from the ordered answer
	// history. Best-effort: failures are logged and matching proceeds
	// without intent.
	ExtractIntent(ctx context.Context, history []models.AnswerRecord) (*models.ExtractedIntent, error)

	// RankCandidates asks for a ranking of the candidate set against the
	// profile and returns validated entries carrying the model's rank.
	RankCandidates(ctx context.Context, profile *models.UserProfile, candidates []models.Grant, k int) ([]models.RankedCandidate, error)

	// ExplainMatch produces a natural-language justification for one
	// selected grant.
	ExplainMatch(ctx context.Context, profile *models.UserProfile, grant *models.Grant, score float64) (string, error)
}
