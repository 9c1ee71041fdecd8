package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"grant-navi/internal/models"
	"grant-navi/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// GrantCatalog is the catalog-store surface the matcher reads. The catalog is
// effectively immutable for the duration of one matching operation.
type GrantCatalog interface {
	SearchCandidates(ctx context.Context, c *models.SearchCriteria, limit int) ([]models.Grant, error)
	SearchRelaxed(ctx context.Context, now time.Time, limit int) ([]models.Grant, error)
}

// ProfileBuilder produces the normalized profile for a session.
type ProfileBuilder interface {
	Build(ctx context.Context, sessionID uuid.UUID) (*models.UserProfile, error)
}

// MatchResult is the outcome of one matching invocation.
type MatchResult struct {
	Recommendations []models.Recommendation
	CandidateCount  int
	Relaxed         bool // strict filter was empty, relaxed search ran
	Degraded        bool // LLM ranking failed, fallback scorer ran
}

// MatchingService drives the pipeline: profile -> rule filter -> (relax) ->
// LLM ranking -> reasoning, with the deterministic fallback on any ranking
// failure. It always produces a best-effort result; the only hard failures
// are unreachable stores.
type MatchingService struct {
	catalog    GrantCatalog
	profiles   ProfileBuilder
	reasoner   Reasoner
	categories *CategoryIndex
	cfg        config.MatchingConfig
	logger     *zap.Logger
	now        func() time.Time
}

func NewMatchingService(
	catalog GrantCatalog,
	profiles ProfileBuilder,
	reasoner Reasoner,
	categories *CategoryIndex,
	cfg config.MatchingConfig,
	logger *zap.Logger,
) *MatchingService {
	return &MatchingService{
		catalog:    catalog,
		profiles:   profiles,
		reasoner:   reasoner,
		categories: categories,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// buildCriteria projects the profile onto the structured attributes the
// catalog query understands.
func (s *MatchingService) buildCriteria(profile *models.UserProfile) *models.SearchCriteria {
	regionCode := profile.Scalar(models.QuestionRegion)
	purposes := profile.List(models.QuestionPurpose)

	return &models.SearchCriteria{
		UserType:         profile.UserType,
		RegionCode:       regionCode,
		RegionName:       models.PrefectureName(regionCode),
		RegionSubstrings: models.RegionSubstrings(regionCode),
		Municipality:     profile.Scalar(models.QuestionMunicipality),
		PurposeCodes:     purposes,
		CategoryKeywords: s.categories.KeywordsFor(purposes),
		Amount:           models.AmountRangeFor(profile.Scalar(models.QuestionAmount)),
		DeadlineCode:     profile.Scalar(models.QuestionDeadline),
		Now:              s.now(),
	}
}

// MatchGrants runs one full matching operation for a session. k <= 0 selects
// the configured default.
func (s *MatchingService) MatchGrants(ctx context.Context, sessionID uuid.UUID, k int) (*MatchResult, error) {
	if k <= 0 {
		k = s.cfg.TopK
	}

	profile, err := s.profiles.Build(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	criteria := s.buildCriteria(profile)

	candidates, err := s.catalog.SearchCandidates(ctx, criteria, s.cfg.CandidateLimit)
	if err != nil {
		return nil, err
	}

	result := &MatchResult{}
	if len(candidates) == 0 {
		// Over-constrained profile must never mean an empty page when any
		// eligible grants exist at all.
		candidates, err = s.catalog.SearchRelaxed(ctx, criteria.Now, s.cfg.RelaxedLimit)
		if err != nil {
			return nil, err
		}
		result.Relaxed = true
		s.logger.Info("Strict filter empty, relaxed search executed",
			zap.String("session_id", sessionID.String()),
			zap.Int("relaxed_count", len(candidates)),
		)
	}
	result.CandidateCount = len(candidates)

	if len(candidates) == 0 {
		return result, nil
	}

	recommendations, degraded := s.rank(ctx, profile, criteria, candidates, k)
	result.Degraded = degraded

	if !degraded {
		if err := s.enrichReasoning(ctx, profile, recommendations); err != nil {
			return nil, err
		}
	}

	result.Recommendations = recommendations

	s.logger.Info("Matching completed",
		zap.String("session_id", sessionID.String()),
		zap.Int("candidates", result.CandidateCount),
		zap.Int("recommendations", len(recommendations)),
		zap.Bool("relaxed", result.Relaxed),
		zap.Bool("degraded", result.Degraded),
	)

	return result, nil
}

// rank asks the reasoner for a ranking and validates it against the candidate
// set; any failure engages the deterministic fallback scorer.
func (s *MatchingService) rank(
	ctx context.Context,
	profile *models.UserProfile,
	criteria *models.SearchCriteria,
	candidates []models.Grant,
	k int,
) ([]models.Recommendation, bool) {
	ranked, err := s.reasoner.RankCandidates(ctx, profile, candidates, k)
	if err != nil {
		if !errors.Is(err, ErrRankingUnavailable) {
			s.logger.Warn("Ranking call failed", zap.Error(err))
		}
		return FallbackRank(candidates, criteria, k), true
	}

	// The model's rank field is authoritative, not the array order.
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Rank < ranked[j].Rank })

	byID := make(map[int64]models.Grant, len(candidates))
	for _, g := range candidates {
		byID[g.ID] = g
	}

	var recommendations []models.Recommendation
	for _, entry := range ranked {
		grant, ok := byID[entry.GrantID]
		if !ok {
			// Hallucinated id: drop the entry, keep the rest.
			s.logger.Warn("Dropping ranked entry outside candidate set",
				zap.Int64("grant_id", entry.GrantID),
			)
			continue
		}
		recommendations = append(recommendations, models.Recommendation{
			Grant:         grant,
			MatchingScore: models.ClampScore(entry.Score),
			Reasoning:     entry.Reasoning,
			Ranking:       len(recommendations) + 1,
		})
		if len(recommendations) == k {
			break
		}
	}

	if len(recommendations) == 0 {
		s.logger.Warn("No ranked entries survived validation, using fallback")
		return FallbackRank(candidates, criteria, k), true
	}

	return recommendations, false
}

// enrichReasoning replaces the short per-entry reasoning with the full
// explanation, one bounded concurrent call per item. A failed item keeps its
// short reasoning; cancellation of the request context is the only hard stop.
func (s *MatchingService) enrichReasoning(ctx context.Context, profile *models.UserProfile, recommendations []models.Recommendation) error {
	g, gctx := errgroup.WithContext(ctx)
	limit := s.cfg.ReasoningConcurrency
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)

	for i := range recommendations {
		rec := &recommendations[i]
		g.Go(func() error {
			text, err := s.reasoner.ExplainMatch(gctx, profile, &rec.Grant, rec.MatchingScore)
			if err != nil {
				s.logger.Warn("Explanation failed, keeping short reasoning",
					zap.Int64("grant_id", rec.Grant.ID),
					zap.Error(err),
				)
				if rec.Reasoning == "" {
					rec.Reasoning = FallbackReasoning
				}
				return nil
			}
			rec.Reasoning = text
			return nil
		})
	}

	_ = g.Wait()
	return ctx.Err()
}
