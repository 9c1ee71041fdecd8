package handlers

import (
	"grant-navi/internal/dto"
	"grant-navi/internal/models"
	"grant-navi/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type MatchingHandler struct {
	matcher *service.MatchingService
	logger  *zap.Logger
}

func NewMatchingHandler(matcher *service.MatchingService, logger *zap.Logger) *MatchingHandler {
	return &MatchingHandler{
		matcher: matcher,
		logger:  logger,
	}
}

// Match godoc
// @Summary Match grants for a session
// @Description Run the matching pipeline and return the ranked, explained shortlist
// @Tags matching
// @Produce json
// @Param id path string true "Session ID"
// @Param k query int false "Number of recommendations" default(5)
// @Success 200 {object} dto.MatchResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/sessions/{id}/match [post]
func (h *MatchingHandler) Match(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID",
		})
	}

	k := c.QueryInt("k", 0)

	result, err := h.matcher.MatchGrants(c.Context(), sessionID, k)
	if err != nil {
		h.logger.Error("Matching failed",
			zap.String("session_id", sessionID.String()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Matching failed",
		})
	}

	return c.JSON(toMatchResponse(sessionID, result))
}

func toMatchResponse(sessionID uuid.UUID, result *service.MatchResult) dto.MatchResponse {
	resp := dto.MatchResponse{
		SessionID:       sessionID.String(),
		Recommendations: make([]dto.RecommendationResponse, 0, len(result.Recommendations)),
		CandidateCount:  result.CandidateCount,
		Relaxed:         result.Relaxed,
		Degraded:        result.Degraded,
	}
	for _, rec := range result.Recommendations {
		resp.Recommendations = append(resp.Recommendations, dto.RecommendationResponse{
			Grant:         toGrantResponse(&rec.Grant),
			MatchingScore: rec.MatchingScore,
			Reasoning:     rec.Reasoning,
			Ranking:       rec.Ranking,
		})
	}
	return resp
}

func toGrantResponse(g *models.Grant) dto.GrantResponse {
	resp := dto.GrantResponse{
		ID:           g.ID,
		Title:        g.Title,
		Organization: g.Organization,
		Category:     g.Category,
		AmountText:   g.AmountText,
		DeadlineText: g.DeadlineText,
		TargetText:   g.TargetText,
	}
	if g.Prefecture != nil {
		resp.Prefecture = *g.Prefecture
	}
	if g.Municipality != nil {
		resp.Municipality = *g.Municipality
	}
	return resp
}
