package handlers

import (
	"encoding/json"
	"time"

	"grant-navi/internal/dto"
	"grant-navi/internal/models"
	"grant-navi/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SessionHandler struct {
	sessions *repository.SessionRepository
	logger   *zap.Logger
}

func NewSessionHandler(sessions *repository.SessionRepository, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// CreateSession godoc
// @Summary Start a diagnosis session
// @Description Create a new diagnosis session, optionally with the user type
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body dto.CreateSessionRequest true "Session parameters"
// @Success 201 {object} dto.SessionResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/sessions [post]
func (h *SessionHandler) CreateSession(c *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	var userType models.UserType
	switch req.UserType {
	case "corporate":
		userType = models.UserTypeCorporate
	case "individual":
		userType = models.UserTypeIndividual
	case "":
		userType = models.UserTypeUnset
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user type",
		})
	}

	session := &models.Session{
		ID:        uuid.New(),
		UserType:  userType,
		CreatedAt: time.Now(),
	}

	if err := h.sessions.Create(c.Context(), session); err != nil {
		h.logger.Error("Failed to create session", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create session",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SessionResponse{
		ID:        session.ID.String(),
		UserType:  string(session.UserType),
		CreatedAt: session.CreatedAt.Format(time.RFC3339),
	})
}

// SubmitAnswer godoc
// @Summary Record an answer
// @Description Append one answer to the session history; re-answering a question overwrites it at matching time
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body dto.SubmitAnswerRequest true "Answer"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/sessions/{id}/answers [post]
func (h *SessionHandler) SubmitAnswer(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID",
		})
	}

	var req dto.SubmitAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.QuestionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "question_id is required",
		})
	}

	if _, err := h.sessions.GetByID(c.Context(), sessionID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	value, err := decodeAnswerValue(req.Value)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unsupported answer value shape",
		})
	}

	rec := &models.AnswerRecord{
		QuestionID: req.QuestionID,
		Value:      value,
		Text:       req.Text,
		AnsweredAt: time.Now(),
	}

	if err := h.sessions.AppendAnswer(c.Context(), sessionID, rec); err != nil {
		h.logger.Error("Failed to store answer",
			zap.String("session_id", sessionID.String()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store answer",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func decodeAnswerValue(raw any) (models.AnswerValue, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return models.AnswerValue{}, err
	}
	var value models.AnswerValue
	if err := value.UnmarshalJSON(data); err != nil {
		return models.AnswerValue{}, err
	}
	return value, nil
}
