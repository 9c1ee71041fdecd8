package service

import (
	"context"
	"fmt"

	"grant-navi/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionStore is the session-store surface the profile builder reads.
type SessionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error)
	GetAnswerHistory(ctx context.Context, sessionID uuid.UUID) ([]models.AnswerRecord, error)
}

// ProfileService assembles a normalized UserProfile from the raw session
// answer history.
type ProfileService struct {
	sessions SessionStore
	reasoner Reasoner
	logger   *zap.Logger
}

func NewProfileService(sessions SessionStore, reasoner Reasoner, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		sessions: sessions,
		reasoner: reasoner,
		logger:   logger,
	}
}

// Build fetches the session and folds its ordered answer history into a
// profile, last write wins per question. Intent extraction is best-effort
// enrichment and never fails the build.
func (s *ProfileService) Build(ctx context.Context, sessionID uuid.UUID) (*models.UserProfile, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	history, err := s.sessions.GetAnswerHistory(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answer history: %w", err)
	}

	profile := models.NewUserProfile(session.ID, session.UserType)
	for _, rec := range history {
		profile.PutAnswer(rec.QuestionID, models.Answer{Value: rec.Value, Text: rec.Text})
	}

	if len(history) > 0 {
		intent, err := s.reasoner.ExtractIntent(ctx, history)
		if err != nil {
			s.logger.Warn("Intent extraction failed, continuing without intent",
				zap.String("session_id", sessionID.String()),
				zap.Error(err),
			)
		} else {
			profile.Intent = intent
		}
	}

	s.logger.Debug("Profile built",
		zap.String("session_id", sessionID.String()),
		zap.Int("answers", len(profile.Answers)),
		zap.Bool("intent", profile.Intent != nil),
	)

	return profile, nil
}
