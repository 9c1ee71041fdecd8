package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"grant-navi/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSessionStore struct {
	session    *models.Session
	sessionErr error
	history    []models.AnswerRecord
	historyErr error
}

func (f *fakeSessionStore) GetByID(_ context.Context, _ uuid.UUID) (*models.Session, error) {
	return f.session, f.sessionErr
}

func (f *fakeSessionStore) GetAnswerHistory(_ context.Context, _ uuid.UUID) ([]models.AnswerRecord, error) {
	return f.history, f.historyErr
}

type fakeIntentReasoner struct {
	intent *models.ExtractedIntent
	err    error
	called bool
}

func (f *fakeIntentReasoner) ExtractIntent(_ context.Context, _ []models.AnswerRecord) (*models.ExtractedIntent, error) {
	f.called = true
	return f.intent, f.err
}

func (f *fakeIntentReasoner) RankCandidates(_ context.Context, _ *models.UserProfile, _ []models.Grant, _ int) ([]models.RankedCandidate, error) {
	return nil, errors.New("not used")
}

func (f *fakeIntentReasoner) ExplainMatch(_ context.Context, _ *models.UserProfile, _ *models.Grant, _ float64) (string, error) {
	return "", errors.New("not used")
}

func answeredAt(min int) time.Time {
	return time.Date(2026, 8, 1, 10, min, 0, 0, time.UTC)
}

func TestProfileService_Build_FoldsHistory(t *testing.T) {
	sessionID := uuid.New()
	store := &fakeSessionStore{
		session: &models.Session{ID: sessionID, UserType: models.UserTypeCorporate},
		history: []models.AnswerRecord{
			{QuestionID: models.QuestionRegion, Value: models.ScalarValue("osaka"), AnsweredAt: answeredAt(0)},
			{QuestionID: models.QuestionPurpose, Value: models.ListValue("it_dx", "sogyo"), AnsweredAt: answeredAt(1)},
			{QuestionID: models.QuestionRegion, Value: models.ScalarValue("tokyo"), AnsweredAt: answeredAt(2)},
		},
	}
	reasoner := &fakeIntentReasoner{intent: &models.ExtractedIntent{PrimaryNeeds: []string{"IT導入"}}}

	profile, err := NewProfileService(store, reasoner, zap.NewNop()).Build(context.Background(), sessionID)
	require.NoError(t, err)

	assert.Equal(t, sessionID, profile.SessionID)
	assert.Equal(t, models.UserTypeCorporate, profile.UserType)
	assert.Equal(t, "tokyo", profile.Scalar(models.QuestionRegion))
	assert.Equal(t, []string{"it_dx", "sogyo"}, profile.List(models.QuestionPurpose))
	require.NotNil(t, profile.Intent)
	assert.Equal(t, []string{"IT導入"}, profile.Intent.PrimaryNeeds)
}

func TestProfileService_Build_IntentFailureIsNotFatal(t *testing.T) {
	sessionID := uuid.New()
	store := &fakeSessionStore{
		session: &models.Session{ID: sessionID, UserType: models.UserTypeIndividual},
		history: []models.AnswerRecord{
			{QuestionID: models.QuestionRegion, Value: models.ScalarValue("tokyo"), AnsweredAt: answeredAt(0)},
		},
	}
	reasoner := &fakeIntentReasoner{err: errors.New("llm timeout")}

	profile, err := NewProfileService(store, reasoner, zap.NewNop()).Build(context.Background(), sessionID)
	require.NoError(t, err)

	assert.True(t, reasoner.called)
	assert.Nil(t, profile.Intent)
	assert.Equal(t, "tokyo", profile.Scalar(models.QuestionRegion))
}

func TestProfileService_Build_SkipsIntentForEmptyHistory(t *testing.T) {
	sessionID := uuid.New()
	store := &fakeSessionStore{
		session: &models.Session{ID: sessionID, UserType: models.UserTypeCorporate},
	}
	reasoner := &fakeIntentReasoner{}

	profile, err := NewProfileService(store, reasoner, zap.NewNop()).Build(context.Background(), sessionID)
	require.NoError(t, err)

	assert.False(t, reasoner.called)
	assert.Empty(t, profile.Answers)
}

func TestProfileService_Build_StoreErrors(t *testing.T) {
	t.Run("session not found", func(t *testing.T) {
		store := &fakeSessionStore{sessionErr: errors.New("no rows")}
		_, err := NewProfileService(store, &fakeIntentReasoner{}, zap.NewNop()).Build(context.Background(), uuid.New())
		assert.Error(t, err)
	})

	t.Run("history unavailable", func(t *testing.T) {
		store := &fakeSessionStore{
			session:    &models.Session{ID: uuid.New(), UserType: models.UserTypeCorporate},
			historyErr: errors.New("connection reset"),
		}
		_, err := NewProfileService(store, &fakeIntentReasoner{}, zap.NewNop()).Build(context.Background(), uuid.New())
		assert.Error(t, err)
	})
}
