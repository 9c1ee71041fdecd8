package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"grant-navi/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type SessionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewSessionRepository(db *pgxpool.Pool, logger *zap.Logger) *SessionRepository {
	return &SessionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	query := squirrel.Insert("sessions").
		Columns("id", "user_type", "created_at").
		Values(session.ID, session.UserType, session.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	query := squirrel.Select("id", "user_type", "created_at").
		From("sessions").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var session models.Session
	err = r.db.QueryRow(ctx, sql, args...).Scan(&session.ID, &session.UserType, &session.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &session, nil
}

// AppendAnswer stores one raw answer row. The history keeps every row;
// last-write-wins folding happens at profile build time.
func (r *SessionRepository) AppendAnswer(ctx context.Context, sessionID uuid.UUID, rec *models.AnswerRecord) error {
	valueJSON, err := json.Marshal(rec.Value)
	if err != nil {
		return fmt.Errorf("failed to encode answer value: %w", err)
	}

	query := squirrel.Insert("session_answers").
		Columns("session_id", "question_id", "value", "answer_text", "answered_at").
		Values(sessionID, rec.QuestionID, valueJSON, rec.Text, rec.AnsweredAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// GetAnswerHistory returns the full ordered answer history for a session.
func (r *SessionRepository) GetAnswerHistory(ctx context.Context, sessionID uuid.UUID) ([]models.AnswerRecord, error) {
	query := squirrel.Select("question_id", "value", "answer_text", "answered_at").
		From("session_answers").
		Where(squirrel.Eq{"session_id": sessionID}).
		OrderBy("answered_at ASC", "id ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query answer history: %w", err)
	}
	defer rows.Close()

	var history []models.AnswerRecord
	for rows.Next() {
		var rec models.AnswerRecord
		var valueJSON []byte
		if err := rows.Scan(&rec.QuestionID, &valueJSON, &rec.Text, &rec.AnsweredAt); err != nil {
			return nil, fmt.Errorf("failed to scan answer row: %w", err)
		}
		if len(valueJSON) > 0 {
			if err := json.Unmarshal(valueJSON, &rec.Value); err != nil {
				r.logger.Warn("Skipping undecodable answer value",
					zap.String("question_id", rec.QuestionID),
					zap.Error(err),
				)
				rec.Value = models.AnswerValue{Kind: models.AnswerNone}
			}
		}
		history = append(history, rec)
	}
	return history, rows.Err()
}
