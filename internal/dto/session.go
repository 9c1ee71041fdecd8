package dto

type CreateSessionRequest struct {
	UserType string `json:"user_type" validate:"omitempty,oneof=corporate individual"`
}

type SessionResponse struct {
	ID        string `json:"id"`
	UserType  string `json:"user_type"`
	CreatedAt string `json:"created_at"`
}

type SubmitAnswerRequest struct {
	QuestionID string `json:"question_id" validate:"required"`
	// Value may be a scalar, an array of scalars, or null depending on the
	// question type.
	Value any    `json:"value"`
	Text  string `json:"text,omitempty"`
}
