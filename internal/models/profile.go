package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type UserType string

const (
	UserTypeCorporate  UserType = "corporate"
	UserTypeIndividual UserType = "individual"
	UserTypeUnset      UserType = ""
)

// Well-known question identifiers from the diagnosis flow.
const (
	QuestionUserType     = "user_type"
	QuestionRegion       = "region"
	QuestionMunicipality = "municipality"
	QuestionPurpose      = "purpose"
	QuestionAmount       = "amount"
	QuestionDeadline     = "deadline"
	QuestionMessage      = "message"
)

type AnswerKind int

const (
	AnswerNone AnswerKind = iota
	AnswerScalar
	AnswerList
)

// AnswerValue is a tagged union over the shapes a stored answer can take:
// a scalar (string/number/bool), an array of scalars, or null. The shape is
// resolved once when the raw history is decoded, so consumers never have to
// re-inspect JSON.
type AnswerValue struct {
	Kind   AnswerKind
	Scalar string
	List   []string
}

func ScalarValue(s string) AnswerValue {
	return AnswerValue{Kind: AnswerScalar, Scalar: s}
}

func ListValue(items ...string) AnswerValue {
	return AnswerValue{Kind: AnswerList, List: items}
}

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case nil:
		*v = AnswerValue{Kind: AnswerNone}
	case string:
		*v = ScalarValue(t)
	case float64:
		*v = ScalarValue(formatNumber(t))
	case bool:
		*v = ScalarValue(fmt.Sprintf("%t", t))
	case []any:
		items := make([]string, 0, len(t))
		for _, item := range t {
			switch s := item.(type) {
			case string:
				items = append(items, s)
			case float64:
				items = append(items, formatNumber(s))
			case bool:
				items = append(items, fmt.Sprintf("%t", s))
			}
		}
		*v = AnswerValue{Kind: AnswerList, List: items}
	default:
		return fmt.Errorf("unsupported answer value shape: %T", raw)
	}
	return nil
}

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case AnswerScalar:
		return json.Marshal(v.Scalar)
	case AnswerList:
		return json.Marshal(v.List)
	default:
		return []byte("null"), nil
	}
}

// AsScalar flattens the value to a single string; list values collapse to
// their first element.
func (v AnswerValue) AsScalar() string {
	switch v.Kind {
	case AnswerScalar:
		return v.Scalar
	case AnswerList:
		if len(v.List) > 0 {
			return v.List[0]
		}
	}
	return ""
}

// AsList returns the value as a slice; a scalar becomes a one-element list.
func (v AnswerValue) AsList() []string {
	switch v.Kind {
	case AnswerScalar:
		if v.Scalar == "" {
			return nil
		}
		return []string{v.Scalar}
	case AnswerList:
		return v.List
	}
	return nil
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

// Answer is one folded entry of a profile: the resolved value plus the
// optional free text the user typed alongside it.
type Answer struct {
	Value AnswerValue `json:"value"`
	Text  string      `json:"text,omitempty"`
}

// AnswerRecord is one raw row of the session answer history, in answer order.
type AnswerRecord struct {
	QuestionID string
	Value      AnswerValue
	Text       string
	AnsweredAt time.Time
}

type Session struct {
	ID        uuid.UUID `db:"id"`
	UserType  UserType  `db:"user_type"`
	CreatedAt time.Time `db:"created_at"`
}

// IntentPriority is the coarse weight the intent extractor assigns to one of
// the amount/deadline/location axes.
type IntentPriority string

const (
	PriorityHigh   IntentPriority = "high"
	PriorityMedium IntentPriority = "medium"
	PriorityLow    IntentPriority = "low"
)

// ExtractedIntent is a best-effort enrichment derived from the conversation
// history. Its absence never blocks matching.
type ExtractedIntent struct {
	PrimaryNeeds        []string                  `json:"primary_needs"`
	Priorities          map[string]IntentPriority `json:"priorities"`
	UserCharacteristics []string                  `json:"user_characteristics"`
	RecommendedFocus    string                    `json:"recommended_focus"`
}

// UserProfile is the normalized view of one diagnosis session. It is built
// once per matching invocation and read-only afterwards.
type UserProfile struct {
	SessionID uuid.UUID
	UserType  UserType
	// Answers keyed by question id; AnswerOrder preserves insertion order.
	// Later answers to the same question overwrite earlier ones.
	Answers     map[string]Answer
	AnswerOrder []string
	Intent      *ExtractedIntent
}

func NewUserProfile(sessionID uuid.UUID, userType UserType) *UserProfile {
	return &UserProfile{
		SessionID: sessionID,
		UserType:  userType,
		Answers:   make(map[string]Answer),
	}
}

// PutAnswer folds one history record into the profile, last write wins.
func (p *UserProfile) PutAnswer(questionID string, answer Answer) {
	if _, seen := p.Answers[questionID]; !seen {
		p.AnswerOrder = append(p.AnswerOrder, questionID)
	}
	p.Answers[questionID] = answer
}

func (p *UserProfile) Scalar(questionID string) string {
	return p.Answers[questionID].Value.AsScalar()
}

func (p *UserProfile) List(questionID string) []string {
	return p.Answers[questionID].Value.AsList()
}

// FreeMessage returns the user's optional free-text request to the matcher.
func (p *UserProfile) FreeMessage() string {
	a := p.Answers[QuestionMessage]
	if a.Text != "" {
		return a.Text
	}
	return a.Value.AsScalar()
}
