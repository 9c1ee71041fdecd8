package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerValue_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected AnswerValue
	}{
		{
			name:     "string scalar",
			input:    `"tokyo"`,
			expected: ScalarValue("tokyo"),
		},
		{
			name:     "integer scalar",
			input:    `3000000`,
			expected: ScalarValue("3000000"),
		},
		{
			name:     "boolean scalar",
			input:    `true`,
			expected: ScalarValue("true"),
		},
		{
			name:     "string array",
			input:    `["it_dx","sogyo"]`,
			expected: ListValue("it_dx", "sogyo"),
		},
		{
			name:     "mixed array keeps scalars",
			input:    `["it_dx", 5]`,
			expected: ListValue("it_dx", "5"),
		},
		{
			name:     "null",
			input:    `null`,
			expected: AnswerValue{Kind: AnswerNone},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v AnswerValue
			require.NoError(t, json.Unmarshal([]byte(tt.input), &v))
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestAnswerValue_UnmarshalJSON_RejectsObjects(t *testing.T) {
	var v AnswerValue
	err := json.Unmarshal([]byte(`{"nested":"object"}`), &v)
	assert.Error(t, err)
}

func TestAnswerValue_RoundTrip(t *testing.T) {
	original := ListValue("a", "b")
	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded AnswerValue
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}

func TestAnswerValue_AsScalarAndList(t *testing.T) {
	assert.Equal(t, "x", ScalarValue("x").AsScalar())
	assert.Equal(t, []string{"x"}, ScalarValue("x").AsList())
	assert.Equal(t, "a", ListValue("a", "b").AsScalar())
	assert.Equal(t, []string{"a", "b"}, ListValue("a", "b").AsList())
	assert.Empty(t, AnswerValue{}.AsScalar())
	assert.Nil(t, AnswerValue{}.AsList())
}

func TestUserProfile_PutAnswer_LastWriteWins(t *testing.T) {
	profile := NewUserProfile(uuid.New(), UserTypeCorporate)

	profile.PutAnswer(QuestionRegion, Answer{Value: ScalarValue("osaka")})
	profile.PutAnswer(QuestionPurpose, Answer{Value: ListValue("it_dx")})
	profile.PutAnswer(QuestionRegion, Answer{Value: ScalarValue("tokyo")})

	assert.Equal(t, "tokyo", profile.Scalar(QuestionRegion))
	// Overwriting must not duplicate the insertion order entry.
	assert.Equal(t, []string{QuestionRegion, QuestionPurpose}, profile.AnswerOrder)
}

func TestUserProfile_FreeMessage(t *testing.T) {
	profile := NewUserProfile(uuid.New(), UserTypeIndividual)
	assert.Empty(t, profile.FreeMessage())

	profile.PutAnswer(QuestionMessage, Answer{Value: ScalarValue("ECサイトを作りたい")})
	assert.Equal(t, "ECサイトを作りたい", profile.FreeMessage())

	profile.PutAnswer(QuestionMessage, Answer{Value: AnswerValue{}, Text: "店舗を改装したい"})
	assert.Equal(t, "店舗を改装したい", profile.FreeMessage())
}
