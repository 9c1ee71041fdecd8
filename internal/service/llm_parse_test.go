package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{
			name:     "plain object",
			input:    `{"rankings":[]}`,
			expected: `{"rankings":[]}`,
		},
		{
			name:     "fenced json block",
			input:    "```json\n{\"rankings\":[]}\n```",
			expected: `{"rankings":[]}`,
		},
		{
			name:     "object with surrounding prose",
			input:    "以下が結果です。\n{\"rankings\":[]}\nご確認ください。",
			expected: `{"rankings":[]}`,
		},
		{
			name:    "no object at all",
			input:   "申し訳ありませんが、回答できません。",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := extractJSONObject(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, raw)
		})
	}
}

func TestParseRankingResponse_Valid(t *testing.T) {
	content := "```json\n" + `{
		"rankings": [
			{"grant_id": 12, "rank": 2, "score": 0.8, "reason": "地域が一致"},
			{"grant_id": 7, "rank": 1, "score": 0.95, "reason": "市区町村まで一致"}
		]
	}` + "\n```"

	ranked, err := parseRankingResponse(content)
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	// Array order is preserved; the caller re-sorts by rank.
	assert.Equal(t, int64(12), ranked[0].GrantID)
	assert.Equal(t, 2, ranked[0].Rank)
	assert.Equal(t, int64(7), ranked[1].GrantID)
	assert.Equal(t, "市区町村まで一致", ranked[1].Reasoning)
}

func TestParseRankingResponse_DropsInvalidEntries(t *testing.T) {
	content := `{
		"rankings": [
			{"rank": 1, "score": 0.9, "reason": "grant_id missing"},
			{"grant_id": 5, "score": 0.8, "reason": "rank missing"},
			{"grant_id": 9, "rank": 3, "reason": "score missing is fine"}
		]
	}`

	ranked, err := parseRankingResponse(content)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, int64(9), ranked[0].GrantID)
	assert.Equal(t, 0.5, ranked[0].Score) // neutral default when absent
}

func TestParseRankingResponse_ClampsScores(t *testing.T) {
	content := `{"rankings": [{"grant_id": 1, "rank": 1, "score": 3.5}]}`

	ranked, err := parseRankingResponse(content)
	require.NoError(t, err)
	assert.Equal(t, 1.0, ranked[0].Score)
}

func TestParseRankingResponse_Failures(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "not json", input: "おすすめはこちらです: 補助金A、補助金B"},
		{name: "missing rankings field", input: `{"results": []}`},
		{name: "empty rankings", input: `{"rankings": []}`},
		{name: "all entries invalid", input: `{"rankings": [{"score": 0.5}]}`},
		{name: "broken json", input: `{"rankings": [{"grant_id": 1,]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseRankingResponse(tt.input)
			assert.Error(t, err)
		})
	}
}
