package dto

type GrantResponse struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Organization string `json:"organization"`
	Category     string `json:"category"`
	AmountText   string `json:"amount_text"`
	DeadlineText string `json:"deadline_text"`
	Prefecture   string `json:"prefecture,omitempty"`
	Municipality string `json:"municipality,omitempty"`
	TargetText   string `json:"target_text,omitempty"`
}

type RecommendationResponse struct {
	Grant         GrantResponse `json:"grant"`
	MatchingScore float64       `json:"matching_score"`
	Reasoning     string        `json:"reasoning"`
	Ranking       int           `json:"ranking"`
}

type MatchResponse struct {
	SessionID       string                   `json:"session_id"`
	Recommendations []RecommendationResponse `json:"recommendations"`
	CandidateCount  int                      `json:"candidate_count"`
	Relaxed         bool                     `json:"relaxed"`
	Degraded        bool                     `json:"degraded"`
}
