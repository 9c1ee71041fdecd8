package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"grant-navi/internal/models"
	"grant-navi/pkg/config"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
)

// LLMService implements Reasoner on top of the GigaChat API.
type LLMService struct {
	client           *gigago.Client
	model            *gigago.GenerativeModel
	logger           *zap.Logger
	timeout          time.Duration
	promptCandidates int
}

func buildSystemInstruction() string {
	return `あなたは日本の補助金・助成金の専門アドバイザーです。中小企業や個人事業主の相談内容をもとに、公的な補助金・助成金の中から最も適した制度を選び、分かりやすく説明することが役割です。

# 原則
- 回答は必ず指定されたJSON形式のみで返すこと。JSON以外のコメントや前置きは書かない
- 地域の適合を最優先する。市区町村が一致する制度 > 都道府県が一致する制度 > 全国対象の制度の順で評価する
- 申請締切が近い制度については、その旨を必ず言及する
- 存在しない制度をでっち上げない。提示された候補の中からのみ選ぶ
- 金額・締切・対象者の条件は候補データに書かれた内容だけを根拠にする`
}

func NewLLMService(cfg *config.GigaChatConfig, matching *config.MatchingConfig, logger *zap.Logger) (*LLMService, error) {
	ctx := context.Background()

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel("GigaChat")
	model.SystemInstruction = buildSystemInstruction()
	model.Temperature = 0.3

	return &LLMService{
		client:           client,
		model:            model,
		logger:           logger,
		timeout:          matching.LLMTimeout,
		promptCandidates: matching.PromptCandidates,
	}, nil
}

func (s *LLMService) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	messages := []gigago.Message{
		{Role: gigago.RoleUser, Content: prompt},
	}

	resp, err := s.model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// profileSummary renders the profile block shared by the ranking and
// explanation prompts.
func profileSummary(profile *models.UserProfile) string {
	var b strings.Builder

	switch profile.UserType {
	case models.UserTypeCorporate:
		b.WriteString("- 利用者区分: 法人・事業者\n")
	case models.UserTypeIndividual:
		b.WriteString("- 利用者区分: 個人・個人事業主\n")
	default:
		b.WriteString("- 利用者区分: 未回答\n")
	}

	regionCode := profile.Scalar(models.QuestionRegion)
	if name := models.PrefectureName(regionCode); name != "" {
		b.WriteString("- 地域: " + name + "\n")
	} else {
		b.WriteString("- 地域: 指定なし\n")
	}
	if muni := profile.Scalar(models.QuestionMunicipality); muni != "" {
		b.WriteString("- 市区町村: " + muni + "\n")
	}
	if purposes := profile.List(models.QuestionPurpose); len(purposes) > 0 {
		b.WriteString("- 目的: " + strings.Join(purposes, ", ") + "\n")
	}
	if amount := profile.Scalar(models.QuestionAmount); amount != "" && amount != "any" {
		b.WriteString("- 希望金額帯: " + amount + "\n")
	}
	if deadline := profile.Scalar(models.QuestionDeadline); deadline != "" {
		b.WriteString("- 締切の希望: " + deadline + "\n")
	}
	if msg := profile.FreeMessage(); msg != "" {
		b.WriteString("- 相談内容(自由記述): " + msg + "\n")
	}
	if profile.Intent != nil {
		if len(profile.Intent.PrimaryNeeds) > 0 {
			b.WriteString("- 推定ニーズ: " + strings.Join(profile.Intent.PrimaryNeeds, ", ") + "\n")
		}
		if profile.Intent.RecommendedFocus != "" {
			b.WriteString("- 推奨フォーカス: " + profile.Intent.RecommendedFocus + "\n")
		}
	}

	return b.String()
}

func formatCandidates(candidates []models.Grant) string {
	var b strings.Builder
	for _, g := range candidates {
		region := "全国"
		if g.Prefecture != nil && *g.Prefecture != "" {
			region = *g.Prefecture
			if g.Municipality != nil && *g.Municipality != "" {
				region += " " + *g.Municipality
			}
		}
		deadline := g.DeadlineText
		if deadline == "" && g.Deadline != nil {
			deadline = g.Deadline.Format("2006-01-02")
		}
		if deadline == "" {
			deadline = "随時"
		}
		fmt.Fprintf(&b, "- id=%d | %s | 対象: %s | 上限額: %s | 締切: %s | 地域: %s | カテゴリ: %s\n",
			g.ID, g.Title, g.TargetText, g.AmountText, deadline, region, g.Category)
	}
	return b.String()
}

// ExtractIntent derives structured intent from the ordered answer history.
func (s *LLMService) ExtractIntent(ctx context.Context, history []models.AnswerRecord) (*models.ExtractedIntent, error) {
	if len(history) == 0 {
		return nil, fmt.Errorf("empty answer history")
	}

	var lines strings.Builder
	for _, rec := range history {
		value := rec.Value.AsScalar()
		if list := rec.Value.AsList(); len(list) > 1 {
			value = strings.Join(list, ", ")
		}
		if rec.Text != "" {
			value += " (" + rec.Text + ")"
		}
		fmt.Fprintf(&lines, "- %s: %s\n", rec.QuestionID, value)
	}

	prompt := fmt.Sprintf(`以下は補助金診断での質問IDと回答の履歴です。利用者の意図を分析してください。

回答履歴:
%s
次のJSON形式のみで返してください:
{
  "primary_needs": ["主なニーズを短い語句で、重要な順に"],
  "priorities": {"amount": "high|medium|low", "deadline": "high|medium|low", "location": "high|medium|low"},
  "user_characteristics": ["利用者の特徴"],
  "recommended_focus": "推薦時に重視すべき観点を一文で"
}`, lines.String())

	content, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	raw, err := extractJSONObject(content)
	if err != nil {
		return nil, fmt.Errorf("failed to locate intent JSON: %w", err)
	}

	var intent models.ExtractedIntent
	if err := json.Unmarshal([]byte(raw), &intent); err != nil {
		return nil, fmt.Errorf("failed to parse intent JSON: %w", err)
	}

	s.logger.Debug("Intent extracted",
		zap.Strings("primary_needs", intent.PrimaryNeeds),
		zap.String("focus", intent.RecommendedFocus),
	)

	return &intent, nil
}

// RankCandidates sends the profile and a bounded slice of the candidate set
// to the model and returns the validated ranking.
func (s *LLMService) RankCandidates(ctx context.Context, profile *models.UserProfile, candidates []models.Grant, k int) ([]models.RankedCandidate, error) {
	total := len(candidates)
	if total == 0 {
		return nil, ErrRankingUnavailable
	}
	trimmed := candidates
	if len(trimmed) > s.promptCandidates {
		trimmed = trimmed[:s.promptCandidates]
	}

	horizon := models.DeadlineHorizon(profile.Scalar(models.QuestionDeadline), time.Now())

	prompt := fmt.Sprintf(`利用者プロフィールと補助金候補をもとに、適合度の高い順に上位%d件を選んでランク付けしてください。

# 利用者プロフィール
%s
# 候補一覧(全%d件のうち%d件を提示、締切の目安: %s まで)
%s
# ランク付けの優先順位
1. 市区町村が一致する制度を最優先する
2. 次に都道府県が一致する制度。全国対象の制度は地域一致の制度より必ず下位にする
3. 相談内容(自由記述)への適合
4. 利用者区分(法人/個人)への適合
5. 目的・カテゴリへの適合
6. 金額・締切への適合

次のJSON形式のみで返してください:
{
  "rankings": [
    {"grant_id": 候補のid, "rank": 1, "score": 0.0から1.0の適合度, "reason": "選定理由を1〜2文で"}
  ]
}`,
		k, profileSummary(profile), total, len(trimmed), horizon.Format("2006-01-02"), formatCandidates(trimmed))

	content, err := s.generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("Ranking generation failed", zap.Error(err))
		return nil, ErrRankingUnavailable
	}

	ranked, err := parseRankingResponse(content)
	if err != nil {
		s.logger.Warn("Ranking response rejected",
			zap.Error(err),
			zap.Int("content_length", len(content)),
		)
		return nil, ErrRankingUnavailable
	}

	return ranked, nil
}

// ExplainMatch produces the per-item justification (300-500 characters).
func (s *LLMService) ExplainMatch(ctx context.Context, profile *models.UserProfile, grant *models.Grant, score float64) (string, error) {
	region := "全国"
	if grant.Prefecture != nil && *grant.Prefecture != "" {
		region = *grant.Prefecture
		if grant.Municipality != nil && *grant.Municipality != "" {
			region += " " + *grant.Municipality
		}
	}

	prompt := fmt.Sprintf(`以下の補助金が利用者に推薦された理由を、300〜500文字の日本語で説明してください。

# 利用者プロフィール
%s
# 推薦された補助金(適合度 %.2f)
- 名称: %s
- 実施機関: %s
- 対象: %s
- 上限額: %s
- 締切: %s
- 地域: %s
- カテゴリ: %s

# 説明に含めること
1. 利用者区分(法人/個人)との適合
2. 相談内容があればそれとの関連、なければ目的との適合
3. 金額・締切の条件
4. 地域の適合
5. 申請にあたっての注意点や次のアクションを一つ

JSONではなく、説明文のみを返してください。`,
		profileSummary(profile), score, grant.Title, grant.Organization, grant.TargetText,
		grant.AmountText, grant.DeadlineText, region, grant.Category)

	content, err := s.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if content == "" {
		return "", fmt.Errorf("empty explanation from LLM")
	}

	return content, nil
}

func (s *LLMService) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	return nil
}

// extractJSONObject unwraps markdown fences and returns the first top-level
// JSON object embedded in the model output.
func extractJSONObject(content string) (string, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON object in response")
	}
	return content[start : end+1], nil
}

type rankingEntry struct {
	GrantID *int64   `json:"grant_id"`
	Rank    *int     `json:"rank"`
	Score   *float64 `json:"score"`
	Reason  string   `json:"reason"`
}

type rankingPayload struct {
	Rankings []rankingEntry `json:"rankings"`
}

// parseRankingResponse validates the raw model output. Entries missing a
// numeric grant_id or rank are dropped individually; an empty surviving list
// is an error so the caller can fall back.
func parseRankingResponse(content string) ([]models.RankedCandidate, error) {
	raw, err := extractJSONObject(content)
	if err != nil {
		return nil, err
	}

	var payload rankingPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse ranking JSON: %w", err)
	}
	if payload.Rankings == nil {
		return nil, fmt.Errorf("ranking response has no rankings field")
	}

	var ranked []models.RankedCandidate
	for _, entry := range payload.Rankings {
		if entry.GrantID == nil || entry.Rank == nil {
			continue
		}
		score := 0.5
		if entry.Score != nil {
			score = *entry.Score
		}
		ranked = append(ranked, models.RankedCandidate{
			GrantID:   *entry.GrantID,
			Rank:      *entry.Rank,
			Score:     models.ClampScore(score),
			Reasoning: strings.TrimSpace(entry.Reason),
		})
	}
	if len(ranked) == 0 {
		return nil, fmt.Errorf("no valid ranking entries")
	}

	return ranked, nil
}
