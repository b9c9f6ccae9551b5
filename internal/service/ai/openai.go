package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

const (
	DefaultOpenAIModel   = "gpt-4o-mini"
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"

	maxCommentRunes = 120
)

const systemPrompt = "あなたはセルフコーチング用の短文評価アシスタントです。" +
	"ユーザー主観(1..7)を尊重しつつ補助的にAI評価(1..7)と短いコメントを返す。" +
	"出力は JSON オブジェクトのみ。キー: aiChallenge, aiSkill, aiComment, regoalAI。" +
	"aiChallenge/aiSkill は1..7の整数、aiCommentは80字以内、日本語。"

var (
	challengePattern = regexp.MustCompile(`(?i)aiChallenge"?\D+(\d)`)
	skillPattern     = regexp.MustCompile(`(?i)aiSkill"?\D+(\d)`)
)

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenAIProvider calls the chat completions endpoint in JSON mode.
type OpenAIProvider struct {
	cfg    OpenAIConfig
	client *http.Client
}

func NewOpenAIProvider(cfg OpenAIConfig, client *http.Client) *OpenAIProvider {
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenAIBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if client == nil {
		client = http.DefaultClient
	}
	return &OpenAIProvider{cfg: cfg, client: client}
}

func (p *OpenAIProvider) Name() string { return ProviderOpenAI }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *OpenAIProvider) Evaluate(ctx context.Context, in Input) (*Evaluation, error) {
	body, err := json.Marshal(chatRequest{
		Model: p.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt(in)},
		},
		Temperature:    0.2,
		MaxTokens:      220,
		ResponseFormat: map[string]string{"type": "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode openai request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build openai request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		preview, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return nil, fmt.Errorf("openai returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(preview)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode openai response: %w", err)
	}
	if len(out.Choices) == 0 {
		return nil, errors.New("openai response has no choices")
	}

	return ParseEvaluation(out.Choices[0].Message.Content), nil
}

func userPrompt(in Input) string {
	lines := []string{
		"目標ID: " + in.GoalID,
		"日付: " + in.Date,
		fmt.Sprintf("主観: challengeU=%d, skillU=%d", in.ChallengeU, in.SkillU),
	}
	if in.ReasonU != "" {
		lines = append(lines, "理由: "+in.ReasonU)
	}
	return strings.Join(lines, "\n")
}

// ParseEvaluation reads the model's JSON answer. Content that is not JSON
// falls back to pulling single digits after the score keys and using the
// text itself as the comment. Scores are clamped, texts truncated.
func ParseEvaluation(content string) *Evaluation {
	var raw map[string]any
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		raw = map[string]any{"aiComment": truncate(content, maxCommentRunes)}
		if m := challengePattern.FindStringSubmatch(content); m != nil {
			raw["aiChallenge"] = m[1]
		}
		if m := skillPattern.FindStringSubmatch(content); m != nil {
			raw["aiSkill"] = m[1]
		}
	}

	eval := &Evaluation{
		AIChallenge: score(raw["aiChallenge"]),
		AISkill:     score(raw["aiSkill"]),
		AIComment:   truncate(text(raw["aiComment"]), maxCommentRunes),
	}
	if regoal := truncate(text(raw["regoalAI"]), maxCommentRunes); regoal != "" {
		eval.RegoalAI = &regoal
	}
	return eval
}

func score(v any) *int {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	n := ClampScore(f)
	return &n
}

func text(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}
