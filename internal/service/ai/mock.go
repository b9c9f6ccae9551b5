package ai

import (
	"context"
	"fmt"
)

// MockProvider is a deterministic evaluator for development and tests.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (p *MockProvider) Name() string { return ProviderMock }

func (p *MockProvider) Evaluate(ctx context.Context, in Input) (*Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	aiC := ClampScore(float64(in.ChallengeU+1)/2 + 2)
	aiS := ClampScore(float64(in.SkillU+1)/2 + 2)

	note := "補足なし"
	if in.ReasonU != "" {
		note = "理由: " + truncate(in.ReasonU, 80) + "..."
	}

	eval := &Evaluation{
		AIChallenge: &aiC,
		AISkill:     &aiS,
		AIComment:   fmt.Sprintf("AI所見: 挑戦度Δ=%d, 能力度Δ=%d. %s", aiC-in.ChallengeU, aiS-in.SkillU, note),
	}

	switch {
	case aiC <= 2:
		regoal := "挑戦幅を小さく刻み直そう"
		eval.RegoalAI = &regoal
	case aiC >= 6 && aiS >= 6:
		regoal := "次は一段難しい課題に"
		eval.RegoalAI = &regoal
	}

	return eval, nil
}
