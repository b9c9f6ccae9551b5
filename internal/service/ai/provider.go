package ai

import (
	"context"
	"math"
)

const (
	MinScore = 1
	MaxScore = 7
)

// Input is what an evaluator sees of a submission.
type Input struct {
	GoalID     string
	Date       string
	ChallengeU int
	SkillU     int
	ReasonU    string
}

// Evaluation is an AI counter-assessment. Every field is optional.
type Evaluation struct {
	AIChallenge *int
	AISkill     *int
	AIComment   string
	RegoalAI    *string
}

// Provider defines the interface that all AI evaluators must implement
type Provider interface {
	// Evaluate returns a counter-assessment or an error the caller falls back from
	Evaluate(ctx context.Context, in Input) (*Evaluation, error)

	// Name returns the provider name (e.g., "mock", "openai")
	Name() string
}

// ClampScore rounds v to the nearest integer inside the 1-7 scale.
func ClampScore(v float64) int {
	switch {
	case math.IsNaN(v), math.IsInf(v, -1):
		return MinScore
	case math.IsInf(v, 1):
		return MaxScore
	}
	n := int(math.Round(v))
	return max(MinScore, min(MaxScore, n))
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
