package model

import (
	"time"
)

// DateLayout is the calendar-day format records are stored and queried with.
const DateLayout = "2006-01-02"

type Record struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"userId"`
	GoalID      string    `db:"goal_id" json:"goalId"`
	Date        string    `db:"date" json:"date"`
	ChallengeU  int       `db:"challenge_u" json:"challengeU"`
	SkillU      int       `db:"skill_u" json:"skillU"`
	ReasonU     *string   `db:"reason_u" json:"reasonU,omitempty"`
	AIChallenge *int      `db:"ai_challenge" json:"aiChallenge,omitempty"`
	AISkill     *int      `db:"ai_skill" json:"aiSkill,omitempty"`
	AIComment   string    `db:"ai_comment" json:"aiComment"`
	RegoalAI    *string   `db:"regoal_ai" json:"regoalAI,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// HasEvaluation reports whether both AI scores were attached.
func (r *Record) HasEvaluation() bool {
	return r.AIChallenge != nil && r.AISkill != nil
}
