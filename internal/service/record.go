package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/liflo-ai/liflo/internal/metrics"
	"github.com/liflo-ai/liflo/internal/model"
	"github.com/liflo-ai/liflo/internal/repository"
	"github.com/liflo-ai/liflo/internal/service/ai"
	"github.com/liflo-ai/liflo/internal/validation"
)

// FallbackComment replaces the AI comment when evaluation fails.
const FallbackComment = "AI評価は一時的に利用できません"

const DefaultAITimeout = 10 * time.Second

type CreateRecordInput struct {
	GoalID     string
	Date       string
	ChallengeU int
	SkillU     int
	ReasonU    *string
}

func (in CreateRecordInput) validate() error {
	if strings.TrimSpace(in.GoalID) == "" {
		return &ValidationError{Field: "goalId", Message: "goalId is required"}
	}
	if err := validation.ValidateDate(in.Date); err != nil {
		return invalid("date", err)
	}
	if err := validation.ValidateScale("challengeU", in.ChallengeU); err != nil {
		return invalid("challengeU", err)
	}
	if err := validation.ValidateScale("skillU", in.SkillU); err != nil {
		return invalid("skillU", err)
	}
	if in.ReasonU != nil {
		if err := validation.ValidateReason(*in.ReasonU); err != nil {
			return invalid("reasonU", err)
		}
	}
	return nil
}

// RecordService creates records with an attached AI evaluation.
// The evaluation is best effort: a failing or slow evaluator yields a
// record without AI scores rather than an error.
type RecordService struct {
	records   repository.RecordRepository
	goals     repository.GoalRepository
	evaluator ai.Provider
	timeout   time.Duration
	now       func() time.Time
}

func NewRecordService(
	records repository.RecordRepository,
	goals repository.GoalRepository,
	evaluator ai.Provider,
	timeout time.Duration,
) *RecordService {
	if timeout <= 0 {
		timeout = DefaultAITimeout
	}
	return &RecordService{
		records:   records,
		goals:     goals,
		evaluator: evaluator,
		timeout:   timeout,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *RecordService) Create(ctx context.Context, userID string, in CreateRecordInput) (*model.Record, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	if _, err := s.goals.ByID(ctx, userID, in.GoalID); err != nil {
		return nil, err
	}

	// The write completes even if the client goes away mid-request.
	ctx = context.WithoutCancel(ctx)

	record := &model.Record{
		ID:         uuid.New().String(),
		UserID:     userID,
		GoalID:     in.GoalID,
		Date:       in.Date,
		ChallengeU: in.ChallengeU,
		SkillU:     in.SkillU,
		ReasonU:    trimmedOrNil(in.ReasonU),
	}

	s.evaluate(ctx, record)
	record.CreatedAt = s.now()

	err := s.records.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to create record: %w", err)
	}

	slog.Info("record created", "userID", userID, "goalID", record.GoalID, "recordID", record.ID, "evaluated", record.HasEvaluation())
	return record, nil
}

// evaluate makes a single attempt and merges the result into record.
func (s *RecordService) evaluate(ctx context.Context, record *model.Record) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	in := ai.Input{
		GoalID:     record.GoalID,
		Date:       record.Date,
		ChallengeU: record.ChallengeU,
		SkillU:     record.SkillU,
	}
	if record.ReasonU != nil {
		in.ReasonU = *record.ReasonU
	}

	start := time.Now()
	eval, err := s.evaluator.Evaluate(ctx, in)
	if err == nil && eval == nil {
		err = fmt.Errorf("%s returned no evaluation", s.evaluator.Name())
	}
	metrics.RecordAIEvaluation(s.evaluator.Name(), time.Since(start), err != nil)

	if err != nil {
		slog.Warn("ai evaluation failed, saving record without scores", "error", err, "provider", s.evaluator.Name(), "goalID", record.GoalID)
		record.AIComment = FallbackComment
		return
	}

	record.AIChallenge = clampPtr(eval.AIChallenge)
	record.AISkill = clampPtr(eval.AISkill)
	record.AIComment = eval.AIComment
	record.RegoalAI = eval.RegoalAI
}

func (s *RecordService) ByID(ctx context.Context, userID, recordID string) (*model.Record, error) {
	return s.records.ByID(ctx, userID, recordID)
}

// RecordQuery lists records; From and To are optional YYYY-MM-DD bounds.
type RecordQuery struct {
	From   string
	To     string
	GoalID string
}

func (s *RecordService) Records(ctx context.Context, userID string, q RecordQuery) ([]*model.Record, error) {
	if q.From != "" {
		if err := validation.ValidateDate(q.From); err != nil {
			return nil, invalid("from", err)
		}
	}
	if q.To != "" {
		if err := validation.ValidateDate(q.To); err != nil {
			return nil, invalid("to", err)
		}
	}
	if q.From != "" && q.To != "" && q.From > q.To {
		q.From, q.To = q.To, q.From
	}

	return s.records.Records(ctx, userID, repository.RecordFilter{From: q.From, To: q.To, GoalID: q.GoalID})
}

func clampPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := ai.ClampScore(float64(*p))
	return &v
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
