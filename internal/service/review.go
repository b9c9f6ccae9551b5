package service

import (
	"context"
	"fmt"
	"time"

	"github.com/liflo-ai/liflo/internal/repository"
	"github.com/liflo-ai/liflo/internal/review"
	"github.com/liflo-ai/liflo/internal/validation"
)

type ReviewQuery struct {
	From   string
	To     string
	GoalID string
}

type ReviewService struct {
	records repository.RecordRepository
	now     func() time.Time
}

func NewReviewService(records repository.RecordRepository) *ReviewService {
	return &ReviewService{
		records: records,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Summary aggregates the user's records in the inclusive window.
// Reversed bounds are swapped, not rejected.
func (s *ReviewService) Summary(ctx context.Context, userID string, q ReviewQuery) (*review.Summary, error) {
	if err := validation.ValidateDate(q.From); err != nil {
		return nil, invalid("from", err)
	}
	if err := validation.ValidateDate(q.To); err != nil {
		return nil, invalid("to", err)
	}

	w := review.Window{From: q.From, To: q.To}.Normalize()
	records, err := s.records.Records(ctx, userID, repository.RecordFilter{From: w.From, To: w.To, GoalID: q.GoalID})
	if err != nil {
		return nil, fmt.Errorf("failed to list records for review: %w", err)
	}

	summary := review.Summarize(records, w, q.GoalID)
	return &summary, nil
}

// Stats reports activity across all of the user's records.
func (s *ReviewService) Stats(ctx context.Context, userID string) (*review.Stats, error) {
	records, err := s.records.Records(ctx, userID, repository.RecordFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list records for stats: %w", err)
	}

	stats := review.ComputeStats(records, s.now())
	return &stats, nil
}
