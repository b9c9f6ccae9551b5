package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/liflo-ai/liflo/internal/model"
	"github.com/liflo-ai/liflo/internal/repository"
	"github.com/liflo-ai/liflo/internal/validation"
)

// GoalUpdate is a partial change; nil fields are left alone.
type GoalUpdate struct {
	Content *string
	Status  *model.GoalStatus
	ReasonU *string
}

type GoalService struct {
	repo repository.GoalRepository
	now  func() time.Time
}

func NewGoalService(repo repository.GoalRepository) *GoalService {
	return &GoalService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *GoalService) Create(ctx context.Context, userID, content string) (*model.Goal, error) {
	content = strings.TrimSpace(content)
	if err := validation.ValidateContent(content); err != nil {
		return nil, invalid("content", err)
	}

	now := s.now()
	goal := &model.Goal{
		ID:        uuid.New().String(),
		UserID:    userID,
		Content:   content,
		Status:    model.GoalStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.repo.Create(ctx, goal)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	return goal, nil
}

func (s *GoalService) ByID(ctx context.Context, userID, goalID string) (*model.Goal, error) {
	return s.repo.ByID(ctx, userID, goalID)
}

func (s *GoalService) Goals(ctx context.Context, userID string) ([]*model.Goal, error) {
	return s.repo.Goals(ctx, userID)
}

// Update applies upd. A reason is required exactly when the goal is
// being closed, and closed goals accept no further changes.
func (s *GoalService) Update(ctx context.Context, userID, goalID string, upd GoalUpdate) (*model.Goal, error) {
	if err := upd.validate(); err != nil {
		return nil, err
	}

	goal, err := s.repo.ByID(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	if goal.IsClosed() {
		return nil, ErrGoalClosed
	}

	if upd.Content != nil {
		goal.Content = strings.TrimSpace(*upd.Content)
	}
	if upd.Status != nil {
		goal.Status = *upd.Status
	}
	if goal.Status.IsTerminal() {
		reason := strings.TrimSpace(*upd.ReasonU)
		goal.ReasonU = &reason
	}
	goal.UpdatedAt = s.now()

	err = s.repo.Update(ctx, goal)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrGoalNotFound):
			return nil, err
		case errors.Is(err, repository.ErrGoalClosed):
			return nil, ErrGoalClosed
		}
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}

	return goal, nil
}

func (u GoalUpdate) validate() error {
	if u.Content == nil && u.Status == nil && u.ReasonU == nil {
		return &ValidationError{Message: "nothing to update"}
	}

	if u.Content != nil {
		if err := validation.ValidateContent(*u.Content); err != nil {
			return invalid("content", err)
		}
	}

	closing := false
	if u.Status != nil {
		if !u.Status.Valid() {
			return &ValidationError{Field: "status", Message: "status must be \"active\", 1000 or 999"}
		}
		closing = u.Status.IsTerminal()
	}

	hasReason := u.ReasonU != nil && strings.TrimSpace(*u.ReasonU) != ""
	switch {
	case closing && !hasReason:
		return &ValidationError{Field: "reasonU", Message: "reasonU is required when closing a goal"}
	case !closing && hasReason:
		return &ValidationError{Field: "reasonU", Message: "reasonU is only accepted when closing a goal"}
	}

	if hasReason {
		if err := validation.ValidateReason(*u.ReasonU); err != nil {
			return invalid("reasonU", err)
		}
	}

	return nil
}
