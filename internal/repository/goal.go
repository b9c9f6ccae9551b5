package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/liflo-ai/liflo/internal/model"
)

var (
	ErrGoalNotFound = errors.New("goal not found")
	ErrGoalClosed   = errors.New("goal is closed")
)

type GoalRepository interface {
	Create(ctx context.Context, goal *model.Goal) error
	ByID(ctx context.Context, userID, goalID string) (*model.Goal, error)
	// Goals returns the user's goals, newest first.
	Goals(ctx context.Context, userID string) ([]*model.Goal, error)
	// Update only applies to an active goal; a closed one yields ErrGoalClosed.
	Update(ctx context.Context, goal *model.Goal) error
}

type goalRepository struct {
	db *sqlx.DB
}

func NewGoalRepository(db *sqlx.DB) GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) Create(ctx context.Context, goal *model.Goal) error {
	query := `INSERT INTO goals (id, user_id, content, status, reason_u, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query, goal.ID, goal.UserID, goal.Content, goal.Status, goal.ReasonU, goal.CreatedAt, goal.UpdatedAt)
	return err
}

func (r *goalRepository) ByID(ctx context.Context, userID, goalID string) (*model.Goal, error) {
	goal := &model.Goal{}
	query := `SELECT * FROM goals WHERE id = $1 AND user_id = $2`

	err := r.db.GetContext(ctx, goal, query, goalID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, err
	}

	return goal, nil
}

func (r *goalRepository) Goals(ctx context.Context, userID string) ([]*model.Goal, error) {
	goals := []*model.Goal{}
	query := `SELECT * FROM goals WHERE user_id = $1 ORDER BY created_at DESC, id DESC`

	err := r.db.SelectContext(ctx, &goals, query, userID)
	return goals, err
}

func (r *goalRepository) Update(ctx context.Context, goal *model.Goal) error {
	query := `UPDATE goals SET content = $1, status = $2, reason_u = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6 AND status = 'active'`

	result, err := r.db.ExecContext(ctx, query, goal.Content, goal.Status, goal.ReasonU, goal.UpdatedAt, goal.ID, goal.UserID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, err := r.ByID(ctx, goal.UserID, goal.ID); err != nil {
			return err
		}
		return ErrGoalClosed
	}

	return nil
}
