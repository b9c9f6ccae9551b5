package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/liflo-ai/liflo/internal/model"
)

var (
	ErrRecordNotFound = errors.New("record not found")
)

// RecordFilter narrows a record listing. Empty fields do not filter.
// From and To are inclusive YYYY-MM-DD bounds.
type RecordFilter struct {
	From   string
	To     string
	GoalID string
}

// Match reports whether r passes the filter.
func (f RecordFilter) Match(r *model.Record) bool {
	if f.From != "" && r.Date < f.From {
		return false
	}
	if f.To != "" && r.Date > f.To {
		return false
	}
	if f.GoalID != "" && r.GoalID != f.GoalID {
		return false
	}
	return true
}

// SortRecords orders records by date, then creation time, then id.
func SortRecords(records []*model.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

type RecordRepository interface {
	Create(ctx context.Context, record *model.Record) error
	ByID(ctx context.Context, userID, recordID string) (*model.Record, error)
	// Records returns the user's records matching filter, oldest first.
	Records(ctx context.Context, userID string, filter RecordFilter) ([]*model.Record, error)
}

type recordRepository struct {
	db *sqlx.DB
}

func NewRecordRepository(db *sqlx.DB) RecordRepository {
	return &recordRepository{db: db}
}

func (r *recordRepository) Create(ctx context.Context, record *model.Record) error {
	query := `INSERT INTO records (id, user_id, goal_id, date, challenge_u, skill_u, reason_u,
		ai_challenge, ai_skill, ai_comment, regoal_ai, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.ExecContext(ctx, query,
		record.ID, record.UserID, record.GoalID, record.Date, record.ChallengeU, record.SkillU, record.ReasonU,
		record.AIChallenge, record.AISkill, record.AIComment, record.RegoalAI, record.CreatedAt)
	return err
}

func (r *recordRepository) ByID(ctx context.Context, userID, recordID string) (*model.Record, error) {
	record := &model.Record{}
	query := `SELECT * FROM records WHERE id = $1 AND user_id = $2`

	err := r.db.GetContext(ctx, record, query, recordID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}

	return record, nil
}

func (r *recordRepository) Records(ctx context.Context, userID string, filter RecordFilter) ([]*model.Record, error) {
	var where strings.Builder
	args := []any{userID}
	where.WriteString("user_id = $1")

	add := func(clause, value string) {
		args = append(args, value)
		fmt.Fprintf(&where, " AND %s $%d", clause, len(args))
	}
	if filter.From != "" {
		add("date >=", filter.From)
	}
	if filter.To != "" {
		add("date <=", filter.To)
	}
	if filter.GoalID != "" {
		add("goal_id =", filter.GoalID)
	}

	records := []*model.Record{}
	query := `SELECT * FROM records WHERE ` + where.String() + ` ORDER BY date ASC, created_at ASC, id ASC`

	err := r.db.SelectContext(ctx, &records, query, args...)
	return records, err
}
