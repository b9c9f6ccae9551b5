package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liflo-ai/liflo/internal/db"
	"github.com/liflo-ai/liflo/internal/model"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func newSQLite(t *testing.T) *Repositories {
	t.Helper()
	ctx := context.Background()
	conn, err := db.Init(ctx, "sqlite", filepath.Join(t.TempDir(), "liflo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(conn) })
	require.NoError(t, db.RunMigrations(ctx, conn.DB, "sqlite"))
	return NewSQL(conn)
}

func ptr[T any](v T) *T { return &v }

const goalUpdateQuery = `UPDATE goals SET content = $1, status = $2, reason_u = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6 AND status = 'active'`

var goalColumns = []string{"id", "user_id", "content", "status", "reason_u", "created_at", "updated_at"}

func TestRecordsQueryAppliesFilters(t *testing.T) {
	sqlDB, mock := newMock(t)
	repo := NewRecordRepository(sqlDB)

	created := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	columns := []string{"id", "user_id", "goal_id", "date", "challenge_u", "skill_u", "reason_u",
		"ai_challenge", "ai_skill", "ai_comment", "regoal_ai", "created_at"}

	mock.ExpectQuery(`SELECT * FROM records WHERE user_id = $1 AND date >= $2 AND date <= $3 AND goal_id = $4 ORDER BY date ASC, created_at ASC, id ASC`).
		WithArgs("u1", "2025-06-01", "2025-06-07", "g1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("r1", "u1", "g1", "2025-06-01", 5, 5, nil, 6, 6, "ok", nil, created))

	records, err := repo.Records(context.Background(), "u1", RecordFilter{From: "2025-06-01", To: "2025-06-07", GoalID: "g1"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "r1", records[0].ID)
	assert.Equal(t, 6, *records[0].AIChallenge)
	assert.Nil(t, records[0].ReasonU)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordsQueryWithoutFilters(t *testing.T) {
	sqlDB, mock := newMock(t)
	repo := NewRecordRepository(sqlDB)

	mock.ExpectQuery(`SELECT * FROM records WHERE user_id = $1 ORDER BY date ASC, created_at ASC, id ASC`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	records, err := repo.Records(context.Background(), "u1", RecordFilter{})
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NotNil(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGoalUpdateMissingRow(t *testing.T) {
	sqlDB, mock := newMock(t)
	repo := NewGoalRepository(sqlDB)

	now := time.Now()
	mock.ExpectExec(goalUpdateQuery).
		WithArgs("run", "done", "finished", now, "g1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT * FROM goals WHERE id = $1 AND user_id = $2`).
		WithArgs("g1", "u1").
		WillReturnRows(sqlmock.NewRows(goalColumns))

	err := repo.Update(context.Background(), &model.Goal{
		ID: "g1", UserID: "u1", Content: "run", Status: model.GoalStatusDone, ReasonU: ptr("finished"), UpdatedAt: now,
	})
	assert.ErrorIs(t, err, ErrGoalNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGoalUpdateClosedRow(t *testing.T) {
	sqlDB, mock := newMock(t)
	repo := NewGoalRepository(sqlDB)

	now := time.Now()
	mock.ExpectExec(goalUpdateQuery).
		WithArgs("run", "aborted", "second", now, "g1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT * FROM goals WHERE id = $1 AND user_id = $2`).
		WithArgs("g1", "u1").
		WillReturnRows(sqlmock.NewRows(goalColumns).
			AddRow("g1", "u1", "run", "done", "first", now, now))

	err := repo.Update(context.Background(), &model.Goal{
		ID: "g1", UserID: "u1", Content: "run", Status: model.GoalStatusAborted, ReasonU: ptr("second"), UpdatedAt: now,
	})
	assert.ErrorIs(t, err, ErrGoalClosed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGoalByIDPropagatesDriverErrors(t *testing.T) {
	sqlDB, mock := newMock(t)
	repo := NewGoalRepository(sqlDB)

	boom := errors.New("connection reset")
	mock.ExpectQuery(`SELECT * FROM goals WHERE id = $1 AND user_id = $2`).
		WithArgs("g1", "u1").
		WillReturnError(boom)

	_, err := repo.ByID(context.Background(), "u1", "g1")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrGoalNotFound)
}

func TestUserCreateMapsUniqueViolation(t *testing.T) {
	sqlDB, mock := newMock(t)
	repo := NewUserRepository(sqlDB)

	mock.ExpectExec(`INSERT INTO users (id, nickname, pin_hash, created_at) VALUES ($1, $2, $3, $4)`).
		WithArgs("u2", "taro", "hash", sqlmock.AnyArg()).
		WillReturnError(errors.New("constraint failed: UNIQUE constraint failed: users.nickname (2067)"))

	err := repo.Create(context.Background(), &model.User{ID: "u2", Nickname: "taro", PinHash: "hash", CreatedAt: time.Now()})
	assert.ErrorIs(t, err, ErrNicknameTaken)
}

func TestSQLiteGoalLifecycle(t *testing.T) {
	repos := newSQLite(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"g1", "g2"} {
		require.NoError(t, repos.Goals.Create(ctx, &model.Goal{
			ID: id, UserID: "u1", Content: "goal " + id, Status: model.GoalStatusActive,
			CreatedAt: base.Add(time.Duration(i) * time.Hour), UpdatedAt: base,
		}))
	}

	goals, err := repos.Goals.Goals(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, goals, 2)
	assert.Equal(t, "g2", goals[0].ID)

	_, err = repos.Goals.ByID(ctx, "u2", "g1")
	assert.ErrorIs(t, err, ErrGoalNotFound)

	g := goals[1]
	g.Status = model.GoalStatusAborted
	g.ReasonU = ptr("too big")
	g.UpdatedAt = base.Add(48 * time.Hour)
	require.NoError(t, repos.Goals.Update(ctx, g))

	got, err := repos.Goals.ByID(ctx, "u1", "g1")
	require.NoError(t, err)
	assert.Equal(t, model.GoalStatusAborted, got.Status)
	assert.Equal(t, "too big", *got.ReasonU)
	assert.True(t, got.UpdatedAt.Equal(g.UpdatedAt))

	g.ReasonU = ptr("changed my mind")
	assert.ErrorIs(t, repos.Goals.Update(ctx, g), ErrGoalClosed)
	got, err = repos.Goals.ByID(ctx, "u1", "g1")
	require.NoError(t, err)
	assert.Equal(t, "too big", *got.ReasonU)

	g.UserID = "u2"
	assert.ErrorIs(t, repos.Goals.Update(ctx, g), ErrGoalNotFound)
}

func TestSQLiteRecordsFilteringAndOrder(t *testing.T) {
	repos := newSQLite(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range []string{"g1", "g2"} {
		require.NoError(t, repos.Goals.Create(ctx, &model.Goal{
			ID: id, UserID: "u1", Content: id, Status: model.GoalStatusActive, CreatedAt: base, UpdatedAt: base,
		}))
	}

	inputs := []*model.Record{
		{ID: "r3", GoalID: "g1", Date: "2025-06-03", ChallengeU: 5, SkillU: 5, CreatedAt: base.Add(3 * time.Hour)},
		{ID: "r1", GoalID: "g1", Date: "2025-06-01", ChallengeU: 2, SkillU: 6, CreatedAt: base.Add(2 * time.Hour),
			AIChallenge: ptr(3), AISkill: ptr(5), AIComment: "fine", RegoalAI: ptr("next")},
		{ID: "r0", GoalID: "g2", Date: "2025-06-01", ChallengeU: 6, SkillU: 1, CreatedAt: base.Add(time.Hour),
			ReasonU: ptr("tired")},
		{ID: "r9", GoalID: "g1", Date: "2025-06-10", ChallengeU: 1, SkillU: 1, CreatedAt: base},
	}
	for _, r := range inputs {
		r.UserID = "u1"
		require.NoError(t, repos.Records.Create(ctx, r))
	}

	all, err := repos.Records.Records(ctx, "u1", RecordFilter{From: "2025-06-01", To: "2025-06-03"})
	require.NoError(t, err)
	var ids []string
	for _, r := range all {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"r0", "r1", "r3"}, ids)
	assert.Equal(t, "tired", *all[0].ReasonU)
	assert.Equal(t, 5, *all[1].AISkill)
	assert.Equal(t, "next", *all[1].RegoalAI)
	assert.Nil(t, all[2].AIChallenge)

	byGoal, err := repos.Records.Records(ctx, "u1", RecordFilter{GoalID: "g2"})
	require.NoError(t, err)
	require.Len(t, byGoal, 1)
	assert.Equal(t, "r0", byGoal[0].ID)

	got, err := repos.Records.ByID(ctx, "u1", "r9")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-10", got.Date)

	_, err = repos.Records.ByID(ctx, "u2", "r9")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	none, err := repos.Records.Records(ctx, "u2", RecordFilter{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteUsers(t *testing.T) {
	repos := newSQLite(t)
	ctx := context.Background()

	u := &model.User{ID: "u1", Nickname: "hanako", PinHash: "h", CreatedAt: time.Now().UTC()}
	require.NoError(t, repos.Users.Create(ctx, u))

	dup := *u
	dup.ID = "u2"
	assert.ErrorIs(t, repos.Users.Create(ctx, &dup), ErrNicknameTaken)

	got, err := repos.Users.ByNickname(ctx, "hanako")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)

	_, err = repos.Users.ByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
