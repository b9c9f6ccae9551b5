package docstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/liflo-ai/liflo/internal/model"
	"github.com/liflo-ai/liflo/internal/repository"
)

func TestRecordDocRoundTrip(t *testing.T) {
	c, s := 6, 2
	reason, regoal := "tired", "smaller steps"
	in := &model.Record{
		ID: "r1", UserID: "u1", GoalID: "g1", Date: "2025-06-01",
		ChallengeU: 5, SkillU: 3, ReasonU: &reason,
		AIChallenge: &c, AISkill: &s, AIComment: "ok", RegoalAI: &regoal,
		CreatedAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.FixedZone("JST", 9*3600)),
	}

	doc := toRecordDoc(in)
	assert.Equal(t, int64(6), *doc.AIChallenge)
	assert.Equal(t, time.UTC, doc.CreatedAt.Location())

	out := doc.model()
	assert.Equal(t, 6, *out.AIChallenge)
	assert.Equal(t, 2, *out.AISkill)
	assert.True(t, in.CreatedAt.Equal(out.CreatedAt))
	assert.Equal(t, in.ReasonU, out.ReasonU)

	bare := toRecordDoc(&model.Record{ID: "r2"}).model()
	assert.Nil(t, bare.AIChallenge)
	assert.Nil(t, bare.AISkill)
}

func TestGoalDocStatus(t *testing.T) {
	doc := toGoalDoc(&model.Goal{ID: "g1", Status: model.GoalStatusAborted})
	assert.Equal(t, "aborted", doc.Status)

	g, err := doc.model()
	require.NoError(t, err)
	assert.Equal(t, model.GoalStatusAborted, g.Status)

	doc.Status = "paused"
	_, err = doc.model()
	assert.Error(t, err)
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, isNotFound(status.Error(codes.NotFound, "no doc")))
	assert.False(t, isNotFound(errors.New("plain")))
	assert.True(t, isMissingIndex(status.Error(codes.FailedPrecondition, "The query requires an index")))
	assert.False(t, isMissingIndex(status.Error(codes.Unavailable, "down")))
}

func TestNewRequiresProject(t *testing.T) {
	_, err := New(context.Background(), "", "")
	assert.ErrorContains(t, err, "FIRESTORE_PROJECT_ID")
}

func newEmulatorStore(t *testing.T) *Store {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	store, err := New(context.Background(), "liflo-test", "")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestEmulatorRecordsAndGoals(t *testing.T) {
	store := newEmulatorStore(t)
	repos := store.Repositories()
	ctx := context.Background()

	userID := "u_" + uuid.NewString()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repos.Goals.Create(ctx, &model.Goal{ID: uuid.NewString(), UserID: userID, Content: "a", Status: model.GoalStatusActive, CreatedAt: base, UpdatedAt: base}))
	goalID := uuid.NewString()
	require.NoError(t, repos.Goals.Create(ctx, &model.Goal{ID: goalID, UserID: userID, Content: "b", Status: model.GoalStatusActive, CreatedAt: base.Add(time.Hour), UpdatedAt: base}))

	goals, err := repos.Goals.Goals(ctx, userID)
	require.NoError(t, err)
	require.Len(t, goals, 2)
	assert.Equal(t, goalID, goals[0].ID)

	for i := 0; i < 3; i++ {
		require.NoError(t, repos.Records.Create(ctx, &model.Record{
			ID: uuid.NewString(), UserID: userID, GoalID: goalID,
			Date: fmt.Sprintf("2025-06-0%d", 3-i), ChallengeU: 4, SkillU: 4, CreatedAt: base,
		}))
	}

	records, err := repos.Records.Records(ctx, userID, repository.RecordFilter{From: "2025-06-02", To: "2025-06-03", GoalID: goalID})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2025-06-02", records[0].Date)

	_, err = repos.Goals.ByID(ctx, "someone-else", goalID)
	assert.ErrorIs(t, err, repository.ErrGoalNotFound)
}

func TestEmulatorNicknameUnique(t *testing.T) {
	store := newEmulatorStore(t)
	repos := store.Repositories()
	ctx := context.Background()

	nick := "n" + uuid.NewString()[:8]
	require.NoError(t, repos.Users.Create(ctx, &model.User{ID: uuid.NewString(), Nickname: nick, CreatedAt: time.Now()}))
	assert.ErrorIs(t, repos.Users.Create(ctx, &model.User{ID: uuid.NewString(), Nickname: nick, CreatedAt: time.Now()}), repository.ErrNicknameTaken)

	u, err := repos.Users.ByNickname(ctx, nick)
	require.NoError(t, err)
	assert.Equal(t, nick, u.Nickname)
}
