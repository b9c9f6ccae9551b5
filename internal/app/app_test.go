package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liflo-ai/liflo/internal/config"
	"github.com/liflo-ai/liflo/internal/model"
	"github.com/liflo-ai/liflo/internal/service"
)

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:             "test",
		DBProvider:         "memory",
		AuthMode:           "dev",
		DevUserID:          "u_demo",
		AIProvider:         "mock",
		AITimeout:          time.Second,
		LogSink:            "none",
		AuditBatchSize:     20,
		AuditFlushInterval: time.Second,
		AuditFlushTimeout:  time.Second,
		RateLimitMax:       100,
		RateLimitWindow:    time.Minute,
	}
}

func closeApp(t *testing.T, a *App) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, a.Close(ctx))
}

func TestNewMemory(t *testing.T) {
	a, err := New(context.Background(), testConfig())
	require.NoError(t, err)
	defer closeApp(t, a)

	assert.Nil(t, a.DB)
	assert.Equal(t, "mock", a.AIProvider.Name())
	assert.Equal(t, "none", a.SinkName)
	assert.Len(t, a.FlowService.Tips(), 4)
}

func TestNewSQLiteRunsMigrations(t *testing.T) {
	cfg := testConfig()
	cfg.DBProvider = "sqlite"
	cfg.DBConnection = filepath.Join(t.TempDir(), "liflo.db")

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer closeApp(t, a)
	require.NotNil(t, a.DB)

	ctx := context.Background()
	goal, err := a.GoalService.Create(ctx, "u1", "毎朝走る")
	require.NoError(t, err)

	record, err := a.RecordService.Create(ctx, "u1", service.CreateRecordInput{
		GoalID:     goal.ID,
		Date:       "2025-06-01",
		ChallengeU: 4,
		SkillU:     4,
	})
	require.NoError(t, err)
	assert.True(t, record.HasEvaluation())

	stored, err := a.Repositories.Records.ByID(ctx, "u1", record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.AIComment, stored.AIComment)
	assert.Equal(t, model.GoalStatusActive, goal.Status)
}

func TestNewFailsFast(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"unknown db", func(c *config.Config) { c.DBProvider = "mongo" }, "no sql driver"},
		{"firestore without project", func(c *config.Config) { c.DBProvider = "firestore" }, "FIRESTORE_PROJECT_ID"},
		{"unknown ai", func(c *config.Config) { c.AIProvider = "claude" }, "unknown ai provider"},
		{"openai without key", func(c *config.Config) { c.AIProvider = "openai" }, "OPENAI_API_KEY"},
		{"unknown sink", func(c *config.Config) { c.LogSink = "kafka" }, "unknown log sink"},
		{"bad batch size", func(c *config.Config) { c.AuditBatchSize = -1 }, "audit queue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)
			_, err := New(context.Background(), cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
