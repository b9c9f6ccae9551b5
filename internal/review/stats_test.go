package review

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liflo-ai/liflo/internal/model"
)

func TestComputeStatsEmpty(t *testing.T) {
	st := ComputeStats(nil, time.Now())

	assert.Equal(t, Stats{}, st)
	assert.Nil(t, st.LastRecordedAt)
}

func TestComputeStats(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 30, 0, 0, time.UTC)
	records := []*model.Record{
		rec("r1", "2025-06-10", 4, 4),
		rec("r2", "2025-06-09", 4, 4),
		rec("r3", "2025-06-09", 2, 2),
		rec("r4", "2025-06-08", 4, 4),
		rec("r5", "2025-06-01", 4, 4),
		rec("r6", "2025-05-01", 4, 4),
		rec("bad", "not-a-date", 4, 4),
	}

	st := ComputeStats(records, now)

	assert.Equal(t, 6, st.Total)
	assert.Equal(t, 4, st.Last7Days)
	assert.Equal(t, 5, st.Last30Days)
	assert.Equal(t, 3, st.CurrentStreakDays)
	require.NotNil(t, st.LastRecordedAt)
	assert.Equal(t, "2025-06-10", *st.LastRecordedAt)
	// 6 records over 41 days
	assert.Equal(t, 1.02, st.AveragePerWeek)
}

func TestComputeStatsStreakNeedsToday(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	records := []*model.Record{
		rec("r1", "2025-06-09", 4, 4),
		rec("r2", "2025-06-08", 4, 4),
	}

	st := ComputeStats(records, now)

	assert.Equal(t, 0, st.CurrentStreakDays)
	assert.Equal(t, 7.0, st.AveragePerWeek)
}
