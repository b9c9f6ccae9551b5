package service

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liflo-ai/liflo"
	"github.com/liflo-ai/liflo/internal/review"
)

func TestFlowServiceEmbeddedGuide(t *testing.T) {
	svc, err := NewFlowService(liflo.ContentFS, FlowGuidePath)
	require.NoError(t, err)

	guide := svc.Guide()
	assert.NotEmpty(t, guide.Title)
	assert.Len(t, svc.Tips(), 4)
	assert.Contains(t, guide.HTML, "<h2")
	assert.Equal(t, review.HighThreshold, guide.Threshold)

	require.Len(t, guide.Quadrants, 4)
	assert.Equal(t, Quadrant{
		State:       review.StateAnxiety,
		Label:       "Anxiety",
		Challenge:   "high",
		Skill:       "low",
		Description: quadrantDescriptions[review.StateAnxiety],
	}, guide.Quadrants[1])
}

func TestFlowServiceMissingGuide(t *testing.T) {
	_, err := NewFlowService(fstest.MapFS{}, FlowGuidePath)
	assert.Error(t, err)
}

func TestFlowServiceGuideWithoutTips(t *testing.T) {
	fsys := fstest.MapFS{"guide.md": {Data: []byte("# Only a heading\n")}}

	svc, err := NewFlowService(fsys, "guide.md")
	require.NoError(t, err)
	assert.Empty(t, svc.Tips())
	assert.Empty(t, svc.Guide().Title)
}
