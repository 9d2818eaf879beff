package personalization

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flownarrator/internal/storage"
)

func newTestTracker() *Tracker {
	return NewTracker(storage.NewMemoryStore[*Data](0))
}

func TestObserveAccumulatesStats(t *testing.T) {
	ctx := context.Background()
	tracker := newTestTracker()

	tracker.Observe(ctx, "u1", "wf-1", "what does this do?", "explain_workflow")
	data := tracker.Observe(ctx, "u1", "wf-1", "run it", "run_workflow")

	assert.Equal(t, 2, data.Stats.MessageCount)
	assert.Equal(t, 1, data.Stats.QuestionCount)
	assert.InDelta(t, 0.5, data.Stats.QuestionRatio, 0.001)
	assert.Equal(t, "run_workflow", data.Stats.LastIntent)
	assert.InDelta(t, 3.0, data.Stats.MeanWordCount, 0.001)
}

func TestObserveTracksFrequentIntent(t *testing.T) {
	ctx := context.Background()
	tracker := newTestTracker()

	tracker.Observe(ctx, "u1", "wf-1", "explain", "explain_workflow")
	tracker.Observe(ctx, "u1", "wf-1", "explain again", "explain_workflow")
	data := tracker.Observe(ctx, "u1", "wf-1", "run it", "run_workflow")

	assert.Equal(t, "explain_workflow", data.Stats.FrequentIntent)
	assert.Equal(t, 2, data.IntentCounts["explain_workflow"])
}

func TestFamiliarityGrowsAndCaps(t *testing.T) {
	ctx := context.Background()
	tracker := newTestTracker()

	for i := 0; i < 25; i++ {
		tracker.Observe(ctx, "u1", "wf-1", "hello", "greet")
	}
	assert.InDelta(t, 1.0, tracker.Familiarity(ctx, "u1", "wf-1"), 0.001, "familiarity caps at 1.0")
	assert.Zero(t, tracker.Familiarity(ctx, "u1", "wf-other"))
}

func TestMarkConceptLearnedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	tracker := newTestTracker()

	tracker.MarkConceptLearned(ctx, "u1", "filter")
	tracker.MarkConceptLearned(ctx, "u1", "filter")

	data := tracker.Get(ctx, "u1")
	assert.True(t, data.LearnedConcepts["filter"])
	require.Len(t, data.Adaptations, 1, "repeat marks must not append adaptations")
	assert.Equal(t, "concept:filter", data.Adaptations[0].Change)
}

func TestGetUnknownUserReturnsEmptyData(t *testing.T) {
	tracker := newTestTracker()
	data := tracker.Get(context.Background(), "stranger")
	require.NotNil(t, data)
	assert.Equal(t, "stranger", data.UserID)
	assert.Zero(t, data.Stats.MessageCount)
}
