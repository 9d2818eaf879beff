package commentary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flownarrator/pkg"
)

func startedSession(t *testing.T, engine *Engine) *ExecutionSession {
	t.Helper()
	return engine.StartVisualization("wf-1", "u1", "run-1", pkg.TierNovice, IntensityRich)
}

func TestPhaseSequenceThroughCompletion(t *testing.T) {
	engine := NewEngine(3)
	session := startedSession(t, engine)
	assert.Equal(t, PhasePreExecution, session.Phase)

	events := []pkg.ExecutionEvent{
		{EventType: pkg.EventWorkflowStarted, Data: map[string]any{"total_steps": 3}},
		{EventType: pkg.EventNodeCompleted, NodeID: "a"},
		{EventType: pkg.EventNodeStarted, NodeID: "b"},
		{EventType: pkg.EventNodeCompleted, NodeID: "b"},
		{EventType: pkg.EventWorkflowCompleted},
	}
	wantPhases := []ExecutionPhase{
		PhaseRunning,
		PhaseStepTransition,
		PhaseRunning,
		PhaseStepTransition,
		PhaseCompleted,
	}
	for i, event := range events {
		commentary := engine.ProcessEvent("run-1", event)
		require.NotNil(t, commentary, "event %d", i)
		assert.Equal(t, wantPhases[i], session.Phase, "event %d", i)
	}
	assert.False(t, session.Active)
	assert.True(t, session.Phase.Terminal())
}

func TestProgressNeverRegresses(t *testing.T) {
	engine := NewEngine(3)
	session := startedSession(t, engine)

	engine.ProcessEvent("run-1", pkg.ExecutionEvent{EventType: pkg.EventWorkflowStarted, Data: map[string]any{"total_steps": 4}})
	engine.ProcessEvent("run-1", pkg.ExecutionEvent{EventType: pkg.EventNodeCompleted, Data: map[string]any{"completed_steps": 1}})
	engine.ProcessEvent("run-1", pkg.ExecutionEvent{EventType: pkg.EventNodeCompleted, Data: map[string]any{"completed_steps": 2}})
	// A stale report must not pull the bar backwards.
	engine.ProcessEvent("run-1", pkg.ExecutionEvent{EventType: pkg.EventDataTransferred, Data: map[string]any{"completed_steps": 1}})
	assert.Equal(t, 2, session.Progress.CompletedSteps)

	engine.ProcessEvent("run-1", pkg.ExecutionEvent{EventType: pkg.EventNodeCompleted, Data: map[string]any{"completed_steps": 3}})
	assert.Equal(t, 3, session.Progress.CompletedSteps)
	assert.Equal(t, 4, session.Progress.TotalSteps)
}

func TestProgressAutoIncrementsOnNodeCompleted(t *testing.T) {
	engine := NewEngine(3)
	session := startedSession(t, engine)

	engine.ProcessEvent("run-1", pkg.ExecutionEvent{EventType: pkg.EventWorkflowStarted, Data: map[string]any{"total_steps": 2}})
	engine.ProcessEvent("run-1", pkg.ExecutionEvent{EventType: pkg.EventNodeCompleted, NodeID: "a"})
	engine.ProcessEvent("run-1", pkg.ExecutionEvent{EventType: pkg.EventNodeCompleted, NodeID: "b"})

	assert.Equal(t, 2, session.Progress.CompletedSteps)
	assert.Equal(t, "b", session.Progress.CurrentStep)
}

func TestCancelStopsNarration(t *testing.T) {
	engine := NewEngine(3)
	session := startedSession(t, engine)

	engine.ProcessEvent("run-1", pkg.ExecutionEvent{EventType: pkg.EventWorkflowStarted})
	require.True(t, engine.Cancel("run-1"))
	assert.Equal(t, PhaseCancelled, session.Phase)
	assert.False(t, session.Active)

	assert.Nil(t, engine.ProcessEvent("run-1", pkg.ExecutionEvent{EventType: pkg.EventNodeCompleted}))
	assert.False(t, engine.Cancel("run-1"), "cancel is not re-entrant on terminal sessions")
}

func TestUnknownSessionReturnsNil(t *testing.T) {
	engine := NewEngine(3)
	assert.Nil(t, engine.ProcessEvent("ghost", pkg.ExecutionEvent{EventType: pkg.EventWorkflowStarted}))
	assert.Nil(t, engine.SnapshotOf("ghost"))
	assert.False(t, engine.Cancel("ghost"))
}

func TestUnregisteredEventTypeGetsGenericCommentary(t *testing.T) {
	engine := NewEngine(3)
	startedSession(t, engine)

	commentary := engine.ProcessEvent("run-1", pkg.ExecutionEvent{EventType: "cosmic_ray_detected"})
	require.NotNil(t, commentary)
	assert.NoError(t, commentary.Text.Validate())
	assert.Contains(t, commentary.Text.For(pkg.TierNovice), "cosmic_ray_detected")
}

func TestCommentaryTierComplete(t *testing.T) {
	engine := NewEngine(3)
	startedSession(t, engine)

	events := []pkg.ExecutionEventType{
		pkg.EventWorkflowStarted,
		pkg.EventNodeStarted,
		pkg.EventNodeCompleted,
		pkg.EventErrorOccurred,
		pkg.EventErrorResolved,
		pkg.EventMilestoneReached,
		pkg.EventWorkflowCompleted,
	}
	for _, eventType := range events {
		commentary := engine.ProcessEvent("run-1", pkg.ExecutionEvent{EventType: eventType})
		require.NotNil(t, commentary, "event %s", eventType)
		assert.NoError(t, commentary.Text.Validate(), "event %s", eventType)
		assert.NotEmpty(t, commentary.Tone, "event %s", eventType)
	}
}

func TestErrorEventsUseCautiousTone(t *testing.T) {
	engine := NewEngine(3)
	startedSession(t, engine)

	engine.ProcessEvent("run-1", pkg.ExecutionEvent{EventType: pkg.EventWorkflowStarted})
	commentary := engine.ProcessEvent("run-1", pkg.ExecutionEvent{EventType: pkg.EventErrorOccurred, Data: map[string]any{"error": "timeout"}})
	require.NotNil(t, commentary)
	assert.Equal(t, "cautious", commentary.Tone)
}

func TestIntensityTrimsDecoration(t *testing.T) {
	engine := NewEngine(3)
	session := engine.StartVisualization("wf-1", "u1", "run-min", pkg.TierNovice, IntensityMinimal)

	commentary := engine.ProcessEvent("run-min", pkg.ExecutionEvent{EventType: pkg.EventWorkflowStarted})
	require.NotNil(t, commentary)
	assert.Empty(t, commentary.Tips, "minimal intensity drops tips")
	assert.LessOrEqual(t, len(commentary.Interactive.StatusChips), 1)
	assert.Equal(t, IntensityMinimal, session.Intensity)
}

func TestAdjustIntensity(t *testing.T) {
	engine := NewEngine(3)
	session := engine.StartVisualization("wf-1", "u1", "run-adj", pkg.TierNovice, IntensityBalanced)

	engine.AdjustIntensity("run-adj", "dismissed")
	assert.Equal(t, IntensityMinimal, session.Intensity)

	engine.AdjustIntensity("run-adj", "asked_more")
	assert.Equal(t, IntensityBalanced, session.Intensity)
	engine.AdjustIntensity("run-adj", "asked_more")
	assert.Equal(t, IntensityRich, session.Intensity)
}

func TestSnapshot(t *testing.T) {
	engine := NewEngine(3)
	startedSession(t, engine)

	engine.ProcessEvent("run-1", pkg.ExecutionEvent{EventType: pkg.EventWorkflowStarted, Data: map[string]any{"total_steps": 2}})
	engine.ProcessEvent("run-1", pkg.ExecutionEvent{EventType: pkg.EventNodeCompleted, NodeID: "a"})

	snapshot := engine.SnapshotOf("run-1")
	require.NotNil(t, snapshot)
	assert.Equal(t, "run-1", snapshot.SessionID)
	assert.Equal(t, 2, snapshot.EventCount)
	assert.Equal(t, 1, snapshot.Progress.CompletedSteps)
	assert.InDelta(t, 50.0, snapshot.Progress.Percent(), 0.01)
	assert.True(t, snapshot.Active)
}

func TestPhasePathfinding(t *testing.T) {
	// A workflow_completed arriving mid step transition must still land
	// on COMPLETED via the legal intermediate phases.
	path := PhaseStepTransition.pathTo(PhaseCompleted)
	require.NotNil(t, path)
	assert.Equal(t, PhaseCompleted, path[len(path)-1])

	assert.Nil(t, PhaseCompleted.pathTo(PhaseRunning), "terminal phases have no outgoing path")
}

func TestCanTransitionToCancelledFromAnywhere(t *testing.T) {
	for _, phase := range []ExecutionPhase{PhasePreExecution, PhaseRunning, PhaseWaitingInput, PhaseErrorHandling} {
		assert.True(t, phase.CanTransition(PhaseCancelled), "from %s", phase)
	}
	assert.False(t, PhaseCompleted.CanTransition(PhaseCancelled))
}
