package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flownarrator/internal/commentary"
	"flownarrator/internal/config"
	"flownarrator/internal/narrative"
	"flownarrator/internal/personalization"
	"flownarrator/internal/respond"
	"flownarrator/internal/storage"
	"flownarrator/internal/translator"
	"flownarrator/pkg"
)

func testGraph() *pkg.WorkflowGraph {
	return &pkg.WorkflowGraph{
		ID:          "wf-alerts",
		Name:        "Order Alerts",
		Description: "watches orders and flags the big ones",
		Nodes: []pkg.Node{
			{ID: "incoming", Type: "webhook", Data: map[string]any{"label": "New order"}},
			{ID: "big-only", Type: "filter", Data: map[string]any{"label": "Keep big orders"}},
			{ID: "notify", Type: "email", Data: map[string]any{"label": "Email the team"}},
		},
		Edges: []pkg.Edge{
			{Source: "incoming", Target: "big-only"},
			{Source: "big-only", Target: "notify"},
		},
	}
}

func testProfile() pkg.UserProfile {
	return pkg.UserProfile{
		UserID:     "u1",
		Tier:       pkg.TierBeginner,
		Assistance: pkg.AssistancePreferences{ContextAware: true},
	}
}

func testConfig() config.SessionConfig {
	return config.SessionConfig{
		HistoryCap:      100,
		ContextStackCap: 20,
		TTL:             time.Hour,
		MaxSuggestions:  3,
	}
}

func newTestManager(opts ...ManagerOption) (*Manager, *commentary.Engine) {
	engine := commentary.NewEngine(3)
	manager := NewManager(
		testConfig(),
		storage.NewMemoryStore[*ConversationSession](0),
		translator.New(64, time.Minute),
		narrative.NewComposer(),
		engine,
		personalization.NewTracker(storage.NewMemoryStore[*personalization.Data](0)),
		opts...,
	)
	return manager, engine
}

type failingResponder struct{}

func (failingResponder) Respond(ctx context.Context, prompt respond.Prompt) (string, error) {
	return "", fmt.Errorf("model unreachable")
}

func TestStartSessionSeedsContext(t *testing.T) {
	manager, _ := newTestManager()
	sess, err := manager.StartSession(context.Background(), "", testGraph(), testProfile())
	require.NoError(t, err)

	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, PhaseDiscovery, sess.Phase)
	assert.Equal(t, IntelligenceContextual, sess.Intelligence)
	assert.Equal(t, "wf-alerts", sess.Workflow.WorkflowID)
	assert.Equal(t, 3, sess.Workflow.NodeCount)
	assert.NotEmpty(t, sess.Workflow.Overview)
	assert.NotEmpty(t, sess.ContextStack, "session start seeds the context stack")
}

func TestDeriveIntelligence(t *testing.T) {
	cases := []struct {
		prefs pkg.AssistancePreferences
		want  IntelligenceLevel
	}{
		{pkg.AssistancePreferences{}, IntelligenceBasic},
		{pkg.AssistancePreferences{ContextAware: true}, IntelligenceContextual},
		{pkg.AssistancePreferences{Predictive: true}, IntelligencePredictive},
		{pkg.AssistancePreferences{Proactive: true, Predictive: true}, IntelligenceProactive},
		{pkg.AssistancePreferences{AdaptToHabits: true, Proactive: true}, IntelligenceAdaptive},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, deriveIntelligence(tc.prefs))
	}
}

func TestProcessMessageWellFormed(t *testing.T) {
	manager, _ := newTestManager()
	ctx := context.Background()
	sess, err := manager.StartSession(ctx, "", testGraph(), testProfile())
	require.NoError(t, err)

	result := manager.ProcessMessage(ctx, sess.ID, "Can you explain this workflow?", MessageContext{})
	require.NotNil(t, result)
	assert.NotEmpty(t, result.Response)
	assert.Equal(t, PhaseExploration, result.Phase)
	assert.Greater(t, result.Confidence, 0.0)
	assert.LessOrEqual(t, len(result.Suggestions), 3)
	assert.LessOrEqual(t, len(result.Actions), 3)
	assert.LessOrEqual(t, len(result.FollowUp), 3)

	stored, err := manager.Session(ctx, sess.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Turns, 2, "one user turn and one assistant turn")
	assert.Equal(t, "user", stored.Turns[0].Speaker)
	assert.Equal(t, "assistant", stored.Turns[1].Speaker)
}

func TestProcessMessageUnknownSession(t *testing.T) {
	manager, _ := newTestManager()
	result := manager.ProcessMessage(context.Background(), "ghost", "hello", MessageContext{})
	require.NotNil(t, result)
	assert.InDelta(t, 0.2, result.Confidence, 0.001)
	assert.NotEmpty(t, result.Response)
	assert.NotEmpty(t, result.Suggestions)
}

func TestProcessMessageResponderFailure(t *testing.T) {
	manager, _ := newTestManager(WithResponder(failingResponder{}))
	ctx := context.Background()
	sess, err := manager.StartSession(ctx, "", testGraph(), testProfile())
	require.NoError(t, err)

	result := manager.ProcessMessage(ctx, sess.ID, "explain this workflow", MessageContext{})
	require.NotNil(t, result)
	assert.NotEmpty(t, result.Response, "failures still yield a well-formed reply")
	assert.InDelta(t, 0.3, result.Confidence, 0.001)
}

func TestTurnHistoryCap(t *testing.T) {
	manager, _ := newTestManager()
	ctx := context.Background()
	sess, err := manager.StartSession(ctx, "", testGraph(), testProfile())
	require.NoError(t, err)

	for i := 0; i < 60; i++ {
		manager.ProcessMessage(ctx, sess.ID, fmt.Sprintf("message number %d please explain", i), MessageContext{})
	}

	stored, err := manager.Session(ctx, sess.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Turns, 100, "history is capped at exactly 100 turns")

	// The most recent turns survive in original order.
	last := stored.Turns[len(stored.Turns)-2]
	assert.Equal(t, "user", last.Speaker)
	assert.Contains(t, last.Content, "message number 59")
	for i := 1; i < len(stored.Turns); i++ {
		assert.False(t, stored.Turns[i].Timestamp.Before(stored.Turns[i-1].Timestamp))
	}
}

func TestContextStackEvictsOldest(t *testing.T) {
	sess := &ConversationSession{}
	for i := 0; i < 30; i++ {
		sess.pushContext("intent", fmt.Sprintf("value-%d", i), 20)
	}
	require.Len(t, sess.ContextStack, 20)
	assert.Equal(t, "value-10", sess.ContextStack[0].Value, "oldest entries are evicted first")
	assert.Equal(t, "value-29", sess.ContextStack[19].Value)
}

func TestPhaseTransitions(t *testing.T) {
	assert.Equal(t, PhaseExploration, advancePhase(PhaseDiscovery, PhaseExploration))
	assert.Equal(t, PhaseExploration, advancePhase(PhaseDiscovery, PhaseExecution), "execution is reached via exploration")
	assert.Equal(t, PhaseExecution, advancePhase(PhaseExploration, PhaseExecution))
	assert.Equal(t, PhaseTroubleshooting, advancePhase(PhaseExecution, PhaseTroubleshooting))
	assert.Equal(t, PhaseLearning, advancePhase(PhaseDiscovery, PhaseLearning), "special phases are reachable from anywhere")
	assert.Equal(t, PhaseExecution, advancePhase(PhaseExecution, ""))
}

func TestSelectStrategy(t *testing.T) {
	assert.Equal(t, respond.StrategyExplain, SelectStrategy(PhaseDiscovery, "explain_workflow"))
	assert.Equal(t, respond.StrategyTroubleshoot, SelectStrategy(PhaseExploration, "troubleshoot"))
	assert.Equal(t, respond.StrategyNarrate, SelectStrategy(PhaseExecution, "unknown_intent"))
	assert.Equal(t, respond.StrategyEducate, SelectStrategy(PhaseLearning, ""))
	assert.Equal(t, respond.StrategyExplain, SelectStrategy(PhaseDiscovery, ""))
}

func TestProcessMessageNodeQuestionUsesTranslation(t *testing.T) {
	manager, _ := newTestManager()
	ctx := context.Background()
	sess, err := manager.StartSession(ctx, "", testGraph(), testProfile())
	require.NoError(t, err)

	result := manager.ProcessMessage(ctx, sess.ID, "what does the Keep big orders step do?", MessageContext{})
	require.NotNil(t, result)
	assert.NotEmpty(t, result.Response)

	stored, err := manager.Session(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "big-only", stored.Workflow.FocusedNode, "node mentions move the focus")
}

func TestProcessMessageStatusWithActiveRun(t *testing.T) {
	manager, engine := newTestManager()
	ctx := context.Background()
	sess, err := manager.StartSession(ctx, "", testGraph(), testProfile())
	require.NoError(t, err)

	run := engine.StartVisualization("wf-alerts", "u1", "", pkg.TierBeginner, commentary.IntensityBalanced)
	engine.ProcessEvent(run.ID, pkg.ExecutionEvent{EventType: pkg.EventWorkflowStarted, Data: map[string]any{"total_steps": 3}})
	engine.ProcessEvent(run.ID, pkg.ExecutionEvent{EventType: pkg.EventNodeCompleted, NodeID: "incoming"})

	active := true
	require.NoError(t, manager.UpdateWorkflowContext(ctx, sess.ID, WorkflowContextUpdate{
		RunActive:    &active,
		RunSessionID: &run.ID,
	}))

	result := manager.ProcessMessage(ctx, sess.ID, "how far along is it? any status yet?", MessageContext{})
	require.NotNil(t, result)
	assert.Contains(t, result.Response, "1 of 3")
}

func TestUpdateWorkflowContext(t *testing.T) {
	manager, _ := newTestManager()
	ctx := context.Background()
	sess, err := manager.StartSession(ctx, "", testGraph(), testProfile())
	require.NoError(t, err)

	focused := "notify"
	require.NoError(t, manager.UpdateWorkflowContext(ctx, sess.ID, WorkflowContextUpdate{FocusedNode: &focused}))

	stored, err := manager.Session(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "notify", stored.Workflow.FocusedNode)

	assert.Error(t, manager.UpdateWorkflowContext(ctx, "ghost", WorkflowContextUpdate{}))
}

func TestEndSession(t *testing.T) {
	manager, _ := newTestManager()
	ctx := context.Background()
	sess, err := manager.StartSession(ctx, "", testGraph(), testProfile())
	require.NoError(t, err)

	manager.ProcessMessage(ctx, sess.ID, "hello there", MessageContext{})

	ended, err := manager.EndSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, ended.ID)

	_, err = manager.Session(ctx, sess.ID)
	assert.Error(t, err, "ended sessions are gone from the store")
}
