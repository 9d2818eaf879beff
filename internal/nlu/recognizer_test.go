package nlu

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flownarrator/pkg"
)

func testGraph() *pkg.WorkflowGraph {
	return &pkg.WorkflowGraph{
		ID:   "wf-1",
		Name: "Order Alerts",
		Nodes: []pkg.Node{
			{ID: "new-order", Type: "webhook", Data: map[string]any{"label": "New order received"}},
			{ID: "big-only", Type: "filter", Data: map[string]any{"label": "Keep big orders"}},
		},
		Edges: []pkg.Edge{{Source: "new-order", Target: "big-only"}},
	}
}

func TestRecognizeIntents(t *testing.T) {
	recognizer := NewKeywordRecognizer()
	ctx := context.Background()

	cases := []struct {
		text string
		want string
	}{
		{"Can you explain this workflow to me?", IntentExplainWorkflow},
		{"something is broken, I keep seeing an error", IntentTroubleshoot},
		{"please run it now", IntentRunWorkflow},
		{"how far along is it? any status yet?", IntentExecutionStatus},
		{"can you make this faster?", IntentOptimize},
		{"teach me how filters work", IntentLearnConcept},
	}
	for _, tc := range cases {
		result, err := recognizer.Recognize(ctx, tc.text, nil)
		require.NoError(t, err)
		assert.Equal(t, tc.want, result.PrimaryIntent, "text: %s", tc.text)
	}
}

func TestRecognizeEmptyInputDefaultsToHelp(t *testing.T) {
	recognizer := NewKeywordRecognizer()
	result, err := recognizer.Recognize(context.Background(), "", nil)
	require.NoError(t, err)

	assert.Equal(t, IntentHelp, result.PrimaryIntent)
	assert.InDelta(t, 0.2, result.ImportanceScore, 0.001)
	assert.Empty(t, result.Intents)
}

func TestRecognizeConfidenceGrowsWithMatches(t *testing.T) {
	recognizer := NewKeywordRecognizer()
	ctx := context.Background()

	one, err := recognizer.Recognize(ctx, "there is an error", nil)
	require.NoError(t, err)
	two, err := recognizer.Recognize(ctx, "there is an error and it failed", nil)
	require.NoError(t, err)

	require.NotEmpty(t, one.Intents)
	require.NotEmpty(t, two.Intents)
	assert.Greater(t, two.Intents[0].Confidence, one.Intents[0].Confidence)
}

func TestRecognizeImportanceScore(t *testing.T) {
	recognizer := NewKeywordRecognizer()
	result, err := recognizer.Recognize(context.Background(), "there is an error", nil)
	require.NoError(t, err)

	require.Equal(t, IntentTroubleshoot, result.PrimaryIntent)
	// single keyword: confidence 0.6, troubleshoot priority 0.9
	assert.InDelta(t, 0.6*0.6+0.9*0.4, result.ImportanceScore, 0.001)
}

func TestRecognizeNodeEntities(t *testing.T) {
	recognizer := NewKeywordRecognizer()
	result, err := recognizer.Recognize(context.Background(), "what does the Keep big orders step do?", testGraph())
	require.NoError(t, err)

	var nodeEntity *Entity
	for i := range result.Entities {
		if result.Entities[i].Type == "node" {
			nodeEntity = &result.Entities[i]
		}
	}
	require.NotNil(t, nodeEntity, "label mention should yield a node entity")
	assert.Equal(t, "big-only", nodeEntity.Value)
	assert.Equal(t, "filter", nodeEntity.Metadata["node_type"])
}

func TestRecognizeTierEntities(t *testing.T) {
	recognizer := NewKeywordRecognizer()
	result, err := recognizer.Recognize(context.Background(), "give me the technical overview", testGraph())
	require.NoError(t, err)

	found := false
	for _, entity := range result.Entities {
		if entity.Type == "expertise_tier" && entity.Value == "technical" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestRecognizeIsDeterministic(t *testing.T) {
	recognizer := NewKeywordRecognizer()
	ctx := context.Background()

	first, err := recognizer.Recognize(ctx, "explain the workflow", testGraph())
	require.NoError(t, err)
	second, err := recognizer.Recognize(ctx, "explain the workflow", testGraph())
	require.NoError(t, err)

	assert.Equal(t, first.PrimaryIntent, second.PrimaryIntent)
	assert.Equal(t, first.ImportanceScore, second.ImportanceScore)
	assert.Equal(t, len(first.Intents), len(second.Intents))
}
