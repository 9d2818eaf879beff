package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierContentCompleteness(t *testing.T) {
	content := NewTierContent("a", "b", "c", "d", "e")
	require.NoError(t, content.Validate())
	for _, tier := range AllTiers {
		assert.NotEmpty(t, content.For(tier))
	}
}

func TestTierContentValidateRejectsGaps(t *testing.T) {
	content := TierContent{
		TierNovice:       "a",
		TierIntermediate: "c",
	}
	assert.Error(t, content.Validate())
}

func TestTierContentFallsBackToIntermediate(t *testing.T) {
	content := TierContent{TierIntermediate: "middle"}
	assert.Equal(t, "middle", content.For(TierTechnical))
	assert.Equal(t, "middle", content.For(TierNovice))
}

func TestUniformTierContent(t *testing.T) {
	content := UniformTierContent("same everywhere")
	require.NoError(t, content.Validate())
	for _, tier := range AllTiers {
		assert.Equal(t, "same everywhere", content.For(tier))
	}
}

func TestParseTier(t *testing.T) {
	assert.Equal(t, TierNovice, ParseTier("novice"))
	assert.Equal(t, TierTechnical, ParseTier("technical"))
	assert.Equal(t, TierIntermediate, ParseTier("expert"))
	assert.Equal(t, TierIntermediate, ParseTier(""))
}

func TestParseWorkflowGraph(t *testing.T) {
	raw := `{
		"id": "wf-1",
		"name": "Test Flow",
		"nodes": [
			{"id": "a", "type": "webhook", "data": {"label": "Incoming"}},
			{"id": "b", "type": "filter"}
		],
		"edges": [{"source": "a", "target": "b"}]
	}`
	graph, err := ParseWorkflowGraph([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "wf-1", graph.ID)
	assert.Len(t, graph.Nodes, 2)
	assert.Len(t, graph.Edges, 1)

	assert.Equal(t, "Incoming", graph.NodeName("a"))
	assert.Equal(t, "b", graph.NodeName("b"), "nodes without a label fall back to id")
	assert.Equal(t, "missing", graph.NodeName("missing"))

	require.NotNil(t, graph.FindNode("a"))
	assert.Nil(t, graph.FindNode("nope"))
}

func TestParseWorkflowGraphRejectsMissingID(t *testing.T) {
	_, err := ParseWorkflowGraph([]byte(`{"name": "no id"}`))
	assert.Error(t, err)
}

func TestParseWorkflowGraphRejectsBadJSON(t *testing.T) {
	_, err := ParseWorkflowGraph([]byte(`{not json`))
	assert.Error(t, err)
}
