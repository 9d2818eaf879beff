package narrative

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flownarrator/pkg"
)

func twoStepGraph() *pkg.WorkflowGraph {
	return &pkg.WorkflowGraph{
		ID:          "wf-two",
		Name:        "Lead Screening",
		Description: "checks new leads and keeps only the promising ones",
		Nodes: []pkg.Node{
			{ID: "new-lead", Type: "starter", Data: map[string]any{"label": "New lead arrives"}},
			{ID: "screen", Type: "filter", Data: map[string]any{"label": "Screen leads"}},
		},
		Edges: []pkg.Edge{{Source: "new-lead", Target: "screen"}},
	}
}

func TestComposeNarrativeNoviceTwoStep(t *testing.T) {
	composer := NewComposer()
	narrative := composer.ComposeNarrative(twoStepGraph(), pkg.TierNovice, StyleCasual, Customizations{})
	require.NotNil(t, narrative)
	require.False(t, narrative.Fallback)

	overview := narrative.Overview.For(pkg.TierNovice)
	assert.Contains(t, overview, "2-step", "novice overview states the step count plainly")

	require.Len(t, narrative.NodeNarratives, 2)
	filterText := narrative.NodeNarratives[1].Text.For(pkg.TierNovice)
	assert.Contains(t, filterText, "keeps", "novice filter text uses the keep/drop framing")
	assert.NotContains(t, strings.ToLower(filterText), "predicate")
}

func TestComposeNarrativeTechnicalNamesNodeTypes(t *testing.T) {
	composer := NewComposer()
	narrative := composer.ComposeNarrative(twoStepGraph(), pkg.TierTechnical, StyleProfessional, Customizations{})
	require.NotNil(t, narrative)

	filterText := narrative.NodeNarratives[1].Text.For(pkg.TierTechnical)
	assert.Contains(t, filterText, "filter", "technical text names the node type")
	assert.Contains(t, filterText, "screen", "technical text names the node id")
}

func TestComposeNarrativeTierComplete(t *testing.T) {
	composer := NewComposer()
	narrative := composer.ComposeNarrative(twoStepGraph(), pkg.TierIntermediate, StyleEducational, Customizations{})
	require.NotNil(t, narrative)

	assert.NoError(t, narrative.Overview.Validate())
	assert.NoError(t, narrative.FlowExplanation.Validate())
	for _, node := range narrative.NodeNarratives {
		assert.NoError(t, node.Text.Validate(), "node %s", node.NodeID)
	}
	assert.NotEmpty(t, narrative.Story.Introduction)
	assert.Len(t, narrative.Story.Steps, 2)
	assert.NotEmpty(t, narrative.Story.Conclusion)
}

func TestComposeNarrativeUnknownTypeDegrades(t *testing.T) {
	graph := &pkg.WorkflowGraph{
		ID:    "wf-odd",
		Name:  "Oddball",
		Nodes: []pkg.Node{{ID: "x", Type: "quantum-blender"}},
	}
	narrative := NewComposer().ComposeNarrative(graph, pkg.TierNovice, StyleCasual, Customizations{})
	require.NotNil(t, narrative)
	require.Len(t, narrative.NodeNarratives, 1)

	assert.Empty(t, narrative.NodeNarratives[0].Analogy, "unregistered types carry no analogy")
	assert.NoError(t, narrative.NodeNarratives[0].Text.Validate())
}

func TestComposeNarrativeNilGraphFallsBack(t *testing.T) {
	narrative := NewComposer().ComposeNarrative(nil, pkg.TierNovice, StyleCasual, Customizations{})
	require.NotNil(t, narrative)
	assert.True(t, narrative.Fallback)
	assert.NoError(t, narrative.Overview.Validate())
	assert.NoError(t, narrative.FlowExplanation.Validate())
	assert.NotEmpty(t, narrative.Story.Introduction)
}

func TestComposeNarrativeStylesDiffer(t *testing.T) {
	composer := NewComposer()
	graph := twoStepGraph()

	casual := composer.ComposeNarrative(graph, pkg.TierBeginner, StyleCasual, Customizations{})
	formal := composer.ComposeNarrative(graph, pkg.TierBeginner, StyleProfessional, Customizations{})

	assert.NotEqual(t, casual.Story.Introduction, formal.Story.Introduction)
	assert.Equal(t, casual.Overview, formal.Overview, "the overview is style-independent")
}

func TestComposeNarrativeEmphasis(t *testing.T) {
	narrative := NewComposer().ComposeNarrative(twoStepGraph(), pkg.TierBeginner, StyleCasual, Customizations{
		Emphasis: []string{"screen"},
	})
	require.Len(t, narrative.Story.Steps, 2)
	assert.Contains(t, narrative.Story.Steps[1], "special attention")
}

func TestApplyTerminology(t *testing.T) {
	novice := applyTerminology("the workflow runs", pkg.TierNovice)
	assert.NotContains(t, novice, "workflow", "novice text swaps jargon for plain words")

	technical := applyTerminology("the workflow runs", pkg.TierTechnical)
	assert.Contains(t, technical, "workflow")
}

func TestAnalogyFor(t *testing.T) {
	analogy, ok := analogyFor("filter")
	require.True(t, ok)
	assert.NoError(t, analogy.Comparison.Validate())

	_, ok = analogyFor("quantum-blender")
	assert.False(t, ok)

	aliased, ok := analogyFor("webhook")
	require.True(t, ok)
	assert.Equal(t, analogies["trigger"].Comparison, aliased.Comparison)
}
