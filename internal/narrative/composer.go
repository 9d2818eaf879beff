package narrative

import (
	"fmt"
	"time"

	"flownarrator/internal/logger"
	"flownarrator/pkg"
)

// StoryStructure is the narrative arc of one workflow at the requested
// tier and style.
type StoryStructure struct {
	Introduction string   `json:"introduction"`
	Steps        []string `json:"steps"`
	Conclusion   string   `json:"conclusion"`
}

// NodeNarrative is the per-node slice of the whole-workflow story.
type NodeNarrative struct {
	NodeID  string          `json:"node_id"`
	Title   string          `json:"title"`
	Text    pkg.TierContent `json:"text"`
	Analogy string          `json:"analogy,omitempty"`
}

// WorkflowNarrative is a whole-workflow natural-language account. One
// is produced per (workflowID, tier, style) request; it is regenerated
// on demand, never incrementally updated.
type WorkflowNarrative struct {
	WorkflowID       string          `json:"workflow_id"`
	Style            NarrativeStyle  `json:"style"`
	Tier             pkg.ExpertiseTier `json:"tier"`
	Overview         pkg.TierContent `json:"overview"`
	Story            StoryStructure  `json:"story"`
	NodeNarratives   []NodeNarrative `json:"node_narratives"`
	FlowExplanation  pkg.TierContent `json:"flow_explanation"`
	UsageContext     string          `json:"usage_context"`
	PerformanceNotes string          `json:"performance_notes"`
	GeneratedAt      time.Time       `json:"generated_at"`
	Fallback         bool            `json:"fallback,omitempty"`
}

// Customizations tune a composed narrative without changing its shape.
type Customizations struct {
	AudienceName string   `json:"audience_name,omitempty"`
	Emphasis     []string `json:"emphasis,omitempty"` // node ids to call out
}

// Composer builds whole-workflow narratives. It is stateless; construct
// one and share it.
type Composer struct{}

func NewComposer() *Composer {
	return &Composer{}
}

// ComposeNarrative builds the narrative for one workflow. It never
// panics past its boundary: any internal failure yields the fixed
// tier-complete fallback narrative instead of a partial object.
func (c *Composer) ComposeNarrative(graph *pkg.WorkflowGraph, tier pkg.ExpertiseTier, style NarrativeStyle, custom Customizations) (result *WorkflowNarrative) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn().
				Str("workflow_id", graphID(graph)).
				Any("panic", r).
				Msg("narrative composition failed, returning fallback narrative")
			result = fallbackNarrative(graphID(graph), tier, style)
		}
	}()

	if graph == nil {
		return fallbackNarrative("", tier, style)
	}

	narrative := &WorkflowNarrative{
		WorkflowID:  graph.ID,
		Style:       style,
		Tier:        tier,
		Overview:    composeOverview(graph),
		GeneratedAt: time.Now(),
	}

	template := templateFor(style)
	purpose := purposeOf(graph)

	narrative.Story.Introduction = template.Introduce(workflowName(graph), applyTerminology(purpose, tier))
	for _, node := range graph.Nodes {
		nodeNarrative := composeNodeNarrative(graph, node)
		narrative.NodeNarratives = append(narrative.NodeNarratives, nodeNarrative)
		narrative.Story.Steps = append(narrative.Story.Steps, template.DescribeStep(
			graph.NodeName(node.ID),
			nodeNarrative.Text.For(tier),
			stepContext(graph, node, custom),
		))
	}
	narrative.Story.Conclusion = template.Conclude(
		fmt.Sprintf("the %s has done its job", applyTerminology("workflow", tier)),
		"each run happens the same way without anyone having to remember the steps",
	)

	narrative.FlowExplanation = composeFlowExplanation(graph)
	narrative.UsageContext = fmt.Sprintf("Use this narrative when presenting %s to a %s audience.", workflowName(graph), tier)
	narrative.PerformanceNotes = performanceNotes(graph)
	return narrative
}

func composeOverview(graph *pkg.WorkflowGraph) pkg.TierContent {
	name := workflowName(graph)
	purpose := purposeOf(graph)
	steps := len(graph.Nodes)
	return pkg.NewTierContent(
		fmt.Sprintf("%s is a simple %d-step recipe: %s. Each step hands its result to the next one, like stations on an assembly line.", name, steps, purpose),
		fmt.Sprintf("%s is an automated process with %d steps that %s.", name, steps, purpose),
		fmt.Sprintf("%s is a %d-step workflow that %s. Data enters at the start and flows through each step in order.", name, steps, purpose),
		fmt.Sprintf("%s is a %d-node workflow: %s. Node order defines the data dependencies between stages.", name, steps, purpose),
		fmt.Sprintf("%s: %d-node DAG. Purpose: %s. Execution follows edge order; each node consumes upstream output.", name, steps, purpose),
	)
}

func composeNodeNarrative(graph *pkg.WorkflowGraph, node pkg.Node) NodeNarrative {
	name := graph.NodeName(node.ID)
	analogy, hasAnalogy := analogyFor(node.Type)

	narrative := NodeNarrative{
		NodeID: node.ID,
		Title:  name,
	}

	if hasAnalogy {
		narrative.Analogy = analogy.Comparison.For(pkg.TierNovice)
		narrative.Text = pkg.NewTierContent(
			fmt.Sprintf("%s %s.", name, analogy.Comparison.For(pkg.TierNovice)),
			fmt.Sprintf("%s %s.", name, analogy.Comparison.For(pkg.TierBeginner)),
			fmt.Sprintf("%s %s.", name, analogy.Comparison.For(pkg.TierIntermediate)),
			fmt.Sprintf("%s %s.", name, analogy.Comparison.For(pkg.TierAdvanced)),
			fmt.Sprintf("Node %s (type %s) %s.", node.ID, node.Type, analogy.Comparison.For(pkg.TierTechnical)),
		)
		return narrative
	}

	// Unregistered type: generic text, empty analogy fields.
	narrative.Text = pkg.NewTierContent(
		fmt.Sprintf("%s takes care of its own part of the process.", name),
		fmt.Sprintf("%s performs one step of the process.", name),
		fmt.Sprintf("%s performs its configured step in the workflow.", name),
		fmt.Sprintf("%s executes its configured operation within the workflow.", name),
		fmt.Sprintf("Node %s (type %s) executes its configured operation.", node.ID, node.Type),
	)
	return narrative
}

func composeFlowExplanation(graph *pkg.WorkflowGraph) pkg.TierContent {
	if len(graph.Edges) == 0 {
		return pkg.UniformTierContent("The workflow has a single step; there is no flow between steps to explain.")
	}
	first := graph.NodeName(graph.Edges[0].Source)
	last := graph.NodeName(graph.Edges[len(graph.Edges)-1].Target)
	hops := len(graph.Edges)
	return pkg.NewTierContent(
		fmt.Sprintf("Work starts at %s and gets passed along, step by step, until it reaches %s.", first, last),
		fmt.Sprintf("Results travel from %s through %d hand-offs until %s finishes the job.", first, hops, last),
		fmt.Sprintf("Data flows from %s across %d connections to %s; each connection carries one step's output to the next.", first, hops, last),
		fmt.Sprintf("Flow: %s through %d edges to %s. Each edge is a data dependency between adjacent nodes.", first, hops, last),
		fmt.Sprintf("Edge traversal: %d edges, source %s, sink %s. Each edge transfers the upstream output record stream downstream.", hops, first, last),
	)
}

func stepContext(graph *pkg.WorkflowGraph, node pkg.Node, custom Customizations) string {
	for _, emphasized := range custom.Emphasis {
		if emphasized == node.ID {
			return "Pay special attention to this step."
		}
	}
	for _, edge := range graph.Edges {
		if edge.Source == node.ID {
			return fmt.Sprintf("Its result moves on to %s.", graph.NodeName(edge.Target))
		}
	}
	return "This is where the workflow's journey ends."
}

func performanceNotes(graph *pkg.WorkflowGraph) string {
	actionCount := 0
	for _, node := range graph.Nodes {
		if categoryIsExternal(node.Type) {
			actionCount++
		}
	}
	if actionCount == 0 {
		return "All steps run in-process; run time scales with input volume."
	}
	return fmt.Sprintf("%d step(s) call external systems; overall run time is usually dominated by them.", actionCount)
}

func categoryIsExternal(nodeType string) bool {
	switch nodeType {
	case "action", "http", "email", "notify", "output", "export", "webhook":
		return true
	}
	return false
}

func purposeOf(graph *pkg.WorkflowGraph) string {
	if graph.Description != "" {
		return graph.Description
	}
	return "moves data through its steps to get a job done"
}

func workflowName(graph *pkg.WorkflowGraph) string {
	if graph.Name != "" {
		return graph.Name
	}
	return "This workflow"
}

func graphID(graph *pkg.WorkflowGraph) string {
	if graph == nil {
		return ""
	}
	return graph.ID
}

// fallbackNarrative is the fixed, generic but tier-complete narrative
// used when composition fails. Callers never receive a partial object.
func fallbackNarrative(workflowID string, tier pkg.ExpertiseTier, style NarrativeStyle) *WorkflowNarrative {
	return &WorkflowNarrative{
		WorkflowID: workflowID,
		Style:      style,
		Tier:       tier,
		Overview: pkg.NewTierContent(
			"This workflow moves information through a series of steps to get a job done.",
			"This workflow runs a series of automated steps on your data.",
			"This workflow processes data through its configured steps in order.",
			"This workflow executes its configured nodes in dependency order.",
			"Workflow DAG; nodes execute in edge order. Detailed narrative unavailable.",
		),
		Story: StoryStructure{
			Introduction: "This workflow takes input, works through its steps, and produces a result.",
			Steps:        []string{"Each step processes the output of the previous one."},
			Conclusion:   "When the last step finishes, the workflow's job is done.",
		},
		FlowExplanation:  pkg.UniformTierContent("Data flows from the first step to the last along the workflow's connections."),
		UsageContext:     "Generic narrative; detailed composition was unavailable.",
		PerformanceNotes: "No performance characteristics available.",
		GeneratedAt:      time.Now(),
		Fallback:         true,
	}
}
