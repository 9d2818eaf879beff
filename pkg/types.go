package pkg

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

// Core domain types for workflow narration

// ExpertiseTier governs vocabulary and depth of generated text
type ExpertiseTier string

const (
	TierNovice       ExpertiseTier = "novice"
	TierBeginner     ExpertiseTier = "beginner"
	TierIntermediate ExpertiseTier = "intermediate"
	TierAdvanced     ExpertiseTier = "advanced"
	TierTechnical    ExpertiseTier = "technical"
)

// AllTiers is the closed tier set, in increasing depth order.
var AllTiers = []ExpertiseTier{
	TierNovice,
	TierBeginner,
	TierIntermediate,
	TierAdvanced,
	TierTechnical,
}

// ParseTier normalizes a tier string, defaulting to intermediate for
// unknown values.
func ParseTier(s string) ExpertiseTier {
	for _, tier := range AllTiers {
		if string(tier) == s {
			return tier
		}
	}
	return TierIntermediate
}

// TierContent is a total function tier -> text. Every tier in the closed
// set must carry a non-empty value; completeness is enforced at
// construction, not by convention.
type TierContent map[ExpertiseTier]string

// NewTierContent builds a TierContent from one string per tier, ordered
// novice..technical.
func NewTierContent(novice, beginner, intermediate, advanced, technical string) TierContent {
	return TierContent{
		TierNovice:       novice,
		TierBeginner:     beginner,
		TierIntermediate: intermediate,
		TierAdvanced:     advanced,
		TierTechnical:    technical,
	}
}

// UniformTierContent repeats the same text for every tier. Used by
// fallback paths where tier-specific wording is unavailable.
func UniformTierContent(text string) TierContent {
	content := make(TierContent, len(AllTiers))
	for _, tier := range AllTiers {
		content[tier] = text
	}
	return content
}

// Validate reports the first missing or empty tier entry.
func (c TierContent) Validate() error {
	for _, tier := range AllTiers {
		if c[tier] == "" {
			return fmt.Errorf("tier content missing entry for %q", tier)
		}
	}
	return nil
}

// For returns the text for the given tier, falling back to intermediate
// when the requested tier has no entry.
func (c TierContent) For(tier ExpertiseTier) string {
	if text, ok := c[tier]; ok && text != "" {
		return text
	}
	return c[TierIntermediate]
}

// ----------------------------------------------------
// ================ Workflow graph ================

// Node is a single element of a visual workflow graph
type Node struct {
	ID   string         `json:"id"`
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// Edge connects two nodes in a workflow graph
type Edge struct {
	Source string         `json:"source"`
	Target string         `json:"target"`
	Data   map[string]any `json:"data,omitempty"`
}

// WorkflowGraph is the immutable input to the narration engine. It is
// owned by the external workflow store; nothing here mutates it.
type WorkflowGraph struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Nodes       []Node `json:"nodes"`
	Edges       []Edge `json:"edges"`
}

// ParseWorkflowGraph decodes a workflow graph from its JSON wire shape.
func ParseWorkflowGraph(data []byte) (*WorkflowGraph, error) {
	var graph WorkflowGraph
	if err := sonic.Unmarshal(data, &graph); err != nil {
		return nil, fmt.Errorf("failed to parse workflow graph: %w", err)
	}
	if graph.ID == "" {
		return nil, fmt.Errorf("workflow graph requires an id")
	}
	return &graph, nil
}

// FindNode returns the node with the given id, or nil.
func (g *WorkflowGraph) FindNode(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// NodeName returns a display name for a node: data.label when present,
// otherwise the node id.
func (g *WorkflowGraph) NodeName(id string) string {
	node := g.FindNode(id)
	if node == nil {
		return id
	}
	if label, ok := node.Data["label"].(string); ok && label != "" {
		return label
	}
	return node.ID
}

// ----------------------------------------------------
// ================ Execution events ================

// ExecutionEventType is an open vocabulary of workflow/node lifecycle
// plus data, decision, error and milestone events.
type ExecutionEventType string

const (
	EventWorkflowStarted   ExecutionEventType = "workflow_started"
	EventWorkflowCompleted ExecutionEventType = "workflow_completed"
	EventWorkflowFailed    ExecutionEventType = "workflow_failed"
	EventNodeStarted       ExecutionEventType = "node_started"
	EventNodeCompleted     ExecutionEventType = "node_completed"
	EventNodeFailed        ExecutionEventType = "node_failed"
	EventDataTransferred   ExecutionEventType = "data_transferred"
	EventDecisionMade      ExecutionEventType = "decision_made"
	EventErrorOccurred     ExecutionEventType = "error_occurred"
	EventErrorResolved     ExecutionEventType = "error_resolved"
	EventMilestoneReached  ExecutionEventType = "milestone_reached"
	EventUserInputRequired ExecutionEventType = "user_input_required"
	EventUserInputReceived ExecutionEventType = "user_input_received"
	EventExecutionCancel   ExecutionEventType = "execution_cancelled"
)

// ExecutionEvent is one observation from a running workflow
type ExecutionEvent struct {
	EventID    string             `json:"event_id"`
	Timestamp  time.Time          `json:"timestamp"`
	WorkflowID string             `json:"workflow_id"`
	NodeID     string             `json:"node_id,omitempty"`
	EventType  ExecutionEventType `json:"event_type"`
	Phase      string             `json:"phase,omitempty"`
	Data       map[string]any     `json:"data,omitempty"`
	Metadata   map[string]any     `json:"metadata,omitempty"`
}

// ----------------------------------------------------
// ================ User profile ================

// CommunicationStyle flags tune generated phrasing
type CommunicationStyle struct {
	Formal       bool `json:"formal"`
	Encouraging  bool `json:"encouraging"`
	DetailHeavy  bool `json:"detail_heavy"`
	UsesAnalogy  bool `json:"uses_analogy"`
	PrefersLists bool `json:"prefers_lists"`
}

// AssistancePreferences control how far ahead the engine reasons for
// the user.
type AssistancePreferences struct {
	ContextAware  bool `json:"context_aware"`
	Predictive    bool `json:"predictive"`
	Proactive     bool `json:"proactive"`
	AdaptToHabits bool `json:"adapt_to_habits"`
}

// UserProfile is the per-user input consumed at session start
type UserProfile struct {
	UserID      string                `json:"user_id"`
	Tier        ExpertiseTier         `json:"tier"`
	Style       CommunicationStyle    `json:"style"`
	Assistance  AssistancePreferences `json:"assistance"`
	Personalize bool                  `json:"personalize"`
	Verbosity   string                `json:"verbosity,omitempty"`
}

// ----------------------------------------------------
// ================ Suggested actions ================

// SuggestedAction is a UI-actionable hint surfaced alongside responses
// and commentary. The presentation layer decides how to render it.
type SuggestedAction struct {
	ID      string         `json:"id"`
	Label   string         `json:"label"`
	Kind    string         `json:"kind"` // navigate, explain, retry, configure
	Payload map[string]any `json:"payload,omitempty"`
}
