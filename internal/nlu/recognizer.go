package nlu

import (
	"context"
	"strings"
	"time"

	"flownarrator/pkg"
)

// Intent represents a detected user intent
type Intent struct {
	Name       string         `json:"name"`
	Confidence float64        `json:"confidence"`
	Priority   float64        `json:"priority"`
	Metadata   map[string]any `json:"metadata"`
}

// Entity represents an extracted entity from user input
type Entity struct {
	Type       string         `json:"type"`
	Value      string         `json:"value"`
	Confidence float64        `json:"confidence"`
	Position   []int          `json:"position,omitempty"`
	Metadata   map[string]any `json:"metadata"`
}

// Result contains structured output from intent recognition
type Result struct {
	Intents         []Intent       `json:"intents"`
	Entities        []Entity       `json:"entities"`
	PrimaryIntent   string         `json:"primary_intent"`
	ImportanceScore float64        `json:"importance_score"`
	Metadata        map[string]any `json:"metadata"`
	Timestamp       time.Time      `json:"timestamp"`
}

// Recognizer extracts intents and entities from a user message. The
// shipped implementation is keyword-driven and fully deterministic; an
// LLM-backed extractor can be plugged in behind the same interface.
type Recognizer interface {
	Recognize(ctx context.Context, text string, graph *pkg.WorkflowGraph) (*Result, error)
}

// Intent vocabulary recognized by the conversation engine.
const (
	IntentExplainWorkflow = "explain_workflow"
	IntentExplainNode     = "explain_node"
	IntentRunWorkflow     = "run_workflow"
	IntentExecutionStatus = "execution_status"
	IntentTroubleshoot    = "troubleshoot"
	IntentOptimize        = "optimize"
	IntentLearnConcept    = "learn_concept"
	IntentModifyWorkflow  = "modify_workflow"
	IntentMaintain        = "maintain_workflow"
	IntentGreet           = "greet"
	IntentFarewell        = "farewell"
	IntentHelp            = "help"
)

type intentPattern struct {
	name     string
	priority float64
	keywords []string
}

// Patterns are matched in order; confidence grows with matched keyword
// count so multi-cue messages rank their strongest intent first.
var intentPatterns = []intentPattern{
	{IntentTroubleshoot, 0.9, []string{"error", "fail", "failed", "broken", "wrong", "stuck", "problem", "fix", "debug", "crash"}},
	{IntentRunWorkflow, 0.8, []string{"run", "start", "execute", "launch", "trigger", "go ahead"}},
	{IntentExecutionStatus, 0.7, []string{"status", "progress", "how far", "running", "finished yet", "done yet"}},
	{IntentExplainNode, 0.7, []string{"this node", "this step", "that step", "what does", "selected"}},
	{IntentExplainWorkflow, 0.6, []string{"explain", "what is", "describe", "overview", "walk me through", "understand", "tell me about"}},
	{IntentOptimize, 0.7, []string{"optimize", "faster", "improve", "speed up", "efficient", "better way", "performance"}},
	{IntentLearnConcept, 0.6, []string{"learn", "teach", "how do i", "how does", "tutorial", "example", "mean"}},
	{IntentModifyWorkflow, 0.7, []string{"add", "remove", "change", "edit", "modify", "connect", "rearrange"}},
	{IntentMaintain, 0.5, []string{"maintain", "clean up", "update", "upgrade", "housekeeping", "archive"}},
	{IntentGreet, 0.3, []string{"hello", "hi ", "hey", "good morning", "good afternoon"}},
	{IntentFarewell, 0.3, []string{"bye", "goodbye", "thanks, that's all", "see you"}},
	{IntentHelp, 0.4, []string{"help", "assist", "lost", "confused", "where do i"}},
}

// KeywordRecognizer is the built-in deterministic Recognizer.
type KeywordRecognizer struct{}

func NewKeywordRecognizer() *KeywordRecognizer {
	return &KeywordRecognizer{}
}

func (r *KeywordRecognizer) Recognize(ctx context.Context, text string, graph *pkg.WorkflowGraph) (*Result, error) {
	lowered := strings.ToLower(text)

	result := &Result{
		Intents:   []Intent{},
		Entities:  []Entity{},
		Metadata:  map[string]any{"recognizer": "keyword"},
		Timestamp: time.Now(),
	}

	for _, pattern := range intentPatterns {
		matches := 0
		for _, keyword := range pattern.keywords {
			if strings.Contains(lowered, keyword) {
				matches++
			}
		}
		if matches == 0 {
			continue
		}
		confidence := 0.6 + 0.1*float64(matches-1)
		if confidence > 0.95 {
			confidence = 0.95
		}
		result.Intents = append(result.Intents, Intent{
			Name:       pattern.name,
			Confidence: confidence,
			Priority:   pattern.priority,
			Metadata:   map[string]any{"matched_keywords": matches},
		})
	}

	if graph != nil {
		result.Entities = append(result.Entities, extractNodeEntities(lowered, graph)...)
	}
	result.Entities = append(result.Entities, extractTierEntities(lowered)...)

	calculateDerivedFields(result)
	return result, nil
}

// extractNodeEntities finds references to graph nodes by id or label.
func extractNodeEntities(lowered string, graph *pkg.WorkflowGraph) []Entity {
	var entities []Entity
	for _, node := range graph.Nodes {
		candidates := []string{strings.ToLower(node.ID)}
		if label, ok := node.Data["label"].(string); ok && label != "" {
			candidates = append(candidates, strings.ToLower(label))
		}
		for _, candidate := range candidates {
			idx := strings.Index(lowered, candidate)
			if idx < 0 {
				continue
			}
			entities = append(entities, Entity{
				Type:       "node",
				Value:      node.ID,
				Confidence: 0.9,
				Position:   []int{idx, idx + len(candidate)},
				Metadata:   map[string]any{"node_type": node.Type},
			})
			break
		}
	}
	return entities
}

// extractTierEntities detects explicit expertise-tier mentions so the
// caller can honor "explain this like I'm new to this" style requests.
func extractTierEntities(lowered string) []Entity {
	var entities []Entity
	for _, tier := range pkg.AllTiers {
		if strings.Contains(lowered, string(tier)) {
			entities = append(entities, Entity{
				Type:       "expertise_tier",
				Value:      string(tier),
				Confidence: 0.8,
				Metadata:   map[string]any{},
			})
		}
	}
	return entities
}

// calculateDerivedFields computes PrimaryIntent and ImportanceScore.
// PrimaryIntent is the argmax-confidence intent; importance weights
// model confidence at 60% and business priority at 40%.
func calculateDerivedFields(result *Result) {
	if len(result.Intents) == 0 {
		result.PrimaryIntent = IntentHelp
		result.ImportanceScore = 0.2
		return
	}

	primary := result.Intents[0]
	for _, intent := range result.Intents {
		if intent.Confidence > primary.Confidence {
			primary = intent
		}
	}
	result.PrimaryIntent = primary.Name
	result.ImportanceScore = (primary.Confidence * 0.6) + (primary.Priority * 0.4)
}
