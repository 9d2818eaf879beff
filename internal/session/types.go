package session

import (
	"time"

	"flownarrator/internal/nlu"
	"flownarrator/pkg"
)

// ConversationPhase tracks where the dialogue currently is. There is no
// terminal phase; sessions end by external call.
type ConversationPhase string

const (
	PhaseDiscovery       ConversationPhase = "discovery"
	PhaseExploration     ConversationPhase = "exploration"
	PhaseExecution       ConversationPhase = "execution"
	PhaseTroubleshooting ConversationPhase = "troubleshooting"
	PhaseOptimization    ConversationPhase = "optimization"
	PhaseLearning        ConversationPhase = "learning"
	PhaseMaintenance     ConversationPhase = "maintenance"
)

// specialPhases are reachable from any phase when intent demands it.
var specialPhases = map[ConversationPhase]bool{
	PhaseOptimization: true,
	PhaseLearning:     true,
	PhaseMaintenance:  true,
}

// phaseTransitions is the core progression: discovery opens into
// exploration, and exploration, execution and troubleshooting move
// freely between each other.
var phaseTransitions = map[ConversationPhase][]ConversationPhase{
	PhaseDiscovery:       {PhaseExploration},
	PhaseExploration:     {PhaseExecution, PhaseTroubleshooting},
	PhaseExecution:       {PhaseExploration, PhaseTroubleshooting},
	PhaseTroubleshooting: {PhaseExploration, PhaseExecution},
	PhaseOptimization:    {PhaseExploration, PhaseExecution, PhaseTroubleshooting},
	PhaseLearning:        {PhaseExploration, PhaseExecution, PhaseTroubleshooting},
	PhaseMaintenance:     {PhaseExploration, PhaseExecution, PhaseTroubleshooting},
}

// advancePhase moves from current toward target along legal
// transitions, routing through exploration when no direct hop exists.
func advancePhase(current, target ConversationPhase) ConversationPhase {
	if current == target || target == "" {
		return current
	}
	if specialPhases[target] {
		return target
	}
	for _, next := range phaseTransitions[current] {
		if next == target {
			return target
		}
	}
	// No direct hop: step into exploration, the hub phase.
	for _, next := range phaseTransitions[current] {
		if next == PhaseExploration {
			return PhaseExploration
		}
	}
	return current
}

// IntelligenceLevel is derived once at session start from preference
// flags; only an explicit preference update changes it afterwards.
type IntelligenceLevel string

const (
	IntelligenceBasic      IntelligenceLevel = "basic"
	IntelligenceContextual IntelligenceLevel = "contextual"
	IntelligencePredictive IntelligenceLevel = "predictive"
	IntelligenceProactive  IntelligenceLevel = "proactive"
	IntelligenceAdaptive   IntelligenceLevel = "adaptive"
)

// deriveIntelligence maps preference flags to the strongest enabled
// level.
func deriveIntelligence(prefs pkg.AssistancePreferences) IntelligenceLevel {
	switch {
	case prefs.AdaptToHabits:
		return IntelligenceAdaptive
	case prefs.Proactive:
		return IntelligenceProactive
	case prefs.Predictive:
		return IntelligencePredictive
	case prefs.ContextAware:
		return IntelligenceContextual
	default:
		return IntelligenceBasic
	}
}

// ConversationTurn is immutable once appended. History is truncated,
// never edited.
type ConversationTurn struct {
	ID        string       `json:"id"`
	Speaker   string       `json:"speaker"` // user, assistant
	Content   string       `json:"content"`
	Intent    string       `json:"intent,omitempty"`
	Entities  []nlu.Entity `json:"entities,omitempty"`
	FollowUps []string     `json:"follow_ups,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// ContextEntry is one item on the conversation context stack.
type ContextEntry struct {
	Kind  string    `json:"kind"` // intent, node, focus, run
	Value string    `json:"value"`
	At    time.Time `json:"at"`
}

// WorkflowContext is the session's snapshot of the workflow it is
// discussing.
type WorkflowContext struct {
	WorkflowID   string `json:"workflow_id"`
	Name         string `json:"name"`
	NodeCount    int    `json:"node_count"`
	Overview     string `json:"overview"`
	FocusedNode  string `json:"focused_node,omitempty"`
	RunActive    bool   `json:"run_active"`
	RunSessionID string `json:"run_session_id,omitempty"`
}

// ConversationSession is the long-lived dialogue state. Mutated only by
// the Manager; per-session calls are single-writer by contract.
type ConversationSession struct {
	ID           string             `json:"id"`
	UserID       string             `json:"user_id"`
	Profile      pkg.UserProfile    `json:"profile"`
	Phase        ConversationPhase  `json:"phase"`
	Intelligence IntelligenceLevel  `json:"intelligence"`
	Workflow     WorkflowContext    `json:"workflow"`
	ContextStack []ContextEntry     `json:"context_stack"`
	Turns        []ConversationTurn `json:"turns"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`

	// GraphSnapshot is kept on the session so translations and
	// narratives survive a store round trip.
	GraphSnapshot *pkg.WorkflowGraph `json:"graph,omitempty"`
}

// Graph returns the workflow graph snapshot attached at session start.
func (s *ConversationSession) Graph() *pkg.WorkflowGraph {
	return s.GraphSnapshot
}

// pushContext adds an entry, evicting the oldest entries on overflow.
func (s *ConversationSession) pushContext(kind, value string, limit int) {
	s.ContextStack = append(s.ContextStack, ContextEntry{Kind: kind, Value: value, At: time.Now()})
	if limit > 0 && len(s.ContextStack) > limit {
		s.ContextStack = s.ContextStack[len(s.ContextStack)-limit:]
	}
}

// appendTurn adds a turn and enforces the history cap: the most recent
// turns are kept in original order, older ones are dropped.
func (s *ConversationSession) appendTurn(turn ConversationTurn, limit int) {
	s.Turns = append(s.Turns, turn)
	if limit > 0 && len(s.Turns) > limit {
		s.Turns = s.Turns[len(s.Turns)-limit:]
	}
}

// recentContextLines renders the last maxTurns turns for prompting,
// oldest first.
func (s *ConversationSession) recentContextLines(maxTurns int) []string {
	turns := s.Turns
	if len(turns) > maxTurns {
		turns = turns[len(turns)-maxTurns:]
	}
	lines := make([]string, 0, len(turns))
	for _, turn := range turns {
		switch turn.Speaker {
		case "user":
			lines = append(lines, "UserMessage("+turn.Content+")")
		case "assistant":
			lines = append(lines, "AssistantMessage("+turn.Content+")")
		}
	}
	return lines
}

// MessageContext carries optional per-message hints from the caller.
type MessageContext struct {
	FocusedElement string `json:"focused_element,omitempty"`
}

// MessageResult is the well-formed reply contract: every processMessage
// call returns one of these, even on internal failure.
type MessageResult struct {
	Response    string                `json:"response"`
	Suggestions []string              `json:"suggestions,omitempty"`
	Actions     []pkg.SuggestedAction `json:"actions,omitempty"`
	FollowUp    []string              `json:"follow_up,omitempty"`
	Phase       ConversationPhase     `json:"conversation_phase,omitempty"`
	Confidence  float64               `json:"confidence"`
}

// WorkflowContextUpdate mutates the session's workflow snapshot.
type WorkflowContextUpdate struct {
	Graph        *pkg.WorkflowGraph `json:"-"`
	FocusedNode  *string            `json:"focused_node,omitempty"`
	RunActive    *bool              `json:"run_active,omitempty"`
	RunSessionID *string            `json:"run_session_id,omitempty"`
}
