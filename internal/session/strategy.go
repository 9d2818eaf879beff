package session

import (
	"flownarrator/internal/nlu"
	"flownarrator/internal/respond"
	"flownarrator/pkg"
)

// SelectStrategy is a pure mapping from conversation state to response
// strategy. Intent wins over phase; the phase decides ties.
func SelectStrategy(phase ConversationPhase, intent string) respond.Strategy {
	switch intent {
	case nlu.IntentExplainWorkflow, nlu.IntentExplainNode:
		return respond.StrategyExplain
	case nlu.IntentRunWorkflow:
		return respond.StrategyGuide
	case nlu.IntentExecutionStatus:
		return respond.StrategyNarrate
	case nlu.IntentTroubleshoot:
		return respond.StrategyTroubleshoot
	case nlu.IntentOptimize:
		return respond.StrategyOptimize
	case nlu.IntentLearnConcept:
		return respond.StrategyEducate
	case nlu.IntentMaintain:
		return respond.StrategyMaintain
	case nlu.IntentGreet, nlu.IntentFarewell:
		return respond.StrategyEncourage
	}
	switch phase {
	case PhaseExecution:
		return respond.StrategyNarrate
	case PhaseTroubleshooting:
		return respond.StrategyTroubleshoot
	case PhaseOptimization:
		return respond.StrategyOptimize
	case PhaseLearning:
		return respond.StrategyEducate
	case PhaseMaintenance:
		return respond.StrategyMaintain
	default:
		return respond.StrategyExplain
	}
}

// NeedPredictor anticipates what the user will want next. Implementations
// must cap their own output; the Manager truncates defensively anyway.
type NeedPredictor interface {
	Predict(sess *ConversationSession, result *nlu.Result) (suggestions []string, actions []pkg.SuggestedAction, followUp []string)
}

// heuristicPredictor is the default predictor. It reads the recognized
// intent and session state; no model calls.
type heuristicPredictor struct{}

func (heuristicPredictor) Predict(sess *ConversationSession, result *nlu.Result) ([]string, []pkg.SuggestedAction, []string) {
	var suggestions []string
	var actions []pkg.SuggestedAction
	var followUp []string

	intent := ""
	if result != nil {
		intent = result.PrimaryIntent
	}

	switch intent {
	case nlu.IntentExplainWorkflow:
		suggestions = append(suggestions, "Ask about a specific step", "Run the workflow to see it in action")
		followUp = append(followUp, "Would you like a step-by-step walkthrough?")
		actions = append(actions, pkg.SuggestedAction{ID: "run", Label: "Run this workflow", Kind: "execute"})
	case nlu.IntentExplainNode:
		suggestions = append(suggestions, "Ask what happens before or after this step")
		followUp = append(followUp, "Want to know how this step connects to the rest?")
		actions = append(actions, pkg.SuggestedAction{ID: "focus-next", Label: "Show the next step", Kind: "navigate"})
	case nlu.IntentRunWorkflow:
		suggestions = append(suggestions, "Watch the live progress", "Ask for status at any time")
		actions = append(actions, pkg.SuggestedAction{ID: "status", Label: "Check progress", Kind: "inspect"})
	case nlu.IntentExecutionStatus:
		if sess.Workflow.RunActive {
			suggestions = append(suggestions, "Ask about the current step")
			actions = append(actions, pkg.SuggestedAction{ID: "cancel", Label: "Cancel this run", Kind: "execute"})
		} else {
			suggestions = append(suggestions, "Start a new run")
			actions = append(actions, pkg.SuggestedAction{ID: "run", Label: "Run this workflow", Kind: "execute"})
		}
	case nlu.IntentTroubleshoot:
		suggestions = append(suggestions, "Share the error message you saw", "Re-run the failing step")
		followUp = append(followUp, "Did the problem start after a recent change?")
		actions = append(actions, pkg.SuggestedAction{ID: "retry", Label: "Retry the failing step", Kind: "execute"})
	case nlu.IntentOptimize:
		suggestions = append(suggestions, "Ask which step takes the longest")
		actions = append(actions, pkg.SuggestedAction{ID: "profile", Label: "Review step timings", Kind: "inspect"})
	case nlu.IntentLearnConcept:
		suggestions = append(suggestions, "Ask for an example", "Ask how this applies to your workflow")
		followUp = append(followUp, "Should I explain the related concepts too?")
	default:
		suggestions = append(suggestions, "Ask me to explain this workflow", "Ask what a specific step does")
	}

	// Proactive sessions get an extra nudge, but only until the first
	// run of the conversation.
	if sess.Intelligence == IntelligenceProactive || sess.Intelligence == IntelligenceAdaptive {
		if !sess.Workflow.RunActive && intent != nlu.IntentRunWorkflow && !sess.contains("run", "started") {
			suggestions = append(suggestions, "Try running the workflow when you are ready")
		}
	}
	return suggestions, actions, followUp
}
