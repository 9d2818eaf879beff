package commentary

import (
	"fmt"
	"time"

	"flownarrator/pkg"

	"github.com/google/uuid"
)

// CommentaryGenerator turns one execution event into tier-complete
// commentary for a session. Generators must populate Text for every
// tier; the engine fills identity fields and progress.
type CommentaryGenerator interface {
	Narrate(session *ExecutionSession, event pkg.ExecutionEvent) (*ExecutionCommentary, error)
}

// generatorFunc adapts a plain function to CommentaryGenerator.
type generatorFunc func(session *ExecutionSession, event pkg.ExecutionEvent) (*ExecutionCommentary, error)

func (f generatorFunc) Narrate(session *ExecutionSession, event pkg.ExecutionEvent) (*ExecutionCommentary, error) {
	return f(session, event)
}

func nodeLabel(event pkg.ExecutionEvent) string {
	if event.NodeID != "" {
		return event.NodeID
	}
	return "the current step"
}

func defaultCommentaryGenerators() map[pkg.ExecutionEventType]CommentaryGenerator {
	return map[pkg.ExecutionEventType]CommentaryGenerator{
		pkg.EventWorkflowStarted: generatorFunc(func(s *ExecutionSession, e pkg.ExecutionEvent) (*ExecutionCommentary, error) {
			return &ExecutionCommentary{
				Tone: "upbeat",
				Text: pkg.NewTierContent(
					"Here we go! Your workflow just woke up and is getting to work.",
					"The workflow has started running.",
					"Workflow run started; the first step is being prepared.",
					"Run started; the engine is initializing the first node.",
					fmt.Sprintf("Run started for workflow %s; scheduler dispatched the entry node.", s.WorkflowID),
				),
				Interactive: InteractivePayload{
					ShowSpinner: true,
					StatusChips: []string{"running", "just started"},
					Actions: []pkg.SuggestedAction{
						{ID: "watch", Label: "Watch progress", Kind: "navigate"},
						{ID: "cancel", Label: "Cancel run", Kind: "cancel"},
					},
				},
				Tips: []string{
					"You can keep chatting while the run continues.",
					"Progress updates will appear as each step finishes.",
				},
			}, nil
		}),
		pkg.EventNodeStarted: generatorFunc(func(s *ExecutionSession, e pkg.ExecutionEvent) (*ExecutionCommentary, error) {
			name := nodeLabel(e)
			return &ExecutionCommentary{
				Tone: "neutral",
				Text: pkg.NewTierContent(
					fmt.Sprintf("Now %s is doing its part.", name),
					fmt.Sprintf("Step %s has started working.", name),
					fmt.Sprintf("Node %s started processing.", name),
					fmt.Sprintf("Node %s dispatched; awaiting its result.", name),
					fmt.Sprintf("Node %s entered execution; upstream outputs bound as input.", name),
				),
				Interactive: InteractivePayload{
					ShowSpinner: true,
					StatusChips: []string{"running", name},
				},
				Tips: []string{fmt.Sprintf("Ask me what %s does if you're curious.", name)},
			}, nil
		}),
		pkg.EventNodeCompleted: generatorFunc(func(s *ExecutionSession, e pkg.ExecutionEvent) (*ExecutionCommentary, error) {
			name := nodeLabel(e)
			return &ExecutionCommentary{
				Tone: "upbeat",
				Text: pkg.NewTierContent(
					fmt.Sprintf("Nice — %s finished its job and passed the results along.", name),
					fmt.Sprintf("Step %s finished successfully.", name),
					fmt.Sprintf("Node %s completed; output handed to the next step.", name),
					fmt.Sprintf("Node %s completed; downstream nodes are now eligible.", name),
					fmt.Sprintf("Node %s completed; output committed and successors scheduled.", name),
				),
				Interactive: InteractivePayload{
					StatusChips: []string{"step done", name},
				},
				Tips: []string{"Each finished step brings the run closer to done."},
			}, nil
		}),
		pkg.EventNodeFailed: generatorFunc(func(s *ExecutionSession, e pkg.ExecutionEvent) (*ExecutionCommentary, error) {
			name := nodeLabel(e)
			return &ExecutionCommentary{
				Tone: "cautious",
				Text: pkg.NewTierContent(
					fmt.Sprintf("Hmm, %s hit a snag. The workflow is looking at what went wrong — this is often fixable.", name),
					fmt.Sprintf("Step %s ran into a problem and the run is handling it.", name),
					fmt.Sprintf("Node %s failed; error handling has taken over.", name),
					fmt.Sprintf("Node %s failed; inspect its configuration and input for the cause.", name),
					fmt.Sprintf("Node %s raised an error; run moved to error handling. Check node logs for the stack.", name),
				),
				Interactive: InteractivePayload{
					StatusChips: []string{"error", name},
					Actions: []pkg.SuggestedAction{
						{ID: "explain-error", Label: "Explain what went wrong", Kind: "explain"},
						{ID: "retry-node", Label: "Retry this step", Kind: "retry"},
					},
				},
				Tips: []string{
					"Failures at one step don't always doom the run; some workflows recover.",
					fmt.Sprintf("Ask me to troubleshoot %s for likely causes.", name),
				},
			}, nil
		}),
		pkg.EventDataTransferred: generatorFunc(func(s *ExecutionSession, e pkg.ExecutionEvent) (*ExecutionCommentary, error) {
			return &ExecutionCommentary{
				Tone: "neutral",
				Text: pkg.NewTierContent(
					"Information is moving from one step to the next.",
					"Data was handed from one step to the next.",
					"Data transferred between nodes.",
					"Record batch transferred along an edge.",
					"Edge transfer complete; payload delivered to the downstream node.",
				),
				Interactive: InteractivePayload{ShowSpinner: true, StatusChips: []string{"data moving"}},
			}, nil
		}),
		pkg.EventDecisionMade: generatorFunc(func(s *ExecutionSession, e pkg.ExecutionEvent) (*ExecutionCommentary, error) {
			branch, _ := e.Data["branch"].(string)
			if branch == "" {
				branch = "one of its paths"
			}
			return &ExecutionCommentary{
				Tone: "neutral",
				Text: pkg.NewTierContent(
					fmt.Sprintf("The workflow reached a fork and chose %s.", branch),
					fmt.Sprintf("A decision step picked %s.", branch),
					fmt.Sprintf("Routing decision made: %s.", branch),
					fmt.Sprintf("Router matched predicate for branch %s.", branch),
					fmt.Sprintf("Branch predicate matched; routing to %s.", branch),
				),
				Interactive: InteractivePayload{StatusChips: []string{"decision", branch}},
				Tips:        []string{"Ask why this path was chosen to see the deciding rule."},
			}, nil
		}),
		pkg.EventErrorOccurred: generatorFunc(func(s *ExecutionSession, e pkg.ExecutionEvent) (*ExecutionCommentary, error) {
			return errorCommentaryBody(s, e), nil
		}),
		pkg.EventErrorResolved: generatorFunc(func(s *ExecutionSession, e pkg.ExecutionEvent) (*ExecutionCommentary, error) {
			return &ExecutionCommentary{
				Tone: "upbeat",
				Text: pkg.NewTierContent(
					"Good news — the problem cleared up and things are moving again.",
					"The earlier problem was resolved; the run continues.",
					"Error resolved; execution resumed.",
					"Error handling succeeded; run returned to normal execution.",
					"Recovery path completed; run re-entered the running phase.",
				),
				Interactive: InteractivePayload{ShowSpinner: true, StatusChips: []string{"recovered"}},
			}, nil
		}),
		pkg.EventMilestoneReached: generatorFunc(func(s *ExecutionSession, e pkg.ExecutionEvent) (*ExecutionCommentary, error) {
			milestone, _ := e.Data["milestone"].(string)
			if milestone == "" {
				milestone = "an important point"
			}
			return &ExecutionCommentary{
				Tone: "celebratory",
				Text: pkg.NewTierContent(
					fmt.Sprintf("Milestone! The run just reached %s. Great progress.", milestone),
					fmt.Sprintf("The run reached a milestone: %s.", milestone),
					fmt.Sprintf("Milestone reached: %s.", milestone),
					fmt.Sprintf("Milestone %s reached; checkpoint recorded.", milestone),
					fmt.Sprintf("Milestone %s reached at %s.", milestone, e.Timestamp.Format(time.RFC3339)),
				),
				Interactive: InteractivePayload{StatusChips: []string{"milestone", milestone}},
				Tips:        []string{"Milestones are good places to review intermediate results."},
			}, nil
		}),
		pkg.EventUserInputRequired: generatorFunc(func(s *ExecutionSession, e pkg.ExecutionEvent) (*ExecutionCommentary, error) {
			return &ExecutionCommentary{
				Tone: "neutral",
				Text: pkg.NewTierContent(
					"The workflow is waiting for you! It needs your answer before it can continue.",
					"The run paused; it needs your input to continue.",
					"Run paused awaiting user input.",
					"Run suspended on a user-input gate.",
					"Run suspended; resume requires user-supplied input on the waiting node.",
				),
				Interactive: InteractivePayload{
					StatusChips: []string{"waiting for you"},
					Actions: []pkg.SuggestedAction{
						{ID: "provide-input", Label: "Provide the input", Kind: "configure"},
					},
				},
				Tips: []string{"The run stays safely paused until you respond."},
			}, nil
		}),
		pkg.EventUserInputReceived: generatorFunc(func(s *ExecutionSession, e pkg.ExecutionEvent) (*ExecutionCommentary, error) {
			return &ExecutionCommentary{
				Tone: "upbeat",
				Text: pkg.NewTierContent(
					"Got it — your answer is in and the workflow is moving again.",
					"Your input was received; the run resumed.",
					"User input received; execution resumed.",
					"Input gate satisfied; run resumed.",
					"User input bound to the waiting node; run re-entered running.",
				),
				Interactive: InteractivePayload{ShowSpinner: true, StatusChips: []string{"resumed"}},
			}, nil
		}),
		pkg.EventWorkflowCompleted: generatorFunc(func(s *ExecutionSession, e pkg.ExecutionEvent) (*ExecutionCommentary, error) {
			return &ExecutionCommentary{
				Tone: "celebratory",
				Text: pkg.NewTierContent(
					"All done! Your workflow finished the whole job. Everything ran start to finish.",
					"The workflow finished successfully.",
					"Workflow run completed; all steps finished.",
					"Run completed; terminal nodes produced their outputs.",
					fmt.Sprintf("Run for workflow %s completed; final outputs committed.", s.WorkflowID),
				),
				Interactive: InteractivePayload{
					StatusChips: []string{"completed"},
					Actions: []pkg.SuggestedAction{
						{ID: "view-results", Label: "View results", Kind: "navigate"},
						{ID: "run-again", Label: "Run again", Kind: "retry"},
					},
				},
				Tips: []string{"Ask for a summary of what this run produced."},
			}, nil
		}),
		pkg.EventWorkflowFailed: generatorFunc(func(s *ExecutionSession, e pkg.ExecutionEvent) (*ExecutionCommentary, error) {
			return &ExecutionCommentary{
				Tone: "cautious",
				Text: pkg.NewTierContent(
					"The run couldn't finish this time. That's okay — let's figure out what happened together.",
					"The workflow run failed before finishing.",
					"Workflow run failed; see the failing step for details.",
					"Run failed; inspect the error-handling log for the terminal cause.",
					fmt.Sprintf("Run for workflow %s failed; terminal error recorded in the event log.", s.WorkflowID),
				),
				Interactive: InteractivePayload{
					StatusChips: []string{"failed"},
					Actions: []pkg.SuggestedAction{
						{ID: "troubleshoot", Label: "Troubleshoot the failure", Kind: "explain"},
						{ID: "retry-run", Label: "Retry the run", Kind: "retry"},
					},
				},
				Tips: []string{"Most failures trace back to one step; ask me to find it."},
			}, nil
		}),
		pkg.EventExecutionCancel: generatorFunc(func(s *ExecutionSession, e pkg.ExecutionEvent) (*ExecutionCommentary, error) {
			return &ExecutionCommentary{
				Tone: "neutral",
				Text: pkg.NewTierContent(
					"The run was stopped, just as you asked. Everything that already happened is saved.",
					"The run was cancelled; recorded history is kept.",
					"Run cancelled by request; event history retained.",
					"Run cancelled; no further events will be processed for this session.",
					"Cancellation acknowledged; session closed, event log retained.",
				),
				Interactive: InteractivePayload{StatusChips: []string{"cancelled"}},
			}, nil
		}),
	}
}

// genericCommentary is the fallback for unregistered event types.
func genericCommentary(session *ExecutionSession, event pkg.ExecutionEvent) *ExecutionCommentary {
	return &ExecutionCommentary{
		ID:        uuid.NewString(),
		EventID:   event.EventID,
		EventType: event.EventType,
		Tone:      "neutral",
		Text: pkg.UniformTierContent(
			fmt.Sprintf("An event occurred in the workflow (%s).", event.EventType),
		),
		Interactive: InteractivePayload{StatusChips: []string{"event"}},
		Timestamp:   time.Now(),
	}
}

// errorCommentary is the fallback when a generator itself fails; it
// carries a cautious tone.
func errorCommentary(session *ExecutionSession, event pkg.ExecutionEvent) *ExecutionCommentary {
	commentary := errorCommentaryBody(session, event)
	commentary.ID = uuid.NewString()
	commentary.EventID = event.EventID
	commentary.EventType = event.EventType
	commentary.Timestamp = time.Now()
	return commentary
}

func errorCommentaryBody(session *ExecutionSession, event pkg.ExecutionEvent) *ExecutionCommentary {
	return &ExecutionCommentary{
		Tone: "cautious",
		Text: pkg.NewTierContent(
			"Something unexpected happened, but the run is being looked after. No action needed from you yet.",
			"An unexpected problem came up; the run is handling it.",
			"An error occurred; error handling is in progress.",
			"An error surfaced during execution; recovery is being attempted.",
			fmt.Sprintf("Error event in workflow %s; consult the event log for detail.", session.WorkflowID),
		),
		Interactive: InteractivePayload{
			StatusChips: []string{"attention"},
			Actions: []pkg.SuggestedAction{
				{ID: "explain-error", Label: "Explain what went wrong", Kind: "explain"},
			},
		},
		Tips: []string{"You can ask what this error means in plain language."},
	}
}
