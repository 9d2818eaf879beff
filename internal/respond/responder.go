package respond

import (
	"context"
	"fmt"
	"strings"

	"flownarrator/pkg"
)

// Strategy is the response approach selected for one turn. It is a
// pure function of conversation phase and detected intent (see the
// session manager's selector); the responder only phrases it.
type Strategy string

const (
	StrategyExplain      Strategy = "explain"
	StrategyGuide        Strategy = "guide"
	StrategyNarrate      Strategy = "narrate"
	StrategyTroubleshoot Strategy = "troubleshoot"
	StrategyOptimize     Strategy = "optimize"
	StrategyEducate      Strategy = "educate"
	StrategyMaintain     Strategy = "maintain"
	StrategyEncourage    Strategy = "encourage"
)

// Prompt is everything a responder needs to phrase one reply.
type Prompt struct {
	Strategy     Strategy
	Intent       string
	Tier         pkg.ExpertiseTier
	WorkflowName string
	// Topic is the already-generated subject matter text (translation,
	// narrative excerpt, commentary) the reply should present.
	Topic string
	// ContextLines are recent conversation lines, oldest first.
	ContextLines []string
}

// Responder generates the user-facing reply text for one turn. The
// default implementation is deterministic; an LLM-backed one can be
// swapped in without touching callers.
type Responder interface {
	Respond(ctx context.Context, prompt Prompt) (string, error)
}

// TemplateResponder phrases replies from fixed strategy templates. Two
// identical prompts always produce identical text.
type TemplateResponder struct{}

func NewTemplateResponder() *TemplateResponder {
	return &TemplateResponder{}
}

func (r *TemplateResponder) Respond(ctx context.Context, prompt Prompt) (string, error) {
	topic := strings.TrimSpace(prompt.Topic)
	if topic == "" {
		topic = fmt.Sprintf("I don't have details on that part of %s yet, but I can walk you through the workflow overall.", workflowName(prompt))
	}

	switch prompt.Strategy {
	case StrategyExplain:
		return topic, nil
	case StrategyGuide:
		return fmt.Sprintf("Here's how to move forward with %s. %s", workflowName(prompt), topic), nil
	case StrategyNarrate:
		return fmt.Sprintf("Here's what's happening right now: %s", topic), nil
	case StrategyTroubleshoot:
		return fmt.Sprintf("Let's sort this out together. %s", topic), nil
	case StrategyOptimize:
		return fmt.Sprintf("Looking at %s with an eye for improvement: %s", workflowName(prompt), topic), nil
	case StrategyEducate:
		return fmt.Sprintf("Good question — this is worth understanding properly. %s", topic), nil
	case StrategyMaintain:
		return fmt.Sprintf("For keeping %s healthy: %s", workflowName(prompt), topic), nil
	case StrategyEncourage:
		return fmt.Sprintf("You're doing fine. %s", topic), nil
	default:
		return topic, nil
	}
}

func workflowName(prompt Prompt) string {
	if prompt.WorkflowName != "" {
		return prompt.WorkflowName
	}
	return "this workflow"
}
