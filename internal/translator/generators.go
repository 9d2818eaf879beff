package translator

import (
	"fmt"

	"flownarrator/pkg"
)

// ElementGenerator produces a tier-complete translation for one node.
// Generators must be deterministic for a fixed (element, tier,
// preferences) input.
type ElementGenerator interface {
	Name() string
	Generate(element *pkg.Node, ctx TranslationContext, graph *pkg.WorkflowGraph) (*TranslatedElement, error)
}

// categorize maps raw node type strings onto generator categories.
func categorize(elementType string) string {
	switch elementType {
	case "starter", "trigger", "start", "webhook", "schedule", "manual":
		return "trigger"
	case "filter":
		return "filter"
	case "transform", "map", "format", "enrich":
		return "transform"
	case "action", "http", "email", "notify", "slack", "output", "export":
		return "action"
	case "condition", "decision", "switch", "branch", "router":
		return "decision"
	case "aggregate", "merge", "join", "collect":
		return "aggregate"
	default:
		return elementType
	}
}

func defaultGenerators() map[string]ElementGenerator {
	return map[string]ElementGenerator{
		"trigger":   &triggerGenerator{},
		"filter":    &filterGenerator{},
		"transform": &transformGenerator{},
		"action":    &actionGenerator{},
		"decision":  &decisionGenerator{},
		"aggregate": &aggregateGenerator{},
	}
}

func displayName(element *pkg.Node) string {
	if label, ok := element.Data["label"].(string); ok && label != "" {
		return label
	}
	return element.ID
}

func starters(name string, questions ...string) []string {
	out := make([]string, 0, len(questions)+1)
	out = append(out, questions...)
	out = append(out, fmt.Sprintf("What comes before and after %s?", name))
	return out
}

// ------------------------------------------------------------
// Trigger

type triggerGenerator struct{}

func (g *triggerGenerator) Name() string { return "trigger" }

func (g *triggerGenerator) Generate(element *pkg.Node, ctx TranslationContext, graph *pkg.WorkflowGraph) (*TranslatedElement, error) {
	name := displayName(element)
	return &TranslatedElement{
		Headline: pkg.NewTierContent(
			fmt.Sprintf("%s is where everything begins", name),
			fmt.Sprintf("%s starts the workflow", name),
			fmt.Sprintf("%s: workflow entry point", name),
			fmt.Sprintf("%s: entry trigger", name),
			fmt.Sprintf("%s: %s trigger node", name, element.Type),
		),
		Summary: pkg.NewTierContent(
			fmt.Sprintf("%s is like a doorbell: when something happens, it wakes the workflow up and gets it moving.", name),
			fmt.Sprintf("%s waits for something to happen and then kicks off the rest of the steps.", name),
			fmt.Sprintf("%s listens for its configured event and starts a run when that event arrives.", name),
			fmt.Sprintf("%s is the entry trigger; each firing creates one workflow run with the event payload as initial input.", name),
			fmt.Sprintf("%s (type %s) emits the initial execution token; downstream nodes receive the trigger payload as input.", name, element.Type),
		),
		Detail: pkg.NewTierContent(
			fmt.Sprintf("Think of %s as the on switch for this workflow. You don't have to do anything with it; it simply notices when it's time to start.", name),
			fmt.Sprintf("Whenever the event %s is set up to watch for happens, a new run of this workflow begins from here.", name),
			fmt.Sprintf("%s defines when runs happen. Its configuration decides which events count, and everything downstream only runs after it fires.", name),
			fmt.Sprintf("%s gates all execution: no downstream node runs until it fires, and its payload shapes the data contract for the whole run.", name),
			fmt.Sprintf("%s is a %s node. It initializes run state and propagates its event payload along outgoing edges; concurrency of runs is governed by the hosting engine.", name, element.Type),
		),
		Starters:      starters(name, fmt.Sprintf("What makes %s fire?", name), "How often does this workflow run?"),
		Accessibility: fmt.Sprintf("Trigger node %s, the starting point of the workflow", name),
	}, nil
}

// ------------------------------------------------------------
// Filter

type filterGenerator struct{}

func (g *filterGenerator) Name() string { return "filter" }

func (g *filterGenerator) Generate(element *pkg.Node, ctx TranslationContext, graph *pkg.WorkflowGraph) (*TranslatedElement, error) {
	name := displayName(element)
	return &TranslatedElement{
		Headline: pkg.NewTierContent(
			fmt.Sprintf("%s keeps only what matters", name),
			fmt.Sprintf("%s sorts the useful from the rest", name),
			fmt.Sprintf("%s: filters incoming items", name),
			fmt.Sprintf("%s: predicate filter", name),
			fmt.Sprintf("%s: filter node", name),
		),
		Summary: pkg.NewTierContent(
			fmt.Sprintf("%s works like a coffee filter: it keeps what matters and lets everything else go.", name),
			fmt.Sprintf("%s checks each item and keeps the ones that match its rule, dropping the rest.", name),
			fmt.Sprintf("%s applies its condition to each incoming item; only matching items continue downstream.", name),
			fmt.Sprintf("%s evaluates a predicate per item; non-matching items are discarded before they reach later nodes.", name),
			fmt.Sprintf("%s is a filter node: it applies its configured predicate to each element of the input set and forwards the matching subset.", name),
		),
		Detail: pkg.NewTierContent(
			fmt.Sprintf("Imagine a strainer in your kitchen. %s keeps the pieces you want and everything else drains away, so later steps only deal with the good stuff.", name),
			fmt.Sprintf("%s looks at every item passing through and asks one question about it. Items that pass the test move on; items that fail are quietly set aside.", name),
			fmt.Sprintf("%s narrows the data stream. Its condition runs once per item, and only the items that satisfy it flow to the next step, which keeps later steps fast and focused.", name),
			fmt.Sprintf("%s reduces downstream volume by predicate evaluation. Tuning its condition is the main lever for precision here; overly strict rules silently starve later nodes.", name),
			fmt.Sprintf("%s is a filter node evaluating its predicate against each input record. Complexity is O(n) over input size; rejected records are dropped, not routed, so there is no reject branch unless one is configured.", name),
		),
		Starters:      starters(name, fmt.Sprintf("What rule does %s use to decide what to keep?", name), fmt.Sprintf("What happens to items %s drops?", name)),
		Accessibility: fmt.Sprintf("Filter node %s, keeps items matching its condition", name),
	}, nil
}

// ------------------------------------------------------------
// Transform

type transformGenerator struct{}

func (g *transformGenerator) Name() string { return "transform" }

func (g *transformGenerator) Generate(element *pkg.Node, ctx TranslationContext, graph *pkg.WorkflowGraph) (*TranslatedElement, error) {
	name := displayName(element)
	return &TranslatedElement{
		Headline: pkg.NewTierContent(
			fmt.Sprintf("%s reshapes the information", name),
			fmt.Sprintf("%s changes data into a new form", name),
			fmt.Sprintf("%s: transforms incoming data", name),
			fmt.Sprintf("%s: data transformation", name),
			fmt.Sprintf("%s: %s node", name, element.Type),
		),
		Summary: pkg.NewTierContent(
			fmt.Sprintf("%s is like a translator: information goes in one shape and comes out in another shape that the next steps understand.", name),
			fmt.Sprintf("%s takes each item and reworks it into the form the rest of the workflow needs.", name),
			fmt.Sprintf("%s applies its mapping to each item, producing restructured output for downstream steps.", name),
			fmt.Sprintf("%s performs a per-item mapping; field renames, derivations and type coercions happen here.", name),
			fmt.Sprintf("%s is a %s node applying its configured mapping function per record; output schema is defined by the mapping, not the input.", name, element.Type),
		),
		Detail: pkg.NewTierContent(
			fmt.Sprintf("Think of %s as a kitchen prep station: ingredients come in raw and leave chopped and ready for the recipe's next step.", name),
			fmt.Sprintf("%s reworks each item one at a time. Nothing is thrown away here; things are renamed, combined or cleaned up so later steps get tidy input.", name),
			fmt.Sprintf("%s is where the data changes shape. If a later step complains about missing or misnamed fields, this mapping is the first place to look.", name),
			fmt.Sprintf("%s owns the schema boundary between upstream and downstream. Changes to its mapping ripple forward, so treat its output shape as a contract.", name),
			fmt.Sprintf("%s executes its mapping once per record with no cross-record state. Side effects are not expected here; pure per-record transformation only.", name),
		),
		Starters:      starters(name, fmt.Sprintf("What does the data look like after %s?", name)),
		Accessibility: fmt.Sprintf("Transform node %s, reshapes data for later steps", name),
	}, nil
}

// ------------------------------------------------------------
// Action

type actionGenerator struct{}

func (g *actionGenerator) Name() string { return "action" }

func (g *actionGenerator) Generate(element *pkg.Node, ctx TranslationContext, graph *pkg.WorkflowGraph) (*TranslatedElement, error) {
	name := displayName(element)
	return &TranslatedElement{
		Headline: pkg.NewTierContent(
			fmt.Sprintf("%s does the real-world work", name),
			fmt.Sprintf("%s carries out an action", name),
			fmt.Sprintf("%s: performs the configured action", name),
			fmt.Sprintf("%s: external action", name),
			fmt.Sprintf("%s: %s action node", name, element.Type),
		),
		Summary: pkg.NewTierContent(
			fmt.Sprintf("%s is where the workflow actually does something you can see, like sending a message or saving a result.", name),
			fmt.Sprintf("%s performs the workflow's visible action using the data prepared by earlier steps.", name),
			fmt.Sprintf("%s executes its configured action against an external system with the incoming data.", name),
			fmt.Sprintf("%s is the side-effecting step; it calls out of the workflow, so failures and retries concentrate here.", name),
			fmt.Sprintf("%s (type %s) performs the external call. Latency and error handling of the run are dominated by this node.", name, element.Type),
		),
		Detail: pkg.NewTierContent(
			fmt.Sprintf("Everything before %s was preparation. This is the moment the workflow reaches out and makes something happen in the real world.", name),
			fmt.Sprintf("%s uses what earlier steps prepared to take its action. If the workflow seems to 'do nothing', check whether this step ran.", name),
			fmt.Sprintf("%s talks to a system outside the workflow. Its configuration holds the connection details, and its failures are the usual cause of a failed run.", name),
			fmt.Sprintf("%s is the integration point: external availability, rate limits and credentials all surface here. Idempotency matters if the engine retries it.", name),
			fmt.Sprintf("%s is a %s node issuing the external call with the incoming record as payload. Treat it as non-idempotent unless its configuration says otherwise.", name, element.Type),
		),
		Starters:      starters(name, fmt.Sprintf("What exactly does %s do when it runs?", name), fmt.Sprintf("What happens if %s fails?", name)),
		Accessibility: fmt.Sprintf("Action node %s, performs the workflow's external action", name),
	}, nil
}

// ------------------------------------------------------------
// Decision

type decisionGenerator struct{}

func (g *decisionGenerator) Name() string { return "decision" }

func (g *decisionGenerator) Generate(element *pkg.Node, ctx TranslationContext, graph *pkg.WorkflowGraph) (*TranslatedElement, error) {
	name := displayName(element)
	return &TranslatedElement{
		Headline: pkg.NewTierContent(
			fmt.Sprintf("%s picks which path to take", name),
			fmt.Sprintf("%s chooses between paths", name),
			fmt.Sprintf("%s: routes items by condition", name),
			fmt.Sprintf("%s: conditional router", name),
			fmt.Sprintf("%s: %s branch node", name, element.Type),
		),
		Summary: pkg.NewTierContent(
			fmt.Sprintf("%s is like a fork in the road with a signpost: each item reads the sign and takes the path meant for it.", name),
			fmt.Sprintf("%s looks at each item and decides which of the next steps it should go to.", name),
			fmt.Sprintf("%s evaluates its condition per item and routes it down the matching branch.", name),
			fmt.Sprintf("%s is the branch point; routing rules here determine which downstream subgraph each item traverses.", name),
			fmt.Sprintf("%s (type %s) evaluates routing predicates and forwards each record along exactly the matching outgoing edge(s).", name, element.Type),
		),
		Detail: pkg.NewTierContent(
			fmt.Sprintf("When the workflow reaches %s, it pauses to make a choice. Depending on the answer, different things happen next; both paths are normal, just for different situations.", name),
			fmt.Sprintf("%s splits the flow. Each item is checked against the rules and follows the branch that fits, so different kinds of items get different treatment.", name),
			fmt.Sprintf("%s controls which downstream steps actually run for a given item. When a branch seems to never run, inspect this node's conditions first.", name),
			fmt.Sprintf("%s defines the control-flow topology from here on. Overlapping or unreachable conditions are the classic defect to audit at this node.", name),
			fmt.Sprintf("%s is a %s node. Predicates are evaluated in configured order; default-branch behavior and multi-match semantics come from its configuration.", name, element.Type),
		),
		Starters:      starters(name, fmt.Sprintf("What are the possible paths after %s?", name), fmt.Sprintf("How does %s decide?", name)),
		Accessibility: fmt.Sprintf("Decision node %s, routes items to different branches", name),
	}, nil
}

// ------------------------------------------------------------
// Aggregate

type aggregateGenerator struct{}

func (g *aggregateGenerator) Name() string { return "aggregate" }

func (g *aggregateGenerator) Generate(element *pkg.Node, ctx TranslationContext, graph *pkg.WorkflowGraph) (*TranslatedElement, error) {
	name := displayName(element)
	return &TranslatedElement{
		Headline: pkg.NewTierContent(
			fmt.Sprintf("%s gathers everything together", name),
			fmt.Sprintf("%s combines results", name),
			fmt.Sprintf("%s: merges incoming streams", name),
			fmt.Sprintf("%s: aggregation point", name),
			fmt.Sprintf("%s: %s node", name, element.Type),
		),
		Summary: pkg.NewTierContent(
			fmt.Sprintf("%s is like a meeting point: work that was split across different paths comes back together here.", name),
			fmt.Sprintf("%s collects results from the branches that ran before it and combines them.", name),
			fmt.Sprintf("%s merges its incoming streams into a single combined output.", name),
			fmt.Sprintf("%s joins parallel branches; it waits on its inputs and emits the combined result downstream.", name),
			fmt.Sprintf("%s (type %s) merges inbound edges. Join semantics (wait-all vs first-wins) come from its configuration.", name, element.Type),
		),
		Detail: pkg.NewTierContent(
			fmt.Sprintf("Earlier the workflow split into separate paths. %s is where those paths rejoin, so everything after it sees one combined picture again.", name),
			fmt.Sprintf("%s waits for the branches feeding into it and merges what they produced into one result for the next steps.", name),
			fmt.Sprintf("%s is the merge point. If a run stalls here, one of its upstream branches likely never produced output.", name),
			fmt.Sprintf("%s synchronizes branches: stalls at this node almost always trace back to a starved upstream branch or an unsatisfiable join condition.", name),
			fmt.Sprintf("%s is a %s node joining its inbound edges. Blocking behavior depends on the configured join mode; partial-input handling is configuration-defined.", name, element.Type),
		),
		Starters:      starters(name, fmt.Sprintf("Which paths feed into %s?", name)),
		Accessibility: fmt.Sprintf("Aggregate node %s, combines results from multiple branches", name),
	}, nil
}
