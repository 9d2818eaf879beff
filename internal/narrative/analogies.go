package narrative

import "flownarrator/pkg"

// Analogy explains a node type through a familiar comparison, phrased
// per tier. Node types without a registered analogy degrade to empty
// analogy fields; that is not an error.
type Analogy struct {
	Comparison pkg.TierContent
}

var analogies = map[string]Analogy{
	"starter": {Comparison: pkg.NewTierContent(
		"rings the starting bell, like a doorbell that wakes the whole process up",
		"kicks everything off when its event happens",
		"starts a run when its trigger condition is met",
		"fires the entry trigger that creates each run",
		"emits the initial execution token for each run",
	)},
	"trigger": {Comparison: pkg.NewTierContent(
		"rings the starting bell, like a doorbell that wakes the whole process up",
		"kicks everything off when its event happens",
		"starts a run when its trigger condition is met",
		"fires the entry trigger that creates each run",
		"emits the initial execution token for each run",
	)},
	"filter": {Comparison: pkg.NewTierContent(
		"keeps what matters and lets the rest go, like a coffee filter",
		"keeps the items that match its rule and drops the rest",
		"keeps matching items and discards the rest",
		"applies a predicate and keeps only the matching subset",
		"evaluates its predicate per record and forwards matches only",
	)},
	"transform": {Comparison: pkg.NewTierContent(
		"reshapes information like a kitchen prep station getting ingredients ready",
		"reworks each item into the form later steps need",
		"maps each item to a new shape for downstream steps",
		"applies a per-item mapping defining the downstream schema",
		"applies its mapping function per record, pure and stateless",
	)},
	"action": {Comparison: pkg.NewTierContent(
		"does the real-world job, like the oven finally baking the cake",
		"carries out the visible action the workflow exists for",
		"performs the configured external action",
		"issues the side-effecting external call",
		"executes the external call with the record as payload",
	)},
	"condition": {Comparison: pkg.NewTierContent(
		"is a fork in the road with a signpost telling each item where to go",
		"chooses which path each item should take",
		"routes each item down the branch matching its condition",
		"evaluates routing predicates to select the downstream branch",
		"routes records along matching outgoing edges by predicate",
	)},
	"aggregate": {Comparison: pkg.NewTierContent(
		"is the meeting point where separate paths come back together",
		"collects results from different branches into one",
		"merges its incoming streams into one output",
		"joins parallel branches into a combined result",
		"merges inbound edges under the configured join semantics",
	)},
}

// analogyFor looks up the analogy for a node type, trying the raw type
// first and then common aliases. Missing types return ok=false.
func analogyFor(nodeType string) (Analogy, bool) {
	if analogy, ok := analogies[nodeType]; ok {
		return analogy, true
	}
	aliases := map[string]string{
		"start": "starter", "webhook": "trigger", "schedule": "trigger",
		"map": "transform", "format": "transform", "enrich": "transform",
		"http": "action", "email": "action", "notify": "action", "output": "action",
		"decision": "condition", "switch": "condition", "branch": "condition", "router": "condition",
		"merge": "aggregate", "join": "aggregate", "collect": "aggregate",
	}
	if canonical, ok := aliases[nodeType]; ok {
		return analogies[canonical], true
	}
	return Analogy{}, false
}
