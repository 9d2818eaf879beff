package narrative

import (
	"strings"

	"flownarrator/pkg"
)

// terminology maps technical terms to per-tier substitutes. Applied to
// overview and flow text so each tier reads in its own register.
var terminology = map[string]pkg.TierContent{
	"workflow": pkg.NewTierContent(
		"recipe", "automated process", "workflow", "workflow", "workflow",
	),
	"node": pkg.NewTierContent(
		"step", "step", "step", "node", "node",
	),
	"execute": pkg.NewTierContent(
		"run", "run", "run", "execute", "execute",
	),
	"payload": pkg.NewTierContent(
		"information", "data", "data", "payload", "payload",
	),
	"predicate": pkg.NewTierContent(
		"rule", "rule", "condition", "predicate", "predicate",
	),
	"upstream": pkg.NewTierContent(
		"earlier", "earlier", "earlier in the flow", "upstream", "upstream",
	),
	"downstream": pkg.NewTierContent(
		"later", "later", "later in the flow", "downstream", "downstream",
	),
}

// applyTerminology rewrites technical vocabulary for the given tier.
// Whole-word, case-sensitive on the lowercase form; deterministic.
func applyTerminology(text string, tier pkg.ExpertiseTier) string {
	for term, substitutes := range terminology {
		replacement := substitutes.For(tier)
		if replacement == term {
			continue
		}
		text = replaceWord(text, term, replacement)
	}
	return text
}

func replaceWord(text, term, replacement string) string {
	var builder strings.Builder
	lower := strings.ToLower(text)
	i := 0
	for {
		idx := strings.Index(lower[i:], term)
		if idx < 0 {
			builder.WriteString(text[i:])
			break
		}
		start := i + idx
		end := start + len(term)
		if isWordBoundary(lower, start-1) && isWordBoundary(lower, end) {
			builder.WriteString(text[i:start])
			builder.WriteString(replacement)
		} else {
			builder.WriteString(text[i:end])
		}
		i = end
	}
	return builder.String()
}

func isWordBoundary(s string, idx int) bool {
	if idx < 0 || idx >= len(s) {
		return true
	}
	c := s[idx]
	return !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9')
}
