package translator

import (
	"fmt"

	"flownarrator/pkg"
)

// AnalyzeRelationships derives incoming/outgoing/sibling descriptors for
// an element from edge adjacency. Pure function of the graph,
// independent of expertise tier.
func AnalyzeRelationships(elementID string, graph *pkg.WorkflowGraph) []Relationship {
	if graph == nil {
		return nil
	}

	var relationships []Relationship
	parents := map[string]bool{}

	for _, edge := range graph.Edges {
		switch {
		case edge.Target == elementID:
			parents[edge.Source] = true
			relationships = append(relationships, Relationship{
				Kind:        "incoming",
				NodeID:      edge.Source,
				Description: fmt.Sprintf("receives input from %s", graph.NodeName(edge.Source)),
			})
		case edge.Source == elementID:
			relationships = append(relationships, Relationship{
				Kind:        "outgoing",
				NodeID:      edge.Target,
				Description: fmt.Sprintf("sends output to %s", graph.NodeName(edge.Target)),
			})
		}
	}

	// Siblings share at least one upstream parent.
	seen := map[string]bool{elementID: true}
	for _, edge := range graph.Edges {
		if !parents[edge.Source] || edge.Target == elementID || seen[edge.Target] {
			continue
		}
		seen[edge.Target] = true
		relationships = append(relationships, Relationship{
			Kind:        "sibling",
			NodeID:      edge.Target,
			Description: fmt.Sprintf("runs alongside %s from the same input", graph.NodeName(edge.Target)),
		})
	}

	return relationships
}

// describeFlow explains a single edge at every tier.
func describeFlow(graph *pkg.WorkflowGraph, edge pkg.Edge) pkg.TierContent {
	source := graph.NodeName(edge.Source)
	target := graph.NodeName(edge.Target)
	return pkg.NewTierContent(
		fmt.Sprintf("After %s finishes its part, it hands things over to %s.", source, target),
		fmt.Sprintf("%s passes its results on to %s.", source, target),
		fmt.Sprintf("Output of %s flows into %s.", source, target),
		fmt.Sprintf("%s -> %s: downstream consumes the upstream output record stream.", source, target),
		fmt.Sprintf("Edge %s->%s: output of %s is the input of %s.", edge.Source, edge.Target, source, target),
	)
}

// navigationAids lists the graph's entry and terminal points so the
// presentation layer can orient the user.
func navigationAids(graph *pkg.WorkflowGraph) []string {
	hasIncoming := map[string]bool{}
	hasOutgoing := map[string]bool{}
	for _, edge := range graph.Edges {
		hasIncoming[edge.Target] = true
		hasOutgoing[edge.Source] = true
	}

	var aids []string
	for _, node := range graph.Nodes {
		name := graph.NodeName(node.ID)
		if !hasIncoming[node.ID] {
			aids = append(aids, fmt.Sprintf("Start reading at %s; nothing feeds into it.", name))
		}
		if !hasOutgoing[node.ID] {
			aids = append(aids, fmt.Sprintf("%s is an end point; the workflow's results leave from here.", name))
		}
	}
	return aids
}

// contextualSuggestions proposes next questions based on graph shape
// and recognized patterns.
func contextualSuggestions(graph *pkg.WorkflowGraph, patterns []Pattern) []string {
	suggestions := []string{
		fmt.Sprintf("Ask for a step-by-step story of %s.", graph.Name),
	}
	if len(graph.Nodes) > 5 {
		suggestions = append(suggestions, "This workflow is fairly large; ask about one section at a time.")
	}
	for _, pattern := range patterns {
		suggestions = append(suggestions, fmt.Sprintf("Ask about the %s involving %d steps.", pattern.Name, len(pattern.NodeIDs)))
		break
	}
	return suggestions
}
