package translator

import (
	"fmt"
	"sort"

	"flownarrator/pkg"
)

// PatternRecognizer inspects a graph and reports zero or more named
// structural patterns. Recognizers must be side-effect-free and
// order-independent: graph translation unions their results.
type PatternRecognizer interface {
	Name() string
	Recognize(graph *pkg.WorkflowGraph) []Pattern
}

func defaultRecognizers() []PatternRecognizer {
	return []PatternRecognizer{
		&fanOutRecognizer{},
		&mergePointRecognizer{},
		&linearChainRecognizer{},
	}
}

// fanOutRecognizer reports nodes whose output feeds two or more
// downstream nodes.
type fanOutRecognizer struct{}

func (r *fanOutRecognizer) Name() string { return "fan-out" }

func (r *fanOutRecognizer) Recognize(graph *pkg.WorkflowGraph) []Pattern {
	targets := map[string][]string{}
	for _, edge := range graph.Edges {
		targets[edge.Source] = append(targets[edge.Source], edge.Target)
	}

	var patterns []Pattern
	for _, source := range sortedKeys(targets) {
		outs := targets[source]
		if len(outs) < 2 {
			continue
		}
		nodeIDs := append([]string{source}, outs...)
		patterns = append(patterns, Pattern{
			Name:        "fan-out",
			NodeIDs:     nodeIDs,
			Description: fmt.Sprintf("%s splits the flow into %d parallel paths", graph.NodeName(source), len(outs)),
		})
	}
	return patterns
}

// mergePointRecognizer reports nodes fed by two or more upstream nodes.
type mergePointRecognizer struct{}

func (r *mergePointRecognizer) Name() string { return "merge-point" }

func (r *mergePointRecognizer) Recognize(graph *pkg.WorkflowGraph) []Pattern {
	sources := map[string][]string{}
	for _, edge := range graph.Edges {
		sources[edge.Target] = append(sources[edge.Target], edge.Source)
	}

	var patterns []Pattern
	for _, target := range sortedKeys(sources) {
		ins := sources[target]
		if len(ins) < 2 {
			continue
		}
		nodeIDs := append(append([]string{}, ins...), target)
		patterns = append(patterns, Pattern{
			Name:        "merge-point",
			NodeIDs:     nodeIDs,
			Description: fmt.Sprintf("%d paths come back together at %s", len(ins), graph.NodeName(target)),
		})
	}
	return patterns
}

// linearChainRecognizer reports maximal runs of single-in single-out
// nodes, the 'pipeline' sections of a graph.
type linearChainRecognizer struct{}

func (r *linearChainRecognizer) Name() string { return "linear-chain" }

func (r *linearChainRecognizer) Recognize(graph *pkg.WorkflowGraph) []Pattern {
	inDegree := map[string]int{}
	outEdge := map[string]string{}
	outDegree := map[string]int{}
	for _, edge := range graph.Edges {
		inDegree[edge.Target]++
		outDegree[edge.Source]++
		outEdge[edge.Source] = edge.Target
	}

	isChainLink := func(id string) bool {
		return inDegree[id] <= 1 && outDegree[id] <= 1
	}

	visited := map[string]bool{}
	var patterns []Pattern
	for _, node := range graph.Nodes {
		if visited[node.ID] || !isChainLink(node.ID) || inDegree[node.ID] == 1 {
			continue
		}
		// Walk forward from a chain head.
		chain := []string{node.ID}
		visited[node.ID] = true
		for next, ok := outEdge[chain[len(chain)-1]]; ok && isChainLink(next) && !visited[next]; next, ok = outEdge[chain[len(chain)-1]] {
			chain = append(chain, next)
			visited[next] = true
		}
		if len(chain) < 3 {
			continue
		}
		patterns = append(patterns, Pattern{
			Name:        "linear-chain",
			NodeIDs:     chain,
			Description: fmt.Sprintf("a straight %d-step pipeline from %s to %s", len(chain), graph.NodeName(chain[0]), graph.NodeName(chain[len(chain)-1])),
		})
	}
	return patterns
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
