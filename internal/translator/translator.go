package translator

import (
	"fmt"
	"hash/fnv"
	"sort"
	"time"

	"flownarrator/internal/logger"
	"flownarrator/internal/storage"
	"flownarrator/pkg"

	"github.com/bytedance/sonic"
)

const (
	nominalConfidence  = 0.85
	fallbackConfidence = 0.3
)

// Translator converts raw workflow graph elements into structured,
// tiered conversational descriptions. Generated objects are cached by
// (elementID, tier, preferences, contentHash) for a fixed TTL; a change
// in node data changes the content hash and so misses the stale entry.
type Translator struct {
	generators  map[string]ElementGenerator
	recognizers []PatternRecognizer
	cache       *storage.TTLCache[*TranslatedElement]
}

// Option configures a Translator.
type Option func(*Translator)

// WithRecognizers replaces the shipped pattern recognizer list.
func WithRecognizers(recognizers ...PatternRecognizer) Option {
	return func(t *Translator) {
		t.recognizers = recognizers
	}
}

// WithGenerator registers or overrides the generator for a node type
// category.
func WithGenerator(category string, generator ElementGenerator) Option {
	return func(t *Translator) {
		t.generators[category] = generator
	}
}

// New constructs a Translator with the default generator registry and
// recognizers.
func New(cacheSize int, cacheTTL time.Duration, opts ...Option) *Translator {
	t := &Translator{
		generators:  defaultGenerators(),
		recognizers: defaultRecognizers(),
		cache:       storage.NewTTLCache[*TranslatedElement](cacheSize, cacheTTL),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TranslateElement produces a tier-complete translation for one graph
// element. It never returns nil and never panics past its boundary:
// unknown element types and generator failures degrade to a generic
// fallback translation with a lowered confidence score.
func (t *Translator) TranslateElement(element *pkg.Node, elementType string, ctx TranslationContext, graph *pkg.WorkflowGraph) *TranslatedElement {
	if element == nil {
		return t.fallback("", elementType, nil, "nil element")
	}

	key := t.cacheKey(element, ctx)
	if cached, ok := t.cache.Get(key); ok {
		return cached
	}

	translated := t.generate(element, elementType, ctx, graph)
	t.cache.Put(key, translated)
	return translated
}

// TranslateGraph translates every element of the graph and derives the
// whole-graph extras: per-edge flow text, recognized structural
// patterns, navigation aids and contextual suggestions.
func (t *Translator) TranslateGraph(graph *pkg.WorkflowGraph, ctx TranslationContext) *WorkflowTranslation {
	translation := &WorkflowTranslation{
		WorkflowID:  graph.ID,
		Elements:    make(map[string]*TranslatedElement, len(graph.Nodes)),
		FlowText:    make(map[string]pkg.TierContent, len(graph.Edges)),
		GeneratedAt: time.Now(),
	}

	for i := range graph.Nodes {
		node := &graph.Nodes[i]
		translation.Elements[node.ID] = t.TranslateElement(node, node.Type, ctx, graph)
	}

	for _, edge := range graph.Edges {
		key := edge.Source + "->" + edge.Target
		translation.FlowText[key] = describeFlow(graph, edge)
	}

	// Recognizers are side-effect-free and order-independent; results
	// are unioned, never chained.
	for _, recognizer := range t.recognizers {
		translation.Patterns = append(translation.Patterns, recognizer.Recognize(graph)...)
	}

	translation.Navigation = navigationAids(graph)
	translation.Suggestions = contextualSuggestions(graph, translation.Patterns)
	return translation
}

// InvalidateElement drops any cached translations for the element.
// Content-hash keying already sidesteps stale data; this is for callers
// that want an eager flush on node edits.
func (t *Translator) InvalidateElement(elementID string) {
	// Cache keys embed the content hash, so a targeted evict needs a
	// sweep; expired entries go with it.
	t.cache.Sweep()
}

// CacheLen reports the number of cached translations.
func (t *Translator) CacheLen() int {
	return t.cache.Len()
}

func (t *Translator) generate(element *pkg.Node, elementType string, ctx TranslationContext, graph *pkg.WorkflowGraph) (result *TranslatedElement) {
	relationships := AnalyzeRelationships(element.ID, graph)

	defer func() {
		if r := recover(); r != nil {
			logger.Warn().
				Str("element_id", element.ID).
				Str("element_type", elementType).
				Any("panic", r).
				Msg("element generator failed, using fallback translation")
			result = t.fallback(element.ID, elementType, relationships, fmt.Sprintf("generator panic: %v", r))
		}
	}()

	generator, ok := t.generators[categorize(elementType)]
	if !ok {
		return t.fallback(element.ID, elementType, relationships, "no generator registered")
	}

	translated, err := generator.Generate(element, ctx, graph)
	if err != nil {
		logger.Warn().
			Str("element_id", element.ID).
			Err(err).
			Msg("element generator returned error, using fallback translation")
		return t.fallback(element.ID, elementType, relationships, err.Error())
	}

	translated.ElementID = element.ID
	translated.ElementType = elementType
	translated.Relationships = relationships
	translated.Meta = TranslationMeta{
		Confidence:  nominalConfidence,
		GeneratedAt: time.Now(),
		Generator:   generator.Name(),
	}
	return translated
}

// fallback emits a generic, tier-uniform, low-confidence translation.
// Omission is a defect; a downgrade is not.
func (t *Translator) fallback(elementID, elementType string, relationships []Relationship, reason string) *TranslatedElement {
	display := elementID
	if display == "" {
		display = "this element"
	}
	return &TranslatedElement{
		ElementID:   elementID,
		ElementType: elementType,
		Headline:    pkg.UniformTierContent(fmt.Sprintf("Workflow step %s", display)),
		Summary:     pkg.UniformTierContent(fmt.Sprintf("%s is a step in this workflow. Detailed information for its type is not available.", display)),
		Detail:      pkg.UniformTierContent(fmt.Sprintf("%s (type %q) takes part in the workflow. Ask about its neighbors to learn how it fits in.", display, elementType)),
		Relationships: relationships,
		Starters: []string{
			fmt.Sprintf("What happens before and after %s?", display),
			"Can you give me an overview of the whole workflow?",
		},
		Accessibility: fmt.Sprintf("Workflow step %s of type %s", display, elementType),
		Meta: TranslationMeta{
			Confidence:   fallbackConfidence,
			GeneratedAt:  time.Now(),
			FallbackUsed: true,
			Generator:    "fallback:" + reason,
		},
	}
}

func (t *Translator) cacheKey(element *pkg.Node, ctx TranslationContext) string {
	return fmt.Sprintf("%s|%s|%s|%d", element.ID, ctx.Tier, ctx.preferenceKey(), contentHash(element.Data))
}

// contentHash produces a deterministic hash of node data by serializing
// with sorted keys at every level before hashing.
func contentHash(data map[string]any) uint64 {
	encoded, err := sonic.ConfigStd.Marshal(sortedMap(data))
	if err != nil {
		encoded = []byte("{}")
	}
	hasher := fnv.New64a()
	hasher.Write(encoded)
	return hasher.Sum64()
}

// sortedMap returns a copy of m whose nested maps are the same concrete
// type so marshalling serializes keys in sorted order.
func sortedMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := m[k]
		if nested, ok := v.(map[string]any); ok {
			v = sortedMap(nested)
		}
		out[k] = v
	}
	return out
}
