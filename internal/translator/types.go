package translator

import (
	"time"

	"flownarrator/pkg"
)

// TranslationContext is a per-request value object. It is created per
// call and never persisted.
type TranslationContext struct {
	WorkflowID     string            `json:"workflow_id"`
	UserID         string            `json:"user_id"`
	Tier           pkg.ExpertiseTier `json:"tier"`
	FocusedElement string            `json:"focused_element,omitempty"`
	HistoryExcerpt []string          `json:"history_excerpt,omitempty"`
	Verbosity      string            `json:"verbosity,omitempty"` // brief, normal, rich
	Personalize    bool              `json:"personalize"`
}

// preferenceKey folds the output-affecting preferences into the cache
// key so differing preferences never share an entry.
func (c TranslationContext) preferenceKey() string {
	verbosity := c.Verbosity
	if verbosity == "" {
		verbosity = "normal"
	}
	if c.Personalize {
		return verbosity + "+p"
	}
	return verbosity
}

// Relationship describes one adjacency of an element, derived purely
// from the graph and independent of tier.
type Relationship struct {
	Kind        string `json:"kind"` // incoming, outgoing, sibling
	NodeID      string `json:"node_id"`
	Description string `json:"description"`
}

// TranslationMeta annotates a translation with its provenance.
type TranslationMeta struct {
	Confidence   float64   `json:"confidence"`
	GeneratedAt  time.Time `json:"generated_at"`
	FallbackUsed bool      `json:"fallback_used"`
	Generator    string    `json:"generator"`
}

// TranslatedElement is a tier-complete conversational description of a
// single graph element.
type TranslatedElement struct {
	ElementID     string          `json:"element_id"`
	ElementType   string          `json:"element_type"`
	Headline      pkg.TierContent `json:"headline"`
	Summary       pkg.TierContent `json:"summary"`
	Detail        pkg.TierContent `json:"detail"`
	Relationships []Relationship  `json:"relationships"`
	Starters      []string        `json:"conversation_starters"`
	Accessibility string          `json:"accessibility_text"`
	Meta          TranslationMeta `json:"meta"`
}

// Pattern is a structural shape recognized in a graph.
type Pattern struct {
	Name        string   `json:"name"`
	NodeIDs     []string `json:"node_ids"`
	Description string   `json:"description"`
}

// WorkflowTranslation is the whole-graph translation bundle.
type WorkflowTranslation struct {
	WorkflowID  string                        `json:"workflow_id"`
	Elements    map[string]*TranslatedElement `json:"elements"`
	FlowText    map[string]pkg.TierContent    `json:"flow_text"` // "source->target" -> description
	Patterns    []Pattern                     `json:"patterns"`
	Navigation  []string                      `json:"navigation_aids"`
	Suggestions []string                      `json:"suggestions"`
	GeneratedAt time.Time                     `json:"generated_at"`
}
