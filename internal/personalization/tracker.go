package personalization

import (
	"context"
	"strings"
	"time"

	"flownarrator/internal/storage"
)

// CommunicationStats accumulates how a user tends to talk to the
// engine.
type CommunicationStats struct {
	MessageCount   int     `json:"message_count"`
	QuestionCount  int     `json:"question_count"`
	TotalWords     int     `json:"total_words"`
	MeanWordCount  float64 `json:"mean_word_count"`
	QuestionRatio  float64 `json:"question_ratio"`
	LastIntent     string  `json:"last_intent,omitempty"`
	FrequentIntent string  `json:"frequent_intent,omitempty"`
}

// Adaptation records one personalization adjustment and why it
// happened.
type Adaptation struct {
	At     time.Time `json:"at"`
	Change string    `json:"change"`
	Reason string    `json:"reason"`
}

// Data is the per-user personalization state, accumulated across
// sessions. It is mutated incrementally and never deleted within the
// process lifetime; durability belongs to an external store.
type Data struct {
	UserID              string             `json:"user_id"`
	Stats               CommunicationStats `json:"stats"`
	LearnedConcepts     map[string]bool    `json:"learned_concepts"`
	WorkflowFamiliarity map[string]float64 `json:"workflow_familiarity"`
	IntentCounts        map[string]int     `json:"intent_counts"`
	Adaptations         []Adaptation       `json:"adaptations"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

func newData(userID string) *Data {
	return &Data{
		UserID:              userID,
		LearnedConcepts:     make(map[string]bool),
		WorkflowFamiliarity: make(map[string]float64),
		IntentCounts:        make(map[string]int),
	}
}

// Tracker folds conversation observations into per-user Data.
type Tracker struct {
	store storage.Store[*Data]
}

// NewTracker builds a tracker over the given store. Pass a
// storage.MemoryStore with zero TTL for process-lifetime retention.
func NewTracker(store storage.Store[*Data]) *Tracker {
	return &Tracker{store: store}
}

// Get returns the user's personalization data, creating an empty record
// on first sight.
func (t *Tracker) Get(ctx context.Context, userID string) *Data {
	data, err := t.store.Get(ctx, userID)
	if err != nil {
		return newData(userID)
	}
	return data
}

// Observe folds one user message into the profile. familiarityDelta
// grows the user's familiarity with the workflow they are discussing.
func (t *Tracker) Observe(ctx context.Context, userID, workflowID, text, intent string) *Data {
	data := t.Get(ctx, userID)

	words := len(strings.Fields(text))
	data.Stats.MessageCount++
	data.Stats.TotalWords += words
	data.Stats.MeanWordCount = float64(data.Stats.TotalWords) / float64(data.Stats.MessageCount)
	if strings.Contains(text, "?") {
		data.Stats.QuestionCount++
	}
	data.Stats.QuestionRatio = float64(data.Stats.QuestionCount) / float64(data.Stats.MessageCount)
	data.Stats.LastIntent = intent

	data.IntentCounts[intent]++
	if data.IntentCounts[intent] > data.IntentCounts[data.Stats.FrequentIntent] {
		data.Stats.FrequentIntent = intent
	}

	if workflowID != "" {
		familiarity := data.WorkflowFamiliarity[workflowID] + 0.05
		if familiarity > 1.0 {
			familiarity = 1.0
		}
		data.WorkflowFamiliarity[workflowID] = familiarity
	}

	data.UpdatedAt = time.Now()
	t.store.Put(ctx, userID, data)
	return data
}

// MarkConceptLearned records that an explanation of a concept was
// delivered to the user.
func (t *Tracker) MarkConceptLearned(ctx context.Context, userID, concept string) {
	data := t.Get(ctx, userID)
	if data.LearnedConcepts[concept] {
		return
	}
	data.LearnedConcepts[concept] = true
	data.Adaptations = append(data.Adaptations, Adaptation{
		At:     time.Now(),
		Change: "concept:" + concept,
		Reason: "explanation delivered",
	})
	data.UpdatedAt = time.Now()
	t.store.Put(ctx, userID, data)
}

// Familiarity reports the user's familiarity with a workflow in [0,1].
func (t *Tracker) Familiarity(ctx context.Context, userID, workflowID string) float64 {
	return t.Get(ctx, userID).WorkflowFamiliarity[workflowID]
}
