package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"flownarrator/internal/commentary"
	"flownarrator/internal/config"
	"flownarrator/internal/logger"
	"flownarrator/internal/metrics"
	"flownarrator/internal/narrative"
	"flownarrator/internal/nlu"
	"flownarrator/internal/personalization"
	"flownarrator/internal/respond"
	"flownarrator/internal/storage"
	"flownarrator/internal/translator"
	"flownarrator/pkg"
)

const fallbackApology = "I'm sorry, I ran into a problem while working on that. Could you rephrase, or ask me something else about this workflow?"

// Manager orchestrates the full conversation pipeline: intent
// recognition, strategy selection, response phrasing, need prediction,
// personalization and metrics, around a persistent session store.
type Manager struct {
	cfg        config.SessionConfig
	store      storage.Store[*ConversationSession]
	recognizer nlu.Recognizer
	responder  respond.Responder
	translator *translator.Translator
	composer   *narrative.Composer
	commentary *commentary.Engine
	tracker    *personalization.Tracker
	archive    *personalization.Archive
	metrics    metrics.Provider
	predictor  NeedPredictor
}

// ManagerOption customizes a Manager at construction.
type ManagerOption func(*Manager)

// WithRecognizer replaces the default keyword recognizer.
func WithRecognizer(r nlu.Recognizer) ManagerOption {
	return func(m *Manager) { m.recognizer = r }
}

// WithResponder replaces the default template responder, typically with
// a model-backed one.
func WithResponder(r respond.Responder) ManagerOption {
	return func(m *Manager) { m.responder = r }
}

// WithPredictor replaces the default heuristic need predictor.
func WithPredictor(p NeedPredictor) ManagerOption {
	return func(m *Manager) { m.predictor = p }
}

// WithMetrics replaces the default static metrics provider.
func WithMetrics(p metrics.Provider) ManagerOption {
	return func(m *Manager) { m.metrics = p }
}

// WithArchive enables long-term snapshots of personalization data when
// sessions end.
func WithArchive(a *personalization.Archive) ManagerOption {
	return func(m *Manager) { m.archive = a }
}

// NewManager builds a Manager. The store decides persistence (memory or
// Redis); everything else has a deterministic default.
func NewManager(
	cfg config.SessionConfig,
	store storage.Store[*ConversationSession],
	trans *translator.Translator,
	composer *narrative.Composer,
	engine *commentary.Engine,
	tracker *personalization.Tracker,
	opts ...ManagerOption,
) *Manager {
	m := &Manager{
		cfg:        cfg,
		store:      store,
		recognizer: nlu.NewKeywordRecognizer(),
		responder:  respond.NewTemplateResponder(),
		translator: trans,
		composer:   composer,
		commentary: engine,
		tracker:    tracker,
		metrics:    metrics.NewStaticProvider(),
		predictor:  heuristicPredictor{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// StartSession creates a session and seeds its workflow context once:
// the narrative overview and graph translation are generated here, not
// per message.
func (m *Manager) StartSession(ctx context.Context, sessionID string, graph *pkg.WorkflowGraph, profile pkg.UserProfile) (*ConversationSession, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	now := time.Now()
	sess := &ConversationSession{
		ID:           sessionID,
		UserID:       profile.UserID,
		Profile:      profile,
		Phase:        PhaseDiscovery,
		Intelligence: deriveIntelligence(profile.Assistance),
		CreatedAt:    now,
		UpdatedAt:    now,
		GraphSnapshot: graph,
	}

	if graph != nil {
		sess.Workflow = WorkflowContext{
			WorkflowID: graph.ID,
			Name:       graph.Name,
			NodeCount:  len(graph.Nodes),
		}
		story := m.composer.ComposeNarrative(graph, profile.Tier, styleForProfile(profile), narrative.Customizations{})
		sess.Workflow.Overview = story.Overview.For(profile.Tier)
		translation := m.translator.TranslateGraph(graph, translator.TranslationContext{
			WorkflowID:  graph.ID,
			UserID:      profile.UserID,
			Tier:        profile.Tier,
			Verbosity:   profile.Verbosity,
			Personalize: profile.Personalize,
		})
		for _, aid := range translation.Navigation {
			sess.pushContext("focus", aid, m.cfg.ContextStackCap)
		}
		sess.pushContext("intent", "session_started", m.cfg.ContextStackCap)
	}

	if err := m.store.Put(ctx, sessionID, sess); err != nil {
		return nil, fmt.Errorf("persist session %s: %w", sessionID, err)
	}
	logger.Info().
		Str("session_id", sessionID).
		Str("user_id", profile.UserID).
		Str("intelligence", string(sess.Intelligence)).
		Msg("conversation session started")
	return sess, nil
}

// ProcessMessage runs one conversational turn. It always returns a
// well-formed result: internal failures degrade to an apologetic
// low-confidence reply, never an error to the caller.
func (m *Manager) ProcessMessage(ctx context.Context, sessionID, text string, msgCtx MessageContext) (result *MessageResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Str("session_id", sessionID).
				Interface("panic", r).
				Msg("message processing panicked, returning fallback result")
			result = m.fallbackResult(sessionID, PhaseDiscovery)
		}
	}()

	sess, err := m.store.Get(ctx, sessionID)
	if err != nil {
		logger.Warn().Str("session_id", sessionID).Err(err).Msg("session lookup failed")
		return m.fallbackResult(sessionID, PhaseDiscovery)
	}

	userTurn := ConversationTurn{
		ID:        uuid.NewString(),
		Speaker:   "user",
		Content:   text,
		Timestamp: time.Now(),
	}

	recognized, err := m.recognizer.Recognize(ctx, text, sess.Graph())
	if err != nil || recognized == nil {
		logger.Warn().Str("session_id", sessionID).Err(err).Msg("intent recognition failed")
		sess.appendTurn(userTurn, m.cfg.HistoryCap)
		m.persist(ctx, sess)
		return m.fallbackResult(sessionID, sess.Phase)
	}
	userTurn.Intent = recognized.PrimaryIntent
	userTurn.Entities = recognized.Entities
	sess.appendTurn(userTurn, m.cfg.HistoryCap)

	sess.pushContext("intent", recognized.PrimaryIntent, m.cfg.ContextStackCap)
	for _, entity := range recognized.Entities {
		if entity.Type == "node" {
			sess.pushContext("node", entity.Value, m.cfg.ContextStackCap)
			sess.Workflow.FocusedNode = entity.Value
		}
	}
	if msgCtx.FocusedElement != "" {
		sess.Workflow.FocusedNode = msgCtx.FocusedElement
		sess.pushContext("focus", msgCtx.FocusedElement, m.cfg.ContextStackCap)
	}

	sess.Phase = advancePhase(sess.Phase, phaseForIntent(recognized.PrimaryIntent))

	strategy := SelectStrategy(sess.Phase, recognized.PrimaryIntent)
	topic := m.topicFor(ctx, sess, recognized)

	prompt := respond.Prompt{
		Strategy:     strategy,
		Intent:       recognized.PrimaryIntent,
		Tier:         sess.Profile.Tier,
		WorkflowName: sess.Workflow.Name,
		Topic:        topic,
		ContextLines: sess.recentContextLines(10),
	}
	response, err := m.responder.Respond(ctx, prompt)
	fallbackUsed := false
	confidence := recognized.ImportanceScore
	if err != nil || response == "" {
		logger.Warn().Str("session_id", sessionID).Err(err).Msg("responder failed, using fallback text")
		response = fallbackApology
		confidence = 0.3
		fallbackUsed = true
	}

	suggestions, actions, followUp := m.predictor.Predict(sess, recognized)
	suggestions = capStrings(suggestions, m.cfg.MaxSuggestions)
	followUp = capStrings(followUp, m.cfg.MaxSuggestions)
	if len(actions) > m.cfg.MaxSuggestions {
		actions = actions[:m.cfg.MaxSuggestions]
	}

	sess.appendTurn(ConversationTurn{
		ID:        uuid.NewString(),
		Speaker:   "assistant",
		Content:   response,
		Intent:    recognized.PrimaryIntent,
		FollowUps: followUp,
		Timestamp: time.Now(),
	}, m.cfg.HistoryCap)

	if m.tracker != nil {
		m.tracker.Observe(ctx, sess.UserID, sess.Workflow.WorkflowID, text, recognized.PrimaryIntent)
		if recognized.PrimaryIntent == nlu.IntentLearnConcept {
			for _, entity := range recognized.Entities {
				if entity.Type == "concept" || entity.Type == "node" {
					m.tracker.MarkConceptLearned(ctx, sess.UserID, entity.Value)
				}
			}
		}
	}
	m.metrics.RecordTurn(sessionID, confidence, fallbackUsed)

	m.persist(ctx, sess)
	return &MessageResult{
		Response:    response,
		Suggestions: suggestions,
		Actions:     actions,
		FollowUp:    followUp,
		Phase:       sess.Phase,
		Confidence:  confidence,
	}
}

// UpdateWorkflowContext applies an external change (a graph edit, a run
// starting or ending) to the session's workflow snapshot.
func (m *Manager) UpdateWorkflowContext(ctx context.Context, sessionID string, update WorkflowContextUpdate) error {
	sess, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if update.Graph != nil {
		sess.GraphSnapshot = update.Graph
		sess.Workflow.WorkflowID = update.Graph.ID
		sess.Workflow.Name = update.Graph.Name
		sess.Workflow.NodeCount = len(update.Graph.Nodes)
		for _, node := range update.Graph.Nodes {
			m.translator.InvalidateElement(node.ID)
		}
	}
	if update.FocusedNode != nil {
		sess.Workflow.FocusedNode = *update.FocusedNode
		sess.pushContext("focus", *update.FocusedNode, m.cfg.ContextStackCap)
	}
	if update.RunActive != nil {
		sess.Workflow.RunActive = *update.RunActive
		if *update.RunActive {
			sess.pushContext("run", "started", m.cfg.ContextStackCap)
		} else {
			sess.pushContext("run", "ended", m.cfg.ContextStackCap)
		}
	}
	if update.RunSessionID != nil {
		sess.Workflow.RunSessionID = *update.RunSessionID
	}
	m.persist(ctx, sess)
	return nil
}

// Session loads a session by ID.
func (m *Manager) Session(ctx context.Context, sessionID string) (*ConversationSession, error) {
	return m.store.Get(ctx, sessionID)
}

// EndSession removes the session from the store and returns its final
// state for archival.
func (m *Manager) EndSession(ctx context.Context, sessionID string) (*ConversationSession, error) {
	sess, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if err := m.store.Delete(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	if m.archive != nil && m.tracker != nil {
		if err := m.archive.Save(m.tracker.Get(ctx, sess.UserID)); err != nil {
			logger.Warn().Str("user_id", sess.UserID).Err(err).Msg("personalization archive failed")
		}
	}
	if stats, ok := m.metrics.SessionMetrics(sessionID); ok {
		logger.Info().
			Str("session_id", sessionID).
			Int("turns", stats.TurnCount).
			Float64("mean_confidence", stats.MeanConfidence).
			Msg("conversation session ended")
	}
	return sess, nil
}

// topicFor builds the subject-matter text the responder will present,
// choosing the generator that matches the recognized intent.
func (m *Manager) topicFor(ctx context.Context, sess *ConversationSession, recognized *nlu.Result) string {
	graph := sess.Graph()
	tier := sess.Profile.Tier

	switch recognized.PrimaryIntent {
	case nlu.IntentExplainNode:
		if graph == nil {
			return sess.Workflow.Overview
		}
		nodeID := sess.Workflow.FocusedNode
		for _, entity := range recognized.Entities {
			if entity.Type == "node" {
				nodeID = entity.Value
			}
		}
		node := graph.FindNode(nodeID)
		if node == nil {
			return sess.Workflow.Overview
		}
		translated := m.translator.TranslateElement(node, node.Type, translator.TranslationContext{
			WorkflowID:  graph.ID,
			UserID:      sess.UserID,
			Tier:        tier,
			Verbosity:   sess.Profile.Verbosity,
			Personalize: sess.Profile.Personalize,
		}, graph)
		return translated.Summary.For(tier)

	case nlu.IntentExplainWorkflow:
		if graph == nil {
			return sess.Workflow.Overview
		}
		story := m.composer.ComposeNarrative(graph, tier, styleForProfile(sess.Profile), narrative.Customizations{})
		return story.Overview.For(tier) + " " + story.FlowExplanation.For(tier)

	case nlu.IntentExecutionStatus:
		if sess.Workflow.RunActive && sess.Workflow.RunSessionID != "" {
			if snapshot := m.commentary.SnapshotOf(sess.Workflow.RunSessionID); snapshot != nil {
				return fmt.Sprintf("The run is in the %s phase, %d of %d steps done (%.0f%%).",
					snapshot.Phase, snapshot.Progress.CompletedSteps, snapshot.Progress.TotalSteps, snapshot.Progress.Percent())
			}
		}
		return "There is no active run right now."

	case nlu.IntentOptimize:
		if graph != nil {
			story := m.composer.ComposeNarrative(graph, tier, styleForProfile(sess.Profile), narrative.Customizations{})
			if story.PerformanceNotes != "" {
				return story.PerformanceNotes
			}
		}
		return "Looking at step ordering and any external calls is the usual place to start."

	case nlu.IntentTroubleshoot:
		return "Let's walk through what happened, starting from the last step that ran."

	case nlu.IntentLearnConcept:
		return sess.Workflow.Overview

	default:
		return sess.Workflow.Overview
	}
}

// persist writes the session back; store errors are logged, not
// surfaced, so a flaky backend cannot break the conversation.
func (m *Manager) persist(ctx context.Context, sess *ConversationSession) {
	sess.UpdatedAt = time.Now()
	if err := m.store.Put(ctx, sess.ID, sess); err != nil {
		logger.Error().Str("session_id", sess.ID).Err(err).Msg("session persist failed")
	}
}

func (m *Manager) fallbackResult(sessionID string, phase ConversationPhase) *MessageResult {
	m.metrics.RecordTurn(sessionID, 0.2, true)
	return &MessageResult{
		Response: fallbackApology,
		Suggestions: []string{
			"Ask me to explain this workflow",
			"Ask what a specific step does",
		},
		Phase:      phase,
		Confidence: 0.2,
	}
}

// phaseForIntent maps an intent to the phase the conversation should
// head toward; empty means stay put.
func phaseForIntent(intent string) ConversationPhase {
	switch intent {
	case nlu.IntentExplainWorkflow, nlu.IntentExplainNode:
		return PhaseExploration
	case nlu.IntentRunWorkflow, nlu.IntentExecutionStatus:
		return PhaseExecution
	case nlu.IntentTroubleshoot:
		return PhaseTroubleshooting
	case nlu.IntentOptimize:
		return PhaseOptimization
	case nlu.IntentLearnConcept:
		return PhaseLearning
	case nlu.IntentMaintain, nlu.IntentModifyWorkflow:
		return PhaseMaintenance
	}
	return ""
}

// styleForProfile maps communication preferences to a narrative voice.
func styleForProfile(profile pkg.UserProfile) narrative.NarrativeStyle {
	switch {
	case profile.Style.UsesAnalogy:
		return narrative.StyleStorytelling
	case profile.Style.Formal:
		return narrative.StyleProfessional
	case profile.Style.DetailHeavy:
		return narrative.StyleEducational
	default:
		return narrative.StyleCasual
	}
}

func capStrings(values []string, max int) []string {
	if max > 0 && len(values) > max {
		return values[:max]
	}
	return values
}

// contains reports whether any context entry mentions the value; used
// by predictors to avoid repeating suggestions.
func (s *ConversationSession) contains(kind, value string) bool {
	for _, entry := range s.ContextStack {
		if entry.Kind == kind && strings.EqualFold(entry.Value, value) {
			return true
		}
	}
	return false
}
