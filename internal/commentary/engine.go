package commentary

import (
	"sync"
	"time"

	"flownarrator/internal/logger"
	"flownarrator/pkg"

	"github.com/google/uuid"
)

// Engine narrates workflow execution. One ExecutionSession exists per
// active run visualization; the engine owns its phase machine. The
// mutex guards the session map only — per-session calls are
// single-writer by contract.
type Engine struct {
	mu         sync.RWMutex
	sessions   map[string]*ExecutionSession
	generators map[pkg.ExecutionEventType]CommentaryGenerator
	maxTips    int
}

// NewEngine builds an Engine with the default generator registry.
func NewEngine(maxTips int) *Engine {
	if maxTips <= 0 {
		maxTips = 3
	}
	return &Engine{
		sessions:   make(map[string]*ExecutionSession),
		generators: defaultCommentaryGenerators(),
		maxTips:    maxTips,
	}
}

// RegisterGenerator adds or overrides the generator for an event type.
func (e *Engine) RegisterGenerator(eventType pkg.ExecutionEventType, generator CommentaryGenerator) {
	e.generators[eventType] = generator
}

// StartVisualization opens an execution session for a run.
func (e *Engine) StartVisualization(workflowID, userID, sessionID string, tier pkg.ExpertiseTier, intensity Intensity) *ExecutionSession {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	session := &ExecutionSession{
		ID:         sessionID,
		WorkflowID: workflowID,
		UserID:     userID,
		Tier:       tier,
		Intensity:  intensity,
		Phase:      PhasePreExecution,
		Active:     true,
		StartedAt:  time.Now(),
	}

	e.mu.Lock()
	e.sessions[sessionID] = session
	e.mu.Unlock()

	logger.Info().
		Str("session_id", sessionID).
		Str("workflow_id", workflowID).
		Str("intensity", string(intensity)).
		Msg("execution visualization started")
	return session
}

// ProcessEvent narrates one execution event. Unknown or inactive
// sessions return nil (logged, never an error); generator failures
// degrade to a cautious error commentary. Nothing raises past here.
func (e *Engine) ProcessEvent(sessionID string, event pkg.ExecutionEvent) *ExecutionCommentary {
	e.mu.RLock()
	session, exists := e.sessions[sessionID]
	e.mu.RUnlock()

	if !exists {
		logger.Warn().Str("session_id", sessionID).Msg("event for unknown execution session dropped")
		return nil
	}
	if !session.Active {
		logger.Debug().Str("session_id", sessionID).Msg("event for inactive execution session dropped")
		return nil
	}

	session.Events = append(session.Events, event)
	e.advancePhase(session, event)
	reconcileProgress(session, event)

	commentary := e.narrate(session, event)
	commentary.Phase = session.Phase
	commentary.Interactive.ProgressPercent = session.Progress.Percent()
	e.applyIntensity(session, event, commentary)

	session.Commentaries = append(session.Commentaries, *commentary)

	if session.Phase.Terminal() {
		session.Active = false
		session.EndedAt = time.Now()
	}
	return commentary
}

// Cancel moves a session to CANCELLED from any non-terminal phase.
// History already recorded stays; further events return nil.
func (e *Engine) Cancel(sessionID string) bool {
	e.mu.RLock()
	session, exists := e.sessions[sessionID]
	e.mu.RUnlock()

	if !exists || session.Phase.Terminal() {
		return false
	}
	session.Phase = PhaseCancelled
	session.Active = false
	session.EndedAt = time.Now()
	logger.Info().Str("session_id", sessionID).Msg("execution visualization cancelled")
	return true
}

// AdjustIntensity responds to engagement signals. It only changes
// presentation richness going forward.
func (e *Engine) AdjustIntensity(sessionID, signal string) {
	e.mu.RLock()
	session, exists := e.sessions[sessionID]
	e.mu.RUnlock()
	if !exists {
		return
	}

	switch signal {
	case "paused", "skipped", "dismissed":
		if session.Intensity == IntensityRich {
			session.Intensity = IntensityBalanced
		} else {
			session.Intensity = IntensityMinimal
		}
	case "engaged", "expanded", "asked_more":
		if session.Intensity == IntensityMinimal {
			session.Intensity = IntensityBalanced
		} else {
			session.Intensity = IntensityRich
		}
	}
}

// Session returns the session for id, or nil.
func (e *Engine) Session(sessionID string) *ExecutionSession {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sessions[sessionID]
}

// SnapshotOf produces a progress-visualization snapshot, or nil for an
// unknown session.
func (e *Engine) SnapshotOf(sessionID string) *Snapshot {
	e.mu.RLock()
	session, exists := e.sessions[sessionID]
	e.mu.RUnlock()
	if !exists {
		return nil
	}
	return &Snapshot{
		SessionID:       session.ID,
		WorkflowID:      session.WorkflowID,
		Phase:           session.Phase,
		Progress:        session.Progress,
		EventCount:      len(session.Events),
		CommentaryCount: len(session.Commentaries),
		Active:          session.Active,
		TakenAt:         time.Now(),
	}
}

// advancePhase walks the session's phase machine toward the phase the
// event implies, taking legal intermediate hops. Illegal targets leave
// the phase unchanged.
func (e *Engine) advancePhase(session *ExecutionSession, event pkg.ExecutionEvent) {
	target, ok := phaseForEvent(event.EventType)
	if !ok || session.Phase == target {
		return
	}
	path := session.Phase.pathTo(target)
	if path == nil {
		logger.Debug().
			Str("session_id", session.ID).
			Str("from", string(session.Phase)).
			Str("to", string(target)).
			Msg("no legal phase path for event, phase unchanged")
		return
	}
	session.Phase = path[len(path)-1]
}

// phaseForEvent maps event types to the phase they imply. Events with
// no phase implication (milestones, data transfers) keep the current
// phase.
func phaseForEvent(eventType pkg.ExecutionEventType) (ExecutionPhase, bool) {
	switch eventType {
	case pkg.EventWorkflowStarted:
		return PhaseRunning, true
	case pkg.EventNodeStarted:
		return PhaseRunning, true
	case pkg.EventNodeCompleted:
		return PhaseStepTransition, true
	case pkg.EventNodeFailed, pkg.EventErrorOccurred, pkg.EventWorkflowFailed:
		return PhaseErrorHandling, true
	case pkg.EventErrorResolved, pkg.EventUserInputReceived:
		return PhaseRunning, true
	case pkg.EventUserInputRequired:
		return PhaseWaitingInput, true
	case pkg.EventWorkflowCompleted:
		return PhaseCompleted, true
	case pkg.EventExecutionCancel:
		return PhaseCancelled, true
	}
	return "", false
}

// reconcileProgress folds event progress data into the session without
// ever letting displayed completion regress.
func reconcileProgress(session *ExecutionSession, event pkg.ExecutionEvent) {
	if total, ok := intFromData(event.Data, "total_steps"); ok && total > session.Progress.TotalSteps {
		session.Progress.TotalSteps = total
	}
	if completed, ok := intFromData(event.Data, "completed_steps"); ok {
		if completed > session.Progress.CompletedSteps {
			session.Progress.CompletedSteps = completed
		}
	} else if event.EventType == pkg.EventNodeCompleted {
		session.Progress.CompletedSteps++
	}
	if step, ok := event.Data["current_step"].(string); ok && step != "" {
		session.Progress.CurrentStep = step
	} else if event.NodeID != "" {
		session.Progress.CurrentStep = event.NodeID
	}
}

func intFromData(data map[string]any, key string) (int, bool) {
	switch v := data[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

// narrate runs the registered generator for the event, falling back to
// generic commentary for unregistered types and to a cautious error
// commentary when a generator fails.
func (e *Engine) narrate(session *ExecutionSession, event pkg.ExecutionEvent) (result *ExecutionCommentary) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn().
				Str("session_id", session.ID).
				Str("event_type", string(event.EventType)).
				Any("panic", r).
				Msg("commentary generator failed, using error commentary")
			result = errorCommentary(session, event)
		}
	}()

	generator, ok := e.generators[event.EventType]
	if !ok {
		return genericCommentary(session, event)
	}

	commentary, err := generator.Narrate(session, event)
	if err != nil {
		logger.Warn().
			Str("session_id", session.ID).
			Str("event_type", string(event.EventType)).
			Err(err).
			Msg("commentary generator returned error, using error commentary")
		return errorCommentary(session, event)
	}
	commentary.ID = uuid.NewString()
	commentary.EventID = event.EventID
	commentary.EventType = event.EventType
	commentary.Timestamp = time.Now()
	return commentary
}

// applyIntensity trims decoration to the session's intensity. Error and
// milestone events always keep their full payload.
func (e *Engine) applyIntensity(session *ExecutionSession, event pkg.ExecutionEvent, commentary *ExecutionCommentary) {
	if len(commentary.Tips) > e.maxTips {
		commentary.Tips = commentary.Tips[:e.maxTips]
	}
	switch event.EventType {
	case pkg.EventErrorOccurred, pkg.EventNodeFailed, pkg.EventWorkflowFailed, pkg.EventMilestoneReached:
		return
	}
	switch session.Intensity {
	case IntensityMinimal:
		commentary.Tips = nil
		if len(commentary.Interactive.StatusChips) > 1 {
			commentary.Interactive.StatusChips = commentary.Interactive.StatusChips[:1]
		}
	case IntensityBalanced:
		if len(commentary.Tips) > 1 {
			commentary.Tips = commentary.Tips[:1]
		}
	}
}
