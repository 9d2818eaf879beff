package commentary

import (
	"time"

	"flownarrator/pkg"
)

// Intensity controls commentary richness, never coverage: adjusting it
// changes how much decoration an event gets, not whether a tier or an
// error/milestone event is reported.
type Intensity string

const (
	IntensityMinimal  Intensity = "minimal"
	IntensityBalanced Intensity = "balanced"
	IntensityRich     Intensity = "rich"
)

// ParseIntensity normalizes an intensity string.
func ParseIntensity(s string) Intensity {
	switch Intensity(s) {
	case IntensityMinimal, IntensityBalanced, IntensityRich:
		return Intensity(s)
	}
	return IntensityBalanced
}

// Progress tracks displayed run progress. CompletedSteps never
// regresses within a session; out-of-order events are reconciled.
type Progress struct {
	CompletedSteps int    `json:"completed_steps"`
	TotalSteps     int    `json:"total_steps"`
	CurrentStep    string `json:"current_step,omitempty"`
}

// Percent returns displayed completion in [0,100].
func (p Progress) Percent() float64 {
	if p.TotalSteps <= 0 {
		return 0
	}
	percent := float64(p.CompletedSteps) / float64(p.TotalSteps) * 100
	if percent > 100 {
		return 100
	}
	return percent
}

// InteractivePayload carries the display hints attached to commentary.
type InteractivePayload struct {
	ProgressPercent float64               `json:"progress_percent"`
	ShowSpinner     bool                  `json:"show_spinner"`
	StatusChips     []string              `json:"status_chips,omitempty"`
	Actions         []pkg.SuggestedAction `json:"actions,omitempty"`
}

// ExecutionCommentary is the tier-complete narration of one execution
// event plus its interactive display payload.
type ExecutionCommentary struct {
	ID          string             `json:"id"`
	EventID     string             `json:"event_id"`
	EventType   pkg.ExecutionEventType `json:"event_type"`
	Phase       ExecutionPhase     `json:"phase"`
	Tone        string             `json:"tone"` // upbeat, neutral, cautious, celebratory
	Text        pkg.TierContent    `json:"text"`
	Interactive InteractivePayload `json:"interactive"`
	Tips        []string           `json:"tips,omitempty"`
	Timestamp   time.Time          `json:"timestamp"`
}

// Snapshot is a progress-visualization view of one execution session.
type Snapshot struct {
	SessionID      string         `json:"session_id"`
	WorkflowID     string         `json:"workflow_id"`
	Phase          ExecutionPhase `json:"phase"`
	Progress       Progress       `json:"progress"`
	EventCount     int            `json:"event_count"`
	CommentaryCount int           `json:"commentary_count"`
	Active         bool           `json:"active"`
	TakenAt        time.Time      `json:"taken_at"`
}

// ExecutionSession is the per-run visualization state: the phase
// machine, full event log, commentary log and progress.
type ExecutionSession struct {
	ID           string                `json:"id"`
	WorkflowID   string                `json:"workflow_id"`
	UserID       string                `json:"user_id"`
	Tier         pkg.ExpertiseTier     `json:"tier"`
	Intensity    Intensity             `json:"intensity"`
	Phase        ExecutionPhase        `json:"phase"`
	Progress     Progress              `json:"progress"`
	Events       []pkg.ExecutionEvent  `json:"events"`
	Commentaries []ExecutionCommentary `json:"commentaries"`
	Active       bool                  `json:"active"`
	StartedAt    time.Time             `json:"started_at"`
	EndedAt      time.Time             `json:"ended_at,omitempty"`
}
