package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// SessionMetrics is the aggregate view for one conversation session.
type SessionMetrics struct {
	SessionID       string  `json:"session_id"`
	TurnCount       int     `json:"turn_count"`
	FallbackCount   int     `json:"fallback_count"`
	MeanConfidence  float64 `json:"mean_confidence"`
	totalConfidence float64
}

// Provider records and reports conversation metrics. Implementations
// must be deterministic for a given call sequence; generated or random
// numbers are not part of the contract.
type Provider interface {
	RecordTurn(sessionID string, confidence float64, fallback bool)
	SessionMetrics(sessionID string) (SessionMetrics, bool)
}

// StaticProvider is the in-process Provider and the deterministic test
// double: it reports exactly what was recorded.
type StaticProvider struct {
	mu       sync.RWMutex
	sessions map[string]*SessionMetrics
}

func NewStaticProvider() *StaticProvider {
	return &StaticProvider{sessions: make(map[string]*SessionMetrics)}
}

func (p *StaticProvider) RecordTurn(sessionID string, confidence float64, fallback bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	m, ok := p.sessions[sessionID]
	if !ok {
		m = &SessionMetrics{SessionID: sessionID}
		p.sessions[sessionID] = m
	}
	m.TurnCount++
	if fallback {
		m.FallbackCount++
	}
	m.totalConfidence += confidence
	m.MeanConfidence = m.totalConfidence / float64(m.TurnCount)
}

func (p *StaticProvider) SessionMetrics(sessionID string) (SessionMetrics, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	m, ok := p.sessions[sessionID]
	if !ok {
		return SessionMetrics{}, false
	}
	return *m, true
}

// PrometheusProvider exports turn counters and confidence observations
// alongside the per-session aggregates of an embedded StaticProvider.
type PrometheusProvider struct {
	*StaticProvider
	turns      *prometheus.CounterVec
	fallbacks  *prometheus.CounterVec
	confidence prometheus.Histogram
}

// NewPrometheusProvider registers collectors on the given registerer.
func NewPrometheusProvider(reg prometheus.Registerer) *PrometheusProvider {
	p := &PrometheusProvider{
		StaticProvider: NewStaticProvider(),
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flownarrator_turns_total",
			Help: "Conversation turns processed, by session.",
		}, []string{"session_id"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flownarrator_fallback_responses_total",
			Help: "Turns answered with a fallback response, by session.",
		}, []string{"session_id"}),
		confidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "flownarrator_response_confidence",
			Help:    "Confidence scores of generated responses.",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
	}
	reg.MustRegister(p.turns, p.fallbacks, p.confidence)
	return p
}

func (p *PrometheusProvider) RecordTurn(sessionID string, confidence float64, fallback bool) {
	p.StaticProvider.RecordTurn(sessionID, confidence, fallback)
	p.turns.WithLabelValues(sessionID).Inc()
	if fallback {
		p.fallbacks.WithLabelValues(sessionID).Inc()
	}
	p.confidence.Observe(confidence)
}
