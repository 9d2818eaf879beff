package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"flownarrator/internal/commentary"
	"flownarrator/internal/config"
	"flownarrator/internal/logger"
	"flownarrator/internal/metrics"
	"flownarrator/internal/narrative"
	"flownarrator/internal/personalization"
	"flownarrator/internal/respond"
	"flownarrator/internal/session"
	"flownarrator/internal/storage"
	"flownarrator/internal/translator"
	"flownarrator/pkg"
)

const sampleWorkflow = `{
  "id": "wf-order-alerts",
  "name": "Order Alerts",
  "description": "Watches incoming orders and notifies the team about the big ones",
  "nodes": [
    {"id": "new-order", "type": "webhook", "data": {"label": "New order received"}},
    {"id": "big-only", "type": "filter", "data": {"label": "Keep orders over $500"}},
    {"id": "shape-payload", "type": "transform", "data": {"label": "Format the alert"}},
    {"id": "notify-team", "type": "slack", "data": {"label": "Post to #sales"}}
  ],
  "edges": [
    {"source": "new-order", "target": "big-only"},
    {"source": "big-only", "target": "shape-payload"},
    {"source": "shape-payload", "target": "notify-team"}
  ]
}`

func loadConfig() *config.Config {
	if _, err := os.Stat("config.yaml"); err == nil {
		cfg, err := config.LoadFile("config.yaml")
		if err == nil {
			return cfg
		}
		log.Printf("config.yaml unreadable, falling back to environment: %v", err)
	}
	cfg, err := config.LoadEnv()
	if err != nil {
		log.Printf("environment configuration failed, using defaults: %v", err)
		return config.Default()
	}
	return cfg
}

func buildManager(ctx context.Context, cfg *config.Config) (*session.Manager, *commentary.Engine) {
	trans := translator.New(cfg.Translator.CacheSize, cfg.Translator.CacheTTL)
	composer := narrative.NewComposer()
	engine := commentary.NewEngine(cfg.Commentary.MaxTips)
	tracker := personalization.NewTracker(storage.NewMemoryStore[*personalization.Data](0))

	var store storage.Store[*session.ConversationSession]
	if cfg.Redis.URL != "" {
		redisStore, err := storage.NewRedisStore[*session.ConversationSession](ctx, "conversation", time.Duration(cfg.Redis.TTL)*time.Second)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, using in-memory session store")
			store = storage.NewMemoryStore[*session.ConversationSession](cfg.Session.TTL)
		} else {
			store = redisStore
		}
	} else {
		store = storage.NewMemoryStore[*session.ConversationSession](cfg.Session.TTL)
	}

	opts := []session.ManagerOption{
		session.WithMetrics(metrics.NewStaticProvider()),
		session.WithArchive(personalization.NewArchive("data/personalization")),
	}
	if cfg.Model.Provider == "openai" && cfg.Model.APIKey != "" {
		responder, err := respond.NewOpenAIResponder(ctx, cfg.Model)
		if err != nil {
			logger.Warn().Err(err).Msg("model responder unavailable, using templates")
		} else {
			opts = append(opts, session.WithResponder(responder))
		}
	}

	return session.NewManager(cfg.Session, store, trans, composer, engine, tracker, opts...), engine
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := loadConfig()
	if err := logger.InitLogger(cfg.Log); err != nil {
		log.Fatalf("logger init failed: %v", err)
	}

	ctx := context.Background()
	graph, err := pkg.ParseWorkflowGraph([]byte(sampleWorkflow))
	if err != nil {
		log.Fatalf("sample workflow unparsable: %v", err)
	}

	manager, engine := buildManager(ctx, cfg)
	profile := pkg.UserProfile{
		UserID: "demo-user",
		Tier:   pkg.TierNovice,
		Style:  pkg.CommunicationStyle{UsesAnalogy: true, Encouraging: true},
		Assistance: pkg.AssistancePreferences{
			ContextAware: true,
			Proactive:    true,
		},
	}

	sess, err := manager.StartSession(ctx, "", graph, profile)
	if err != nil {
		log.Fatalf("session start failed: %v", err)
	}
	fmt.Printf("=== Session %s (intelligence: %s) ===\n\n", sess.ID, sess.Intelligence)

	questions := []string{
		"Hi! What does this workflow do?",
		"What does the 'Keep orders over $500' step do?",
		"Okay, run it for me",
		"How is it going?",
	}

	for i, question := range questions {
		fmt.Printf("User: %s\n", question)
		result := manager.ProcessMessage(ctx, sess.ID, question, session.MessageContext{})
		fmt.Printf("Assistant: %s\n", result.Response)
		for _, s := range result.Suggestions {
			fmt.Printf("  suggestion: %s\n", s)
		}
		fmt.Printf("  (phase=%s confidence=%.2f)\n\n", result.Phase, result.Confidence)

		// Simulate a run once the user asks for one.
		if i == 2 {
			simulateRun(ctx, manager, engine, sess.ID, graph, profile.Tier)
		}
	}

	if _, err := manager.EndSession(ctx, sess.ID); err != nil {
		logger.Warn().Err(err).Msg("session end failed")
	}
}

func simulateRun(ctx context.Context, manager *session.Manager, engine *commentary.Engine, sessionID string, graph *pkg.WorkflowGraph, tier pkg.ExpertiseTier) {
	if engine == nil {
		return
	}
	run := engine.StartVisualization(graph.ID, "demo-user", "", tier, commentary.IntensityBalanced)
	active := true
	if err := manager.UpdateWorkflowContext(ctx, sessionID, session.WorkflowContextUpdate{
		RunActive:    &active,
		RunSessionID: &run.ID,
	}); err != nil {
		logger.Warn().Err(err).Msg("run context update failed")
	}

	events := []pkg.ExecutionEvent{
		{EventType: pkg.EventWorkflowStarted, WorkflowID: graph.ID, Data: map[string]any{"total_steps": len(graph.Nodes)}},
		{EventType: pkg.EventNodeCompleted, WorkflowID: graph.ID, NodeID: "new-order"},
		{EventType: pkg.EventNodeCompleted, WorkflowID: graph.ID, NodeID: "big-only"},
	}
	for _, event := range events {
		if c := engine.ProcessEvent(run.ID, event); c != nil {
			fmt.Printf("  [run] %s\n", c.Text.For(tier))
		}
	}
}
