package respond

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flownarrator/pkg"
)

func TestTemplateResponderCoversAllStrategies(t *testing.T) {
	responder := NewTemplateResponder()
	ctx := context.Background()

	strategies := []Strategy{
		StrategyExplain, StrategyGuide, StrategyNarrate, StrategyTroubleshoot,
		StrategyOptimize, StrategyEducate, StrategyMaintain, StrategyEncourage,
	}
	for _, strategy := range strategies {
		reply, err := responder.Respond(ctx, Prompt{
			Strategy:     strategy,
			Tier:         pkg.TierBeginner,
			WorkflowName: "Order Alerts",
			Topic:        "The workflow watches orders and flags the big ones.",
		})
		require.NoError(t, err, "strategy %s", strategy)
		assert.NotEmpty(t, reply, "strategy %s", strategy)
		assert.Contains(t, reply, "watches orders", "strategy %s must present the topic", strategy)
	}
}

func TestTemplateResponderIsDeterministic(t *testing.T) {
	responder := NewTemplateResponder()
	ctx := context.Background()
	prompt := Prompt{Strategy: StrategyNarrate, Topic: "step two is running"}

	first, err := responder.Respond(ctx, prompt)
	require.NoError(t, err)
	second, err := responder.Respond(ctx, prompt)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTemplateResponderEmptyTopic(t *testing.T) {
	responder := NewTemplateResponder()
	reply, err := responder.Respond(context.Background(), Prompt{Strategy: StrategyExplain})
	require.NoError(t, err)
	assert.Contains(t, reply, "this workflow", "empty topics degrade to a generic offer, never empty text")
}
