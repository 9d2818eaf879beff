package respond

import (
	"context"
	"fmt"
	"strings"

	"flownarrator/internal/config"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ModelResponder phrases replies with a chat model. This is the
// production LLM plug; the engine runs fully without it.
type ModelResponder struct {
	model model.BaseChatModel
}

// NewModelResponder wraps an already-constructed chat model.
func NewModelResponder(chatModel model.BaseChatModel) *ModelResponder {
	return &ModelResponder{model: chatModel}
}

// NewOpenAIResponder builds a ModelResponder over the OpenAI-compatible
// provider configured in cfg.
func NewOpenAIResponder(ctx context.Context, cfg config.ModelConfig) (*ModelResponder, error) {
	maxTokens := cfg.MaxTokens
	temperature := float32(cfg.Temperature)

	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Name,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating chat model: %v", err)
	}

	return &ModelResponder{model: chatModel}, nil
}

const responderSystemPrompt = "You are a friendly workflow narrator. " +
	"Rephrase the provided subject matter for the stated audience tier without inventing facts. " +
	"Keep the reply short and conversational."

func (r *ModelResponder) Respond(ctx context.Context, prompt Prompt) (string, error) {
	var user strings.Builder
	user.WriteString("<conversation_context>\n")
	for _, line := range prompt.ContextLines {
		user.WriteString(line)
		user.WriteString("\n")
	}
	user.WriteString("</conversation_context>\n")
	fmt.Fprintf(&user, "Audience tier: %s\nStrategy: %s\nIntent: %s\nWorkflow: %s\n", prompt.Tier, prompt.Strategy, prompt.Intent, prompt.WorkflowName)
	fmt.Fprintf(&user, "<subject_matter>\n%s\n</subject_matter>", prompt.Topic)

	messages := []*schema.Message{
		schema.SystemMessage(responderSystemPrompt),
		schema.UserMessage(user.String()),
	}

	out, err := r.model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("error generating response: %v", err)
	}
	return out.Content, nil
}
