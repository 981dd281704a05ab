package inference

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/sorynlabs/soryn/internal/domain"
)

// OpenAIProvider talks to the OpenAI chat completions API. Models may carry
// their own API key; fallbackKey covers the ones that do not.
type OpenAIProvider struct {
	fallbackKey string
}

func NewOpenAIProvider(fallbackKey string) *OpenAIProvider {
	return &OpenAIProvider{fallbackKey: fallbackKey}
}

func (p *OpenAIProvider) Name() string { return domain.ProviderOpenAI }

func (p *OpenAIProvider) Infer(ctx context.Context, model domain.Model, req Request) (*Result, error) {
	key := model.APIKey
	if key == "" {
		key = p.fallbackKey
	}
	if key == "" {
		return nil, fmt.Errorf("openai API key not found for model %q", model.ID)
	}

	apiModel := model.APIModelName
	if apiModel == "" {
		apiModel = model.ID
	}

	var messages []openai.ChatCompletionMessage
	if len(req.Messages) > 0 {
		messages = make([]openai.ChatCompletionMessage, 0, len(req.Messages))
		for _, m := range req.Messages {
			messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
		}
	} else {
		messages = []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: req.Prompt}}
	}

	client := openai.NewClient(key)
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    apiModel,
		Messages: messages,
	})
	if err != nil {
		return nil, fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai returned no choices")
	}

	return &Result{
		Text:       resp.Choices[0].Message.Content,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}
