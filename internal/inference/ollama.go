package inference

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/sorynlabs/soryn/internal/domain"
)

// Local models can be slow to load on first use.
const ollamaTimeout = 2 * time.Minute

// OllamaProvider talks to a local Ollama server.
type OllamaProvider struct {
	host string
}

func NewOllamaProvider(host string) *OllamaProvider {
	return &OllamaProvider{host: host}
}

func (p *OllamaProvider) Name() string { return domain.ProviderOllama }

func (p *OllamaProvider) client() (*api.Client, error) {
	base, err := url.Parse(p.host)
	if err != nil {
		return nil, fmt.Errorf("parsing ollama host: %w", err)
	}
	return api.NewClient(base, &http.Client{Timeout: ollamaTimeout}), nil
}

func (p *OllamaProvider) Infer(ctx context.Context, model domain.Model, req Request) (*Result, error) {
	client, err := p.client()
	if err != nil {
		return nil, err
	}

	stream := false
	var text strings.Builder
	tokens := 0

	if len(req.Messages) > 0 {
		messages := make([]api.Message, 0, len(req.Messages))
		for _, m := range req.Messages {
			messages = append(messages, api.Message{Role: m.Role, Content: m.Content})
		}
		err = client.Chat(ctx, &api.ChatRequest{
			Model:    model.ID,
			Messages: messages,
			Stream:   &stream,
		}, func(resp api.ChatResponse) error {
			text.WriteString(resp.Message.Content)
			if resp.Metrics.EvalCount > 0 {
				tokens = resp.Metrics.EvalCount
			}
			return nil
		})
	} else {
		err = client.Generate(ctx, &api.GenerateRequest{
			Model:  model.ID,
			Prompt: req.Prompt,
			Stream: &stream,
		}, func(resp api.GenerateResponse) error {
			text.WriteString(resp.Response)
			if resp.Metrics.EvalCount > 0 {
				tokens = resp.Metrics.EvalCount
			}
			return nil
		})
	}
	if err != nil {
		return nil, fmt.Errorf("ollama completion: %w", err)
	}

	return &Result{Text: text.String(), TokensUsed: tokens}, nil
}
