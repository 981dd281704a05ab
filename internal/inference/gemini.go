package inference

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/sorynlabs/soryn/internal/domain"
)

// GeminiProvider talks to the Google Gemini API.
type GeminiProvider struct {
	fallbackKey string
}

func NewGeminiProvider(fallbackKey string) *GeminiProvider {
	return &GeminiProvider{fallbackKey: fallbackKey}
}

func (p *GeminiProvider) Name() string { return domain.ProviderGemini }

func (p *GeminiProvider) Infer(ctx context.Context, model domain.Model, req Request) (*Result, error) {
	key := model.APIKey
	if key == "" {
		key = p.fallbackKey
	}
	if key == "" {
		return nil, fmt.Errorf("gemini API key not found for model %q", model.ID)
	}

	apiModel := model.APIModelName
	if apiModel == "" {
		apiModel = model.ID
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	var contents []*genai.Content
	if len(req.Messages) > 0 {
		contents = make([]*genai.Content, 0, len(req.Messages))
		for _, m := range req.Messages {
			// Gemini has no assistant role; prior model turns go in as "model".
			role := genai.RoleUser
			if m.Role == domain.RoleAssistant {
				role = genai.RoleModel
			}
			contents = append(contents, genai.NewContentFromText(m.Content, genai.Role(role)))
		}
	} else {
		contents = genai.Text(req.Prompt)
	}

	resp, err := client.Models.GenerateContent(ctx, apiModel, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini completion: %w", err)
	}

	result := &Result{Text: resp.Text()}
	if resp.UsageMetadata != nil {
		result.TokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}
	return result, nil
}
