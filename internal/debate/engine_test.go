package debate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sorynlabs/soryn/internal/domain"
	"github.com/sorynlabs/soryn/internal/inference"
)

type fakeCatalog struct {
	models []domain.Model
}

func (f *fakeCatalog) UnifiedList(context.Context) []domain.Model {
	return f.models
}

type fakeInferencer struct {
	mu      sync.Mutex
	results map[string]*inference.Result
	errs    map[string]error
	delays  map[string]time.Duration
	calls   []string
}

func (f *fakeInferencer) Infer(_ context.Context, model domain.Model, _ inference.Request) (*inference.Result, error) {
	if d := f.delays[model.ID]; d > 0 {
		time.Sleep(d)
	}
	f.mu.Lock()
	f.calls = append(f.calls, model.ID)
	f.mu.Unlock()
	if err, ok := f.errs[model.ID]; ok {
		return nil, err
	}
	return f.results[model.ID], nil
}

func TestRunValidation(t *testing.T) {
	catalog := &fakeCatalog{models: []domain.Model{
		{ID: "up", Name: "Up", Provider: domain.ProviderOllama, IsAvailable: true},
		{ID: "down", Name: "Down", Provider: domain.ProviderOllama, IsAvailable: false},
	}}
	engine := NewEngine(catalog, &fakeInferencer{})

	tests := []struct {
		name    string
		ids     []string
		wantErr string
	}{
		{name: "unknown model", ids: []string{"up", "ghost"}, wantErr: "model not found or unavailable: ghost"},
		{name: "unavailable model", ids: []string{"down"}, wantErr: "model not available: down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Run(context.Background(), domain.DebateRequest{Prompt: "p", ModelIDs: tt.ids})
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("Run() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestRunOrderAndWinner(t *testing.T) {
	goodAnswer := "For example, a carefully structured answer like this one explains the idea in sentences of comfortable length.\nKey points:\n- it has clear structure with lists\n- it keeps every sentence readable"

	catalog := &fakeCatalog{models: []domain.Model{
		{ID: "alpha", Name: "Alpha", Provider: domain.ProviderOllama, IsAvailable: true},
		{ID: "beta", Name: "Beta", Provider: domain.ProviderOllama, IsAvailable: true},
	}}
	providers := &fakeInferencer{
		results: map[string]*inference.Result{
			"alpha": {Text: goodAnswer, TokensUsed: 40},
			"beta":  {Text: "No.", TokensUsed: 2},
		},
		// alpha finishes last; its slot must still come first
		delays: map[string]time.Duration{"alpha": 30 * time.Millisecond},
	}
	engine := NewEngine(catalog, providers)

	result, err := engine.Run(context.Background(), domain.DebateRequest{Prompt: "p", ModelIDs: []string{"alpha", "beta"}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !strings.HasPrefix(result.DebateID, "debate_") {
		t.Errorf("DebateID = %q", result.DebateID)
	}
	if len(result.Responses) != 2 {
		t.Fatalf("Responses count = %d, want 2", len(result.Responses))
	}
	if result.Responses[0].ModelID != "alpha" || result.Responses[1].ModelID != "beta" {
		t.Errorf("responses out of request order: %s, %s", result.Responses[0].ModelID, result.Responses[1].ModelID)
	}
	if result.Responses[0].TokensUsed != 40 {
		t.Errorf("TokensUsed = %d, want 40", result.Responses[0].TokensUsed)
	}
	if len(result.Responses[0].EvaluationScores) == 0 {
		t.Error("successful response should carry scores")
	}

	if result.WinnerModelID != "alpha" {
		t.Errorf("WinnerModelID = %q, want alpha", result.WinnerModelID)
	}
	if result.WinnerResponse != goodAnswer {
		t.Error("WinnerResponse should be the winning text")
	}
	if !strings.Contains(result.EvaluationReasoning, "Model Alpha won with score") {
		t.Errorf("EvaluationReasoning = %q", result.EvaluationReasoning)
	}
	if !strings.Contains(result.EvaluationReasoning, "Second place: Beta") {
		t.Errorf("EvaluationReasoning = %q", result.EvaluationReasoning)
	}
	if result.TotalTimeMs < 30 {
		t.Errorf("TotalTimeMs = %d, want at least the slowest model", result.TotalTimeMs)
	}
}

func TestRunKeepsFailedSlot(t *testing.T) {
	catalog := &fakeCatalog{models: []domain.Model{
		{ID: "ok", Name: "Ok", Provider: domain.ProviderOllama, IsAvailable: true},
		{ID: "bad", Name: "Bad", Provider: domain.ProviderOllama, IsAvailable: true},
	}}
	providers := &fakeInferencer{
		results: map[string]*inference.Result{"ok": {Text: "A fine answer with some words in it.", TokensUsed: 9}},
		errs:    map[string]error{"bad": errors.New("boom")},
	}
	engine := NewEngine(catalog, providers)

	result, err := engine.Run(context.Background(), domain.DebateRequest{Prompt: "p", ModelIDs: []string{"bad", "ok"}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	failed := result.Responses[0]
	if failed.ModelID != "bad" || failed.Success {
		t.Errorf("failed slot = %+v", failed)
	}
	if failed.ErrorMessage != "boom" {
		t.Errorf("ErrorMessage = %q, want boom", failed.ErrorMessage)
	}
	if len(failed.EvaluationScores) != 0 {
		t.Errorf("failed response should carry no scores, got %v", failed.EvaluationScores)
	}

	if result.WinnerModelID != "ok" {
		t.Errorf("WinnerModelID = %q, want ok", result.WinnerModelID)
	}
	if strings.Contains(result.EvaluationReasoning, "Second place") {
		t.Errorf("single valid response should have no runner-up: %q", result.EvaluationReasoning)
	}
}

func TestRunNoValidResponses(t *testing.T) {
	catalog := &fakeCatalog{models: []domain.Model{
		{ID: "a", Name: "A", Provider: domain.ProviderOllama, IsAvailable: true},
		{ID: "b", Name: "B", Provider: domain.ProviderOllama, IsAvailable: true},
	}}
	providers := &fakeInferencer{errs: map[string]error{
		"a": errors.New("down"),
		"b": errors.New("also down"),
	}}
	engine := NewEngine(catalog, providers)

	result, err := engine.Run(context.Background(), domain.DebateRequest{Prompt: "p", ModelIDs: []string{"a", "b"}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.WinnerModelID != "" || result.WinnerResponse != "" {
		t.Errorf("winner = %q, want none", result.WinnerModelID)
	}
	if result.EvaluationReasoning != "no valid responses were generated" {
		t.Errorf("EvaluationReasoning = %q", result.EvaluationReasoning)
	}
	if len(result.Responses) != 2 {
		t.Errorf("failed responses should keep their slots, got %d", len(result.Responses))
	}
}
