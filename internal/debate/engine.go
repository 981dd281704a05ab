package debate

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/sorynlabs/soryn/internal/domain"
	"github.com/sorynlabs/soryn/internal/inference"
)

// ModelCatalog lists every model the engine may call on.
type ModelCatalog interface {
	UnifiedList(ctx context.Context) []domain.Model
}

// Inferencer runs one completion against a model.
type Inferencer interface {
	Infer(ctx context.Context, model domain.Model, req inference.Request) (*inference.Result, error)
}

// Engine fans a prompt out to the requested models in parallel and ranks
// the answers.
type Engine struct {
	catalog   ModelCatalog
	providers Inferencer
	evaluator *Evaluator
}

func NewEngine(catalog ModelCatalog, providers Inferencer) *Engine {
	return &Engine{
		catalog:   catalog,
		providers: providers,
		evaluator: NewEvaluator(),
	}
}

// Run conducts a debate. Every requested model must exist in the catalog and
// be available, otherwise the whole debate fails before any inference starts.
// Responses come back in request order regardless of which model finished
// first. A model that errors keeps its slot with Success false; the debate
// itself only fails on validation.
func (e *Engine) Run(ctx context.Context, req domain.DebateRequest) (*domain.DebateResult, error) {
	start := time.Now()
	debateID := fmt.Sprintf("debate_%d", start.Unix())

	slog.Info("starting debate", "debate_id", debateID, "models", len(req.ModelIDs))

	available := e.catalog.UnifiedList(ctx)
	byID := make(map[string]domain.Model, len(available))
	for _, m := range available {
		byID[m.ID] = m
	}

	models := make([]domain.Model, 0, len(req.ModelIDs))
	for _, id := range req.ModelIDs {
		m, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("model not found or unavailable: %s", id)
		}
		if !m.IsAvailable {
			return nil, fmt.Errorf("model not available: %s", id)
		}
		models = append(models, m)
	}

	responses := make([]domain.DebateResponse, len(models))
	var wg sync.WaitGroup
	for i, model := range models {
		wg.Add(1)
		go func(i int, model domain.Model) {
			defer wg.Done()
			responses[i] = e.runOne(ctx, model, req.Prompt)
		}(i, model)
	}
	wg.Wait()

	for i := range responses {
		if responses[i].Success {
			responses[i].EvaluationScores = e.evaluator.Evaluate(responses[i].ResponseText, Criteria{})
		} else {
			responses[i].EvaluationScores = map[string]float64{}
		}
	}

	winnerID, winnerText, reasoning := e.determineWinner(responses)

	result := &domain.DebateResult{
		DebateID:            debateID,
		Timestamp:           time.Now(),
		Prompt:              req.Prompt,
		Responses:           responses,
		WinnerModelID:       winnerID,
		WinnerResponse:      winnerText,
		EvaluationReasoning: reasoning,
		TotalTimeMs:         time.Since(start).Milliseconds(),
	}

	slog.Info("debate finished",
		"debate_id", debateID,
		"total_time_ms", result.TotalTimeMs,
		"winner", winnerID)

	return result, nil
}

func (e *Engine) runOne(ctx context.Context, model domain.Model, prompt string) domain.DebateResponse {
	start := time.Now()
	res, err := e.providers.Infer(ctx, model, inference.Request{Prompt: prompt})
	elapsed := time.Since(start).Milliseconds()

	resp := domain.DebateResponse{
		ModelID:         model.ID,
		ModelName:       model.Name,
		InferenceTimeMs: elapsed,
	}
	if err != nil {
		resp.ErrorMessage = err.Error()
		return resp
	}
	resp.Success = true
	resp.ResponseText = res.Text
	resp.TokensUsed = res.TokensUsed
	return resp
}

func (e *Engine) determineWinner(responses []domain.DebateResponse) (winnerID, winnerText, reasoning string) {
	type scored struct {
		resp  domain.DebateResponse
		score float64
	}

	var ranked []scored
	for _, r := range responses {
		if r.Success && len(r.EvaluationScores) > 0 {
			ranked = append(ranked, scored{resp: r, score: e.evaluator.OverallScore(r.EvaluationScores, nil)})
		}
	}
	if len(ranked) == 0 {
		return "", "", "no valid responses were generated"
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	winner := ranked[0]
	reasoning = fmt.Sprintf("Model %s won with score %.3f. ", winner.resp.ModelName, winner.score)
	if len(ranked) > 1 {
		reasoning += fmt.Sprintf("Second place: %s with score %.3f.", ranked[1].resp.ModelName, ranked[1].score)
	}

	return winner.resp.ModelID, winner.resp.ResponseText, reasoning
}
