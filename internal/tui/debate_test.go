package tui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sorynlabs/soryn/internal/api"
	"github.com/sorynlabs/soryn/internal/domain"
)

func debateLineup() []domain.Model {
	return []domain.Model{
		{ID: "a", Name: "Model A", Provider: domain.ProviderOllama, IsAvailable: true},
		{ID: "b", Name: "Model B", Provider: domain.ProviderOpenAI, IsAvailable: true},
	}
}

func newTestDebate(t *testing.T, handler http.Handler) debateModel {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return newDebateModel(api.NewClient(srv.URL)).setSize(80, 24)
}

func TestDebateGateReasons(t *testing.T) {
	tests := []struct {
		name      string
		selection []domain.Model
		prompt    string
		running   bool
		wantOK    bool
		wantHint  string
	}{
		{name: "nothing selected", wantHint: "0 selected"},
		{
			name:      "one model is not a debate",
			selection: debateLineup()[:1],
			prompt:    "Best language?",
			wantHint:  "1 selected",
		},
		{
			name:      "two models but no prompt",
			selection: debateLineup(),
			wantHint:  "write a prompt",
		},
		{
			name:      "whitespace prompt",
			selection: debateLineup(),
			prompt:    "   \t",
			wantHint:  "write a prompt",
		},
		{
			name:      "already running",
			selection: debateLineup(),
			prompt:    "Best language?",
			running:   true,
			wantHint:  "already running",
		},
		{
			name:      "two models and a prompt",
			selection: debateLineup(),
			prompt:    "Best language?",
			wantOK:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestDebate(t, http.NotFoundHandler())
			m = m.setSelection(tt.selection)
			m.prompt.SetValue(tt.prompt)
			m.running = tt.running

			if got := m.canSubmit(); got != tt.wantOK {
				t.Errorf("canSubmit() = %v, want %v", got, tt.wantOK)
			}
			if !tt.wantOK && !strings.Contains(m.gateReason(), tt.wantHint) {
				t.Errorf("gateReason() = %q, want it to mention %q", m.gateReason(), tt.wantHint)
			}
		})
	}
}

func TestDebateBlockedSubmitEmitsStatus(t *testing.T) {
	m := newTestDebate(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("blocked submission reached the backend")
	}))
	m = m.setSelection(debateLineup()[:1])
	m.prompt.SetValue("Best language?")

	m, cmd := m.Update(key("enter"))
	if m.running {
		t.Error("blocked submission started a run")
	}

	msgs := runCmd(cmd)
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want one status", len(msgs))
	}
	status, ok := msgs[0].(statusMsg)
	if !ok || !status.isErr || !strings.Contains(status.text, "at least 2 models") {
		t.Errorf("status = %+v, want the selection hint", msgs[0])
	}
}

func TestDebateRunAndRender(t *testing.T) {
	var gotReq domain.DebateRequest
	m := newTestDebate(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/debate" {
			t.Errorf("got %s %s, want POST /debate", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding debate request: %v", err)
		}
		json.NewEncoder(w).Encode(domain.DebateResult{
			Prompt:        "Best language?",
			WinnerModelID: "a",
			Responses: []domain.DebateResponse{
				{ModelID: "a", ModelName: "Model A", ResponseText: "Go, obviously.", TokensUsed: 12, InferenceTimeMs: 340, Success: true},
				{ModelID: "b", ModelName: "Model B", Success: false, ErrorMessage: "rate limited"},
			},
			EvaluationReasoning: "A was more direct.",
			TotalTimeMs:         350,
		})
	}))
	m = m.setSelection(debateLineup())
	m.prompt.SetValue("Best language?")

	m, cmd := m.Update(key("enter"))
	if !m.running || m.runSeq != 1 {
		t.Fatalf("submit state: running=%v seq=%d", m.running, m.runSeq)
	}
	if m.prompt.Focused() {
		t.Error("prompt still focused during a run")
	}

	for _, msg := range runCmd(cmd) {
		m, _ = m.Update(msg)
	}
	if gotReq.Prompt != "Best language?" {
		t.Errorf("request prompt = %q", gotReq.Prompt)
	}
	if len(gotReq.ModelIDs) != 2 || gotReq.ModelIDs[0] != "a" || gotReq.ModelIDs[1] != "b" {
		t.Errorf("request models = %v, want [a b]", gotReq.ModelIDs)
	}

	if m.running {
		t.Error("still running after the result landed")
	}
	if m.result == nil || len(m.result.Responses) != 2 {
		t.Fatalf("result not applied: %+v", m.result)
	}
	if m.cursor != 0 {
		t.Errorf("cursor = %d after a fresh result, want 0", m.cursor)
	}

	view := m.View()
	if !strings.Contains(view, "WINNER") {
		t.Error("winner badge missing from the result view")
	}
	if !strings.Contains(view, "failed: rate limited") {
		t.Error("failed response not rendered with its error")
	}
	if !strings.Contains(view, "A was more direct.") {
		t.Error("evaluation reasoning missing from the result view")
	}
}

func TestDebateFailureKeepsPreviousResult(t *testing.T) {
	previous := &domain.DebateResult{
		Prompt:    "Round one",
		Responses: []domain.DebateResponse{{ModelID: "a", Success: true, ResponseText: "old"}},
	}

	m := newTestDebate(t, http.NotFoundHandler())
	m = m.setSelection(debateLineup())
	m.result = previous
	m.running = true
	m.runSeq = 3

	m, cmd := m.Update(debateFinishedMsg{seq: 3, err: &api.Error{StatusCode: 500, Message: "evaluator crashed"}})
	if m.running {
		t.Error("running flag not cleared on failure")
	}
	if m.result != previous {
		t.Error("previous result replaced on failure")
	}

	msgs := runCmd(cmd)
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want one status", len(msgs))
	}
	status, ok := msgs[0].(statusMsg)
	if !ok || !status.isErr || !strings.Contains(status.text, "evaluator crashed") {
		t.Errorf("status = %+v, want the backend message", msgs[0])
	}
}

func TestDebateStaleResultDiscarded(t *testing.T) {
	m := newTestDebate(t, http.NotFoundHandler())
	m = m.setSelection(debateLineup())
	m.running = true
	m.runSeq = 2

	stale := debateFinishedMsg{seq: 1, result: &domain.DebateResult{Prompt: "stale"}}
	m, _ = m.Update(stale)
	if !m.running {
		t.Error("stale result cleared the running flag")
	}
	if m.result != nil {
		t.Error("stale result was applied")
	}

	fresh := debateFinishedMsg{seq: 2, result: &domain.DebateResult{Prompt: "fresh"}}
	m, _ = m.Update(fresh)
	if m.running || m.result == nil || m.result.Prompt != "fresh" {
		t.Error("fresh result not applied")
	}
}

func TestDebateCopyAckLifecycle(t *testing.T) {
	m := newTestDebate(t, http.NotFoundHandler())
	m = m.setSelection(debateLineup())
	m.result = &domain.DebateResult{
		Responses: []domain.DebateResponse{
			{ModelID: "a", Success: true, ResponseText: "first"},
			{ModelID: "b", Success: true, ResponseText: "second"},
		},
	}

	m, cmd := m.Update(key("c"))
	if cmd == nil {
		t.Fatal("copy produced no command")
	}
	if m.copySeq != 1 {
		t.Errorf("copySeq = %d after one copy, want 1", m.copySeq)
	}

	m, _ = m.Update(copyResultMsg{seq: 1, index: 0})
	if m.copiedIdx != 0 {
		t.Fatalf("copiedIdx = %d, want 0", m.copiedIdx)
	}
	if !strings.Contains(m.View(), "copied!") {
		t.Error("copy acknowledgement missing from the view")
	}

	m, _ = m.Update(copyAckExpiredMsg{seq: 0})
	if m.copiedIdx != 0 {
		t.Error("stale expiry cleared the acknowledgement")
	}

	m, _ = m.Update(copyAckExpiredMsg{seq: 1})
	if m.copiedIdx != -1 {
		t.Errorf("copiedIdx = %d after expiry, want -1", m.copiedIdx)
	}
}

func TestDebateCursorBounds(t *testing.T) {
	m := newTestDebate(t, http.NotFoundHandler())
	m.result = &domain.DebateResult{
		Responses: []domain.DebateResponse{
			{ModelID: "a", Success: true},
			{ModelID: "b", Success: true},
		},
	}

	m, _ = m.Update(key("k"))
	if m.cursor != 0 {
		t.Errorf("cursor = %d after k at the top, want 0", m.cursor)
	}

	m, _ = m.Update(key("j"))
	if m.cursor != 1 {
		t.Errorf("cursor = %d after j, want 1", m.cursor)
	}

	m, _ = m.Update(key("j"))
	if m.cursor != 1 {
		t.Errorf("cursor = %d after j at the bottom, want 1", m.cursor)
	}
}
