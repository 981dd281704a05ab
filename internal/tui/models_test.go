package tui

import (
	"strings"
	"testing"

	"github.com/sorynlabs/soryn/internal/domain"
)

func newTestModels(t *testing.T, selectedIDs ...string) modelsModel {
	t.Helper()
	m := newModelsModel()
	m = m.setSize(80, 24)
	return m.setCatalog(testCatalog(), selectedIDs)
}

func TestModelRowText(t *testing.T) {
	tests := []struct {
		name     string
		row      modelRow
		wantText string
	}{
		{
			name:     "unselected",
			row:      modelRow{model: domain.Model{Name: "Llama3 (Local)", IsAvailable: true}},
			wantText: "[ ] Llama3 (Local)",
		},
		{
			name:     "selected",
			row:      modelRow{model: domain.Model{Name: "GPT-4 (API)", IsAvailable: true}, selected: true},
			wantText: "[x] GPT-4 (API)",
		},
		{
			name:     "unavailable",
			row:      modelRow{model: domain.Model{Name: "Flash (API)"}},
			wantText: "[ ] Flash (API) (unavailable)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.row.Title(); got != tt.wantText {
				t.Errorf("Title() = %q, want %q", got, tt.wantText)
			}
		})
	}
}

func TestModelRowDescription(t *testing.T) {
	plain := modelRow{model: domain.Model{Provider: "ollama"}}
	if got := plain.Description(); got != "ollama" {
		t.Errorf("Description() = %q", got)
	}

	detailed := modelRow{model: domain.Model{Provider: "openai", Description: "remote model"}}
	if got := detailed.Description(); got != "openai · remote model" {
		t.Errorf("Description() = %q", got)
	}
}

func TestIsRemote(t *testing.T) {
	if isRemote(domain.Model{Provider: domain.ProviderOllama}) {
		t.Error("ollama models reported as remote")
	}
	if !isRemote(domain.Model{Provider: domain.ProviderOpenAI}) {
		t.Error("openai models reported as local")
	}
	if !isRemote(domain.Model{Provider: domain.ProviderGemini}) {
		t.Error("gemini models reported as local")
	}
}

func TestModelsToggleEmits(t *testing.T) {
	m := newTestModels(t)

	// llama3 sits at the top and is available.
	_, cmd := m.Update(key(" "))
	msgs := runCmd(cmd)
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	toggle, ok := msgs[0].(toggleSelectMsg)
	if !ok || toggle.model.ID != "llama3:latest" {
		t.Errorf("space emitted %+v, want a toggle for llama3", msgs[0])
	}
}

func TestModelsToggleUnavailableBlocked(t *testing.T) {
	m := newTestModels(t)

	// Flash is third in the catalog and unavailable.
	m, _ = m.Update(key("j"))
	m, _ = m.Update(key("j"))

	_, cmd := m.Update(key(" "))
	msgs := runCmd(cmd)
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	status, ok := msgs[0].(statusMsg)
	if !ok || !status.isErr || !strings.Contains(status.text, "not available") {
		t.Errorf("space on an unavailable model emitted %+v", msgs[0])
	}
}

func TestModelsEditGates(t *testing.T) {
	m := newTestModels(t)

	// The local model cannot be edited.
	_, cmd := m.Update(key("e"))
	msgs := runCmd(cmd)
	status, ok := msgs[0].(statusMsg)
	if !ok || !strings.Contains(status.text, "cannot be edited") {
		t.Errorf("e on a local model emitted %+v", msgs[0])
	}

	// The remote model opens the dialog pre-filled.
	m, _ = m.Update(key("j"))
	_, cmd = m.Update(key("e"))
	msgs = runCmd(cmd)
	open, ok := msgs[0].(openFormMsg)
	if !ok || open.model == nil || open.model.ID != "gpt4" {
		t.Errorf("e on a remote model emitted %+v", msgs[0])
	}
}

func TestModelsDeleteGates(t *testing.T) {
	m := newTestModels(t)

	_, cmd := m.Update(key("d"))
	msgs := runCmd(cmd)
	status, ok := msgs[0].(statusMsg)
	if !ok || !strings.Contains(status.text, "cannot be removed") {
		t.Errorf("d on a local model emitted %+v", msgs[0])
	}

	m, _ = m.Update(key("j"))
	_, cmd = m.Update(key("x"))
	msgs = runCmd(cmd)
	del, ok := msgs[0].(requestDeleteModelMsg)
	if !ok || del.model.ID != "gpt4" {
		t.Errorf("x on a remote model emitted %+v", msgs[0])
	}
}

func TestModelsAddOpensEmptyForm(t *testing.T) {
	m := newTestModels(t)

	_, cmd := m.Update(key("a"))
	msgs := runCmd(cmd)
	open, ok := msgs[0].(openFormMsg)
	if !ok || open.model != nil {
		t.Errorf("a emitted %+v, want an empty form", msgs[0])
	}
}

func TestModelsRefresh(t *testing.T) {
	m := newTestModels(t)

	m, cmd := m.Update(key("r"))
	if !m.refreshing {
		t.Error("refreshing flag not set")
	}
	if !strings.Contains(m.helpLine(), "refreshing") {
		t.Errorf("help = %q while refreshing", m.helpLine())
	}

	var sawReload bool
	for _, msg := range runCmd(cmd) {
		if _, ok := msg.(reloadModelsMsg); ok {
			sawReload = true
		}
	}
	if !sawReload {
		t.Error("r did not ask the root for a reload")
	}

	// The next catalog snapshot clears the flag.
	m = m.setCatalog(testCatalog(), nil)
	if m.refreshing {
		t.Error("refreshing flag survived the catalog update")
	}
}
