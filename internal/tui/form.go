package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sorynlabs/soryn/internal/api"
	"github.com/sorynlabs/soryn/internal/domain"
)

const (
	formFieldProvider = iota
	formFieldName
	formFieldModelID
	formFieldAPIKey
	formFieldSubmit
)

var formProviders = [...]string{domain.ProviderOpenAI, domain.ProviderGemini}

func providerIndex(provider string) int {
	for i, p := range formProviders {
		if p == provider {
			return i
		}
	}
	return 0
}

// formModel is the add/edit dialog for remote models. In edit mode the
// model id is shown but never editable, and the api_model_name of the
// original record is resubmitted untouched.
type formModel struct {
	client  *api.Client
	editing *domain.Model

	providerIdx int
	name        textinput.Model
	modelID     textinput.Model
	apiKey      textinput.Model

	focus      int
	revealKey  bool
	submitting bool
	errMsg     string
	seq        int

	width  int
	height int
}

func newFormModel(client *api.Client, editing *domain.Model) formModel {
	name := textinput.New()
	name.Placeholder = "Display name (GPT-4, Gemini Pro...)"
	name.CharLimit = 64
	name.Width = 40

	modelID := textinput.New()
	modelID.Placeholder = "Model identifier (gpt-4o, gemini-2.0-flash...)"
	modelID.CharLimit = 64
	modelID.Width = 40

	apiKey := textinput.New()
	apiKey.Placeholder = "API key"
	apiKey.EchoMode = textinput.EchoPassword
	apiKey.EchoCharacter = '•'
	apiKey.Width = 40

	f := formModel{
		client:  client,
		editing: editing,
		name:    name,
		modelID: modelID,
		apiKey:  apiKey,
	}

	if editing != nil {
		f.providerIdx = providerIndex(editing.Provider)
		f.name.SetValue(strings.TrimSuffix(editing.Name, " (API)"))
		f.modelID.SetValue(editing.ID)
		f.apiKey.SetValue(editing.APIKey)
	}

	return f
}

func (f formModel) setSize(width, height int) formModel {
	f.width = width
	f.height = height
	return f
}

func (f formModel) Update(msg tea.Msg) (formModel, tea.Cmd) {
	switch msg := msg.(type) {
	case formSubmittedMsg:
		if msg.seq != f.seq {
			return f, nil
		}
		f.submitting = false
		if msg.err != nil {
			// The dialog stays open with the backend message inline.
			f.errMsg = errorText(msg.err)
			return f, nil
		}
		return f, emit(formDoneMsg{saved: true})

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			if f.submitting {
				return f, nil
			}
			return f, emit(formDoneMsg{saved: false})

		case "tab", "down":
			return f.moveFocus(1)

		case "shift+tab", "up":
			return f.moveFocus(-1)

		case "enter":
			if f.focus == formFieldSubmit {
				return f.submit()
			}
			return f.moveFocus(1)

		case "ctrl+r":
			f.revealKey = !f.revealKey
			if f.revealKey {
				f.apiKey.EchoMode = textinput.EchoNormal
			} else {
				f.apiKey.EchoMode = textinput.EchoPassword
			}
			return f, nil

		case "left", "right", " ":
			if f.focus == formFieldProvider {
				f.providerIdx = (f.providerIdx + 1) % len(formProviders)
				return f, nil
			}
		}
	}

	var cmd tea.Cmd
	switch f.focus {
	case formFieldName:
		f.name, cmd = f.name.Update(msg)
	case formFieldModelID:
		f.modelID, cmd = f.modelID.Update(msg)
	case formFieldAPIKey:
		f.apiKey, cmd = f.apiKey.Update(msg)
	}
	return f, cmd
}

func (f formModel) moveFocus(delta int) (formModel, tea.Cmd) {
	f.focus += delta
	if f.focus > formFieldSubmit {
		f.focus = formFieldProvider
	}
	if f.focus < formFieldProvider {
		f.focus = formFieldSubmit
	}
	// The id is immutable on edit; skip its field entirely.
	if f.editing != nil && f.focus == formFieldModelID {
		f.focus += delta
	}

	f.name.Blur()
	f.modelID.Blur()
	f.apiKey.Blur()

	var cmd tea.Cmd
	switch f.focus {
	case formFieldName:
		cmd = f.name.Focus()
	case formFieldModelID:
		cmd = f.modelID.Focus()
	case formFieldAPIKey:
		cmd = f.apiKey.Focus()
	}
	return f, cmd
}

func (f formModel) submit() (formModel, tea.Cmd) {
	if f.submitting {
		return f, nil
	}

	provider := formProviders[f.providerIdx]
	name := strings.TrimSpace(f.name.Value())
	apiKey := strings.TrimSpace(f.apiKey.Value())
	modelID := strings.TrimSpace(f.modelID.Value())
	if f.editing != nil {
		modelID = f.editing.ID
	}

	if provider == "" || name == "" || modelID == "" || apiKey == "" {
		f.errMsg = "All fields are required."
		return f, nil
	}

	f.submitting = true
	f.errMsg = ""
	f.seq++
	seq := f.seq
	client := f.client

	if f.editing == nil {
		req := api.CreateModelRequest{
			Provider:     provider,
			APIKey:       apiKey,
			ModelID:      modelID,
			Name:         name,
			APIModelName: modelID,
		}
		return f, func() tea.Msg {
			err := client.CreateModel(context.Background(), req)
			return formSubmittedMsg{seq: seq, err: err}
		}
	}

	req := api.UpdateModelRequest{
		Provider: provider,
		APIKey:   apiKey,
		ModelID:  f.editing.ID,
		Name:     name,
		// Carried through from the original record, never derived from
		// user input on edit.
		APIModelName: f.editing.APIModelName,
	}
	id := f.editing.ID
	return f, func() tea.Msg {
		err := client.UpdateModel(context.Background(), id, req)
		return formSubmittedMsg{seq: seq, err: err}
	}
}

func (f formModel) View() string {
	var b strings.Builder

	title := "Add remote model"
	if f.editing != nil {
		title = "Edit " + f.editing.Name
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	provider := formProviders[f.providerIdx]
	providerLine := "  " + providerBadge(provider)
	if f.focus == formFieldProvider {
		providerLine = selectedOptionStyle.Render("◀ " + provider + " ▶")
	}
	b.WriteString(f.label("Provider", formFieldProvider))
	b.WriteString(providerLine)
	b.WriteString("\n\n")

	b.WriteString(f.label("Name", formFieldName))
	b.WriteString(f.name.View())
	b.WriteString("\n\n")

	b.WriteString(f.label("Model ID", formFieldModelID))
	if f.editing != nil {
		b.WriteString(dimStyle.Render(f.editing.ID + " (fixed)"))
	} else {
		b.WriteString(f.modelID.View())
	}
	b.WriteString("\n\n")

	b.WriteString(f.label("API key", formFieldAPIKey))
	b.WriteString(f.apiKey.View())
	b.WriteString("\n\n")

	submit := "[ Save ]"
	if f.submitting {
		submit = "[ Saving... ]"
	}
	if f.focus == formFieldSubmit && !f.submitting {
		submit = selectedOptionStyle.Render(submit)
	}
	b.WriteString("  ")
	b.WriteString(submit)

	if f.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(errorTextStyle.Render(f.errMsg))
	}

	return modalStyle.Render(b.String())
}

func (f formModel) label(text string, field int) string {
	label := fmt.Sprintf("%-10s", text+":")
	if f.focus == field {
		return titleStyle.Render(label)
	}
	return label
}

func (f formModel) helpLine() string {
	if f.submitting {
		return "saving..."
	}
	return "tab: next field • enter: save • ctrl+r: show/hide key • esc: cancel"
}
