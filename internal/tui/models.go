package tui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sorynlabs/soryn/internal/domain"
)

type modelRow struct {
	model    domain.Model
	selected bool
}

func (r modelRow) Title() string {
	mark := "[ ]"
	if r.selected {
		mark = "[x]"
	}
	name := r.model.Name
	if !r.model.IsAvailable {
		name += " (unavailable)"
	}
	return mark + " " + name
}

func (r modelRow) Description() string {
	desc := r.model.Provider
	if r.model.Description != "" {
		desc += " · " + r.model.Description
	}
	return desc
}

func (r modelRow) FilterValue() string { return r.model.Name }

// isRemote reports whether a model is user-managed. Everything that did
// not come from ollama discovery can be edited and deleted.
func isRemote(model domain.Model) bool {
	return model.Provider != domain.ProviderOllama
}

// modelsModel lists the catalog. All mutations go through the root:
// selection toggles, the add/edit dialog and deletion are emitted as
// messages.
type modelsModel struct {
	list       list.Model
	catalog    []domain.Model
	refreshing bool

	spin spinner.Model

	width  int
	height int
}

func newModelsModel() modelsModel {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Models"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))

	return modelsModel{list: l, spin: spin}
}

func (m modelsModel) setCatalog(models []domain.Model, selectedIDs []string) modelsModel {
	m.catalog = models
	m.refreshing = false

	selected := make(map[string]bool, len(selectedIDs))
	for _, id := range selectedIDs {
		selected[id] = true
	}

	items := make([]list.Item, 0, len(models))
	for _, model := range models {
		items = append(items, modelRow{model: model, selected: selected[model.ID]})
	}
	m.list.SetItems(items)
	return m
}

func (m modelsModel) setSize(width, height int) modelsModel {
	m.width = width
	m.height = height
	m.list.SetSize(width, height)
	return m
}

func (m modelsModel) typing() bool {
	return m.list.FilterState() == list.Filtering
}

func (m modelsModel) selectedModel() (domain.Model, bool) {
	row, ok := m.list.SelectedItem().(modelRow)
	if !ok {
		return domain.Model{}, false
	}
	return row.model, true
}

func (m modelsModel) Update(msg tea.Msg) (modelsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.refreshing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case " ", "enter":
			model, ok := m.selectedModel()
			if !ok {
				return m, nil
			}
			if !model.IsAvailable {
				return m, emit(statusMsg{text: model.Name + " is not available.", isErr: true})
			}
			return m, emit(toggleSelectMsg{model: model})

		case "a":
			return m, emit(openFormMsg{})

		case "e":
			model, ok := m.selectedModel()
			if !ok {
				return m, nil
			}
			if !isRemote(model) {
				return m, emit(statusMsg{text: "Local models cannot be edited.", isErr: true})
			}
			edited := model
			return m, emit(openFormMsg{model: &edited})

		case "d", "x":
			model, ok := m.selectedModel()
			if !ok {
				return m, nil
			}
			if !isRemote(model) {
				return m, emit(statusMsg{text: "Local models cannot be removed.", isErr: true})
			}
			return m, emit(requestDeleteModelMsg{model: model})

		case "r":
			m.refreshing = true
			return m, tea.Batch(emit(reloadModelsMsg{}), m.spin.Tick)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m modelsModel) View() string {
	return m.list.View()
}

func (m modelsModel) helpLine() string {
	if m.refreshing {
		return m.spin.View() + " refreshing catalog..."
	}
	return "space: include in debate • a: add • e: edit • d: delete • r: refresh • /: filter"
}
