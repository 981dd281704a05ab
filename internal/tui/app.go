// Package tui implements the terminal client: a tabbed Bubble Tea
// program for chatting with a single model, running debates across
// several, managing the model catalog, browsing history and switching
// themes, all against a running backend.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sorynlabs/soryn/internal/api"
	"github.com/sorynlabs/soryn/internal/domain"
)

type tabID int

const (
	tabChat tabID = iota
	tabDebate
	tabModels
	tabHistory
	tabTheme
	tabCount
)

var tabNames = [...]string{"Chat", "Debate", "Models", "History", "Theme"}

const (
	sidebarWidth  = 26
	toastDuration = 3 * time.Second
)

// App wires the panels to a backend client and runs the program.
type App struct {
	client       *api.Client
	settingsPath string
}

func NewApp(client *api.Client, settingsPath string) *App {
	return &App{client: client, settingsPath: settingsPath}
}

func (a *App) Run() error {
	settings := LoadSettings(a.settingsPath)
	ApplyTheme(settings.Theme)

	m := newAppModel(a.client, a.settingsPath, settings.Theme)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

// appModel is the root coordinator. It is the only writer of the
// catalog, the selection set, the modals and the pending hydration
// payload; panels ask for changes through messages.
type appModel struct {
	client *api.Client

	tab    tabID
	width  int
	height int
	ready  bool

	catalog       []domain.Model
	selectedIDs   []string
	loadingModels bool
	modelsSeq     int

	chat    chatModel
	debate  debateModel
	models  modelsModel
	history historyModel
	themes  themeModel

	form    *formModel
	confirm *domain.Model

	deleting         bool
	rollbackCatalog  []domain.Model
	rollbackSelected []string

	pendingChat *domain.ChatDetail
	hydrateSeq  int

	sidebarOpen bool

	toastText  string
	toastIsErr bool
	toastSeq   int
}

func newAppModel(client *api.Client, settingsPath, theme string) appModel {
	return appModel{
		client:  client,
		tab:     tabChat,
		chat:    newChatModel(client),
		debate:  newDebateModel(client),
		models:  newModelsModel(),
		history: newHistoryModel(client),
		themes:  newThemeModel(settingsPath, theme),
	}
}

func (m appModel) Init() tea.Cmd {
	return emit(reloadModelsMsg{})
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		return m, nil

	case reloadModelsMsg:
		cmd := m.loadModels()
		return m, cmd

	case modelsLoadedMsg:
		return m.handleModelsLoaded(msg)

	case toggleSelectMsg:
		m.toggleSelection(msg.model)
		m.syncPanels()
		return m, nil

	case openFormMsg:
		form := newFormModel(m.client, msg.model)
		m.form = &form
		m.layout()
		return m, nil

	case formDoneMsg:
		m.form = nil
		if msg.saved {
			toastCmd := m.showToast("Model saved.", false)
			loadCmd := m.loadModels()
			return m, tea.Batch(toastCmd, loadCmd)
		}
		return m, nil

	case formSubmittedMsg:
		if m.form == nil {
			return m, nil
		}
		form, cmd := m.form.Update(msg)
		m.form = &form
		return m, cmd

	case requestDeleteModelMsg:
		if m.deleting {
			cmd := m.showToast("A delete is already in flight.", true)
			return m, cmd
		}
		model := msg.model
		m.confirm = &model
		return m, nil

	case modelDeletedMsg:
		return m.handleModelDeleted(msg)

	case reuseChatRequestMsg:
		m.hydrateSeq++
		return m, hydrateChatCmd(m.client, m.hydrateSeq, msg.id)

	case chatHydrationMsg:
		if msg.seq != m.hydrateSeq {
			return m, nil
		}
		if msg.err != nil {
			// No navigation on failure.
			cmd := m.showToast("Failed to load chat: "+errorText(msg.err), true)
			return m, cmd
		}
		m.pendingChat = msg.detail
		m.tab = tabChat
		return m, emit(consumeHydrationMsg{})

	case consumeHydrationMsg:
		if m.pendingChat != nil {
			m.chat = m.chat.hydrate(*m.pendingChat)
			m.pendingChat = nil
		}
		return m, nil

	case statusMsg:
		cmd := m.showToast(msg.text, msg.isErr)
		return m, cmd

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toastText = ""
		}
		return m, nil

	case themeChangedMsg:
		// Markdown renderers bake the theme in at construction.
		m.layout()
		return m, nil

	case chatReplyMsg:
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd

	case debateFinishedMsg, copyResultMsg, copyAckExpiredMsg:
		var cmd tea.Cmd
		m.debate, cmd = m.debate.Update(msg)
		return m, cmd

	case historyLoadedMsg, historyDetailMsg, historyDeletedMsg:
		var cmd tea.Cmd
		m.history, cmd = m.history.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		return m.fanSpinner(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.routeToActive(msg)
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return m, tea.Quit
	}

	if m.confirm != nil {
		return m.handleConfirmKey(key)
	}

	if m.form != nil {
		form, cmd := m.form.Update(msg)
		m.form = &form
		return m, cmd
	}

	if key == "ctrl+s" {
		m.sidebarOpen = !m.sidebarOpen
		m.layout()
		return m, nil
	}

	if !m.typing() {
		switch key {
		case "q":
			return m, tea.Quit
		case "1":
			return m.switchTab(tabChat)
		case "2":
			return m.switchTab(tabDebate)
		case "3":
			return m.switchTab(tabModels)
		case "4":
			return m.switchTab(tabHistory)
		case "5":
			return m.switchTab(tabTheme)
		case "tab":
			return m.switchTab((m.tab + 1) % tabCount)
		case "shift+tab":
			return m.switchTab((m.tab + tabCount - 1) % tabCount)
		}
	}

	return m.routeToActive(msg)
}

func (m appModel) handleConfirmKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y", "Y", "enter":
		model := *m.confirm
		m.confirm = nil
		return m.deleteModel(model)
	case "n", "N", "esc":
		m.confirm = nil
		return m, nil
	}
	return m, nil
}

func (m appModel) switchTab(tab tabID) (tea.Model, tea.Cmd) {
	if tab < 0 || tab >= tabCount || tab == m.tab {
		return m, nil
	}
	m.tab = tab
	if tab == tabHistory {
		var cmd tea.Cmd
		m.history, cmd = m.history.activate()
		return m, cmd
	}
	return m, nil
}

// loadModels starts a catalog fetch and bumps the slot's sequence so a
// stale answer cannot clobber a newer one.
func (m *appModel) loadModels() tea.Cmd {
	m.loadingModels = true
	m.modelsSeq++
	return loadModelsCmd(m.client, m.modelsSeq)
}

func (m appModel) handleModelsLoaded(msg modelsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.modelsSeq {
		return m, nil
	}

	// Cleared regardless of outcome.
	m.loadingModels = false

	if msg.err != nil {
		// The previous catalog stays in place.
		m.syncPanels()
		cmd := m.showToast("Failed to load models: "+errorText(msg.err), true)
		return m, cmd
	}

	m.catalog = msg.models
	m.syncPanels()
	return m, nil
}

// deleteModel removes the model optimistically and keeps a snapshot of
// the catalog and the selection for rollback if the backend refuses.
func (m appModel) deleteModel(model domain.Model) (tea.Model, tea.Cmd) {
	m.rollbackCatalog = make([]domain.Model, len(m.catalog))
	copy(m.rollbackCatalog, m.catalog)
	m.rollbackSelected = make([]string, len(m.selectedIDs))
	copy(m.rollbackSelected, m.selectedIDs)
	m.deleting = true

	catalog := make([]domain.Model, 0, len(m.catalog))
	for _, candidate := range m.catalog {
		if candidate.ID != model.ID {
			catalog = append(catalog, candidate)
		}
	}
	m.catalog = catalog

	selected := make([]string, 0, len(m.selectedIDs))
	for _, id := range m.selectedIDs {
		if id != model.ID {
			selected = append(selected, id)
		}
	}
	m.selectedIDs = selected

	m.syncPanels()
	return m, deleteModelCmd(m.client, model.ID)
}

func (m appModel) handleModelDeleted(msg modelDeletedMsg) (tea.Model, tea.Cmd) {
	m.deleting = false

	var cmd tea.Cmd
	if msg.err != nil {
		// Restore the exact pre-removal snapshot of both collections.
		m.catalog = m.rollbackCatalog
		m.selectedIDs = m.rollbackSelected
		m.syncPanels()
		cmd = m.showToast("Delete failed: "+errorText(msg.err), true)
	} else {
		cmd = m.showToast("Model "+msg.id+" removed.", false)
	}

	m.rollbackCatalog = nil
	m.rollbackSelected = nil
	return m, cmd
}

// toggleSelection adds or removes a model from the debate lineup,
// keyed by id, append-on-add.
func (m *appModel) toggleSelection(model domain.Model) {
	for i, id := range m.selectedIDs {
		if id == model.ID {
			m.selectedIDs = append(m.selectedIDs[:i], m.selectedIDs[i+1:]...)
			return
		}
	}
	m.selectedIDs = append(m.selectedIDs, model.ID)
}

func (m *appModel) syncPanels() {
	m.models = m.models.setCatalog(m.catalog, m.selectedIDs)
	m.chat = m.chat.setCatalog(m.catalog)
	m.debate = m.debate.setSelection(m.selectedModels())
}

// selectedModels resolves the selection against the catalog in
// selection order. Ids that no longer resolve are skipped.
func (m *appModel) selectedModels() []domain.Model {
	byID := make(map[string]domain.Model, len(m.catalog))
	for _, model := range m.catalog {
		byID[model.ID] = model
	}

	resolved := make([]domain.Model, 0, len(m.selectedIDs))
	for _, id := range m.selectedIDs {
		if model, ok := byID[id]; ok {
			resolved = append(resolved, model)
		}
	}
	return resolved
}

func (m *appModel) showToast(text string, isErr bool) tea.Cmd {
	m.toastText = text
	m.toastIsErr = isErr
	m.toastSeq++
	seq := m.toastSeq
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

func (m appModel) fanSpinner(msg spinner.TickMsg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)
	m.chat, cmd = m.chat.Update(msg)
	cmds = append(cmds, cmd)
	m.debate, cmd = m.debate.Update(msg)
	cmds = append(cmds, cmd)
	m.models, cmd = m.models.Update(msg)
	cmds = append(cmds, cmd)
	m.history, cmd = m.history.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m appModel) routeToActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.form != nil {
		form, cmd := m.form.Update(msg)
		m.form = &form
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.tab {
	case tabChat:
		m.chat, cmd = m.chat.Update(msg)
	case tabDebate:
		m.debate, cmd = m.debate.Update(msg)
	case tabModels:
		m.models, cmd = m.models.Update(msg)
	case tabHistory:
		m.history, cmd = m.history.Update(msg)
	case tabTheme:
		m.themes, cmd = m.themes.Update(msg)
	}
	return m, cmd
}

func (m appModel) typing() bool {
	switch m.tab {
	case tabChat:
		return m.chat.typing()
	case tabDebate:
		return m.debate.typing()
	case tabModels:
		return m.models.typing()
	case tabHistory:
		return m.history.typing()
	default:
		return false
	}
}

func (m *appModel) innerSize() (int, int) {
	bodyWidth := m.width
	if m.sidebarOpen {
		bodyWidth -= sidebarWidth
	}
	innerW := bodyWidth - 4
	innerH := m.height - 4
	if innerW < 20 {
		innerW = 20
	}
	if innerH < 5 {
		innerH = 5
	}
	return innerW, innerH
}

func (m *appModel) layout() {
	if m.width == 0 {
		return
	}
	innerW, innerH := m.innerSize()

	m.chat = m.chat.setSize(innerW, innerH)
	m.debate = m.debate.setSize(innerW, innerH)
	m.models = m.models.setSize(innerW, innerH)
	m.history = m.history.setSize(innerW, innerH)
	m.themes = m.themes.setSize(innerW, innerH)
	if m.form != nil {
		form := m.form.setSize(innerW, innerH)
		m.form = &form
	}
}

func (m appModel) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	innerW, innerH := m.innerSize()

	var body string
	switch {
	case m.confirm != nil:
		body = m.confirmView(innerW, innerH)
	case m.form != nil:
		body = lipgloss.Place(innerW, innerH, lipgloss.Center, lipgloss.Center, m.form.View())
	case m.tab == tabChat:
		body = m.chat.View()
	case m.tab == tabDebate:
		body = m.debate.View()
	case m.tab == tabModels:
		body = m.models.View()
	case m.tab == tabHistory:
		body = m.history.View()
	default:
		body = m.themes.View()
	}

	bodyWidth := m.width
	if m.sidebarOpen {
		bodyWidth -= sidebarWidth
	}
	pane := paneStyle.Width(bodyWidth - 2).Height(m.height - 4).Render(body)

	if m.sidebarOpen {
		pane = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebarView(), pane)
	}

	return m.headerView() + "\n" + pane + "\n" + m.footerView()
}

func (m appModel) headerView() string {
	tabs := make([]string, 0, int(tabCount))
	for i := tabID(0); i < tabCount; i++ {
		style := tabStyle
		if i == m.tab {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(fmt.Sprintf("%d %s", i+1, tabNames[i])))
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	return lipgloss.JoinHorizontal(lipgloss.Top, titleStyle.Render(" Soryn "), bar)
}

func (m appModel) sidebarView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Soryn"))
	b.WriteString("\n\n")

	for i := tabID(0); i < tabCount; i++ {
		line := fmt.Sprintf("%d %s", i+1, tabNames[i])
		if i == m.tab {
			b.WriteString(selectedOptionStyle.Render(line))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d models", len(m.catalog))))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d selected", len(m.selectedIDs))))
	if m.loadingModels {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("loading..."))
	}

	return sidebarStyle.Width(sidebarWidth - 2).Height(m.height - 4).Render(b.String())
}

func (m appModel) confirmView(width, height int) string {
	model := *m.confirm

	var b strings.Builder
	b.WriteString(titleStyle.Render("Remove model"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Delete %s (%s)?", model.Name, model.ID))
	b.WriteString("\n\n")
	b.WriteString(errorTextStyle.Render("y"))
	b.WriteString(": delete    ")
	b.WriteString(dimStyle.Render("n"))
	b.WriteString(": cancel")

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, modalStyle.Render(b.String()))
}

func (m appModel) footerView() string {
	if m.toastText != "" {
		style := toastInfoStyle
		if m.toastIsErr {
			style = toastErrorStyle
		}
		return style.Render(m.toastText)
	}

	suffix := " • ctrl+s: sidebar • tab: switch • q: quit"
	if m.typing() {
		suffix = ""
	}
	return helpStyle.Render("  " + m.activeHelp() + suffix)
}

func (m appModel) activeHelp() string {
	if m.confirm != nil {
		return "y: delete • n: cancel"
	}
	if m.form != nil {
		return m.form.helpLine()
	}
	switch m.tab {
	case tabChat:
		return m.chat.helpLine()
	case tabDebate:
		return m.debate.helpLine()
	case tabModels:
		return m.models.helpLine()
	case tabHistory:
		return m.history.helpLine()
	default:
		return m.themes.helpLine()
	}
}
