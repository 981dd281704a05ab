package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/sorynlabs/soryn/internal/api"
	"github.com/sorynlabs/soryn/internal/domain"
)

type chatPhase int

const (
	chatPickModel chatPhase = iota
	chatReady
	chatSending
)

type modelItem struct{ model domain.Model }

func (i modelItem) Title() string { return i.model.Name }

func (i modelItem) Description() string {
	if i.model.Description == "" {
		return i.model.Provider
	}
	return i.model.Provider + " · " + i.model.Description
}

func (i modelItem) FilterValue() string { return i.model.Name }

// chatModel drives one conversation at a time. A session starts on the
// model picker, and every turn loops between composing and waiting for
// the backend.
type chatModel struct {
	client *api.Client

	phase    chatPhase
	catalog  []domain.Model
	picker   list.Model
	model    *domain.Model
	chatID   string
	messages []domain.ChatMessage

	input    textarea.Model
	viewport viewport.Model
	spin     spinner.Model
	renderer *glamour.TermRenderer

	sendSeq int

	width  int
	height int
}

func newChatModel(client *api.Client) chatModel {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true

	picker := list.New([]list.Item{}, delegate, 0, 0)
	picker.Title = "Pick a model"
	picker.SetShowStatusBar(false)
	picker.SetFilteringEnabled(true)
	picker.Styles.Title = titleStyle

	input := textarea.New()
	input.Placeholder = "Send a message..."
	input.ShowLineNumbers = false
	input.CharLimit = 0
	input.SetHeight(3)
	input.KeyMap.InsertNewline.SetEnabled(false)

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))

	return chatModel{
		client:   client,
		phase:    chatPickModel,
		picker:   picker,
		input:    input,
		viewport: viewport.New(0, 0),
		spin:     spin,
	}
}

// setCatalog refreshes the picker. Only available models are offered.
func (m chatModel) setCatalog(models []domain.Model) chatModel {
	m.catalog = models
	m.refreshPicker()
	return m
}

func (m *chatModel) refreshPicker() {
	items := []list.Item{}
	for _, model := range m.catalog {
		if model.IsAvailable {
			items = append(items, modelItem{model: model})
		}
	}
	m.picker.SetItems(items)
}

func (m chatModel) setSize(width, height int) chatModel {
	m.width = width
	m.height = height

	m.picker.SetSize(width, height)

	m.input.SetWidth(width)

	m.viewport.Width = width
	m.viewport.Height = height - m.input.Height() - 2
	if m.viewport.Height < 1 {
		m.viewport.Height = 1
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(markdownStyle()),
		glamour.WithWordWrap(min(width, 100)),
	)
	if err == nil {
		m.renderer = renderer
	}

	m.refreshViewport()
	return m
}

func (m chatModel) typing() bool {
	if m.phase == chatPickModel {
		return m.picker.FilterState() == list.Filtering
	}
	return m.input.Focused()
}

func (m chatModel) Update(msg tea.Msg) (chatModel, tea.Cmd) {
	switch msg := msg.(type) {
	case chatReplyMsg:
		return m.handleReply(msg)

	case spinner.TickMsg:
		if m.phase != chatSending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.phase == chatPickModel {
			return m.updatePicker(msg)
		}
		return m.updateComposer(msg)
	}

	var cmd tea.Cmd
	if m.phase == chatPickModel {
		m.picker, cmd = m.picker.Update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m chatModel) updatePicker(msg tea.KeyMsg) (chatModel, tea.Cmd) {
	if msg.String() == "enter" && m.picker.FilterState() != list.Filtering {
		item, ok := m.picker.SelectedItem().(modelItem)
		if !ok {
			return m, nil
		}
		model := item.model
		m.model = &model
		m.phase = chatReady
		m.refreshViewport()
		cmd := m.input.Focus()
		return m, cmd
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m chatModel) updateComposer(msg tea.KeyMsg) (chatModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if m.phase != chatReady || !m.input.Focused() {
			return m, nil
		}
		prompt := strings.TrimSpace(m.input.Value())
		if prompt == "" {
			return m, nil
		}
		return m.send(prompt)

	case "esc":
		if m.input.Focused() {
			m.input.Blur()
			return m, nil
		}

	case "i":
		if !m.input.Focused() && m.phase == chatReady {
			cmd := m.input.Focus()
			return m, cmd
		}

	case "ctrl+g":
		if m.phase != chatReady {
			return m, nil
		}
		return m.regenerate()

	case "n":
		if !m.input.Focused() && m.phase == chatReady {
			return m.reset()
		}
	}

	var cmd tea.Cmd
	if m.input.Focused() {
		m.input, cmd = m.input.Update(msg)
	} else {
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

// send appends the user turn optimistically and clears the input before
// the backend answers.
func (m chatModel) send(prompt string) (chatModel, tea.Cmd) {
	m.messages = append(m.messages, domain.ChatMessage{
		Role:      domain.RoleUser,
		Content:   prompt,
		Timestamp: time.Now(),
	})
	m.input.Reset()
	m.input.Blur()
	m.refreshViewport()
	return m.dispatch(prompt)
}

// dispatch issues the backend call without touching the transcript, so
// regenerate can reuse it without appending a second user copy.
func (m chatModel) dispatch(prompt string) (chatModel, tea.Cmd) {
	m.phase = chatSending
	m.sendSeq++
	req := domain.ChatRequest{ModelID: m.model.ID, Prompt: prompt, ChatID: m.chatID}
	return m, tea.Batch(sendChatCmd(m.client, m.sendSeq, req), m.spin.Tick)
}

func (m chatModel) handleReply(msg chatReplyMsg) (chatModel, tea.Cmd) {
	if msg.seq != m.sendSeq {
		return m, nil
	}

	m.phase = chatReady
	reply := domain.ChatMessage{Role: domain.RoleAssistant, Timestamp: time.Now()}
	if msg.err != nil {
		// The failure stays in the transcript: the log always reflects
		// what the user saw.
		reply.Content = "Error: " + errorText(msg.err)
	} else {
		reply.Content = msg.resp.Response
		if m.chatID == "" {
			m.chatID = msg.resp.ChatID
		}
	}
	m.messages = append(m.messages, reply)
	m.refreshViewport()
	cmd := m.input.Focus()
	return m, cmd
}

// regenerate drops the latest assistant turn and resends the prior
// prompt on the same session. Without an assistant turn it does
// nothing.
func (m chatModel) regenerate() (chatModel, tea.Cmd) {
	lastAssistant := -1
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].Role == domain.RoleAssistant {
			lastAssistant = i
			break
		}
	}
	if lastAssistant < 0 {
		return m, nil
	}

	lastUser := -1
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].Role == domain.RoleUser {
			lastUser = i
			break
		}
	}
	if lastUser < 0 {
		return m, nil
	}

	prompt := m.messages[lastUser].Content
	m.messages = m.messages[:lastAssistant]
	m.refreshViewport()
	return m.dispatch(prompt)
}

func (m chatModel) reset() (chatModel, tea.Cmd) {
	m.messages = nil
	m.chatID = ""
	m.model = nil
	m.phase = chatPickModel
	m.input.Reset()
	m.input.Blur()
	m.refreshPicker()
	m.refreshViewport()
	return m, nil
}

// hydrate replaces the transcript, the selected model and the session
// id in one shot from a stored conversation.
func (m chatModel) hydrate(detail domain.ChatDetail) chatModel {
	m.messages = make([]domain.ChatMessage, len(detail.Messages))
	copy(m.messages, detail.Messages)
	m.chatID = detail.ID

	model := domain.Model{ID: detail.ModelID, Name: detail.ModelID}
	for _, candidate := range m.catalog {
		if candidate.ID == detail.ModelID {
			model = candidate
			break
		}
	}
	m.model = &model
	m.phase = chatReady
	m.input.Reset()
	m.input.Focus()
	m.refreshViewport()
	return m
}

func (m *chatModel) refreshViewport() {
	if m.phase == chatPickModel || m.model == nil {
		m.viewport.SetContent("")
		return
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render(m.model.Name))
	if m.chatID != "" {
		content.WriteString(dimStyle.Render("  session " + shortID(m.chatID)))
	}
	content.WriteString("\n\n")

	if len(m.messages) == 0 {
		content.WriteString(dimStyle.Render("No messages yet. Type below and press enter."))
	}

	for _, msg := range m.messages {
		if msg.Role == domain.RoleUser {
			content.WriteString(userRoleStyle.Render("User:"))
			content.WriteString("\n")
			content.WriteString(msg.Content)
		} else {
			content.WriteString(assistantRoleStyle.Render("Assistant:"))
			content.WriteString("\n")
			content.WriteString(m.renderMarkdown(msg.Content))
		}
		content.WriteString("\n\n")
	}

	m.viewport.SetContent(content.String())
	m.viewport.GotoBottom()
}

func (m *chatModel) renderMarkdown(text string) string {
	if m.renderer == nil {
		return text
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimSpace(out)
}

func (m chatModel) View() string {
	if m.phase == chatPickModel {
		return m.picker.View()
	}

	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.phase == chatSending {
		b.WriteString(m.spin.View())
		b.WriteString(dimStyle.Render(fmt.Sprintf("waiting for %s...", m.model.Name)))
	} else {
		status := "model: " + m.model.Name
		if m.chatID != "" {
			status += "  session: " + shortID(m.chatID)
		}
		b.WriteString(dimStyle.Render(status))
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())

	return b.String()
}

func (m chatModel) helpLine() string {
	switch m.phase {
	case chatPickModel:
		return "j/k: navigate • enter: select model • /: filter"
	case chatSending:
		return "waiting for reply..."
	default:
		if m.input.Focused() {
			return "enter: send • esc: browse • ctrl+g: regenerate"
		}
		return "i: compose • j/k: scroll • ctrl+g: regenerate • n: new chat"
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
