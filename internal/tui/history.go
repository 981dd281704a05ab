package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/sorynlabs/soryn/internal/api"
	"github.com/sorynlabs/soryn/internal/domain"
)

type historyRow struct{ item domain.HistoryItem }

func (r historyRow) Title() string { return r.item.Title }

func (r historyRow) Description() string {
	desc := r.item.Kind
	if r.item.ModelID != "" {
		desc += " · " + r.item.ModelID
	}
	return desc + " · " + r.item.SortDate.Format("2006-01-02 15:04")
}

func (r historyRow) FilterValue() string { return r.item.Title }

// historyOverlay is the expanded view of one item. It opens in a
// loading state and swaps in the rendered record when the fetch lands.
type historyOverlay struct {
	item     domain.HistoryItem
	loading  bool
	viewport viewport.Model
}

type historyModel struct {
	client *api.Client

	list    list.Model
	items   []domain.HistoryItem
	loading bool
	listSeq int

	overlay   *historyOverlay
	detailSeq int

	confirming *domain.HistoryItem
	deleting   bool

	spin     spinner.Model
	renderer *glamour.TermRenderer

	width  int
	height int
}

func newHistoryModel(client *api.Client) historyModel {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "History"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))

	return historyModel{client: client, list: l, spin: spin}
}

// activate refetches the list. The root calls it every time the tab is
// entered, so finished chats and debates show up without manual
// reloads.
func (m historyModel) activate() (historyModel, tea.Cmd) {
	m.loading = true
	m.listSeq++
	return m, tea.Batch(loadHistoryCmd(m.client, m.listSeq), m.spin.Tick)
}

func (m historyModel) setSize(width, height int) historyModel {
	m.width = width
	m.height = height

	m.list.SetSize(width, height)
	if m.overlay != nil {
		m.overlay.viewport.Width = width
		m.overlay.viewport.Height = height
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(markdownStyle()),
		glamour.WithWordWrap(min(width, 100)),
	)
	if err == nil {
		m.renderer = renderer
	}
	return m
}

func (m historyModel) typing() bool {
	return m.overlay == nil && m.list.FilterState() == list.Filtering
}

func (m historyModel) Update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.seq != m.listSeq {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			// The previous list stays in place.
			return m, emit(statusMsg{text: "Failed to load history: " + errorText(msg.err), isErr: true})
		}
		m.items = msg.items
		items := make([]list.Item, 0, len(msg.items))
		for _, item := range msg.items {
			items = append(items, historyRow{item: item})
		}
		m.list.SetItems(items)
		return m, nil

	case historyDetailMsg:
		return m.handleDetail(msg)

	case historyDeletedMsg:
		m.deleting = false
		if msg.err != nil {
			return m, emit(statusMsg{text: "Delete failed: " + errorText(msg.err), isErr: true})
		}
		// Refetch instead of patching the list locally.
		m.loading = true
		m.listSeq++
		return m, tea.Batch(
			loadHistoryCmd(m.client, m.listSeq),
			m.spin.Tick,
			emit(statusMsg{text: "History item deleted."}),
		)

	case spinner.TickMsg:
		if !m.loading && !m.deleting && (m.overlay == nil || !m.overlay.loading) {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m historyModel) updateKeys(msg tea.KeyMsg) (historyModel, tea.Cmd) {
	if m.overlay != nil {
		switch msg.String() {
		case "esc", "backspace":
			m.overlay = nil
			return m, nil
		case "u":
			if m.overlay.item.Kind == domain.HistoryKindChat && !m.overlay.loading {
				return m, emit(reuseChatRequestMsg{id: m.overlay.item.ID})
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.overlay.viewport, cmd = m.overlay.viewport.Update(msg)
		return m, cmd
	}

	if m.confirming != nil {
		switch msg.String() {
		case "y", "Y", "enter":
			item := *m.confirming
			m.confirming = nil
			m.deleting = true
			return m, tea.Batch(deleteHistoryCmd(m.client, item.Kind, item.ID), m.spin.Tick)
		case "n", "N", "esc":
			m.confirming = nil
			return m, nil
		}
		return m, nil
	}

	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "enter":
		row, ok := m.list.SelectedItem().(historyRow)
		if !ok {
			return m, nil
		}
		return m.openDetail(row.item)

	case "d", "x":
		row, ok := m.list.SelectedItem().(historyRow)
		if !ok {
			return m, nil
		}
		item := row.item
		m.confirming = &item
		return m, nil

	case "u":
		row, ok := m.list.SelectedItem().(historyRow)
		if !ok {
			return m, nil
		}
		if row.item.Kind != domain.HistoryKindChat {
			return m, emit(statusMsg{text: "Only chats can be reused.", isErr: true})
		}
		return m, emit(reuseChatRequestMsg{id: row.item.ID})

	case "r":
		return m.activate()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m historyModel) openDetail(item domain.HistoryItem) (historyModel, tea.Cmd) {
	vp := viewport.New(m.width, m.height)
	m.overlay = &historyOverlay{item: item, loading: true, viewport: vp}
	m.detailSeq++
	return m, tea.Batch(loadHistoryDetailCmd(m.client, m.detailSeq, item.Kind, item.ID), m.spin.Tick)
}

func (m historyModel) handleDetail(msg historyDetailMsg) (historyModel, tea.Cmd) {
	if msg.seq != m.detailSeq || m.overlay == nil {
		return m, nil
	}

	m.overlay.loading = false
	if msg.err != nil {
		m.overlay = nil
		return m, emit(statusMsg{text: "Failed to load item: " + errorText(msg.err), isErr: true})
	}

	switch detail := msg.detail.(type) {
	case domain.ChatDetail:
		m.overlay.viewport.SetContent(m.renderChatDetail(detail))
	case domain.DebateDetail:
		m.overlay.viewport.SetContent(m.renderDebateDetail(detail))
	default:
		m.overlay = nil
		return m, emit(statusMsg{text: "Unsupported history item.", isErr: true})
	}
	m.overlay.viewport.GotoTop()
	return m, nil
}

func (m *historyModel) renderChatDetail(detail domain.ChatDetail) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(detail.Title))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%s · %s · %d messages",
		detail.ModelID, detail.CreatedAt.Format("2006-01-02 15:04"), len(detail.Messages))))
	b.WriteString("\n\n")

	for _, msg := range detail.Messages {
		if msg.Role == domain.RoleUser {
			b.WriteString(userRoleStyle.Render("User:"))
			b.WriteString("\n")
			b.WriteString(msg.Content)
		} else {
			b.WriteString(assistantRoleStyle.Render("Assistant:"))
			b.WriteString("\n")
			b.WriteString(m.renderMarkdown(msg.Content))
		}
		b.WriteString("\n\n")
	}

	return b.String()
}

func (m *historyModel) renderDebateDetail(detail domain.DebateDetail) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Debate"))
	b.WriteString("\n")
	b.WriteString(detail.Prompt)
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%s · %dms",
		detail.Timestamp.Format("2006-01-02 15:04"), detail.TotalTimeMs)))
	b.WriteString("\n\n")

	if detail.EvaluationReasoning != "" {
		b.WriteString(detail.EvaluationReasoning)
		b.WriteString("\n\n")
	}

	for _, resp := range detail.Responses {
		name := resp.ModelName
		if name == "" {
			name = resp.ModelID
		}
		header := lipgloss.NewStyle().Bold(true).Render(name)
		if resp.Success && resp.ModelID == detail.WinnerModelID {
			header += " " + winnerBadgeStyle.Render("WINNER")
		}
		b.WriteString(header)
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("%d tokens · %dms", resp.TokensUsed, resp.InferenceTimeMs)))
		b.WriteString("\n")
		if resp.Success {
			b.WriteString(resp.ResponseText)
		} else {
			b.WriteString(errorTextStyle.Render("failed: " + resp.ErrorMessage))
		}
		b.WriteString("\n\n")
	}

	return b.String()
}

func (m *historyModel) renderMarkdown(text string) string {
	if m.renderer == nil {
		return text
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimSpace(out)
}

func (m historyModel) View() string {
	if m.overlay != nil {
		if m.overlay.loading {
			return fmt.Sprintf("%s\n\n%s %s",
				titleStyle.Render(m.overlay.item.Title),
				m.spin.View(),
				dimStyle.Render("loading..."))
		}
		return m.overlay.viewport.View()
	}
	return m.list.View()
}

func (m historyModel) helpLine() string {
	if m.overlay != nil {
		if m.overlay.loading {
			return "loading..."
		}
		if m.overlay.item.Kind == domain.HistoryKindChat {
			return "j/k: scroll • u: reuse in chat • esc: back"
		}
		return "j/k: scroll • esc: back"
	}
	if m.confirming != nil {
		return fmt.Sprintf("delete %q? y: delete • n: keep", truncateTitle(m.confirming.Title, 30))
	}
	if m.loading {
		return m.spin.View() + " loading history..."
	}
	return "enter: open • u: reuse chat • d: delete • r: reload • /: filter"
}

func truncateTitle(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
