package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sorynlabs/soryn/internal/api"
	"github.com/sorynlabs/soryn/internal/domain"
)

const copyAckDuration = 2 * time.Second

// debateModel fans one prompt out to every selected model and shows the
// scored responses. Submission stays disabled until at least two models
// are selected and the prompt has content, and only one run can be in
// flight.
type debateModel struct {
	client *api.Client

	prompt    textinput.Model
	selection []domain.Model
	running   bool
	runSeq    int
	result    *domain.DebateResult

	cursor    int
	copiedIdx int
	copySeq   int

	viewport viewport.Model
	spin     spinner.Model

	width  int
	height int
}

func newDebateModel(client *api.Client) debateModel {
	prompt := textinput.New()
	prompt.Placeholder = "Prompt for all selected models..."
	prompt.CharLimit = 0

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))

	return debateModel{
		client:    client,
		prompt:    prompt,
		copiedIdx: -1,
		viewport:  viewport.New(0, 0),
		spin:      spin,
	}
}

// setSelection replaces the resolved debate lineup. The root passes
// selected models that still exist in the catalog.
func (m debateModel) setSelection(models []domain.Model) debateModel {
	m.selection = models
	m.refreshViewport()
	return m
}

func (m debateModel) setSize(width, height int) debateModel {
	m.width = width
	m.height = height

	m.prompt.Width = width - 4

	m.viewport.Width = width
	m.viewport.Height = height - 3
	if m.viewport.Height < 1 {
		m.viewport.Height = 1
	}

	m.refreshViewport()
	return m
}

func (m debateModel) typing() bool { return m.prompt.Focused() }

// gateReason names what still blocks submission, empty when ready.
func (m debateModel) gateReason() string {
	if len(m.selection) < 2 {
		return fmt.Sprintf("select at least 2 models on the Models tab (%d selected)", len(m.selection))
	}
	if strings.TrimSpace(m.prompt.Value()) == "" {
		return "write a prompt first"
	}
	if m.running {
		return "a debate is already running"
	}
	return ""
}

func (m debateModel) canSubmit() bool { return m.gateReason() == "" }

func (m debateModel) Update(msg tea.Msg) (debateModel, tea.Cmd) {
	switch msg := msg.(type) {
	case debateFinishedMsg:
		return m.handleResult(msg)

	case copyResultMsg:
		if msg.seq != m.copySeq {
			return m, nil
		}
		if msg.err != nil {
			return m, emit(statusMsg{text: "Copy failed: " + msg.err.Error(), isErr: true})
		}
		m.copiedIdx = msg.index
		m.refreshViewport()
		seq := m.copySeq
		return m, tea.Tick(copyAckDuration, func(time.Time) tea.Msg {
			return copyAckExpiredMsg{seq: seq}
		})

	case copyAckExpiredMsg:
		if msg.seq != m.copySeq {
			return m, nil
		}
		m.copiedIdx = -1
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m debateModel) updateKeys(msg tea.KeyMsg) (debateModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if m.running {
			return m, nil
		}
		if reason := m.gateReason(); reason != "" {
			return m, emit(statusMsg{text: reason, isErr: true})
		}
		return m.submit()

	case "esc":
		if m.prompt.Focused() {
			m.prompt.Blur()
			return m, nil
		}

	case "i", "e":
		if !m.prompt.Focused() {
			cmd := m.prompt.Focus()
			return m, cmd
		}

	case "j", "down":
		if !m.prompt.Focused() && m.result != nil && m.cursor < len(m.result.Responses)-1 {
			m.cursor++
			m.refreshViewport()
			return m, nil
		}

	case "k", "up":
		if !m.prompt.Focused() && m.cursor > 0 {
			m.cursor--
			m.refreshViewport()
			return m, nil
		}

	case "c":
		if !m.prompt.Focused() {
			return m.copySelected()
		}
	}

	var cmd tea.Cmd
	if m.prompt.Focused() {
		m.prompt, cmd = m.prompt.Update(msg)
	} else {
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m debateModel) submit() (debateModel, tea.Cmd) {
	ids := make([]string, len(m.selection))
	for i, model := range m.selection {
		ids[i] = model.ID
	}

	m.running = true
	m.runSeq++
	m.prompt.Blur()

	req := domain.DebateRequest{Prompt: strings.TrimSpace(m.prompt.Value()), ModelIDs: ids}
	return m, tea.Batch(runDebateCmd(m.client, m.runSeq, req), m.spin.Tick)
}

func (m debateModel) handleResult(msg debateFinishedMsg) (debateModel, tea.Cmd) {
	if msg.seq != m.runSeq {
		return m, nil
	}

	m.running = false
	if msg.err != nil {
		// The previous result stays on screen.
		return m, emit(statusMsg{text: "Debate failed: " + errorText(msg.err), isErr: true})
	}

	m.result = msg.result
	m.cursor = 0
	m.copiedIdx = -1
	m.refreshViewport()
	return m, nil
}

func (m debateModel) copySelected() (debateModel, tea.Cmd) {
	if m.result == nil || len(m.result.Responses) == 0 {
		return m, nil
	}

	idx := m.cursor
	if idx >= len(m.result.Responses) {
		idx = len(m.result.Responses) - 1
	}
	resp := m.result.Responses[idx]
	text := resp.ResponseText
	if !resp.Success {
		text = resp.ErrorMessage
	}

	m.copySeq++
	seq := m.copySeq
	return m, func() tea.Msg {
		err := clipboard.WriteAll(text)
		return copyResultMsg{seq: seq, index: idx, err: err}
	}
}

func (m *debateModel) refreshViewport() {
	var content strings.Builder

	if m.result == nil {
		content.WriteString(titleStyle.Render("Debate"))
		content.WriteString("\n\n")
		content.WriteString("Every selected model answers the same prompt, the answers are\n")
		content.WriteString("scored, and a winner is declared.\n\n")
		if reason := m.gateReason(); reason != "" && !m.running {
			content.WriteString(dimStyle.Render("Not ready yet: " + reason))
		} else {
			content.WriteString(dimStyle.Render(fmt.Sprintf("%d models ready.", len(m.selection))))
		}
	} else {
		r := m.result
		content.WriteString(titleStyle.Render("Prompt: "))
		content.WriteString(r.Prompt)
		content.WriteString("\n")
		content.WriteString(dimStyle.Render(fmt.Sprintf("%d responses in %dms", len(r.Responses), r.TotalTimeMs)))
		content.WriteString("\n")
		if r.EvaluationReasoning != "" {
			content.WriteString(r.EvaluationReasoning)
			content.WriteString("\n")
		}
		content.WriteString("\n")

		for i, resp := range r.Responses {
			content.WriteString(m.renderResponse(i, resp))
			content.WriteString("\n")
		}
	}

	m.viewport.SetContent(content.String())
	m.viewport.GotoTop()
}

func (m *debateModel) renderResponse(idx int, resp domain.DebateResponse) string {
	var b strings.Builder

	name := resp.ModelName
	if name == "" {
		name = resp.ModelID
	}

	header := lipgloss.NewStyle().Bold(true).Render(name)
	if m.result != nil && resp.Success && resp.ModelID == m.result.WinnerModelID {
		header += " " + winnerBadgeStyle.Render("WINNER")
	}
	if m.copiedIdx == idx {
		header += " " + dimStyle.Render("copied!")
	}
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%s · %d tokens · %dms", resp.ModelID, resp.TokensUsed, resp.InferenceTimeMs)))
	b.WriteString("\n\n")

	if resp.Success {
		b.WriteString(resp.ResponseText)
	} else {
		b.WriteString(errorTextStyle.Render("failed: " + resp.ErrorMessage))
	}

	style := cardStyle
	if idx == m.cursor {
		style = selectedCardStyle
	}
	width := m.width - 2
	if width < 20 {
		width = 20
	}
	return style.Width(width).Render(b.String())
}

func (m debateModel) View() string {
	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.running {
		b.WriteString(m.spin.View())
		b.WriteString(dimStyle.Render(fmt.Sprintf("running debate across %d models...", len(m.selection))))
	} else if reason := m.gateReason(); reason != "" {
		b.WriteString(dimStyle.Render(reason))
	} else {
		b.WriteString(dimStyle.Render(fmt.Sprintf("ready: %d models selected", len(m.selection))))
	}
	b.WriteString("\n")
	b.WriteString(m.prompt.View())

	return b.String()
}

func (m debateModel) helpLine() string {
	if m.running {
		return "debate in progress..."
	}
	if m.prompt.Focused() {
		return "enter: run debate • esc: browse"
	}
	return "i: edit prompt • enter: run • j/k: select response • c: copy"
}
