package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sorynlabs/soryn/internal/api"
	"github.com/sorynlabs/soryn/internal/domain"
)

// Panels never mutate shared state directly. The catalog, the debate
// selection and every modal are owned by the root model, and panels ask
// for changes by emitting one of the messages below.
//
// Every message that answers a network call carries the sequence number
// of the request that produced it. A slot's handler drops any answer
// whose sequence is no longer the latest, so a slow response can never
// overwrite a newer one.

type (
	// reloadModelsMsg asks the root to refresh the model catalog.
	reloadModelsMsg struct{}

	modelsLoadedMsg struct {
		seq    int
		models []domain.Model
		err    error
	}

	// toggleSelectMsg asks the root to add or remove a model from the
	// debate selection.
	toggleSelectMsg struct{ model domain.Model }

	// openFormMsg opens the add/edit dialog. A nil model means create.
	openFormMsg struct{ model *domain.Model }

	// formDoneMsg closes the dialog. saved reports whether the backend
	// accepted the submission.
	formDoneMsg struct{ saved bool }

	formSubmittedMsg struct {
		seq int
		err error
	}

	// requestDeleteModelMsg asks the root to run the delete
	// confirmation flow for a remote model.
	requestDeleteModelMsg struct{ model domain.Model }

	modelDeletedMsg struct {
		id  string
		err error
	}

	chatReplyMsg struct {
		seq  int
		resp *domain.ChatResponse
		err  error
	}

	debateFinishedMsg struct {
		seq    int
		result *domain.DebateResult
		err    error
	}

	historyLoadedMsg struct {
		seq   int
		items []domain.HistoryItem
		err   error
	}

	historyDetailMsg struct {
		seq    int
		detail domain.HistoryDetail
		err    error
	}

	historyDeletedMsg struct {
		kind string
		id   string
		err  error
	}

	// reuseChatRequestMsg asks the root to rehydrate the chat tab from
	// a stored session.
	reuseChatRequestMsg struct{ id string }

	chatHydrationMsg struct {
		seq    int
		detail *domain.ChatDetail
		err    error
	}

	// consumeHydrationMsg hands the pending hydration payload to the
	// chat panel exactly once.
	consumeHydrationMsg struct{}

	// statusMsg surfaces a transient notification from any panel.
	statusMsg struct {
		text  string
		isErr bool
	}

	// themeChangedMsg tells the root to rebuild anything that bakes the
	// theme in at construction time, like markdown renderers.
	themeChangedMsg struct{}

	toastExpiredMsg struct{ seq int }

	copyResultMsg struct {
		seq   int
		index int
		err   error
	}

	copyAckExpiredMsg struct{ seq int }
)

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func loadModelsCmd(client *api.Client, seq int) tea.Cmd {
	return func() tea.Msg {
		models, err := client.Models(context.Background())
		return modelsLoadedMsg{seq: seq, models: models, err: err}
	}
}

func sendChatCmd(client *api.Client, seq int, req domain.ChatRequest) tea.Cmd {
	return func() tea.Msg {
		resp, err := client.SendChat(context.Background(), req)
		return chatReplyMsg{seq: seq, resp: resp, err: err}
	}
}

func runDebateCmd(client *api.Client, seq int, req domain.DebateRequest) tea.Cmd {
	return func() tea.Msg {
		result, err := client.RunDebate(context.Background(), req)
		return debateFinishedMsg{seq: seq, result: result, err: err}
	}
}

func loadHistoryCmd(client *api.Client, seq int) tea.Cmd {
	return func() tea.Msg {
		items, err := client.History(context.Background())
		return historyLoadedMsg{seq: seq, items: items, err: err}
	}
}

func loadHistoryDetailCmd(client *api.Client, seq int, kind, id string) tea.Cmd {
	return func() tea.Msg {
		detail, err := client.HistoryDetail(context.Background(), kind, id)
		return historyDetailMsg{seq: seq, detail: detail, err: err}
	}
}

func deleteHistoryCmd(client *api.Client, kind, id string) tea.Cmd {
	return func() tea.Msg {
		err := client.DeleteHistory(context.Background(), kind, id)
		return historyDeletedMsg{kind: kind, id: id, err: err}
	}
}

func deleteModelCmd(client *api.Client, id string) tea.Cmd {
	return func() tea.Msg {
		err := client.DeleteModel(context.Background(), id)
		return modelDeletedMsg{id: id, err: err}
	}
}

func hydrateChatCmd(client *api.Client, seq int, id string) tea.Cmd {
	return func() tea.Msg {
		detail, err := client.ChatDetail(context.Background(), id)
		return chatHydrationMsg{seq: seq, detail: detail, err: err}
	}
}

// errorText prefers the backend-reported erro message over transport
// noise; failures with no such message fall back to the raw error.
func errorText(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
