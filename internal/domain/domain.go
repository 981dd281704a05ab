package domain

import (
	"time"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Model struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Provider     string `json:"provider"`
	Description  string `json:"description"`
	APIKey       string `json:"api_key,omitempty"`
	APIModelName string `json:"api_model_name,omitempty"`
	IsAvailable  bool   `json:"is_available"`
}

type ChatMessage struct {
	ID        string    `json:"id,omitempty"`
	ChatID    string    `json:"chat_id,omitempty"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatSession ties a client transcript to the backend conversation it
// belongs to. The chat ID is assigned by the backend on the first send.
type ChatSession struct {
	ChatID  string `json:"chat_id"`
	ModelID string `json:"model_id"`
}

type ChatRequest struct {
	ModelID string `json:"model_id"`
	Prompt  string `json:"prompt"`
	ChatID  string `json:"chat_id,omitempty"`
}

type ChatResponse struct {
	Response string `json:"response"`
	ChatID   string `json:"chat_id"`
}

type DebateRequest struct {
	Prompt   string   `json:"prompt"`
	ModelIDs []string `json:"models"`
}

type DebateResponse struct {
	ModelID          string             `json:"model_id"`
	ModelName        string             `json:"model_name"`
	ResponseText     string             `json:"response_text"`
	TokensUsed       int                `json:"tokens_used"`
	InferenceTimeMs  int64              `json:"inference_time_ms"`
	Success          bool               `json:"success"`
	ErrorMessage     string             `json:"error_message,omitempty"`
	EvaluationScores map[string]float64 `json:"evaluation_scores,omitempty"`
}

type DebateResult struct {
	DebateID            string           `json:"debate_id"`
	Timestamp           time.Time        `json:"timestamp"`
	Prompt              string           `json:"prompt"`
	SystemPrompt        string           `json:"system_prompt,omitempty"`
	Responses           []DebateResponse `json:"responses"`
	WinnerModelID       string           `json:"winner_model_id,omitempty"`
	WinnerResponse      string           `json:"winner_response,omitempty"`
	EvaluationReasoning string           `json:"evaluation_reasoning,omitempty"`
	TotalTimeMs         int64            `json:"total_time_ms"`
}

const (
	HistoryKindChat   = "chat"
	HistoryKindDebate = "debate"
)

type HistoryItem struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	SortDate time.Time `json:"sort_date"`
	Kind     string    `json:"type"`
	ModelID  string    `json:"model_id,omitempty"`
}

type ChatDetail struct {
	ID        string        `json:"id"`
	ModelID   string        `json:"model_id"`
	Title     string        `json:"title"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Messages  []ChatMessage `json:"messages"`
}

type DebateDetail struct {
	ID                  string           `json:"id"`
	Prompt              string           `json:"prompt"`
	WinnerModelID       string           `json:"winner_model_id,omitempty"`
	EvaluationReasoning string           `json:"evaluation_reasoning,omitempty"`
	TotalTimeMs         int64            `json:"total_time_ms"`
	Timestamp           time.Time        `json:"timestamp"`
	Responses           []DebateResponse `json:"responses"`
}

// HistoryDetail is the expanded form of a history item. It is a closed
// set: a detail is either a ChatDetail or a DebateDetail, and consumers
// dispatch with a type switch instead of inspecting optional fields.
type HistoryDetail interface {
	historyDetail()
}

func (ChatDetail) historyDetail()   {}
func (DebateDetail) historyDetail() {}
