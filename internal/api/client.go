package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sorynlabs/soryn/internal/domain"
)

// Error is a backend-reported failure. The message carries the erro
// field of the response body verbatim.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

// Client talks to the Soryn backend. Calls carry no retry policy: a
// failure is reported once and the caller decides what to do with it.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Minute},
	}
}

type CreateModelRequest struct {
	Provider     string `json:"provider"`
	APIKey       string `json:"api_key"`
	ModelID      string `json:"model_id"`
	Name         string `json:"name"`
	APIModelName string `json:"api_model_name"`
}

type UpdateModelRequest struct {
	Provider     string `json:"provider"`
	APIKey       string `json:"api_key"`
	ModelID      string `json:"model_id"`
	Name         string `json:"name"`
	APIModelName string `json:"api_model_name"`
}

func (c *Client) Models(ctx context.Context) ([]domain.Model, error) {
	var models []domain.Model
	if err := c.do(ctx, http.MethodGet, "/api/models", nil, &models); err != nil {
		return nil, fmt.Errorf("failed to load models: %w", err)
	}
	return models, nil
}

func (c *Client) CreateModel(ctx context.Context, req CreateModelRequest) error {
	if err := c.do(ctx, http.MethodPost, "/api/models/remote", req, nil); err != nil {
		return fmt.Errorf("failed to create model: %w", err)
	}
	return nil
}

func (c *Client) UpdateModel(ctx context.Context, id string, req UpdateModelRequest) error {
	path := "/api/models/remote/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodPut, path, req, nil); err != nil {
		return fmt.Errorf("failed to update model: %w", err)
	}
	return nil
}

func (c *Client) DeleteModel(ctx context.Context, id string) error {
	path := "/api/models/remote/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("failed to delete model: %w", err)
	}
	return nil
}

func (c *Client) SendChat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	var resp domain.ChatResponse
	if err := c.do(ctx, http.MethodPost, "/chat", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to send chat: %w", err)
	}
	return &resp, nil
}

func (c *Client) RunDebate(ctx context.Context, req domain.DebateRequest) (*domain.DebateResult, error) {
	var result domain.DebateResult
	if err := c.do(ctx, http.MethodPost, "/debate", req, &result); err != nil {
		return nil, fmt.Errorf("failed to run debate: %w", err)
	}
	return &result, nil
}

func (c *Client) History(ctx context.Context) ([]domain.HistoryItem, error) {
	var items []domain.HistoryItem
	if err := c.do(ctx, http.MethodGet, "/api/history", nil, &items); err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return items, nil
}

func (c *Client) ChatDetail(ctx context.Context, id string) (*domain.ChatDetail, error) {
	path := "/api/history/chat/" + url.PathEscape(id)
	var detail domain.ChatDetail
	if err := c.do(ctx, http.MethodGet, path, nil, &detail); err != nil {
		return nil, fmt.Errorf("failed to load chat detail: %w", err)
	}
	return &detail, nil
}

func (c *Client) DebateDetail(ctx context.Context, id string) (*domain.DebateDetail, error) {
	path := "/api/history/debate/" + url.PathEscape(id)
	var detail domain.DebateDetail
	if err := c.do(ctx, http.MethodGet, path, nil, &detail); err != nil {
		return nil, fmt.Errorf("failed to load debate detail: %w", err)
	}
	return &detail, nil
}

// HistoryDetail fetches the expanded form of a history item and returns
// it as the variant matching its kind.
func (c *Client) HistoryDetail(ctx context.Context, kind, id string) (domain.HistoryDetail, error) {
	switch kind {
	case domain.HistoryKindChat:
		detail, err := c.ChatDetail(ctx, id)
		if err != nil {
			return nil, err
		}
		return *detail, nil
	case domain.HistoryKindDebate:
		detail, err := c.DebateDetail(ctx, id)
		if err != nil {
			return nil, err
		}
		return *detail, nil
	default:
		return nil, fmt.Errorf("unknown history kind: %s", kind)
	}
}

func (c *Client) DeleteHistory(ctx context.Context, kind, id string) error {
	path := "/api/history/" + url.PathEscape(kind) + "/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("failed to delete history item: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &Error{StatusCode: resp.StatusCode}

	var body struct {
		Erro string `json:"erro"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Message = body.Erro
	}

	return apiErr
}
