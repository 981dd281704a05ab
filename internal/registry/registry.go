package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/ollama/ollama/api"

	"github.com/sorynlabs/soryn/internal/domain"
	"github.com/sorynlabs/soryn/internal/logger"
)

const discoveryTimeout = 5 * time.Second

// NotFoundError reports an id with no matching remote model.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("model with ID '%s' not found", e.ID)
}

// ConflictError reports a remote model that would collide with an
// existing one. The message is shown to users as-is.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// Manager owns the model catalog: remote API models persisted to a JSON
// file, plus locally installed ollama models discovered live.
type Manager struct {
	path       string
	ollamaHost string

	mu     sync.Mutex
	remote []domain.Model
}

type modelsFile struct {
	RemoteModels []domain.Model `json:"remote_models"`
}

func NewManager(path, ollamaHost string) (*Manager, error) {
	m := &Manager{path: path, ollamaHost: ollamaHost}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		m.remote = []domain.Model{}
		if err := m.save(); err != nil {
			return nil, err
		}
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read models file: %w", err)
	}

	var file modelsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse models file: %w", err)
	}
	m.remote = file.RemoteModels
	if m.remote == nil {
		m.remote = []domain.Model{}
	}

	return m, nil
}

func (m *Manager) save() error {
	data, err := json.MarshalIndent(modelsFile{RemoteModels: m.remote}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode models file: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write models file: %w", err)
	}
	return nil
}

// RemoteModels returns a copy of the persisted remote models.
func (m *Manager) RemoteModels() []domain.Model {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Model(nil), m.remote...)
}

// AddRemote registers a new API-backed model. The display name gets an
// " (API)" suffix; id and display name must be unique, case-insensitive.
func (m *Manager) AddRemote(provider, apiKey, modelID, name, apiModelName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, model := range m.remote {
		if strings.EqualFold(model.ID, modelID) {
			return &ConflictError{Message: fmt.Sprintf("model with ID '%s' already exists", modelID)}
		}
	}

	displayName := name + " (API)"
	for _, model := range m.remote {
		if strings.EqualFold(model.Name, displayName) {
			return &ConflictError{Message: fmt.Sprintf("model with display name '%s' already exists", name)}
		}
	}

	m.remote = append(m.remote, domain.Model{
		ID:           modelID,
		Name:         displayName,
		Provider:     provider,
		APIKey:       apiKey,
		APIModelName: apiModelName,
		IsAvailable:  true,
	})

	return m.save()
}

// UpdateRemote replaces everything but the id of an existing remote
// model.
func (m *Manager) UpdateRemote(id, provider, apiKey, name, apiModelName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := -1
	for i, model := range m.remote {
		if model.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return &NotFoundError{ID: id}
	}

	displayName := name + " (API)"
	for _, model := range m.remote {
		if strings.EqualFold(model.Name, displayName) && model.ID != id {
			return &ConflictError{Message: fmt.Sprintf("display name '%s' is already in use by another model", name)}
		}
	}

	m.remote[idx].Name = displayName
	m.remote[idx].Provider = provider
	m.remote[idx].APIKey = apiKey
	m.remote[idx].APIModelName = apiModelName

	return m.save()
}

func (m *Manager) DeleteRemote(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.remote[:0:0]
	for _, model := range m.remote {
		if model.ID != id {
			kept = append(kept, model)
		}
	}
	if len(kept) == len(m.remote) {
		return &NotFoundError{ID: id}
	}

	m.remote = kept
	return m.save()
}

// DiscoverOllama lists locally installed ollama models. An unreachable
// ollama daemon is not an error for callers that treat local models as
// optional; they get the error to log and an empty list to use.
func (m *Manager) DiscoverOllama(ctx context.Context) ([]domain.Model, error) {
	base, err := url.Parse(m.ollamaHost)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", m.ollamaHost, err)
	}

	ctx, cancel := context.WithTimeout(ctx, discoveryTimeout)
	defer cancel()

	client := api.NewClient(base, &http.Client{Timeout: discoveryTimeout})
	resp, err := client.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ollama models: %w", err)
	}

	models := make([]domain.Model, 0, len(resp.Models))
	for _, item := range resp.Models {
		base, _, _ := strings.Cut(item.Name, ":")
		sizeGB := float64(item.Size) / (1 << 30)
		models = append(models, domain.Model{
			ID:          item.Name,
			Name:        capitalize(base) + " (Local)",
			Provider:    domain.ProviderOllama,
			Description: fmt.Sprintf("%.2f GB model", sizeGB),
			IsAvailable: true,
		})
	}

	return models, nil
}

// UnifiedList merges discovered local models and remote models, local
// first. Discovery failures degrade to a remote-only list. Never nil, so
// an empty catalog serializes as an empty JSON array.
func (m *Manager) UnifiedList(ctx context.Context) []domain.Model {
	local, err := m.DiscoverOllama(ctx)
	if err != nil {
		slog.Warn("ollama discovery failed", logger.Err(err))
	}

	models := make([]domain.Model, 0, len(local))
	models = append(models, local...)
	return append(models, m.RemoteModels()...)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
