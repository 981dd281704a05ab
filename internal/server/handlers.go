package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/sorynlabs/soryn/internal/domain"
	"github.com/sorynlabs/soryn/internal/inference"
	"github.com/sorynlabs/soryn/internal/logger"
	"github.com/sorynlabs/soryn/internal/registry"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}

// handleChat stores the user turn before resolving the model, so a prompt
// aimed at a missing model still lands in the transcript.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ModelID string `json:"model_id"`
		Prompt  string `json:"prompt"`
		ChatID  string `json:"chat_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.ValidateStruct(&payload,
		validation.Field(&payload.ModelID, validation.Required),
		validation.Field(&payload.Prompt, validation.Required),
	); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	chatID := payload.ChatID
	if chatID == "" {
		id, err := s.store.CreateChat(payload.ModelID, payload.Prompt)
		if err != nil {
			slog.Error("creating chat", logger.Err(err))
			respondWithError(w, http.StatusInternalServerError, "failed to create chat")
			return
		}
		chatID = id
	} else {
		if err := s.store.AppendMessage(chatID, domain.RoleUser, payload.Prompt); err != nil {
			slog.Error("storing user message", "chat_id", chatID, logger.Err(err))
			respondWithError(w, http.StatusInternalServerError, "failed to store message")
			return
		}
	}

	model, ok := s.findModel(r.Context(), payload.ModelID)
	if !ok {
		respondWithError(w, http.StatusNotFound, fmt.Sprintf("model '%s' not found", payload.ModelID))
		return
	}

	res, err := s.providers.Infer(r.Context(), model, inference.Request{Prompt: payload.Prompt})
	if err != nil {
		slog.Error("chat inference failed", "model_id", payload.ModelID, logger.Err(err))
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := s.store.AppendMessage(chatID, domain.RoleAssistant, res.Text); err != nil {
		slog.Error("storing assistant message", "chat_id", chatID, logger.Err(err))
		respondWithError(w, http.StatusInternalServerError, "failed to store message")
		return
	}

	respondWithJSON(w, http.StatusOK, domain.ChatResponse{Response: res.Text, ChatID: chatID})
}

func (s *Server) handleDebate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Prompt string   `json:"prompt"`
		Models []string `json:"models"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.ValidateStruct(&payload,
		validation.Field(&payload.Prompt, validation.Required),
		validation.Field(&payload.Models, validation.Required),
	); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.engine.Run(r.Context(), domain.DebateRequest{
		Prompt:   payload.Prompt,
		ModelIDs: payload.Models,
	})
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// A storage failure is logged but never costs the caller a finished
	// debate.
	if _, err := s.store.SaveDebate(result); err != nil {
		slog.Error("saving debate", logger.Err(err))
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.History()
	if err != nil {
		slog.Error("fetching history", logger.Err(err))
		respondWithError(w, http.StatusInternalServerError, "failed to fetch history")
		return
	}
	respondWithJSON(w, http.StatusOK, items)
}

func (s *Server) handleHistoryDetail(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("type")
	id := r.PathValue("id")

	switch kind {
	case domain.HistoryKindChat:
		detail, err := s.store.GetChat(id)
		if err != nil {
			slog.Error("fetching chat", "id", id, logger.Err(err))
			respondWithError(w, http.StatusInternalServerError, "failed to fetch item details")
			return
		}
		if detail == nil {
			respondWithError(w, http.StatusNotFound, "item not found")
			return
		}
		respondWithJSON(w, http.StatusOK, detail)
	case domain.HistoryKindDebate:
		detail, err := s.store.GetDebate(id)
		if err != nil {
			slog.Error("fetching debate", "id", id, logger.Err(err))
			respondWithError(w, http.StatusInternalServerError, "failed to fetch item details")
			return
		}
		if detail == nil {
			respondWithError(w, http.StatusNotFound, "item not found")
			return
		}
		respondWithJSON(w, http.StatusOK, detail)
	default:
		respondWithError(w, http.StatusBadRequest, "invalid item type")
	}
}

func (s *Server) handleHistoryDelete(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("type")
	id := r.PathValue("id")

	if kind != domain.HistoryKindChat && kind != domain.HistoryKindDebate {
		respondWithError(w, http.StatusBadRequest, "invalid item type")
		return
	}

	deleted, err := s.store.DeleteHistoryItem(id, kind)
	if err != nil {
		slog.Error("deleting history item", "id", id, logger.Err(err))
		respondWithError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}
	if !deleted {
		respondWithError(w, http.StatusNotFound, "item not found")
		return
	}

	respondWithSuccess(w, http.StatusOK, fmt.Sprintf("Item %s deleted.", id))
}

func (s *Server) handleModelsList(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, s.catalog.UnifiedList(r.Context()))
}

func (s *Server) handleModelCreate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Provider     string `json:"provider"`
		APIKey       string `json:"api_key"`
		ModelID      string `json:"model_id"`
		Name         string `json:"name"`
		APIModelName string `json:"api_model_name"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.ValidateStruct(&payload,
		validation.Field(&payload.Provider, validation.Required),
		validation.Field(&payload.APIKey, validation.Required),
		validation.Field(&payload.ModelID, validation.Required),
		validation.Field(&payload.Name, validation.Required),
		validation.Field(&payload.APIModelName, validation.Required),
	); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := s.catalog.AddRemote(payload.Provider, payload.APIKey, payload.ModelID, payload.Name, payload.APIModelName)
	if err != nil {
		var conflict *registry.ConflictError
		if errors.As(err, &conflict) {
			respondWithError(w, http.StatusConflict, conflict.Error())
			return
		}
		slog.Error("adding remote model", logger.Err(err))
		respondWithError(w, http.StatusInternalServerError, "failed to save model")
		return
	}

	respondWithSuccess(w, http.StatusCreated, fmt.Sprintf("Remote model %s added successfully.", payload.ModelID))
}

func (s *Server) handleModelUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var payload struct {
		Provider     string `json:"provider"`
		APIKey       string `json:"api_key"`
		Name         string `json:"name"`
		APIModelName string `json:"api_model_name"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.ValidateStruct(&payload,
		validation.Field(&payload.Provider, validation.Required),
		validation.Field(&payload.APIKey, validation.Required),
		validation.Field(&payload.Name, validation.Required),
		validation.Field(&payload.APIModelName, validation.Required),
	); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := s.catalog.UpdateRemote(id, payload.Provider, payload.APIKey, payload.Name, payload.APIModelName)
	if err != nil {
		var conflict *registry.ConflictError
		var notFound *registry.NotFoundError
		switch {
		case errors.As(err, &conflict):
			respondWithError(w, http.StatusConflict, conflict.Error())
		case errors.As(err, &notFound):
			respondWithError(w, http.StatusNotFound, notFound.Error())
		default:
			slog.Error("updating remote model", "id", id, logger.Err(err))
			respondWithError(w, http.StatusInternalServerError, "failed to update model")
		}
		return
	}

	respondWithSuccess(w, http.StatusOK, fmt.Sprintf("Model %s updated successfully.", id))
}

func (s *Server) handleModelDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.catalog.DeleteRemote(id); err != nil {
		var notFound *registry.NotFoundError
		if errors.As(err, &notFound) {
			respondWithError(w, http.StatusNotFound, notFound.Error())
			return
		}
		slog.Error("removing remote model", "id", id, logger.Err(err))
		respondWithError(w, http.StatusInternalServerError, "failed to remove model")
		return
	}

	respondWithSuccess(w, http.StatusOK, fmt.Sprintf("Model %s removed.", id))
}

func (s *Server) findModel(ctx context.Context, id string) (domain.Model, bool) {
	for _, m := range s.catalog.UnifiedList(ctx) {
		if m.ID == id {
			return m, true
		}
	}
	return domain.Model{}, false
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"erro": message})
}

func respondWithSuccess(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"sucesso": message})
}
