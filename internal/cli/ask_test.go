package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sorynlabs/soryn/internal/domain"
)

func TestNewAskCommand(t *testing.T) {
	cmd := NewAskCommand()

	if cmd.Use != "ask <prompt>" {
		t.Errorf("Command.Use = %v, want %v", cmd.Use, "ask <prompt>")
	}

	for _, flag := range []string{"model", "chat"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("Flag %q not defined", flag)
		}
	}
}

func TestRunAsk(t *testing.T) {
	var got domain.ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(domain.ChatResponse{Response: "goroutines are cheap", ChatID: "c42"})
	}))
	defer srv.Close()

	output := captureStdout(t, func() error {
		return runAsk(srv.URL, "llama3:latest", "", "explain goroutines")
	})

	if got.ModelID != "llama3:latest" || got.Prompt != "explain goroutines" {
		t.Errorf("backend saw request %+v", got)
	}
	if got.ChatID != "" {
		t.Errorf("one-shot ask carried chat_id %q", got.ChatID)
	}
	if !strings.Contains(output, "goroutines are cheap") {
		t.Errorf("Expected reply in output, got: %s", output)
	}
}

func TestRunAsk_ContinuesSession(t *testing.T) {
	var got domain.ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(domain.ChatResponse{Response: "shorter answer", ChatID: "c42"})
	}))
	defer srv.Close()

	captureStdout(t, func() error {
		return runAsk(srv.URL, "llama3:latest", "c42", "shorter")
	})

	if got.ChatID != "c42" {
		t.Errorf("continued ask carried chat_id %q, want c42", got.ChatID)
	}
}

func TestRunAsk_EmptyPrompt(t *testing.T) {
	err := runAsk("http://127.0.0.1:0", "llama3:latest", "", "   ")
	if err == nil {
		t.Fatal("runAsk() expected an error")
	}
	if !strings.Contains(err.Error(), "prompt is empty") {
		t.Errorf("error = %v", err)
	}
}

func TestRunAsk_BackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"erro": "Modelo não encontrado"})
	}))
	defer srv.Close()

	err := runAsk(srv.URL, "missing", "", "hello")
	if err == nil {
		t.Fatal("runAsk() expected an error")
	}
	if !strings.Contains(err.Error(), "Modelo não encontrado") {
		t.Errorf("error = %v, want the backend message", err)
	}
}
