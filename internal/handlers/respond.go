package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"argo-chat/internal/models"
)

const (
	msgMissingChatKey  = "Configuration Error: API Key is missing."
	msgExecutionFailed = "Internal Server Error during AI execution."
	msgMissingListKey  = "GOOGLE_API_KEY is missing in environment."
	msgListFailed      = "Failed to list models"
)

// RelayConfig is everything the relay handlers need from the environment.
// An empty APIKey is reported on each request, never at construction.
type RelayConfig struct {
	APIKey  string
	Timeout time.Duration
}

func (c RelayConfig) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.Timeout)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(message string) models.ErrorResponse {
	return models.ErrorResponse{Error: message}
}
