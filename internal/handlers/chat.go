package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"argo-chat/internal/models"
	"argo-chat/internal/services"
)

type ChatHandler struct {
	cfg    RelayConfig
	models services.ModelFactory
}

func NewChatHandler(cfg RelayConfig, factory services.ModelFactory) *ChatHandler {
	return &ChatHandler{
		cfg:    cfg,
		models: factory,
	}
}

// GeneralChat forwards one prompt to the model and returns its text.
// Upstream failures are logged here and reported to the caller as an opaque
// message.
func (h *ChatHandler) GeneralChat(w http.ResponseWriter, r *http.Request) {
	if h.cfg.APIKey == "" {
		writeJSON(w, http.StatusInternalServerError, errorResp(msgMissingChatKey))
		return
	}

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, r, errors.Wrap(err, "decode chat request"))
		return
	}

	// The prompt is forwarded as-is; the model rejects what it cannot use.
	text, err := h.generate(r.Context(), req.Prompt)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{Text: text})
}

func (h *ChatHandler) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := h.cfg.withTimeout(ctx)
	defer cancel()

	model, err := h.models.NewModel(ctx, h.cfg.APIKey)
	if err != nil {
		return "", err
	}
	defer model.Close()

	return model.Generate(ctx, prompt)
}

func (h *ChatHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	log.Error().
		Err(err).
		Str("request_id", chimiddleware.GetReqID(r.Context())).
		Msg("Error processing chat request")
	writeJSON(w, http.StatusInternalServerError, errorResp(msgExecutionFailed))
}
