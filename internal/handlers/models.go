package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"argo-chat/internal/services"
)

type modelLister interface {
	List(ctx context.Context, apiKey string) ([]byte, error)
}

type ModelsHandler struct {
	cfg    RelayConfig
	lister modelLister
}

func NewModelsHandler(cfg RelayConfig, lister modelLister) *ModelsHandler {
	return &ModelsHandler{
		cfg:    cfg,
		lister: lister,
	}
}

// List proxies the provider's model catalogue. Upstream status and body are
// passed through on failure.
func (h *ModelsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.cfg.APIKey == "" {
		writeJSON(w, http.StatusInternalServerError, errorResp(msgMissingListKey))
		return
	}

	ctx, cancel := h.cfg.withTimeout(r.Context())
	defer cancel()

	body, err := h.lister.List(ctx, h.cfg.APIKey)
	if err != nil {
		var upstream *services.UpstreamError
		if errors.As(err, &upstream) {
			writeJSON(w, upstream.Status, errorResp("Failed to fetch models: "+upstream.Body))
			return
		}

		log.Error().Err(err).Msg("Failed to list models")
		msg := err.Error()
		if msg == "" {
			msg = msgListFailed
		}
		writeJSON(w, http.StatusInternalServerError, errorResp(msg))
		return
	}

	if !json.Valid(body) {
		log.Error().Int("bytes", len(body)).Msg("Model listing is not valid JSON")
		writeJSON(w, http.StatusInternalServerError, errorResp(msgListFailed))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
