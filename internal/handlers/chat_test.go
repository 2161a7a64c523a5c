package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"argo-chat/internal/models"
	"argo-chat/internal/services"
)

type stubModel struct {
	reply     string
	err       error
	prompts   []string
	closed    bool
	deadlined bool
}

func (m *stubModel) Generate(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	_, m.deadlined = ctx.Deadline()
	return m.reply, m.err
}

func (m *stubModel) Close() error {
	m.closed = true
	return nil
}

type stubFactory struct {
	model   *stubModel
	err     error
	calls   int
	lastKey string
}

func (f *stubFactory) NewModel(ctx context.Context, apiKey string) (services.TextModel, error) {
	f.calls++
	f.lastKey = apiKey
	if f.err != nil {
		return nil, f.err
	}
	return f.model, nil
}

func postChat(t *testing.T, h *ChatHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/general-chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.GeneralChat(rr, req)
	return rr
}

func TestChatHandler_ReturnsModelText(t *testing.T) {
	factory := &stubFactory{model: &stubModel{reply: "ARGO is a global array of profiling floats."}}
	h := NewChatHandler(RelayConfig{APIKey: "key", Timeout: time.Minute}, factory)

	rr := postChat(t, h, `{"prompt":"What is ARGO?"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp models.ChatResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "ARGO is a global array of profiling floats.", resp.Text)

	assert.Equal(t, "key", factory.lastKey)
	assert.Equal(t, []string{"What is ARGO?"}, factory.model.prompts)
	assert.True(t, factory.model.closed)
	assert.True(t, factory.model.deadlined)
}

func TestChatHandler_MissingKeySkipsUpstream(t *testing.T) {
	factory := &stubFactory{model: &stubModel{reply: "unused"}}
	h := NewChatHandler(RelayConfig{}, factory)

	rr := postChat(t, h, `{"prompt":"What is ARGO?"}`)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	var resp models.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "Configuration Error: API Key is missing.", resp.Error)
	assert.Zero(t, factory.calls)
}

func TestChatHandler_UpstreamFailureIsOpaque(t *testing.T) {
	tests := []struct {
		name    string
		factory *stubFactory
	}{
		{"generate fails", &stubFactory{model: &stubModel{err: errors.New("quota exceeded for project 42")}}},
		{"client construction fails", &stubFactory{err: errors.New("dial tcp: no route")}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewChatHandler(RelayConfig{APIKey: "key"}, tc.factory)

			rr := postChat(t, h, `{"prompt":"salinity near 40S?"}`)

			require.Equal(t, http.StatusInternalServerError, rr.Code)
			assert.JSONEq(t, `{"error":"Internal Server Error during AI execution."}`, rr.Body.String())
			assert.NotContains(t, rr.Body.String(), "quota")
			assert.NotContains(t, rr.Body.String(), "dial")
		})
	}
}

func TestChatHandler_MalformedBody(t *testing.T) {
	factory := &stubFactory{model: &stubModel{reply: "unused"}}
	h := NewChatHandler(RelayConfig{APIKey: "key"}, factory)

	rr := postChat(t, h, `{"prompt":`)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error during AI execution."}`, rr.Body.String())
	assert.Zero(t, factory.calls)
}

func TestChatHandler_EmptyPromptIsForwarded(t *testing.T) {
	factory := &stubFactory{model: &stubModel{reply: ""}}
	h := NewChatHandler(RelayConfig{APIKey: "key"}, factory)

	rr := postChat(t, h, `{}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{""}, factory.model.prompts)
	assert.False(t, factory.model.deadlined)
}
