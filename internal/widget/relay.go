package widget

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"argo-chat/internal/models"
)

// HTTPRelay talks to the relay server over HTTP.
type HTTPRelay struct {
	client *resty.Client
}

func NewHTTPRelay(baseURL string, timeout time.Duration) *HTTPRelay {
	client := resty.New().SetBaseURL(baseURL)
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &HTTPRelay{client: client}
}

// Ask posts the prompt and returns the relay's text. Error texts are kept
// short since they end up in front of the user.
func (r *HTTPRelay) Ask(ctx context.Context, prompt string) (string, error) {
	res, err := r.client.R().
		SetContext(ctx).
		SetBody(models.ChatRequest{Prompt: prompt}).
		Post("/api/general-chat")
	if err != nil {
		return "", err
	}

	if res.IsError() {
		return "", fmt.Errorf("HTTP error! status: %d", res.StatusCode())
	}

	var data struct {
		Text  string `json:"text"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(res.Body(), &data); err != nil {
		return "", err
	}
	if data.Error != "" {
		return "", errors.New(data.Error)
	}

	return data.Text, nil
}

// ListModels returns the provider's model catalogue as relayed by the server.
func (r *HTTPRelay) ListModels(ctx context.Context) ([]byte, error) {
	res, err := r.client.R().
		SetContext(ctx).
		Get("/api/list-models")
	if err != nil {
		return nil, errors.Wrap(err, "list models")
	}

	if res.IsError() {
		var e models.ErrorResponse
		if json.Unmarshal(res.Body(), &e) == nil && e.Error != "" {
			return nil, errors.Errorf("list models: %s (status %d)", e.Error, res.StatusCode())
		}
		return nil, errors.Errorf("list models: status %d", res.StatusCode())
	}

	return res.Body(), nil
}
