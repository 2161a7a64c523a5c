package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// UpstreamError is a non-2xx reply from the model provider.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Body)
}

// ModelLister fetches the provider's model catalogue as raw JSON.
type ModelLister struct {
	client *resty.Client
}

func NewModelLister(baseURL string) *ModelLister {
	return &ModelLister{
		client: resty.New().SetBaseURL(baseURL),
	}
}

// List returns the upstream body untouched so callers can pass it through.
// The key travels in a header and never appears in returned errors.
func (l *ModelLister) List(ctx context.Context, apiKey string) ([]byte, error) {
	res, err := l.client.R().
		SetContext(ctx).
		SetHeader("x-goog-api-key", apiKey).
		Get("/models")
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, errors.Wrap(err, "request models")
	}

	if res.IsError() {
		return nil, &UpstreamError{Status: res.StatusCode(), Body: string(res.Body())}
	}

	return res.Body(), nil
}
