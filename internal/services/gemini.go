package services

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// TextModel answers a single-turn prompt with one complete response.
type TextModel interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Close() error
}

// ModelFactory builds a TextModel bound to an API key. The relay asks for a
// fresh model per request so that the key is never cached across requests.
type ModelFactory interface {
	NewModel(ctx context.Context, apiKey string) (TextModel, error)
}

type GeminiService struct {
	modelName       string
	maxOutputTokens int32
	clientOpts      []option.ClientOption
}

func NewGeminiService(modelName string, maxOutputTokens int, opts ...option.ClientOption) *GeminiService {
	return &GeminiService{
		modelName:       modelName,
		maxOutputTokens: int32(maxOutputTokens),
		clientOpts:      opts,
	}
}

func (s *GeminiService) ModelName() string {
	return s.modelName
}

func (s *GeminiService) NewModel(ctx context.Context, apiKey string) (TextModel, error) {
	opts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, s.clientOpts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Gemini client")
	}

	model := client.GenerativeModel(s.modelName)
	model.SetMaxOutputTokens(s.maxOutputTokens)

	return &geminiModel{client: client, model: model}, nil
}

type geminiModel struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// Generate sends prompt as a single user turn and waits for the full reply.
func (m *geminiModel) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := m.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", errors.Wrap(err, "Gemini API error")
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			log.Warn().
				Int("candidate", i).
				Str("finish_reason", cand.FinishReason.String()).
				Int32("tokens", cand.TokenCount).
				Msg("Gemini stopped early")
		}
	}

	return extractText(resp), nil
}

func (m *geminiModel) Close() error {
	return m.client.Close()
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
