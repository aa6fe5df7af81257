package generativeAI

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

const defaultModel = "gemini-2.0-flash"

type AIClient struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewAIClient creates a Gemini client. baseURL is optional and only set when
// talking to a proxy or a test server.
func NewAIClient(ctx context.Context, apiKey, model, baseURL string, logger *slog.Logger) (*AIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is not set: %w", types.ErrUnsupportedCapability)
	}
	if model == "" {
		model = defaultModel
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &AIClient{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// Generate sends req.Message on top of req.History and returns the model text.
// It is not retried; callers own the fallback policy.
func (ai *AIClient) Generate(ctx context.Context, req types.GenerationRequest) (string, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "Generate", trace.WithAttributes(
		attribute.String("model", ai.model),
		attribute.Int("history.length", len(req.History)),
		attribute.Int("message.length", len(req.Message)),
	))
	defer span.End()

	chat, err := ai.client.Chats.Create(ctx, ai.model, buildConfig(req), toContents(req.History))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create chat")
		return "", fmt.Errorf("%w: failed to create chat: %w", types.ErrUpstreamUnavailable, err)
	}

	resp, err := chat.SendMessage(ctx, genai.Part{Text: req.Message})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to send message")
		return "", fmt.Errorf("%w: failed to send message: %w", types.ErrUpstreamUnavailable, err)
	}
	if resp == nil {
		span.SetStatus(codes.Error, "Empty response")
		return "", fmt.Errorf("%w: empty response from model", types.ErrMalformedResponse)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		span.SetStatus(codes.Error, "No text in response")
		return "", fmt.Errorf("%w: model returned no text", types.ErrMalformedResponse)
	}

	span.SetAttributes(attribute.Int("response.length", len(text)))
	span.SetStatus(codes.Ok, "Response generated successfully")
	return text, nil
}

func buildConfig(req types.GenerationRequest) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(req.Temperature),
		MaxOutputTokens: req.MaxOutputTokens,
	}
	if req.SystemInstruction != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemInstruction}},
		}
	}
	return config
}

// toContents maps transcript turns to Gemini history. System turns are carried
// by the system instruction and skipped here.
func toContents(history []types.Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		role := genai.RoleUser
		switch turn.Role {
		case types.RoleSystem:
			continue
		case types.RoleAssistant:
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  string(role),
			Parts: []*genai.Part{{Text: turn.Text}},
		})
	}
	return contents
}
