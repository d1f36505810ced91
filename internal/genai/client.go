package genai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Generator is the narrow contract every LLM-backed stage depends on.
type Generator interface {
	// Generate sends prompt to the named model and returns the full response text.
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// LLMClient defines the interface for interacting with a generative AI model.
type LLMClient interface {
	Generator

	// IsAPIKeyValid checks if the configured API key is functional.
	IsAPIKeyValid(ctx context.Context) error

	// Close cleans up any resources used by the client.
	Close() error
}

// Config holds configuration for the GenAI client.
type Config struct {
	APIKey      string
	Temperature float32
	Logger      *zap.Logger
}

// geminiClient implements the LLMClient interface using the Google Gemini API.
type geminiClient struct {
	client *genai.Client
	cfg    Config
	log    *zap.Logger
}

var _ LLMClient = (*geminiClient)(nil)

// NewClient creates a new Gemini client. The returned client is safe for
// sequential use by a single pipeline run; concurrent runs should each own one.
func NewClient(ctx context.Context, cfg Config) (LLMClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("cannot create Gemini client: API key is missing")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &geminiClient{
		client: client,
		cfg:    cfg,
		log:    logger,
	}, nil
}

// Close cleans up the underlying Gemini client.
func (c *geminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// IsAPIKeyValid checks if the Gemini API key is valid by listing models.
func (c *geminiClient) IsAPIKeyValid(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("gemini client not initialized (likely missing API key)")
	}

	modelIterator := c.client.ListModels(ctx)
	_, err := modelIterator.Next() // Attempt to list one model
	if err != nil {
		if isAuthError(err) {
			return fmt.Errorf("invalid Gemini API key or insufficient permissions: %w", err)
		}
		return fmt.Errorf("failed to verify Gemini API key by listing models: %w", err)
	}
	return nil
}

// Generate sends a single prompt to the Gemini API. No retries are attempted.
func (c *geminiClient) Generate(ctx context.Context, model, prompt string) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("gemini client not initialized")
	}
	if model == "" {
		return "", fmt.Errorf("model name is required")
	}

	gm := c.client.GenerativeModel(model)
	if c.cfg.Temperature > 0 {
		gm.SetTemperature(c.cfg.Temperature)
	}

	resp, err := gm.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API call failed: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return "", err
	}
	c.log.Debug("gemini response received",
		zap.String("model", model),
		zap.Int("prompt_chars", len(prompt)),
		zap.Int("response_chars", len(text)))
	return text, nil
}

func isAuthError(err error) bool {
	st, ok := status.FromError(err)
	if !ok {
		return false
	}
	return st.Code() == codes.Unauthenticated || st.Code() == codes.PermissionDenied
}

// responseText concatenates every text part of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		finishReason := "unknown"
		safetyRatings := "none"
		if resp != nil && len(resp.Candidates) > 0 {
			finishReason = resp.Candidates[0].FinishReason.String()
			if resp.Candidates[0].SafetyRatings != nil {
				safetyRatings = fmt.Sprintf("%v", resp.Candidates[0].SafetyRatings)
			}
		}
		return "", fmt.Errorf("empty or incomplete response from Gemini API. FinishReason: %s, SafetyRatings: %s", finishReason, safetyRatings)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		text, ok := part.(genai.Text)
		if !ok {
			return "", fmt.Errorf("unexpected response part type: %T", part)
		}
		sb.WriteString(string(text))
	}
	return sb.String(), nil
}
