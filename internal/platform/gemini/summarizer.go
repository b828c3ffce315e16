// Package gemini implements the summary.Summarizer interface using
// Google's Gemini API via the google.golang.org/genai client.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/paperboy-dev/paperboy-api/internal/config"
	"github.com/paperboy-dev/paperboy-api/internal/platform/logger"
	"github.com/paperboy-dev/paperboy-api/internal/summary"
)

// instructionTemplate is the system instruction given to the model. The
// four-section structure matches what the digest email renders.
const instructionTemplate = "You are a research assistant. Summarize the following paper abstract " +
	"as a structured synopsis in %s with four sections: Background, Methods, Results, Conclusions. " +
	"Keep each section to one or two sentences."

// Summarizer generates paper synopses using the Gemini API.
type Summarizer struct {
	client    *genai.Client
	modelName string
	language  string
	logger    *slog.Logger
}

// Ensure Summarizer implements summary.Summarizer interface
var _ summary.Summarizer = (*Summarizer)(nil)

// NewSummarizer creates a Gemini-backed summarizer from the LLM
// configuration. Returns summary.ErrNoCredentials if no API key is
// configured; callers should then use summary.Fallback instead.
func NewSummarizer(ctx context.Context, cfg config.LLMConfig, log *slog.Logger) (*Summarizer, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, summary.ErrNoCredentials
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name is required", summary.ErrInvalidConfig)
	}
	if log == nil {
		log = slog.Default()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	language := cfg.Language
	if language == "" {
		language = "English"
	}

	return &Summarizer{
		client:    client,
		modelName: cfg.ModelName,
		language:  language,
		logger:    log.With(slog.String("component", "gemini_summarizer")),
	}, nil
}

// Summarize implements summary.Summarizer.Summarize
// It sends the abstract to Gemini with a fixed structuring instruction
// and returns the generated synopsis text.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	instruction := fmt.Sprintf(instructionTemplate, s.language)
	genConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: instruction}},
		},
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.modelName, genai.Text(text), genConfig)
	if err != nil {
		log.Error("gemini generation failed",
			slog.String("error", err.Error()),
			slog.String("model", s.modelName))
		return "", fmt.Errorf("%w: %v", summary.ErrGenerationFailed, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		log.Warn("gemini returned no candidates",
			slog.String("model", s.modelName))
		return "", summary.ErrInvalidResponse
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}

	synopsis := strings.TrimSpace(sb.String())
	if synopsis == "" {
		log.Warn("gemini returned empty synopsis",
			slog.String("model", s.modelName))
		return "", summary.ErrInvalidResponse
	}

	log.Debug("synopsis generated",
		slog.String("model", s.modelName),
		slog.Int("length", len(synopsis)))
	return synopsis, nil
}
