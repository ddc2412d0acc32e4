// Package gemini implements the integration with Google's Gemini API. It
// provides the translation, transcription, and summarization operations the
// ingestion workflow delegates to.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"carelingo/internal/config"
)

// Client defines the AI operations used by the application. Implementations
// return ordinary errors; converting failures into inline marker strings is
// the caller's concern.
type Client interface {
	// Translate renders text into targetLang. The source language is
	// auto-detected by the model.
	Translate(ctx context.Context, text, targetLang string) (string, error)

	// Transcribe performs speech-to-text on the audio payload. The spoken
	// language is auto-detected.
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)

	// Summarize produces a structured clinical summary of a full
	// consultation transcript.
	Summarize(ctx context.Context, transcript string) (string, error)
}

type sdkClient struct {
	genaiClient *genai.Client
	log         *slog.Logger
	modelName   string
	temperature float32
	timeout     time.Duration
}

// New creates a Gemini-backed Client. An empty API key is accepted: the
// resulting client fails on first use, which the workflow surfaces inline.
func New(ctx context.Context, cfg config.AIConfig, log *slog.Logger) (Client, error) {
	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	logger := log.With("component", "gemini_client")
	logger.Info("gemini client initialized", "model", cfg.Model)
	return &sdkClient{
		genaiClient: gi,
		log:         logger,
		modelName:   cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
	}, nil
}

func (c *sdkClient) Translate(ctx context.Context, text, targetLang string) (string, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	cfg := &genai.GenerateContentConfig{
		Temperature: &c.temperature,
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: fmt.Sprintf(translateSystemInstruction, targetLang)}},
		},
	}

	resp, err := c.genaiClient.Models.GenerateContent(ctx, c.modelName, contents, cfg)
	if err != nil {
		c.log.ErrorContext(ctx, "gemini translation failed", "target_lang", targetLang, "error", err)
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}

	out, err := c.extractText(ctx, resp, "translate")
	if err != nil {
		return "", err
	}
	return sanitizeTranslation(out), nil
}

func (c *sdkClient) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 || mimeType == "" {
		return "", fmt.Errorf("audio data and MIME type are required for transcription")
	}

	ctx, cancel := c.callContext(ctx)
	defer cancel()

	parts := []*genai.Part{
		{Text: transcribeInstruction},
		genai.NewPartFromBytes(audio, mimeType),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := c.genaiClient.Models.GenerateContent(ctx, c.modelName, contents, nil)
	if err != nil {
		c.log.ErrorContext(ctx, "gemini transcription failed", "audio_size", len(audio), "mime_type", mimeType, "error", err)
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}

	out, err := c.extractText(ctx, resp, "transcribe")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (c *sdkClient) Summarize(ctx context.Context, transcript string) (string, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	prompt := fmt.Sprintf(summaryPromptFormat, transcript)
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := c.genaiClient.Models.GenerateContent(ctx, c.modelName, contents, nil)
	if err != nil {
		c.log.ErrorContext(ctx, "gemini summary generation failed", "error", err)
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}

	return c.extractText(ctx, resp, "summarize")
}

func (c *sdkClient) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}

func (c *sdkClient) extractText(ctx context.Context, resp *genai.GenerateContentResponse, op string) (string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		reasonMsg := fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reasonMsg = resp.PromptFeedback.BlockReasonMessage
		}
		c.log.ErrorContext(ctx, "gemini request blocked", "operation", op, "reason", reasonMsg)
		return "", fmt.Errorf("%s blocked by safety filter: %s", op, reasonMsg)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		finishReason := "unknown"
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != genai.FinishReasonUnspecified {
			finishReason = fmt.Sprintf("%v", resp.Candidates[0].FinishReason)
		}
		c.log.WarnContext(ctx, "gemini response missing candidates or content", "operation", op, "finish_reason", finishReason)
		return "", fmt.Errorf("%s returned no content, finish reason: %s", op, finishReason)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%s returned empty text", op)
	}
	return text, nil
}

// sanitizeTranslation strips the surrounding whitespace and quote characters
// models occasionally wrap translations in.
func sanitizeTranslation(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"`)
}
