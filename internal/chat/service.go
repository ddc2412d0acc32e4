// Package chat implements the message ingestion workflow and the reporting
// operations built on top of the message log.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"carelingo/internal/database"
	"carelingo/internal/gemini"
	"carelingo/internal/storage"
)

// Role identifies who produced an utterance. The two known values are
// doctor and patient, but the field is deliberately open: unknown values
// are accepted at the boundary and stored verbatim.
type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// NoConversationSummary is returned by Summarize when the store is empty.
// The AI provider is not contacted in that case.
const NoConversationSummary = "No conversation logs found."

// Service orchestrates ingestion: it calls the AI provider, converts
// provider failures into inline marker strings, and persists the result.
// Storage failures, by contrast, propagate as errors.
type Service struct {
	store database.Store
	ai    gemini.Client
	audio *storage.AudioStore
	log   *slog.Logger
}

// NewService wires the workflow's collaborators together.
func NewService(store database.Store, ai gemini.Client, audio *storage.AudioStore, log *slog.Logger) *Service {
	return &Service{
		store: store,
		ai:    ai,
		audio: audio,
		log:   log.With("component", "chat_service"),
	}
}

// TextInput is a text-variant submission.
type TextInput struct {
	Role       string
	Text       string
	TargetLang string
}

// AudioInput is an audio-variant submission.
type AudioInput struct {
	Role       string
	TargetLang string
	Filename   string
	Data       []byte
}

// SubmitText translates the text and persists the exchange. A provider
// failure yields a degraded-but-successful result with the error recorded
// inline in the translated text.
func (s *Service) SubmitText(ctx context.Context, in TextInput) (*database.Message, error) {
	msg := &database.Message{
		Role:           in.Role,
		OriginalText:   in.Text,
		TranslatedText: s.translate(ctx, in.Text, in.TargetLang),
		OriginalLang:   database.LangAuto,
		TargetLang:     in.TargetLang,
	}

	if err := s.store.SaveMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}
	return msg, nil
}

// SubmitAudio stores the raw audio, transcribes it, translates the
// transcript, and persists the exchange. The blob write must succeed before
// anything else happens; a failed transcription flows downstream as an
// inline marker in place of the transcript.
func (s *Service) SubmitAudio(ctx context.Context, in AudioInput) (*database.Message, error) {
	audioURL, err := s.audio.Save(in.Data, in.Filename)
	if err != nil {
		return nil, fmt.Errorf("store audio: %w", err)
	}

	original, err := s.ai.Transcribe(ctx, in.Data, mimeTypeForAudio(in.Filename))
	if err != nil {
		s.log.WarnContext(ctx, "transcription failed, recording error inline", "filename", in.Filename, "error", err)
		original = fmt.Sprintf("[Transcription Error: %s]", err)
	}

	msg := &database.Message{
		Role:             in.Role,
		OriginalText:     original,
		TranslatedText:   s.translate(ctx, original, in.TargetLang),
		OriginalLang:     database.LangAudioAuto,
		TargetLang:       in.TargetLang,
		OriginalAudioURL: audioURL,
	}

	if err := s.store.SaveMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}
	return msg, nil
}

// History returns all stored messages in ascending timestamp order. An empty
// store yields an empty slice, not an error.
func (s *Service) History(ctx context.Context) ([]database.Message, error) {
	messages, err := s.store.ListMessages(ctx)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if messages == nil {
		messages = []database.Message{}
	}
	return messages, nil
}

// Summarize builds a transcript of the whole conversation and asks the AI
// provider for a structured clinical summary. Provider failures come back as
// displayable text, never as an error.
func (s *Service) Summarize(ctx context.Context) (string, error) {
	messages, err := s.store.ListMessages(ctx)
	if err != nil {
		return "", fmt.Errorf("list messages: %w", err)
	}
	if len(messages) == 0 {
		return NoConversationSummary, nil
	}

	summary, err := s.ai.Summarize(ctx, buildTranscript(messages))
	if err != nil {
		s.log.WarnContext(ctx, "summary generation failed, returning error inline", "error", err)
		return fmt.Sprintf("Summary failed: %s", err), nil
	}
	return summary, nil
}

// buildTranscript formats one line per message, in order:
// "ROLE: <translated> (Original: <original>)".
func buildTranscript(messages []database.Message) string {
	var sb strings.Builder
	for _, m := range messages {
		fmt.Fprintf(&sb, "%s: %s (Original: %s)\n", strings.ToUpper(m.Role), m.TranslatedText, m.OriginalText)
	}
	return sb.String()
}

func (s *Service) translate(ctx context.Context, text, targetLang string) string {
	translated, err := s.ai.Translate(ctx, text, targetLang)
	if err != nil {
		s.log.WarnContext(ctx, "translation failed, recording error inline", "target_lang", targetLang, "error", err)
		return fmt.Sprintf("[Translation Error] %s", err)
	}
	return translated
}

// mimeTypeForAudio maps an uploaded filename to the MIME type passed to the
// transcriber. Unknown extensions fall back to a generic binary type and let
// the provider decide.
func mimeTypeForAudio(filename string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "mp3":
		return "audio/mpeg"
	case "wav":
		return "audio/wav"
	case "ogg", "oga":
		return "audio/ogg"
	case "m4a", "mp4":
		return "audio/mp4"
	case "aac":
		return "audio/aac"
	case "flac":
		return "audio/flac"
	case "webm":
		return "audio/webm"
	default:
		return "application/octet-stream"
	}
}
