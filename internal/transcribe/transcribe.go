package transcribe

import (
	"context"
	"fmt"
	"time"

	"github.com/mgpai22/leviosa/internal/subtitle"
)

// Result is what a recognizer hands back: the flat transcript plus whatever
// timed segments it produced. Segments may be empty.
type Result struct {
	Text     string
	Segments []subtitle.RawSegment
	Language string
	Duration time.Duration
}

// interface for audio transcription
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*Result, error)
}

// transcription service provider
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// transcription options
type Options struct {
	Language string // ISO-639-1 hint for the spoken language
	Model    string
	Prompt   string
	BaseURL  string // OpenAI-compatible endpoint, e.g. a local whisper server
}

// creates transcriber based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Transcriber, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiTranscriber(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAITranscriber(apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}
