package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"google.golang.org/genai"

	"github.com/mgpai22/leviosa/internal/subtitle"
)

// implements Transcriber interface using Google Gemini
type GeminiTranscriber struct {
	client  *genai.Client
	model   string
	options Options
}

// transcript object requested from Gemini
type geminiTranscript struct {
	Text     string                `json:"text"`
	Segments []subtitle.RawSegment `json:"segments"`
}

func NewGeminiTranscriber(ctx context.Context, apiKey string, opts Options) (*GeminiTranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &GeminiTranscriber{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

// transcribes single audio file
func (t *GeminiTranscriber) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", audioPath)
	}

	lang := LanguageFrom(ctx, t.options.Language)

	uploadedFile, err := t.client.Files.UploadFromPath(ctx, audioPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upload audio file: %w", err)
	}

	defer func() {
		_, _ = t.client.Files.Delete(ctx, uploadedFile.Name, nil)
	}()

	parts := []*genai.Part{
		genai.NewPartFromText(t.buildTranscriptionPrompt(lang)),
		genai.NewPartFromURI(uploadedFile.URI, uploadedFile.MIMEType),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	resp, err := t.client.Models.GenerateContent(ctx, t.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	result, err := parseTranscriptionResponse(responseText(resp))
	if err != nil {
		return nil, fmt.Errorf("failed to parse transcription: %w", err)
	}
	result.Language = lang

	return result, nil
}

// creates the prompt for transcription
func (t *GeminiTranscriber) buildTranscriptionPrompt(lang string) string {
	var sb strings.Builder

	sb.WriteString("Generate a verbatim transcript of this audio. ")
	sb.WriteString("Return a JSON object with a 'text' field holding the full transcript and a 'segments' array. ")
	sb.WriteString("Each segment has 'start' and 'end' timestamps in seconds (as numbers) and the exact 'text' spoken. ")

	if lang != "" {
		sb.WriteString(fmt.Sprintf("The audio is in language code %q; transcribe it in that language. ", lang))
	}

	if t.options.Prompt != "" {
		sb.WriteString(t.options.Prompt)
		sb.WriteString(" ")
	}

	sb.WriteString("Return ONLY the JSON object, no other text or markdown formatting.")

	return sb.String()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

// parseTranscriptionResponse accepts either the requested object or a bare
// segment array. A bare array has no separate transcript, so the text is
// rebuilt from the segments.
func parseTranscriptionResponse(responseText string) (*Result, error) {
	cleaned := cleanJSONResponse(responseText)
	if cleaned == "" {
		return nil, fmt.Errorf("no text in Gemini response")
	}

	if strings.HasPrefix(cleaned, "[") {
		var segments []subtitle.RawSegment
		if err := json.Unmarshal([]byte(cleaned), &segments); err != nil {
			return nil, fmt.Errorf("failed to parse JSON response: %w (response: %s)", err, truncateString(cleaned, 200))
		}
		texts := make([]string, 0, len(segments))
		for _, seg := range segments {
			if text := strings.TrimSpace(seg.Text); text != "" {
				texts = append(texts, text)
			}
		}
		return &Result{Text: strings.Join(texts, " "), Segments: segments}, nil
	}

	var transcript geminiTranscript
	if err := json.Unmarshal([]byte(cleaned), &transcript); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w (response: %s)", err, truncateString(cleaned, 200))
	}

	return &Result{
		Text:     strings.TrimSpace(transcript.Text),
		Segments: transcript.Segments,
	}, nil
}

var jsonFenceRegex = regexp.MustCompile("```(?:json)?\\s*")

// removes markdown formatting and any prose around the JSON payload
func cleanJSONResponse(s string) string {
	s = jsonFenceRegex.ReplaceAllString(s, "")
	s = strings.TrimSpace(strings.ReplaceAll(s, "```", ""))

	start := strings.IndexAny(s, "[{")
	if start < 0 {
		return s
	}
	closing := "}"
	if s[start] == '[' {
		closing = "]"
	}
	end := strings.LastIndex(s, closing)
	if end < start {
		return s[start:]
	}
	return s[start : end+1]
}

// truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
