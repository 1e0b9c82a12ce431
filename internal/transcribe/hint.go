package transcribe

import "context"

type languageKey struct{}

// WithLanguage attaches a per-request language hint that overrides the
// transcriber's configured Options.Language.
func WithLanguage(ctx context.Context, lang string) context.Context {
	if lang == "" {
		return ctx
	}
	return context.WithValue(ctx, languageKey{}, lang)
}

// LanguageFrom returns the hint stored in ctx, or fallback.
func LanguageFrom(ctx context.Context, fallback string) string {
	if lang, ok := ctx.Value(languageKey{}).(string); ok && lang != "" {
		return lang
	}
	return fallback
}
