package language

import (
	"strings"
	"sync"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var englishNames = sync.OnceValue(func() map[string]string {
	namer := display.English.Languages()
	names := make(map[string]string)
	for _, base := range display.Supported.BaseLanguages() {
		name := strings.ToLower(namer.Name(base))
		if name == "" {
			continue
		}
		if _, taken := names[name]; !taken {
			names[name] = base.String()
		}
	}
	return names
})

// ToISO2 maps a code, tag or English language name to its 2-letter code.
// It returns "" for anything it cannot place.
func ToISO2(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}

	if code, ok := englishNames()[value]; ok {
		return code
	}

	tag, err := language.Parse(value)
	if err != nil {
		return ""
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return ""
	}
	return base.String()
}

// Valid reports whether value names a known language.
func Valid(value string) bool {
	return ToISO2(value) != ""
}

// DisplayName returns the English name for a code, or the input unchanged.
func DisplayName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}

// Detect guesses the language of text. Short or ambiguous input yields "".
func Detect(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6391()
}
