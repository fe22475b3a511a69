package translation

import (
	"strings"

	"github.com/getevo/evo/v2/lib/settings"
)

// RomanizedHindi is an input-only detection outcome. It never becomes a
// translation target or a stored source language; NormalizeLanguage maps it
// to plain Hindi.
const RomanizedHindi = "hi-rom"

// defaultLanguages is the language set enabled out of the box. It can be
// overridden with TRANSLATOR.LANGUAGES (comma-separated ISO 639-1 codes).
var defaultLanguages = []string{"en", "es", "fr", "de", "it", "pt", "ru", "ja", "ko", "zh", "ar", "hi"}

// SupportedLanguages returns the configured target language set.
func SupportedLanguages() []string {
	configured := settings.Get("TRANSLATOR.LANGUAGES").String()
	if configured == "" {
		out := make([]string, len(defaultLanguages))
		copy(out, defaultLanguages)
		return out
	}
	var out []string
	for _, code := range strings.Split(configured, ",") {
		code = NormalizeLanguage(code)
		if code != "" {
			out = append(out, code)
		}
	}
	if len(out) == 0 {
		out = append(out, defaultLanguages...)
	}
	return out
}

// IsSupported reports whether code is a valid translation target.
func IsSupported(code string) bool {
	code = NormalizeLanguage(code)
	for _, l := range SupportedLanguages() {
		if l == code {
			return true
		}
	}
	return false
}

// NormalizeLanguage lowercases a language code, strips any region subtag
// (en-US -> en) and folds the romanized Hindi tag onto hi.
func NormalizeLanguage(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == RomanizedHindi {
		return "hi"
	}
	if idx := strings.IndexAny(code, "-_"); idx > 0 {
		code = code[:idx]
	}
	return code
}

// languageNames maps ISO 639-1 codes to English language names for
// translator prompts.
var languageNames = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"ru": "Russian",
	"ja": "Japanese",
	"ko": "Korean",
	"zh": "Chinese",
	"ar": "Arabic",
	"hi": "Hindi",
}

// LanguageName returns the English name for a language code, falling back to
// the code itself.
func LanguageName(code string) string {
	if name, ok := languageNames[NormalizeLanguage(code)]; ok {
		return name
	}
	return code
}
