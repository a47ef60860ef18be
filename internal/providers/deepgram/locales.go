package deepgram

import (
	"context"
	"os"
	"strings"

	"livescribe/internal/domain"
)

// Languages accepted by the live endpoint for the default model family.
var supportedLocales = []domain.Locale{
	{ID: "en-US", Name: "English (United States)"},
	{ID: "en-GB", Name: "English (United Kingdom)"},
	{ID: "en-AU", Name: "English (Australia)"},
	{ID: "en-IN", Name: "English (India)"},
	{ID: "de", Name: "German"},
	{ID: "es", Name: "Spanish"},
	{ID: "es-419", Name: "Spanish (Latin America)"},
	{ID: "fr", Name: "French"},
	{ID: "fr-CA", Name: "French (Canada)"},
	{ID: "hi", Name: "Hindi"},
	{ID: "it", Name: "Italian"},
	{ID: "ja", Name: "Japanese"},
	{ID: "ko", Name: "Korean"},
	{ID: "nl", Name: "Dutch"},
	{ID: "pl", Name: "Polish"},
	{ID: "pt", Name: "Portuguese"},
	{ID: "pt-BR", Name: "Portuguese (Brazil)"},
	{ID: "ru", Name: "Russian"},
	{ID: "sv", Name: "Swedish"},
	{ID: "tr", Name: "Turkish"},
	{ID: "uk", Name: "Ukrainian"},
	{ID: "zh-CN", Name: "Chinese (Simplified)"},
}

// Locales returns the recognition language catalog.
func (e *Engine) Locales(_ context.Context) ([]domain.Locale, error) {
	out := make([]domain.Locale, len(supportedLocales))
	copy(out, supportedLocales)
	return out, nil
}

// SystemLocale derives the user's preferred recognition language from the
// POSIX locale environment. An empty ID means no usable preference.
func (e *Engine) SystemLocale(_ context.Context) (domain.Locale, error) {
	return systemLocaleFromEnv(os.Getenv), nil
}

func systemLocaleFromEnv(getenv func(string) string) domain.Locale {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if tag := localeTag(getenv(key)); tag != "" {
			return domain.Locale{ID: tag}
		}
	}
	return domain.Locale{}
}

// localeTag converts "en_US.UTF-8" style values into "en-US".
func localeTag(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '.'); i >= 0 {
		raw = raw[:i]
	}
	if i := strings.IndexByte(raw, '@'); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.ReplaceAll(raw, "_", "-")
	if raw == "" || strings.EqualFold(raw, "C") || strings.EqualFold(raw, "POSIX") {
		return ""
	}
	return raw
}
