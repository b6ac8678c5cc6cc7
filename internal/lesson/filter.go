package lesson

import (
	"strings"
	"unicode"
)

// FilterFunc returns true when a prompt should be kept.
type FilterFunc func(string) bool

// FilterForLang returns a language-specific prompt filter.
func FilterForLang(lang string) FilterFunc {
	switch strings.ToLower(strings.SplitN(lang, "-", 2)[0]) {
	case "en":
		return englishPrompt
	default:
		return func(p string) bool { return strings.TrimSpace(p) != "" }
	}
}

// Filter keeps the prompts accepted by keep.
func Filter(prompts []string, keep FilterFunc) []string {
	out := make([]string, 0, len(prompts))
	for _, p := range prompts {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// englishPrompt accepts prompts whose letters are all ASCII.
func englishPrompt(prompt string) bool {
	hasLetter := false
	for _, r := range prompt {
		if !unicode.IsLetter(r) {
			continue
		}
		if r > unicode.MaxASCII {
			return false
		}
		hasLetter = true
	}
	return hasLetter
}
