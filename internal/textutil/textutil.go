package textutil

import (
	"strings"
	"unicode/utf8"
)

var whitespaceReplacer = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")

// trailing filler words stripped from extracted locations and search terms
var fillerWords = []string{"right now", "now", "please", "today", "currently", "at the moment"}

// function words that must never be mistaken for a location or subject
var functionWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"it": {}, "this": {}, "that": {}, "of": {}, "in": {}, "on": {}, "at": {},
	"to": {}, "for": {}, "and": {}, "or": {}, "is a": {}, "is the": {},
}

// question-word prefixes stripped before encyclopedic lookup
var questionPrefixes = []string{
	"what", "who", "when", "where", "why", "how",
	"is", "are", "was", "were", "can", "could", "do", "does", "did",
}

// Normalize lowercases a string and collapses whitespace runs into single spaces
func Normalize(s string) string {
	s = strings.ToLower(whitespaceReplacer.Replace(s))
	return strings.Join(strings.Fields(s), " ")
}

// CacheKey builds a cache key of the form "{category}_{normalized-identifier}"
func CacheKey(category, identifier string) string {
	return category + "_" + strings.ReplaceAll(Normalize(identifier), " ", "_")
}

// StripFiller removes trailing filler words ("now", "please", ...) from a phrase
func StripFiller(s string) string {
	s = strings.TrimSpace(s)
	for changed := true; changed; {
		changed = false
		for _, filler := range fillerWords {
			trimmed := strings.TrimSuffix(s, filler)
			if trimmed != s {
				s = strings.TrimSpace(trimmed)
				changed = true
			}
		}
	}
	return strings.Trim(s, " ?.!,")
}

// IsFunctionWord reports whether a candidate phrase is a bare function word
// rather than a usable identifier (e.g. "is a" is not a location)
func IsFunctionWord(s string) bool {
	_, ok := functionWords[strings.TrimSpace(strings.ToLower(s))]
	return ok
}

// TrimQuestionPrefix strips leading question words from a query so the
// remainder can be used as a search term
func TrimQuestionPrefix(s string) string {
	words := strings.Fields(strings.TrimSpace(s))
	for len(words) > 0 {
		stripped := false
		for _, prefix := range questionPrefixes {
			if strings.EqualFold(words[0], prefix) {
				words = words[1:]
				stripped = true
				break
			}
		}
		if !stripped {
			break
		}
	}
	return strings.Trim(strings.Join(words, " "), " ?")
}

// Truncate safely truncates text to the specified maximum size
// and ensures the result is valid UTF-8
func Truncate(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	truncated := text[:maxSize]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}

	return truncated + "..."
}

// SanitizeUTF8 ensures the string contains only valid UTF-8 characters
func SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	result := make([]rune, 0, len(text))
	for i, r := range text {
		if r == utf8.RuneError {
			_, size := utf8.DecodeRuneInString(text[i:])
			if size == 1 {
				continue
			}
		}
		result = append(result, r)
	}

	return string(result)
}
