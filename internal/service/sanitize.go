package service

import (
	"regexp"
	"strings"
)

const MaxMessageRunes = 2000

var controlChars = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f-\x9f]`)

// SanitizeMessage strips control characters except tab, newline and carriage
// return, caps the length and trims surrounding whitespace.
func SanitizeMessage(message string) string {
	cleaned := controlChars.ReplaceAllString(message, "")
	if runes := []rune(cleaned); len(runes) > MaxMessageRunes {
		cleaned = string(runes[:MaxMessageRunes])
	}
	return strings.TrimSpace(cleaned)
}
