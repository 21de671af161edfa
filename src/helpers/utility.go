package helpers

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID returns a fresh random identifier for graph nodes and keys.
func GenerateUUID() string {
	return uuid.New().String()
}

// StripQuotes trims surrounding whitespace and one matching pair of single
// or double quotes.
func StripQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
