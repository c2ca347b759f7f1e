// Package email contains helpers for working with email addresses.
package email

import (
	"strings"
	"unicode"
)

// DeriveDisplayName builds a best-effort display name from the local part of
// an email address, for profiles registered without an explicit name.
// "jane.doe@example.com" becomes "Jane Doe"; when the local part has no
// separators the single word is used as-is.
func DeriveDisplayName(address string) string {
	localPart := address
	if at := strings.IndexByte(address, '@'); at >= 0 {
		localPart = address[:at]
	}

	words := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(words) == 0 {
		return "New User"
	}

	for i, word := range words {
		words[i] = capitalize(word)
	}
	return strings.Join(words, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
