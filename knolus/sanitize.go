package knolus

import (
	"strings"
	"unicode"
)

// Sanitize folds an identifier to its lookup key: lower case with every
// underscore, hyphen and space removed. Every name the engine stores or
// looks up passes through here.
func Sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', ' ':
			return -1
		}
		return unicode.ToLower(r)
	}, name)
}
