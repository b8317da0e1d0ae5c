package utils

import (
	"strings"
	"unicode"
)

// SnakeCase converts a Go identifier to snake_case, keeping acronyms
// together: IABImpl becomes iab_impl, HTTPServer becomes http_server
func SnakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	b.Grow(len(name) + 4)

	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// LowerCamel lowers the leading word of an identifier: Name becomes name,
// URLPath becomes urlPath and ID becomes id
func LowerCamel(name string) string {
	runes := []rune(name)
	upper := 0
	for upper < len(runes) && unicode.IsUpper(runes[upper]) {
		upper++
	}

	switch {
	case upper == 0:
		return name
	case upper == 1 || upper == len(runes):
		// lower the single capital, or the whole acronym
	case unicode.IsLower(runes[upper]):
		// the last capital starts the next word
		upper--
	}

	for i := 0; i < upper; i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}
