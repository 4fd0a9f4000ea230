package model

import (
	"regexp"
	"strings"
)

var labelWordSeparators = regexp.MustCompile(`[_\-\s]+`)

// DefaultLabeler turns a field key such as "alternateNumber" or "address_1"
// into "Alternate Number" / "Address 1".
func DefaultLabeler(name string) string {
	if name == "" {
		return ""
	}

	var words []string
	for _, chunk := range labelWordSeparators.Split(name, -1) {
		for _, word := range strings.Fields(splitCamel(chunk)) {
			words = append(words, capitalize(word))
		}
	}
	return strings.Join(words, " ")
}

func splitCamel(input string) string {
	var out strings.Builder
	runes := []rune(input)
	for i, r := range runes {
		if i > 0 && wordBoundary(runes[i-1], r) {
			out.WriteRune(' ')
		}
		out.WriteRune(r)
	}
	return out.String()
}

func wordBoundary(prev, r rune) bool {
	switch {
	case isLower(prev) && isUpper(r):
		return true
	case isLetter(prev) && isDigit(r):
		return true
	case isDigit(prev) && isLetter(r):
		return true
	}
	return false
}

func isUpper(r rune) bool  { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool  { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
func isLetter(r rune) bool { return isUpper(r) || isLower(r) }

func capitalize(word string) string {
	if word == "" {
		return ""
	}
	lower := strings.ToLower(word)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
