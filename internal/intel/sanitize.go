package intel

import "strings"

// Sanitize strips angle-bracket characters from user input before it
// is stored locally or submitted. This reduces injection risk in
// rendered content; it is defense in depth, not a substitute for the
// backend's own sanitization.
func Sanitize(input string) string {
	if input == "" {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if r == '<' || r == '>' {
			return -1
		}
		return r
	}, input)
}
