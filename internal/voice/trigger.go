package voice

import "strings"

// Matches reports whether text contains phrase, ignoring case. An empty
// phrase never matches.
func Matches(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(phrase))
}
