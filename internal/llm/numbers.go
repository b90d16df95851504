package llm

import (
	"regexp"
	"strings"
)

var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// numericTokens returns the distinct numeral strings in s, in first-seen
// order. Digits are the one part of the content a translation must never
// touch.
func numericTokens(s string) []string {
	seen := make(map[string]bool)
	var tokens []string
	for _, tok := range numberPattern.FindAllString(s, -1) {
		if !seen[tok] {
			seen[tok] = true
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// missingNumbers lists source numerals that do not appear verbatim in the
// translated text.
func missingNumbers(source, translated string) []string {
	var missing []string
	for _, tok := range numericTokens(source) {
		if !strings.Contains(translated, tok) {
			missing = append(missing, tok)
		}
	}
	return missing
}
