package openai

import "unicode"

// truncateText caps text at maxChars, cutting at the last whitespace before
// the limit so words are not split mid-way. Text at or under the cap is
// returned unchanged.
func truncateText(s string, maxChars int) string {
	if maxChars <= 0 || len(s) <= maxChars {
		return s
	}

	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}

	cut := maxChars
	for i := maxChars; i > 0; i-- {
		if unicode.IsSpace(runes[i]) {
			cut = i
			break
		}
	}

	return string(runes[:cut])
}

// isLetter returns true if the rune is an ASCII letter.
func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
