package corpus

import (
	"strings"
	"unicode"
)

// keptPunctuation survives cleaning because the analysis tool segments text on it.
const keptPunctuation = ".,;:!?"

// StripSpecialChars turns every rune that is not a letter, digit, combining
// mark, underscore or sentence punctuation into a space, then collapses
// whitespace. Quotes, asterisks, hyphens, currency and percent signs all go:
// the downstream tool reserves '*' for metadata and splits on the rest.
func StripSpecialChars(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '…':
			b.WriteRune('.')
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r):
			b.WriteRune(r)
		case strings.ContainsRune(keptPunctuation, r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return CollapseSpaces(b.String())
}

// CollapseSpaces joins fields with single spaces.
func CollapseSpaces(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
