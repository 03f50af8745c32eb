package detect

import (
	"regexp"
	"sort"
	"unicode"
	"unicode/utf8"
)

// acronymRun matches candidate runs; word isolation is checked separately
// because Go's \b only understands ASCII word characters.
var acronymRun = regexp.MustCompile(`[A-Z]{2,}`)

// DetectAcronyms returns the distinct, lexicographically sorted runs of two or
// more ASCII uppercase letters that stand alone as words. "USA" matches while
// "USA1", "mUSAe" and "ÉONU" do not. Accented capitals are not part of the
// class.
func DetectAcronyms(text string) []string {
	seen := make(map[string]struct{})
	for _, loc := range acronymRun.FindAllStringIndex(text, -1) {
		if !isolated(text, loc[0], loc[1]) {
			continue
		}
		seen[text[loc[0]:loc[1]]] = struct{}{}
	}

	acronyms := make([]string, 0, len(seen))
	for term := range seen {
		acronyms = append(acronyms, term)
	}
	sort.Strings(acronyms)
	return acronyms
}

// isolated reports whether text[start:end] has no word character on either side.
func isolated(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}
