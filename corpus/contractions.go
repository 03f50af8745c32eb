package corpus

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ContractionMode says what to do with hyphenated verb-pronoun forms.
type ContractionMode string

const (
	ContractionJoin  ContractionMode = "join"  // fazê-lo -> fazê_lo
	ContractionSplit ContractionMode = "split" // fazê-lo -> fazê lo
	ContractionKeep  ContractionMode = "keep"
)

var (
	// clitic pronouns, including contracted forms such as lho = lhe + o
	clitics = []string{
		"me", "te", "se", "nos", "vos", "lhe", "lhes",
		"o", "a", "os", "as", "lo", "la", "los", "las", "no", "na", "nas",
		"mo", "ma", "mos", "mas", "to", "ta", "tos", "tas",
		"lho", "lha", "lhos", "lhas",
	}
	// future and conditional endings left after a mesoclitic pronoun
	mesoclisisEndings = []string{
		"ei", "ás", "á", "emos", "eis", "ão",
		"ia", "ias", "íamos", "íeis", "iam",
	}

	contractionPattern = buildContractionPattern()
)

func buildContractionPattern() *regexp.Regexp {
	second := append(append([]string{}, clitics...), mesoclisisEndings...)
	return regexp.MustCompile(`(?i)\p{L}+-(?:` + alternation(clitics) + `)(?:-(?:` + alternation(second) + `))?`)
}

// alternation quotes words and orders them longest first so "lhes" wins over "lhe".
func alternation(words []string) string {
	sorted := append([]string{}, words...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return utf8.RuneCountInString(sorted[i]) > utf8.RuneCountInString(sorted[j])
	})
	quoted := make([]string, len(sorted))
	for i, w := range sorted {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(quoted, "|")
}

// NormalizeContractions rewrites enclitic ("disse-me", "dá-se-lhe") and
// mesoclitic ("far-se-á") forms according to mode. Hyphenated compounds whose
// tail is not a pronoun ("guarda-chuva", "bem-me-quer") are left alone.
func NormalizeContractions(text string, mode ContractionMode, joiner string) string {
	var sep string
	switch mode {
	case ContractionJoin:
		sep = joiner
	case ContractionSplit:
		sep = " "
	default:
		return text
	}

	var b strings.Builder
	last := 0
	for _, loc := range contractionPattern.FindAllStringIndex(text, -1) {
		if !standsAlone(text, loc[0], loc[1]) {
			continue
		}
		b.WriteString(text[last:loc[0]])
		b.WriteString(strings.ReplaceAll(text[loc[0]:loc[1]], "-", sep))
		last = loc[1]
	}
	if last == 0 {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}

// standsAlone rejects matches glued to further letters, digits or hyphens.
func standsAlone(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
