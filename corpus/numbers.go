package corpus

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	units = []string{
		"zero", "um", "dois", "três", "quatro", "cinco", "seis", "sete", "oito", "nove",
		"dez", "onze", "doze", "treze", "quatorze", "quinze", "dezesseis", "dezessete",
		"dezoito", "dezenove",
	}
	tens = []string{
		"", "", "vinte", "trinta", "quarenta", "cinquenta", "sessenta", "setenta",
		"oitenta", "noventa",
	}
	hundreds = []string{
		"", "cento", "duzentos", "trezentos", "quatrocentos", "quinhentos",
		"seiscentos", "setecentos", "oitocentos", "novecentos",
	}
	// scales[i] names 1000^i as {singular, plural}.
	scales = [][2]string{
		{"", ""},
		{"mil", "mil"},
		{"milhão", "milhões"},
		{"bilhão", "bilhões"},
		{"trilhão", "trilhões"},
	}

	ordinalUnits = []string{
		"", "primeiro", "segundo", "terceiro", "quarto", "quinto", "sexto", "sétimo",
		"oitavo", "nono",
	}
	ordinalTens = []string{
		"", "décimo", "vigésimo", "trigésimo", "quadragésimo", "quinquagésimo",
		"sexagésimo", "septuagésimo", "octogésimo", "nonagésimo",
	}
	ordinalHundreds = []string{
		"", "centésimo", "ducentésimo", "trecentésimo", "quadringentésimo",
		"quingentésimo", "sexcentésimo", "septingentésimo", "octingentésimo",
		"noningentésimo",
	}
)

// maxSpelled is the largest integer SpellNumber handles.
const maxSpelled = 999_999_999_999_999

// SpellNumber writes n in Brazilian Portuguese words ("cento e vinte e três").
// ok is false for negative numbers and numbers beyond the trilhões.
func SpellNumber(n int64) (words []string, ok bool) {
	if n < 0 || n > maxSpelled {
		return nil, false
	}
	if n == 0 {
		return []string{"zero"}, true
	}

	// split into groups of three digits, least significant first
	var groups []int
	for v := n; v > 0; v /= 1000 {
		groups = append(groups, int(v%1000))
	}

	for i := len(groups) - 1; i >= 0; i-- {
		g := groups[i]
		if g == 0 {
			continue
		}

		if len(words) > 0 && joinsWithE(g, groups[:i]) {
			words = append(words, "e")
		}

		if i == 1 && g == 1 {
			// "mil", never "um mil"
			words = append(words, "mil")
			continue
		}
		words = append(words, spellGroup(g)...)

		if i > 0 {
			if g == 1 {
				words = append(words, scales[i][0])
			} else {
				words = append(words, scales[i][1])
			}
		}
	}
	return words, true
}

// joinsWithE decides whether "e" links the previous group to g. Portuguese
// writes "mil e cem" and "dois mil e um" but "mil duzentos e trinta".
func joinsWithE(g int, lower []int) bool {
	for _, l := range lower {
		if l != 0 {
			return false
		}
	}
	return g < 100 || g%100 == 0
}

// spellGroup spells 1..999.
func spellGroup(n int) []string {
	if n == 100 {
		return []string{"cem"}
	}
	var words []string
	if h := n / 100; h > 0 {
		words = append(words, hundreds[h])
	}
	rest := n % 100
	if rest == 0 {
		return words
	}
	if len(words) > 0 {
		words = append(words, "e")
	}
	if rest < 20 {
		return append(words, units[rest])
	}
	words = append(words, tens[rest/10])
	if u := rest % 10; u > 0 {
		words = append(words, "e", units[u])
	}
	return words
}

// SpellOrdinal writes 1..999 as an ordinal; feminine swaps the final "o" of
// each word for "a" ("vigésima primeira").
func SpellOrdinal(n int64, feminine bool) ([]string, bool) {
	if n < 1 || n > 999 {
		return nil, false
	}
	var words []string
	if h := n / 100; h > 0 {
		words = append(words, ordinalHundreds[h])
	}
	if t := (n % 100) / 10; t > 0 {
		words = append(words, ordinalTens[t])
	}
	if u := n % 10; u > 0 {
		words = append(words, ordinalUnits[u])
	}
	if feminine {
		for i, w := range words {
			words[i] = strings.TrimSuffix(w, "o") + "a"
		}
	}
	return words, true
}

// numberToken is one numeric expression found in text.
type numberToken struct {
	start, end int
	integer    string // digits only, thousands separators removed
	fraction   string // digits after the decimal comma
	percent    bool
	ordinal    rune // 'º', 'ª' or 0
}

// SpellNumbers replaces numeric expressions in text with their spelled-out
// form, words joined by joiner. Integers may use '.' thousands groups,
// decimals use ',', and a trailing '%', 'º' or 'ª' is folded in. Numbers
// glued to letters ("COVID19", "3a") are left untouched, as are numbers too
// large to spell.
func SpellNumbers(text, joiner string) string {
	var b strings.Builder
	last := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !isASCIIDigit(r) || (i > 0 && precededByWord(text[:i])) {
			i += size
			continue
		}

		tok := scanNumber(text, i)
		if tok.end < len(text) {
			next, _ := utf8.DecodeRuneInString(text[tok.end:])
			if isWordRune(next) {
				// skip the whole alphanumeric run
				i = tok.end
				for i < len(text) {
					r, size := utf8.DecodeRuneInString(text[i:])
					if !isWordRune(r) {
						break
					}
					i += size
				}
				continue
			}
		}

		spelled, ok := tok.spell()
		if !ok {
			i = tok.end
			continue
		}

		b.WriteString(text[last:tok.start])
		b.WriteString(strings.Join(spelled, joiner))
		last = tok.end
		i = tok.end
	}
	if last == 0 {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}

func scanNumber(text string, start int) numberToken {
	tok := numberToken{start: start}
	i := start
	digitsEnd := func(j int) int {
		for j < len(text) && isASCIIDigit(rune(text[j])) {
			j++
		}
		return j
	}

	end := digitsEnd(i)
	intPart := text[i:end]
	i = end

	// thousands groups: exactly three digits after each '.'
	if len(intPart) <= 3 {
		for i+4 <= len(text) && text[i] == '.' {
			groupEnd := digitsEnd(i + 1)
			if groupEnd-(i+1) != 3 {
				break
			}
			intPart += text[i+1 : groupEnd]
			i = groupEnd
		}
	}
	tok.integer = intPart

	if i+1 < len(text) && text[i] == ',' && isASCIIDigit(rune(text[i+1])) {
		fracEnd := digitsEnd(i + 1)
		tok.fraction = text[i+1 : fracEnd]
		i = fracEnd
	}

	if i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case r == '%':
			tok.percent = true
			i += size
		case (r == 'º' || r == 'ª' || r == '°') && tok.fraction == "":
			tok.ordinal = r
			i += size
		}
	}

	tok.end = i
	return tok
}

func (tok numberToken) spell() ([]string, bool) {
	n, err := strconv.ParseInt(tok.integer, 10, 64)
	if err != nil {
		return nil, false
	}

	if tok.ordinal != 0 {
		return SpellOrdinal(n, tok.ordinal == 'ª')
	}

	words, ok := SpellNumber(n)
	if !ok {
		return nil, false
	}

	if tok.fraction != "" {
		words = append(words, "vírgula")
		frac := tok.fraction
		// leading zeros are read one by one: 0,05 -> zero vírgula zero cinco
		for len(frac) > 1 && frac[0] == '0' {
			words = append(words, "zero")
			frac = frac[1:]
		}
		fn, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return nil, false
		}
		fw, ok := SpellNumber(fn)
		if !ok {
			return nil, false
		}
		words = append(words, fw...)
	}

	if tok.percent {
		words = append(words, "por", "cento")
	}
	return words, true
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func precededByWord(prefix string) bool {
	r, _ := utf8.DecodeLastRuneInString(prefix)
	return isWordRune(r)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}
