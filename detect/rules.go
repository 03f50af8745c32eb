package detect

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ruleToken matches words (letters, marks, digits, inner apostrophes and
// hyphens) or a single punctuation mark that closes a candidate sequence.
var ruleToken = regexp.MustCompile(`[\p{L}\p{M}\p{N}_'’-]+|[.!?;:,()\[\]"“”«»\n]`)

// connectors may sit between capitalized words inside a Portuguese name.
var connectors = map[string]bool{
	"de": true, "da": true, "das": true, "do": true, "dos": true,
	"e": true, "del": true, "di": true, "du": true, "d'": true,
}

// leadingFunctionWords are capitalized only because they open a sentence.
var leadingFunctionWords = toSet(
	"a", "o", "as", "os", "um", "uma", "uns", "umas", "e", "é", "eu", "ele", "ela",
	"eles", "elas", "nós", "você", "vocês", "isso", "isto", "esse", "essa", "este",
	"esta", "aquele", "aquela", "não", "sim", "mas", "porém", "quando", "se", "que",
	"como", "onde", "porque", "para", "pra", "com", "sem", "em", "no", "na", "nos",
	"nas", "do", "da", "dos", "das", "de", "ao", "à", "aos", "às", "pelo", "pela",
	"ontem", "hoje", "amanhã", "também", "já", "muito", "minha", "meu", "nosso",
	"nossa", "então", "depois", "antes", "acho", "sobre", "por", "tem", "foi",
	"era", "sou", "está", "estou", "lá", "aqui", "agora", "sempre", "nunca",
)

// RuleRecognizer is a dictionary-free fallback that treats runs of
// capitalized words, optionally linked by connectors such as "de" or "das",
// as entities. All-caps tokens end a run because acronyms are reported by
// DetectAcronyms.
type RuleRecognizer struct{}

func NewRuleRecognizer() RuleRecognizer {
	return RuleRecognizer{}
}

type ruleWord struct {
	start, end int
	text       string
}

func (RuleRecognizer) Recognize(ctx context.Context, text string) ([]Span, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		spans   []Span
		current []ruleWord
		pending []ruleWord
	)

	flush := func() {
		pending = nil
		for len(current) > 0 && leadingFunctionWords[strings.ToLower(current[0].text)] {
			current = current[1:]
		}
		if len(current) > 0 {
			first, last := current[0], current[len(current)-1]
			spans = append(spans, Span{Text: text[first.start:last.end], Label: "MISC"})
		}
		current = nil
	}

	for _, loc := range ruleToken.FindAllStringIndex(text, -1) {
		w := ruleWord{start: loc[0], end: loc[1], text: text[loc[0]:loc[1]]}
		switch {
		case !startsWithLetter(w.text):
			flush()
		case isAllCaps(w.text):
			flush()
		case startsUpper(w.text):
			current = append(current, pending...)
			current = append(current, w)
			pending = nil
		case len(current) > 0 && connectors[strings.ToLower(w.text)]:
			pending = append(pending, w)
		default:
			flush()
		}
	}
	flush()

	return spans, nil
}

func startsWithLetter(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLetter(r)
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

func isAllCaps(s string) bool {
	letters := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters >= 2
}

func toSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
