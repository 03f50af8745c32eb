package corpus

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Substituter replaces whole-word occurrences of dictionary terms. Longer
// terms win over their prefixes ("Rio de Janeiro" before "Rio").
type Substituter struct {
	re       *regexp.Regexp
	anchored []*regexp.Regexp // one per term, longest first
	replace  map[string]string
	foldCase bool
}

// NewSubstituter compiles terms (term -> replacement) into one alternation.
// With foldCase, "são paulo" matches the term "São Paulo". A nil Substituter
// is returned for an empty table and is safe to use.
func NewSubstituter(terms map[string]string, foldCase bool) *Substituter {
	if len(terms) == 0 {
		return nil
	}

	keys := make([]string, 0, len(terms))
	replace := make(map[string]string, len(terms))
	for term, repl := range terms {
		keys = append(keys, term)
		replace[lookupKey(term, foldCase)] = repl
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	parts := make([]string, len(keys))
	for i, k := range keys {
		words := strings.Fields(k)
		for j, w := range words {
			words[j] = regexp.QuoteMeta(w)
		}
		// respondents type double spaces and line breaks inside names
		parts[i] = strings.Join(words, `\s+`)
	}

	flags := ""
	if foldCase {
		flags = "(?i)"
	}
	anchored := make([]*regexp.Regexp, len(parts))
	for i, part := range parts {
		anchored[i] = regexp.MustCompile(flags + "^(?:" + part + ")")
	}

	return &Substituter{
		re:       regexp.MustCompile(flags + "(?:" + strings.Join(parts, "|") + ")"),
		anchored: anchored,
		replace:  replace,
		foldCase: foldCase,
	}
}

func lookupKey(s string, foldCase bool) string {
	s = strings.Join(strings.Fields(s), " ")
	if foldCase {
		return strings.ToLower(s)
	}
	return s
}

// Replace returns text with every isolated term replaced and the number of
// replacements made.
func (s *Substituter) Replace(text string) (string, int) {
	if s == nil || text == "" {
		return text, 0
	}

	var b strings.Builder
	count, last, pos := 0, 0, 0
	for pos < len(text) {
		loc := s.re.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if start == end {
			break
		}

		repl, ok := s.replace[lookupKey(text[start:end], s.foldCase)]
		if !ok || !wordIsolated(text, start, end) {
			// the alternation stops at the first term that matches here,
			// a shorter one may still be a whole word
			end, repl, ok = s.matchAt(text, start)
		}
		if !ok {
			_, size := utf8.DecodeRuneInString(text[start:])
			pos = start + size
			continue
		}

		b.WriteString(text[last:start])
		b.WriteString(repl)
		count++
		last, pos = end, end
	}

	if count == 0 {
		return text, 0
	}
	b.WriteString(text[last:])
	return b.String(), count
}

// matchAt returns the longest term that matches at start as a whole word.
func (s *Substituter) matchAt(text string, start int) (int, string, bool) {
	for _, re := range s.anchored {
		loc := re.FindStringIndex(text[start:])
		if loc == nil || loc[1] == 0 {
			continue
		}
		end := start + loc[1]
		if !wordIsolated(text, start, end) {
			continue
		}
		if repl, ok := s.replace[lookupKey(text[start:end], s.foldCase)]; ok {
			return end, repl, true
		}
	}
	return 0, "", false
}

func wordIsolated(text string, start, end int) bool {
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
