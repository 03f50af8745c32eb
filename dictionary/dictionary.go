// Package dictionary holds the analyst-maintained lookup tables that map
// acronyms and multi-word entities to their corpus form.
package dictionary

import (
	"fmt"
	"sort"
	"strings"

	apperrors "corpus-prep/errors"
)

// Kind tells acronym tables from entity tables. They are matched differently
// during substitution.
type Kind string

const (
	KindAcronym Kind = "acronym"
	KindEntity  Kind = "entity"
)

// ParseKind accepts the singular/plural English names and the Portuguese ones
// used in spreadsheet headers and URLs.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "acronym", "acronyms", "sigla", "siglas":
		return KindAcronym, nil
	case "entity", "entities", "entidade", "entidades":
		return KindEntity, nil
	default:
		return "", apperrors.WrapErrorf(apperrors.ErrInvalidInput, "unknown dictionary kind %q", s)
	}
}

// Entry maps a surface term to its replacement. An empty Replacement means
// "join the term's words".
type Entry struct {
	Term        string `json:"term" yaml:"term"`
	Replacement string `json:"replacement" yaml:"replacement"`
}

type Dictionary struct {
	Kind    Kind
	entries map[string]string
}

func New(kind Kind) *Dictionary {
	return &Dictionary{Kind: kind, entries: make(map[string]string)}
}

// FromEntries builds a dictionary, later entries overriding earlier ones.
func FromEntries(kind Kind, entries []Entry) *Dictionary {
	d := New(kind)
	for _, e := range entries {
		d.Set(e.Term, e.Replacement)
	}
	return d
}

// Set adds or replaces an entry. Blank terms are ignored.
func (d *Dictionary) Set(term, replacement string) {
	term = strings.Join(strings.Fields(term), " ")
	if term == "" {
		return
	}
	d.entries[term] = strings.TrimSpace(replacement)
}

func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// Merge copies other's entries into d, overriding duplicates.
func (d *Dictionary) Merge(other *Dictionary) {
	if other == nil {
		return
	}
	for term, repl := range other.entries {
		d.entries[term] = repl
	}
}

// Lookup returns the stored replacement for term as written.
func (d *Dictionary) Lookup(term string) (string, bool) {
	repl, ok := d.entries[term]
	return repl, ok
}

// Entries returns all entries sorted by term.
func (d *Dictionary) Entries() []Entry {
	if d == nil {
		return nil
	}
	out := make([]Entry, 0, len(d.entries))
	for term, repl := range d.entries {
		out = append(out, Entry{Term: term, Replacement: repl})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Term < out[j].Term })
	return out
}

// Resolved returns the effective replacement for every entry, with blank
// replacements filled in by joining the term's words with joiner. Internal
// whitespace in explicit replacements is joined the same way so a replacement
// never splits into several corpus tokens.
func (d *Dictionary) Resolved(joiner string) map[string]string {
	out := make(map[string]string, d.Len())
	if d == nil {
		return out
	}
	for term, repl := range d.entries {
		if repl == "" {
			repl = term
		}
		out[term] = JoinWords(repl, joiner)
	}
	return out
}

// JoinWords collapses whitespace runs in s into joiner.
func JoinWords(s, joiner string) string {
	return strings.Join(strings.Fields(s), joiner)
}

func (d *Dictionary) String() string {
	return fmt.Sprintf("%s dictionary (%d entries)", d.Kind, d.Len())
}
