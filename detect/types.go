package detect

import (
	"context"
	"sort"
)

// Span is one entity-like stretch of text reported by a recognizer.
type Span struct {
	Text  string
	Label string
}

// EntityRecognizer finds named-entity spans in text. Implementations must be
// safe for repeated use once constructed.
type EntityRecognizer interface {
	Recognize(ctx context.Context, text string) ([]Span, error)
}

// RecognizerFunc adapts a plain function to EntityRecognizer.
type RecognizerFunc func(ctx context.Context, text string) ([]Span, error)

func (f RecognizerFunc) Recognize(ctx context.Context, text string) ([]Span, error) {
	return f(ctx, text)
}

// Set is an unordered collection of distinct strings.
type Set map[string]struct{}

func (s Set) Add(v string) {
	s[v] = struct{}{}
}

func (s Set) Contains(v string) bool {
	_, ok := s[v]
	return ok
}

// Merge adds every member of other to s.
func (s Set) Merge(other Set) {
	for v := range other {
		s[v] = struct{}{}
	}
}

// Sorted returns the members in lexicographic order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
