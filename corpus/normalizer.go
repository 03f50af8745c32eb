package corpus

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"corpus-prep/dictionary"
)

// Options control how a single text is normalized.
type Options struct {
	Joiner         string
	ConvertNumbers bool
	Contractions   ContractionMode
	Lowercase      bool
}

// Counts tallies dictionary replacements.
type Counts struct {
	Acronyms int `json:"acronyms"`
	Entities int `json:"entities"`
}

func (c *Counts) Add(other Counts) {
	c.Acronyms += other.Acronyms
	c.Entities += other.Entities
}

// Normalizer applies the corpus rewrite steps to one text at a time. It holds
// only compiled, read-only state and can be shared between goroutines.
type Normalizer struct {
	opts     Options
	entities *Substituter
	acronyms *Substituter
}

// NewNormalizer compiles the dictionaries. Either may be nil. Entities match
// case-insensitively; acronyms must match exactly.
func NewNormalizer(opts Options, acronyms, entities *dictionary.Dictionary) *Normalizer {
	if opts.Joiner == "" {
		opts.Joiner = "_"
	}
	if opts.Contractions == "" {
		opts.Contractions = ContractionJoin
	}
	return &Normalizer{
		opts:     opts,
		entities: NewSubstituter(entities.Resolved(opts.Joiner), true),
		acronyms: NewSubstituter(acronyms.Resolved(opts.Joiner), false),
	}
}

// Normalize runs, in order: NFC, entity substitution, acronym substitution,
// verb-pronoun contractions, number spelling, special character stripping
// and optional lowercasing. Entities go first so a name that contains an
// acronym ("ONU Mulheres") is replaced whole.
func (n *Normalizer) Normalize(text string) (string, Counts) {
	var counts Counts

	text = norm.NFC.String(text)
	text, counts.Entities = n.entities.Replace(text)
	text, counts.Acronyms = n.acronyms.Replace(text)
	text = NormalizeContractions(text, n.opts.Contractions, n.opts.Joiner)
	if n.opts.ConvertNumbers {
		text = SpellNumbers(text, n.opts.Joiner)
	}
	text = StripSpecialChars(text)
	if n.opts.Lowercase {
		text = strings.ToLower(text)
	}
	return text, counts
}
