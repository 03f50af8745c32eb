package corpus

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// TextMarker opens every text in the corpus.
const TextMarker = "****"

// Tag is one starred variable of a metadata line.
type Tag struct {
	Variable string
	Value    string
}

func (t Tag) String() string {
	return "*" + t.Variable + "_" + t.Value
}

// MetadataLine renders "**** *var_value *var_value".
func MetadataLine(tags []Tag) string {
	var b strings.Builder
	b.WriteString(TextMarker)
	for _, t := range tags {
		b.WriteByte(' ')
		b.WriteString(t.String())
	}
	return b.String()
}

// VariableName folds a column header into lowercase ASCII letters and digits.
// Underscores are dropped because the first one separates variable from value.
func VariableName(header string) string {
	var b strings.Builder
	for _, r := range foldAccents(strings.ToLower(header)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "var"
	}
	return b.String()
}

// ModalityValue folds a cell into a tag value: accents stripped, lowercased,
// runs of anything else collapsed to '_'. Blank cells become missing.
func ModalityValue(cell, missing string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range foldAccents(strings.ToLower(strings.TrimSpace(cell))) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	if b.Len() == 0 {
		return missing
	}
	return b.String()
}

// RowID zero-pads n to the width needed for total rows ("007" of 120).
func RowID(n, total int) string {
	width := len(fmt.Sprint(total))
	return fmt.Sprintf("%0*d", width, n)
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}
