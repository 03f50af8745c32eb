package dictionary

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	apperrors "corpus-prep/errors"
)

// headerWords mark a first row that names the columns rather than holding data.
var headerWords = map[string]bool{
	"termo": true, "term": true, "sigla": true, "siglas": true,
	"entidade": true, "entidades": true, "acronym": true, "entity": true,
}

// LoadFile reads a dictionary from disk, choosing the parser by extension.
func LoadFile(path string, kind Kind) (*Dictionary, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dictionary %s: %w", path, err)
	}
	return Parse(filepath.Base(path), content, kind)
}

// LoadReader reads a dictionary from r; name supplies the extension.
func LoadReader(r io.Reader, name string, kind Kind) (*Dictionary, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dictionary %s: %w", name, err)
	}
	return Parse(name, content, kind)
}

// Parse decodes CSV/TSV, XLSX or YAML dictionary content.
func Parse(name string, content []byte, kind Kind) (*Dictionary, error) {
	ext := strings.ToLower(filepath.Ext(name))
	var (
		rows [][]string
		err  error
	)
	switch ext {
	case ".csv", ".tsv":
		rows, err = parseCSV(content, ext == ".tsv")
	case ".xlsx":
		rows, err = parseExcel(content, kind)
	case ".xls":
		return nil, apperrors.WrapErrorf(apperrors.ErrUnsupportedFormat, "legacy workbook %s, save it as .xlsx", name)
	case ".yaml", ".yml":
		return parseYAML(content, kind)
	default:
		return nil, apperrors.WrapErrorf(apperrors.ErrUnsupportedFormat, "dictionary %s", name)
	}
	if err != nil {
		return nil, apperrors.WrapErrorf(apperrors.ErrInvalidInput, "dictionary %s: %v", name, err)
	}
	return fromRows(kind, rows), nil
}

func fromRows(kind Kind, rows [][]string) *Dictionary {
	d := New(kind)
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		term := strings.TrimSpace(row[0])
		if i == 0 && headerWords[strings.ToLower(term)] {
			continue
		}
		var repl string
		if len(row) > 1 {
			repl = row[1]
		}
		d.Set(term, repl)
	}
	return d
}

func parseCSV(content []byte, isTSV bool) ([][]string, error) {
	// Excel's "CSV UTF-8" export starts with a byte order mark
	content = bytes.TrimPrefix(content, []byte("\ufeff"))
	reader := csv.NewReader(bytes.NewReader(content))
	if isTSV {
		reader.Comma = '\t'
	} else if sniffSemicolon(content) {
		// spreadsheets saved with a pt-BR locale use ';'
		reader.Comma = ';'
	}
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

func sniffSemicolon(content []byte) bool {
	line := content
	if i := bytes.IndexByte(content, '\n'); i >= 0 {
		line = content[:i]
	}
	return bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(","))
}

// sheetNames lets one detection workbook carry both dictionaries.
var sheetNames = map[Kind][]string{
	KindAcronym: {"siglas", "acronyms"},
	KindEntity:  {"entidades", "entities"},
}

func parseExcel(content []byte, kind Kind) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets in workbook")
	}

	sheet := sheets[0]
	for _, name := range sheets {
		for _, want := range sheetNames[kind] {
			if strings.EqualFold(strings.TrimSpace(name), want) {
				sheet = name
			}
		}
	}
	return f.GetRows(sheet)
}

// parseYAML accepts either a term->replacement mapping or a list of entries.
func parseYAML(content []byte, kind Kind) (*Dictionary, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(content, &node); err != nil {
		return nil, apperrors.WrapErrorf(apperrors.ErrInvalidInput, "yaml dictionary: %v", err)
	}
	if len(node.Content) == 0 {
		return New(kind), nil
	}

	root := node.Content[0]
	switch root.Kind {
	case yaml.MappingNode:
		var m map[string]string
		if err := root.Decode(&m); err != nil {
			return nil, apperrors.WrapErrorf(apperrors.ErrInvalidInput, "yaml dictionary: %v", err)
		}
		d := New(kind)
		for term, repl := range m {
			d.Set(term, repl)
		}
		return d, nil
	case yaml.SequenceNode:
		var entries []Entry
		if err := root.Decode(&entries); err != nil {
			return nil, apperrors.WrapErrorf(apperrors.ErrInvalidInput, "yaml dictionary: %v", err)
		}
		return FromEntries(kind, entries), nil
	default:
		return nil, apperrors.WrapErrorf(apperrors.ErrInvalidInput, "yaml dictionary must be a mapping or a list")
	}
}

// WriteCSV writes the dictionary with a termo,substituto header.
func (d *Dictionary) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"termo", "substituto"}); err != nil {
		return err
	}
	for _, e := range d.Entries() {
		if err := cw.Write([]string{e.Term, e.Replacement}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteYAML writes the dictionary as a term->replacement mapping.
func (d *Dictionary) WriteYAML(w io.Writer) error {
	m := make(map[string]string, d.Len())
	for _, e := range d.Entries() {
		m[e.Term] = e.Replacement
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode yaml dictionary: %w", err)
	}
	return enc.Close()
}
