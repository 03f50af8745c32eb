// Package sheet reads survey tables (CSV, TSV, Excel, PDF transcripts) into a
// uniform header+rows shape and writes Excel workbooks back out.
package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	apperrors "corpus-prep/errors"
)

// PDF transcripts become one row per page under these headers.
const (
	PDFPageColumn = "pagina"
	PDFTextColumn = "texto"
)

// metadataSheets are skipped when picking the data sheet of a workbook.
var metadataSheets = map[string]bool{
	"info":     true,
	"metadata": true,
	"about":    true,
	"readme":   true,
	"notes":    true,
	"leiame":   true,
	"notas":    true,
}

// Table is a rectangular view of an input file: every row has len(Headers) cells.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// SupportedExtension reports whether Read can handle files named like name.
func SupportedExtension(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".tsv", ".xlsx", ".pdf":
		return true
	}
	return false
}

// ReadFile loads a table from disk.
func ReadFile(path string) (*Table, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Read(filepath.Base(path), content)
}

// Read parses content according to the extension of name.
func Read(name string, content []byte) (*Table, error) {
	var (
		headers []string
		rows    [][]string
		err     error
	)

	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".csv", ".tsv":
		headers, rows, err = parseCSV(content, ext == ".tsv")
	case ".xlsx":
		headers, rows, err = parseExcel(content)
	case ".xls":
		// excelize reads only OOXML workbooks
		return nil, apperrors.WrapErrorf(apperrors.ErrUnsupportedFormat, "legacy workbook %s, save it as .xlsx", name)
	case ".pdf":
		headers, rows, err = parsePDF(content)
	default:
		return nil, apperrors.WrapErrorf(apperrors.ErrUnsupportedFormat, "%s", name)
	}
	if err != nil {
		return nil, apperrors.WrapErrorf(apperrors.ErrInvalidInput, "%s: %v", name, err)
	}

	return &Table{Name: name, Headers: headers, Rows: rectangular(rows, len(headers))}, nil
}

func parseCSV(content []byte, isTSV bool) ([]string, [][]string, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(content, []byte("\ufeff"))))

	if isTSV {
		reader.Comma = '\t'
	} else if firstLineCount(content, ';') > firstLineCount(content, ',') {
		reader.Comma = ';'
	}
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(allRows) == 0 {
		return nil, nil, fmt.Errorf("empty CSV file")
	}

	return trimHeaders(allRows[0]), allRows[1:], nil
}

func firstLineCount(content []byte, sep byte) int {
	line := content
	if i := bytes.IndexByte(content, '\n'); i >= 0 {
		line = content[:i]
	}
	return bytes.Count(line, []byte{sep})
}

func parseExcel(content []byte) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("no sheets in Excel file")
	}

	var sheetName string
	for _, sheet := range sheets {
		if !metadataSheets[strings.ToLower(strings.TrimSpace(sheet))] {
			sheetName = sheet
			break
		}
	}
	// If all sheets are metadata, use the last one
	if sheetName == "" {
		sheetName = sheets[len(sheets)-1]
	}

	allRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}
	if len(allRows) == 0 {
		return nil, nil, fmt.Errorf("empty Excel sheet %q", sheetName)
	}

	return trimHeaders(allRows[0]), allRows[1:], nil
}

func parsePDF(content []byte) ([]string, [][]string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	var rows [][]string
	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, nil, fmt.Errorf("page %d: %w", pageNum, err)
		}
		rows = append(rows, []string{strconv.Itoa(pageNum), strings.TrimSpace(text)})
	}

	return []string{PDFPageColumn, PDFTextColumn}, rows, nil
}

func trimHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = strings.TrimSpace(h)
	}
	return out
}

// rectangular pads short rows and trims long ones to width.
func rectangular(rows [][]string, width int) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		switch {
		case len(row) < width:
			padded := make([]string, width)
			copy(padded, row)
			row = padded
		case len(row) > width:
			row = row[:width]
		}
		out = append(out, row)
	}
	return out
}

// ColumnIndex finds a header ignoring case, surrounding space and accents,
// so "Região" and "regiao" name the same column.
func (t *Table) ColumnIndex(name string) (int, error) {
	want := FoldHeader(name)
	for i, h := range t.Headers {
		if FoldHeader(h) == want {
			return i, nil
		}
	}
	return -1, apperrors.WrapErrorf(apperrors.ErrColumnNotFound, "%q (available: %s)", name, strings.Join(t.Headers, ", "))
}

// Column returns every cell of the named column.
func (t *Table) Column(name string) ([]string, error) {
	idx, err := t.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, nil
}

// FoldHeader lowercases s, trims it and strips diacritics.
func FoldHeader(s string) string {
	// transformers carry state, so each call builds its own chain
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripper, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return folded
}
