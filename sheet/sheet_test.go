package sheet

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "corpus-prep/errors"
)

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		headers []string
		rows    [][]string
	}{
		{
			name:    "comma_with_padding",
			file:    "respostas.csv",
			content: "id, Texto ,sexo\n1,\"Gosto do SUS, muito\",F\n2,Não sei\n",
			headers: []string{"id", "Texto", "sexo"},
			rows:    [][]string{{"1", "Gosto do SUS, muito", "F"}, {"2", "Não sei", ""}},
		},
		{
			name:    "semicolon_locale_with_bom",
			file:    "respostas.CSV",
			content: "\ufefftexto;região\nA ONU ajuda;Sul;extra\n",
			headers: []string{"texto", "região"},
			rows:    [][]string{{"A ONU ajuda", "Sul"}},
		},
		{
			name:    "tsv",
			file:    "respostas.tsv",
			content: "texto\tidade\nfalo com calma\t34\n",
			headers: []string{"texto", "idade"},
			rows:    [][]string{{"falo com calma", "34"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Read(tt.file, []byte(tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.headers, table.Headers)
			assert.Equal(t, tt.rows, table.Rows)
		})
	}
}

func TestReadExcelSkipsMetadataSheet(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "LEIAME"))
	require.NoError(t, f.SetCellValue("LEIAME", "A1", "instruções"))
	_, err := f.NewSheet("dados")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("dados", "A1", &[]interface{}{"Texto", "Região"}))
	require.NoError(t, f.SetSheetRow("dados", "A2", &[]interface{}{"Moro em São Paulo", "Sudeste"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	table, err := Read("pesquisa.xlsx", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"Texto", "Região"}, table.Headers)

	texts, err := table.Column("texto")
	require.NoError(t, err)
	assert.Equal(t, []string{"Moro em São Paulo"}, texts)

	idx, err := table.ColumnIndex(" REGIAO ")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
}

func TestReadErrors(t *testing.T) {
	_, err := Read("respostas.docx", []byte("x"))
	assert.True(t, errors.Is(err, apperrors.ErrUnsupportedFormat))

	ole2 := []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	_, err = Read("respostas.xls", ole2)
	assert.True(t, errors.Is(err, apperrors.ErrUnsupportedFormat))
	assert.Contains(t, err.Error(), ".xlsx")

	_, err = Read("vazio.csv", nil)
	assert.True(t, apperrors.IsInvalidInput(err))

	table := &Table{Headers: []string{"texto"}}
	_, err = table.Column("resposta")
	assert.True(t, errors.Is(err, apperrors.ErrColumnNotFound))
}

func TestSupportedExtension(t *testing.T) {
	assert.True(t, SupportedExtension("a.XLSX"))
	assert.True(t, SupportedExtension("entrevistas.pdf"))
	assert.False(t, SupportedExtension("a.txt"))
	assert.False(t, SupportedExtension("legado.xls"))
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	err := WriteWorkbook(&buf, []Sheet{
		{Name: "siglas", Headers: []string{"termo", "substituto"}, Rows: [][]interface{}{{"ONU", ""}}},
		{Name: "entidades", Headers: []string{"termo", "substituto", "linhas"}, Rows: [][]interface{}{{"São Paulo", "São_Paulo", 2}}},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"siglas", "entidades"}, f.GetSheetList())
	rows, err := f.GetRows("entidades")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"termo", "substituto", "linhas"}, {"São Paulo", "São_Paulo", "2"}}, rows)

	assert.Error(t, WriteWorkbook(&buf, nil))
}
