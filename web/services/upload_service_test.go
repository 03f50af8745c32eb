package services

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"corpus-prep/dictionary"
	apperrors "corpus-prep/errors"
)

func fileHeader(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func TestReadTable(t *testing.T) {
	us := NewUploadService(1, zap.NewNop())

	table, err := us.ReadTable(fileHeader(t, "respostas.csv", "texto,sexo\nA ONU ajuda,F\n"))
	require.NoError(t, err)
	assert.Equal(t, "respostas.csv", table.Name)
	assert.Equal(t, []string{"texto", "sexo"}, table.Headers)
	assert.Len(t, table.Rows, 1)
}

func TestReadTableRejects(t *testing.T) {
	us := NewUploadService(1, zap.NewNop())

	_, err := us.ReadTable(fileHeader(t, "respostas.docx", "x"))
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedFormat)

	_, err = us.ReadTable(fileHeader(t, "respostas.xls", "\xd0\xcf\x11\xe0"))
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), ".xlsx")

	_, err = us.ReadTable(fileHeader(t, "..", "x"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	big := "texto\n" + strings.Repeat("a", 1024*1024)
	_, err = us.ReadTable(fileHeader(t, "grande.csv", big))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestReadDictionary(t *testing.T) {
	us := NewUploadService(0, zap.NewNop())
	assert.Equal(t, int64(20*1024*1024), us.MaxBytes())

	d, err := us.ReadDictionary(fileHeader(t, "siglas.yaml", "ONU: Organização das Nações Unidas\nSUS: ''\n"), dictionary.KindAcronym)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Len())

	_, err = us.ReadDictionary(fileHeader(t, "siglas.pdf", "x"), dictionary.KindAcronym)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedFormat)

	_, err = us.ReadDictionary(fileHeader(t, "siglas.xls", "\xd0\xcf\x11\xe0"), dictionary.KindAcronym)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedFormat)
}
