package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"corpus-prep/config"
	"corpus-prep/database"
	"corpus-prep/detect"
	"corpus-prep/dictionary"
	apperrors "corpus-prep/errors"
	"corpus-prep/metrics"
	"corpus-prep/pipeline"
)

const surveyCSV = "texto,sexo\n" +
	"A ONU e a Organização das Nações Unidas são a mesma coisa,F\n" +
	"O SUS atende 2 milhões,M\n"

func testConfig() *config.Config {
	return &config.Config{
		TextColumn:              "texto",
		RowIDVariable:           "ind",
		MissingValue:            "na",
		WordJoiner:              "_",
		ConvertNumbers:          true,
		ContractionMode:         "join",
		Workers:                 2,
		MaxUploadMB:             1,
		RateLimitRequestsPerMin: 600,
		RateLimitBurstSize:      100,
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	rec := detect.RecognizerFunc(func(_ context.Context, text string) ([]detect.Span, error) {
		if strings.Contains(text, "Nações Unidas") {
			return []detect.Span{{Text: "Organização das Nações Unidas", Label: "ORG"}}, nil
		}
		return nil, nil
	})
	cfg := testConfig()
	m := metrics.New()
	p, err := pipeline.New(cfg, rec, nil, m, zap.NewNop())
	require.NoError(t, err)
	s := NewServer(p, m, zap.NewNop(), cfg)
	t.Cleanup(s.limiter.Stop)
	return s
}

type formFile struct {
	field, name, content string
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, files ...formFile) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthAndGuide(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","store":false}`, rec.Body.String())

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Fluxo de trabalho</h2>")
}

func TestDetectEndpoint(t *testing.T) {
	s := newTestServer(t)

	req := multipartRequest(t, http.MethodPost, "/api/detect", map[string]string{"column": "texto"},
		formFile{"file", "respostas.csv", surveyCSV})
	rec := serve(s, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Rows     int      `json:"rows"`
		Acronyms []string `json:"acronyms"`
		Entities []string `json:"entities"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Rows)
	assert.Equal(t, []string{"ONU", "SUS"}, body.Acronyms)
	assert.Equal(t, []string{"Organização das Nações Unidas"}, body.Entities)

	metricsRec := serve(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, metricsRec.Body.String(), `corpus_prep_rows_processed_total{stage="detect"} 2`)
}

func TestDetectTemplateDownload(t *testing.T) {
	s := newTestServer(t)

	req := multipartRequest(t, http.MethodPost, "/api/detect?format=xlsx", nil,
		formFile{"file", "respostas.csv", surveyCSV})
	rec := serve(s, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "respostas_dicionario.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(pipeline.AcronymSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "ONU", rows[1][0])
}

func TestDetectErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		req  *http.Request
		code int
	}{
		{
			name: "missing_file",
			req:  multipartRequest(t, http.MethodPost, "/api/detect", map[string]string{"column": "texto"}),
			code: http.StatusBadRequest,
		},
		{
			name: "unknown_column",
			req: multipartRequest(t, http.MethodPost, "/api/detect", map[string]string{"column": "comentario"},
				formFile{"file", "respostas.csv", surveyCSV}),
			code: http.StatusBadRequest,
		},
		{
			name: "unsupported_extension",
			req:  multipartRequest(t, http.MethodPost, "/api/detect", nil, formFile{"file", "respostas.docx", "x"}),
			code: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(s, tt.req)
			assert.Equal(t, tt.code, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestGenerateEndpoint(t *testing.T) {
	s := newTestServer(t)

	req := multipartRequest(t, http.MethodPost, "/api/generate",
		map[string]string{"column": "texto", "metadata": "sexo"},
		formFile{"file", "respostas.csv", surveyCSV},
		formFile{"acronyms", "siglas.csv", "termo,substituto\nSUS,Sistema Único de Saúde\n"},
		formFile{"entities", "entidades.yaml", "Organização das Nações Unidas: ''\n"},
	)
	rec := serve(s, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "respostas_corpus.txt")
	assert.Equal(t, "2", rec.Header().Get("X-Rows-Written"))

	want := "**** *ind_1 *sexo_f\nA ONU e a Organização_das_Nações_Unidas são a mesma coisa\n\n" +
		"**** *ind_2 *sexo_m\nO Sistema_Único_de_Saúde atende dois milhões\n"
	assert.Equal(t, want, rec.Body.String())
}

func TestDictionaryEndpointsWithoutStore(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/dictionaries/siglas", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/dictionaries/verbos", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPut, "/api/dictionaries/entidades", strings.NewReader(`{"entries":[{"term":"São Paulo"}]}`))
	req.Header.Set("Content-Type", "application/json")
	rec = serve(s, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serve(s, httptest.NewRequest(http.MethodDelete, "/api/dictionaries/siglas/ONU", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/runs?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type termStore struct {
	terms map[dictionary.Kind]map[string]string
}

func (s *termStore) LoadDictionary(_ context.Context, kind dictionary.Kind) (*dictionary.Dictionary, error) {
	d := dictionary.New(kind)
	for term, repl := range s.terms[kind] {
		d.Set(term, repl)
	}
	return d, nil
}

func (s *termStore) UpsertEntries(_ context.Context, d *dictionary.Dictionary, replace bool) error {
	if replace || s.terms[d.Kind] == nil {
		s.terms[d.Kind] = map[string]string{}
	}
	for _, e := range d.Entries() {
		s.terms[d.Kind][e.Term] = e.Replacement
	}
	return nil
}

func (s *termStore) DeleteEntry(_ context.Context, kind dictionary.Kind, term string) error {
	if _, ok := s.terms[kind][term]; !ok {
		return apperrors.WrapErrorf(apperrors.ErrNotFound, "%s %q", kind, term)
	}
	delete(s.terms[kind], term)
	return nil
}

func (s *termStore) RecordRun(context.Context, *database.Run) error { return nil }

func (s *termStore) RecentRuns(context.Context, int) ([]database.Run, error) { return nil, nil }

func TestDictionaryEndpointsWithStore(t *testing.T) {
	store := &termStore{terms: map[dictionary.Kind]map[string]string{}}
	cfg := testConfig()
	p, err := pipeline.New(cfg, nil, store, nil, zap.NewNop())
	require.NoError(t, err)
	s := NewServer(p, nil, zap.NewNop(), cfg)
	t.Cleanup(s.limiter.Stop)

	req := httptest.NewRequest(http.MethodPut, "/api/dictionaries/siglas",
		strings.NewReader(`{"entries":[{"term":"ONU","replacement":"Organização das Nações Unidas"},{"term":"SUS"}]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(s, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(s, httptest.NewRequest(http.MethodDelete, "/api/dictionaries/siglas/SUS", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(s, httptest.NewRequest(http.MethodDelete, "/api/dictionaries/siglas/SUS", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/dictionaries/siglas?format=csv", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ONU")
	assert.NotContains(t, rec.Body.String(), "SUS")
}
