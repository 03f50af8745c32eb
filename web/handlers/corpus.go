package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"corpus-prep/dictionary"
	"corpus-prep/pipeline"
	"corpus-prep/utils"
	"corpus-prep/web/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CorpusHandler serves detection, generation and dictionary endpoints.
type CorpusHandler struct {
	pipeline *pipeline.Pipeline
	uploads  *services.UploadService
	logger   *zap.Logger
}

func NewCorpusHandler(p *pipeline.Pipeline, uploads *services.UploadService, logger *zap.Logger) *CorpusHandler {
	return &CorpusHandler{pipeline: p, uploads: uploads, logger: logger}
}

type detectResponse struct {
	Rows     int      `json:"rows"`
	Acronyms []string `json:"acronyms"`
	Entities []string `json:"entities"`
}

// Detect handles POST /api/detect.
func (h *CorpusHandler) Detect(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		respondWithClientError(c, http.StatusBadRequest, "missing file upload")
		return
	}

	table, err := h.uploads.ReadTable(file)
	if err != nil {
		respondWithAppError(c, err, "could not read the uploaded table", h.logger, zap.String("filename", file.Filename))
		return
	}

	report, err := h.pipeline.Detect(c.Request.Context(), table, strings.TrimSpace(c.PostForm("column")))
	if err != nil {
		respondWithAppError(c, err, "detection failed", h.logger, zap.String("filename", table.Name))
		return
	}

	if c.Query("format") == "xlsx" {
		var buf bytes.Buffer
		if err := pipeline.WriteTemplate(&buf, report); err != nil {
			respondWithError(c, http.StatusInternalServerError, err, "could not build the workbook", h.logger)
			return
		}
		attachment(c, utils.DerivedName(table.Name, "_dicionario", ".xlsx"))
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
		return
	}

	c.JSON(http.StatusOK, detectResponse{
		Rows:     report.Rows,
		Acronyms: report.Acronyms,
		Entities: report.Entities,
	})
}

// Generate handles POST /api/generate.
func (h *CorpusHandler) Generate(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		respondWithClientError(c, http.StatusBadRequest, "missing file upload")
		return
	}

	table, err := h.uploads.ReadTable(file)
	if err != nil {
		respondWithAppError(c, err, "could not read the uploaded table", h.logger, zap.String("filename", file.Filename))
		return
	}

	req := pipeline.GenerateRequest{
		TextColumn:      strings.TrimSpace(c.PostForm("column")),
		MetadataColumns: splitList(c.PostForm("metadata")),
	}
	uploads := []struct {
		field  string
		kind   dictionary.Kind
		target **dictionary.Dictionary
	}{
		{"acronyms", dictionary.KindAcronym, &req.Acronyms},
		{"entities", dictionary.KindEntity, &req.Entities},
	}
	for _, u := range uploads {
		fh, err := c.FormFile(u.field)
		if err != nil {
			continue // optional
		}
		d, err := h.uploads.ReadDictionary(fh, u.kind)
		if err != nil {
			respondWithAppError(c, err, "could not read the dictionary", h.logger, zap.String("field", u.field))
			return
		}
		*u.target = d
	}

	result, err := h.pipeline.Generate(c.Request.Context(), table, req)
	if err != nil {
		respondWithAppError(c, err, "corpus generation failed", h.logger, zap.String("filename", table.Name))
		return
	}

	c.Header("X-Rows-Written", fmt.Sprint(result.RowsWritten))
	c.Header("X-Rows-Skipped", fmt.Sprint(result.RowsSkipped))
	attachment(c, utils.DerivedName(table.Name, "_corpus", ".txt"))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(result.String()))
}

// GetDictionary handles GET /api/dictionaries/:kind. ?format=csv or yaml
// downloads the dictionary instead of returning JSON.
func (h *CorpusHandler) GetDictionary(c *gin.Context) {
	kind, err := dictionary.ParseKind(c.Param("kind"))
	if err != nil {
		respondWithAppError(c, err, "unknown dictionary", h.logger)
		return
	}

	d, err := h.pipeline.StoredDictionary(c.Request.Context(), kind)
	if err != nil {
		respondWithAppError(c, err, "could not load the dictionary", h.logger, zap.String("kind", string(kind)))
		return
	}

	var buf bytes.Buffer
	switch c.Query("format") {
	case "csv":
		if err := d.WriteCSV(&buf); err != nil {
			respondWithError(c, http.StatusInternalServerError, err, "could not encode the dictionary", h.logger)
			return
		}
		attachment(c, string(kind)+".csv")
		c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
	case "yaml":
		if err := d.WriteYAML(&buf); err != nil {
			respondWithError(c, http.StatusInternalServerError, err, "could not encode the dictionary", h.logger)
			return
		}
		attachment(c, string(kind)+".yaml")
		c.Data(http.StatusOK, "application/yaml; charset=utf-8", buf.Bytes())
	default:
		c.JSON(http.StatusOK, gin.H{"kind": kind, "entries": d.Entries()})
	}
}

type putDictionaryRequest struct {
	Entries []dictionary.Entry `json:"entries"`
	Replace bool               `json:"replace"`
}

// PutDictionary handles PUT /api/dictionaries/:kind with either a JSON body
// or a multipart dictionary file.
func (h *CorpusHandler) PutDictionary(c *gin.Context) {
	kind, err := dictionary.ParseKind(c.Param("kind"))
	if err != nil {
		respondWithAppError(c, err, "unknown dictionary", h.logger)
		return
	}

	var (
		d       *dictionary.Dictionary
		replace bool
	)
	if file, ferr := c.FormFile("file"); ferr == nil {
		d, err = h.uploads.ReadDictionary(file, kind)
		if err != nil {
			respondWithAppError(c, err, "could not read the dictionary", h.logger)
			return
		}
		replace = c.PostForm("replace") == "true"
	} else {
		var req putDictionaryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithClientError(c, http.StatusBadRequest, "body must be a dictionary file or JSON {\"entries\": [...]}")
			return
		}
		d = dictionary.FromEntries(kind, req.Entries)
		replace = req.Replace
	}

	if err := h.pipeline.SaveDictionary(c.Request.Context(), d, replace); err != nil {
		respondWithAppError(c, err, "could not store the dictionary", h.logger, zap.String("kind", string(kind)))
		return
	}
	c.JSON(http.StatusOK, gin.H{"kind": kind, "stored": d.Len(), "replace": replace})
}

// DeleteDictionaryTerm handles DELETE /api/dictionaries/:kind/:term.
func (h *CorpusHandler) DeleteDictionaryTerm(c *gin.Context) {
	kind, err := dictionary.ParseKind(c.Param("kind"))
	if err != nil {
		respondWithAppError(c, err, "unknown dictionary", h.logger)
		return
	}

	term := c.Param("term")
	if err := h.pipeline.DeleteTerm(c.Request.Context(), kind, term); err != nil {
		respondWithAppError(c, err, "could not delete the term", h.logger,
			zap.String("kind", string(kind)), zap.String("term", term))
		return
	}
	c.Status(http.StatusNoContent)
}

// Runs handles GET /api/runs.
func (h *CorpusHandler) Runs(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 500 {
		respondWithClientError(c, http.StatusBadRequest, "limit must be between 1 and 500")
		return
	}

	runs, err := h.pipeline.Runs(c.Request.Context(), limit)
	if err != nil {
		respondWithAppError(c, err, "could not list runs", h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// Health handles GET /health.
func (h *CorpusHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "store": h.pipeline.HasStore()})
}

func attachment(c *gin.Context, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
