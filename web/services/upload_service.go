package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"corpus-prep/dictionary"
	apperrors "corpus-prep/errors"
	"corpus-prep/sheet"
	"corpus-prep/utils"
)

// UploadService validates multipart uploads and decodes them in memory.
type UploadService struct {
	maxBytes int64
	logger   *zap.Logger
}

func NewUploadService(maxUploadMB int64, logger *zap.Logger) *UploadService {
	if maxUploadMB <= 0 {
		maxUploadMB = 20
	}
	return &UploadService{
		maxBytes: maxUploadMB * 1024 * 1024,
		logger:   logger,
	}
}

// MaxBytes is the largest accepted upload.
func (us *UploadService) MaxBytes() int64 {
	return us.maxBytes
}

// ValidateFile checks name and size against accept and the size limit.
// Returns the sanitized filename.
func (us *UploadService) ValidateFile(file *multipart.FileHeader, accept func(string) bool) (string, error) {
	sanitizedFilename := utils.SanitizeFilename(file.Filename)
	if sanitizedFilename == "" {
		return "", apperrors.WrapError(apperrors.ErrInvalidInput, "invalid or unsafe filename")
	}
	if !accept(sanitizedFilename) {
		ext := strings.ToLower(filepath.Ext(sanitizedFilename))
		if ext == ".xls" {
			return "", apperrors.WrapError(apperrors.ErrUnsupportedFormat, "legacy .xls workbook, save it as .xlsx")
		}
		return "", apperrors.WrapErrorf(apperrors.ErrUnsupportedFormat, "%s", ext)
	}
	if file.Size > us.maxBytes {
		return "", apperrors.WrapErrorf(apperrors.ErrInvalidInput, "file too large, maximum size is %d MB", us.maxBytes/(1024*1024))
	}
	return sanitizedFilename, nil
}

// ReadTable decodes an uploaded survey table.
func (us *UploadService) ReadTable(file *multipart.FileHeader) (*sheet.Table, error) {
	name, err := us.ValidateFile(file, sheet.SupportedExtension)
	if err != nil {
		return nil, err
	}
	content, err := us.readAll(file)
	if err != nil {
		return nil, err
	}

	table, err := sheet.Read(name, content)
	if err != nil {
		return nil, err
	}
	us.logger.Info("Table uploaded",
		zap.String("filename", name),
		zap.Int64("size_bytes", file.Size),
		zap.Int("rows", len(table.Rows)),
		zap.Strings("headers", table.Headers))
	return table, nil
}

// ReadDictionary decodes an uploaded dictionary file of kind.
func (us *UploadService) ReadDictionary(file *multipart.FileHeader, kind dictionary.Kind) (*dictionary.Dictionary, error) {
	name, err := us.ValidateFile(file, dictionaryExtension)
	if err != nil {
		return nil, err
	}
	content, err := us.readAll(file)
	if err != nil {
		return nil, err
	}

	d, err := dictionary.Parse(name, content, kind)
	if err != nil {
		return nil, err
	}
	us.logger.Info("Dictionary uploaded",
		zap.String("filename", name),
		zap.String("kind", string(kind)),
		zap.Int("entries", d.Len()))
	return d, nil
}

func (us *UploadService) readAll(file *multipart.FileHeader) ([]byte, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	// one extra byte tells an exact-limit file from an oversized one
	content, err := io.ReadAll(io.LimitReader(src, us.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if int64(len(content)) > us.maxBytes {
		return nil, apperrors.WrapErrorf(apperrors.ErrInvalidInput, "file too large, maximum size is %d MB", us.maxBytes/(1024*1024))
	}
	return content, nil
}

func dictionaryExtension(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".tsv", ".xlsx", ".yaml", ".yml":
		return true
	}
	return false
}
