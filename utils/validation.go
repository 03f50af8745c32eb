package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeFilenameChars = regexp.MustCompile(`[^\p{L}\p{N}._\s-]`)

// SanitizeFilename cleans filename for safe storage by removing dangerous characters
// and limiting length. It trims spaces and dots, removes parent directory references,
// and filters out everything except letters, digits and safe punctuation, so
// "Pesquisa São Paulo.xlsx" keeps its accents.
func SanitizeFilename(filename string) string {
	sanitized := filepath.Base(filepath.ToSlash(filename))
	sanitized = strings.Trim(sanitized, " .")
	sanitized = strings.ReplaceAll(sanitized, "..", "")
	sanitized = unsafeFilenameChars.ReplaceAllString(sanitized, "")
	if len(sanitized) > 255 {
		ext := filepath.Ext(sanitized)
		sanitized = sanitized[:255-len(ext)] + ext
	}
	return sanitized
}

// VerifyFileExists checks if file exists at the given path and is not a directory.
// Returns true if the file exists and is a regular file, false otherwise.
func VerifyFileExists(dir, filename string) bool {
	safePath := filepath.Join(dir, filename)
	info, err := os.Stat(safePath)
	if os.IsNotExist(err) || err != nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	return true
}

// DerivedName swaps the extension of name for suffix+ext:
// DerivedName("dados/respostas.xlsx", "_corpus", ".txt") is "respostas_corpus.txt".
func DerivedName(name, suffix, ext string) string {
	base := SanitizeFilename(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" {
		base = "corpus"
	}
	return base + suffix + ext
}
