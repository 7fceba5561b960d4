// Package extract pulls plain text out of uploaded documents, one extractor
// per supported file format.
package extract

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrUnsupportedType is returned for file types no extractor handles.
var ErrUnsupportedType = errors.New("unsupported file type")

// Text extracts plain text from the file at path according to its declared
// type. The type is the lowercase file extension without the dot.
func Text(path, fileType string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(fileType)) {
	case "pdf":
		return pdfText(path)
	case "txt", "text", "md":
		return plainText(path)
	case "docx", "doc":
		return docxText(path)
	case "xlsx", "xls":
		return xlsxText(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, fileType)
	}
}

// Supported reports whether a file type has an extractor.
func Supported(fileType string) bool {
	switch strings.ToLower(strings.TrimSpace(fileType)) {
	case "pdf", "txt", "text", "md", "docx", "doc", "xlsx", "xls":
		return true
	}
	return false
}

func plainText(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read text file failed: %w", err)
	}
	return string(b), nil
}
