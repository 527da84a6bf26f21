// Package convert extracts plain text from uploaded resume documents.
// PDF, DOCX, and plain text files are supported; anything else is rejected
// per-file so one bad upload never poisons a batch.
package convert

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"resumerank/internal/errors"
	"resumerank/internal/utils"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Converter turns uploaded documents into plain resume text
type Converter struct {
	maxFileSize int64
	logger      *errors.Logger
}

// NewConverter creates a converter enforcing the configured size limit
func NewConverter(maxFileSize int64, logger *errors.Logger) *Converter {
	if maxFileSize <= 0 {
		maxFileSize = 1024 * 1024
	}
	return &Converter{maxFileSize: maxFileSize, logger: logger}
}

// File extracts text from a single named document
func (c *Converter) File(filename string, r io.Reader) (string, error) {
	if !utils.SupportedExtension(filename) {
		return "", errors.NewValidationError(errors.ErrCodeInvalidFileType,
			fmt.Sprintf("Unsupported file type %q, accepted types are %s",
				utils.NormalizedExtension(filename),
				strings.Join(utils.SupportedExtensionList(), ", ")), nil).
			WithContext("filename", filename)
	}

	data, err := c.readLimited(filename, r)
	if err != nil {
		return "", err
	}

	var text string
	switch utils.NormalizedExtension(filename) {
	case ".pdf":
		text, err = extractPDFText(data)
	case ".docx", ".doc":
		text, err = extractDocxText(data)
	case ".txt":
		text = string(data)
	}
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to extract text from %s", filename), err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("No text content found in %s", filename), nil)
	}

	c.logger.Debug("Converted document",
		"filename", filename,
		"bytes", len(data),
		"characters", len(text))
	return text, nil
}

// Result is the outcome of converting one file in a batch
type Result struct {
	Filename string `json:"filename"`
	Text     string `json:"text,omitempty"`
	Error    string `json:"error,omitempty"`
}

// NamedReader pairs an upload with its filename
type NamedReader struct {
	Filename string
	Reader   io.Reader
}

// Batch converts each file independently. A failed file contributes an error
// entry, never partial text, and never aborts the rest of the batch.
func (c *Converter) Batch(files []NamedReader) []Result {
	results := make([]Result, 0, len(files))
	for _, f := range files {
		text, err := c.File(f.Filename, f.Reader)
		if err != nil {
			results = append(results, Result{Filename: f.Filename, Error: err.Error()})
			continue
		}
		results = append(results, Result{Filename: f.Filename, Text: text})
	}
	return results
}

func (c *Converter) readLimited(filename string, r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, c.maxFileSize+1))
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read %s", filename), err)
	}
	if int64(len(data)) > c.maxFileSize {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("%s exceeds the %d byte size limit", filename, c.maxFileSize), nil)
	}
	return data, nil
}

// extractPDFText pulls text page by page; unreadable pages are skipped
// rather than failing the document
func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse pdf: %w", err)
	}

	var textBuilder strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, _ := page.GetPlainText(nil)
		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}
	return textBuilder.String(), nil
}

var xmlTag = regexp.MustCompile(`<[^>]+>`)

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	// GetContent returns the document XML; paragraph boundaries become
	// newlines before the remaining markup is stripped.
	content := doc.Editable().GetContent()
	content = strings.ReplaceAll(content, "</w:p>", "</w:p>\n")
	return xmlTag.ReplaceAllString(content, ""), nil
}
