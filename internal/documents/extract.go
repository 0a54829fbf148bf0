// internal/documents/extract.go
package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"eam-assistant/internal/common/config"
	apperrors "eam-assistant/internal/common/errors"
	"eam-assistant/internal/common/logger"
)

var (
	ErrUnsupportedType = errors.New("UNSUPPORTED_DOCUMENT_TYPE")
	ErrEmptyDocument   = errors.New("No content could be extracted from the document")
)

var textExtensions = map[string]bool{
	".pdf": true,
	".txt": true,
	".md":  true,
}

// Supported reports whether name has an extension the extractor can read.
func Supported(name string) bool {
	return textExtensions[strings.ToLower(filepath.Ext(name))]
}

// IsPDF reports whether name ends in .pdf, ignoring case.
func IsPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// Extractor turns uploaded or downloaded documents into plain text. Every
// document goes through a scratch file under the configured temp dir.
type Extractor struct {
	tempDir string
	logger  logger.Logger
}

func NewExtractor(cfg config.DocumentsConfig, log logger.Logger) *Extractor {
	dir := cfg.TempDir
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "eam-assistant")
	}
	return &Extractor{
		tempDir: dir,
		logger:  log.WithFields(map[string]interface{}{"component": "documents"}),
	}
}

// Extract writes body to a scratch file named after a fresh uuid and returns
// the document text. The scratch file is gone when Extract returns.
func (e *Extractor) Extract(ctx context.Context, name string, body io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if !textExtensions[ext] {
		return "", apperrors.NewDocumentExtractionError(fmt.Errorf("%w: %q", ErrUnsupportedType, name))
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(e.tempDir, 0o755); err != nil {
		return "", apperrors.NewDocumentExtractionError(fmt.Errorf("create temp dir: %w", err))
	}

	path := filepath.Join(e.tempDir, uuid.NewString()+ext)
	defer e.remove(path)

	if err := writeFile(path, body); err != nil {
		return "", apperrors.NewDocumentExtractionError(err)
	}

	var (
		text string
		err  error
	)
	if ext == ".pdf" {
		text, err = readPDF(path)
	} else {
		var data []byte
		data, err = os.ReadFile(path)
		text = string(data)
	}
	if err != nil {
		e.logger.Error("document extraction failed", map[string]interface{}{
			"document": name,
			"error":    err.Error(),
		})
		return "", apperrors.NewDocumentExtractionError(err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperrors.NewDocumentExtractionError(ErrEmptyDocument)
	}

	e.logger.Info("extracted document text", map[string]interface{}{
		"document": name,
		"chars":    len(text),
	})
	return text, nil
}

func writeFile(path string, body io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create scratch file: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		return fmt.Errorf("write scratch file: %w", err)
	}
	return f.Close()
}

func (e *Extractor) remove(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		e.logger.Warn("failed to remove scratch file", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
	}
}

// readPDF returns the plain text of every page. The parser panics on some
// malformed files, so panics come back as errors.
func readPDF(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}
	defer f.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read PDF text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("read PDF text: %w", err)
	}
	return buf.String(), nil
}
