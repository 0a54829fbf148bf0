package documents

import (
	"bytes"
	"context"
	"io"

	apperrors "eam-assistant/internal/common/errors"
	"eam-assistant/internal/eam"
)

// Fetcher downloads attachments from EAM.
type Fetcher interface {
	FetchDocument(ctx context.Context, code string) (*eam.Document, error)
}

// Upload is a document sent directly with the request.
type Upload struct {
	Name string
	Body io.Reader
}

// Load returns the text of the EAM document code, or of upload when no code
// is given.
func (e *Extractor) Load(ctx context.Context, fetcher Fetcher, code string, upload *Upload) (string, error) {
	if code != "" {
		if fetcher == nil {
			return "", apperrors.NewConfigurationMissingError("EAM client is not configured")
		}
		doc, err := fetcher.FetchDocument(ctx, code)
		if err != nil {
			return "", err
		}
		return e.Extract(ctx, doc.Name, bytes.NewReader(doc.Content))
	}

	if upload == nil || upload.Body == nil {
		return "", apperrors.NewInvalidInputError("No document provided")
	}
	return e.Extract(ctx, upload.Name, upload.Body)
}
