// internal/eam/documents.go
package eam

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	apperrors "eam-assistant/internal/common/errors"
)

// Document is an attachment downloaded from EAM.
type Document struct {
	Code    string
	Name    string
	Content []byte
}

type attachmentResponse struct {
	ErrorAlert json.RawMessage `json:"ErrorAlert"`
	Result     struct {
		ResultData struct {
			Attachment struct {
				FileContent string `json:"FILECONTENT"`
			} `json:"Attachment"`
		} `json:"ResultData"`
	} `json:"Result"`
}

// FetchDocument downloads the attachment stored under code. EAM only returns
// PDFs through this resource, so the name is always <code>.pdf.
func (c *Client) FetchDocument(ctx context.Context, code string) (*Document, error) {
	body := payload{"DOCUMENTCODE": code, "UPLOADTYPE": "MOBILE"}

	resp, err := c.http.DoJSON(ctx, http.MethodPut, resourceDocuments, body)
	if err != nil {
		c.logFailure("fetch document", body, "", err)
		return nil, apperrors.NewEAMDocumentNotFoundError(err.Error())
	}
	if !resp.IsSuccess() {
		detail := fmt.Sprintf("%d %s | Response: %s", resp.StatusCode, http.StatusText(resp.StatusCode), string(resp.Body))
		c.logFailure("fetch document", body, string(resp.Body), fmt.Errorf("status %d", resp.StatusCode))
		return nil, apperrors.NewEAMDocumentNotFoundError(detail)
	}

	var parsed attachmentResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return nil, apperrors.NewEAMDocumentNotFoundError(fmt.Sprintf("invalid JSON: %s", err.Error()))
	}

	if alert := errorAlert(parsed.ErrorAlert); alert != "" {
		stdErr := apperrors.NewEAMDocumentNotFoundError(alert)
		stdErr.Message = "EAM API Error: " + alert
		return nil, stdErr.WithMetadata("eam_response", decodeBody(resp.Body))
	}

	content := parsed.Result.ResultData.Attachment.FileContent
	if content == "" {
		stdErr := apperrors.NewEAMDocumentNotFoundError("document " + code)
		stdErr.Message = "FILECONTENT not found in EAM response."
		return nil, stdErr.WithMetadata("eam_response", decodeBody(resp.Body))
	}

	data, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		stdErr := apperrors.NewDocumentExtractionError(err)
		stdErr.Message = "Failed to decode FILECONTENT: " + err.Error()
		return nil, stdErr
	}

	c.logger.Info("fetched EAM document", map[string]interface{}{
		"documentCode": code,
		"bytes":        len(data),
	})
	return &Document{Code: code, Name: code + ".pdf", Content: data}, nil
}

// errorAlert renders a non-empty ErrorAlert value, which EAM sends as either a
// list or a single object.
func errorAlert(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	switch alert := v.(type) {
	case nil:
		return ""
	case []interface{}:
		if len(alert) == 0 {
			return ""
		}
	case map[string]interface{}:
		if len(alert) == 0 {
			return ""
		}
	case string:
		return alert
	}
	return string(raw)
}
