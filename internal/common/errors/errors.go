// internal/common/errors/errors.go
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type ErrorCode string

const (
	ErrCodeInvalidInput         ErrorCode = "INVALID_INPUT"
	ErrCodeAttributeNotFound    ErrorCode = "ATTRIBUTE_NOT_FOUND"
	ErrCodeConfigurationMissing ErrorCode = "CONFIGURATION_MISSING"

	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeSearchQueryFailed             ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeIndexNotFound                 ErrorCode = "INDEX_NOT_FOUND"

	ErrCodeLLMInvalidModel  ErrorCode = "LLM_INVALID_MODEL"
	ErrCodeLLMCallFailed    ErrorCode = "LLM_CALL_FAILED"
	ErrCodeLLMTimeout       ErrorCode = "LLM_TIMEOUT"
	ErrCodeLLMOutputInvalid ErrorCode = "LLM_OUTPUT_INVALID"

	ErrCodeEAMRequestFailed       ErrorCode = "EAM_REQUEST_FAILED"
	ErrCodeEAMRevisionExhausted   ErrorCode = "EAM_REVISION_EXHAUSTED"
	ErrCodeEAMDocumentNotFound    ErrorCode = "EAM_DOCUMENT_NOT_FOUND"
	ErrCodeDocumentExtraction     ErrorCode = "DOCUMENT_EXTRACTION_FAILED"
	ErrCodeSchemaValidation       ErrorCode = "SCHEMA_VALIDATION_FAILED"
	ErrCodeDatabaseInsertFailed   ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeUnauthorized           ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidInputError(message string) *StandardError {
	return newError(ErrCodeInvalidInput, message, "", false)
}

func NewAttributeNotFoundError(attribute string) *StandardError {
	return newError(ErrCodeAttributeNotFound, "Invalid attribute provided", fmt.Sprintf("attribute: %s", attribute), false)
}

func NewConfigurationMissingError(message string) *StandardError {
	return newError(ErrCodeConfigurationMissing, message, "", false)
}

func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeElasticsearchConnectionFailed, "Elasticsearch connection error", err.Error(), true)
}

func NewSearchQueryFailedError(attribute string, err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Elasticsearch query error",
		fmt.Sprintf("attribute: %s, error: %s", attribute, err.Error()), true)
}

func NewIndexNotFoundError(indexName string) *StandardError {
	return newError(ErrCodeIndexNotFound, "Elasticsearch index not found", fmt.Sprintf("index: %s", indexName), false)
}

func NewLLMInvalidModelError(name string) *StandardError {
	return newError(ErrCodeLLMInvalidModel, fmt.Sprintf("Invalid LLM name: %s", name), "", false)
}

func NewLLMCallFailedError(err error) *StandardError {
	return newError(ErrCodeLLMCallFailed, "LLM call failed", err.Error(), true)
}

func NewLLMTimeoutError() *StandardError {
	return newError(ErrCodeLLMTimeout, "LLM call timed out", "", true)
}

func NewLLMOutputInvalidError(details string) *StandardError {
	return newError(ErrCodeLLMOutputInvalid, "LLM returned output that could not be parsed", details, false)
}

func NewEAMRequestFailedError(operation string, err error) *StandardError {
	return newError(ErrCodeEAMRequestFailed, fmt.Sprintf("Failed to %s", operation), err.Error(), true)
}

func NewEAMRevisionExhaustedError(entity, code string, attempts int) *StandardError {
	return newError(ErrCodeEAMRevisionExhausted, "EAM revision retries exhausted",
		fmt.Sprintf("entity: %s, code: %s, attempts: %d", entity, code, attempts), false)
}

func NewEAMDocumentNotFoundError(details string) *StandardError {
	return newError(ErrCodeEAMDocumentNotFound, "Failed to fetch document from EAM", details, false)
}

func NewDocumentExtractionError(err error) *StandardError {
	return newError(ErrCodeDocumentExtraction, "Failed to extract document text", err.Error(), false)
}

func NewSchemaValidationError(details string) *StandardError {
	return newError(ErrCodeSchemaValidation, "Extracted data failed schema validation", details, false)
}

func NewDatabaseInsertFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseInsertFailed, "Database insert error", err.Error(), true)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification send error",
		fmt.Sprintf("channel: %s, error: %s", channel, err.Error()), true)
}

func NewUnauthorizedError(details string) *StandardError {
	return newError(ErrCodeUnauthorized, "Unauthorized", details, false)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false)
}

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidInput:                  "INVALID_INPUT",
	ErrCodeAttributeNotFound:             "ATTRIBUTE_NOT_FOUND",
	ErrCodeConfigurationMissing:          "CONFIGURATION_MISSING",
	ErrCodeElasticsearchConnectionFailed: "ELASTICSEARCH_CONNECTION_FAILED",
	ErrCodeSearchQueryFailed:             "SEARCH_QUERY_FAILED",
	ErrCodeIndexNotFound:                 "INDEX_NOT_FOUND",
	ErrCodeLLMInvalidModel:               "LLM_INVALID_MODEL",
	ErrCodeLLMCallFailed:                 "LLM_CALL_FAILED",
	ErrCodeLLMTimeout:                    "LLM_TIMEOUT",
	ErrCodeLLMOutputInvalid:              "LLM_OUTPUT_INVALID",
	ErrCodeEAMRequestFailed:              "EAM_REQUEST_FAILED",
	ErrCodeEAMRevisionExhausted:          "EAM_REVISION_EXHAUSTED",
	ErrCodeEAMDocumentNotFound:           "EAM_DOCUMENT_NOT_FOUND",
	ErrCodeDocumentExtraction:            "DOCUMENT_EXTRACTION_FAILED",
	ErrCodeSchemaValidation:              "SCHEMA_VALIDATION_FAILED",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeElasticsearchConnectionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeEAMRequestFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeNotificationSendFailed:
		return 3

	case ErrCodeLLMCallFailed:
		return 2

	case ErrCodeLLMTimeout:
		return 1

	default:
		return 0 // input and business errors are not retried
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case code == ErrCodeInvalidInput || code == ErrCodeAttributeNotFound:
		return "INPUT"
	case strings.Contains(codeStr, "CONFIGURATION"):
		return "CONFIGURATION"
	case strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.HasPrefix(codeStr, "LLM"):
		return "LLM"
	case strings.HasPrefix(codeStr, "EAM"):
		return "EAM"
	case strings.Contains(codeStr, "DOCUMENT") || strings.Contains(codeStr, "SCHEMA"):
		return "DOCUMENT"
	default:
		return "SYSTEM"
	}
}

// HTTPStatus maps an error code to the status an API handler should answer with.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodeAttributeNotFound:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// AsStandardError unwraps err into a *StandardError, wrapping unknown errors as INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}
