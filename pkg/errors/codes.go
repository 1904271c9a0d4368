package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Sentinel codes.
const (
	CodeOK      ErrorCode = "OK"
	CodeUnknown ErrorCode = "UNKNOWN"
)

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeFeatureDisabled    ErrorCode = "COMMON_015"
)

// Document Module Error Codes
const (
	ErrCodeDocumentNotFound    ErrorCode = "DOC_001"
	ErrCodeDocumentReadFailed  ErrorCode = "DOC_002"
	ErrCodeDocumentWriteFailed ErrorCode = "DOC_003"
	ErrCodeDocumentInvalid     ErrorCode = "DOC_004"
)

// Guidelines Module Error Codes
const (
	ErrCodeGuidelinesDirFailed ErrorCode = "GDL_001"
	ErrCodeGuidelinesWalk      ErrorCode = "GDL_002"
)

// Semantic review (LLM) Error Codes
const (
	ErrCodeLLMRequestFailed ErrorCode = "LLM_001"
	ErrCodeLLMBadResponse   ErrorCode = "LLM_002"
	ErrCodeLLMStatus        ErrorCode = "LLM_003"
)

// Report Module Error Codes
const (
	ErrCodeReportWriteFailed ErrorCode = "RPT_001"
	ErrCodeReviewNotFound    ErrorCode = "RPT_002"
)

// Storage / sink Error Codes
const (
	ErrCodeStorageUploadFailed ErrorCode = "STO_001"
	ErrCodeHistoryFailed       ErrorCode = "STO_002"
	ErrCodeEventPublishFailed  ErrorCode = "STO_003"
)

// Short aliases used by the application layer.
const (
	CodeInternal         = ErrCodeInternal
	CodeInvalidParam     = ErrCodeBadRequest
	CodeNotFound         = ErrCodeNotFound
	CodeDocumentNotFound = ErrCodeDocumentNotFound
	CodeLLMRequestFailed = ErrCodeLLMRequestFailed
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeFeatureDisabled:    http.StatusForbidden,

	ErrCodeDocumentNotFound:    http.StatusNotFound,
	ErrCodeDocumentReadFailed:  http.StatusUnprocessableEntity,
	ErrCodeDocumentWriteFailed: http.StatusInternalServerError,
	ErrCodeDocumentInvalid:     http.StatusBadRequest,

	ErrCodeGuidelinesDirFailed: http.StatusInternalServerError,
	ErrCodeGuidelinesWalk:      http.StatusInternalServerError,

	ErrCodeLLMRequestFailed: http.StatusBadGateway,
	ErrCodeLLMBadResponse:   http.StatusBadGateway,
	ErrCodeLLMStatus:        http.StatusBadGateway,

	ErrCodeReportWriteFailed: http.StatusInternalServerError,
	ErrCodeReviewNotFound:    http.StatusNotFound,

	ErrCodeStorageUploadFailed: http.StatusInternalServerError,
	ErrCodeHistoryFailed:       http.StatusInternalServerError,
	ErrCodeEventPublishFailed:  http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeFeatureDisabled:    "feature disabled",

	ErrCodeDocumentNotFound:    "input document not found",
	ErrCodeDocumentReadFailed:  "failed to read document",
	ErrCodeDocumentWriteFailed: "failed to write document",
	ErrCodeDocumentInvalid:     "document is not a valid docx package",

	ErrCodeGuidelinesDirFailed: "failed to prepare guidelines directory",
	ErrCodeGuidelinesWalk:      "failed to walk guidelines directory",

	ErrCodeLLMRequestFailed: "chat completion request failed",
	ErrCodeLLMBadResponse:   "malformed chat completion response",
	ErrCodeLLMStatus:        "chat completion returned non-success status",

	ErrCodeReportWriteFailed: "failed to write report",
	ErrCodeReviewNotFound:    "review run not found",

	ErrCodeStorageUploadFailed: "failed to archive review artifacts",
	ErrCodeHistoryFailed:       "review history store error",
	ErrCodeEventPublishFailed:  "failed to publish review event",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
