package errors

import "net/http"

// Machine-readable reason codes returned in the "error" field of JSON responses.
const (
	CodeInvalidBody      = "invalid_body"
	CodeValidationFailed = "validation_failed"
	CodeForbiddenOrigin  = "forbidden_origin"
	CodeCSRFFailed       = "csrf_failed"
	CodeRateLimited      = "rate_limited"
	CodeUnauthorized     = "unauthorized"
	CodeNotFound         = "not_found"
	CodeUpstreamFailed   = "upstream_failed"
	CodeInternal         = "internal_error"
)

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
	Code       string
	Fields     []string // offending fields for validation errors
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

func BadRequest(code, message string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusBadRequest, Code: code}
}

func NotFound(message string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusNotFound, Code: CodeNotFound}
}

func Unauthorized() *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: "Unauthorized", StatusCode: http.StatusUnauthorized, Code: CodeUnauthorized}
}

func Forbidden(code, message string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusForbidden, Code: code}
}

// Upstream wraps a failed third-party call. The message stays generic so
// provider details never reach the client.
func Upstream() *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: "Upstream service failed", StatusCode: http.StatusBadGateway, Code: CodeUpstreamFailed}
}
