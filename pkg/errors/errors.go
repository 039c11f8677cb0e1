package errors

import "errors"

// Codes shared by the domain and the HTTP transport.
const (
	CodeInvalidInput       = "invalid_input"
	CodeLocationNotFound   = "location_not_found"
	CodeUpstreamHTTP       = "upstream_http_error"
	CodeRateLimited        = "rate_limited"
	CodeModelTraining      = "model_training_failure"
	CodeSubmissionNotFound = "submission_not_found"
	CodeModelNotFound      = "model_not_found"
	CodeSuperseded         = "superseded"
)

// AppError encodes domain specific error details.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap produces a new AppError instance.
func Wrap(code, message string, err error) error {
	if err == nil {
		return &AppError{Code: code, Message: message}
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// IsCode helps handler differentiate failures.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// CodeOf returns the code of the outermost AppError, or "" when err carries none.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
