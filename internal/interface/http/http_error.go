package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/solarcast/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

var statusByCode = map[string]int{
	apperrors.CodeInvalidInput:       http.StatusBadRequest,
	apperrors.CodeLocationNotFound:   http.StatusNotFound,
	apperrors.CodeUpstreamHTTP:       http.StatusBadGateway,
	apperrors.CodeRateLimited:        http.StatusTooManyRequests,
	apperrors.CodeModelTraining:      http.StatusBadGateway,
	apperrors.CodeSubmissionNotFound: http.StatusNotFound,
	apperrors.CodeModelNotFound:      http.StatusNotFound,
	apperrors.CodeSuperseded:         http.StatusConflict,
}

// transientCodes mark failures a client may retry shortly; they carry Retry-After.
var transientCodes = map[string]bool{
	apperrors.CodeUpstreamHTTP: true,
	"timeout":                  true,
}

const retryAfterSeconds = "1"

// fromDomainError maps a domain failure onto the response envelope.
func fromDomainError(err error) *HTTPError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		status, ok := statusByCode[appErr.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		return NewHTTPError(status, appErr.Code, appErr.Message, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewHTTPError(http.StatusGatewayTimeout, "timeout", "request timed out", err)
	}
	return asHTTPError(err)
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}
