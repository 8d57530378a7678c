// Package http exposes the bookkeeping resources over a JSON REST API.
//
// This file implements the builder used by every handler to emit JSON
// bodies and the shared error envelope.

package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Error codes carried in the error envelope.
const (
	CodeNotFound        = "NotFound"
	CodeInvalidArgument = "InvalidArgument"
	CodeBadRequest      = "BadRequest"
	CodeInternal        = "Internal"
	CodeTooManyRequests = "TooManyRequests"
)

// ErrorEnvelope is the body of every error response.
type ErrorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ResponseBuilder provides a fluent API for building JSON responses.
type ResponseBuilder struct {
	statusCode int
	headers    map[string]string
	payload    any
	hasPayload bool
}

// NewResponse creates a new response builder with default 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON sets v as the response body.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	b.payload = v
	b.hasPayload = true
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	if !b.hasPayload {
		w.WriteHeader(b.statusCode)
		return
	}

	body, err := json.Marshal(b.payload)
	if err != nil {
		slog.Error("Failed to encode response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"code":"Internal","message":"response encoding failed"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(body)
	_, _ = w.Write([]byte("\n"))
}

// ErrorResponse creates an error response carrying the shared envelope.
func ErrorResponse(statusCode int, code, message string) *ResponseBuilder {
	return NewResponse().
		Status(statusCode).
		JSON(ErrorEnvelope{Code: code, Message: message})
}

func NotFoundError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusNotFound, CodeNotFound, message)
}

func InvalidArgumentError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, CodeInvalidArgument, message)
}

func BadRequestError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, CodeBadRequest, message)
}

// InternalServerError hides the underlying error from the caller; it is
// logged by the handler instead.
func InternalServerError() *ResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, CodeInternal, "internal error")
}

func TooManyRequestsError() *ResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, CodeTooManyRequests, "rate limit exceeded, retry later").
		Header("Retry-After", "60")
}
