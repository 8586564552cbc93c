// Package http serves the planning API as JSON over net/http.
//
// This file implements the builder used by every handler to write a
// response, and the mapping from service errors to status codes.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"darkfinance/internal/core"
	"darkfinance/internal/log"
	"darkfinance/internal/middleware/trace"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	payload    any
}

// ErrorBody is the payload of every non-2xx response.
type ErrorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// NewJSONResponse creates a builder with a 200 status and no body.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Data sets the value encoded as the response body.
func (b *JSONResponseBuilder) Data(v any) *JSONResponseBuilder {
	b.payload = v
	return b
}

// Write sends the response. A nil payload writes headers only.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.payload == nil {
		w.WriteHeader(b.statusCode)
		return
	}

	body, err := json.Marshal(b.payload)
	if err != nil {
		http.Error(w, `{"error":"encoding response failed"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(append(body, '\n'))
}

// ErrorResponse creates an error response carrying the request id, if any.
func ErrorResponse(ctx context.Context, statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Data(ErrorBody{Error: message, RequestID: trace.GetRequestID(ctx)})
}

func BadRequestError(ctx context.Context, message string) *JSONResponseBuilder {
	return ErrorResponse(ctx, http.StatusBadRequest, message)
}

func UnprocessableEntityError(ctx context.Context, message string) *JSONResponseBuilder {
	return ErrorResponse(ctx, http.StatusUnprocessableEntity, message)
}

func NotFoundError(ctx context.Context, message string) *JSONResponseBuilder {
	return ErrorResponse(ctx, http.StatusNotFound, message)
}

func InternalServerError(ctx context.Context) *JSONResponseBuilder {
	return ErrorResponse(ctx, http.StatusInternalServerError, "internal error")
}

// statusFor maps service and validation errors to a status code and a
// message that is safe to show the caller.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, "record not found"
	case errors.Is(err, core.ErrInvalidUser):
		return http.StatusBadRequest, core.ErrInvalidUser.Error()
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrNameTooLong):
		return http.StatusUnprocessableEntity, unwrapSentinel(err).Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func unwrapSentinel(err error) error {
	for _, sentinel := range []error{core.ErrInvalidAmount, core.ErrInvalidDate, core.ErrEmptyName, core.ErrNameTooLong} {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return err
}

// writeServiceError logs 5xx failures and writes the mapped response.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	ctx := r.Context()
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.LogError(ctx, "Request failed", err, log.ComponentHTTP, operation,
			log.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent")))
	}
	ErrorResponse(ctx, status, message).Write(w)
}
