package handler

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrymomot/devicekey/pkg/validator"
)

// JSONResponse is the standard JSON response envelope.
type JSONResponse struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *ErrorDetail   `json:"error,omitempty"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details map[string][]string `json:"details,omitempty"`
}

type jsonResponse struct {
	status int
	body   any
}

func (j jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// JSONOption configures JSON response
type JSONOption func(*jsonResponse)

// WithJSONStatus sets custom HTTP status code
func WithJSONStatus(status int) JSONOption {
	return func(r *jsonResponse) {
		r.status = status
	}
}

// JSON renders v as the response body with status 200 unless overridden.
// A JSONResponse value is written as is; anything else is written unwrapped.
func JSON(v any, opts ...JSONOption) Response {
	r := &jsonResponse{status: http.StatusOK, body: v}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// JSONError renders an error envelope: {"error":{"code":...,"message":...}}.
// Non-HTTPError values are reported as 500 with a generic message.
func JSONError(err error, opts ...JSONOption) Response {
	status, detail := errorToDetail(err)
	r := &jsonResponse{status: status, body: JSONResponse{Error: detail}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func errorToDetail(err error) (int, *ErrorDetail) {
	return buildDetail(err, nil)
}

func buildDetail(err error, classifiers []Classifier) (int, *ErrorDetail) {
	if ve := validator.ExtractValidationErrors(err); ve != nil {
		return http.StatusBadRequest, &ErrorDetail{
			Code:    "validation_error",
			Message: "Validation failed",
			Details: ve.Fields(),
		}
	}

	httpErr := classify(err, classifiers)
	return httpErr.Code, &ErrorDetail{
		Code:    httpErr.Key,
		Message: publicMessage(err, httpErr),
	}
}

// publicMessage hides server-side error text from clients.
func publicMessage(err error, httpErr HTTPError) string {
	if httpErr.Code >= http.StatusInternalServerError || err == nil {
		return http.StatusText(httpErr.Code)
	}
	if msg := err.Error(); msg != "" && msg != httpErr.Key {
		return msg
	}
	return http.StatusText(httpErr.Code)
}

type errorResponse struct {
	err error
}

func (e errorResponse) Render(http.ResponseWriter, *http.Request) error {
	return e.err
}

// Error returns a Response that hands err to the configured ErrorHandler
// instead of writing anything itself. Use it to surface service errors and
// let the error handler pick the status code.
func Error(err error) Response {
	return errorResponse{err: err}
}
