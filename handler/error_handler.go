package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/devicekey/pkg/binder"
	"github.com/dmitrymomot/devicekey/pkg/logger"
)

// Classifier maps a domain error to an HTTPError.
// It reports false when it does not recognize err.
type Classifier func(err error) (HTTPError, bool)

var binderErrors = []struct {
	err    error
	status HTTPError
}{
	{binder.ErrRequestTooLarge, ErrRequestEntityTooLarge},
	{binder.ErrUnsupportedMediaType, ErrUnsupportedMediaType},
	{binder.ErrMissingContentType, ErrUnsupportedMediaType},
	{binder.ErrFailedToParseJSON, ErrBadRequest},
	{binder.ErrFailedToParsePath, ErrBadRequest},
	{binder.ErrFailedToParseQuery, ErrBadRequest},
}

// classify resolves err to an HTTPError. Explicit HTTPErrors win, then binder
// errors, then the supplied classifiers in order. Anything else is a 500.
// Validation errors are handled before classify by buildDetail.
func classify(err error, classifiers []Classifier) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	for _, b := range binderErrors {
		if errors.Is(err, b.err) {
			return b.status
		}
	}
	for _, c := range classifiers {
		if c == nil {
			continue
		}
		if he, ok := c(err); ok {
			return he
		}
	}
	return ErrInternalServerError
}

func logLevelFor(status int) slog.Level {
	if status >= http.StatusInternalServerError {
		return slog.LevelError
	}
	return slog.LevelWarn
}

// NewErrorHandler returns an ErrorHandler that logs the failure and writes a
// JSON error envelope. Client errors are logged at warn level, server errors
// at error level.
func NewErrorHandler(log *slog.Logger, classifiers ...Classifier) ErrorHandler[Context] {
	if log == nil {
		log = slog.Default()
	}

	return func(ctx Context, err error) {
		r := ctx.Request()
		status, detail := buildDetail(err, classifiers)

		log.LogAttrs(r.Context(), logLevelFor(status), "request error",
			logger.RequestID(ctx.RequestID()),
			logger.Error(err),
			slog.Int("status_code", status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Component("error_handler"),
		)

		resp := jsonResponse{status: status, body: JSONResponse{Error: detail}}
		if renderErr := resp.Render(ctx.ResponseWriter(), r); renderErr != nil {
			log.Error("failed to render error response",
				logger.Error(renderErr),
				logger.Component("error_handler"),
			)
		}
	}
}
