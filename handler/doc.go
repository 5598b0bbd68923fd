// Package handler provides generic, type-safe HTTP handlers for JSON APIs.
//
// A HandlerFunc receives a Context and a request struct already populated by
// binders, and returns a Response. Wrap turns it into an http.HandlerFunc:
//
//	type VerifyRequest struct {
//		UserID uuid.UUID `json:"userId"`
//		Code   string    `json:"code"`
//	}
//
//	verify := func(ctx handler.Context, req VerifyRequest) handler.Response {
//		if err := svc.VerifyTOTPCode(ctx, req.UserID, req.Code); err != nil {
//			return handler.Error(err)
//		}
//		return handler.EmptyWithStatus(http.StatusOK)
//	}
//
//	r.Post("/totp/verify", handler.Wrap(verify,
//		handler.WithBinders[handler.Context, VerifyRequest](binder.JSON()),
//		handler.WithErrorHandler[handler.Context, VerifyRequest](errHandler),
//	))
//
// # Validation
//
// When the bound request implements Validatable, Wrap calls Validate before
// any decorator or the handler runs. validator.ValidationErrors become a 400
// with per-field details.
//
// # Errors
//
// Binding failures, render failures and Error responses all reach the
// ErrorHandler. NewErrorHandler logs them and writes
//
//	{"error": {"code": "not_found", "message": "challenge not found"}}
//
// The status code comes from an HTTPError found with errors.As, then from the
// binder sentinels, then from caller supplied Classifier functions that map
// domain errors. Unrecognized errors become 500 and their text is not
// exposed to the client.
//
// # Responses
//
// JSON, JSONError, Empty and EmptyWithStatus cover the JSON API surface.
// Decorators wrap a HandlerFunc for cross-cutting concerns; the first
// decorator passed to WithDecorators is the outermost.
package handler
