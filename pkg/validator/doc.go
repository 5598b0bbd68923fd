// Package validator builds declarative request validation from small rules.
//
// Each rule pairs a Check with the error reported when it fails. Apply runs
// all rules and returns ValidationErrors, which implements error, or nil:
//
//	err := validator.Apply(
//		validator.RequiredUUID("userId", req.UserID),
//		validator.Required("code", req.Code),
//	)
//
// handler.NewErrorHandler reports ValidationErrors as 400 with per-field
// details.
package validator
