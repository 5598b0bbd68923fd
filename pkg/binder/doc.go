// Package binder decodes HTTP request data into typed request structs.
//
// Three binders are provided: JSON for request bodies, Path for route
// parameters and Query for the query string. All return functions with the signature expected by
// handler.Bind, so they can be chained with handler.WithBinders:
//
//	type ApproveRequest struct {
//		ChallengeID  uuid.UUID `json:"challengeID"`
//		DeviceID     uuid.UUID `json:"deviceID"`
//		SignatureDER []byte    `json:"signatureDER"`
//	}
//
//	r.Post("/auth/approve", handler.Wrap(approve,
//		handler.WithBinders[handler.Context, ApproveRequest](binder.JSON()),
//	))
//
// JSON bodies are decoded strictly: unknown fields, trailing data and bodies
// larger than DefaultMaxJSONSize are rejected. A binder that has nothing to
// read returns ErrBinderNotApplicable, which handler.Wrap skips.
//
// Path binds fields tagged with `path:"name"` using a router supplied
// extractor such as chi.URLParam. Strings, integers, booleans, pointers and
// any type implementing encoding.TextUnmarshaler are supported. Query does
// the same for `query:"name"` tags.
package binder
