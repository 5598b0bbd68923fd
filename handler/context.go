package handler

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/devicekey/pkg/requestid"
)

// Context is the request context handed to every HandlerFunc. It carries the
// request's context.Context values and deadline.
type Context interface {
	context.Context
	Request() *http.Request
	ResponseWriter() http.ResponseWriter

	// RequestID returns the ID assigned by requestid.Middleware, or "".
	RequestID() string
}

// NewContext creates a new Context from HTTP request and response writer.
func NewContext(w http.ResponseWriter, r *http.Request) Context {
	return &httpContext{Context: r.Context(), w: w, r: r}
}

type httpContext struct {
	context.Context
	w http.ResponseWriter
	r *http.Request
}

func (c *httpContext) Request() *http.Request              { return c.r }
func (c *httpContext) ResponseWriter() http.ResponseWriter { return c.w }
func (c *httpContext) RequestID() string                   { return requestid.FromContext(c.Context) }
