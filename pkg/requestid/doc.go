// Package requestid tags each HTTP request with a correlation ID.
//
// Middleware reads X-Request-ID from the client when it is 1 to 128
// characters of letters, digits, '-' or '_', and otherwise generates a UUID.
// The ID is stored in the request context, echoed in the response header,
// and picked up by LoggerExtractor so every log line of a request carries it.
package requestid
