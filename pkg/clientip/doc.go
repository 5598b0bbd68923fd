// Package clientip resolves the originating client IP of an HTTP request.
//
// RemoteIP uses only the connection address. GetIP additionally honours
// CF-Connecting-IP, DO-Connecting-IP, X-Forwarded-For and X-Real-IP, which is
// correct only behind a proxy that sets them. Middleware stores the result
// in the request context for rate limiting and logging:
//
//	r.Use(clientip.Middleware(cfg.TrustProxyHeaders))
//	ip := clientip.FromContext(r.Context())
//
// Results are normalized with net.ParseIP; invalid values resolve to "".
package clientip
