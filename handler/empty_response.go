package handler

import "net/http"

type emptyResponse struct {
	status int
}

func (e emptyResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.WriteHeader(e.status)
	return nil
}

// Empty creates a bodyless 204 No Content response.
func Empty() Response {
	return emptyResponse{status: http.StatusNoContent}
}

// EmptyWithStatus creates a bodyless response with a custom status code.
//
// Example:
//
//	// Approval accepted, nothing to return
//	return handler.EmptyWithStatus(http.StatusOK)
func EmptyWithStatus(status int) Response {
	return emptyResponse{status: status}
}
