package httpkit

import (
	"net/http"

	phttp "allsky/internal/platform/net/http"
)

// Get registers a body-less handler through the envelope adapter
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, Call(h))
}

// GetResponse registers a body-less handler that picks its own Response
func GetResponse(r Router, path string, h func(*http.Request) Response) {
	phttp.GetResponse(r, path, h)
}

// PostJSON binds and validates a T body, wrapping the result in an envelope
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	phttp.PostJSON(r, path, h)
}

// PostResponse binds and validates a T body and lets h pick the Response
func PostResponse[T any](r Router, path string, h func(*http.Request, T) Response) {
	phttp.PostResponse(r, path, h)
}
