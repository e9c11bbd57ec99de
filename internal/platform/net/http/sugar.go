package http

import "net/http"

// GetJSON mounts a pure JSON handler for GET
func GetJSON(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, JSONHandlerNoBody(h))
}

// PostJSON mounts a pure JSON handler for POST
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Post(path, JSONHandler(h))
}

// GetResponse mounts a return-style handler for GET
func GetResponse(r Router, path string, h func(*http.Request) Response) {
	r.Get(path, Handle(h))
}

// PostResponse mounts a return-style handler that binds a T body
func PostResponse[T any](r Router, path string, h func(*http.Request, T) Response) {
	r.Post(path, BodyHandler(h))
}
