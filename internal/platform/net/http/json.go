package http

import (
	"net/http"

	"gitplanet/internal/platform/net/http/bind"
)

// settle turns a handler result into a Response, a returned Response is kept as is
func settle(out any, err error) Response {
	if err != nil {
		return Error(err)
	}
	if resp, ok := out.(Response); ok {
		return resp
	}
	return OK(out)
}

// Call adapts a handler that reads no body
func Call(fn func(*http.Request) (any, error)) Handler {
	return Handle(func(r *http.Request) Response { return settle(fn(r)) })
}

// JSONHandler decodes and validates T before fn runs
func JSONHandler[T any](fn func(*http.Request, T) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		in, err := bind.ParseJSON[T](r)
		if err != nil {
			return Error(err)
		}
		return settle(fn(r, in))
	})
}
