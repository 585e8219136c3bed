// Package httpkit is what modules build routes with, they never import the platform http package
package httpkit

import (
	"net/http"
	"strings"

	phttp "gitplanet/internal/platform/net/http"
	"gitplanet/internal/platform/net/http/bind"
)

type (
	Router   = phttp.Router
	Envelope = phttp.Envelope
)

// Param returns the trimmed path parameter once it passes the validator tag
func Param(r *http.Request, name, tag string) (string, error) {
	v := strings.TrimSpace(phttp.URLParam(r, name))
	if err := bind.Value(name, v, tag); err != nil {
		return "", err
	}
	return v, nil
}

func Get(r Router, path string, h func(*http.Request) (any, error))  { r.Get(path, phttp.Call(h)) }
func Post(r Router, path string, h func(*http.Request) (any, error)) { r.Post(path, phttp.Call(h)) }

// PutJSON decodes and validates the body into T first
func PutJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Put(path, phttp.JSONHandler(h))
}
