// Package http writes every response in the same JSON envelope
package http

import (
	"encoding/json"
	stdhttp "net/http"

	pnet "gitplanet/internal/platform/net"
)

// Envelope is the body of every JSON response
type Envelope = pnet.Wire

// JSON writes v with status
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Response is what return style handlers produce, an error Body decides the status
type Response struct {
	Status int
	Body   any
	Header stdhttp.Header
}

// Handle adapts a return style handler
func Handle(h func(r *stdhttp.Request) Response) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		h(r).write(w, r)
	}
}

func (resp Response) write(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	for k, vv := range resp.Header {
		for _, v := range vv {
			w.Header().Add(k, v)
		}
	}
	reqID := pnet.RequestID(r.Context())
	if err, ok := resp.Body.(error); ok && err != nil {
		status, body := pnet.Failure(err, reqID)
		JSON(w, status, body)
		return
	}

	status := resp.Status
	switch status {
	case 0:
		status = stdhttp.StatusOK
	case stdhttp.StatusNoContent:
		w.WriteHeader(status)
		return
	}
	JSON(w, status, pnet.Reply(status, resp.Body, reqID))
}

// WriteError writes err for handlers that own the ResponseWriter
func WriteError(w stdhttp.ResponseWriter, r *stdhttp.Request, err error) {
	Error(err).write(w, r)
}

// OK is a 200 with data
func OK(data any) Response { return Response{Status: stdhttp.StatusOK, Body: data} }

// Created is a 201 with data
func Created(data any) Response { return Response{Status: stdhttp.StatusCreated, Body: data} }

// NoContent is an empty 204
func NoContent() Response { return Response{Status: stdhttp.StatusNoContent} }

// Error lets err pick the status
func Error(err error) Response { return Response{Body: err} }
