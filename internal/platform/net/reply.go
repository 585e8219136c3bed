package net

import (
	"net/http"

	perr "gitplanet/internal/platform/errors"
)

// Wire is the JSON envelope every transport writes
type Wire struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	Field      string         `json:"field,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
}

// Reply wraps data in a success envelope
func Reply(status int, data any, reqID string) Wire {
	return Wire{StatusCode: status, Status: http.StatusText(status), RequestID: reqID, Data: data}
}

// Failure maps err to its status and envelope, the cause chain never reaches the client
func Failure(err error, reqID string) (int, Wire) {
	status := perr.HTTPStatus(err)
	w := perr.WireFrom(err)
	return status, Wire{
		StatusCode: status,
		Status:     http.StatusText(status),
		Code:       w.Code,
		Error:      w.Message,
		Field:      w.Field,
		RequestID:  reqID,
	}
}
