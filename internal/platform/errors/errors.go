// Package errors is the project error type, import it as perr
package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies an error for callers and the wire, values are stable
type ErrorCode uint16

const (
	ErrorCodeUnknown ErrorCode = iota
	ErrorCodePanic
	ErrorCodeUnavailable
	ErrorCodeTooManyRequests
	ErrorCodeConflict
	ErrorCodeUnauthorized
	ErrorCodeForbidden
	ErrorCodeInvalidArgument // well formed but unacceptable
	ErrorCodeValidation      // malformed
	ErrorCodeJSON
	ErrorCodeNotFound
	ErrorCodeDuplicateKey
	ErrorCodeDB
	ErrorCodeUpstream // GitHub or another source failed or lied
)

var codes = [...]struct {
	name   string
	status int
}{
	ErrorCodeUnknown:         {"unknown", http.StatusInternalServerError},
	ErrorCodePanic:           {"panic", http.StatusInternalServerError},
	ErrorCodeUnavailable:     {"unavailable", http.StatusServiceUnavailable},
	ErrorCodeTooManyRequests: {"too_many_requests", http.StatusTooManyRequests},
	ErrorCodeConflict:        {"conflict", http.StatusConflict},
	ErrorCodeUnauthorized:    {"unauthorized", http.StatusUnauthorized},
	ErrorCodeForbidden:       {"forbidden", http.StatusForbidden},
	ErrorCodeInvalidArgument: {"invalid_argument", http.StatusUnprocessableEntity},
	ErrorCodeValidation:      {"validation", http.StatusBadRequest},
	ErrorCodeJSON:            {"json", http.StatusBadRequest},
	ErrorCodeNotFound:        {"not_found", http.StatusNotFound},
	ErrorCodeDuplicateKey:    {"duplicate_key", http.StatusConflict},
	ErrorCodeDB:              {"db", http.StatusInternalServerError},
	ErrorCodeUpstream:        {"upstream", http.StatusBadGateway},
}

func (c ErrorCode) String() string {
	if int(c) < len(codes) {
		return codes[c].name
	}
	return fmt.Sprintf("code(%d)", uint16(c))
}

// HTTPStatusCode maps c to a status, unknown codes are a 500
func HTTPStatusCode(c ErrorCode) int {
	if int(c) < len(codes) {
		return codes[c].status
	}
	return http.StatusInternalServerError
}

// ErrNotFound is what store helpers return for a missing row
var ErrNotFound = New(ErrorCodeNotFound, "not found")

// Error is a classified error, message is safe to show a client and cause is not
type Error struct {
	cause   error
	message string
	code    ErrorCode
	field   string
	op      string
}

// Wire is the client facing shape of an Error
type Wire struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.cause == nil:
		return e.message
	}
	return e.message + ": " + e.cause.Error()
}

func (e *Error) Unwrap() error   { return e.cause }
func (e *Error) Code() ErrorCode { return e.code }
func (e *Error) Field() string   { return e.field }
func (e *Error) Op() string      { return e.op }

// As finds the outermost *Error in the chain
func As(err error) (*Error, bool) {
	var e *Error
	ok := stderrs.As(err, &e)
	return e, ok
}

// CodeOf is ErrorCodeUnknown for foreign errors
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }
func HTTPStatus(err error) int              { return HTTPStatusCode(CodeOf(err)) }

// WireFrom renders err for a client, causes never leave the process
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	if e, ok := As(err); ok {
		return Wire{Code: e.code, Message: e.message, Field: e.field}
	}
	return Wire{Code: ErrorCodeUnknown, Message: err.Error()}
}

// Root is the innermost error of a single Unwrap chain
func Root(err error) error {
	for {
		next := stderrs.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

// amend returns a modified copy of the outermost *Error, foreign errors pass through
func amend(err error, set func(*Error)) error {
	e, ok := As(err)
	if !ok {
		return err
	}
	c := *e
	set(&c)
	return &c
}

// WithField names the offending input field
func WithField(err error, field string) error {
	return amend(err, func(e *Error) { e.field = field })
}

// WithOp labels err with the operation that failed, for logs
func WithOp(err error, op string) error {
	return amend(err, func(e *Error) { e.op = op })
}

func New(code ErrorCode, msg string) error { return &Error{code: code, message: msg} }

func Newf(code ErrorCode, format string, a ...any) error {
	return New(code, fmt.Sprintf(format, a...))
}

// Wrap classifies cause under msg
func Wrap(cause error, code ErrorCode, msg string) error {
	return &Error{cause: cause, code: code, message: msg}
}

func Wrapf(cause error, code ErrorCode, format string, a ...any) error {
	return Wrap(cause, code, fmt.Sprintf(format, a...))
}

func NotFoundf(format string, a ...any) error     { return Newf(ErrorCodeNotFound, format, a...) }
func InvalidArgf(format string, a ...any) error   { return Newf(ErrorCodeInvalidArgument, format, a...) }
func JSONErrf(format string, a ...any) error      { return Newf(ErrorCodeJSON, format, a...) }
func PanicErrf(format string, a ...any) error     { return Newf(ErrorCodePanic, format, a...) }
func Unauthorizedf(format string, a ...any) error { return Newf(ErrorCodeUnauthorized, format, a...) }
func Unavailablef(format string, a ...any) error  { return Newf(ErrorCodeUnavailable, format, a...) }
func Upstreamf(format string, a ...any) error     { return Newf(ErrorCodeUpstream, format, a...) }
func Internalf(format string, a ...any) error     { return Newf(ErrorCodeUnknown, format, a...) }
