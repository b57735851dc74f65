package httpcore

import (
	"errors"
	"net/http"
)

// ErrorMapper translates an error raised while parsing a request or running
// a RequestHandler into a well-formed response. It is a pure function: the
// same error always maps to the same response shape, and it never touches
// the Connection or Exchange directly — the ServiceHandler is responsible
// for committing whatever response it returns.
type ErrorMapper struct{}

// NewErrorMapper returns the default ErrorMapper.
func NewErrorMapper() ErrorMapper { return ErrorMapper{} }

// Map chooses a status code for err per spec.md §4.3:
// MethodNotSupportedError -> 501, UnsupportedHTTPVersionError -> 505, any
// other ProtocolError -> 400, anything else -> 500. The resulting response
// is always HTTP/1.0, non-keep-alive, with the exception's message as a
// plain-text body.
func (ErrorMapper) Map(err error) *Response {
	status := http.StatusInternalServerError

	var methodErr *MethodNotSupportedError
	var versionErr *UnsupportedHTTPVersionError
	var protoErr *ProtocolError

	switch {
	case errors.As(err, &methodErr):
		status = http.StatusNotImplemented
	case errors.As(err, &versionErr):
		status = http.StatusHTTPVersionNotSupported
	case errors.As(err, &protoErr):
		status = http.StatusBadRequest
	}

	resp := NewResponse(status, HTTP10)
	resp.Header.Set("Content-Type", "text/plain; charset=utf-8")
	resp.Reason = http.StatusText(status)
	keepAlive := false
	resp.KeepAlive = &keepAlive

	var message string
	if err != nil {
		message = err.Error()
	} else {
		message = http.StatusText(status)
	}
	resp.Entity = []byte(message)
	if !canResponseHaveBody(status) {
		resp.ClearEntity()
	}
	return resp
}
