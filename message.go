package httpcore

import (
	"net/http"
	"strings"
)

// ProtocolVersion is an HTTP version pair, e.g. {1, 1} for HTTP/1.1.
type ProtocolVersion struct {
	Major int
	Minor int
}

var (
	HTTP10 = ProtocolVersion{1, 0}
	HTTP11 = ProtocolVersion{1, 1}
)

// LessOrEqual reports whether v is at or below other, comparing major then
// minor.
func (v ProtocolVersion) LessOrEqual(other ProtocolVersion) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	return v.Minor <= other.Minor
}

// MinVersion returns the lower of two protocol versions.
func MinVersion(a, b ProtocolVersion) ProtocolVersion {
	if a.LessOrEqual(b) {
		return a
	}
	return b
}

func (v ProtocolVersion) String() string {
	return "HTTP/" + itoa(v.Major) + "." + itoa(v.Minor)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// Request is the request head the reactor has parsed off the wire. Byte
// parsing/framing itself is out of this package's scope; Request is the
// shared vocabulary handlers, interceptors and the ServiceHandler use to
// talk about it.
type Request struct {
	Method   string
	URI      string
	Version  ProtocolVersion
	Header   http.Header
	HasEntity bool
}

// ExpectsContinue reports whether the request carries Expect: 100-continue.
func (r *Request) ExpectsContinue() bool {
	if r == nil {
		return false
	}
	return strings.EqualFold(r.Header.Get("Expect"), "100-continue")
}

// IsHead reports whether the request method is HEAD, case-insensitively.
func (r *Request) IsHead() bool {
	return r != nil && strings.EqualFold(r.Method, http.MethodHead)
}

// Response is the response head a ResponseProducer generates and the
// ServiceHandler commits to the wire.
type Response struct {
	StatusCode int
	Version    ProtocolVersion
	Header     http.Header
	Reason     string

	// Entity is the response body, if any. The ServiceHandler clears this
	// when canResponseHaveBody forbids one.
	Entity []byte

	// KeepAlive, when explicitly set by the response producer (e.g. the
	// 100-continue interim response, which is never itself subject to
	// reuse negotiation), is returned by DefaultReuseStrategy in place of
	// header-based negotiation. The ServiceHandler itself does not read it;
	// other ReuseStrategy implementations may ignore it.
	KeepAlive *bool
}

// NewResponse builds a Response with an initialized header map.
func NewResponse(status int, version ProtocolVersion) *Response {
	return &Response{
		StatusCode: status,
		Version:    version,
		Header:     make(http.Header),
	}
}

// HasEntity reports whether the response currently carries a body.
func (r *Response) HasEntity() bool {
	return r != nil && len(r.Entity) > 0
}

// ClearEntity strips any body from the response, used by the
// canResponseHaveBody suppression rule.
func (r *Response) ClearEntity() {
	if r == nil {
		return
	}
	r.Entity = nil
	r.Header.Del("Content-Length")
	r.Header.Del("Transfer-Encoding")
}
