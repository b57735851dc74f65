package httpcore

import "errors"

// Sentinel errors returned by this package. Callers should compare with
// errors.Is, not equality.
var (
	// ErrNilTrigger is returned when SubmitResponse is called on a nil
	// *ResponseTrigger.
	ErrNilTrigger = errors.New("httpcore: nil response trigger")

	// ErrTriggerAlreadyFired is returned by a second call to
	// ResponseTrigger.SubmitResponse.
	ErrTriggerAlreadyFired = errors.New("httpcore: response trigger already fired")

	// ErrNilProducer is returned by ResponseTrigger.SubmitResponse when
	// called with a nil ResponseProducer; an argument violation, not a
	// state violation, so it does not consume the trigger's one shot.
	ErrNilProducer = errors.New("httpcore: nil response producer")

	// ErrNoHandler reports that no RequestHandler is registered for a URI.
	// Nothing in this package returns it: HandlerResolver.Lookup reports a
	// miss with ok == false, and the ServiceHandler then falls back to
	// NullRequestHandler.
	ErrNoHandler = errors.New("httpcore: no handler registered for request URI")

	// ErrResponseAlreadySubmitted is returned when a second response is
	// submitted for the same Exchange cycle.
	ErrResponseAlreadySubmitted = errors.New("httpcore: response already submitted for this exchange")

	// ErrConnectionClosed is returned by Connection methods invoked after
	// the connection has transitioned to StatusClosed.
	ErrConnectionClosed = errors.New("httpcore: connection closed")

	// ErrUnexpectedPhase is returned when an event callback fires for an
	// Exchange state it isn't valid in, e.g. InputReady with no
	// RequestConsumer installed or OutputReady with no ResponseProducer, or
	// when no Exchange is attached to the connection's context. A premature
	// ResponseReady is not an error.
	ErrUnexpectedPhase = errors.New("httpcore: event delivered in unexpected exchange phase")
)

// ProtocolError is the category ErrorMapper inspects to choose a status
// code. MethodNotSupportedError and UnsupportedHTTPVersionError are the two
// named subtypes spec.md calls out; any other ProtocolError maps to 400.
type ProtocolError struct {
	Message string
}

func (e *ProtocolError) Error() string { return e.Message }

// MethodNotSupportedError reports an HTTP method the server does not
// implement. ErrorMapper maps it to 501 Not Implemented.
type MethodNotSupportedError struct {
	Method string
}

func (e *MethodNotSupportedError) Error() string {
	return "httpcore: method not supported: " + e.Method
}

// UnsupportedHTTPVersionError reports a request whose HTTP version this
// server cannot speak. ErrorMapper maps it to 505 HTTP Version Not
// Supported.
type UnsupportedHTTPVersionError struct {
	Version ProtocolVersion
}

func (e *UnsupportedHTTPVersionError) Error() string {
	return "httpcore: unsupported HTTP version: " + e.Version.String()
}
