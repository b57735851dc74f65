package httpcore

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// phase names the Exchange's position in its request/response lifecycle.
// Exactly one Exchange phase is active per connection at a time; phases
// advance strictly forward within a single request/response cycle and reset
// to phaseIdle once the cycle is done.
type phase int

const (
	phaseIdle phase = iota
	phaseReceivingHead
	phaseExpectContinue
	phaseReceivingBody
	phaseHandling
	phaseResponseReady
	phaseSendingBody
	phaseResponseDone
)

func (p phase) String() string {
	switch p {
	case phaseIdle:
		return "idle"
	case phaseReceivingHead:
		return "receiving_head"
	case phaseExpectContinue:
		return "expect_continue"
	case phaseReceivingBody:
		return "receiving_body"
	case phaseHandling:
		return "handling"
	case phaseResponseReady:
		return "response_ready"
	case phaseSendingBody:
		return "sending_body"
	case phaseResponseDone:
		return "response_done"
	default:
		return "unknown"
	}
}

// Exchange is the single in-flight request/response cycle a ServiceHandler
// tracks per connection. It is reused, not reallocated, across successive
// cycles on a kept-alive connection: Reset clears the previous cycle's
// state without touching the connection-lifetime ID.
//
// All access to Exchange state runs under mu. A RequestHandler's callbacks
// (ProcessRequest, RequestReceived, ConsumeContent, Handle, ...) are invoked
// by the ServiceHandler event dispatch with mu released, since
// ResponseTrigger.SubmitResponse takes mu and may be called before Handle
// returns — see servicehandler.go and trigger.go.
type Exchange struct {
	mu sync.Mutex

	id    uuid.UUID
	phase phase

	request  *Request
	response *Response

	requestHandler   RequestHandler
	requestConsumer  RequestConsumer
	responseProducer ResponseProducer

	// dispatched is set once RequestHandler.Handle has been called for this
	// cycle, guarding against a double dispatch if completeRequest were
	// ever reached twice (e.g. InputReady firing again after completion).
	dispatched bool

	// handled is true once the response head has been generated and
	// committed for this cycle (set at the same point §4.2 step 5 names),
	// false during response production and between cycles. isResponseReady
	// depends on it: a responseReady event with handled already true is
	// spurious, not an error.
	handled bool

	// keepAlive is decided once, at response-commit time, and then held
	// fixed for the remainder of the cycle.
	keepAlive bool
}

// isResponseReady reports whether a responseReady event should actually
// commit a response: a producer has been installed and no response has
// been committed yet this cycle. Callers must hold mu.
func (e *Exchange) isResponseReady() bool {
	return !e.handled && e.responseProducer != nil
}

// NewExchange allocates an Exchange stamped with a fresh identifier, used to
// correlate log lines across one connection's lifetime.
func NewExchange() *Exchange {
	return &Exchange{id: uuid.New(), phase: phaseIdle}
}

// ID returns the Exchange's connection-lifetime identifier.
func (e *Exchange) ID() uuid.UUID {
	return e.id
}

// Phase reports the Exchange's current lifecycle phase.
func (e *Exchange) Phase() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase.String()
}

// Request returns the request head for the current cycle, or nil before
// one has been received.
func (e *Exchange) Request() *Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.request
}

// Reset clears all per-cycle state so the Exchange can be reused for the
// next request on a kept-alive connection. The identifier is left
// untouched: it names the connection, not the cycle.
func (e *Exchange) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.phase = phaseIdle
	e.request = nil
	e.response = nil
	e.requestHandler = nil
	e.requestConsumer = nil
	e.responseProducer = nil
	e.dispatched = false
	e.handled = false
	e.keepAlive = false
}

// WithExchange returns a context carrying ex, reachable later via
// ExchangeFromContext.
func WithExchange(ctx context.Context, ex *Exchange) context.Context {
	return context.WithValue(ctx, CtxKeyExchange, ex)
}

// ExchangeFromContext retrieves the Exchange stamped onto ctx by
// WithExchange, if any.
func ExchangeFromContext(ctx context.Context) (*Exchange, bool) {
	ex, ok := ctx.Value(CtxKeyExchange).(*Exchange)
	return ex, ok
}
