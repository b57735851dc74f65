package httpcore

import (
	"context"
	"sync/atomic"
)

// ResponseTrigger is the one-shot capability a RequestHandler receives to
// submit a response once its (possibly asynchronous) work completes. It may
// be fired from any goroutine, at any point after Handle is called — not
// necessarily before Handle returns.
//
// A second call returns ErrTriggerAlreadyFired. The fired flag is checked
// with an atomic compare-and-swap before the Exchange's mutex is ever
// touched, so a late, racing caller never blocks behind — or interleaves
// with — the callback that already won.
type ResponseTrigger struct {
	exchange *Exchange
	conn     Connection
	fired    atomic.Bool
}

func newResponseTrigger(ex *Exchange, conn Connection) *ResponseTrigger {
	return &ResponseTrigger{exchange: ex, conn: conn}
}

// SubmitResponse installs producer as the Exchange's ResponseProducer and
// arms the connection for output. Only the first call with a non-nil
// producer has any effect; every later call returns ErrTriggerAlreadyFired
// without touching the Exchange. A nil producer returns ErrNilProducer and
// leaves the trigger unfired.
func (t *ResponseTrigger) SubmitResponse(producer ResponseProducer) error {
	if t == nil {
		return ErrNilTrigger
	}
	if producer == nil {
		return ErrNilProducer
	}
	if !t.fired.CompareAndSwap(false, true) {
		return ErrTriggerAlreadyFired
	}

	t.exchange.mu.Lock()
	defer t.exchange.mu.Unlock()

	t.exchange.responseProducer = producer
	t.exchange.phase = phaseResponseReady
	t.conn.RequestOutput()
	return nil
}

// SubmitResponseContext is equivalent to SubmitResponse, except that if ctx
// is already done it returns ctx.Err() without firing the trigger.
func (t *ResponseTrigger) SubmitResponseContext(ctx context.Context, producer ResponseProducer) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	return t.SubmitResponse(producer)
}

// Fired reports whether the trigger has already been used.
func (t *ResponseTrigger) Fired() bool {
	return t != nil && t.fired.Load()
}
