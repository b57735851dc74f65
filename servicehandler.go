package httpcore

import (
	"context"
	"log/slog"
	"net/http"
)

// ServiceHandler sequences one request/response Exchange at a time per
// connection. It is stateless and safe to share across every connection a
// reactor drives; all mutable per-cycle state lives on the Exchange the
// reactor attaches to each Connection's context.
//
// Every event callback holds the owning Exchange's mutex only around reads
// and writes of Exchange fields, never across a call into user-supplied
// code (RequestHandler, RequestConsumer, ResponseProducer). Exchange.mu is
// not reentrant, and a synchronous RequestHandler is free to call
// ResponseTrigger.SubmitResponse — which takes the same lock — before
// Handle even returns, so Handle must always run unlocked.
type ServiceHandler struct {
	logger         *slog.Logger
	resolver       HandlerResolver
	processor      Processor
	reuse          ReuseStrategy
	errorMapper    ErrorMapper
	defaultHeaders http.Header
	onException    func(conn Connection, err error)
}

// NewServiceHandler builds a ServiceHandler with sensible, fully-inert
// defaults (discard logger, no-op resolver/processor, HTTP/1.1-default
// reuse strategy), then applies opts.
func NewServiceHandler(opts ...Option) *ServiceHandler {
	h := defaultServiceHandler()
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Connected is called once a new connection is accepted. It resets the
// Exchange the reactor has attached to the connection's context to a clean
// idle state.
func (h *ServiceHandler) Connected(conn Connection) {
	ex, ok := ExchangeFromContext(conn.Context())
	if !ok {
		h.logger.Error("connected event with no exchange on context")
		return
	}
	ex.Reset()
	h.logger.Debug("connection accepted", "exchange", ex.ID())
}

// Closed is called once a connection has fully shut down. It closes any
// consumer/producer the Exchange still holds.
func (h *ServiceHandler) Closed(conn Connection) {
	ex, ok := ExchangeFromContext(conn.Context())
	if !ok {
		return
	}
	h.closeParticipants(ex)
	h.logger.Debug("connection closed", "exchange", ex.ID())
}

// RequestReceived is called once the reactor has parsed a complete request
// head. It resolves the RequestHandler, asks it for a RequestConsumer, and
// either answers an interim 100-continue response or proceeds straight to
// body consumption / handling.
func (h *ServiceHandler) RequestReceived(conn Connection) error {
	ex, ok := ExchangeFromContext(conn.Context())
	if !ok {
		return ErrUnexpectedPhase
	}
	req := conn.HTTPRequest()

	ex.mu.Lock()
	ex.request = req
	ex.phase = phaseReceivingHead
	ex.mu.Unlock()

	ctx := WithExchange(conn.Context(), ex)
	ctx = context.WithValue(ctx, CtxKeyRequest, req)
	ctx = context.WithValue(ctx, CtxKeyConnection, conn)

	if err := h.processor.ProcessRequest(ctx, req); err != nil {
		return err
	}

	requestHandler, found := h.resolver.Lookup(req.URI)
	if !found {
		requestHandler = NullRequestHandler{}
	}

	consumer, err := requestHandler.ProcessRequest(ctx, req)
	if err != nil {
		return err
	}

	ex.mu.Lock()
	ex.requestHandler = requestHandler
	ex.requestConsumer = consumer
	ex.mu.Unlock()

	if err := consumer.RequestReceived(req); err != nil {
		h.closeParticipants(ex)
		return err
	}

	if req.ExpectsContinue() {
		ex.mu.Lock()
		ex.phase = phaseExpectContinue
		ex.mu.Unlock()

		interim := NewResponse(http.StatusContinue, MinVersion(req.Version, HTTP11))
		keepAlive := true
		interim.KeepAlive = &keepAlive
		if err := conn.SubmitResponse(interim); err != nil {
			return err
		}
	}

	if !req.HasEntity {
		conn.SuspendInput()
		return h.completeRequest(ctx, conn, ex)
	}

	ex.mu.Lock()
	ex.phase = phaseReceivingBody
	ex.mu.Unlock()
	conn.RequestInput()
	return nil
}

// InputReady is called whenever more request body bytes are available.
func (h *ServiceHandler) InputReady(conn Connection, decoder ContentDecoder) error {
	ex, ok := ExchangeFromContext(conn.Context())
	if !ok {
		return ErrUnexpectedPhase
	}

	ex.mu.Lock()
	consumer := ex.requestConsumer
	ex.mu.Unlock()
	if consumer == nil {
		return ErrUnexpectedPhase
	}

	ioc := &connIOControl{conn: conn}
	if err := consumer.ConsumeContent(decoder, ioc); err != nil {
		return err
	}
	if !decoder.IsCompleted() {
		return nil
	}
	conn.SuspendInput()

	ctx := WithExchange(conn.Context(), ex)
	return h.completeRequest(ctx, conn, ex)
}

// completeRequest marks the request consumed and dispatches to the
// RequestHandler. It never holds ex.mu while calling into the consumer or
// the handler: a synchronous handler is free to call
// ResponseTrigger.SubmitResponse, which takes the same lock, before Handle
// returns.
func (h *ServiceHandler) completeRequest(ctx context.Context, conn Connection, ex *Exchange) error {
	ex.mu.Lock()
	if ex.dispatched {
		ex.mu.Unlock()
		return nil
	}
	consumer := ex.requestConsumer
	ex.mu.Unlock()

	consumer.RequestCompleted(ctx)
	if err := consumer.Exception(); err != nil {
		return err
	}

	ex.mu.Lock()
	ex.phase = phaseHandling
	ex.dispatched = true
	requestHandler := ex.requestHandler
	ex.mu.Unlock()

	trigger := newResponseTrigger(ex, conn)
	requestHandler.Handle(ctx, consumer.Result(), trigger)
	return nil
}

// ResponseReady is called once a ResponseProducer has been installed on the
// Exchange (synchronously from Handle, or later via ResponseTrigger) and
// the connection is ready to write a response head.
func (h *ServiceHandler) ResponseReady(conn Connection) error {
	ex, ok := ExchangeFromContext(conn.Context())
	if !ok {
		return ErrUnexpectedPhase
	}

	ex.mu.Lock()
	ready := ex.isResponseReady()
	producer := ex.responseProducer
	ex.mu.Unlock()
	if !ready {
		// Spurious or premature: the state machine tolerates this
		// silently rather than treating it as an error.
		return nil
	}
	if conn.ResponseSubmitted() {
		return ErrResponseAlreadySubmitted
	}

	resp, err := producer.GenerateResponse()
	if err != nil {
		return h.commitResponse(conn, ex, h.errorMapper.Map(err))
	}
	return h.commitResponse(conn, ex, resp)
}

func (h *ServiceHandler) commitResponse(conn Connection, ex *Exchange, resp *Response) error {
	ctx := WithExchange(conn.Context(), ex)
	ctx = context.WithValue(ctx, CtxKeyResponse, resp)

	for k, v := range h.defaultHeaders {
		if _, exists := resp.Header[k]; !exists {
			resp.Header[k] = v
		}
	}

	ex.mu.Lock()
	req := ex.request
	ex.mu.Unlock()

	if req != nil && req.IsHead() {
		resp.ClearEntity()
	}
	if !canResponseHaveBody(resp.StatusCode) {
		resp.ClearEntity()
	}

	if err := h.processor.ProcessResponse(ctx, resp); err != nil {
		return err
	}

	keepAlive := h.reuse.KeepAlive(ctx, resp)

	ex.mu.Lock()
	ex.keepAlive = keepAlive
	ex.response = resp
	ex.phase = phaseResponseReady
	ex.handled = true
	ex.mu.Unlock()

	if err := conn.SubmitResponse(resp); err != nil {
		return err
	}

	if resp.HasEntity() {
		ex.mu.Lock()
		ex.phase = phaseSendingBody
		ex.mu.Unlock()
		conn.RequestOutput()
		return nil
	}
	return h.finishCycle(conn, ex)
}

// OutputReady is called whenever more response body bytes may be written.
func (h *ServiceHandler) OutputReady(conn Connection, encoder ContentEncoder) error {
	ex, ok := ExchangeFromContext(conn.Context())
	if !ok {
		return ErrUnexpectedPhase
	}

	ex.mu.Lock()
	producer := ex.responseProducer
	ex.mu.Unlock()
	if producer == nil {
		return ErrUnexpectedPhase
	}

	ioc := &connIOControl{conn: conn}
	if err := producer.ProduceContent(encoder, ioc); err != nil {
		return err
	}
	if !encoder.IsCompleted() {
		return nil
	}
	if err := encoder.Complete(); err != nil {
		return err
	}
	return h.finishCycle(conn, ex)
}

// finishCycle closes out the current consumer/producer and either keeps the
// connection armed for the next request or closes it.
func (h *ServiceHandler) finishCycle(conn Connection, ex *Exchange) error {
	ex.mu.Lock()
	ex.phase = phaseResponseDone
	keepAlive := ex.keepAlive
	ex.mu.Unlock()

	h.closeParticipants(ex)

	if !keepAlive {
		return conn.Close()
	}
	ex.Reset()
	conn.RequestInput()
	return nil
}

func (h *ServiceHandler) closeParticipants(ex *Exchange) {
	ex.mu.Lock()
	consumer := ex.requestConsumer
	producer := ex.responseProducer
	ex.requestConsumer = nil
	ex.responseProducer = nil
	ex.mu.Unlock()

	if consumer != nil {
		_ = consumer.Close()
	}
	if producer != nil {
		_ = producer.Close()
	}
}

// Timeout is called when the connection's socket timeout elapses. It
// returns true if the connection should be closed; it does not close or
// shut down the connection and does not change its socket timeout itself.
// A connection mid-handler (phaseHandling, awaiting an async
// ResponseTrigger) whose status is not StatusClosed gets false on every
// call rather than being torn down immediately; there is no limit on how
// many times.
func (h *ServiceHandler) Timeout(conn Connection) bool {
	ex, ok := ExchangeFromContext(conn.Context())
	if !ok {
		return true
	}

	ex.mu.Lock()
	defer ex.mu.Unlock()

	if ex.phase == phaseHandling && conn.Status() != StatusClosed {
		return false
	}
	return true
}

// ProtocolException is called when the reactor fails to parse a request.
// It maps err to a response via ErrorMapper and submits it directly,
// bypassing the normal ResponseProducer path, then closes the connection
// since the parser's position in the stream is no longer trustworthy.
func (h *ServiceHandler) ProtocolException(conn Connection, err error) error {
	ex, ok := ExchangeFromContext(conn.Context())
	if ok {
		ex.mu.Lock()
		ex.keepAlive = false
		ex.mu.Unlock()
	}
	if h.onException != nil {
		h.onException(conn, err)
	}
	h.logger.Warn("protocol exception", "error", err)

	resp := h.errorMapper.Map(err)
	if submitErr := conn.SubmitResponse(resp); submitErr != nil {
		return submitErr
	}
	return conn.Close()
}

// IOException is called when the underlying transport fails. There is no
// well-formed response to send at this point; the connection is simply torn
// down.
func (h *ServiceHandler) IOException(conn Connection, err error) {
	if h.onException != nil {
		h.onException(conn, err)
	}
	h.logger.Warn("io exception", "error", err)

	ex, ok := ExchangeFromContext(conn.Context())
	if ok {
		h.closeParticipants(ex)
	}
	_ = conn.Shutdown()
}

// connIOControl adapts a Connection to the narrower IOControl interface
// handed to consumers/producers mid-stream.
type connIOControl struct {
	conn Connection
}

func (c *connIOControl) SuspendInput()  { c.conn.SuspendInput() }
func (c *connIOControl) RequestInput()  { c.conn.RequestInput() }
func (c *connIOControl) SuspendOutput() { c.conn.SuspendOutput() }
func (c *connIOControl) RequestOutput() { c.conn.RequestOutput() }
