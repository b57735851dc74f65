package httpcore

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type singleHandlerResolver struct {
	handler RequestHandler
}

func (r singleHandlerResolver) Lookup(_ string) (RequestHandler, bool) {
	return r.handler, true
}

func TestServiceHandler_GetKeepAlive(t *testing.T) {
	ex := NewExchange()
	req := &Request{Method: http.MethodGet, URI: "/", Version: HTTP11, Header: make(http.Header)}
	conn := newFakeConn(ex, req)

	h := NewServiceHandler(WithResolver(singleHandlerResolver{&echoHandler{body: []byte("hello")}}))

	h.Connected(conn)
	require.NoError(t, h.RequestReceived(conn))

	// No entity: request completes synchronously, the handler fires its
	// trigger synchronously, which arms output; the reactor then drives
	// ResponseReady to actually commit the head.
	require.NoError(t, h.ResponseReady(conn))
	resp := conn.submittedResponse()
	require.NotNil(t, resp)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "hello", string(resp.Entity))

	encoder := &fakeEncoder{completed: true}
	require.NoError(t, h.OutputReady(conn, encoder))

	assert.False(t, conn.closed, "HTTP/1.1 response with no Connection: close must keep the connection open")
	assert.Equal(t, "idle", ex.Phase())
	assert.True(t, conn.inputSuspended, "a request with no entity must suspend input before handing off to HANDLING")
}

func TestServiceHandler_ExpectContinueThenBody(t *testing.T) {
	ex := NewExchange()
	header := make(http.Header)
	header.Set("Expect", "100-continue")
	req := &Request{Method: http.MethodPost, URI: "/upload", Version: ProtocolVersion{2, 0}, Header: header, HasEntity: true}
	conn := newFakeConn(ex, req)

	h := NewServiceHandler(WithResolver(singleHandlerResolver{&echoHandler{body: []byte("stored")}}))
	h.Connected(conn)
	require.NoError(t, h.RequestReceived(conn))

	interim := conn.submittedResponse()
	require.NotNil(t, interim)
	assert.Equal(t, http.StatusContinue, interim.StatusCode)
	assert.Equal(t, HTTP11, interim.Version, "100-continue must downgrade to the lower of the request's and HTTP/1.1's versions")
	assert.False(t, conn.inputSuspended, "input must stay armed across the 100-continue interim response")

	// simulate the reactor resetting submittedResponse for the body/response
	// phase of this cycle
	conn.mu.Lock()
	conn.resp = nil
	conn.mu.Unlock()

	decoder := newFakeDecoder([]byte("payload bytes"))
	require.NoError(t, h.InputReady(conn, decoder))
	assert.True(t, conn.inputSuspended, "input must be suspended once the body decoder reports completion")
	require.NoError(t, h.ResponseReady(conn))

	final := conn.submittedResponse()
	require.NotNil(t, final)
	assert.Equal(t, "stored", string(final.Entity))
}

func TestServiceHandler_HeadStripsEntity(t *testing.T) {
	ex := NewExchange()
	req := &Request{Method: http.MethodHead, URI: "/", Version: HTTP11, Header: make(http.Header)}
	conn := newFakeConn(ex, req)

	h := NewServiceHandler(WithResolver(singleHandlerResolver{&echoHandler{body: []byte("hello")}}))
	h.Connected(conn)
	require.NoError(t, h.RequestReceived(conn))
	require.NoError(t, h.ResponseReady(conn))

	resp := conn.submittedResponse()
	require.NotNil(t, resp)
	assert.False(t, resp.HasEntity(), "HEAD responses must never carry an entity")
}

func TestServiceHandler_MethodNotSupported(t *testing.T) {
	ex := NewExchange()
	req := &Request{Method: "TRACE", URI: "/", Version: HTTP11, Header: make(http.Header)}
	conn := newFakeConn(ex, req)

	h := NewServiceHandler()
	h.Connected(conn)
	err := h.ProtocolException(conn, &MethodNotSupportedError{Method: "TRACE"})
	require.NoError(t, err)

	resp := conn.submittedResponse()
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
	assert.True(t, conn.closed)
}

func TestServiceHandler_AsyncHandlerCompletesLater(t *testing.T) {
	ex := NewExchange()
	req := &Request{Method: http.MethodGet, URI: "/slow", Version: HTTP11, Header: make(http.Header)}
	conn := newFakeConn(ex, req)

	ready := make(chan struct{})
	handler := &echoHandler{async: true, body: []byte("finally"), ready: ready}
	h := NewServiceHandler(WithResolver(singleHandlerResolver{handler}))

	h.Connected(conn)
	require.NoError(t, h.RequestReceived(conn))

	// Handle() hasn't submitted yet: no response should exist immediately.
	assert.Nil(t, conn.submittedResponse())

	select {
	case <-ready:
	case <-time.After(time.Second):
		t.Fatal("async handler never fired its trigger")
	}

	require.NoError(t, h.ResponseReady(conn))
	resp := conn.submittedResponse()
	require.NotNil(t, resp)
	assert.Equal(t, "finally", string(resp.Entity))
}

func TestServiceHandler_ResponseReadyPrematureIsSilentNoOp(t *testing.T) {
	ex := NewExchange()
	req := &Request{Method: http.MethodGet, URI: "/slow", Version: HTTP11, Header: make(http.Header)}
	conn := newFakeConn(ex, req)

	ready := make(chan struct{})
	handler := &echoHandler{async: true, body: []byte("later"), ready: ready}
	h := NewServiceHandler(WithResolver(singleHandlerResolver{handler}))

	h.Connected(conn)
	require.NoError(t, h.RequestReceived(conn))

	// The async handler hasn't fired its trigger yet: no producer is
	// installed, so this is premature. It must not be treated as an error,
	// and it must not tear the connection down.
	require.NoError(t, h.ResponseReady(conn))
	assert.Nil(t, conn.submittedResponse())
	assert.False(t, conn.closed)

	<-ready
	require.NoError(t, h.ResponseReady(conn))
	resp := conn.submittedResponse()
	require.NotNil(t, resp)
	assert.Equal(t, "later", string(resp.Entity))

	// The producer has already been consumed: a second, spurious call must
	// also be a silent no-op rather than re-submitting or erroring.
	require.NoError(t, h.ResponseReady(conn))
}

func TestServiceHandler_RequestReceivedStampsConnectionOnContext(t *testing.T) {
	ex := NewExchange()
	req := &Request{Method: http.MethodGet, URI: "/", Version: HTTP11, Header: make(http.Header)}
	conn := newFakeConn(ex, req)

	var seen Connection
	proc := processorFunc{
		request: func(ctx context.Context, _ *Request) error {
			seen, _ = ctx.Value(CtxKeyConnection).(Connection)
			return nil
		},
	}
	h := NewServiceHandler(
		WithProcessor(proc),
		WithResolver(singleHandlerResolver{&echoHandler{body: []byte("hi")}}),
	)

	h.Connected(conn)
	require.NoError(t, h.RequestReceived(conn))
	assert.Same(t, conn, seen, "the connection handle must be placed in the attribute bag alongside the request")
}

func TestServiceHandler_IOExceptionTearsDownConnection(t *testing.T) {
	ex := NewExchange()
	req := &Request{Method: http.MethodPost, URI: "/", Version: HTTP11, HasEntity: true, Header: make(http.Header)}
	conn := newFakeConn(ex, req)

	h := NewServiceHandler(WithResolver(singleHandlerResolver{&echoHandler{body: []byte("x")}}))
	h.Connected(conn)
	require.NoError(t, h.RequestReceived(conn))

	h.IOException(conn, assertError("connection reset by peer"))

	assert.True(t, conn.shut)
}

func TestServiceHandler_Timeout_GivesGraceDuringHandling(t *testing.T) {
	ex := NewExchange()
	req := &Request{Method: http.MethodGet, URI: "/", Version: HTTP11, Header: make(http.Header)}
	conn := newFakeConn(ex, req)

	ex.mu.Lock()
	ex.phase = phaseHandling
	ex.mu.Unlock()

	h := NewServiceHandler()
	assert.False(t, h.Timeout(conn), "a connection awaiting an async handler should not be torn down immediately")

	conn.mu.Lock()
	conn.status = StatusClosed
	conn.mu.Unlock()
	assert.True(t, h.Timeout(conn))
}
