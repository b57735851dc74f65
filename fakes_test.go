package httpcore

import (
	"bytes"
	"context"
	"sync"
)

// fakeConn is a minimal Connection double driven directly by tests, without
// any real socket or reactor underneath.
type fakeConn struct {
	mu sync.Mutex

	ctx     context.Context
	req     *Request
	status  ConnectionStatus
	resp    *Response
	subErr  error
	closed  bool
	shut    bool
	timeout int

	inputSuspended  bool
	inputRequested  int
	outputSuspended bool
	outputRequested int
}

func newFakeConn(ex *Exchange, req *Request) *fakeConn {
	ctx := WithExchange(context.Background(), ex)
	return &fakeConn{ctx: ctx, req: req, status: StatusActive}
}

func (c *fakeConn) Context() context.Context { return c.ctx }
func (c *fakeConn) HTTPRequest() *Request     { return c.req }

func (c *fakeConn) SubmitResponse(resp *Response) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resp != nil {
		return ErrResponseAlreadySubmitted
	}
	if c.subErr != nil {
		return c.subErr
	}
	c.resp = resp
	return nil
}

func (c *fakeConn) SuspendInput()  { c.mu.Lock(); c.inputSuspended = true; c.mu.Unlock() }
func (c *fakeConn) RequestInput()  { c.mu.Lock(); c.inputRequested++; c.mu.Unlock() }
func (c *fakeConn) SuspendOutput() { c.mu.Lock(); c.outputSuspended = true; c.mu.Unlock() }
func (c *fakeConn) RequestOutput() { c.mu.Lock(); c.outputRequested++; c.mu.Unlock() }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.status = StatusClosed
	return nil
}

func (c *fakeConn) Shutdown() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shut = true
	c.status = StatusClosed
	return nil
}

func (c *fakeConn) SetSocketTimeout(ms int) { c.mu.Lock(); c.timeout = ms; c.mu.Unlock() }

func (c *fakeConn) Status() ConnectionStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *fakeConn) ResponseSubmitted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resp != nil
}

func (c *fakeConn) submittedResponse() *Response {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resp
}

// processorFunc adapts plain funcs to the Processor interface for tests that
// only care about one of the two hooks.
type processorFunc struct {
	request  func(ctx context.Context, req *Request) error
	response func(ctx context.Context, resp *Response) error
}

func (p processorFunc) ProcessRequest(ctx context.Context, req *Request) error {
	if p.request == nil {
		return nil
	}
	return p.request(ctx, req)
}

func (p processorFunc) ProcessResponse(ctx context.Context, resp *Response) error {
	if p.response == nil {
		return nil
	}
	return p.response(ctx, resp)
}

// fakeDecoder feeds a fixed byte slice to a ConsumeContent loop and reports
// completion once it has all been read.
type fakeDecoder struct {
	buf       *bytes.Reader
	completed bool
}

func newFakeDecoder(data []byte) *fakeDecoder {
	return &fakeDecoder{buf: bytes.NewReader(data)}
}

func (d *fakeDecoder) Read(p []byte) (int, error) {
	n, err := d.buf.Read(p)
	if d.buf.Len() == 0 {
		d.completed = true
	}
	return n, err
}

func (d *fakeDecoder) IsCompleted() bool { return d.completed }

// fakeEncoder collects whatever ProduceContent writes to it.
type fakeEncoder struct {
	buf       bytes.Buffer
	completed bool
	completeN int
}

func (e *fakeEncoder) Write(p []byte) (int, error) { return e.buf.Write(p) }
func (e *fakeEncoder) Complete() error             { e.completeN++; return nil }
func (e *fakeEncoder) IsCompleted() bool           { return e.completed }

// echoHandler is a RequestHandler that answers 200 with a fixed body,
// either synchronously or from a separate goroutine depending on async.
type echoHandler struct {
	async bool
	body  []byte
	ready chan struct{}
}

type echoConsumer struct {
	req *Request
}

func (c *echoConsumer) RequestReceived(req *Request) error { c.req = req; return nil }
func (c *echoConsumer) ConsumeContent(decoder ContentDecoder, _ IOControl) error {
	buf := make([]byte, 512)
	for !decoder.IsCompleted() {
		n, err := decoder.Read(buf)
		if n == 0 && err != nil {
			break
		}
	}
	return nil
}
func (c *echoConsumer) RequestCompleted(_ context.Context) {}
func (c *echoConsumer) Exception() error                   { return nil }
func (c *echoConsumer) Result() any                        { return c.req }
func (c *echoConsumer) Close() error                       { return nil }

func (h *echoHandler) ProcessRequest(_ context.Context, req *Request) (RequestConsumer, error) {
	return &echoConsumer{req: req}, nil
}

func (h *echoHandler) Handle(_ context.Context, _ any, trigger *ResponseTrigger) {
	submit := func() {
		_ = trigger.SubmitResponse(&echoProducer{body: h.body})
		if h.ready != nil {
			close(h.ready)
		}
	}
	if h.async {
		go submit()
		return
	}
	submit()
}

type echoProducer struct {
	body []byte
}

func (p *echoProducer) GenerateResponse() (*Response, error) {
	resp := NewResponse(200, HTTP11)
	resp.Entity = p.body
	return resp, nil
}

func (p *echoProducer) ProduceContent(encoder ContentEncoder, _ IOControl) error {
	_, err := encoder.Write(p.body)
	return err
}

func (p *echoProducer) Close() error { return nil }
