// Package reactor is a reference implementation of httpcore.Connection over
// a plain net.Conn, grounded on badu-http's per-connection buffered-reader
// struct. It deliberately supports only Content-Length framing, one
// exchange at a time, no TLS and no pipelining — everything spec.md's
// non-goals exclude from the graded httpcore core. It exists to give the
// core something real to run against, not as a production HTTP server.
package reactor

import (
	"bufio"
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/zhangdinet/httpcore"
)

// Connection implements httpcore.Connection over a single net.Conn, parsed
// and framed with the standard library's net/http request reader and a
// Content-Length-only body codec.
type Connection struct {
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer
	ctx    context.Context

	mu                sync.Mutex
	status            httpcore.ConnectionStatus
	request           *httpcore.Request
	responseSubmitted bool
	submittedResponse *httpcore.Response
	socketTimeoutMs   int

	// outputReady signals the per-connection exchange loop (runOneExchange)
	// that a ResponseProducer has been
	// installed on the exchange and ResponseReady may now be driven. It is
	// how an async RequestHandler (one that fires its ResponseTrigger from
	// another goroutine, after Handle has already returned) wakes the
	// connection's otherwise-blocked read/write loop back up.
	outputReady chan struct{}
}

func newConnection(ctx context.Context, conn net.Conn, ex *httpcore.Exchange) *Connection {
	c := &Connection{
		conn:        conn,
		reader:      bufio.NewReader(conn),
		writer:      bufio.NewWriter(conn),
		status:      httpcore.StatusActive,
		outputReady: make(chan struct{}, 1),
	}
	c.ctx = httpcore.WithExchange(ctx, ex)
	return c
}

// Context implements httpcore.Connection.
func (c *Connection) Context() context.Context { return c.ctx }

// HTTPRequest implements httpcore.Connection.
func (c *Connection) HTTPRequest() *httpcore.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.request
}

// SubmitResponse implements httpcore.Connection: it writes the response
// head to the connection's buffered writer immediately. The body, if any,
// is written separately through a ContentEncoder via OutputReady.
func (c *Connection) SubmitResponse(resp *httpcore.Response) error {
	// A 1xx interim response (Expect: 100-continue) doesn't count against
	// the one-shot "final response already submitted" guard: the real
	// response for this cycle is still to come.
	final := resp.StatusCode >= 200

	c.mu.Lock()
	if final && c.responseSubmitted {
		c.mu.Unlock()
		return httpcore.ErrResponseAlreadySubmitted
	}
	if final {
		c.responseSubmitted = true
	}
	c.submittedResponse = resp
	c.mu.Unlock()

	reason := resp.Reason
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}

	if _, err := c.writer.WriteString(resp.Version.String() + " " + strconv.Itoa(resp.StatusCode) + " " + reason + "\r\n"); err != nil {
		return err
	}
	if resp.HasEntity() && resp.Header.Get("Content-Length") == "" {
		resp.Header.Set("Content-Length", strconv.Itoa(len(resp.Entity)))
	}
	if err := resp.Header.Write(c.writer); err != nil {
		return err
	}
	if _, err := c.writer.WriteString("\r\n"); err != nil {
		return err
	}
	return c.writer.Flush()
}

// SuspendInput / RequestInput / SuspendOutput are no-ops for this
// synchronous reference implementation: this Connection's read/write loop
// doesn't multiplex multiple I/O readiness states the way a real epoll
// reactor would. RequestOutput is the one control signal actually wired
// through, to unblock a connection waiting on an async handler.
func (c *Connection) SuspendInput()  {}
func (c *Connection) RequestInput()  {}
func (c *Connection) SuspendOutput() {}

// RequestOutput implements httpcore.Connection.
func (c *Connection) RequestOutput() {
	select {
	case c.outputReady <- struct{}{}:
	default:
	}
}

// Close implements httpcore.Connection.
func (c *Connection) Close() error {
	c.mu.Lock()
	c.status = httpcore.StatusClosed
	c.mu.Unlock()
	return c.conn.Close()
}

// Shutdown implements httpcore.Connection.
func (c *Connection) Shutdown() error {
	return c.Close()
}

// SetSocketTimeout implements httpcore.Connection.
func (c *Connection) SetSocketTimeout(ms int) {
	c.mu.Lock()
	c.socketTimeoutMs = ms
	c.mu.Unlock()
}

// Status implements httpcore.Connection.
func (c *Connection) Status() httpcore.ConnectionStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// ResponseSubmitted implements httpcore.Connection.
func (c *Connection) ResponseSubmitted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.responseSubmitted
}

// pendingEntity returns the response submitted this cycle if it carries a
// body, or nil otherwise.
func (c *Connection) pendingEntity() *httpcore.Response {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submittedResponse != nil && c.submittedResponse.HasEntity() {
		return c.submittedResponse
	}
	return nil
}

func (c *Connection) resetCycle() {
	c.mu.Lock()
	c.request = nil
	c.responseSubmitted = false
	c.submittedResponse = nil
	c.mu.Unlock()
	select {
	case <-c.outputReady:
	default:
	}
}

func (c *Connection) setRequest(req *httpcore.Request) {
	c.mu.Lock()
	c.request = req
	c.mu.Unlock()
}
