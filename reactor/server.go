package reactor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"

	"github.com/zhangdinet/httpcore"
)

// Server drives a httpcore.ServiceHandler over accepted net.Conns, one
// goroutine per connection, the way the teacher's core/server.Server wraps
// a net/http.Server with graceful Start/Stop lifecycle methods.
type Server struct {
	listener net.Listener
	handler  *httpcore.ServiceHandler
	logger   *slog.Logger

	done chan struct{}
}

// NewServer wraps listener with handler. logger defaults to
// slog.Default() if nil.
func NewServer(listener net.Listener, handler *httpcore.ServiceHandler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{listener: listener, handler: handler, logger: logger, done: make(chan struct{})}
}

// Serve accepts connections until ctx is canceled or the listener errors.
func (s *Server) Serve(ctx context.Context) error {
	defer close(s.done)
	go func() {
		<-ctx.Done()
		_ = s.listener.Close()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		go s.serveConn(ctx, conn)
	}
}

// Stop waits for Serve's accept loop to exit, up to ctx's deadline.
func (s *Server) Stop(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) serveConn(ctx context.Context, netConn net.Conn) {
	ex := httpcore.NewExchange()
	conn := newConnection(ctx, netConn, ex)
	defer netConn.Close()

	s.handler.Connected(conn)
	defer s.handler.Closed(conn)

	for {
		if err := s.runOneExchange(conn); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			s.logger.Warn("exchange failed", "error", err)
			return
		}
		if conn.Status() == httpcore.StatusClosed {
			return
		}
		conn.resetCycle()
	}
}

// runOneExchange parses one request head, drives the ServiceHandler through
// the full request/response cycle, and returns once the response has been
// fully written (or the connection is closed out from under it).
func (s *Server) runOneExchange(conn *Connection) error {
	httpReq, err := http.ReadRequest(conn.reader)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return io.EOF
		}
		return s.handler.ProtocolException(conn, &httpcore.ProtocolError{Message: err.Error()})
	}

	req := convertRequest(httpReq)
	conn.setRequest(req)

	if req.Version.Major != 1 {
		return s.handler.ProtocolException(conn, &httpcore.UnsupportedHTTPVersionError{Version: req.Version})
	}
	if !isSupportedMethod(req.Method) {
		return s.handler.ProtocolException(conn, &httpcore.MethodNotSupportedError{Method: req.Method})
	}

	if err := s.handler.RequestReceived(conn); err != nil {
		return s.handler.ProtocolException(conn, err)
	}

	if req.HasEntity {
		decoder := newContentLengthDecoder(conn.reader, httpReq.ContentLength)
		if err := s.handler.InputReady(conn, decoder); err != nil {
			return s.handler.ProtocolException(conn, err)
		}
	}

	<-conn.outputReady
	if err := s.handler.ResponseReady(conn); err != nil {
		return err
	}

	resp := conn.pendingEntity()
	if resp != nil {
		encoder := newContentLengthEncoder(conn.writer, int64(len(resp.Entity)))
		for !encoder.IsCompleted() {
			if err := s.handler.OutputReady(conn, encoder); err != nil {
				return err
			}
		}
	}
	return nil
}

func convertRequest(r *http.Request) *httpcore.Request {
	major, minor := r.ProtoMajor, r.ProtoMinor
	return &httpcore.Request{
		Method:    r.Method,
		URI:       r.RequestURI,
		Version:   httpcore.ProtocolVersion{Major: major, Minor: minor},
		Header:    r.Header,
		HasEntity: r.ContentLength > 0,
	}
}

func isSupportedMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions:
		return true
	default:
		return false
	}
}
