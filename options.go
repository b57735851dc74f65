package httpcore

import (
	"context"
	"io"
	"log/slog"
	"net/http"
)

// Option configures a ServiceHandler. Options follow the functional-options
// shape used throughout this codebase's server and worker constructors.
type Option func(*ServiceHandler)

// WithLogger overrides the ServiceHandler's logger. The default discards
// everything, matching this codebase's no-op-by-default logging
// convention.
func WithLogger(logger *slog.Logger) Option {
	return func(h *ServiceHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithResolver sets the HandlerResolver consulted for every request. The
// default resolver matches nothing and always falls back to
// NullRequestHandler.
func WithResolver(resolver HandlerResolver) Option {
	return func(h *ServiceHandler) {
		if resolver != nil {
			h.resolver = resolver
		}
	}
}

// WithProcessor installs the interceptor chain run once per request and
// once per response. The default is a no-op chain.
func WithProcessor(proc Processor) Option {
	return func(h *ServiceHandler) {
		if proc != nil {
			h.processor = proc
		}
	}
}

// WithReuseStrategy overrides connection-reuse policy. The default keeps a
// connection alive whenever the request and response both allow it under
// HTTP/1.1 semantics.
func WithReuseStrategy(strategy ReuseStrategy) Option {
	return func(h *ServiceHandler) {
		if strategy != nil {
			h.reuse = strategy
		}
	}
}

// WithDefaultHeaders sets headers stamped onto every outgoing response that
// doesn't already set them.
func WithDefaultHeaders(headers http.Header) Option {
	return func(h *ServiceHandler) {
		h.defaultHeaders = headers.Clone()
	}
}

// WithOnException installs a hook invoked whenever a connection's
// ProtocolException or IOException callback fires, in addition to the
// ServiceHandler's own error-response handling. Useful for metrics/alerting
// without overriding the response behavior itself.
func WithOnException(fn func(conn Connection, err error)) Option {
	return func(h *ServiceHandler) {
		h.onException = fn
	}
}

func defaultServiceHandler() *ServiceHandler {
	return &ServiceHandler{
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		resolver:    noopResolver{},
		processor:   noopProcessor{},
		reuse:       DefaultReuseStrategy{},
		errorMapper: NewErrorMapper(),
	}
}

type noopResolver struct{}

func (noopResolver) Lookup(_ string) (RequestHandler, bool) { return nil, false }

type noopProcessor struct{}

func (noopProcessor) ProcessRequest(_ context.Context, _ *Request) error   { return nil }
func (noopProcessor) ProcessResponse(_ context.Context, _ *Response) error { return nil }

// DefaultReuseStrategy keeps a connection alive whenever the request and
// the response both allow it: HTTP/1.1 defaults to keep-alive unless
// "Connection: close" is present; HTTP/1.0 defaults to close unless
// "Connection: keep-alive" is present. The request is the one held by the
// Exchange on ctx, if any; an explicit Response.KeepAlive takes precedence
// over both.
type DefaultReuseStrategy struct{}

// KeepAlive implements ReuseStrategy.
func (DefaultReuseStrategy) KeepAlive(ctx context.Context, resp *Response) bool {
	if resp == nil {
		return false
	}
	if resp.KeepAlive != nil {
		return *resp.KeepAlive
	}
	if ex, ok := ExchangeFromContext(ctx); ok {
		if req := ex.Request(); req != nil {
			reqConn := req.Header.Get("Connection")
			if reqConn == "close" {
				return false
			}
			if !HTTP11.LessOrEqual(req.Version) && reqConn != "keep-alive" {
				return false
			}
		}
	}
	connHeader := resp.Header.Get("Connection")
	if HTTP11.LessOrEqual(resp.Version) {
		return connHeader != "close"
	}
	return connHeader == "keep-alive"
}
