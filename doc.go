// Package httpcore implements the core of a non-blocking, event-driven
// HTTP/1.x server-side protocol handler.
//
// It mediates between a low-level non-blocking [Connection] — which
// delivers I/O readiness events and exposes content encoders/decoders — and
// user-supplied asynchronous [RequestHandler]s. A [ServiceHandler] sequences
// one request/response [Exchange] at a time on a persistent connection,
// honoring HTTP/1.1 semantics (Expect: 100-continue, keep-alive, HEAD/204/
// 304/205 body suppression), translates protocol errors into well-formed
// error responses via [ErrorMapper], and coordinates producer/consumer
// suspension across the connection's I/O readiness lifecycle.
//
// Byte-level parsing and framing, TCP/TLS transport, handler resolution
// policy, interceptor chains and connection-reuse policy are external
// collaborators, consumed only through the interfaces in contracts.go.
// Reference implementations of those collaborators live in sibling packages
// (resolver, processor, reuse, reactor).
package httpcore
