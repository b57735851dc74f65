package processor

import (
	"context"

	"github.com/google/uuid"

	"github.com/zhangdinet/httpcore"
)

// RequestIDHeader is the header this interceptor stamps on the inbound
// request, and echoes onto the outbound response if the handler hasn't
// already set it.
const RequestIDHeader = "X-Request-ID"

// RequestID is a RequestInterceptor and ResponseInterceptor pair that
// assigns a fresh uuid to every request that doesn't already carry one in
// RequestIDHeader, the way the teacher's requestid middleware stamps
// net/http requests.
type RequestID struct{}

// Process implements httpcore.RequestInterceptor: it reads an inbound
// X-Request-ID if present, otherwise mints one.
func (RequestID) Process(_ context.Context, req *httpcore.Request) error {
	if req.Header.Get(RequestIDHeader) == "" {
		req.Header.Set(RequestIDHeader, uuid.NewString())
	}
	return nil
}

// ProcessResponse is the response leg, adapted to
// httpcore.ResponseInterceptor by AsResponseInterceptor. It echoes the
// request's id onto the outgoing response unless the handler already set
// one itself.
func (RequestID) ProcessResponse(ctx context.Context, resp *httpcore.Response) error {
	if resp.Header.Get(RequestIDHeader) != "" {
		return nil
	}
	ex, ok := httpcore.ExchangeFromContext(ctx)
	if !ok {
		return nil
	}
	req := ex.Request()
	if req == nil {
		return nil
	}
	if id := req.Header.Get(RequestIDHeader); id != "" {
		resp.Header.Set(RequestIDHeader, id)
	}
	return nil
}

// RequestID's request and response legs can't live on one method set —
// httpcore.RequestInterceptor and httpcore.ResponseInterceptor both name
// their method Process, with different signatures, so one receiver can't
// implement both. AsResponseInterceptor adapts the response leg
// (ProcessResponse) to the interface Chain expects; register both
// RequestID{} and RequestID{}.AsResponseInterceptor() with NewChain.
type responseInterceptorFunc func(ctx context.Context, resp *httpcore.Response) error

func (f responseInterceptorFunc) Process(ctx context.Context, resp *httpcore.Response) error {
	return f(ctx, resp)
}

// AsResponseInterceptor adapts RequestID's ProcessResponse method to the
// httpcore.ResponseInterceptor interface (which requires a method literally
// named Process), for use with NewChain.
func (r RequestID) AsResponseInterceptor() httpcore.ResponseInterceptor {
	return responseInterceptorFunc(r.ProcessResponse)
}
