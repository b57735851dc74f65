// Package processor implements httpcore.Processor and the
// httpcore.RequestInterceptor/ResponseInterceptor building blocks the
// teacher's middleware package expressed as net/http wrappers, adapted to
// run over httpcore.Request/httpcore.Response heads instead.
package processor

import (
	"context"

	"github.com/zhangdinet/httpcore"
)

// Chain runs an ordered list of interceptors. Request interceptors run in
// registration order; response interceptors run in reverse registration
// order, mirroring the teacher's middleware-wrapping convention where the
// first-registered middleware is outermost on both legs of a request.
type Chain struct {
	request  []httpcore.RequestInterceptor
	response []httpcore.ResponseInterceptor
}

// NewChain builds a Chain from the given interceptors, in the order they
// should run on the request path.
func NewChain(interceptors ...any) *Chain {
	c := &Chain{}
	for _, it := range interceptors {
		if ri, ok := it.(httpcore.RequestInterceptor); ok {
			c.request = append(c.request, ri)
		}
		if ri, ok := it.(httpcore.ResponseInterceptor); ok {
			c.response = append(c.response, ri)
		}
	}
	return c
}

// ProcessRequest implements httpcore.Processor.
func (c *Chain) ProcessRequest(ctx context.Context, req *httpcore.Request) error {
	for _, it := range c.request {
		if err := it.Process(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

// ProcessResponse implements httpcore.Processor, running response
// interceptors in reverse order.
func (c *Chain) ProcessResponse(ctx context.Context, resp *httpcore.Response) error {
	for i := len(c.response) - 1; i >= 0; i-- {
		if err := c.response[i].Process(ctx, resp); err != nil {
			return err
		}
	}
	return nil
}
