package processor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhangdinet/httpcore"
)

type recordingRequestInterceptor struct {
	name  string
	order *[]string
}

func (r recordingRequestInterceptor) Process(_ context.Context, _ *httpcore.Request) error {
	*r.order = append(*r.order, r.name)
	return nil
}

type recordingResponseInterceptor struct {
	name  string
	order *[]string
}

func (r recordingResponseInterceptor) Process(_ context.Context, _ *httpcore.Response) error {
	*r.order = append(*r.order, r.name)
	return nil
}

func TestChain_RequestOrderIsRegistrationOrder(t *testing.T) {
	var order []string
	chain := NewChain(
		recordingRequestInterceptor{"first", &order},
		recordingRequestInterceptor{"second", &order},
	)

	req := &httpcore.Request{}
	require.NoError(t, chain.ProcessRequest(context.Background(), req))
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestChain_ResponseOrderIsReversed(t *testing.T) {
	var order []string
	chain := NewChain(
		recordingResponseInterceptor{"outer", &order},
		recordingResponseInterceptor{"inner", &order},
	)

	resp := &httpcore.Response{}
	require.NoError(t, chain.ProcessResponse(context.Background(), resp))
	assert.Equal(t, []string{"inner", "outer"}, order)
}

func TestRequestID_AssignsWhenMissing(t *testing.T) {
	req := &httpcore.Request{Header: make(map[string][]string)}
	require.NoError(t, RequestID{}.Process(context.Background(), req))
	assert.NotEmpty(t, req.Header.Get(RequestIDHeader))
}

func TestRequestID_PreservesExisting(t *testing.T) {
	req := &httpcore.Request{Header: make(map[string][]string)}
	req.Header.Set(RequestIDHeader, "fixed-id")
	require.NoError(t, RequestID{}.Process(context.Background(), req))
	assert.Equal(t, "fixed-id", req.Header.Get(RequestIDHeader))
}
