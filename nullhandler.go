package httpcore

import (
	"context"
	"net/http"
)

// NullRequestHandler is the fallback RequestHandler the ServiceHandler uses
// when the configured HandlerResolver has no match for a request URI. It
// discards the request body and always answers 501 Not Implemented.
type NullRequestHandler struct{}

// ProcessRequest discards the request body (the consumer it returns ignores
// all content) and proceeds straight to Handle.
func (NullRequestHandler) ProcessRequest(_ context.Context, _ *Request) (RequestConsumer, error) {
	return &discardConsumer{}, nil
}

// Handle submits a fixed 501 response.
func (NullRequestHandler) Handle(_ context.Context, _ any, trigger *ResponseTrigger) {
	_ = trigger.SubmitResponse(notImplementedProducer{})
}

type discardConsumer struct{}

func (c *discardConsumer) RequestReceived(_ *Request) error { return nil }

func (c *discardConsumer) ConsumeContent(decoder ContentDecoder, _ IOControl) error {
	buf := make([]byte, 4096)
	for {
		n, err := decoder.Read(buf)
		if n == 0 && err != nil {
			return nil
		}
		if decoder.IsCompleted() {
			return nil
		}
	}
}

func (c *discardConsumer) RequestCompleted(_ context.Context) {}
func (c *discardConsumer) Exception() error                   { return nil }
func (c *discardConsumer) Result() any                        { return nil }
func (c *discardConsumer) Close() error                       { return nil }

type notImplementedProducer struct{}

func (notImplementedProducer) GenerateResponse() (*Response, error) {
	resp := NewResponse(http.StatusNotImplemented, HTTP11)
	resp.Reason = http.StatusText(http.StatusNotImplemented)
	resp.Header.Set("Content-Type", "text/plain; charset=utf-8")
	resp.Entity = []byte("no handler registered for this request")
	return resp, nil
}

func (notImplementedProducer) ProduceContent(encoder ContentEncoder, _ IOControl) error {
	_, err := encoder.Write([]byte("no handler registered for this request"))
	return err
}

func (notImplementedProducer) Close() error { return nil }
