package reactor

import (
	"bufio"
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zhangdinet/httpcore"
)

type fixedResolver struct {
	handler httpcore.RequestHandler
}

func (f fixedResolver) Lookup(_ string) (httpcore.RequestHandler, bool) { return f.handler, true }

type echoHandler struct {
	body []byte
}

type echoConsumer struct{}

func (echoConsumer) RequestReceived(_ *httpcore.Request) error { return nil }
func (echoConsumer) ConsumeContent(decoder httpcore.ContentDecoder, _ httpcore.IOControl) error {
	buf := make([]byte, 512)
	for !decoder.IsCompleted() {
		if _, err := decoder.Read(buf); err != nil {
			break
		}
	}
	return nil
}
func (echoConsumer) RequestCompleted(_ context.Context) {}
func (echoConsumer) Exception() error                   { return nil }
func (echoConsumer) Result() any                        { return nil }
func (echoConsumer) Close() error                       { return nil }

func (h echoHandler) ProcessRequest(_ context.Context, _ *httpcore.Request) (httpcore.RequestConsumer, error) {
	return echoConsumer{}, nil
}

func (h echoHandler) Handle(_ context.Context, _ any, trigger *httpcore.ResponseTrigger) {
	_ = trigger.SubmitResponse(echoProducer{body: h.body})
}

type echoProducer struct{ body []byte }

func (p echoProducer) GenerateResponse() (*httpcore.Response, error) {
	resp := httpcore.NewResponse(200, httpcore.HTTP11)
	resp.Entity = p.body
	return resp, nil
}
func (p echoProducer) ProduceContent(encoder httpcore.ContentEncoder, _ httpcore.IOControl) error {
	_, err := encoder.Write(p.body)
	return err
}
func (p echoProducer) Close() error { return nil }

func TestServer_GetRoundTrip(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	handler := httpcore.NewServiceHandler(httpcore.WithResolver(fixedResolver{echoHandler{body: []byte("hello world")}}))
	srv := NewServer(nil, handler, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		srv.serveConn(ctx, serverConn)
		close(done)
	}()

	_, err := clientConn.Write([]byte("GET / HTTP/1.1\r\nHost: example.com\r\nConnection: close\r\n\r\n"))
	require.NoError(t, err)

	clientConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	resp, err := http.ReadResponse(bufio.NewReader(clientConn), nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, 200, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(body))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("serveConn did not exit after Connection: close")
	}
}
