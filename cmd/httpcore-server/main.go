// Command httpcore-server wires httpcore.ServiceHandler together with the
// reference reactor.Server transport and the domain-stack packages
// (resolver, processor, reuse, config, integration/database) into a
// runnable demo: an HTTP/1.x server whose two routes ("/" and
// "/greet/:name") answer with a fixed greeting, recording one access-log
// row per response in Postgres when Postgres is reachable.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zhangdinet/httpcore"
	"github.com/zhangdinet/httpcore/config"
	"github.com/zhangdinet/httpcore/integration/database/pg"
	dbredis "github.com/zhangdinet/httpcore/integration/database/redis"
	"github.com/zhangdinet/httpcore/processor"
	"github.com/zhangdinet/httpcore/reactor"
	"github.com/zhangdinet/httpcore/resolver"
	"github.com/zhangdinet/httpcore/reuse"
)

// Config collects this demo's environment-driven settings. Sub-configs
// mirror the shape integration/database/{pg,redis}.Config expect, the way
// app/simple's Config composes core/server.Config and core/session.Config.
type Config struct {
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`

	Postgres pg.Config
	Redis    dbredis.Config

	ReuseCounterKey string `env:"REUSE_COUNTER_KEY" envDefault:"httpcore:active-connections"`
	MaxActiveConns  int64  `env:"REUSE_MAX_ACTIVE" envDefault:"1000"`
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		// Postgres/Redis are optional for this demo (see the fail-open
		// handling below); a missing PG_CONN_URL/REDIS_URL is expected in a
		// minimal setup, not fatal.
		logger.Warn("config incomplete, continuing with whatever loaded", "error", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pgPool, err := pg.Connect(ctx, cfg.Postgres)
	if err != nil {
		logger.Warn("postgres unavailable, access logging disabled", "error", err)
	} else {
		defer pgPool.Close()
	}

	redisClient, err := dbredis.Connect(ctx, cfg.Redis)
	if err != nil {
		logger.Warn("redis unavailable, falling back to in-process keep-alive policy", "error", err)
	} else {
		defer redisClient.Close()
	}

	res := resolver.New()
	res.Register("/greet/:name", greetHandler{})
	res.Register("/", greetHandler{})

	chainOpts := []any{processor.RequestID{}, processor.RequestID{}.AsResponseInterceptor()}

	var accessLog *processor.AccessLog
	if pgPool != nil {
		accessLog = processor.NewAccessLog(pgPool, logger)
		if err := accessLog.EnsureSchema(ctx); err != nil {
			logger.Warn("could not ensure access_log schema", "error", err)
			accessLog = nil
		}
	}
	if accessLog != nil {
		chainOpts = append(chainOpts, accessLog)
	}
	chain := processor.NewChain(chainOpts...)

	var reuseStrategy httpcore.ReuseStrategy = reuse.Default{}
	if redisClient != nil {
		reuseStrategy = reuse.NewRedis(redisClient, cfg.ReuseCounterKey, cfg.MaxActiveConns, reuse.Default{})
	}

	handler := httpcore.NewServiceHandler(
		httpcore.WithLogger(logger),
		httpcore.WithResolver(res),
		httpcore.WithProcessor(chain),
		httpcore.WithReuseStrategy(reuseStrategy),
		httpcore.WithDefaultHeaders(http.Header{"Server": []string{"httpcore-demo"}}),
		httpcore.WithOnException(func(_ httpcore.Connection, err error) {
			logger.Error("protocol exception", "error", err)
		}),
	)

	listener, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return err
	}

	srv := reactor.NewServer(listener, handler, logger)
	logger.Info("listening", "addr", cfg.ListenAddr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ctx)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, net.ErrClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		_ = listener.Close()
		return srv.Stop(stopCtx)
	}
}

// greetHandler answers every matched route with a plain-text greeting. It
// exists to exercise the full ServiceHandler/reactor pipeline end to end,
// not as a realistic application handler.
type greetHandler struct{}

func (greetHandler) ProcessRequest(_ context.Context, _ *httpcore.Request) (httpcore.RequestConsumer, error) {
	return greetConsumer{}, nil
}

func (greetHandler) Handle(_ context.Context, _ any, trigger *httpcore.ResponseTrigger) {
	_ = trigger.SubmitResponse(greetProducer{})
}

type greetConsumer struct{}

func (greetConsumer) RequestReceived(_ *httpcore.Request) error { return nil }

func (greetConsumer) ConsumeContent(decoder httpcore.ContentDecoder, _ httpcore.IOControl) error {
	buf := make([]byte, 512)
	for !decoder.IsCompleted() {
		if _, err := decoder.Read(buf); err != nil {
			return err
		}
	}
	return nil
}

func (greetConsumer) RequestCompleted(_ context.Context) {}
func (greetConsumer) Exception() error                   { return nil }
func (greetConsumer) Result() any                        { return nil }
func (greetConsumer) Close() error                       { return nil }

type greetProducer struct{}

func (greetProducer) GenerateResponse() (*httpcore.Response, error) {
	resp := httpcore.NewResponse(200, httpcore.HTTP11)
	resp.Header.Set("Content-Type", "text/plain; charset=utf-8")
	resp.Entity = []byte("hello from httpcore\n")
	return resp, nil
}

func (greetProducer) ProduceContent(encoder httpcore.ContentEncoder, _ httpcore.IOControl) error {
	_, err := encoder.Write([]byte("hello from httpcore\n"))
	return err
}

func (greetProducer) Close() error { return nil }
